package mpd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// servicePIDKey is injected into runtime snapshots by the config delivery
// layer and carries no player setting.
const servicePIDKey = "service.pid"

// ConfigError describes a single rejected player setting. Other keys in the
// same snapshot are still applied.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("mpd: invalid player setting %q: %s", e.Key, e.Reason)
}

// ParsePlayerSettings builds player configurations from a flat key/value
// snapshot. Keys take the form <playerId>.<setting> where setting is one of
// host, port, or password; the id is everything before the last dot, so ids
// may themselves contain dots.
//
// Keys without a dot and the service.pid key are skipped. An unknown setting
// suffix or an unparseable port rejects that key only; the returned error
// joins one ConfigError per rejected key and the remaining keys still
// contribute to the result. A rejected key never creates a player on its
// own. The port defaults to 6600.
func ParsePlayerSettings(settings map[string]string) (map[string]PlayerConfig, error) {
	players := make(map[string]*PlayerConfig)
	var errs []error

	// Sort keys so joined errors come out in a stable order.
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == servicePIDKey {
			continue
		}

		dot := strings.LastIndex(key, ".")
		if dot <= 0 {
			continue
		}
		id, setting := key[:dot], key[dot+1:]

		switch setting {
		case "host", "port", "password":
		default:
			errs = append(errs, &ConfigError{Key: key, Reason: fmt.Sprintf("unknown setting %q", setting)})
			continue
		}

		value := settings[key]

		player, ok := players[id]
		if !ok {
			player = &PlayerConfig{ID: id, Port: defaultPort}
			players[id] = player
		}

		switch setting {
		case "host":
			player.Host = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil || port < 1 || port > 65535 {
				errs = append(errs, &ConfigError{Key: key, Reason: fmt.Sprintf("invalid port %q", value)})
				continue
			}
			player.Port = port
		case "password":
			player.Password = value
		}
	}

	result := make(map[string]PlayerConfig, len(players))
	for id, player := range players {
		result[id] = *player
	}

	return result, errors.Join(errs...)
}
