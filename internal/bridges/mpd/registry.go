package mpd

import "sync"

// Registry holds the current set of player connections keyed by player id.
//
// The set is replaced wholesale on config reload. Readers observe either the
// old set or the new one, never a partially rebuilt map.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Connection
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Connection)}
}

// Lookup returns the connection for a player id.
func (r *Registry) Lookup(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.players[id]
	return conn, ok
}

// Has returns true if the player id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.players[id]
	return ok
}

// All returns a snapshot of the current connections.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.players))
	for _, conn := range r.players {
		conns = append(conns, conn)
	}
	return conns
}

// IDs returns the registered player ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered players.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Replace swaps in a new player set and returns the previous one.
// A nil argument installs an empty set.
func (r *Registry) Replace(players map[string]*Connection) map[string]*Connection {
	if players == nil {
		players = make(map[string]*Connection)
	}

	r.mu.Lock()
	old := r.players
	r.players = players
	r.mu.Unlock()

	return old
}
