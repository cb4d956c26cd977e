package mpd

import (
	"fmt"
	"strings"
)

// Provider resolves item bindings in both directions: bus command to player
// operation, and player operation back to the items that should receive
// state updates.
type Provider interface {
	// PlayerCommand returns the "<playerId>:<operation>" mapping for an
	// item receiving the given bus command, or false when this provider has
	// no binding for the pair.
	PlayerCommand(itemName, command string) (string, bool)

	// ItemNamesForPlayerOperation returns the items bound to the given
	// player and operation.
	ItemNamesForPlayerOperation(playerID string, op Operation) []string
}

// BindingSpec is one item binding as declared in configuration.
type BindingSpec struct {
	// Item is the bus item name.
	Item string

	// Command is the bus command that triggers the operation (e.g. "ON").
	Command string

	// Player is the target player id.
	Player string

	// Operation names the player action (play, pause, volume_increase, ...).
	Operation string
}

// binding is a validated BindingSpec.
type binding struct {
	item    string
	command string
	player  string
	op      Operation
}

// BindingTable is a Provider backed by a static binding list from the
// service configuration.
type BindingTable struct {
	bindings []binding
}

// Ensure BindingTable implements Provider.
var _ Provider = (*BindingTable)(nil)

// NewBindingTable validates the specs and builds a binding table.
// Bus commands match case-insensitively.
func NewBindingTable(specs []BindingSpec) (*BindingTable, error) {
	bindings := make([]binding, 0, len(specs))

	for i, spec := range specs {
		if spec.Item == "" {
			return nil, fmt.Errorf("%w: binding %d: item is required", ErrInvalidBinding, i)
		}
		if spec.Command == "" {
			return nil, fmt.Errorf("%w: binding %d (%s): command is required", ErrInvalidBinding, i, spec.Item)
		}
		if spec.Player == "" {
			return nil, fmt.Errorf("%w: binding %d (%s): player is required", ErrInvalidBinding, i, spec.Item)
		}

		op, err := ParseOperation(spec.Operation)
		if err != nil {
			return nil, fmt.Errorf("%w: binding %d (%s): %w", ErrInvalidBinding, i, spec.Item, err)
		}

		bindings = append(bindings, binding{
			item:    spec.Item,
			command: strings.ToUpper(spec.Command),
			player:  spec.Player,
			op:      op,
		})
	}

	return &BindingTable{bindings: bindings}, nil
}

// PlayerCommand implements Provider. The first binding matching the item and
// command wins.
func (t *BindingTable) PlayerCommand(itemName, command string) (string, bool) {
	command = strings.ToUpper(strings.TrimSpace(command))

	for _, b := range t.bindings {
		if b.item == itemName && b.command == command {
			return b.player + ":" + string(b.op), true
		}
	}

	return "", false
}

// ItemNamesForPlayerOperation implements Provider.
func (t *BindingTable) ItemNamesForPlayerOperation(playerID string, op Operation) []string {
	var items []string

	for _, b := range t.bindings {
		if b.player == playerID && b.op == op {
			items = append(items, b.item)
		}
	}

	return items
}
