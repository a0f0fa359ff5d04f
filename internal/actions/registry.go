package actions

import (
	"context"
	"sync"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// EntityType identifies the kind of entity an approved action targets.
type EntityType string

// ActionType identifies what the approved action does.
type ActionType string

const (
	EntityInventory EntityType = "inventory"

	ActionDelete ActionType = "delete"
)

type key struct {
	Entity EntityType
	Action ActionType
}

// HandlerFunc performs the real side effect of an approved action.
type HandlerFunc func(ctx context.Context, entityID string) error

// Registry dispatches (entity, action) pairs to handlers. Bindings are
// registered at startup; the approval engine never learns what an action
// does.
type Registry struct {
	mu       sync.RWMutex
	handlers map[key]HandlerFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[key]HandlerFunc)}
}

// Register binds a handler to an (entity, action) pair. Later registrations
// for the same pair replace earlier ones.
func (r *Registry) Register(entity EntityType, action ActionType, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key{Entity: entity, Action: action}] = fn
}

// Execute runs the handler bound to the pair. Unknown pairs fail as an
// invalid operation; handler failures are wrapped with the action context.
func (r *Registry) Execute(ctx context.Context, entity EntityType, action ActionType, entityID string) error {
	r.mu.RLock()
	fn, ok := r.handlers[key{Entity: entity, Action: action}]
	r.mu.RUnlock()

	if !ok {
		return apperrors.NewInvalidOperation("no action registered", map[string]any{
			"entity_type": string(entity),
			"action_type": string(action),
		})
	}
	if err := fn(ctx, entityID); err != nil {
		return apperrors.NewExecutionFailure(string(entity), string(action), entityID, err)
	}
	return nil
}
