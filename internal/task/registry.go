package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// PayloadValidator is implemented by payload types that can check their own
// contents. When a registered payload type implements it, Validate is called
// at submission time and a failure rejects the task before it is queued.
type PayloadValidator interface {
	Validate() error
}

// registration binds one task type tag to its typed handler. The typed
// payload is erased behind the any-valued funcs so the pool can stay
// ignorant of concrete payload types.
type registration struct {
	run    func(ctx context.Context, payload any) (any, error)
	check  func(payload any) error
	decode func(raw json.RawMessage) (any, error)
}

// Registry is the fixed table of task handlers a pool dispatches from.
// Register every handler before handing the registry to NewPool; the
// registry is not safe for mutation once a pool is reading from it.
type Registry struct {
	handlers map[string]registration
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]registration),
	}
}

// Register binds a task type tag to a handler taking payloads of type P.
// Submissions for this type must carry a P; wire submissions are decoded
// into a P from JSON. If P implements PayloadValidator, its Validate method
// gates admission. Returns an error for an empty tag, a nil handler, or a
// tag that is already registered.
func Register[P any](r *Registry, taskType string, handler func(ctx context.Context, payload P) (any, error)) error {
	if taskType == "" {
		return fmt.Errorf("task type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler for task type %q cannot be nil", taskType)
	}
	if _, exists := r.handlers[taskType]; exists {
		return fmt.Errorf("task type %q is already registered", taskType)
	}

	r.handlers[taskType] = registration{
		run: func(ctx context.Context, payload any) (any, error) {
			typed, ok := payload.(P)
			if !ok {
				return nil, fmt.Errorf("%w: task type %q expects %T, got %T", ErrInvalidPayload, taskType, *new(P), payload)
			}
			return handler(ctx, typed)
		},
		check: func(payload any) error {
			typed, ok := payload.(P)
			if !ok {
				return fmt.Errorf("%w: task type %q expects %T, got %T", ErrInvalidPayload, taskType, *new(P), payload)
			}
			if v, ok := any(typed).(PayloadValidator); ok {
				if err := v.Validate(); err != nil {
					return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
				}
			}
			return nil
		},
		decode: func(raw json.RawMessage) (any, error) {
			var typed P
			if err := json.Unmarshal(raw, &typed); err != nil {
				return nil, fmt.Errorf("%w: task type %q: %v", ErrInvalidPayload, taskType, err)
			}
			return typed, nil
		},
	}
	return nil
}

// Has reports whether a handler is registered for the given type tag.
func (r *Registry) Has(taskType string) bool {
	_, ok := r.handlers[taskType]
	return ok
}

// Len returns the number of registered task types.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for taskType := range r.handlers {
		types = append(types, taskType)
	}
	sort.Strings(types)
	return types
}

// CheckPayload validates a payload against the registration for the given
// type: the type must be registered, the payload must be of the declared
// Go type, and any PayloadValidator check must pass.
func (r *Registry) CheckPayload(taskType string, payload any) error {
	reg, ok := r.handlers[taskType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}
	return reg.check(payload)
}

// DecodePayload unmarshals a raw JSON payload into the Go type registered
// for the given task type. Used by callers that receive payloads over the
// wire before submitting them.
func (r *Registry) DecodePayload(taskType string, raw json.RawMessage) (any, error) {
	reg, ok := r.handlers[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, taskType)
	}
	return reg.decode(raw)
}

// lookup returns the registration for a type tag.
func (r *Registry) lookup(taskType string) (registration, bool) {
	reg, ok := r.handlers[taskType]
	return reg, ok
}
