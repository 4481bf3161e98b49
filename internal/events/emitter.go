package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// InMemoryEventEmitter fans events out, synchronously, to handlers
// registered in process. Runs and their consumers live in the same
// binary, so no broker sits in between.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter that logs dispatch through logger.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to every subsequent event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent delivers event to every registered handler. A failing handler
// does not stop delivery to the rest; the first error comes back once all
// handlers have run.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *RunCompletedEvent) error {
	e.mu.RLock()
	handlers := slices.Clone(e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"run_id", event.RunID)
		return nil
	}

	e.logger.Debug("emitting run completed event",
		"event_id", event.ID,
		"run_id", event.RunID,
		"mode", event.Mode,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		err := handler.HandleEvent(ctx, event)
		if err == nil {
			continue
		}
		e.logger.Error("handler failed to process event",
			"error", err,
			"handler_index", i,
			"event_id", event.ID,
			"run_id", event.RunID)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
