package events

import (
	"context"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
)

// Dispatcher delivers events synchronously to in-process handlers.
type Dispatcher struct {
	handlers []core.EventHandler
	logger   core.Logger
}

var _ core.EventPublisher = (*Dispatcher)(nil)

func NewDispatcher(logger core.Logger, handlers ...core.EventHandler) *Dispatcher {
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Subscribe registers h for every subsequent event.
func (d *Dispatcher) Subscribe(h core.EventHandler) {
	d.handlers = append(d.handlers, h)
}

// Publish runs every handler for every event and returns the first failure.
// A failing handler does not prevent the others from running.
func (d *Dispatcher) Publish(ctx context.Context, events ...core.Event) error {
	var firstErr error
	for _, evt := range events {
		for _, h := range d.handlers {
			if err := h.HandleEvent(ctx, evt); err != nil {
				d.logger.Error("handling event", errors.Wrap(err, evt.Type), map[string]interface{}{
					"evaluationId": evt.EvaluationID,
				})
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}
