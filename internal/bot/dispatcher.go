package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/bot/handlers"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/internal/worker"
)

// Dispatcher routes free-text messages to step-specific handlers based on the
// sender's persisted workflow step.
type Dispatcher struct {
	service      *worker.Service
	stepHandlers map[state.Step]handlers.Handler
	log          *slog.Logger
	mu           sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty handler registry.
func NewDispatcher(service *worker.Service, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		service:      service,
		stepHandlers: make(map[state.Step]handlers.Handler),
		log:          log,
	}
}

// RegisterStepHandler registers a handler for the provided workflow step.
func (d *Dispatcher) RegisterStepHandler(s state.Step, h handlers.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepHandlers[s] = h
}

// Resolve looks up the handler for the sender's current step. A nil handler
// means no step is waiting for text input.
func (d *Dispatcher) Resolve(c telebot.Context) (handlers.Handler, error) {
	if c == nil || c.Sender() == nil {
		d.log.Warn("cannot dispatch without sender information")
		return nil, nil
	}

	w, err := d.service.Get(context.Background(), c.Sender().ID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkerNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return d.getHandler(state.Step(w.Step)), nil
}

func (d *Dispatcher) getHandler(s state.Step) handlers.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stepHandlers[s]
}
