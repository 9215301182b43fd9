package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/bot/handlers"
)

// Router dispatches commands, callbacks, and step-aware text updates.
// Callback prefix routing lives inside the workflow engine, so the router
// only needs a single callback entry point.
type Router struct {
	mu              sync.RWMutex
	commands        map[string]handlers.Handler
	callbackHandler handlers.Handler
	dispatcher      *Dispatcher
	defaultHandler  handlers.Handler
	middlewares     []handlers.Middleware
	log             *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(dispatcher *Dispatcher, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		dispatcher:  dispatcher,
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// SetCallbackHandler sets the single entry point for callback queries.
func (r *Router) SetCallbackHandler(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbackHandler = h
}

// SetDefault sets the fallback handler for unmatched text.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if c.Callback() != nil {
		r.mu.RLock()
		handler := r.callbackHandler
		r.mu.RUnlock()

		if handler == nil {
			r.log.Info("no callback handler configured")
			return nil
		}
		return r.executeHandler(handler, c)
	}

	return r.handleMessage(c)
}

func (r *Router) handleMessage(c telebot.Context) error {
	text := c.Text()

	// Commands may carry arguments, e.g. "/unban 12345".
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		if i := strings.Index(cmd, "@"); i > 0 {
			cmd = cmd[:i]
		}
		if handler := r.getCommandHandler(cmd); handler != nil {
			return r.executeHandler(handler, c)
		}
	}

	if r.dispatcher != nil {
		handler, err := r.dispatcher.Resolve(c)
		if err != nil {
			return err
		}
		if handler != nil {
			return r.executeHandler(handler, c)
		}
	}

	if handler := r.getDefaultHandler(); handler != nil {
		return r.executeHandler(handler, c)
	}

	return nil
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

func (r *Router) getCommandHandler(cmd string) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[cmd]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getDefaultHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
