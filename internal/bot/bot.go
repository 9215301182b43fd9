// Package bot wires the Telegram transport to the workflow engine: it
// receives updates through telebot, routes them through the middleware chain,
// and executes the engine's outbound commands.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/moonforge/worker-bot/internal/bot/keyboard"
	errors "github.com/moonforge/worker-bot/internal/errors"
	"github.com/moonforge/worker-bot/internal/idempotency"
	"github.com/moonforge/worker-bot/internal/middleware"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/internal/worker"
	"github.com/moonforge/worker-bot/internal/workflow"
	"github.com/moonforge/worker-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application dependencies needed to handle
// updates.
type Bot struct {
	telebot     *telebot.Bot
	log         *slog.Logger
	cfg         config.Config
	engine      *workflow.Engine
	executor    *Executor
	router      *Router
	dispatcher  *Dispatcher
	errHandler  *errors.Handler
	rateLimitMw *middleware.RateLimitMiddleware
}

// New builds a telegram bot instance configured according to the application
// settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	engine *workflow.Engine,
	service *worker.Service,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Bot.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.Bot.WebhookURL,
			},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(service, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:     tb,
		log:         log,
		cfg:         cfg,
		engine:      engine,
		executor:    NewExecutor(tb, kb, log),
		router:      router,
		dispatcher:  dispatcher,
		errHandler:  errHandler,
		rateLimitMw: rateLimitMw,
	}

	b.setupRouter(idempotencyManager, service)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such
// as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(idempotencyManager idempotency.Manager, service *worker.Service) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(service, b.log))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, b.handleStart)
	b.router.RegisterCommand(CommandStats, b.handleStats)
	b.router.RegisterCommand(CommandWorkers, b.handleWorkers)
	b.router.RegisterCommand(CommandUnban, b.handleUnban)

	b.router.SetCallbackHandler(b.handleCallback)

	b.dispatcher.RegisterStepHandler(state.StepAwaitingDomain, b.handleDomainText)
	b.dispatcher.RegisterStepHandler(state.StepAwaitingWallet, b.handleWalletText)

	b.router.SetDefault(b.handleFallback)
}

func (b *Bot) handleStart(c telebot.Context) error {
	cmds, err := b.engine.Start(context.Background(), actorFrom(c))
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleStats(c telebot.Context) error {
	cmds, err := b.engine.AdminStats(context.Background(), actorFrom(c))
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleWorkers(c telebot.Context) error {
	cmds, err := b.engine.AdminWorkers(context.Background(), actorFrom(c))
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleUnban(c telebot.Context) error {
	arg := ""
	if fields := strings.Fields(c.Text()); len(fields) > 1 {
		arg = fields[1]
	}

	cmds, err := b.engine.AdminUnban(context.Background(), actorFrom(c), arg)
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleCallback(c telebot.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}

	origin := workflow.MessageRef{}
	if cb.Message != nil {
		origin.MessageID = cb.Message.ID
		if cb.Message.Chat != nil {
			origin.ChatID = cb.Message.Chat.ID
		}
	}

	// telebot prefixes callback data with "\f" for its own dispatch scheme;
	// raw webhook payloads arrive without it.
	data := strings.TrimPrefix(cb.Data, "\f")

	cmds, err := b.engine.Callback(context.Background(), actorFrom(c), data, origin)
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleDomainText(c telebot.Context) error {
	cmds, err := b.engine.SubmitDomain(context.Background(), actorFrom(c), c.Text())
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleWalletText(c telebot.Context) error {
	cmds, err := b.engine.SubmitWallet(context.Background(), actorFrom(c), c.Text())
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func (b *Bot) handleFallback(c telebot.Context) error {
	cmds, err := b.engine.FallbackText(context.Background(), actorFrom(c))
	if err != nil {
		return err
	}
	return b.executor.Run(c, cmds)
}

func actorFrom(c telebot.Context) workflow.Actor {
	actor := workflow.Actor{}

	if sender := c.Sender(); sender != nil {
		actor.ID = sender.ID
		actor.FirstName = sender.FirstName
		actor.LastName = sender.LastName
		actor.Username = sender.Username
	}
	if chat := c.Chat(); chat != nil {
		actor.ChatID = chat.ID
	}

	return actor
}
