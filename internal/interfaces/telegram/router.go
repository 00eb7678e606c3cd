package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

// Router dispatches one Telegram update to its handler, wrapping the call
// with a request-scoped logger, metrics and panic containment. Updates run
// concurrently; everything below the router must be safe for that.
type Router struct {
	handlers *Handlers
	metrics  *telemetry.BotMetrics
	logger   *zap.Logger
}

// NewRouter creates a new Router
func NewRouter(handlers *Handlers, metrics *telemetry.BotMetrics, logger *zap.Logger) *Router {
	return &Router{
		handlers: handlers,
		metrics:  metrics,
		logger:   logger,
	}
}

// Dispatch routes an update. It never panics: a panicking handler is logged
// with its stack and counted as a failed update.
func (r *Router) Dispatch(ctx context.Context, update tgbotapi.Update) {
	from := updateFrom(update)
	if from == nil {
		// Channel posts and service updates carry no actor; nothing to do
		return
	}

	start := time.Now()
	name := updateName(update)

	log := r.logger
	ctx, log = logger.WithRequestID(ctx, log, uuid.NewString())
	ctx, log = logger.WithUserID(ctx, log, from.ID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("handler panicked",
				zap.String("handler", name),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			r.metrics.ObserveUpdate(name, telemetry.StatusError, time.Since(start))
		}
	}()

	err := r.route(ctx, update)
	status := telemetry.StatusOK
	if err != nil {
		status = telemetry.StatusError
		log.Error("update failed",
			zap.String("handler", name),
			zap.Error(err),
		)
	} else {
		log.Debug("update handled", zap.String("handler", name))
	}
	r.metrics.ObserveUpdate(name, status, time.Since(start))
}

// route calls the handler for the update. Kept in sync with updateName.
func (r *Router) route(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return r.handlers.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		return r.routeCommand(ctx, update.Message)
	case update.Message != nil:
		return r.handlers.HandleText(ctx, update.Message)
	default:
		return nil
	}
}

func (r *Router) routeCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return r.handlers.HandleStart(ctx, msg)
	case "help":
		return r.handlers.HandleHelp(ctx, msg)
	case "catalog":
		return r.handlers.HandleCatalog(ctx, msg)
	case "cart":
		return r.handlers.HandleCart(ctx, msg)
	case "orders":
		return r.handlers.HandleOrders(ctx, msg)
	case "addproduct":
		return r.handlers.HandleAddProduct(ctx, msg)
	default:
		return r.handlers.HandleUnknownCommand(ctx, msg)
	}
}

// updateFrom returns the acting user of an update, or nil when there is none
func updateFrom(update tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	case update.Message != nil:
		return update.Message.From
	default:
		return nil
	}
}

// knownCommands bounds the handler metric label; arbitrary command strings
// must not mint new label values.
var knownCommands = map[string]struct{}{
	"start":      {},
	"help":       {},
	"catalog":    {},
	"cart":       {},
	"orders":     {},
	"addproduct": {},
}

// updateName labels an update for logs and metrics
func updateName(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		if q, ok := parseCallback(update.CallbackQuery.Data); ok {
			return "callback_" + q.action
		}
		return "callback_unknown"
	case update.Message != nil && update.Message.IsCommand():
		cmd := update.Message.Command()
		if _, ok := knownCommands[cmd]; ok {
			return cmd
		}
		return "unknown_command"
	case update.Message != nil:
		return "text"
	default:
		return "ignored"
	}
}
