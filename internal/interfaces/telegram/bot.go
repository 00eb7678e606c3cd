package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/shopbot/backend/internal/infrastructure/config"
)

// Bot runs the long-polling update loop. Each update is handled in its own
// goroutine; Run returns only after in-flight handlers finish.
type Bot struct {
	api    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	logger *zap.Logger
}

// NewBot connects to the Telegram API and builds the bot. The update loop
// starts with Run; the client is available through API for wiring handlers.
func NewBot(cfg *config.BotConfig, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return &Bot{
		api:    api,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// API exposes the underlying client, satisfying Sender for the handlers
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Run polls for updates and dispatches them through the router until ctx is
// cancelled, then drains in-flight handlers and returns.
func (b *Bot) Run(ctx context.Context, router *Router) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.logger.Info("bot update loop started",
		zap.Int("poll_timeout_seconds", b.cfg.PollTimeoutSeconds),
	)

	var wg sync.WaitGroup
	for update := range updates {
		wg.Add(1)
		go func(update tgbotapi.Update) {
			defer wg.Done()
			router.Dispatch(ctx, update)
		}(update)
	}

	wg.Wait()
	b.logger.Info("bot update loop stopped")
	return nil
}
