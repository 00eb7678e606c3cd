package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

func scrapeMetrics(t *testing.T, m *telemetry.BotMetrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestRouter_Dispatch_Command(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.handlers, env.metrics, zap.NewNop())

	router.Dispatch(context.Background(), tgbotapi.Update{
		Message: commandMessage(handlerTestUserID, "/cart"),
	})

	assert.Equal(t, msgEmptyCart, env.sender.lastMessage(t).Text)
	assert.Contains(t, scrapeMetrics(t, env.metrics),
		`shopbot_updates_total{handler="cart",status="ok"} 1`)
}

func TestRouter_Dispatch_Callback(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "Widget", 500, "")
	router := NewRouter(env.handlers, env.metrics, zap.NewNop())

	router.Dispatch(context.Background(), tgbotapi.Update{
		CallbackQuery: callbackFrom(handlerTestUserID, "add_1_1", "card"),
	})

	assert.Equal(t, []string{msgAddedToCart}, env.sender.toasts)
	assert.Contains(t, scrapeMetrics(t, env.metrics),
		`shopbot_updates_total{handler="callback_add",status="ok"} 1`)
}

func TestRouter_Dispatch_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.handlers, env.metrics, zap.NewNop())

	router.Dispatch(context.Background(), tgbotapi.Update{
		Message: commandMessage(handlerTestUserID, "/frobnicate"),
	})

	assert.Equal(t, msgUnknownCommand, env.sender.lastMessage(t).Text)
	// Arbitrary command strings must not become metric label values
	assert.Contains(t, scrapeMetrics(t, env.metrics),
		`shopbot_updates_total{handler="unknown_command",status="ok"} 1`)
}

func TestRouter_Dispatch_IgnoresActorlessUpdates(t *testing.T) {
	env := newTestEnv(t)
	router := NewRouter(env.handlers, env.metrics, zap.NewNop())

	router.Dispatch(context.Background(), tgbotapi.Update{})

	assert.Empty(t, env.sender.sent)
	assert.NotContains(t, scrapeMetrics(t, env.metrics), "shopbot_updates_total{")
}

func TestRouter_Dispatch_RecoversPanic(t *testing.T) {
	env := newTestEnv(t)
	// A handler set with no catalog service panics on /catalog; the router
	// must contain it and count the update as failed.
	broken := NewHandlers(nil, nil, nil, nil, nil, env.sender, NewRenderer("$"), 20)
	router := NewRouter(broken, env.metrics, zap.NewNop())

	require.NotPanics(t, func() {
		router.Dispatch(context.Background(), tgbotapi.Update{
			Message: commandMessage(handlerTestUserID, "/catalog"),
		})
	})

	assert.Contains(t, scrapeMetrics(t, env.metrics),
		`shopbot_updates_total{handler="catalog",status="error"} 1`)
}

func TestUpdateName(t *testing.T) {
	cases := []struct {
		name   string
		update tgbotapi.Update
		want   string
	}{
		{
			"known command",
			tgbotapi.Update{Message: commandMessage(1, "/catalog")},
			"catalog",
		},
		{
			"unknown command",
			tgbotapi.Update{Message: commandMessage(1, "/frobnicate")},
			"unknown_command",
		},
		{
			"plain text",
			tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", From: &tgbotapi.User{ID: 1}}},
			"text",
		},
		{
			"callback",
			tgbotapi.Update{CallbackQuery: callbackFrom(1, "view_7", "card")},
			"callback_view",
		},
		{
			"unparsable callback",
			tgbotapi.Update{CallbackQuery: callbackFrom(1, "junk", "card")},
			"callback_unknown",
		},
		{
			"actorless update",
			tgbotapi.Update{},
			"ignored",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, updateName(tc.update))
		})
	}
}
