package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartapp "github.com/shopbot/backend/internal/application/cart"
	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	checkoutapp "github.com/shopbot/backend/internal/application/checkout"
	orderapp "github.com/shopbot/backend/internal/application/order"
	"github.com/shopbot/backend/internal/domain/access"
	"github.com/shopbot/backend/internal/domain/order"
	"github.com/shopbot/backend/internal/infrastructure/cache"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopbot/backend/internal/interfaces/telegram"
)

const (
	adminID = int64(42)
	aliceID = int64(1001)
	bobID   = int64(1002)
)

// recordingSender captures everything the bot would send to Telegram. It is
// safe for concurrent use so checkout races can be driven through it.
type recordingSender struct {
	mu     sync.Mutex
	sent   []tgbotapi.Chattable
	toasts []string
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return tgbotapi.Message{MessageID: len(s.sent)}, nil
}

func (s *recordingSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		s.toasts = append(s.toasts, cb.Text)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// lastReply returns the text of the most recent message or edit.
func (s *recordingSender) lastReply(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sent) - 1; i >= 0; i-- {
		switch c := s.sent[i].(type) {
		case tgbotapi.MessageConfig:
			return c.Text
		case tgbotapi.EditMessageTextConfig:
			return c.Text
		}
	}
	t.Fatal("no replies recorded")
	return ""
}

// replies returns the texts of every message and edit, oldest first.
func (s *recordingSender) replies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, c := range s.sent {
		switch c := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, c.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, c.Text)
		}
	}
	return out
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.toasts = nil
}

type shopEnv struct {
	sender *recordingSender
	router *telegram.Router
	orders order.OrderRepository
	db     *gorm.DB
}

// newShopEnv wires the full stack over a migrated in-memory database. The
// catalog page size is kept small so a handful of products spans pages.
func newShopEnv(t *testing.T) *shopEnv {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()

	productRepo := persistence.NewGormProductRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)

	productCache := cache.NewInMemoryCatalogCache(time.Minute)
	t.Cleanup(func() { _ = productCache.Close() })

	metrics := telemetry.NewBotMetrics()
	policy := access.NewPolicy([]int64{adminID})

	products := catalogapp.NewProductService(productRepo, productCache, policy, metrics, log, 2)
	carts := cartapp.NewCartService(cartRepo, productRepo, log)
	checkoutSvc := checkoutapp.NewCheckoutService(cartRepo, productRepo, orderRepo, metrics, log)
	ordersSvc := orderapp.NewOrderService(orderRepo, policy, log)

	sender := &recordingSender{}
	handlers := telegram.NewHandlers(products, carts, checkoutSvc, ordersSvc, policy, sender, telegram.NewRenderer("$"), 10)

	return &shopEnv{
		sender: sender,
		router: telegram.NewRouter(handlers, metrics, log),
		orders: orderRepo,
		db:     db,
	}
}

func commandUpdate(userID int64, text string) tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      &tgbotapi.User{ID: userID, FirstName: "Shopper"},
			Chat:      &tgbotapi.Chat{ID: userID},
			Text:      text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(cmd)},
			},
		},
	}
}

func callbackUpdate(userID int64, data, messageText string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: userID, FirstName: "Shopper"},
			Data: data,
			Message: &tgbotapi.Message{
				MessageID: 7,
				Chat:      &tgbotapi.Chat{ID: userID},
				Text:      messageText,
			},
		},
	}
}

func TestShopFlow_AdminStocksThenCustomerChecksOut(t *testing.T) {
	env := newShopEnv(t)
	ctx := context.Background()

	// The admin stocks three products.
	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Espresso Beans | Dark roast, 1kg | 12.50 | https://img.example/beans.jpg"))
	assert.Equal(t, "Product added with id 1.", env.sender.lastReply(t))
	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Moka Pot | Stovetop, six cups | 29.00"))
	assert.Equal(t, "Product added with id 2.", env.sender.lastReply(t))
	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Mug | | 4.75"))
	assert.Equal(t, "Product added with id 3.", env.sender.lastReply(t))

	// The first catalog page shows the two newest products.
	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/catalog"))
	page := env.sender.lastReply(t)
	assert.Contains(t, page, "Catalog — page 1")
	assert.Contains(t, page, "Mug — $4.75")
	assert.Contains(t, page, "Moka Pot — $29.00")
	assert.NotContains(t, page, "Espresso Beans")

	// The second page holds the oldest product.
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "page_1", page))
	assert.Contains(t, env.sender.lastReply(t), "Espresso Beans — $12.50")

	// Alice adds the beans twice and a mug once.
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "add_1_1", ""))
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "add_1_1", ""))
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "add_3_1", ""))

	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/cart"))
	cartView := env.sender.lastReply(t)
	assert.Contains(t, cartView, "Espresso Beans × 2 = $25.00")
	assert.Contains(t, cartView, "Mug × 1 = $4.75")
	assert.Contains(t, cartView, "Total: $29.75")

	// Removing the mug re-renders the cart without it.
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "remove_3", cartView))
	cartView = env.sender.lastReply(t)
	assert.NotContains(t, cartView, "Mug")
	assert.Contains(t, cartView, "Total: $25.00")

	// Checkout converts the cart into an order.
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "checkout_0", cartView))
	assert.Equal(t, "Order #1 created. Total: $25.00. Thank you!", env.sender.lastReply(t))

	created, err := env.orders.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, aliceID, created.UserID)
	assert.Equal(t, int64(2500), created.Total.MinorUnits())
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Espresso Beans", created.Items[0].Title)
	assert.Equal(t, 2, created.Items[0].Quantity)

	// The cart is empty afterwards.
	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/cart"))
	assert.Equal(t, "Your cart is empty. Use /catalog to add products.", env.sender.lastReply(t))

	// The admin sees the order; a second checkout attempt has nothing to
	// convert and no further order appears.
	env.router.Dispatch(ctx, commandUpdate(adminID, "/orders"))
	assert.Contains(t, env.sender.lastReply(t), "#1 · $25.00 · new")

	env.router.Dispatch(ctx, callbackUpdate(aliceID, "checkout_0", cartView))
	assert.Equal(t, "Your cart is empty. Use /catalog to add products.", env.sender.lastReply(t))
	all, err := env.orders.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestShopFlow_AdminCommandsAreDeniedToCustomers(t *testing.T) {
	env := newShopEnv(t)
	ctx := context.Background()

	env.router.Dispatch(ctx, commandUpdate(bobID, "/addproduct Sneaky | | 0.01"))
	assert.Equal(t, "This command is only available to administrators.", env.sender.lastReply(t))

	env.router.Dispatch(ctx, commandUpdate(bobID, "/orders"))
	assert.Equal(t, "This command is only available to administrators.", env.sender.lastReply(t))

	// Nothing was written.
	var count int64
	require.NoError(t, env.db.Table("products").Count(&count).Error)
	assert.Zero(t, count)
}

func TestShopFlow_ProductDetailAndCartMergeAcrossUsers(t *testing.T) {
	env := newShopEnv(t)
	ctx := context.Background()

	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Teapot | Cast iron | 54.00"))

	// The detail card renders from the catalog page and links back to it.
	env.sender.reset()
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "view_1", "Catalog — page 1\n\nTeapot — $54.00"))
	card := env.sender.lastReply(t)
	assert.Contains(t, card, "*Teapot*")
	assert.Contains(t, card, "Cast iron")
	assert.Contains(t, card, "Price: $54.00")

	// Two users fill carts independently.
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "add_1_1", ""))
	env.router.Dispatch(ctx, callbackUpdate(bobID, "add_1_1", ""))
	env.router.Dispatch(ctx, callbackUpdate(bobID, "add_1_1", ""))

	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/cart"))
	assert.Contains(t, env.sender.lastReply(t), "Teapot × 1 = $54.00")

	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(bobID, "/cart"))
	assert.Contains(t, env.sender.lastReply(t), "Teapot × 2 = $108.00")

	// Bob checks out; Alice's cart is untouched.
	env.router.Dispatch(ctx, callbackUpdate(bobID, "checkout_0", ""))
	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/cart"))
	assert.Contains(t, env.sender.lastReply(t), "Teapot × 1 = $54.00")
}

func TestShopFlow_ConcurrentCheckoutCreatesOneOrder(t *testing.T) {
	env := newShopEnv(t)
	ctx := context.Background()

	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Kettle | | 32.00"))
	env.router.Dispatch(ctx, callbackUpdate(aliceID, "add_1_1", ""))

	// A double-tapped checkout button lands as racing updates. Exactly one
	// may convert the cart; the other must see it already emptied.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env.router.Dispatch(ctx, callbackUpdate(aliceID, "checkout_0", ""))
		}()
	}
	wg.Wait()

	all, err := env.orders.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(3200), all[0].Total.MinorUnits())

	replies := env.sender.replies()
	var confirmations, emptyNotices int
	for _, text := range replies {
		if strings.Contains(text, "Order #1 created") {
			confirmations++
		}
		if text == "Your cart is empty. Use /catalog to add products." {
			emptyNotices++
		}
	}
	assert.Equal(t, 1, confirmations, "replies: %v", replies)
	assert.Equal(t, 1, emptyNotices, "replies: %v", replies)
}

func TestShopFlow_CatalogSurvivesCacheReuse(t *testing.T) {
	env := newShopEnv(t)
	ctx := context.Background()

	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Grinder | Burr | 80.00"))

	// Browse twice: the second render comes from the page cache.
	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/catalog"))
	first := env.sender.lastReply(t)
	env.router.Dispatch(ctx, commandUpdate(bobID, "/catalog"))
	assert.Equal(t, first, env.sender.lastReply(t))

	// A new product invalidates cached pages; the next render includes it.
	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Scale | 0.1g | 24.00"))
	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(aliceID, "/catalog"))
	assert.Contains(t, env.sender.lastReply(t), "Scale — $24.00")
}

func TestShopFlow_OrderListingIsCapped(t *testing.T) {
	env := newShopEnv(t)
	ctx := context.Background()

	env.router.Dispatch(ctx, commandUpdate(adminID, "/addproduct Filter Papers | | 3.00"))

	// Twelve checkouts against an orders preview of ten.
	for i := 0; i < 12; i++ {
		env.router.Dispatch(ctx, callbackUpdate(aliceID, "add_1_1", ""))
		env.router.Dispatch(ctx, callbackUpdate(aliceID, "checkout_0", ""))
	}

	env.sender.reset()
	env.router.Dispatch(ctx, commandUpdate(adminID, "/orders"))
	listing := env.sender.lastReply(t)

	lines := strings.Split(listing, "\n")
	assert.Len(t, lines, 10)
	// Newest first.
	assert.Contains(t, lines[0], "#12 ·")
	assert.Contains(t, lines[9], "#3 ·")
	assert.NotContains(t, listing, fmt.Sprintf("#%d ·", 2))
}
