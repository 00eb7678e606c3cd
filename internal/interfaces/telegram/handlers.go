package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	cartapp "github.com/shopbot/backend/internal/application/cart"
	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	checkoutapp "github.com/shopbot/backend/internal/application/checkout"
	orderapp "github.com/shopbot/backend/internal/application/order"
	"github.com/shopbot/backend/internal/domain/access"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/logger"
)

// Handlers implements every bot command and inline button. Domain failures
// are rendered to the user and swallowed; only transport failures and
// storage-level errors propagate to the router.
type Handlers struct {
	products *catalogapp.ProductService
	carts    *cartapp.CartService
	checkout *checkoutapp.CheckoutService
	orders   *orderapp.OrderService
	policy   *access.Policy
	sender   Sender
	render   *Renderer

	// ordersPreview caps the /orders listing; the ledger itself is unbounded
	ordersPreview int
}

// NewHandlers creates the bot handler set
func NewHandlers(
	products *catalogapp.ProductService,
	carts *cartapp.CartService,
	checkout *checkoutapp.CheckoutService,
	orders *orderapp.OrderService,
	policy *access.Policy,
	sender Sender,
	render *Renderer,
	ordersPreview int,
) *Handlers {
	return &Handlers{
		products:      products,
		carts:         carts,
		checkout:      checkout,
		orders:        orders,
		policy:        policy,
		sender:        sender,
		render:        render,
		ordersPreview: ordersPreview,
	}
}

// HandleStart replies to /start with the greeting and command list
func (h *Handlers) HandleStart(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(msg.Chat.ID, h.render.Greeting(msg.From.FirstName, h.policy.IsPrivileged(msg.From.ID)))
}

// HandleHelp replies to /help with the command list
func (h *Handlers) HandleHelp(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(msg.Chat.ID, h.render.Help(h.policy.IsPrivileged(msg.From.ID)))
}

// HandleCatalog replies to /catalog with a product page. An optional numeric
// argument selects the page as displayed in the header; anything unparsable
// falls back to the first page.
func (h *Handlers) HandleCatalog(ctx context.Context, msg *tgbotapi.Message) error {
	page := 0
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		if n, err := strconv.Atoi(args); err == nil && n > 1 {
			page = n - 1
		}
	}

	resp, err := h.products.ListProducts(ctx, page)
	if err != nil {
		return h.replyError(msg.Chat.ID, err)
	}
	if len(resp.Products) == 0 {
		return h.reply(msg.Chat.ID, msgEmptyCatalog)
	}

	text, kb := h.render.Catalog(resp)
	return h.replyWithKeyboard(msg.Chat.ID, text, kb)
}

// HandleCart replies to /cart with the cart view
func (h *Handlers) HandleCart(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := h.carts.GetCart(ctx, msg.From.ID)
	if err != nil {
		return h.replyError(msg.Chat.ID, err)
	}
	if resp.IsEmpty() {
		return h.reply(msg.Chat.ID, msgEmptyCart)
	}

	text, kb := h.render.Cart(resp)
	return h.replyWithKeyboard(msg.Chat.ID, text, kb)
}

// HandleOrders replies to /orders with the newest orders, admins only
func (h *Handlers) HandleOrders(ctx context.Context, msg *tgbotapi.Message) error {
	resp, err := h.orders.ListOrders(ctx, msg.From.ID)
	if err != nil {
		return h.replyError(msg.Chat.ID, err)
	}
	return h.reply(msg.Chat.ID, h.render.Orders(resp, h.ordersPreview))
}

// HandleAddProduct handles /addproduct Title | Description | Price | image-url
func (h *Handlers) HandleAddProduct(ctx context.Context, msg *tgbotapi.Message) error {
	req, err := parseAddProduct(msg.CommandArguments())
	if err != nil {
		return h.replyError(msg.Chat.ID, err)
	}

	resp, err := h.products.AddProduct(ctx, msg.From.ID, req)
	if err != nil {
		return h.replyError(msg.Chat.ID, err)
	}
	return h.reply(msg.Chat.ID, h.render.ProductAdded(resp))
}

// HandleText answers plain text that is not a command
func (h *Handlers) HandleText(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(msg.Chat.ID, msgUnknownCommand)
}

// HandleUnknownCommand answers commands the bot does not know
func (h *Handlers) HandleUnknownCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return h.reply(msg.Chat.ID, msgUnknownCommand)
}

// HandleCallback dispatches an inline button press. Every branch answers the
// callback query so the client stops its spinner.
func (h *Handlers) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if cq.Message == nil {
		return h.answer(cq.ID, "")
	}

	q, ok := parseCallback(cq.Data)
	if !ok {
		return h.answer(cq.ID, msgUnknownButton)
	}

	switch q.action {
	case "view":
		return h.handleView(ctx, cq, q.arg(0))
	case "add":
		return h.handleAdd(ctx, cq, q.arg(0), int(q.arg(1)))
	case "remove":
		return h.handleRemove(ctx, cq, q.arg(0))
	case "page", "back":
		return h.handlePage(ctx, cq, int(q.arg(0)))
	case "checkout":
		return h.handleCheckout(ctx, cq)
	default:
		return h.answer(cq.ID, msgUnknownButton)
	}
}

// handleView sends a product card for a view_{id} button
func (h *Handlers) handleView(ctx context.Context, cq *tgbotapi.CallbackQuery, productID int64) error {
	if err := h.answer(cq.ID, ""); err != nil {
		return err
	}

	resp, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return h.reply(cq.Message.Chat.ID, msgProductGone)
		}
		return h.replyError(cq.Message.Chat.ID, err)
	}

	fromPage := catalogPageOf(cq.Message)
	text, kb := h.render.ProductCard(resp, fromPage)

	if resp.Image != "" {
		photo := tgbotapi.NewPhoto(cq.Message.Chat.ID, tgbotapi.FileURL(resp.Image))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = kb
		if _, err := h.sender.Send(photo); err == nil {
			return nil
		}
		// Unreachable image hosts degrade to the text card
		logger.FromContext(ctx).Warn("failed to send product photo",
			zap.Int64("product_id", productID))
	}

	m := tgbotapi.NewMessage(cq.Message.Chat.ID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	m.ReplyMarkup = kb
	_, err = h.sender.Send(m)
	return err
}

// handleAdd adds to the cart for an add_{productID}_{qty} button
func (h *Handlers) handleAdd(ctx context.Context, cq *tgbotapi.CallbackQuery, productID int64, qty int) error {
	if err := h.carts.AddToCart(ctx, cq.From.ID, productID, qty); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return h.answer(cq.ID, msgProductGone)
		}
		if answerErr := h.answer(cq.ID, h.render.ErrorText(err)); answerErr != nil {
			return answerErr
		}
		return swallowRecoverable(err)
	}
	return h.answer(cq.ID, msgAddedToCart)
}

// handleRemove drops a cart line for a remove_{productID} button and
// refreshes the cart message in place
func (h *Handlers) handleRemove(ctx context.Context, cq *tgbotapi.CallbackQuery, productID int64) error {
	if err := h.carts.RemoveFromCart(ctx, cq.From.ID, productID); err != nil {
		if answerErr := h.answer(cq.ID, h.render.ErrorText(err)); answerErr != nil {
			return answerErr
		}
		return swallowRecoverable(err)
	}
	if err := h.answer(cq.ID, msgRemoved); err != nil {
		return err
	}

	resp, err := h.carts.GetCart(ctx, cq.From.ID)
	if err != nil {
		return h.editError(cq, err)
	}
	if resp.IsEmpty() {
		return h.editText(cq, msgEmptyCart)
	}

	text, kb := h.render.Cart(resp)
	return h.editWithKeyboard(cq, text, kb)
}

// handlePage re-renders the catalog for page_{n} and back_{page}. Text
// messages are edited in place; photo cards cannot take a text edit, so the
// catalog arrives as a fresh message instead.
func (h *Handlers) handlePage(ctx context.Context, cq *tgbotapi.CallbackQuery, page int) error {
	if err := h.answer(cq.ID, ""); err != nil {
		return err
	}

	inPlace := len(cq.Message.Photo) == 0

	resp, err := h.products.ListProducts(ctx, page)
	if err != nil {
		if !inPlace {
			return h.replyError(cq.Message.Chat.ID, err)
		}
		return h.editError(cq, err)
	}
	if len(resp.Products) == 0 {
		if !inPlace {
			return h.reply(cq.Message.Chat.ID, msgEmptyCatalog)
		}
		return h.editText(cq, msgEmptyCatalog)
	}

	text, kb := h.render.Catalog(resp)
	if !inPlace {
		return h.replyWithKeyboard(cq.Message.Chat.ID, text, kb)
	}
	return h.editWithKeyboard(cq, text, kb)
}

// handleCheckout converts the cart into an order for the checkout button
func (h *Handlers) handleCheckout(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	if err := h.answer(cq.ID, ""); err != nil {
		return err
	}

	resp, err := h.checkout.Checkout(ctx, cq.From.ID)
	if err != nil {
		return h.editError(cq, err)
	}
	return h.editText(cq, h.render.OrderConfirmation(resp))
}

// reply sends a plain text message
func (h *Handlers) reply(chatID int64, text string) error {
	_, err := h.sender.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// replyWithKeyboard sends a text message with an inline keyboard
func (h *Handlers) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	_, err := h.sender.Send(m)
	return err
}

// replyError renders a failure as a message. Recoverable domain errors are
// part of normal conversation and end here; anything else propagates so the
// router logs it and counts the update as failed.
func (h *Handlers) replyError(chatID int64, err error) error {
	if sendErr := h.reply(chatID, h.render.ErrorText(err)); sendErr != nil {
		return sendErr
	}
	return swallowRecoverable(err)
}

// editError is replyError for in-place message edits
func (h *Handlers) editError(cq *tgbotapi.CallbackQuery, err error) error {
	if editErr := h.editText(cq, h.render.ErrorText(err)); editErr != nil {
		return editErr
	}
	return swallowRecoverable(err)
}

// editText replaces the callback's message text and drops its keyboard
func (h *Handlers) editText(cq *tgbotapi.CallbackQuery, text string) error {
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text)
	_, err := h.sender.Send(edit)
	return err
}

// editWithKeyboard replaces the callback's message text and keyboard
func (h *Handlers) editWithKeyboard(cq *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cq.Message.Chat.ID, cq.Message.MessageID, text, kb)
	_, err := h.sender.Send(edit)
	return err
}

// answer acknowledges a callback query, optionally with a toast text
func (h *Handlers) answer(callbackID, text string) error {
	_, err := h.sender.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// swallowRecoverable keeps recoverable domain errors out of the router's
// failure accounting once they have been rendered to the user
func swallowRecoverable(err error) error {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return err
	}
	switch domainErr.Code {
	case "VALIDATION_ERROR", "EMPTY_CART", "FORBIDDEN", "NOT_FOUND":
		return nil
	}
	return err
}

// catalogPageOf recovers the page a catalog message is showing from its
// header line, so product cards can link back to it. Anything that is not a
// catalog message reports page 0.
func catalogPageOf(msg *tgbotapi.Message) int {
	if !strings.HasPrefix(msg.Text, catalogHeaderPrefix) {
		return 0
	}
	rest := msg.Text[len(catalogHeaderPrefix):]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}
