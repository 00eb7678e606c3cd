package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	cartapp "github.com/shopbot/backend/internal/application/cart"
	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	orderapp "github.com/shopbot/backend/internal/application/order"
	"github.com/shopbot/backend/internal/domain/shared"
)

// User-facing copy. Everything the bot says lives here so the handlers stay
// free of message strings.
const (
	msgEmptyCatalog   = "The catalog is empty or this page has no products."
	msgEmptyCart      = "Your cart is empty. Use /catalog to add products."
	msgNoOrders       = "No orders yet."
	msgAccessDenied   = "This command is only available to administrators."
	msgNotFound       = "Not found."
	msgProductGone    = "This product is no longer available."
	msgGenericFailure = "Something went wrong, please try again."
	msgUnknownCommand = "Unknown command. Try /catalog or /cart."
	msgUnknownButton  = "This button is no longer active."
	msgAddedToCart    = "Added to cart"
	msgRemoved        = "Removed"

	msgAddProductUsage = "Send product data as: /addproduct Title | Description | Price | image-url\n" +
		"Description may be left blank and image-url omitted; price uses up to two decimals (e.g. 12.50)."
)

// catalogHeaderPrefix opens every catalog message; product cards read the
// page number back out of it to build their back button.
const catalogHeaderPrefix = "Catalog — page "

// Renderer turns application responses into Telegram texts and keyboards.
// All prices are prefixed with the configured currency symbol.
type Renderer struct {
	currency string
}

// NewRenderer creates a Renderer using the given currency symbol
func NewRenderer(currencySymbol string) *Renderer {
	return &Renderer{currency: currencySymbol}
}

// Price renders a money display string with the currency symbol
func (r *Renderer) Price(amount string) string {
	return r.currency + amount
}

// ErrorText maps a failed operation to the copy shown to the user.
// Validation messages are written for end users and pass through verbatim;
// everything unexpected collapses into a generic failure notice.
func (r *Renderer) ErrorText(err error) string {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return msgGenericFailure
	}

	switch domainErr.Code {
	case "VALIDATION_ERROR":
		return domainErr.Message
	case "EMPTY_CART":
		return msgEmptyCart
	case "FORBIDDEN":
		return msgAccessDenied
	case "NOT_FOUND":
		return msgNotFound
	default:
		return msgGenericFailure
	}
}

// Greeting renders the /start reply
func (r *Renderer) Greeting(firstName string, privileged bool) string {
	var b strings.Builder
	if firstName != "" {
		fmt.Fprintf(&b, "Hi, %s! Welcome to the shop.\n\n", firstName)
	} else {
		b.WriteString("Welcome to the shop.\n\n")
	}
	b.WriteString(r.commandList(privileged))
	return b.String()
}

// Help renders the /help reply
func (r *Renderer) Help(privileged bool) string {
	return r.commandList(privileged)
}

func (r *Renderer) commandList(privileged bool) string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	b.WriteString("/catalog — browse products\n")
	b.WriteString("/cart — view your cart")
	if privileged {
		b.WriteString("\n\nAdmin commands:\n")
		b.WriteString("/addproduct Title | Description | Price | image-url\n")
		b.WriteString("/orders — recent orders")
	}
	return b.String()
}

// Catalog renders one catalog page: a line per product plus a keyboard with
// a view button per product and pagination controls where pages exist.
func (r *Renderer) Catalog(page *catalogapp.CatalogPageResponse) (string, tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%d\n\n", catalogHeaderPrefix, page.Page+1)
	for _, p := range page.Products {
		fmt.Fprintf(&b, "%s — %s\n", p.Title, r.Price(p.Price))
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(page.Products)+1)
	for _, p := range page.Products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Title, fmt.Sprintf("view_%d", p.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page.HasPrev {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("« Prev", fmt.Sprintf("page_%d", page.Page-1)))
	}
	if page.HasNext {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next »", fmt.Sprintf("page_%d", page.Page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ProductCard renders the detail view for one product. The back button
// returns to the catalog page the card was opened from.
func (r *Renderer) ProductCard(p *catalogapp.ProductResponse, fromPage int) (string, tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", p.Title)
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Price: %s", r.Price(p.Price))

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Add to cart", fmt.Sprintf("add_%d_1", p.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back to catalog", fmt.Sprintf("back_%d", fromPage)),
		),
	)
	return b.String(), kb
}

// Cart renders the cart view: one line per item, the total, a remove button
// per line and a checkout button.
func (r *Renderer) Cart(cart *cartapp.CartResponse) (string, tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		fmt.Fprintf(&b, "%s × %d = %s\n", item.Title, item.Quantity, r.Price(item.Subtotal))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Remove %s", item.Title),
				fmt.Sprintf("remove_%d", item.ProductID),
			),
		))
	}
	fmt.Fprintf(&b, "\nTotal: %s", r.Price(cart.Total))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Checkout", "checkout_0"),
	))

	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Orders renders the admin order listing, newest first, capped at limit rows
func (r *Renderer) Orders(orders []orderapp.OrderResponse, limit int) string {
	if len(orders) == 0 {
		return msgNoOrders
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}

	var b strings.Builder
	for i, o := range orders {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d · %s · %s · %s",
			o.ID, r.Price(o.Total), o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// OrderConfirmation renders the checkout success message
func (r *Renderer) OrderConfirmation(o *orderapp.OrderResponse) string {
	return fmt.Sprintf("Order #%d created. Total: %s. Thank you!", o.ID, r.Price(o.Total))
}

// ProductAdded renders the admin confirmation after a catalog insert
func (r *Renderer) ProductAdded(p *catalogapp.ProductResponse) string {
	return fmt.Sprintf("Product added with id %d.", p.ID)
}
