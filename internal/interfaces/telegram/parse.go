package telegram

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
)

// validate checks request DTOs against the same `binding` tags the HTTP
// surface uses, so both transports enforce one rule set.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// parseAddProduct parses the /addproduct argument tail:
//
//	Title | Description | Price | image-url
//
// Description may be blank, image-url may be blank or omitted entirely.
// Anything that does not fit the shape fails with a validation error
// carrying the usage prompt.
func parseAddProduct(args string) (catalogapp.AddProductRequest, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return catalogapp.AddProductRequest{}, shared.NewValidationError(msgAddProductUsage)
	}

	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return catalogapp.AddProductRequest{}, shared.NewValidationError(msgAddProductUsage)
	}

	req := catalogapp.AddProductRequest{
		Title:       parts[0],
		Description: parts[1],
		Price:       parts[2],
	}
	if len(parts) > 3 {
		req.Image = parts[3]
	}

	if err := validate.Struct(req); err != nil {
		return catalogapp.AddProductRequest{}, shared.NewValidationError(msgAddProductUsage)
	}
	return req, nil
}

// callbackQuery is a parsed inline button payload: an action name and its
// numeric arguments, e.g. "add_7_1" → {action: "add", args: [7, 1]}.
type callbackQuery struct {
	action string
	args   []int64
}

// arg returns the i-th numeric argument, or 0 when absent
func (c callbackQuery) arg(i int) int64 {
	if i >= len(c.args) {
		return 0
	}
	return c.args[i]
}

// expected argument count per callback action
var callbackArity = map[string]int{
	"view":     1,
	"add":      2,
	"remove":   1,
	"page":     1,
	"back":     1,
	"checkout": 1,
}

// parseCallback parses a button payload. Payloads are produced by this
// process, so a malformed one means a stale or foreign button; callers
// answer those politely instead of acting.
func parseCallback(data string) (callbackQuery, bool) {
	parts := strings.Split(data, "_")
	arity, ok := callbackArity[parts[0]]
	if !ok || len(parts)-1 != arity {
		return callbackQuery{}, false
	}

	q := callbackQuery{action: parts[0], args: make([]int64, 0, arity)}
	for _, raw := range parts[1:] {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return callbackQuery{}, false
		}
		q.args = append(q.args, n)
	}
	return q, true
}
