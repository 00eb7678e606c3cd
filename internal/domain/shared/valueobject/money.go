package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a value object representing a monetary amount in integer minor
// units (e.g. cents). The storefront is single-currency; rendering attaches
// the configured symbol.
// It is immutable - all operations return new Money instances.
type Money struct {
	minorUnits int64
}

// NewMoney creates a new Money from an amount in minor units
func NewMoney(minorUnits int64) (Money, error) {
	if minorUnits < 0 {
		return Money{}, errors.New("amount cannot be negative")
	}
	return Money{minorUnits: minorUnits}, nil
}

// NewMoneyFromString creates Money from a decimal amount string such as
// "4.99". Sub-minor-unit precision is rejected rather than rounded.
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return Money{}, fmt.Errorf("amount %s has more than two decimal places", amount)
	}
	return NewMoney(shifted.IntPart())
}

// Zero returns a zero-value Money
func Zero() Money {
	return Money{}
}

// MinorUnits returns the amount in minor units
func (m Money) MinorUnits() int64 {
	return m.minorUnits
}

// Decimal returns the amount in major units as a decimal (e.g. 499 -> 4.99)
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.minorUnits, -2)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.minorUnits == 0
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{minorUnits: m.minorUnits + other.minorUnits}
}

// MultiplyQuantity returns a new Money multiplied by an item quantity
func (m Money) MultiplyQuantity(quantity int) Money {
	return Money{minorUnits: m.minorUnits * int64(quantity)}
}

// Equal returns true if both amounts are equal
func (m Money) Equal(other Money) bool {
	return m.minorUnits == other.minorUnits
}

// String returns the amount in major units with two decimal places
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a bare integer of minor units,
// matching the persisted order snapshot format
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.minorUnits, 10)), nil
}

// UnmarshalJSON decodes a bare integer of minor units
func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid money value: %w", err)
	}
	m.minorUnits = v
	return nil
}

// GormDataType tells GORM to store Money in an integer column
func (Money) GormDataType() string {
	return "integer"
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.minorUnits, nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	if value == nil {
		m.minorUnits = 0
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.minorUnits = v
	case int:
		m.minorUnits = int64(v)
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		m.minorUnits = parsed
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		m.minorUnits = parsed
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	return nil
}
