package money

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
)

var (
	ErrInvalidMoney   = domainerr.New(domainerr.KindValidation, "INVALID_MONEY", "amount must be a finite non-negative number")
	ErrNegativeResult = domainerr.New(domainerr.KindBusiness, "NEGATIVE_RESULT", "operation would produce a negative amount")
	ErrInvalidFactor  = domainerr.New(domainerr.KindValidation, "INVALID_FACTOR", "factor must be a finite non-negative number")
)

// Tolerance absorbs rounding noise when two amounts are compared for equality.
var Tolerance = decimal.New(1, -2)

// Money is an immutable non-negative amount. The zero value is a valid zero
// amount.
type Money struct {
	amount decimal.Decimal
}

// New validates value and returns it as Money.
func New(value float64) (Money, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Money{}, ErrInvalidMoney.Withf("amount must be finite, got %v", value)
	}
	if value < 0 {
		return Money{}, ErrInvalidMoney.Withf("amount must not be negative, got %v", value)
	}
	return Money{amount: decimal.NewFromFloat(value)}, nil
}

// MustNew is New for constants and tests; it panics on invalid input.
func MustNew(value float64) Money {
	m, err := New(value)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal validates d and returns it as Money.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidMoney.Withf("amount must not be negative, got %s", d.String())
	}
	return Money{amount: d}, nil
}

// Parse reads a decimal string such as "2500" or "104.76".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, ErrInvalidMoney.Withf("invalid amount %q", s)
	}
	return FromDecimal(d)
}

func Zero() Money { return Money{} }

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, m := range amounts {
		total = total.Add(m.amount)
	}
	return Money{amount: total}
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Subtract(other Money) (Money, error) {
	res := m.amount.Sub(other.amount)
	if res.IsNegative() {
		return Money{}, ErrNegativeResult.Withf("cannot subtract %s from %s", other, m)
	}
	return Money{amount: res}, nil
}

func (m Money) Multiply(factor float64) (Money, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return Money{}, ErrInvalidFactor.Withf("invalid factor %v", factor)
	}
	return Money{amount: m.amount.Mul(decimal.NewFromFloat(factor))}, nil
}

// Times multiplies by a whole quantity; it never fails for quantity >= 0.
func (m Money) Times(quantity int) Money {
	if quantity <= 0 {
		return Money{}
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) IsGreaterThan(other Money) bool { return m.amount.GreaterThan(other.amount) }

func (m Money) IsLessThan(other Money) bool { return m.amount.LessThan(other.amount) }

// Equals compares within Tolerance.
func (m Money) Equals(other Money) bool {
	return m.amount.Sub(other.amount).Abs().LessThanOrEqual(Tolerance)
}

func (m Money) IsZero() bool { return m.amount.IsZero() }

// Round rounds to two decimals, halves away from zero.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(2)}
}

func (m Money) Decimal() decimal.Decimal { return m.amount }

func (m Money) Float64() float64 { return m.amount.InexactFloat64() }

func (m Money) String() string { return m.amount.String() }

// Format renders the amount for display, e.g. Format("CLP", "es-CL") gives
// "$10.476" and Format("USD", "en-US") gives "$104.76". Fraction digits
// follow the currency's standard rounding.
func (m Money) Format(currencyCode, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	scale := 2
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	p := message.NewPrinter(tag)
	amount := m.amount.Round(int32(scale)).InexactFloat64()
	return symbol(code) + p.Sprint(number.Decimal(amount, number.Scale(scale)))
}

func symbol(code string) string {
	switch code {
	case "CLP", "USD", "ARS", "MXN", "COP":
		return "$"
	case "EUR":
		return "€"
	case "BRL":
		return "R$"
	case "":
		return ""
	default:
		return code + " "
	}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*m = Money{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount as NUMERIC text.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
