// Package classifier assigns booking numbers to the booking categories used
// throughout reconciliation and reporting.
//
// A booking number is classified by the first matching rule:
//  1. empty                        -> Empty
//  2. parses as a number           -> Numeric (fleet ledger bookings)
//  3. contains "daily"             -> Daily
//  4. contains "monthly"           -> Monthly
//  5. contains "leasing"           -> Leasing
//  6. anything else                -> Other, keyed by the lower-cased value
//
// Numeric detection always runs before the keyword checks. Keyword matching
// uses a lower-cased copy of the value; the value itself is never altered.
package classifier

import (
	"math/big"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Category is the booking category derived from a booking number.
type Category string

const (
	CategoryNumeric Category = "numeric"
	CategoryDaily   Category = "daily"
	CategoryMonthly Category = "monthly"
	CategoryLeasing Category = "leasing"
	CategoryOther   Category = "other"
	CategoryEmpty   Category = "empty"
)

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is one of the known categories
func (c Category) IsValid() bool {
	switch c {
	case CategoryNumeric, CategoryDaily, CategoryMonthly, CategoryLeasing, CategoryOther, CategoryEmpty:
		return true
	default:
		return false
	}
}

// Categories returns every category in rule order.
func Categories() []Category {
	return []Category{
		CategoryEmpty,
		CategoryNumeric,
		CategoryDaily,
		CategoryMonthly,
		CategoryLeasing,
		CategoryOther,
	}
}

// Classification is the outcome of classifying one booking number.
// OtherKey is only set for CategoryOther.
type Classification struct {
	Category Category `json:"category" yaml:"category"`
	OtherKey string   `json:"other_key,omitempty" yaml:"other_key,omitempty"`
}

// IsNumeric reports whether the booking belongs to the fleet ledger
func (c Classification) IsNumeric() bool {
	return c.Category == CategoryNumeric
}

// keywordRules are checked in order after numeric detection.
var keywordRules = []struct {
	keyword  string
	category Category
}{
	{"daily", CategoryDaily},
	{"monthly", CategoryMonthly},
	{"leasing", CategoryLeasing},
}

// Classify maps a raw booking number to exactly one category.
func Classify(bookingNumber string) Classification {
	trimmed := trimBlank(bookingNumber)
	if trimmed == "" {
		return Classification{Category: CategoryEmpty}
	}

	if IsNumericLiteral(trimmed) {
		return Classification{Category: CategoryNumeric}
	}

	lowered := strings.ToLower(bookingNumber)
	for _, rule := range keywordRules {
		if strings.Contains(lowered, rule.keyword) {
			return Classification{Category: rule.category}
		}
	}

	return Classification{Category: CategoryOther, OtherKey: lowered}
}

// IsNumericLiteral reports whether the whole value is a numeric literal.
// Accepted forms: signed decimals with optional fraction and exponent,
// signed Infinity, and unsigned 0x/0o/0b integer literals. Surrounding
// whitespace is ignored; an empty value is not numeric.
func IsNumericLiteral(value string) bool {
	value = trimBlank(value)
	if value == "" {
		return false
	}

	if _, err := decimal.NewFromString(value); err == nil {
		return true
	}

	switch value {
	case "Infinity", "+Infinity", "-Infinity":
		return true
	}

	return isPrefixedInteger(value)
}

func isPrefixedInteger(value string) bool {
	if len(value) < 3 || value[0] != '0' {
		return false
	}

	var base int
	switch value[1] {
	case 'x', 'X':
		base = 16
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	default:
		return false
	}

	digits := value[2:]
	if strings.ContainsAny(digits, "+-") {
		return false
	}
	_, ok := new(big.Int).SetString(digits, base)
	return ok
}

func trimBlank(value string) string {
	return strings.TrimFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
