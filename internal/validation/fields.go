package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places the balance column stores.
const AmountScale = 2

// MaxAmount matches DECIMAL(12,2).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// FieldError represents a validation error on a single request field
type FieldError struct {
	Field   string
	Value   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %q)", e.Field, e.Message, e.Value)
}

// RequireText trims value and fails when nothing is left.
func RequireText(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &FieldError{Field: field, Message: "required"}
	}
	return trimmed, nil
}

// ParseAmount parses a money amount as fixed-point. It must be positive, fit
// the balance column and carry at most AmountScale decimals.
func ParseAmount(raw, field string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, &FieldError{Field: field, Message: "required"}
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Value: trimmed, Message: "not a number"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &FieldError{Field: field, Value: trimmed, Message: "must be greater than zero"}
	}
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, &FieldError{Field: field, Value: trimmed, Message: "too large"}
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return decimal.Zero, &FieldError{Field: field, Value: trimmed, Message: fmt.Sprintf("at most %d decimals", AmountScale)}
	}

	return amount, nil
}
