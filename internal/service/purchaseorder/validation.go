package purchaseorder

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/procurement/internal/entity"
	"github.com/Additional-Code/procurement/pkg/errorbank"
)

// DateTimeFormat is the user facing description of the accepted from/to format.
const DateTimeFormat = "yyyy-MM-ddTHH:mm:ss"

// dateTimeLayouts are tried in order; fractional seconds are optional in the first.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ValidatePurchaseOrder applies the business rules that field level checks at
// the boundary cannot express. today must be midnight UTC of the current day.
// An absent amount is the zero decimal and fails the positive-amount rule;
// the HTTP boundary already rejects a missing totalAmount as required.
func ValidatePurchaseOrder(po *entity.PurchaseOrder, today time.Time) error {
	if po == nil {
		return errorbank.Validation("purchase order is required")
	}
	if !po.TotalAmount.IsPositive() {
		return errorbank.Validation("total amount must be greater than 0",
			errorbank.WithDetail("totalAmount", "must be greater than 0"))
	}
	if !po.ExpectedDeliveryDate.IsZero() && !dateOnly(po.ExpectedDeliveryDate).After(today) {
		return errorbank.Validation("expected delivery date must be in the future",
			errorbank.WithDetail("expectedDeliveryDate", "must be a future date"))
	}
	return nil
}

// ParseStatus resolves raw case-insensitively. Blank input means no status.
func ParseStatus(raw string) (entity.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	status := entity.Status(strings.ToUpper(raw))
	if !status.Valid() {
		return "", errorbank.Validation(
			fmt.Sprintf("invalid status: %s. Allowed values: %s", raw, joinValues(entity.Statuses())),
			errorbank.WithDetail("status", "unknown value"),
		)
	}
	return status, nil
}

// ParseCurrency resolves raw case-insensitively. Blank input means no currency.
func ParseCurrency(raw string) (entity.Currency, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	currency := entity.Currency(strings.ToUpper(raw))
	if !currency.Valid() {
		return "", errorbank.Validation(
			fmt.Sprintf("invalid currency: %s. Allowed values: %s", raw, joinValues(entity.Currencies())),
			errorbank.WithDetail("currency", "unknown value"),
		)
	}
	return currency, nil
}

// ValidateAmountRange rejects negative bounds and an inverted range.
func ValidateAmountRange(minTotal, maxTotal *decimal.Decimal) error {
	if minTotal != nil && minTotal.IsNegative() {
		return errorbank.Validation("minTotal must be greater than or equal to 0",
			errorbank.WithDetail("minTotal", "must not be negative"))
	}
	if maxTotal != nil && maxTotal.IsNegative() {
		return errorbank.Validation("maxTotal must be greater than or equal to 0",
			errorbank.WithDetail("maxTotal", "must not be negative"))
	}
	if minTotal != nil && maxTotal != nil && minTotal.GreaterThan(*maxTotal) {
		return errorbank.Validation("minTotal cannot be greater than maxTotal",
			errorbank.WithDetail("minTotal", "greater than maxTotal"))
	}
	return nil
}

// ParseDateTime reads an ISO local date-time, interpreted in UTC.
// Blank input yields nil.
func ParseDateTime(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, errorbank.Validation(
		fmt.Sprintf("invalid date format for parameter '%s': %s. Expected format: %s", field, raw, DateTimeFormat),
		errorbank.WithDetail(field, "expected format "+DateTimeFormat),
	)
}

// ValidateDateRange rejects a from bound later than the to bound.
func ValidateDateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return errorbank.Validation("'from' cannot be after 'to'",
			errorbank.WithDetail("from", "after 'to'"))
	}
	return nil
}

// FormatOrderNumber renders PO-<year>-<sequence> with a six digit sequence.
func FormatOrderNumber(year, sequence int) string {
	return fmt.Sprintf("PO-%d-%06d", year, sequence)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
