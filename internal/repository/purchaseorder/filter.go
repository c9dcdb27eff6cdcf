package purchaseorder

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/procurement/internal/entity"
)

// Filter narrows a listing. Zero values impose no constraint and all set
// fields are combined with AND.
type Filter struct {
	// Query matches orderNumber or supplierName, case-insensitively, as a substring.
	Query    string
	Status   entity.Status
	Currency entity.Currency
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal
	From     *time.Time
	To       *time.Time
}

// likeEscape is the LIKE escape character. It must be a plain literal in
// postgres, mysql and sqlite string constants.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// containsPattern turns query into a lower-case LIKE pattern that matches it
// as a literal substring.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}

// Empty reports whether the filter imposes no constraint at all.
func (f Filter) Empty() bool {
	return f.Query == "" && f.Status == "" && f.Currency == "" &&
		f.MinTotal == nil && f.MaxTotal == nil && f.From == nil && f.To == nil
}

// Matches evaluates the filter against a single record in memory.
func (f Filter) Matches(po entity.PurchaseOrder) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(po.OrderNumber), q) &&
			!strings.Contains(strings.ToLower(po.SupplierName), q) {
			return false
		}
	}
	if f.Status != "" && po.Status != f.Status {
		return false
	}
	if f.Currency != "" && po.Currency != f.Currency {
		return false
	}
	if f.MinTotal != nil && po.TotalAmount.LessThan(*f.MinTotal) {
		return false
	}
	if f.MaxTotal != nil && po.TotalAmount.GreaterThan(*f.MaxTotal) {
		return false
	}
	if f.From != nil && po.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && po.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
