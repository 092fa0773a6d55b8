// Package normalize canonicalizes raw tabular input into a typed record:
// lower-case trimmed column names, numeric cells coerced through a fixed
// regional separator policy, dates parsed against a fixed layout list.
//
// The transform is deliberately lossy-but-available: malformed numeric cells
// degrade to zero and malformed dates are only marked invalid (the
// aggregation layer drops them), so a messy real-world CSV never aborts the
// pipeline. Internally every coercion reports an explicit issue; the public
// contract collapses issues to neutral values.
package normalize

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"sig-dashboard/internal/models"
)

type parseIssue string

const (
	issueNone      parseIssue = ""
	issueEmpty     parseIssue = "empty"
	issueMalformed parseIssue = "malformed"
	issueNegative  parseIssue = "negative"
)

// Column canonicalizes a header name: BOM and zero-width spaces stripped,
// surrounding whitespace trimmed, lower-cased. Applying it to an already
// canonical name is a no-op.
func Column(name string) string {
	name = strings.ReplaceAll(name, "\ufeff", "")
	name = strings.ReplaceAll(name, "\u200b", "")
	return strings.ToLower(strings.TrimSpace(name))
}

// coerceNumber applies the fixed separator policy: when both '.' and ','
// appear, '.' is a thousands separator and ',' the decimal separator; a
// lone ',' is the decimal separator. This assumes one regional convention
// and is not a general numeric parser.
func coerceNumber(s string) (float64, parseIssue) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, issueEmpty
	}
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, issueMalformed
	}
	if v < 0 {
		return 0, issueNegative
	}
	return v, issueNone
}

// Number is the public coercion contract: any issue collapses to zero.
func Number(s string) float64 {
	v, issue := coerceNumber(s)
	if issue != issueNone {
		return 0
	}
	return v
}

// Quantity coerces an integer count; fractional text truncates toward zero
// and anything unparseable or absent becomes 0, never 1.
func Quantity(s string) int {
	v, issue := coerceNumber(s)
	if issue != issueNone {
		return 0
	}
	return int(v)
}

// dateLayouts is the fixed candidate list tried in order. Not configurable.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
}

// Date parses a calendar date permissively. The second result reports
// whether any layout matched; callers keep the row either way and the
// aggregator filters invalid dates.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Table builds a normalized record from raw headers and string rows. Column
// presence is decided here, once; the first occurrence of a canonical name
// wins when the source repeats a header. Pure and deterministic: the same
// input always yields the same record.
func Table(headers []string, rows [][]string) *models.Record {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		name := Column(h)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	cols := models.ColumnSet{
		OrderID:         hasColumn(index, models.ColOrderID),
		CustomerID:      hasColumn(index, models.ColCustomerID),
		OrderDate:       hasColumn(index, models.ColOrderDate),
		ProductCategory: hasColumn(index, models.ColProductCategory),
		ProductPrice:    hasColumn(index, models.ColProductPrice),
		Quantity:        hasColumn(index, models.ColQuantity),
		TotalValue:      hasColumn(index, models.ColTotalValue),
		CustomerState:   hasColumn(index, models.ColCustomerState),
		CustomerCity:    hasColumn(index, models.ColCustomerCity),
		PaymentMethod:   hasColumn(index, models.ColPaymentMethod),
	}

	out := make([]models.Row, 0, len(rows))
	for _, raw := range rows {
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[i])
		}

		row := models.Row{
			OrderID:         cell(models.ColOrderID),
			CustomerID:      cell(models.ColCustomerID),
			ProductCategory: cell(models.ColProductCategory),
			ProductPrice:    Number(cell(models.ColProductPrice)),
			Quantity:        Quantity(cell(models.ColQuantity)),
			TotalValue:      Number(cell(models.ColTotalValue)),
			CustomerState:   cell(models.ColCustomerState),
			CustomerCity:    cell(models.ColCustomerCity),
			PaymentMethod:   cell(models.ColPaymentMethod),
		}
		if cols.OrderDate {
			row.OrderDate, row.DateValid = Date(cell(models.ColOrderDate))
		}
		out = append(out, row)
	}

	return &models.Record{Rows: out, Columns: cols}
}

func hasColumn(index map[string]int, name string) bool {
	_, ok := index[name]
	return ok
}
