package models

import "time"

// Canonical column names produced by the schema normalizer. All downstream
// code refers to columns through these constants, never through raw header
// text.
const (
	ColOrderID         = "order_id"
	ColCustomerID      = "customer_id"
	ColOrderDate       = "order_date"
	ColProductCategory = "product_category"
	ColProductPrice    = "product_price"
	ColQuantity        = "quantity"
	ColTotalValue      = "total_value"
	ColCustomerState   = "customer_state"
	ColCustomerCity    = "customer_city"
	ColPaymentMethod   = "payment_method"
)

// RequiredColumns is the set a delimited file must carry to be accepted at
// the ingestion boundary. Order matters: missing-column reports enumerate
// names in this order.
var RequiredColumns = []string{
	ColOrderID,
	ColCustomerID,
	ColOrderDate,
	ColProductCategory,
	ColProductPrice,
	ColQuantity,
	ColTotalValue,
	ColCustomerState,
	ColCustomerCity,
	ColPaymentMethod,
}

// Row is one normalized transaction line. Numeric fields are already coerced
// (malformed cells degraded to zero) and DateValid marks whether OrderDate
// parsed; rows with DateValid == false are excluded from the working record
// before aggregation.
type Row struct {
	OrderID         string
	CustomerID      string
	OrderDate       time.Time
	DateValid       bool
	ProductCategory string
	ProductPrice    float64
	Quantity        int
	TotalValue      float64
	CustomerState   string
	CustomerCity    string
	PaymentMethod   string
}

// ColumnSet records which logical columns were present in the source table.
// Presence is decided once, during normalization, so consumers never probe
// for columns ad hoc.
type ColumnSet struct {
	OrderID         bool
	CustomerID      bool
	OrderDate       bool
	ProductCategory bool
	ProductPrice    bool
	Quantity        bool
	TotalValue      bool
	CustomerState   bool
	CustomerCity    bool
	PaymentMethod   bool
}

// Has reports whether the canonical column name was present in the source.
func (c ColumnSet) Has(name string) bool {
	switch name {
	case ColOrderID:
		return c.OrderID
	case ColCustomerID:
		return c.CustomerID
	case ColOrderDate:
		return c.OrderDate
	case ColProductCategory:
		return c.ProductCategory
	case ColProductPrice:
		return c.ProductPrice
	case ColQuantity:
		return c.Quantity
	case ColTotalValue:
		return c.TotalValue
	case ColCustomerState:
		return c.CustomerState
	case ColCustomerCity:
		return c.CustomerCity
	case ColPaymentMethod:
		return c.PaymentMethod
	}
	return false
}

// Missing returns the required columns absent from the set, in the
// RequiredColumns order.
func (c ColumnSet) Missing() []string {
	var missing []string
	for _, name := range RequiredColumns {
		if !c.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Record is the currently loaded set of transaction lines together with the
// column-presence schema established at normalization time. Records are
// treated as immutable snapshots: consumers get a new Record instead of an
// in-place mutation.
type Record struct {
	Rows    []Row
	Columns ColumnSet
}

// DropInvalidDates returns a record containing only rows with a parseable
// order date. When the date column is absent there is nothing to filter and
// the receiver is returned unchanged.
func (r *Record) DropInvalidDates() *Record {
	if !r.Columns.OrderDate {
		return r
	}
	kept := make([]Row, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.DateValid {
			kept = append(kept, row)
		}
	}
	return &Record{Rows: kept, Columns: r.Columns}
}

// Filter returns a copy restricted to the given date range (inclusive, zero
// times mean unbounded) and state list (empty means all states). The
// receiver is never modified.
func (r *Record) Filter(from, to time.Time, states []string) *Record {
	var stateSet map[string]struct{}
	if len(states) > 0 {
		stateSet = make(map[string]struct{}, len(states))
		for _, s := range states {
			stateSet[s] = struct{}{}
		}
	}

	kept := make([]Row, 0, len(r.Rows))
	for _, row := range r.Rows {
		if !from.IsZero() && (!row.DateValid || row.OrderDate.Before(from)) {
			continue
		}
		if !to.IsZero() && (!row.DateValid || row.OrderDate.After(to)) {
			continue
		}
		if stateSet != nil {
			if _, ok := stateSet[row.CustomerState]; !ok {
				continue
			}
		}
		kept = append(kept, row)
	}
	return &Record{Rows: kept, Columns: r.Columns}
}
