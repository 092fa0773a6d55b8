package analytics

import (
	"cmp"
	"slices"

	"sig-dashboard/internal/models"
)

// Dimensional revenue breakdowns consumed by the presentation layer and by
// the concentration insight rules. Each returns nil when its grouping
// column is absent; revenue falls back to zero when total_value is absent.

func RevenueByState(rec *models.Record) []models.StateRevenue {
	if !rec.Columns.CustomerState {
		return nil
	}

	type agg struct {
		orders    map[string]struct{}
		customers map[string]struct{}
		revenue   float64
	}
	groups := make(map[string]*agg)
	for _, row := range rec.Rows {
		a := groups[row.CustomerState]
		if a == nil {
			a = &agg{orders: make(map[string]struct{}), customers: make(map[string]struct{})}
			groups[row.CustomerState] = a
		}
		a.orders[row.OrderID] = struct{}{}
		a.customers[row.CustomerID] = struct{}{}
		a.revenue += row.TotalValue
	}

	total := 0.0
	for _, a := range groups {
		total += a.revenue
	}

	out := make([]models.StateRevenue, 0, len(groups))
	for state, a := range groups {
		share := 0.0
		if total > 0 {
			share = a.revenue / total * 100
		}
		out = append(out, models.StateRevenue{
			State:     state,
			Orders:    len(a.orders),
			Customers: len(a.customers),
			Revenue:   a.revenue,
			Share:     share,
		})
	}
	slices.SortFunc(out, func(a, b models.StateRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.State, b.State)
	})
	return out
}

func RevenueByCity(rec *models.Record, limit int) []models.CityRevenue {
	if !rec.Columns.CustomerCity {
		return nil
	}

	type agg struct {
		state   string
		city    string
		orders  map[string]struct{}
		revenue float64
	}
	groups := make(map[string]*agg)
	for _, row := range rec.Rows {
		key := row.CustomerState + "|" + row.CustomerCity
		a := groups[key]
		if a == nil {
			a = &agg{state: row.CustomerState, city: row.CustomerCity, orders: make(map[string]struct{})}
			groups[key] = a
		}
		a.orders[row.OrderID] = struct{}{}
		a.revenue += row.TotalValue
	}

	out := make([]models.CityRevenue, 0, len(groups))
	for _, a := range groups {
		out = append(out, models.CityRevenue{
			State:   a.state,
			City:    a.city,
			Orders:  len(a.orders),
			Revenue: a.revenue,
		})
	}
	slices.SortFunc(out, func(a, b models.CityRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.City, b.City)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func RevenueByCategory(rec *models.Record) []models.CategoryRevenue {
	if !rec.Columns.ProductCategory {
		return nil
	}

	type agg struct {
		orders   map[string]struct{}
		revenue  float64
		quantity int
	}
	groups := make(map[string]*agg)
	for _, row := range rec.Rows {
		a := groups[row.ProductCategory]
		if a == nil {
			a = &agg{orders: make(map[string]struct{})}
			groups[row.ProductCategory] = a
		}
		a.orders[row.OrderID] = struct{}{}
		a.revenue += row.TotalValue
		a.quantity += row.Quantity
	}

	total := 0.0
	for _, a := range groups {
		total += a.revenue
	}

	out := make([]models.CategoryRevenue, 0, len(groups))
	for category, a := range groups {
		share := 0.0
		if total > 0 {
			share = a.revenue / total * 100
		}
		avgPrice := 0.0
		if a.quantity > 0 {
			avgPrice = a.revenue / float64(a.quantity)
		}
		out = append(out, models.CategoryRevenue{
			Category: category,
			Quantity: a.quantity,
			Orders:   len(a.orders),
			Revenue:  a.revenue,
			AvgPrice: avgPrice,
			Share:    share,
		})
	}
	slices.SortFunc(out, func(a, b models.CategoryRevenue) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

func PaymentBreakdown(rec *models.Record) []models.PaymentShare {
	if !rec.Columns.PaymentMethod {
		return nil
	}

	type agg struct {
		orders  map[string]struct{}
		revenue float64
	}
	groups := make(map[string]*agg)
	for _, row := range rec.Rows {
		a := groups[row.PaymentMethod]
		if a == nil {
			a = &agg{orders: make(map[string]struct{})}
			groups[row.PaymentMethod] = a
		}
		a.orders[row.OrderID] = struct{}{}
		a.revenue += row.TotalValue
	}

	totalOrders := 0
	for _, a := range groups {
		totalOrders += len(a.orders)
	}

	out := make([]models.PaymentShare, 0, len(groups))
	for method, a := range groups {
		share := 0.0
		if totalOrders > 0 {
			share = float64(len(a.orders)) / float64(totalOrders) * 100
		}
		out = append(out, models.PaymentShare{
			Method:  method,
			Orders:  len(a.orders),
			Revenue: a.revenue,
			Share:   share,
		})
	}
	slices.SortFunc(out, func(a, b models.PaymentShare) int {
		if c := cmp.Compare(b.Orders, a.Orders); c != 0 {
			return c
		}
		return cmp.Compare(a.Method, b.Method)
	})
	return out
}
