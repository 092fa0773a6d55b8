// Package analytics derives the KPI bundle and the ranked insight list from
// a normalized record. Both computations are pure functions of their inputs.
package analytics

import (
	"fmt"
	"sort"

	"sig-dashboard/internal/models"
)

const monthLayout = "2006-01"

// ComputeKPIs aggregates the record into the KPI bundle. Absent columns are
// backfilled with degenerate placeholders (sequential synthetic identifiers,
// all-zero value and quantity columns) so the computation proceeds without
// special cases. Any unexpected panic during aggregation is caught and
// reported as a single hard failure; callers must treat a non-nil error as
// "KPIs unavailable" and skip insight generation.
func ComputeKPIs(rec *models.Record) (bundle *models.KPIBundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			bundle = nil
			err = fmt.Errorf("kpi aggregation failed: %v", r)
		}
	}()

	rows := rec.Rows

	orderIDs := make([]string, len(rows))
	customerIDs := make([]string, len(rows))
	totalValues := make([]float64, len(rows))
	quantities := make([]int, len(rows))
	for i, row := range rows {
		if rec.Columns.OrderID {
			orderIDs[i] = row.OrderID
		} else {
			orderIDs[i] = fmt.Sprintf("ORD_%06d", i+1)
		}
		if rec.Columns.CustomerID {
			customerIDs[i] = row.CustomerID
		} else {
			customerIDs[i] = fmt.Sprintf("CUST_%06d", i+1)
		}
		if rec.Columns.TotalValue {
			totalValues[i] = row.TotalValue
		}
		if rec.Columns.Quantity {
			quantities[i] = row.Quantity
		}
	}

	orderTotals := make(map[string]float64)
	customers := make(map[string]struct{})
	customerOrders := make(map[string]map[string]struct{})
	totalRevenue := 0.0
	totalItems := 0

	for i := range rows {
		orderTotals[orderIDs[i]] += totalValues[i]
		customers[customerIDs[i]] = struct{}{}
		totalRevenue += totalValues[i]
		totalItems += quantities[i]

		orders := customerOrders[customerIDs[i]]
		if orders == nil {
			orders = make(map[string]struct{})
			customerOrders[customerIDs[i]] = orders
		}
		orders[orderIDs[i]] = struct{}{}
	}

	totalOrders := len(orderTotals)

	avgTicket := 0.0
	if totalOrders > 0 {
		sum := 0.0
		for _, t := range orderTotals {
			sum += t
		}
		avgTicket = sum / float64(totalOrders)
	}

	recurring := 0
	for _, orders := range customerOrders {
		if len(orders) > 1 {
			recurring++
		}
	}
	recurrenceRate := 0.0
	if len(customers) > 0 {
		recurrenceRate = float64(recurring) / float64(len(customers)) * 100
	}

	return &models.KPIBundle{
		TotalOrders:        totalOrders,
		TotalRevenue:       totalRevenue,
		TotalCustomers:     len(customers),
		TotalItems:         totalItems,
		AvgTicket:          avgTicket,
		RecurringCustomers: recurring,
		RecurrenceRate:     recurrenceRate,
		Monthly:            monthlySeries(rec, orderIDs, customerIDs, totalValues, quantities),
	}, nil
}

type periodAgg struct {
	orders    map[string]struct{}
	customers map[string]struct{}
	revenue   float64
	items     int
}

// monthlySeries buckets rows by calendar year-month. Rows without a valid
// order date are skipped here; the usual pipeline has already dropped them
// from the working record. Growth columns are always present and zeroed
// when fewer than two periods exist.
func monthlySeries(rec *models.Record, orderIDs, customerIDs []string, totalValues []float64, quantities []int) []models.MonthlyPoint {
	series := []models.MonthlyPoint{}
	if !rec.Columns.OrderDate {
		return series
	}

	periods := make(map[string]*periodAgg)
	for i, row := range rec.Rows {
		if !row.DateValid {
			continue
		}
		key := row.OrderDate.Format(monthLayout)
		agg := periods[key]
		if agg == nil {
			agg = &periodAgg{
				orders:    make(map[string]struct{}),
				customers: make(map[string]struct{}),
			}
			periods[key] = agg
		}
		agg.orders[orderIDs[i]] = struct{}{}
		agg.customers[customerIDs[i]] = struct{}{}
		agg.revenue += totalValues[i]
		agg.items += quantities[i]
	}

	keys := make([]string, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	// Lexicographic sort is chronological for "YYYY-MM" keys.
	sort.Strings(keys)

	for _, k := range keys {
		agg := periods[k]
		series = append(series, models.MonthlyPoint{
			Period:    k,
			Orders:    len(agg.orders),
			Revenue:   agg.revenue,
			Customers: len(agg.customers),
			Items:     agg.items,
		})
	}

	if len(series) >= 2 {
		for i := 1; i < len(series); i++ {
			series[i].RevenueGrowth = pctChange(series[i-1].Revenue, series[i].Revenue)
			series[i].OrdersGrowth = pctChange(float64(series[i-1].Orders), float64(series[i].Orders))
		}
	}
	return series
}

// pctChange is the period-over-period percentage change; a zero prior
// period yields 0 rather than an infinity.
func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
