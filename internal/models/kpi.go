package models

// MonthlyPoint is one calendar year-month bucket of the KPI time series.
// Growth fields are percentage change versus the immediately preceding
// period; the first period and series with fewer than two periods carry 0
// so the shape stays stable for consumers.
type MonthlyPoint struct {
	Period        string  `json:"period"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	Customers     int     `json:"customers"`
	Items         int     `json:"items"`
	RevenueGrowth float64 `json:"revenue_growth"`
	OrdersGrowth  float64 `json:"orders_growth"`
}

// KPIBundle is the derived summary of a record. It is recomputed wholesale
// on every record change and never mutated afterwards.
type KPIBundle struct {
	TotalOrders        int            `json:"total_orders"`
	TotalRevenue       float64        `json:"total_revenue"`
	TotalCustomers     int            `json:"total_customers"`
	TotalItems         int            `json:"total_items"`
	AvgTicket          float64        `json:"avg_ticket"`
	RecurringCustomers int            `json:"recurring_customers"`
	RecurrenceRate     float64        `json:"recurrence_rate"`
	Monthly            []MonthlyPoint `json:"monthly"`
}
