package models

// Dimensional breakdown rows served to the presentation layer. Share is a
// percentage of the dimension's revenue (or order) total, already rounded
// for display by the consumer, not here.

type StateRevenue struct {
	State     string  `json:"state"`
	Orders    int     `json:"orders"`
	Revenue   float64 `json:"revenue"`
	Customers int     `json:"customers"`
	Share     float64 `json:"revenue_share"`
}

type CityRevenue struct {
	State   string  `json:"state"`
	City    string  `json:"city"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Orders   int     `json:"orders"`
	Revenue  float64 `json:"revenue"`
	AvgPrice float64 `json:"avg_price"`
	Share    float64 `json:"revenue_share"`
}

type PaymentShare struct {
	Method  string  `json:"method"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	Share   float64 `json:"percentage"`
}
