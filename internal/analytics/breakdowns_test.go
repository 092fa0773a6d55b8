package analytics

import (
	"testing"

	"sig-dashboard/internal/models"
)

func breakdownRecord() *models.Record {
	return &models.Record{
		Columns: models.ColumnSet{
			OrderID: true, CustomerID: true, ProductCategory: true,
			Quantity: true, TotalValue: true, CustomerState: true,
			CustomerCity: true, PaymentMethod: true,
		},
		Rows: []models.Row{
			{OrderID: "O1", CustomerID: "C1", CustomerState: "SP", CustomerCity: "São Paulo", ProductCategory: "Electronics", PaymentMethod: "PIX", Quantity: 2, TotalValue: 400},
			{OrderID: "O1", CustomerID: "C1", CustomerState: "SP", CustomerCity: "São Paulo", ProductCategory: "Books", PaymentMethod: "PIX", Quantity: 1, TotalValue: 50},
			{OrderID: "O2", CustomerID: "C2", CustomerState: "SP", CustomerCity: "Campinas", ProductCategory: "Electronics", PaymentMethod: "Credit Card", Quantity: 1, TotalValue: 150},
			{OrderID: "O3", CustomerID: "C3", CustomerState: "RJ", CustomerCity: "Rio de Janeiro", ProductCategory: "Fashion", PaymentMethod: "Boleto", Quantity: 3, TotalValue: 400},
		},
	}
}

func TestRevenueByState(t *testing.T) {
	states := RevenueByState(breakdownRecord())
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}

	sp := states[0]
	if sp.State != "SP" || !almostEqual(sp.Revenue, 600) {
		t.Errorf("top state = %+v, want SP with revenue 600", sp)
	}
	if sp.Orders != 2 || sp.Customers != 2 {
		t.Errorf("SP orders/customers = %d/%d, want 2/2", sp.Orders, sp.Customers)
	}
	if !almostEqual(sp.Share, 60) {
		t.Errorf("SP share = %f, want 60", sp.Share)
	}
}

func TestRevenueByStateAbsentColumn(t *testing.T) {
	rec := &models.Record{Columns: models.ColumnSet{TotalValue: true}}
	if got := RevenueByState(rec); got != nil {
		t.Errorf("expected nil without customer_state, got %+v", got)
	}
}

func TestRevenueByCityLimit(t *testing.T) {
	cities := RevenueByCity(breakdownRecord(), 2)
	if len(cities) != 2 {
		t.Fatalf("expected limit of 2 cities, got %d", len(cities))
	}
	// São Paulo (450) and Rio de Janeiro (400) lead; Campinas (150) is cut.
	if cities[0].City != "São Paulo" || cities[1].City != "Rio de Janeiro" {
		t.Errorf("order = %q, %q", cities[0].City, cities[1].City)
	}
	if cities[0].State != "SP" {
		t.Errorf("city row should keep its state, got %q", cities[0].State)
	}
}

func TestRevenueByCategory(t *testing.T) {
	categories := RevenueByCategory(breakdownRecord())
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}

	top := categories[0]
	if top.Category != "Electronics" || !almostEqual(top.Revenue, 550) {
		t.Errorf("top category = %+v, want Electronics with revenue 550", top)
	}
	if top.Quantity != 3 || top.Orders != 2 {
		t.Errorf("Electronics quantity/orders = %d/%d, want 3/2", top.Quantity, top.Orders)
	}
	if !almostEqual(top.AvgPrice, 550.0/3) {
		t.Errorf("Electronics avg price = %f, want %f", top.AvgPrice, 550.0/3)
	}
	if !almostEqual(top.Share, 55) {
		t.Errorf("Electronics share = %f, want 55", top.Share)
	}
}

func TestPaymentBreakdown(t *testing.T) {
	payments := PaymentBreakdown(breakdownRecord())
	if len(payments) != 3 {
		t.Fatalf("expected 3 payment methods, got %d", len(payments))
	}

	// One distinct order per method: ties broken by method name.
	if payments[0].Method != "Boleto" {
		t.Errorf("tie-break order wrong: %+v", payments)
	}
	for _, p := range payments {
		if p.Orders != 1 {
			t.Errorf("%s orders = %d, want 1", p.Method, p.Orders)
		}
		if !almostEqual(p.Share, 100.0/3) {
			t.Errorf("%s share = %f, want one third", p.Method, p.Share)
		}
	}
	pix := payments[2]
	if pix.Method != "PIX" || !almostEqual(pix.Revenue, 450) {
		t.Errorf("PIX row = %+v, want revenue 450", pix)
	}
}
