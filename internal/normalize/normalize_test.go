package normalize

import (
	"testing"
	"time"

	"sig-dashboard/internal/models"
)

func TestColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"order_id", "order_id"},
		{"Order_ID", "order_id"},
		{"  Total_Value  ", "total_value"},
		{"\ufeffORDER_ID", "order_id"},
		{"\u200border_date\u200b", "order_date"},
		{"\ufeff  Customer_State ", "customer_state"},
	}
	for _, tt := range tests {
		if got := Column(tt.in); got != tt.want {
			t.Errorf("Column(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234,56", 1234.56},
		{"1234.56", 1234.56},
		{"1.234.567,89", 1234567.89},
		{"42", 42},
		{" 99,9 ", 99.9},
		{"", 0},
		{"abc", 0},
		{"R$ 10", 0},
		{"-5", 0}, // negative clamps to zero
	}
	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceNumberIssues(t *testing.T) {
	if _, issue := coerceNumber(""); issue != issueEmpty {
		t.Errorf("empty input: issue = %q, want %q", issue, issueEmpty)
	}
	if _, issue := coerceNumber("not-a-number"); issue != issueMalformed {
		t.Errorf("malformed input: issue = %q, want %q", issue, issueMalformed)
	}
	if _, issue := coerceNumber("-1,5"); issue != issueNegative {
		t.Errorf("negative input: issue = %q, want %q", issue, issueNegative)
	}
	if v, issue := coerceNumber("10,5"); issue != issueNone || v != 10.5 {
		t.Errorf("valid input: got (%v, %q), want (10.5, none)", v, issue)
	}
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{"2.0", 2},
		{"", 0},  // missing defaults to 0, never 1
		{"x", 0},
		{"-4", 0},
	}
	for _, tt := range tests {
		if got := Quantity(tt.in); got != tt.want {
			t.Errorf("Quantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	got, ok := Date("2024-03-15")
	if !ok {
		t.Fatal("Date(2024-03-15) should parse")
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date(2024-03-15) = %v, want %v", got, want)
	}

	if _, ok := Date("not a date"); ok {
		t.Error("Date should reject unparseable input")
	}
	if _, ok := Date(""); ok {
		t.Error("Date should reject empty input")
	}
}

func testHeaders() []string {
	return []string{
		"\ufeffOrder_ID", "Customer_ID", "Order_Date", "Product_Category",
		"Product_Price", "Quantity", "Total_Value", "Customer_State",
		"Customer_City", "Payment_Method",
	}
}

func TestTable(t *testing.T) {
	rows := [][]string{
		{"O1", "C1", "2024-01-10", "Books", "1.234,56", "2", "2.469,12", "SP", "São Paulo", "PIX"},
		{"O2", "C2", "bad-date", "Books", "10,00", "", "10,00", "RJ", "Niterói", "Boleto"},
	}

	rec := Table(testHeaders(), rows)

	if missing := rec.Columns.Missing(); len(missing) != 0 {
		t.Fatalf("all columns present, got missing: %v", missing)
	}
	if len(rec.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rec.Rows))
	}

	r0 := rec.Rows[0]
	if r0.TotalValue != 2469.12 {
		t.Errorf("TotalValue = %v, want 2469.12", r0.TotalValue)
	}
	if r0.ProductPrice != 1234.56 {
		t.Errorf("ProductPrice = %v, want 1234.56", r0.ProductPrice)
	}
	if r0.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", r0.Quantity)
	}
	if !r0.DateValid {
		t.Error("row 0 date should be valid")
	}

	r1 := rec.Rows[1]
	if r1.DateValid {
		t.Error("row 1 has an unparseable date and must be marked invalid")
	}
	if r1.Quantity != 0 {
		t.Errorf("missing quantity must default to 0, got %d", r1.Quantity)
	}
}

func TestTableMissingColumns(t *testing.T) {
	rec := Table([]string{"order_id", "total_value"}, [][]string{{"O1", "10"}})

	if !rec.Columns.OrderID || !rec.Columns.TotalValue {
		t.Error("present columns should be flagged")
	}
	if rec.Columns.CustomerState {
		t.Error("customer_state should be absent")
	}

	missing := rec.Columns.Missing()
	if len(missing) != len(models.RequiredColumns)-2 {
		t.Errorf("expected %d missing columns, got %d: %v", len(models.RequiredColumns)-2, len(missing), missing)
	}
}

func TestTableShortRow(t *testing.T) {
	// A row with fewer cells than the header must not panic; absent cells
	// degrade to zero values.
	rec := Table(testHeaders(), [][]string{{"O1", "C1"}})
	if len(rec.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rec.Rows))
	}
	if rec.Rows[0].TotalValue != 0 {
		t.Errorf("TotalValue = %v, want 0", rec.Rows[0].TotalValue)
	}
}

func TestTableIdempotent(t *testing.T) {
	rows := [][]string{
		{"O1", "C1", "2024-01-10", "Books", "1234.56", "2", "2469.12", "SP", "São Paulo", "PIX"},
	}
	first := Table(testHeaders(), rows)

	// Re-normalize the already-normalized output.
	again := Table(models.RequiredColumns, [][]string{{
		first.Rows[0].OrderID,
		first.Rows[0].CustomerID,
		first.Rows[0].OrderDate.Format("2006-01-02"),
		first.Rows[0].ProductCategory,
		"1234.56",
		"2",
		"2469.12",
		first.Rows[0].CustomerState,
		first.Rows[0].CustomerCity,
		first.Rows[0].PaymentMethod,
	}})

	if again.Rows[0] != first.Rows[0] {
		t.Errorf("normalization is not idempotent:\nfirst %+v\nagain %+v", first.Rows[0], again.Rows[0])
	}
	if again.Columns != first.Columns {
		t.Errorf("column set changed: %+v vs %+v", first.Columns, again.Columns)
	}
}
