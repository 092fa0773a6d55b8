package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"sig-dashboard/internal/services"
)

const testUploadLimit = 1 << 20

const uploadCSV = "order_id,customer_id,order_date,product_category,product_price,quantity,total_value,customer_state,customer_city,payment_method\n" +
	"ORD_1,CUST_1,2024-01-15,Moda,100.00,1,100.00,SP,São Paulo,PIX\n" +
	"ORD_2,CUST_2,2024-02-20,Livros,25.00,2,50.00,RJ,Niterói,Boleto\n"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func loadedDataset(t *testing.T) *services.Dataset {
	t.Helper()
	d := services.NewDataset(newTestLogger())
	if _, err := d.LoadCSV(context.Background(), strings.NewReader(uploadCSV), "vendas.csv"); err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	return d
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return response
}

func TestHandleKPIs(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("cache-control = %q", cc)
	}

	response := decodeEnvelope(t, w)
	if response["success"] != true {
		t.Error("expected success envelope")
	}
	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatalf("data is %T", response["data"])
	}
	if data["total_orders"] != float64(2) {
		t.Errorf("total_orders = %v, want 2", data["total_orders"])
	}
	if data["total_revenue"] != float64(150) {
		t.Errorf("total_revenue = %v, want 150", data["total_revenue"])
	}
}

func TestHandleKPIsWithFilter(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis?states=SP", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]any)
	if data["total_orders"] != float64(1) {
		t.Errorf("SP orders = %v, want 1", data["total_orders"])
	}
}

func TestHandleKPIsBadFilterDate(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis?from=15/01/2024", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	response := decodeEnvelope(t, w)
	if response["success"] != false {
		t.Error("expected error envelope")
	}
}

func TestHandleKPIsNoDataset(t *testing.T) {
	d := services.NewDataset(newTestLogger())
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleInsights(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	w := httptest.NewRecorder()
	handlers.HandleInsights(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	response := decodeEnvelope(t, w)
	insights, ok := response["data"].([]any)
	if !ok {
		t.Fatalf("data is %T", response["data"])
	}
	if len(insights) > 5 {
		t.Errorf("insights = %d, cap is 5", len(insights))
	}
}

func TestHandleMonthly(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/kpis/monthly", nil)
	w := httptest.NewRecorder()
	handlers.HandleMonthly(w, req)

	response := decodeEnvelope(t, w)
	months, ok := response["data"].([]any)
	if !ok {
		t.Fatalf("data is %T", response["data"])
	}
	if len(months) != 2 {
		t.Fatalf("months = %d, want 2", len(months))
	}
	first := months[0].(map[string]any)
	if first["period"] != "2024-01" {
		t.Errorf("first period = %v", first["period"])
	}
}

func TestHandleBreakdowns(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	routes := map[string]http.HandlerFunc{
		"/api/breakdowns/states":     handlers.HandleStates,
		"/api/breakdowns/cities":     handlers.HandleCities,
		"/api/breakdowns/categories": handlers.HandleCategories,
		"/api/breakdowns/payments":   handlers.HandlePayments,
	}
	for path, handler := range routes {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, w.Code)
		}
		response := decodeEnvelope(t, w)
		if _, ok := response["data"].([]any); !ok {
			t.Errorf("%s: data is %T", path, response["data"])
		}
	}
}

func TestHandleBreakdownsNoDataset(t *testing.T) {
	d := services.NewDataset(newTestLogger())
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/breakdowns/states", nil)
	w := httptest.NewRecorder()
	handlers.HandleStates(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func multipartUpload(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range extra {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	d := services.NewDataset(newTestLogger())
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	body, contentType := multipartUpload(t, "file", "vendas.csv", uploadCSV, map[string]string{"company": "Loja Teste"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handlers.HandleUpload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]any)
	if data["name"] != "Loja Teste" {
		t.Errorf("name = %v, want the company field", data["name"])
	}
	if !d.Loaded() {
		t.Error("upload should publish a snapshot")
	}
}

func TestHandleUploadMissingFile(t *testing.T) {
	d := services.NewDataset(newTestLogger())
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	body, contentType := multipartUpload(t, "wrong", "vendas.csv", uploadCSV, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handlers.HandleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleLoadSample(t *testing.T) {
	d := services.NewDataset(newTestLogger())
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodPost, "/api/sample?records=150", nil)
	w := httptest.NewRecorder()
	handlers.HandleLoadSample(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	snap := d.Snapshot()
	if snap == nil || len(snap.Record.Rows) != 150 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestHandleLoadSampleBadRecords(t *testing.T) {
	d := services.NewDataset(newTestLogger())
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodPost, "/api/sample?records=zero", nil)
	w := httptest.NewRecorder()
	handlers.HandleLoadSample(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleReset(t *testing.T) {
	d := loadedDataset(t)
	handlers := NewAPIHandlers(d, newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	w := httptest.NewRecorder()
	handlers.HandleReset(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if d.Loaded() {
		t.Error("reset should clear the dataset")
	}
}

func TestHandleEvents(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	handlers.HandleEvents(w, req)

	response := decodeEnvelope(t, w)
	events, ok := response["data"].([]any)
	if !ok {
		t.Fatalf("data is %T", response["data"])
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestHandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(services.NewDataset(newTestLogger()), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("status = %v", data["status"])
	}
}

func TestHandleStats(t *testing.T) {
	handlers := NewAPIHandlers(loadedDataset(t), newTestLogger(), testUploadLimit)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	handlers.HandleStats(w, req)

	response := decodeEnvelope(t, w)
	data := response["data"].(map[string]any)
	if data["loaded"] != true {
		t.Errorf("stats = %v", data)
	}
}
