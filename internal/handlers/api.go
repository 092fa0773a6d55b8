package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sig-dashboard/internal/errors"
	"sig-dashboard/internal/ingest"
	"sig-dashboard/internal/observability"
	"sig-dashboard/internal/services"
)

const (
	cacheControl = "Cache-Control"
	noCache      = "no-store"

	filterDateLayout = "2006-01-02"
)

type APIHandlers struct {
	data           *services.Dataset
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewAPIHandlers(data *services.Dataset, logger *slog.Logger, maxUploadBytes int64) *APIHandlers {
	return &APIHandlers{
		data:           data,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// parseFilter reads the optional query filter: from/to as YYYY-MM-DD dates
// and states as a comma list.
func parseFilter(r *http.Request) (services.Filter, error) {
	var f services.Filter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return f, errors.BadRequest("invalid 'from' date, expected YYYY-MM-DD")
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return f, errors.BadRequest("invalid 'to' date, expected YYYY-MM-DD")
		}
		f.To = t
	}
	if v := q.Get("states"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.States = append(f.States, s)
			}
		}
	}
	return f, nil
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	kpis, _, err := h.data.Query(filter)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	w.Header().Set(cacheControl, noCache)
	errors.WriteSuccess(w, kpis)
}

func (h *APIHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	_, insights, err := h.data.Query(filter)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	w.Header().Set(cacheControl, noCache)
	errors.WriteSuccess(w, insights)
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	kpis, _, err := h.data.Query(services.Filter{})
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	w.Header().Set(cacheControl, noCache)
	errors.WriteSuccess(w, kpis.Monthly)
}

func (h *APIHandlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	h.writeBreakdown(w, r, h.data.StateRevenue())
}

func (h *APIHandlers) HandleCities(w http.ResponseWriter, r *http.Request) {
	h.writeBreakdown(w, r, h.data.CityRevenue())
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	h.writeBreakdown(w, r, h.data.CategoryRevenue())
}

func (h *APIHandlers) HandlePayments(w http.ResponseWriter, r *http.Request) {
	h.writeBreakdown(w, r, h.data.PaymentBreakdown())
}

func (h *APIHandlers) writeBreakdown(w http.ResponseWriter, r *http.Request, data any) {
	if !h.data.Loaded() {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NotFound("no dataset loaded"), requestID)
		return
	}
	w.Header().Set(cacheControl, noCache)
	errors.WriteSuccess(w, data)
}

// HandleUpload accepts a multipart CSV upload ("file" field, optional
// "company" name) and replaces the current dataset. A rejected upload
// leaves the previously loaded dataset intact.
func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "could not read upload"), requestID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, h.logger, errors.BadRequest("missing 'file' field"), requestID)
		return
	}
	defer file.Close()

	name := r.FormValue("company")
	if name == "" {
		name = header.Filename
	}

	snap, err := h.data.LoadCSV(r.Context(), file, name)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	errors.WriteSuccess(w, snap)
}

// HandleLoadSample loads the seeded demonstration dataset; ?records=
// overrides the default size.
func (h *APIHandlers) HandleLoadSample(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	records := ingest.DefaultSampleRecords
	if v := r.URL.Query().Get("records"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errors.WriteError(w, h.logger, errors.BadRequest("'records' must be a positive integer"), requestID)
			return
		}
		records = n
	}

	snap, err := h.data.LoadSample(records, ingest.DefaultSampleSeed)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}
	errors.WriteSuccess(w, snap)
}

func (h *APIHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.data.Reset()
	errors.WriteSuccess(w, map[string]string{"status": "reset"})
}

func (h *APIHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.data.Events())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}
	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.data.Stats())
}
