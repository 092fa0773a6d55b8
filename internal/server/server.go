package server

import (
	"log/slog"
	"net/http"

	"sig-dashboard/internal/handlers"
	"sig-dashboard/internal/services"
)

type Server struct {
	data        *services.Dataset
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(data *services.Dataset, logger *slog.Logger, templateHandlers *TemplateHandlers, maxUploadBytes int64) *Server {
	s := &Server{
		data:        data,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(data, logger, maxUploadBytes),
		sseHandlers: handlers.NewSSEHandlers(data, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes. "/{$}" matches the root exactly, so unknown
	// paths and wrong methods fall through to the mux's 404/405.
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/kpis/monthly", s.apiHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /api/insights", s.apiHandlers.HandleInsights)
	s.mux.HandleFunc("GET /api/breakdowns/states", s.apiHandlers.HandleStates)
	s.mux.HandleFunc("GET /api/breakdowns/cities", s.apiHandlers.HandleCities)
	s.mux.HandleFunc("GET /api/breakdowns/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/breakdowns/payments", s.apiHandlers.HandlePayments)
	s.mux.HandleFunc("GET /api/events", s.apiHandlers.HandleEvents)

	// Dataset lifecycle
	s.mux.HandleFunc("POST /api/upload", s.apiHandlers.HandleUpload)
	s.mux.HandleFunc("POST /api/sample", s.apiHandlers.HandleLoadSample)
	s.mux.HandleFunc("POST /api/reset", s.apiHandlers.HandleReset)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/kpi-cards", s.sseHandlers.HandleKPICards)
	s.mux.HandleFunc("GET /sse/insights", s.sseHandlers.HandleInsights)
	s.mux.HandleFunc("GET /sse/monthly", s.sseHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /sse/states", s.sseHandlers.HandleStates)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
