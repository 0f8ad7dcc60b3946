package server

import (
	"log/slog"
	"net/http"

	"adventureworks-report/internal/handlers"
	"adventureworks-report/internal/services"
)

type Server struct {
	analytics    *services.Analytics
	mux          *http.ServeMux
	logger       *slog.Logger
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, charts []handlers.Chart) *Server {
	s := &Server{
		analytics:    analytics,
		mux:          http.NewServeMux(),
		logger:       logger,
		apiHandlers:  handlers.NewAPIHandlers(analytics, logger),
		sseHandlers:  handlers.NewSSEHandlers(analytics, logger),
		pageHandlers: handlers.NewPageHandlers(analytics, charts, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Report page and chart images
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleReport)
	s.mux.HandleFunc("GET /charts/{name}", s.pageHandlers.HandleChart)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/monthly-sales", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/customer-pareto", s.apiHandlers.HandleCustomerPareto)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/summary", s.sseHandlers.HandleSummary)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
