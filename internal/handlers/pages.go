package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"adventureworks-report/internal/errors"
	"adventureworks-report/internal/observability"
	"adventureworks-report/internal/services"
	"adventureworks-report/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

// Chart is a rendered PNG the preview server may hand out.
type Chart struct {
	Name  string
	Title string
	Path  string
}

type PageHandlers struct {
	analytics *services.Analytics
	charts    []Chart
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, charts []Chart, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		charts:    charts,
		logger:    logger,
	}
}

func (h *PageHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	links := make([]templates.ChartLink, 0, len(h.charts))
	for _, c := range h.charts {
		links = append(links, templates.ChartLink{Title: c.Title, URL: "/charts/" + c.Name})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	page := templates.Report(links, h.analytics.CountrySummaries(), h.analytics.ParetoSummary())
	if err := page.Render(ctx, w); err != nil {
		h.logger.Error("render report page", "error", err)
	}
}

// HandleChart serves /charts/{name}. Only the configured chart files are
// reachable.
func (h *PageHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	for _, c := range h.charts {
		if c.Name == name {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, r, c.Path)
			return
		}
	}

	errors.WriteError(w, h.logger,
		errors.NotFound("Chart not found").WithDetails("no chart named %q", name),
		observability.GetRequestID(r.Context()))
}
