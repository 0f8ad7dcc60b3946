package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"adventureworks-report/internal/services"
	"adventureworks-report/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleSummary patches the #summary fragment and pushes the Pareto summary
// as the paretoSummary signal.
func (h *SSEHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	countries := h.analytics.CountrySummaries()
	pareto := h.analytics.ParetoSummary()

	var sb strings.Builder
	if err := templates.Summary(countries, pareto).Render(r.Context(), &sb); err != nil {
		h.logger.Error("render summary fragment", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	signals, err := json.Marshal(map[string]any{"paretoSummary": pareto})
	if err != nil {
		h.logger.Error("marshal pareto summary", "error", err)
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(sb.String()); err != nil {
		h.logger.Warn("patch summary elements", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch pareto signals", "error", err)
	}
}
