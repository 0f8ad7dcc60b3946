package server

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"adventureworks-report/internal/config"
	"adventureworks-report/internal/handlers"
	"adventureworks-report/internal/middleware"
	"adventureworks-report/internal/services"
)

// Preview displays the charts by serving a local report page until the
// process is interrupted. It satisfies render.Displayer.
type Preview struct {
	cfg       *config.Config
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewPreview(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) *Preview {
	return &Preview{
		cfg:       cfg,
		analytics: analytics,
		logger:    logger,
	}
}

// Charts lists the known chart files that are present in written, in
// report order.
func (p *Preview) Charts(written []string) []handlers.Chart {
	all := []handlers.Chart{
		{Name: "monthly", Title: "Monthly Internet Sales by Country", Path: p.cfg.MonthlyChartPath()},
		{Name: "cumulative", Title: "Cumulative Internet Sales by Country", Path: p.cfg.CumulativeChartPath()},
		{Name: "pareto", Title: "Customer Revenue Concentration", Path: p.cfg.ParetoChartPath()},
	}

	out := make([]handlers.Chart, 0, len(all))
	for _, c := range all {
		if slices.Contains(written, c.Path) {
			out = append(out, c)
		}
	}
	return out
}

// Handler is the preview mux wrapped in the middleware chain.
func (p *Preview) Handler(written []string) http.Handler {
	srv := NewServer(p.analytics, p.logger, p.Charts(written))

	chain := middleware.Chain(
		middleware.Recovery(p.logger),
		middleware.RequestID(),
		middleware.Logger(p.logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.TrustedProxy(p.cfg.Security),
		middleware.RateLimit(middleware.NewRateLimiter(p.cfg.Security), p.logger),
	)
	return chain(srv)
}

func (p *Preview) Display(ctx context.Context, charts []string) error {
	httpServer := &http.Server{
		Addr:         p.cfg.Address(),
		Handler:      p.Handler(charts),
		ReadTimeout:  p.cfg.Preview.ReadTimeout,
		WriteTimeout: p.cfg.Preview.WriteTimeout,
		IdleTimeout:  p.cfg.Preview.IdleTimeout,
	}

	gs := NewGracefulServer(httpServer, p.logger, p.cfg.Preview)
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		p.logger.Info("preview closed", "charts", len(charts))
		return nil
	})

	p.logger.Info("preview available", "url", "http://"+p.cfg.Address()+"/")
	return gs.ListenAndServe(ctx)
}
