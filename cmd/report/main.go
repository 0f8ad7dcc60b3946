package main

import (
	"context"
	"log/slog"
	"os"

	"adventureworks-report/internal/config"
	"adventureworks-report/internal/errors"
	"adventureworks-report/internal/observability"
	"adventureworks-report/internal/pipeline"
	"adventureworks-report/internal/render"
	"adventureworks-report/internal/server"
	"adventureworks-report/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "code", errors.CodeOf(err), "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting report",
		"monthly_sales_csv", cfg.Input.MonthlySalesCSV,
		"customer_sales_csv", cfg.Input.CustomerSalesCSV,
		"output_dir", cfg.Output.Dir,
		"pareto_threshold", cfg.Analysis.ParetoThreshold,
	)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("report failed", "code", errors.CodeOf(err), "error", err)
		os.Exit(1)
	}

	logger.Info("report finished")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	analytics := services.NewAnalytics(logger)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Analysis.RunTimeout)
	defer cancel()

	result, err := pipeline.NewRunner(cfg, analytics, logger).Run(runCtx)
	if err != nil {
		return err
	}
	logger.Info("charts written", "charts", result.Charts, "duration", result.Duration)

	return displayer(cfg, analytics, logger).Display(ctx, result.Charts)
}

func displayer(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) render.Displayer {
	if cfg.Preview.Enabled {
		return server.NewPreview(cfg, analytics, logger)
	}
	return render.Headless{Logger: logger}
}
