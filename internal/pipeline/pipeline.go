// Package pipeline wires loader, transformer and renderer together for the
// monthly-sales and customer-Pareto reports.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"adventureworks-report/internal/config"
	"adventureworks-report/internal/loader"
	"adventureworks-report/internal/models"
	"adventureworks-report/internal/observability"
	"adventureworks-report/internal/render"
	"adventureworks-report/internal/services"
)

const (
	pipelineMonthly = "monthly_sales"
	pipelinePareto  = "customer_pareto"
)

type Runner struct {
	cfg       *config.Config
	analytics *services.Analytics
	logger    *slog.Logger
}

// Result lists the chart files written by a run, in the order they were
// declared.
type Result struct {
	Charts   []string
	Duration time.Duration
}

func NewRunner(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		analytics: analytics,
		logger:    logger,
	}
}

// Run executes both pipelines concurrently. The first failure cancels the
// other pipeline and is returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	var monthlyCharts, paretoCharts []string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		charts, err := r.MonthlySales(gctx)
		if err != nil {
			return fmt.Errorf("%s pipeline: %w", pipelineMonthly, err)
		}
		monthlyCharts = charts
		return nil
	})

	g.Go(func() error {
		charts, err := r.CustomerPareto(gctx)
		if err != nil {
			return fmt.Errorf("%s pipeline: %w", pipelinePareto, err)
		}
		paretoCharts = charts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Charts:   append(monthlyCharts, paretoCharts...),
		Duration: time.Since(start),
	}, nil
}

// MonthlySales loads the monthly export, computes cumulative sales per
// country and writes the monthly and cumulative charts.
func (r *Runner) MonthlySales(ctx context.Context) ([]string, error) {
	ctx, span := observability.StartSpan(ctx, pipelineMonthly)
	defer span.End(r.logger)

	logger := r.logger.With("pipeline", pipelineMonthly)
	path := r.cfg.Input.MonthlySalesCSV

	var table *loader.Table
	err := r.stage(ctx, logger, "load", func(ctx context.Context, span *observability.Span) error {
		var err error
		table, err = loader.ReadCSV(ctx, path)
		if err == nil {
			span.SetTag("path", path)
			span.SetIntTag("rows", table.Len())
		}
		return err
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	var rows []models.SalesRecord
	err = r.stage(ctx, logger, "transform", func(ctx context.Context, span *observability.Span) error {
		records, err := loader.DecodeSales(table)
		if err != nil {
			return err
		}
		rows = r.analytics.SetMonthlySales(records)
		span.SetIntTag("rows", len(rows))
		span.SetIntTag("countries", len(r.analytics.CountrySummaries()))
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	for _, s := range r.analytics.CountrySummaries() {
		logger.Info("country sales",
			"country", s.Country,
			"months", s.Months,
			"total_sales", s.TotalSales.StringFixed(2),
			"first_month", s.FirstMonth.Format("2006-01"),
			"last_month", s.LastMonth.Format("2006-01"),
		)
	}

	charts := []struct {
		chart  render.Chart
		series []render.Series
		path   string
	}{
		{render.MonthlySalesChart(r.cfg.Output.ChartDPI), render.MonthlySalesSeries(rows), r.cfg.MonthlyChartPath()},
		{render.CumulativeSalesChart(r.cfg.Output.ChartDPI), render.CumulativeSalesSeries(rows), r.cfg.CumulativeChartPath()},
	}

	written := make([]string, 0, len(charts))
	for _, c := range charts {
		err := r.stage(ctx, logger, "render", func(ctx context.Context, span *observability.Span) error {
			span.SetTag("path", c.path)
			return c.chart.Save(c.path, c.series)
		})
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		written = append(written, c.path)
	}

	return written, nil
}

// CustomerPareto loads the customer export, ranks customers by revenue and
// writes the Pareto chart.
func (r *Runner) CustomerPareto(ctx context.Context) ([]string, error) {
	ctx, span := observability.StartSpan(ctx, pipelinePareto)
	defer span.End(r.logger)

	logger := r.logger.With("pipeline", pipelinePareto)
	path := r.cfg.Input.CustomerSalesCSV
	threshold := r.cfg.Analysis.ParetoThreshold

	var table *loader.Table
	err := r.stage(ctx, logger, "load", func(ctx context.Context, span *observability.Span) error {
		var err error
		table, err = loader.ReadCSV(ctx, path)
		if err == nil {
			span.SetTag("path", path)
			span.SetIntTag("rows", table.Len())
		}
		return err
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	var rows []models.CustomerSalesRecord
	err = r.stage(ctx, logger, "transform", func(ctx context.Context, span *observability.Span) error {
		records, err := loader.DecodeCustomerSales(table, r.cfg.Input.CustomerIDColumn)
		if err != nil {
			return err
		}
		rows, err = r.analytics.SetCustomerSales(records, threshold)
		if err != nil {
			return err
		}
		span.SetIntTag("rows", len(rows))
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	summary := r.analytics.ParetoSummary()
	logger.Info("revenue concentration",
		"customers", summary.Customers,
		"total_sales", summary.TotalSales.StringFixed(2),
		"threshold_percent", summary.ThresholdPercent,
		"customers_to_threshold", summary.CustomersToThreshold,
		"customer_share_percent", fmt.Sprintf("%.1f", summary.CustomerShare),
	)

	chartPath := r.cfg.ParetoChartPath()
	err = r.stage(ctx, logger, "render", func(ctx context.Context, span *observability.Span) error {
		span.SetTag("path", chartPath)
		chart := render.ParetoChart(r.cfg.Output.ParetoChartDPI, threshold)
		return chart.Save(chartPath, render.ParetoSeries(rows))
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return []string{chartPath}, nil
}

// stage runs fn inside a child span, honouring cancellation before it
// starts, and logs how long it took.
func (r *Runner) stage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context, *observability.Span) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := observability.StartSpan(ctx, name)
	defer span.End(logger)

	start := time.Now()
	if err := fn(ctx, span); err != nil {
		span.SetError(err)
		return err
	}

	attrs := []any{"stage", name, "duration", time.Since(start)}
	for k, v := range span.Tags {
		attrs = append(attrs, k, v)
	}
	logger.Info("stage complete", attrs...)
	return nil
}
