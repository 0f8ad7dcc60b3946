package render

import (
	"context"
	"image/color"
	"log/slog"
	"strconv"

	"gonum.org/v1/plot/vg"

	"adventureworks-report/internal/models"
)

func MonthlySalesChart(dpi int) Chart {
	return Chart{
		Title:           "Monthly Internet Sales by Country",
		XLabel:          "Year-Month",
		YLabel:          "Monthly Sales",
		Width:           12 * vg.Inch,
		Height:          6 * vg.Inch,
		DPI:             dpi,
		TimeAxis:        true,
		TimeFormat:      "Jan 2006",
		TickEveryMonths: 3,
		LegendTop:       true,
		LegendLeft:      true,
	}
}

func CumulativeSalesChart(dpi int) Chart {
	c := MonthlySalesChart(dpi)
	c.Title = "Cumulative Internet Sales by Country"
	c.YLabel = "Cumulative Sales"
	return c
}

func ParetoChart(dpi int, threshold float64) Chart {
	return Chart{
		Title:  "Customer Revenue Concentration (Pareto Analysis)",
		XLabel: "Number of Customers",
		YLabel: "Cumulative % of Total Sales",
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		DPI:    dpi,
		Reference: &ReferenceLine{
			Y:     threshold,
			Label: strconv.FormatFloat(threshold, 'f', -1, 64) + "% Revenue Threshold",
			Color: color.RGBA{R: 220, A: 255},
		},
	}
}

func byCountry(r models.SalesRecord) string {
	return r.Country
}

func yearMonthX(r models.SalesRecord) float64 {
	return UnixX(r.YearMonth)
}

// MonthlySalesSeries plots TotalSales over YearMonth, one series per country.
func MonthlySalesSeries(rows []models.SalesRecord) []Series {
	return GroupSeries(rows, byCountry, yearMonthX, func(r models.SalesRecord) float64 {
		return r.TotalSales.InexactFloat64()
	})
}

// CumulativeSalesSeries plots CumulativeSales over YearMonth, one series per
// country.
func CumulativeSalesSeries(rows []models.SalesRecord) []Series {
	return GroupSeries(rows, byCountry, yearMonthX, func(r models.SalesRecord) float64 {
		return r.CumulativeSales.InexactFloat64()
	})
}

// ParetoSeries plots CumulativePercentage over customer rank.
func ParetoSeries(rows []models.CustomerSalesRecord) []Series {
	return GroupSeries(rows, nil,
		func(r models.CustomerSalesRecord) float64 { return float64(r.Rank) },
		func(r models.CustomerSalesRecord) float64 { return r.CumulativePercentage },
	)
}

// Displayer shows charts that have already been written to disk.
type Displayer interface {
	Display(ctx context.Context, charts []string) error
}

// Headless is the display used when there is no screen: it only logs.
type Headless struct {
	Logger *slog.Logger
}

func (h Headless) Display(_ context.Context, charts []string) error {
	if h.Logger != nil {
		h.Logger.Debug("headless run, charts not displayed", "charts", charts)
	}
	return nil
}
