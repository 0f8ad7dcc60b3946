package services

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"adventureworks-report/internal/errors"
	"adventureworks-report/internal/models"
)

const percentTolerance = 1e-9

var hundred = decimal.NewFromInt(100)

// YearMonth is the first day of the given month, in UTC.
func YearMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// CumulativeByCountry returns a copy of records with YearMonth set, sorted
// by (Country, YearMonth) and with CumulativeSales holding the running
// total of TotalSales within each country. The sort is stable, so rows that
// share a (Country, YearMonth) are accumulated in input order rather than
// merged.
func CumulativeByCountry(records []models.SalesRecord) []models.SalesRecord {
	rows := slices.Clone(records)
	for i := range rows {
		rows[i].YearMonth = YearMonth(rows[i].CalendarYear, rows[i].Month)
	}

	slices.SortStableFunc(rows, func(a, b models.SalesRecord) int {
		if c := strings.Compare(a.Country, b.Country); c != 0 {
			return c
		}
		return a.YearMonth.Compare(b.YearMonth)
	})

	running := decimal.Zero
	for i := range rows {
		if i == 0 || rows[i].Country != rows[i-1].Country {
			running = decimal.Zero
		}
		running = running.Add(rows[i].TotalSales)
		rows[i].CumulativeSales = running
	}

	return rows
}

// DuplicatePeriods counts rows of a CumulativeByCountry result that repeat
// the (Country, YearMonth) of the row before them.
func DuplicatePeriods(rows []models.SalesRecord) int {
	dups := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].Country == rows[i-1].Country && rows[i].YearMonth.Equal(rows[i-1].YearMonth) {
			dups++
		}
	}
	return dups
}

// SummarizeCountries expects rows in CumulativeByCountry order.
func SummarizeCountries(rows []models.SalesRecord) []models.CountrySummary {
	var out []models.CountrySummary
	for i, r := range rows {
		if i == 0 || r.Country != rows[i-1].Country {
			out = append(out, models.CountrySummary{
				Country:    r.Country,
				FirstMonth: r.YearMonth,
			})
		}
		s := &out[len(out)-1]
		s.Months++
		s.TotalSales = r.CumulativeSales
		s.LastMonth = r.YearMonth
	}
	return out
}

// Pareto returns a copy of records sorted by TotalSales descending (stable)
// with Rank, CumulativeSales and CumulativePercentage filled in. The last
// row's CumulativePercentage is exactly 100.
func Pareto(records []models.CustomerSalesRecord) ([]models.CustomerSalesRecord, error) {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.TotalSales)
	}
	if total.IsZero() {
		return nil, errors.ZeroTotal("customer sales sum to zero, cumulative percentage is undefined").
			WithDetails("%d customers", len(records))
	}
	if total.IsNegative() {
		return nil, errors.New(errors.CodeInvalidValue, "customer sales sum to a negative total").
			WithDetails("total %s", total)
	}

	rows := slices.Clone(records)
	slices.SortStableFunc(rows, func(a, b models.CustomerSalesRecord) int {
		return b.TotalSales.Cmp(a.TotalSales)
	})

	running := decimal.Zero
	for i := range rows {
		running = running.Add(rows[i].TotalSales)
		rows[i].Rank = i + 1
		rows[i].CumulativeSales = running
		rows[i].CumulativePercentage = running.Div(total).Mul(hundred).InexactFloat64()
	}

	return rows, nil
}

// SummarizePareto expects rows from Pareto. CustomersToThreshold is the
// smallest rank whose cumulative percentage reaches threshold.
func SummarizePareto(rows []models.CustomerSalesRecord, threshold float64) models.ParetoSummary {
	summary := models.ParetoSummary{
		Customers:        len(rows),
		ThresholdPercent: threshold,
	}
	if len(rows) == 0 {
		return summary
	}

	summary.TotalSales = rows[len(rows)-1].CumulativeSales
	for _, r := range rows {
		if r.CumulativePercentage+percentTolerance >= threshold {
			summary.CustomersToThreshold = r.Rank
			break
		}
	}
	summary.CustomerShare = float64(summary.CustomersToThreshold) / float64(len(rows)) * 100

	return summary
}
