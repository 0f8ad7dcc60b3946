package services

import (
	"log/slog"
	"sync"
	"time"

	"adventureworks-report/internal/models"
)

// Analytics holds the derived tables of the last run so the preview display
// can serve them. All methods are safe for concurrent use.
type Analytics struct {
	mu           sync.RWMutex
	monthly      []models.SalesRecord
	countries    []models.CountrySummary
	customers    []models.CustomerSalesRecord
	pareto       models.ParetoSummary
	lastModified time.Time
	logger       *slog.Logger
}

// NewAnalytics returns an empty holder. A nil logger means slog.Default().
func NewAnalytics(logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		monthly:   []models.SalesRecord{},
		countries: []models.CountrySummary{},
		customers: []models.CustomerSalesRecord{},
		logger:    logger,
	}
}

// SetMonthlySales runs the cumulative-by-country transform, stores the
// result and returns it.
func (a *Analytics) SetMonthlySales(records []models.SalesRecord) []models.SalesRecord {
	rows := CumulativeByCountry(records)
	countries := SummarizeCountries(rows)

	if dups := DuplicatePeriods(rows); dups > 0 {
		a.logger.Warn("duplicate country/month rows accumulated without merging", "rows", dups)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.monthly = rows
	a.countries = countries
	a.lastModified = time.Now()

	return rows
}

// SetCustomerSales runs the Pareto transform, stores the result and returns
// it. Nothing is stored when the transform fails.
func (a *Analytics) SetCustomerSales(records []models.CustomerSalesRecord, threshold float64) ([]models.CustomerSalesRecord, error) {
	rows, err := Pareto(records)
	if err != nil {
		return nil, err
	}
	summary := SummarizePareto(rows, threshold)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.customers = rows
	a.pareto = summary
	a.lastModified = time.Now()

	return rows, nil
}

func (a *Analytics) MonthlySales() []models.SalesRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.monthly
}

func (a *Analytics) CountrySummaries() []models.CountrySummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.countries
}

func (a *Analytics) CustomerPareto() []models.CustomerSalesRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.customers
}

func (a *Analytics) ParetoSummary() models.ParetoSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pareto
}

// Stats reports row counts and the time of the last update for the admin
// endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"monthly_rows":           len(a.monthly),
		"countries":              len(a.countries),
		"customers":              len(a.customers),
		"customers_to_threshold": a.pareto.CustomersToThreshold,
		"last_processed":         a.lastModified,
	}
}
