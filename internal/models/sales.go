package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one row of the monthly-sales-by-country export.
// YearMonth and CumulativeSales are filled in by the transformer.
type SalesRecord struct {
	Country         string          `json:"country"`
	CalendarYear    int             `json:"calendar_year"`
	Month           int             `json:"month"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	YearMonth       time.Time       `json:"year_month"`
	CumulativeSales decimal.Decimal `json:"cumulative_sales"`
}

// CustomerSalesRecord is one row of the customer sales export.
// Rank, CumulativeSales and CumulativePercentage are filled in by the
// transformer.
type CustomerSalesRecord struct {
	CustomerID           string          `json:"customer_id"`
	TotalSales           decimal.Decimal `json:"total_sales"`
	Rank                 int             `json:"rank"`
	CumulativeSales      decimal.Decimal `json:"cumulative_sales"`
	CumulativePercentage float64         `json:"cumulative_percentage"`
}

type CountrySummary struct {
	Country    string          `json:"country"`
	Months     int             `json:"months"`
	TotalSales decimal.Decimal `json:"total_sales"`
	FirstMonth time.Time       `json:"first_month"`
	LastMonth  time.Time       `json:"last_month"`
}

type ParetoSummary struct {
	Customers            int             `json:"customers"`
	TotalSales           decimal.Decimal `json:"total_sales"`
	ThresholdPercent     float64         `json:"threshold_percent"`
	CustomersToThreshold int             `json:"customers_to_threshold"`
	CustomerShare        float64         `json:"customer_share"`
}
