package pipeline

import (
	"context"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"adventureworks-report/internal/config"
	"adventureworks-report/internal/errors"
	"adventureworks-report/internal/services"
)

const monthlyCSV = `Country,CalendarYear,Month,TotalSales
United States,2023,2,150.00
United States,2023,1,100.00
Canada,2023,1,200.00
Canada,2023,2,50.25
United States,2023,3,75.50
`

const customersCSV = `CustomerKey,TotalSales
11000,20
11001,50
11002,30
`

func testConfig(t *testing.T, monthly, customers string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if content != "" {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		return path
	}

	return &config.Config{
		Input: config.InputConfig{
			MonthlySalesCSV:  write("monthly_sales_by_country.csv", monthly),
			CustomerSalesCSV: write("Customers_Sales.csv", customers),
			CustomerIDColumn: "CustomerKey",
		},
		Output: config.OutputConfig{
			Dir:                 filepath.Join(dir, "out"),
			MonthlyChartFile:    "MonthlySales.png",
			CumulativeChartFile: "CumulativeSales.png",
			ParetoChartFile:     "customer_sales_pareto.png",
			ChartDPI:            20,
			ParetoChartDPI:      20,
		},
		Analysis: config.AnalysisConfig{ParetoThreshold: 80, RunTimeout: time.Minute},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("chart %s not written: %v", path, err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("chart %s is not a valid PNG: %v", path, err)
	}
}

func TestRunner_Run(t *testing.T) {
	cfg := testConfig(t, monthlyCSV, customersCSV)
	analytics := services.NewAnalytics(testLogger())
	runner := NewRunner(cfg, analytics, testLogger())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{cfg.MonthlyChartPath(), cfg.CumulativeChartPath(), cfg.ParetoChartPath()}
	if len(result.Charts) != len(want) {
		t.Fatalf("Charts = %v, want %v", result.Charts, want)
	}
	for i, path := range want {
		if result.Charts[i] != path {
			t.Errorf("Charts[%d] = %s, want %s", i, result.Charts[i], path)
		}
		assertPNG(t, path)
	}

	rows := analytics.MonthlySales()
	if len(rows) != 5 {
		t.Fatalf("MonthlySales() len = %d, want 5", len(rows))
	}
	last := rows[len(rows)-1]
	if last.Country != "United States" || last.CumulativeSales.String() != "325.5" {
		t.Errorf("last row = %s %s, want United States 325.5", last.Country, last.CumulativeSales)
	}

	pareto := analytics.CustomerPareto()
	if pareto[0].CustomerID != "11001" || pareto[2].CumulativePercentage != 100 {
		t.Errorf("unexpected pareto rows: %+v", pareto)
	}
	if got := analytics.ParetoSummary().CustomersToThreshold; got != 2 {
		t.Errorf("CustomersToThreshold = %d, want 2", got)
	}
}

func TestRunner_Run_Idempotent(t *testing.T) {
	cfg := testConfig(t, monthlyCSV, customersCSV)
	analytics := services.NewAnalytics(testLogger())
	runner := NewRunner(cfg, analytics, testLogger())

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := analytics.MonthlySales()
	firstPareto := analytics.CustomerPareto()

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := analytics.MonthlySales()
	secondPareto := analytics.CustomerPareto()

	for i := range first {
		if !first[i].CumulativeSales.Equal(second[i].CumulativeSales) || first[i].Country != second[i].Country {
			t.Errorf("row %d differs between runs", i)
		}
	}
	for i := range firstPareto {
		if firstPareto[i].CumulativePercentage != secondPareto[i].CumulativePercentage {
			t.Errorf("pareto row %d differs between runs", i)
		}
	}
}

func TestRunner_Run_Errors(t *testing.T) {
	tests := []struct {
		name      string
		monthly   string
		customers string
		wantCode  errors.ErrorCode
		wantMsg   string
	}{
		{
			name:      "missing monthly file",
			monthly:   "",
			customers: customersCSV,
			wantCode:  errors.CodeFileNotFound,
			wantMsg:   "monthly_sales pipeline",
		},
		{
			name:      "missing customer file",
			monthly:   monthlyCSV,
			customers: "",
			wantCode:  errors.CodeFileNotFound,
			wantMsg:   "customer_pareto pipeline",
		},
		{
			name:      "zero customer total",
			monthly:   monthlyCSV,
			customers: "CustomerKey,TotalSales\n1,0\n2,0\n",
			wantCode:  errors.CodeZeroTotal,
		},
		{
			name:      "missing column",
			monthly:   "Country,Year,Month,TotalSales\nUS,2023,1,1\n",
			customers: customersCSV,
			wantCode:  errors.CodeColumnMissing,
			wantMsg:   `no column "CalendarYear"`,
		},
		{
			name:      "non numeric sales",
			monthly:   monthlyCSV,
			customers: "CustomerKey,TotalSales\n1,lots\n",
			wantCode:  errors.CodeNonNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.monthly, tt.customers)
			runner := NewRunner(cfg, services.NewAnalytics(testLogger()), testLogger())

			_, err := runner.Run(context.Background())
			if err == nil {
				t.Fatal("Run() should fail")
			}
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.wantCode, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRunner_Run_Canceled(t *testing.T) {
	cfg := testConfig(t, monthlyCSV, customersCSV)
	runner := NewRunner(cfg, services.NewAnalytics(testLogger()), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx); err == nil {
		t.Fatal("Run() should fail on a canceled context")
	}
	if _, err := os.Stat(cfg.ParetoChartPath()); !os.IsNotExist(err) {
		t.Error("no chart should be written after cancellation")
	}
}
