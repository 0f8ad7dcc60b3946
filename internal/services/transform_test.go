package services

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"adventureworks-report/internal/errors"
	"adventureworks-report/internal/models"
)

func sale(country string, year, month int, total string) models.SalesRecord {
	return models.SalesRecord{
		Country:      country,
		CalendarYear: year,
		Month:        month,
		TotalSales:   decimal.RequireFromString(total),
	}
}

func customer(id, total string) models.CustomerSalesRecord {
	return models.CustomerSalesRecord{CustomerID: id, TotalSales: decimal.RequireFromString(total)}
}

func TestYearMonth(t *testing.T) {
	got := YearMonth(2023, 2)
	want := time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("YearMonth(2023, 2) = %v, want %v", got, want)
	}
}

func TestCumulativeByCountry_Example(t *testing.T) {
	input := []models.SalesRecord{
		sale("US", 2023, 1, "100"),
		sale("US", 2023, 2, "150"),
		sale("CA", 2023, 1, "200"),
	}

	rows := CumulativeByCountry(input)

	want := []struct {
		country string
		month   int
		cum     string
	}{
		{"CA", 1, "200"},
		{"US", 1, "100"},
		{"US", 2, "250"},
	}
	if len(rows) != len(want) {
		t.Fatalf("len = %d, want %d", len(rows), len(want))
	}
	for i, w := range want {
		r := rows[i]
		if r.Country != w.country || r.Month != w.month || !r.CumulativeSales.Equal(decimal.RequireFromString(w.cum)) {
			t.Errorf("row %d = %s/%d cum %s, want %s/%d cum %s", i, r.Country, r.Month, r.CumulativeSales, w.country, w.month, w.cum)
		}
		if !r.YearMonth.Equal(YearMonth(2023, w.month)) {
			t.Errorf("row %d YearMonth = %v", i, r.YearMonth)
		}
	}

	if !input[0].CumulativeSales.IsZero() || !input[0].YearMonth.IsZero() {
		t.Error("CumulativeByCountry() must not modify its input")
	}
}

func TestCumulativeByCountry_SortsAcrossYears(t *testing.T) {
	rows := CumulativeByCountry([]models.SalesRecord{
		sale("DE", 2024, 1, "5"),
		sale("DE", 2023, 12, "10"),
		sale("DE", 2023, 3, "1"),
	})

	wantMonths := []time.Time{YearMonth(2023, 3), YearMonth(2023, 12), YearMonth(2024, 1)}
	wantCum := []string{"1", "11", "16"}
	for i := range rows {
		if !rows[i].YearMonth.Equal(wantMonths[i]) {
			t.Errorf("row %d YearMonth = %v, want %v", i, rows[i].YearMonth, wantMonths[i])
		}
		if rows[i].CumulativeSales.String() != wantCum[i] {
			t.Errorf("row %d CumulativeSales = %s, want %s", i, rows[i].CumulativeSales, wantCum[i])
		}
	}
}

func TestCumulativeByCountry_DuplicatePeriodsAccumulate(t *testing.T) {
	rows := CumulativeByCountry([]models.SalesRecord{
		sale("FR", 2023, 1, "10"),
		sale("FR", 2023, 2, "5"),
		sale("FR", 2023, 1, "7"),
	})

	// Stable sort keeps the two January rows in input order.
	wantSales := []string{"10", "7", "5"}
	wantCum := []string{"10", "17", "22"}
	for i := range rows {
		if rows[i].TotalSales.String() != wantSales[i] || rows[i].CumulativeSales.String() != wantCum[i] {
			t.Errorf("row %d = sales %s cum %s, want %s/%s", i, rows[i].TotalSales, rows[i].CumulativeSales, wantSales[i], wantCum[i])
		}
	}

	if got := DuplicatePeriods(rows); got != 1 {
		t.Errorf("DuplicatePeriods() = %d, want 1", got)
	}
}

func TestCumulativeByCountry_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	countries := []string{"Australia", "Canada", "France", "Germany", "United Kingdom", "United States"}

	var input []models.SalesRecord
	sums := map[string]decimal.Decimal{}
	for i := 0; i < 500; i++ {
		c := countries[rng.Intn(len(countries))]
		amount := decimal.New(rng.Int63n(1_000_000), -2)
		input = append(input, models.SalesRecord{
			Country:      c,
			CalendarYear: 2021 + rng.Intn(4),
			Month:        1 + rng.Intn(12),
			TotalSales:   amount,
		})
		sums[c] = sums[c].Add(amount)
	}
	rng.Shuffle(len(input), func(i, j int) { input[i], input[j] = input[j], input[i] })

	rows := CumulativeByCountry(input)

	last := map[string]models.SalesRecord{}
	for i, r := range rows {
		if prev, ok := last[r.Country]; ok {
			if r.CumulativeSales.LessThan(prev.CumulativeSales) {
				t.Fatalf("row %d: cumulative sales decreased for %s", i, r.Country)
			}
			if r.YearMonth.Before(prev.YearMonth) {
				t.Fatalf("row %d: YearMonth out of order for %s", i, r.Country)
			}
		}
		last[r.Country] = r
	}

	for c, sum := range sums {
		if !last[c].CumulativeSales.Equal(sum) {
			t.Errorf("%s: final cumulative %s, want %s", c, last[c].CumulativeSales, sum)
		}
	}

	again := CumulativeByCountry(input)
	if !reflect.DeepEqual(rows, again) {
		t.Error("CumulativeByCountry() is not idempotent on unchanged input")
	}
}

func TestSummarizeCountries(t *testing.T) {
	rows := CumulativeByCountry([]models.SalesRecord{
		sale("US", 2023, 1, "100"),
		sale("US", 2023, 2, "150"),
		sale("CA", 2023, 1, "200"),
	})

	got := SummarizeCountries(rows)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	us := got[1]
	if us.Country != "US" || us.Months != 2 || us.TotalSales.String() != "250" {
		t.Errorf("unexpected US summary: %+v", us)
	}
	if !us.FirstMonth.Equal(YearMonth(2023, 1)) || !us.LastMonth.Equal(YearMonth(2023, 2)) {
		t.Errorf("unexpected US month range: %v..%v", us.FirstMonth, us.LastMonth)
	}

	if SummarizeCountries(nil) != nil {
		t.Error("SummarizeCountries(nil) should be nil")
	}
}

func TestPareto_Example(t *testing.T) {
	rows, err := Pareto([]models.CustomerSalesRecord{
		customer("a", "50"),
		customer("b", "30"),
		customer("c", "20"),
	})
	if err != nil {
		t.Fatalf("Pareto() error = %v", err)
	}

	want := []float64{50, 80, 100}
	for i, w := range want {
		if rows[i].CumulativePercentage != w {
			t.Errorf("row %d CumulativePercentage = %v, want %v", i, rows[i].CumulativePercentage, w)
		}
		if rows[i].Rank != i+1 {
			t.Errorf("row %d Rank = %d", i, rows[i].Rank)
		}
	}
}

func TestPareto_SortsDescendingStable(t *testing.T) {
	input := []models.CustomerSalesRecord{
		customer("low", "1"),
		customer("tie-1", "5"),
		customer("high", "10"),
		customer("tie-2", "5"),
	}

	rows, err := Pareto(input)
	if err != nil {
		t.Fatal(err)
	}

	wantIDs := []string{"high", "tie-1", "tie-2", "low"}
	for i, id := range wantIDs {
		if rows[i].CustomerID != id {
			t.Errorf("rank %d = %s, want %s", i+1, rows[i].CustomerID, id)
		}
	}
	if input[0].Rank != 0 {
		t.Error("Pareto() must not modify its input")
	}
}

func TestPareto_SingleRow(t *testing.T) {
	rows, err := Pareto([]models.CustomerSalesRecord{customer("only", "42.5")})
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].CumulativePercentage != 100 {
		t.Errorf("CumulativePercentage = %v, want 100", rows[0].CumulativePercentage)
	}
	if !rows[0].CumulativeSales.Equal(rows[0].TotalSales) {
		t.Errorf("CumulativeSales = %s, want %s", rows[0].CumulativeSales, rows[0].TotalSales)
	}
}

func TestPareto_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	input := make([]models.CustomerSalesRecord, 2000)
	for i := range input {
		input[i] = models.CustomerSalesRecord{TotalSales: decimal.New(rng.Int63n(500_000), -2)}
	}
	input[0].TotalSales = decimal.NewFromInt(1)

	rows, err := Pareto(input)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(rows); i++ {
		if rows[i].TotalSales.GreaterThan(rows[i-1].TotalSales) {
			t.Fatalf("rank %d has more sales than rank %d", i+1, i)
		}
		if rows[i].CumulativePercentage < rows[i-1].CumulativePercentage {
			t.Fatalf("cumulative percentage decreased at rank %d", i+1)
		}
	}
	if last := rows[len(rows)-1].CumulativePercentage; math.Abs(last-100) > 1e-6*100 {
		t.Errorf("final CumulativePercentage = %v, want 100", last)
	}

	again, _ := Pareto(input)
	if !reflect.DeepEqual(rows, again) {
		t.Error("Pareto() is not idempotent on unchanged input")
	}
}

func TestPareto_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    []models.CustomerSalesRecord
		wantCode errors.ErrorCode
	}{
		{"empty", nil, errors.CodeZeroTotal},
		{"all zero", []models.CustomerSalesRecord{customer("a", "0"), customer("b", "0")}, errors.CodeZeroTotal},
		{"cancelling", []models.CustomerSalesRecord{customer("a", "5"), customer("b", "-5")}, errors.CodeZeroTotal},
		{"negative", []models.CustomerSalesRecord{customer("a", "-5")}, errors.CodeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pareto(tt.input)
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestSummarizePareto(t *testing.T) {
	rows, err := Pareto([]models.CustomerSalesRecord{
		customer("a", "50"),
		customer("b", "30"),
		customer("c", "15"),
		customer("d", "5"),
	})
	if err != nil {
		t.Fatal(err)
	}

	got := SummarizePareto(rows, 80)
	if got.Customers != 4 || got.CustomersToThreshold != 2 {
		t.Errorf("unexpected summary: %+v", got)
	}
	if got.CustomerShare != 50 {
		t.Errorf("CustomerShare = %v, want 50", got.CustomerShare)
	}
	if got.TotalSales.String() != "100" {
		t.Errorf("TotalSales = %s, want 100", got.TotalSales)
	}

	if empty := SummarizePareto(nil, 80); empty.Customers != 0 || empty.CustomersToThreshold != 0 {
		t.Errorf("unexpected empty summary: %+v", empty)
	}
}
