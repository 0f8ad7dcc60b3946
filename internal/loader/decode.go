package loader

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"adventureworks-report/internal/errors"
	"adventureworks-report/internal/models"
)

const (
	ColCountry      = "Country"
	ColCalendarYear = "CalendarYear"
	ColMonth        = "Month"
	ColTotalSales   = "TotalSales"
)

// DecodeSales converts a monthly-sales table into records, in file order.
// Row numbers in diagnostics are 1-based and count data rows only.
func DecodeSales(t *Table) ([]models.SalesRecord, error) {
	idx, err := t.columns(ColCountry, ColCalendarYear, ColMonth, ColTotalSales)
	if err != nil {
		return nil, err
	}
	country, year, month, sales := idx[0], idx[1], idx[2], idx[3]

	records := make([]models.SalesRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowNum := i + 1

		y, err := parseInt(t, row, year, rowNum, ColCalendarYear)
		if err != nil {
			return nil, err
		}

		m, err := parseInt(t, row, month, rowNum, ColMonth)
		if err != nil {
			return nil, err
		}
		if m < 1 || m > 12 {
			return nil, errors.InvalidValue(t.Path, rowNum, ColMonth, "month must be between 1 and 12, got "+strconv.Itoa(m))
		}

		total, err := parseDecimal(t, row, sales, rowNum, ColTotalSales)
		if err != nil {
			return nil, err
		}

		records = append(records, models.SalesRecord{
			Country:      strings.TrimSpace(row[country]),
			CalendarYear: y,
			Month:        m,
			TotalSales:   total,
		})
	}

	return records, nil
}

// DecodeCustomerSales converts a customer-sales table into records, in file
// order. CustomerID comes from idColumn when the table has it, otherwise it
// is the 1-based row number.
func DecodeCustomerSales(t *Table, idColumn string) ([]models.CustomerSalesRecord, error) {
	sales, err := t.Column(ColTotalSales)
	if err != nil {
		return nil, err
	}

	id := -1
	if idColumn != "" && t.HasColumn(idColumn) {
		id, _ = t.Column(idColumn)
	}

	records := make([]models.CustomerSalesRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowNum := i + 1

		total, err := parseDecimal(t, row, sales, rowNum, ColTotalSales)
		if err != nil {
			return nil, err
		}

		customerID := strconv.Itoa(rowNum)
		if id >= 0 {
			customerID = strings.TrimSpace(row[id])
		}

		records = append(records, models.CustomerSalesRecord{
			CustomerID: customerID,
			TotalSales: total,
		})
	}

	return records, nil
}

func parseInt(t *Table, row []string, col, rowNum int, name string) (int, error) {
	raw := strings.TrimSpace(row[col])
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NonNumeric(err, t.Path, rowNum, name, raw)
	}
	return v, nil
}

func parseDecimal(t *Table, row []string, col, rowNum int, name string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(row[col])
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.NonNumeric(err, t.Path, rowNum, name, raw)
	}
	return v, nil
}
