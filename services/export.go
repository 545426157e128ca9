package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salonbook-backend/utils"
)

const (
	sheetSummary    = "Summary"
	sheetByDay      = "By Day"
	sheetByCategory = "By Category"
)

// SummaryFilename names the export of rng by its calendar days in the report
// timezone, whatever form the request dates were given in.
func SummaryFilename(rng DateRange) string {
	if !rng.Filtered() {
		return "summary-all.xlsx"
	}
	return fmt.Sprintf("summary-%s-%s.xlsx", rng.Start.Format(utils.DayLayout), rng.End.Format(utils.DayLayout))
}

// WriteSummaryXLSX renders s as a workbook with a totals sheet, a per-day
// sheet and a per-category sheet.
func WriteSummaryXLSX(w io.Writer, s *Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	period := "All time"
	if s.From != nil && s.To != nil {
		period = *s.From + " to " + *s.To
	}
	totals := [][]interface{}{
		{"Period", period},
		{"Total Earnings", s.TotalEarnings},
		{"Total Expenses", s.TotalExpenses},
		{"Net Profit", s.NetProfit},
		{"Total Visits", s.TotalVisits},
	}
	if err := writeRows(f, sheetSummary, totals); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetByDay); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetByDay, err)
	}
	dayRows := make([][]interface{}, 0, len(s.ByDay)+1)
	dayRows = append(dayRows, []interface{}{"Date", "Earnings", "Expenses"})
	for _, d := range s.ByDay {
		dayRows = append(dayRows, []interface{}{d.Date, d.Earnings, d.Expenses})
	}
	if err := writeRows(f, sheetByDay, dayRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetByCategory); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetByCategory, err)
	}
	categoryRows := make([][]interface{}, 0, len(s.ExpensesByCategory)+1)
	categoryRows = append(categoryRows, []interface{}{"Category", "Total"})
	for _, c := range s.ExpensesByCategory {
		categoryRows = append(categoryRows, []interface{}{c.Category, c.Total})
	}
	if err := writeRows(f, sheetByCategory, categoryRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
