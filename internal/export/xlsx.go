package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/adsdash/internal/models"
)

const (
	sheetSummary  = "Summary"
	sheetKeywords = "Keywords"
	sheetTrends   = "Trends"
)

// WriteWorkbook renders a snapshot as an xlsx workbook with a summary sheet,
// the keyword ranking and one row per campaign per day.
func WriteWorkbook(w io.Writer, s models.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetKeywords); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetTrends); err != nil {
		return err
	}

	if err := writeSummary(f, s); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeKeywords(f, s.TopKeywords); err != nil {
		return fmt.Errorf("keywords sheet: %w", err)
	}
	if err := writeTrends(f, s.CampaignTrends); err != nil {
		return fmt.Errorf("trends sheet: %w", err)
	}
	_, err := f.WriteTo(w)
	return err
}

func writeSummary(f *excelize.File, s models.Snapshot) error {
	from, to := "", ""
	if s.DateRange != nil {
		from = s.DateRange.From.Format("2006-01-02")
		to = s.DateRange.To.Format("2006-01-02")
	}
	rows := [][]any{
		{"From", from},
		{"To", to},
		{"Total spend", s.Metrics.TotalSpend},
		{"Total conversions", s.Metrics.TotalConversions},
		{"Total impressions", s.Metrics.TotalImpressions},
		{"Total clicks", s.Metrics.TotalClicks},
		{"Avg CPA", s.Metrics.AvgCPA},
		{"CTR", s.Metrics.CTR},
		{"CPC", s.Metrics.CPC},
		{"Records", s.FilteredCount},
		{"Dropped rows", s.DroppedRows},
	}
	return writeRows(f, sheetSummary, rows)
}

func writeKeywords(f *excelize.File, kws []models.KeywordPerformance) error {
	rows := [][]any{{"Keyword", "Impressions", "Clicks", "Cost", "Conversions", "CTR", "CPC", "CPA"}}
	for _, k := range kws {
		rows = append(rows, []any{k.Keyword, k.Impressions, k.Clicks, k.Cost, k.Conversions, k.CTR, k.CPC, k.CPA})
	}
	return writeRows(f, sheetKeywords, rows)
}

func writeTrends(f *excelize.File, trends []models.CampaignTrend) error {
	rows := [][]any{{"Campaign", "Date", "Impressions", "Clicks", "Cost", "Conversions"}}
	for _, t := range trends {
		for _, p := range t.Points {
			rows = append(rows, []any{t.Campaign, p.Date.Format("2006-01-02"), p.Impressions, p.Clicks, p.Cost, p.Conversions})
		}
	}
	return writeRows(f, sheetTrends, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
