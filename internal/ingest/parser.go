package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/adsdash/internal/config"
	"github.com/AngelCh415/adsdash/internal/models"
)

type ParseResult struct {
	Records []models.AdRecord
	// Dropped counts data rows that were skipped because a date or a
	// numeric field did not parse. Blank lines are not counted.
	Dropped int
}

const (
	colDate = iota
	colCampaign
	colKeyword
	colImpressions
	colClicks
	colCost
	colConversions
	numCols
)

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	time.RFC3339,
}

var numberNoise = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", "%", "", " ", "", "\u00a0", "",
)

// ParseCSV turns the export text into records. Malformed rows are dropped
// and counted, never reported as errors; row order is preserved.
func ParseCSV(text string, cols config.Columns) ParseResult {
	res := ParseResult{Records: []models.AdRecord{}}
	if strings.TrimSpace(text) == "" {
		return res
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var idx []int
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				break
			}
			if idx != nil {
				res.Dropped++
			}
			continue
		}
		if blank(row) {
			continue
		}
		if idx == nil {
			idx = columnIndex(row, cols)
			continue
		}
		rec, ok := parseRow(row, idx)
		if !ok {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// columnIndex maps each field to its header position. A configured name that
// is missing from the header falls back to the field's default position.
func columnIndex(header []string, cols config.Columns) []int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		k := normHeader(h)
		if _, dup := pos[k]; !dup {
			pos[k] = i
		}
	}
	idx := make([]int, numCols)
	for i, name := range cols.Names() {
		if p, ok := pos[normHeader(name)]; ok {
			idx[i] = p
		} else {
			idx[i] = i
		}
	}
	return idx
}

func normHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

func parseRow(row []string, idx []int) (models.AdRecord, bool) {
	cell := func(c int) (string, bool) {
		i := idx[c]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	var rec models.AdRecord
	ds, ok := cell(colDate)
	if !ok {
		return rec, false
	}
	d, ok := ParseDate(ds)
	if !ok {
		return rec, false
	}
	rec.Date = d
	rec.Campaign, _ = cell(colCampaign)
	rec.Keyword, _ = cell(colKeyword)

	if rec.Impressions, ok = intCell(cell(colImpressions)); !ok {
		return rec, false
	}
	if rec.Clicks, ok = intCell(cell(colClicks)); !ok {
		return rec, false
	}
	if rec.Cost, ok = floatCell(cell(colCost)); !ok {
		return rec, false
	}
	if rec.Conversions, ok = floatCell(cell(colConversions)); !ok {
		return rec, false
	}
	return rec, true
}

// ParseDate accepts the date layouts spreadsheet exports produce and returns
// the calendar day at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func intCell(s string, present bool) (int64, bool) {
	if !present {
		return 0, false
	}
	s = numberNoise.Replace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, v >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func floatCell(s string, present bool) (float64, bool) {
	if !present {
		return 0, false
	}
	s = numberNoise.Replace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
