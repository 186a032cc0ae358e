package metrics

import (
	"time"

	"github.com/AngelCh415/adsdash/internal/models"
)

// DefaultWindowDays is the length of the window a session starts with.
const DefaultWindowDays = 30

// FilterByDateRange keeps the records whose date lies in [from, to], in input
// order. Callers wanting whole-day semantics pass from at 00:00 and to at the
// last instant of its day (see DayWindow).
func FilterByDateRange(records []models.AdRecord, from, to time.Time) []models.AdRecord {
	out := make([]models.AdRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out
}

// Bounds reports the earliest and latest record dates.
func Bounds(records []models.AdRecord) (models.DateBounds, bool) {
	if len(records) == 0 {
		return models.DateBounds{}, false
	}
	b := models.DateBounds{Min: records[0].Date, Max: records[0].Date}
	for _, r := range records[1:] {
		if r.Date.Before(b.Min) {
			b.Min = r.Date
		}
		if r.Date.After(b.Max) {
			b.Max = r.Date
		}
	}
	return b, true
}

// DefaultWindow covers the DefaultWindowDays days ending on the latest date.
func DefaultWindow(b models.DateBounds) models.DateWindow {
	return DayWindow(b.Max.AddDate(0, 0, -(DefaultWindowDays - 1)), b.Max)
}

// DayWindow widens two dates to whole days: from at 00:00:00 and to at
// 23:59:59.999 of its day.
func DayWindow(from, to time.Time) models.DateWindow {
	return models.DateWindow{
		From: startOfDay(from),
		To:   startOfDay(to).Add(24*time.Hour - time.Millisecond),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
