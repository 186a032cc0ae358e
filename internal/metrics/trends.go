package metrics

import (
	"sort"
	"time"

	"github.com/AngelCh415/adsdash/internal/models"
)

// CampaignTrends builds one daily series per campaign, ordered by campaign
// name. A series runs from the later of the campaign's first record day and
// the window's first day through the window's last day, with zero points on
// days without records. Records outside the window are ignored.
func CampaignTrends(records []models.AdRecord, w models.DateWindow) []models.CampaignTrend {
	anchorDay := startOfDay(w.To)
	floor := startOfDay(w.From)

	byCampaign := make(map[string][]models.AdRecord)
	for _, r := range records {
		byCampaign[r.Campaign] = append(byCampaign[r.Campaign], r)
	}
	names := make([]string, 0, len(byCampaign))
	for n := range byCampaign {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]models.CampaignTrend, 0, len(names))
	for _, name := range names {
		out = append(out, buildTrend(name, byCampaign[name], floor, anchorDay))
	}
	return out
}

func buildTrend(name string, rs []models.AdRecord, floor, anchorDay time.Time) models.CampaignTrend {
	start := anchorDay
	for _, r := range rs {
		if d := startOfDay(r.Date); d.Before(start) {
			start = d
		}
	}
	if start.Before(floor) {
		start = floor
	}

	days := int(anchorDay.Sub(start).Hours()/24) + 1
	points := make([]models.TrendPoint, days)
	for i := range points {
		points[i].Date = start.AddDate(0, 0, i)
	}
	var kept []models.AdRecord
	for _, r := range rs {
		d := startOfDay(r.Date)
		if d.Before(start) || d.After(anchorDay) {
			continue
		}
		i := int(d.Sub(start).Hours() / 24)
		p := &points[i]
		p.Impressions += r.Impressions
		p.Clicks += r.Clicks
		p.Cost += r.Cost
		p.Conversions += r.Conversions
		kept = append(kept, r)
	}
	return models.CampaignTrend{Campaign: name, Points: points, Totals: Aggregate(kept)}
}
