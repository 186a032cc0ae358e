package metrics

import (
	"sort"

	"github.com/AngelCh415/adsdash/internal/models"
)

// TopKeywords groups records by exact keyword, ranks the groups by total
// spend descending (ties by keyword ascending) and keeps the first k.
func TopKeywords(records []models.AdRecord, k int) []models.KeywordPerformance {
	if k <= 0 {
		return []models.KeywordPerformance{}
	}
	groups := make(map[string][]models.AdRecord)
	for _, r := range records {
		groups[r.Keyword] = append(groups[r.Keyword], r)
	}
	out := make([]models.KeywordPerformance, 0, len(groups))
	for kw, rs := range groups {
		a := Aggregate(rs)
		out = append(out, models.KeywordPerformance{
			Keyword:     kw,
			Impressions: a.TotalImpressions,
			Clicks:      a.TotalClicks,
			Cost:        a.TotalSpend,
			Conversions: a.TotalConversions,
			CTR:         a.CTR,
			CPC:         a.CPC,
			CPA:         a.AvgCPA,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].Keyword < out[j].Keyword
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
