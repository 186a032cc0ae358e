package metrics

import (
	"sort"

	"github.com/AngelCh415/adsdash/internal/models"
)

// Aggregate reduces records to totals and derived ratios. A ratio whose
// divisor is zero is reported as 0.
func Aggregate(records []models.AdRecord) models.DashboardMetrics {
	var m models.DashboardMetrics
	costs := make([]float64, 0, len(records))
	convs := make([]float64, 0, len(records))
	for _, r := range records {
		m.TotalImpressions += r.Impressions
		m.TotalClicks += r.Clicks
		costs = append(costs, r.Cost)
		convs = append(convs, r.Conversions)
	}
	m.TotalSpend = orderedSum(costs)
	m.TotalConversions = orderedSum(convs)
	m.AvgCPA = safeDivF(m.TotalSpend, m.TotalConversions)
	m.CTR = safeDivF(float64(m.TotalClicks), float64(m.TotalImpressions))
	m.CPC = safeDivF(m.TotalSpend, float64(m.TotalClicks))
	return m
}

// orderedSum adds values in ascending order so the result does not depend
// on the order records arrived in. It sorts vs in place.
func orderedSum(vs []float64) float64 {
	sort.Float64s(vs)
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
