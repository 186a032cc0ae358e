package models

import "time"

// AdRecord is one parsed row of the ads export. Date is a UTC calendar day.
type AdRecord struct {
	Date        time.Time `json:"date"`
	Campaign    string    `json:"campaign"`
	Keyword     string    `json:"keyword"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Cost        float64   `json:"cost"`
	Conversions float64   `json:"conversions"`
}

// DateWindow is inclusive on both ends.
type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type DateBounds struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

type DashboardMetrics struct {
	TotalSpend       float64 `json:"total_spend"`
	TotalConversions float64 `json:"total_conversions"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalClicks      int64   `json:"total_clicks"`
	AvgCPA           float64 `json:"avg_cpa"`
	CTR              float64 `json:"ctr"`
	CPC              float64 `json:"cpc"`
}

type KeywordPerformance struct {
	Keyword     string  `json:"keyword"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"`
	CPC         float64 `json:"cpc"`
	CPA         float64 `json:"cpa"`
}

type TrendPoint struct {
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Cost        float64   `json:"cost"`
	Conversions float64   `json:"conversions"`
}

type CampaignTrend struct {
	Campaign string           `json:"campaign"`
	Points   []TrendPoint     `json:"points"`
	Totals   DashboardMetrics `json:"totals"`
}

// Snapshot is the read side of a dashboard session. Values are replaced
// wholesale on every recomputation and never mutated afterwards.
type Snapshot struct {
	RawData            []AdRecord           `json:"raw_data"`
	FilteredData       []AdRecord           `json:"filtered_data"`
	Metrics            DashboardMetrics     `json:"metrics"`
	TopKeywords        []KeywordPerformance `json:"top_keywords"`
	CampaignTrends     []CampaignTrend      `json:"campaign_trends"`
	Loading            bool                 `json:"loading"`
	Error              *string              `json:"error"`
	DateRange          *DateWindow          `json:"date_range"`
	AvailableDateRange *DateBounds          `json:"available_date_range"`
	RecordCount        int                  `json:"record_count"`
	FilteredCount      int                  `json:"filtered_count"`
	DroppedRows        int                  `json:"dropped_rows"`
	FetchedAt          *time.Time           `json:"fetched_at,omitempty"`
}
