package metrics

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/adsdash/internal/models"
)

const maxPageSize = 1000

// Page is a limit/offset window over a result list.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// PageFromQuery reads limit and offset, defaulting limit to def.
func PageFromQuery(v url.Values, def, total int) Page {
	limit := atoiDef(v.Get("limit"), def)
	offset := atoiDef(v.Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, total)
	return Page{Limit: limit, Offset: offset, Total: total}
}

func Paginate[T any](rows []T, p Page) []T {
	if p.Offset >= len(rows) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[p.Offset:end]
}

// FilterCampaigns keeps the trends named in a comma separated list,
// compared case-insensitively. An empty list keeps everything.
func FilterCampaigns(trends []models.CampaignTrend, list string) []models.CampaignTrend {
	set := csvSet(list)
	if len(set) == 0 {
		return trends
	}
	out := make([]models.CampaignTrend, 0, len(set))
	for _, t := range trends {
		if _, ok := set[norm(t.Campaign)]; ok {
			out = append(out, t)
		}
	}
	return out
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
