package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/adsdash/internal/models"
)

func TestMemoryStoreReplaceAndQuery(t *testing.T) {
	st := NewMemoryStore()
	assert.Zero(t, st.Len())
	_, ok := st.Bounds()
	assert.False(t, ok)

	d, _ := time.Parse("2006-01-02", "2025-08-01")
	in := []models.AdRecord{
		{Date: d, Campaign: "C-1001", Keyword: "a", Impressions: 100, Cost: 100},
		{Date: d.AddDate(0, 0, 1), Campaign: "C-1002", Keyword: "b", Impressions: 10, Cost: 5},
		{Date: d.AddDate(0, 0, 5), Campaign: "C-1001", Keyword: "c", Impressions: 1, Cost: 1},
	}
	v1 := st.Replace(in)
	in[0].Keyword = "mutated"

	all := st.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Keyword)
	all[1].Keyword = "mutated"
	assert.Equal(t, "b", st.All()[1].Keyword)

	b, ok := st.Bounds()
	require.True(t, ok)
	assert.Equal(t, d, b.Min)
	assert.Equal(t, d.AddDate(0, 0, 5), b.Max)

	got := st.Query(d, d.AddDate(0, 0, 1), nil)
	assert.Len(t, got, 2)

	got = st.Query(d, d.AddDate(0, 0, 10), func(r models.AdRecord) bool { return r.Campaign == "C-1001" })
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[1].Keyword)

	v2 := st.Replace(nil)
	assert.Greater(t, v2, v1)
	assert.Equal(t, v2, st.Version())
	assert.Zero(t, st.Len())
	assert.NotNil(t, st.All())
}
