package dashboard

import (
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/AngelCh415/adsdash/internal/models"
)

// memo caches derived views per (records version, window). Entries are
// immutable once stored.
type memo struct {
	c *ristretto.Cache
}

func newMemo(maxEntries int64) (*memo, error) {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &memo{c: c}, nil
}

func memoKey(version uint64, w models.DateWindow) string {
	return strconv.FormatUint(version, 10) + "|" + w.From.UTC().Format(time.RFC3339Nano) + "|" + w.To.UTC().Format(time.RFC3339Nano)
}

func (m *memo) get(key string) (view, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return view{}, false
	}
	vv, ok := v.(view)
	return vv, ok
}

func (m *memo) set(key string, v view) {
	m.c.Set(key, v, 1)
	m.c.Wait()
}

func (m *memo) clear() { m.c.Clear() }

func (m *memo) close() { m.c.Close() }
