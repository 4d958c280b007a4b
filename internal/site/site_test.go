package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSearchClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "", zap.NewNop())
}

func newStatsClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("", srv.URL, zap.NewNop())
}

func TestSearch_Unconfigured(t *testing.T) {
	c := NewClient("", "", zap.NewNop())
	out := c.Search(context.Background(), "M12345")
	assert.Contains(t, out, "پیکربندی نشده")
}

func TestSearch_ResultsUnderResultsKey(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "M12345", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"results":[
			{"title":"Model A","summary":"first"},
			{"name":"Model B"},
			{"id":42}
		]}`))
	})

	out := c.Search(context.Background(), "M12345")
	assert.Contains(t, out, "• Model A")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "• Model B")
	assert.Contains(t, out, "• 42")
}

func TestSearch_ResultsUnderItemsKey(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":["plain entry"]}`))
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "• plain entry")
}

func TestSearch_TopLevelList(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"direct"}]`))
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "• direct")
}

func TestSearch_CapsAtEightEntries(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"title":"r1"},{"title":"r2"},{"title":"r3"},{"title":"r4"},
			{"title":"r5"},{"title":"r6"},{"title":"r7"},{"title":"r8"},
			{"title":"r9"},{"title":"r10"}
		]}`))
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "• r8")
	assert.NotContains(t, out, "• r9")
}

func TestSearch_EmptyList(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "نتیجه‌ای یافت نشد")
}

func TestSearch_ObjectBodyRenderedAsJSON(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"single object"}`))
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "نتایج (JSON)")
	assert.Contains(t, out, "single object")
}

func TestSearch_NonJSONBodyTruncated(t *testing.T) {
	long := strings.Repeat("a", 4000)
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>" + long + "</html>"))
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "نتیجه جستجو (متن)")
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, len([]rune(out)), maxExcerptRunes+100)
}

func TestSearch_NonOKStatus(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "500")
}

func TestSearch_Timeout(t *testing.T) {
	c := newSearchClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c.searchClient.Timeout = 20 * time.Millisecond

	out := c.Search(context.Background(), "x")
	assert.Contains(t, out, "زمان جستجو طولانی شد")
}

func TestStats_Unconfigured(t *testing.T) {
	c := NewClient("", "", zap.NewNop())
	stats, ok := c.Stats(context.Background())
	assert.False(t, ok)
	assert.Nil(t, stats)
}

func TestStats_ConventionalKeys(t *testing.T) {
	c := newStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"today": 120, "total": 98500}`))
	})

	stats, ok := c.Stats(context.Background())
	require.True(t, ok)
	assert.Equal(t, int64(120), stats.Today)
	assert.Equal(t, int64(98500), stats.Total)
}

func TestStats_AlternateKeys(t *testing.T) {
	c := newStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"visits_today": "73", "all_time": 1200}`))
	})

	stats, ok := c.Stats(context.Background())
	require.True(t, ok)
	assert.Equal(t, int64(73), stats.Today)
	assert.Equal(t, int64(1200), stats.Total)
}

func TestStats_UnrecognizableBody(t *testing.T) {
	c := newStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unrelated": true}`))
	})

	_, ok := c.Stats(context.Background())
	assert.False(t, ok)
}

func TestStats_ServerError(t *testing.T) {
	c := newStatsClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, ok := c.Stats(context.Background())
	assert.False(t, ok)
}
