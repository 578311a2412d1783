package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssDoc(title string, items ...string) string {
	body := ""
	for i, t := range items {
		body += fmt.Sprintf(
			`<item><title>%s</title><link>https://example.com/%d</link>`+
				`<pubDate>Mon, 02 Jun 2025 %02d:00:00 GMT</pubDate></item>`,
			t, i, 10+i)
	}
	return fmt.Sprintf(
		`<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title>%s</channel></rss>`,
		title, body)
}

func TestItemsFiltersByKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssDoc("Wire",
			"Treasury yields surge on auction results",
			"Local sports team wins championship",
			"Fed holds rates steady"))
	}))
	defer srv.Close()

	ticker := NewTicker(WithFeeds([]string{srv.URL}))
	items := ticker.Items(context.Background())

	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, "Wire", it.Source)
		assert.NotEmpty(t, it.URL)
	}
}

func TestItemsCapsEntriesPerFeed(t *testing.T) {
	titles := make([]string, 8)
	for i := range titles {
		titles[i] = fmt.Sprintf("Bond market update %d", i)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssDoc("Wire", titles...))
	}))
	defer srv.Close()

	ticker := NewTicker(WithFeeds([]string{srv.URL}))
	items := ticker.Items(context.Background())
	assert.Len(t, items, itemsPerFeed)
}

func TestItemsServedFromCacheUntilExpiry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, rssDoc("Wire", "Gold rallies on debt fears"))
	}))
	defer srv.Close()

	ticker := NewTicker(WithFeeds([]string{srv.URL}), WithRefreshInterval(time.Hour))
	ticker.Items(context.Background())
	ticker.Items(context.Background())
	assert.Equal(t, int32(1), hits.Load())
}

func TestItemsKeepsStaleHeadlinesWhenFeedsFail(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, rssDoc("Wire", "Inflation print tops forecasts"))
	}))
	defer srv.Close()

	ticker := NewTicker(WithFeeds([]string{srv.URL}), WithRefreshInterval(0))
	first := ticker.Items(context.Background())
	require.Len(t, first, 1)

	fail.Store(true)
	ticker.fetchedAt = time.Time{} // force a refetch attempt
	second := ticker.Items(context.Background())
	assert.Equal(t, first, second)
}

func TestHeadlinesFormat(t *testing.T) {
	lines := Headlines([]Item{{Title: "Fed cuts rates", Source: "Wire"}})
	require.Len(t, lines, 1)
	assert.Equal(t, "[Wire] Fed cuts rates", lines[0])
}
