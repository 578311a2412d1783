// Package news fetches headlines for the dashboard ticker from RSS feeds,
// filtered down to fiscal and monetary topics.
package news

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/sentinelmon/sentinel/internal/logging"
)

// DefaultRefreshInterval is how long fetched headlines are served before the
// feeds are polled again.
const DefaultRefreshInterval = 10 * time.Minute

// itemsPerFeed caps how many entries are taken from each feed.
const itemsPerFeed = 5

// DefaultFeeds are the market-news RSS feeds polled when the config does not
// override them.
var DefaultFeeds = []string{
	"https://www.cnbc.com/id/10000664/device/rss/rss.html",
	"https://feeds.content.dowjones.io/public/rss/mw_topstories",
	"https://finance.yahoo.com/news/rssindex",
}

// defaultKeywords select headlines relevant to sovereign-debt risk. A headline
// is kept when its title contains any of them, case-insensitive.
var defaultKeywords = []string{
	"Treasury", "Fed", "Auction", "Yield", "Bond", "Debt", "Inflation", "Gold",
}

// Item is a single filtered headline.
type Item struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Ticker polls RSS feeds and caches the filtered headlines.
type Ticker struct {
	feeds    []string
	keywords []string
	parser   *gofeed.Parser
	ttl      time.Duration

	mu        sync.Mutex
	items     []Item
	fetchedAt time.Time
}

// Option configures a Ticker.
type Option func(*Ticker)

// WithFeeds replaces the default feed list.
func WithFeeds(feeds []string) Option {
	return func(t *Ticker) {
		if len(feeds) > 0 {
			t.feeds = feeds
		}
	}
}

// WithRefreshInterval overrides the cache TTL.
func WithRefreshInterval(d time.Duration) Option {
	return func(t *Ticker) {
		if d > 0 {
			t.ttl = d
		}
	}
}

// NewTicker creates a ticker over the default feeds and keywords.
func NewTicker(opts ...Option) *Ticker {
	t := &Ticker{
		feeds:    DefaultFeeds,
		keywords: defaultKeywords,
		parser:   gofeed.NewParser(),
		ttl:      DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Items returns the current headlines, refetching when the cache has aged
// past the refresh interval. Feed failures are logged and skipped; the
// previous headlines survive a round where every feed fails.
func (t *Ticker) Items(ctx context.Context) []Item {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.fetchedAt) < t.ttl && t.items != nil {
		return t.items
	}

	var all []Item
	for _, url := range t.feeds {
		items, err := t.fetchFeed(ctx, url)
		if err != nil {
			logctx := logging.FromContext(ctx)
			logctx.Warn().
				Str("component", "news").
				Str("feed", url).
				Err(err).
				Msg("feed fetch failed, skipping")
			continue
		}
		all = append(all, items...)
	}

	if len(all) == 0 {
		// Keep serving what we had rather than blanking the ticker.
		return t.items
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	t.items = all
	t.fetchedAt = time.Now()
	return t.items
}

// Headlines renders items as "[Source] Title" lines for the ticker row.
func Headlines(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprintf("[%s] %s", it.Source, it.Title))
	}
	return out
}

func (t *Ticker) fetchFeed(ctx context.Context, url string) ([]Item, error) {
	feed, err := t.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", url, err)
	}

	source := feed.Title
	if source == "" {
		source = "News"
	}

	var items []Item
	for i, entry := range feed.Items {
		if i >= itemsPerFeed {
			break
		}
		if !matchesAny(entry.Title, t.keywords) {
			continue
		}
		item := Item{
			Title:  stripHTML(entry.Title),
			URL:    entry.Link,
			Source: source,
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// matchesAny reports whether text contains any keyword, case-insensitive.
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// stripHTML flattens markup some feeds embed in titles.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
