package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sentinelmon/sentinel/internal/engine"
	"github.com/sentinelmon/sentinel/internal/fetch"
	"github.com/sentinelmon/sentinel/internal/fetch/fiscalfile"
	"github.com/sentinelmon/sentinel/internal/fetch/fred"
	"github.com/sentinelmon/sentinel/internal/fetch/yahoo"
	"github.com/sentinelmon/sentinel/internal/store"
)

// openStore opens the cache database, creating its directory if needed.
func (a *app) openStore() (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(a.cfg.Database.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	return st, nil
}

// buildEngine assembles the provider router and the cache engine over st.
func (a *app) buildEngine(st *store.Store) *engine.Engine {
	gateway := fetch.NewRouter(a.cfg.Fetch.Timeout,
		fred.New(a.cfg.FRED.APIKey),
		yahoo.New(),
		fiscalfile.New(a.cfg.Fiscal.Path),
	)
	return engine.New(st, gateway, engine.WithPolicy(engine.Policy{
		MacroWindow:  a.cfg.Freshness.MacroWindow,
		MarketWindow: a.cfg.Freshness.MarketWindow,
	}))
}
