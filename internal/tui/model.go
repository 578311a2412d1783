// Package tui is the interactive dashboard: tabbed country views over the
// cache engine's envelopes, with an RSS headline ticker docked at the bottom.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sentinelmon/sentinel/internal/engine"
	"github.com/sentinelmon/sentinel/internal/news"
	"github.com/sentinelmon/sentinel/internal/registry"
)

// ViewState represents the current state of the dashboard.
type ViewState int

const (
	// ViewStateLoading indicates the first refresh has not completed yet.
	ViewStateLoading ViewState = iota
	// ViewStateDashboard indicates data is on screen.
	ViewStateDashboard
	// ViewStateError indicates a storage failure ended the session.
	ViewStateError
	// ViewStateQuitting indicates the application is exiting.
	ViewStateQuitting
)

// Resolver supplies envelopes for the dashboard. *engine.Engine satisfies it.
type Resolver interface {
	ResolveAll(ctx context.Context) (map[string]engine.Envelope, error)
	DegradedSources() []registry.Source
}

// Headliner supplies ticker headlines. *news.Ticker satisfies it.
type Headliner interface {
	Items(ctx context.Context) []news.Item
}

// Tab identifiers, in display order.
var tabNames = []string{"US", "SA"}

// Default dimensions before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30
)

// tickerAdvanceEvery is the headline rotation cadence.
const tickerAdvanceEvery = 5 * time.Second

// newsPollEvery is how often the (internally cached) headline source is asked
// for items.
const newsPollEvery = time.Minute

type refreshTickMsg time.Time

type dataMsg struct {
	data map[string]engine.Envelope
	err  error
	at   time.Time
}

type newsMsg []string

type tickerAdvanceMsg struct{}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx       context.Context
	resolver  Resolver
	headlines Headliner

	refreshEvery time.Duration

	state       ViewState
	data        map[string]engine.Envelope
	degraded    []registry.Source
	err         error
	loading     bool
	lastRefresh time.Time

	activeTab int
	width     int
	height    int

	newsLines []string
	newsIdx   int

	spin spinner.Model
}

// NewModel creates the dashboard model. refreshEvery is the auto-refresh
// cadence; headlines may be nil to disable the ticker.
func NewModel(ctx context.Context, resolver Resolver, headlines Headliner, refreshEvery time.Duration) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(HeaderStyle))
	return Model{
		ctx:          ctx,
		resolver:     resolver,
		headlines:    headlines,
		refreshEvery: refreshEvery,
		state:        ViewStateLoading,
		width:        defaultWidth,
		height:       defaultHeight,
		spin:         sp,
	}
}

// Init kicks off the first refresh, the headline fetch, and the ticker.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd(), m.spin.Tick}
	if m.headlines != nil {
		cmds = append(cmds, m.newsCmd(), tickerAdvanceCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshTickMsg:
		return m, m.refreshCmd()

	case dataMsg:
		return m.handleData(msg)

	case newsMsg:
		m.newsLines = msg
		return m, tea.Tick(newsPollEvery, func(time.Time) tea.Msg {
			return refreshNewsMsg{}
		})

	case refreshNewsMsg:
		return m, m.newsCmd()

	case tickerAdvanceMsg:
		if len(m.newsLines) > 0 {
			m.newsIdx = (m.newsIdx + 1) % len(m.newsLines)
		}
		return m, tickerAdvanceCmd()

	case spinner.TickMsg:
		if m.state != ViewStateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

type refreshNewsMsg struct{}

func (m Model) handleData(msg dataMsg) (tea.Model, tea.Cmd) {
	m.loading = false

	if msg.err != nil {
		// Only storage failures surface here; gateway failures arrive as
		// stale or missing envelopes.
		m.err = msg.err
		m.state = ViewStateError
		return m, nil
	}

	m.data = msg.data
	m.degraded = m.resolver.DegradedSources()
	m.lastRefresh = msg.at
	m.state = ViewStateDashboard

	return m, tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

//nolint:exhaustive // Only handling relevant key types for dashboard navigation.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit

	case tea.KeyTab, tea.KeyRight:
		m.activeTab = (m.activeTab + 1) % len(tabNames)
		return m, nil

	case tea.KeyShiftTab, tea.KeyLeft:
		m.activeTab = (m.activeTab - 1 + len(tabNames)) % len(tabNames)
		return m, nil

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			m.state = ViewStateQuitting
			return m, tea.Quit
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.refreshCmd()
			}
		case "1", "2":
			idx := int(msg.Runes[0] - '1')
			if idx < len(tabNames) {
				m.activeTab = idx
			}
		}
	}

	return m, nil
}

// refreshCmd resolves the full catalog off the Update loop.
func (m Model) refreshCmd() tea.Cmd {
	ctx := m.ctx
	resolver := m.resolver
	return func() tea.Msg {
		data, err := resolver.ResolveAll(ctx)
		return dataMsg{data: data, err: err, at: time.Now()}
	}
}

// newsCmd fetches headlines off the Update loop.
func (m Model) newsCmd() tea.Cmd {
	ctx := m.ctx
	headlines := m.headlines
	return func() tea.Msg {
		return newsMsg(news.Headlines(headlines.Items(ctx)))
	}
}

func tickerAdvanceCmd() tea.Cmd {
	return tea.Tick(tickerAdvanceEvery, func(time.Time) tea.Msg {
		return tickerAdvanceMsg{}
	})
}

// envelope returns the envelope for key, with ok reporting presence.
func (m Model) envelope(key string) (engine.Envelope, bool) {
	env, ok := m.data[key]
	return env, ok
}
