package state

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/wxpoint/wxpoint/internal/geo"
	"github.com/wxpoint/wxpoint/internal/weather"
)

// Fetcher is the aggregation surface the manager drives.
type Fetcher interface {
	FetchByCoordinates(ctx context.Context, lat, lng float64) (*weather.CompleteWeather, error)
	FetchByText(ctx context.Context, query string) (*weather.CompleteWeather, error)
	FetchByCurrentPosition(ctx context.Context) (*weather.CompleteWeather, geo.PermissionState, error)
}

// Snapshot is a copy of the current view state. At most one of Data,
// Loading, Error is meaningful at a time from the caller's perspective.
type Snapshot struct {
	Data               *weather.CompleteWeather `json:"data"`
	Loading            bool                     `json:"loading"`
	Error              string                   `json:"error,omitempty"`
	LocationPermission geo.PermissionState      `json:"locationPermission"`
}

// QueryKind identifies how a search was initiated.
type QueryKind string

const (
	QueryText        QueryKind = "text"
	QueryCoordinates QueryKind = "coordinates"
	QueryPosition    QueryKind = "position"
)

// Query records the parameters of a successful search so the refresher
// can re-run it later.
type Query struct {
	Kind QueryKind
	Text string
	Lat  float64
	Lng  float64
}

// Manager owns the single mutable slot holding the latest query's
// loading/data/error state. Every search takes a monotonically increasing
// sequence number; a completion whose number is no longer the latest is
// discarded, so overlapping searches can never publish a stale result.
type Manager struct {
	fetcher Fetcher

	seq atomic.Uint64

	mu         sync.Mutex
	data       *weather.CompleteWeather
	loading    bool
	err        string
	permission geo.PermissionState
	lastQuery  *Query
}

// NewManager creates a Manager. Permission starts at "prompt" until a
// current-position search decides it.
func NewManager(fetcher Fetcher) *Manager {
	return &Manager{
		fetcher:    fetcher,
		permission: geo.PermissionPrompt,
	}
}

// SearchByText geocodes the query and loads weather for the first match.
func (m *Manager) SearchByText(ctx context.Context, query string) Snapshot {
	seq, id := m.begin("text", query)
	data, err := m.fetcher.FetchByText(ctx, query)
	return m.finish(seq, id, data, err, nil, Query{Kind: QueryText, Text: query})
}

// SearchByCoordinates loads weather for an explicit coordinate pair.
func (m *Manager) SearchByCoordinates(ctx context.Context, lat, lng float64) Snapshot {
	seq, id := m.begin("coordinates", "")
	data, err := m.fetcher.FetchByCoordinates(ctx, lat, lng)
	return m.finish(seq, id, data, err, nil, Query{Kind: QueryCoordinates, Lat: lat, Lng: lng})
}

// SearchByCurrentPosition resolves the device position and loads weather
// for it, recording the resulting permission state.
func (m *Manager) SearchByCurrentPosition(ctx context.Context) Snapshot {
	seq, id := m.begin("position", "")
	data, perm, err := m.fetcher.FetchByCurrentPosition(ctx)
	return m.finish(seq, id, data, err, &perm, Query{Kind: QueryPosition})
}

// Refresh re-runs the last successful query, if any. Used by the periodic
// refresher to keep the displayed data fresh.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	q := m.lastQuery
	m.mu.Unlock()

	if q == nil {
		return
	}

	switch q.Kind {
	case QueryText:
		m.SearchByText(ctx, q.Text)
	case QueryCoordinates:
		m.SearchByCoordinates(ctx, q.Lat, q.Lng)
	case QueryPosition:
		m.SearchByCurrentPosition(ctx)
	}
}

// ClearError clears only the error field.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.err = ""
	m.mu.Unlock()
}

// ClearData clears both data and error.
func (m *Manager) ClearData() {
	m.mu.Lock()
	m.data = nil
	m.err = ""
	m.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) begin(kind, detail string) (uint64, string) {
	id := uuid.NewString()

	// The sequence number is allocated under the same lock that marks the
	// search as loading, so sequence order always matches publication
	// order and a stale begin can never run after a newer finish.
	m.mu.Lock()
	seq := m.seq.Add(1)
	m.loading = true
	m.err = ""
	m.mu.Unlock()

	if detail != "" {
		log.Printf("state: %s search %s started (%q)", kind, id, detail)
	} else {
		log.Printf("state: %s search %s started", kind, id)
	}
	return seq, id
}

func (m *Manager) finish(seq uint64, id string, data *weather.CompleteWeather, err error, perm *geo.PermissionState, q Query) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seq != m.seq.Load() {
		// A newer search started while this one was in flight; its
		// outcome is the one the slot must reflect.
		log.Printf("state: search %s superseded; discarding its result", id)
		return m.snapshotLocked()
	}

	if perm != nil {
		m.permission = *perm
	}

	m.loading = false
	if err != nil {
		m.err = err.Error()
		m.data = nil
		log.Printf("state: search %s failed: %v", id, err)
	} else {
		m.data = data
		m.err = ""
		m.lastQuery = &q
		log.Printf("state: search %s completed", id)
	}
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Data:               m.data,
		Loading:            m.loading,
		Error:              m.err,
		LocationPermission: m.permission,
	}
}
