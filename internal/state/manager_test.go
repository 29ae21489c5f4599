package state

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/wxpoint/wxpoint/internal/geo"
	"github.com/wxpoint/wxpoint/internal/weather"
)

// fetcherFunc lets each test script the aggregation calls directly.
type fetcherFunc struct {
	text     func(ctx context.Context, query string) (*weather.CompleteWeather, error)
	coords   func(ctx context.Context, lat, lng float64) (*weather.CompleteWeather, error)
	position func(ctx context.Context) (*weather.CompleteWeather, geo.PermissionState, error)
}

func (f *fetcherFunc) FetchByText(ctx context.Context, query string) (*weather.CompleteWeather, error) {
	return f.text(ctx, query)
}

func (f *fetcherFunc) FetchByCoordinates(ctx context.Context, lat, lng float64) (*weather.CompleteWeather, error) {
	return f.coords(ctx, lat, lng)
}

func (f *fetcherFunc) FetchByCurrentPosition(ctx context.Context) (*weather.CompleteWeather, geo.PermissionState, error) {
	return f.position(ctx)
}

func dataFor(city string) *weather.CompleteWeather {
	return &weather.CompleteWeather{
		Location: weather.Place{City: city, State: "CO"},
		Forecast: []weather.ForecastPeriod{},
		Hourly:   []weather.ForecastPeriod{},
		Alerts:   []weather.Alert{},
	}
}

func TestInitialSnapshot(t *testing.T) {
	m := NewManager(&fetcherFunc{})
	snap := m.Snapshot()

	if snap.Data != nil || snap.Loading || snap.Error != "" {
		t.Errorf("unexpected initial snapshot: %+v", snap)
	}
	if snap.LocationPermission != geo.PermissionPrompt {
		t.Errorf("permission must start at prompt, got %v", snap.LocationPermission)
	}
}

func TestSearchByTextSuccess(t *testing.T) {
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			return dataFor("Denver"), nil
		},
	}
	m := NewManager(f)

	snap := m.SearchByText(context.Background(), "Denver")
	if snap.Loading {
		t.Error("loading must be false after completion")
	}
	if snap.Error != "" {
		t.Errorf("unexpected error %q", snap.Error)
	}
	if snap.Data == nil || snap.Data.Location.City != "Denver" {
		t.Errorf("unexpected data: %+v", snap.Data)
	}
}

func TestSearchFailureClearsPreviousData(t *testing.T) {
	fail := false
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			if fail {
				return nil, errors.New("failed to get forecast data")
			}
			return dataFor("Denver"), nil
		},
	}
	m := NewManager(f)

	m.SearchByText(context.Background(), "Denver")

	fail = true
	snap := m.SearchByText(context.Background(), "Denver")
	if snap.Data != nil {
		t.Error("failed query must discard previous data")
	}
	if snap.Error != "failed to get forecast data" {
		t.Errorf("unexpected error %q", snap.Error)
	}
	if snap.Loading {
		t.Error("loading must be false after failure")
	}
}

func TestNewSearchClearsPreviousError(t *testing.T) {
	fail := true
	started := make(chan Snapshot, 1)
	var m *Manager
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			if fail {
				return nil, errors.New("boom")
			}
			started <- m.Snapshot()
			return dataFor("Denver"), nil
		},
	}
	m = NewManager(f)

	m.SearchByText(context.Background(), "Denver")

	fail = false
	m.SearchByText(context.Background(), "Denver")

	mid := <-started
	if mid.Error != "" {
		t.Errorf("starting a search must clear the previous error, saw %q", mid.Error)
	}
	if !mid.Loading {
		t.Error("expected loading=true while the search runs")
	}
}

func TestClearErrorAndClearData(t *testing.T) {
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			return dataFor("Denver"), nil
		},
	}
	m := NewManager(f)
	m.SearchByText(context.Background(), "Denver")

	m.mu.Lock()
	m.err = "stale error"
	m.mu.Unlock()

	m.ClearError()
	snap := m.Snapshot()
	if snap.Error != "" {
		t.Errorf("ClearError left %q", snap.Error)
	}
	if snap.Data == nil {
		t.Error("ClearError must not touch data")
	}

	m.ClearData()
	snap = m.Snapshot()
	if snap.Data != nil || snap.Error != "" {
		t.Errorf("ClearData left %+v", snap)
	}
}

func TestSearchByCurrentPositionRecordsPermission(t *testing.T) {
	granted := false
	f := &fetcherFunc{
		position: func(ctx context.Context) (*weather.CompleteWeather, geo.PermissionState, error) {
			if granted {
				return dataFor("Denver"), geo.PermissionGranted, nil
			}
			return nil, geo.PermissionDenied, geo.ErrPermissionDenied
		},
	}
	m := NewManager(f)

	snap := m.SearchByCurrentPosition(context.Background())
	if snap.LocationPermission != geo.PermissionDenied {
		t.Errorf("expected denied, got %v", snap.LocationPermission)
	}
	if snap.Error == "" {
		t.Error("expected an error message")
	}

	granted = true
	snap = m.SearchByCurrentPosition(context.Background())
	if snap.LocationPermission != geo.PermissionGranted {
		t.Errorf("expected granted, got %v", snap.LocationPermission)
	}
	if snap.Data == nil {
		t.Error("expected data")
	}
}

// TestOverlappingSearchesDiscardStaleResult drives two overlapping text
// searches: the first keeps running until after the second has completed.
// The slot must reflect the second search, and the first search's late
// completion must be discarded.
func TestOverlappingSearchesDiscardStaleResult(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			if query == "Denver" {
				close(firstStarted)
				<-release
				return dataFor("Denver"), nil
			}
			return dataFor("Miami"), nil
		},
	}
	m := NewManager(f)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.SearchByText(context.Background(), "Denver")
	}()

	<-firstStarted
	snap := m.SearchByText(context.Background(), "Miami")
	if snap.Data == nil || snap.Data.Location.City != "Miami" {
		t.Fatalf("expected Miami result, got %+v", snap.Data)
	}

	close(release)
	wg.Wait()

	final := m.Snapshot()
	if final.Data == nil || final.Data.Location.City != "Miami" {
		t.Errorf("stale Denver result overwrote the newer Miami result: %+v", final.Data)
	}
	if final.Loading {
		t.Error("loading must be false after both searches settle")
	}
}

// TestConcurrentSearchesAlwaysSettle hammers the manager with overlapping
// searches from many goroutines. Whichever order the begins and finishes
// interleave in, the slot must come to rest: loading cleared and the data
// of some completed search in place. A begin that runs after a newer
// search's finish must not be able to re-raise loading for a result that
// will then be discarded.
func TestConcurrentSearchesAlwaysSettle(t *testing.T) {
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			return dataFor(query), nil
		},
	}
	m := NewManager(f)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.SearchByText(context.Background(), "Denver")
			}
		}()
	}
	wg.Wait()

	final := m.Snapshot()
	if final.Loading {
		t.Error("loading must be false once every search has settled")
	}
	if final.Data == nil || final.Data.Location.City != "Denver" {
		t.Errorf("expected a completed result after all searches settle, got %+v", final.Data)
	}
}

// Begin and finish log with the same request id so overlapping searches
// can be told apart in the output.
func TestSearchLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			return dataFor(query), nil
		},
	}
	m := NewManager(f)
	m.SearchByText(context.Background(), "Denver")

	out := buf.String()
	var id string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "search") && strings.Contains(line, "started") {
			fields := strings.Fields(line)
			for i, field := range fields {
				if field == "search" && i+1 < len(fields) {
					id = fields[i+1]
				}
			}
		}
	}
	if id == "" {
		t.Fatalf("no search start logged:\n%s", out)
	}
	if !strings.Contains(out, "search "+id+" completed") {
		t.Errorf("completion log must carry request id %s:\n%s", id, out)
	}
}

func TestRefreshRerunsLastSuccessfulQuery(t *testing.T) {
	var queries []string
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			queries = append(queries, query)
			return dataFor(query), nil
		},
	}
	m := NewManager(f)

	// Nothing to refresh yet.
	m.Refresh(context.Background())
	if len(queries) != 0 {
		t.Fatalf("refresh before any search must be a no-op, got %v", queries)
	}

	m.SearchByText(context.Background(), "Denver")
	m.Refresh(context.Background())

	if len(queries) != 2 || queries[1] != "Denver" {
		t.Errorf("expected refresh to re-run the Denver search, got %v", queries)
	}
}

func TestFailedSearchDoesNotBecomeRefreshTarget(t *testing.T) {
	calls := 0
	f := &fetcherFunc{
		text: func(ctx context.Context, query string) (*weather.CompleteWeather, error) {
			calls++
			return nil, errors.New("boom")
		},
	}
	m := NewManager(f)

	m.SearchByText(context.Background(), "Denver")
	m.Refresh(context.Background())

	if calls != 1 {
		t.Errorf("failed search must not be re-run by refresh, got %d calls", calls)
	}
}
