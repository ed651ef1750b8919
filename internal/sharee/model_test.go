package sharee

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharefind/internal/directory"
	"sharefind/internal/domain"
	"sharefind/internal/eventbus"
)

const testDebounce = 15 * time.Millisecond

// fakeSearcher records calls and answers through a per-call handler
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []directory.SearchOptions
	handler func(call int, opts directory.SearchOptions) (*directory.ShareeResults, error)
}

func (f *fakeSearcher) Sharees(ctx context.Context, opts directory.SearchOptions) (*directory.ShareeResults, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	call := len(f.calls)
	handler := f.handler
	f.mu.Unlock()
	return handler(call, opts)
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSearcher) call(i int) directory.SearchOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// eventRecorder collects every event published on the bus
type eventRecorder struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func recordEvents(bus eventbus.EventBus) *eventRecorder {
	r := &eventRecorder{}
	for _, eventType := range []eventbus.EventType{
		eventbus.EventSearchTextChanged,
		eventbus.EventSessionChanged,
		eventbus.EventItemKindChanged,
		eventbus.EventLookupModeChanged,
		eventbus.EventFetchStateChanged,
		eventbus.EventResultsResetBegan,
		eventbus.EventResultsResetEnded,
		eventbus.EventResultsReady,
		eventbus.EventSearchError,
	} {
		bus.Subscribe(eventType, func(e eventbus.DomainEvent) {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
		})
	}
	return r
}

func (r *eventRecorder) count(eventType eventbus.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

func (r *eventRecorder) typesSeen() []eventbus.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]eventbus.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type()
	}
	return types
}

func (r *eventRecorder) last(eventType eventbus.EventType) eventbus.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type() == eventType {
			return r.events[i]
		}
	}
	return nil
}

func usersResponse(pairs ...[2]string) *directory.ShareeResults {
	results := &directory.ShareeResults{}
	for _, p := range pairs {
		results.Users = append(results.Users, directory.ShareeEntry{
			Label: p[0],
			Value: directory.ShareeValue{ShareWith: p[1], ShareType: 0},
		})
	}
	return results
}

func newTestModel(t *testing.T, handler func(call int, opts directory.SearchOptions) (*directory.ShareeResults, error)) (*Model, *fakeSearcher, *eventRecorder) {
	t.Helper()

	bus := eventbus.New()
	t.Cleanup(bus.Stop)
	recorder := recordEvents(bus)
	searcher := &fakeSearcher{handler: handler}

	m := NewModel(bus, searcher, Options{DebounceInterval: testDebounce})
	t.Cleanup(m.Close)

	return m, searcher, recorder
}

// flush waits until the model's loop has processed everything posted so far
func flush(m *Model) {
	done := make(chan struct{})
	m.post(func() { close(done) })
	<-done
}

func testSession() *directory.Session {
	return directory.NewSession("https://cloud.example.com", "ann", "secret")
}

func TestNoFetchWithoutSession(t *testing.T) {
	m, searcher, _ := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse(), nil
	})

	m.SetSearchText("ann")
	time.Sleep(8 * testDebounce)
	flush(m)

	assert.Equal(t, 0, searcher.callCount())
	assert.Equal(t, 0, m.Count())
}

func TestNoFetchForEmptyText(t *testing.T) {
	m, searcher, _ := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse(), nil
	})
	m.SetSession(testSession())

	m.SetSearchText("ann")
	m.SetSearchText("")
	time.Sleep(8 * testDebounce)
	flush(m)

	assert.Equal(t, 0, searcher.callCount())
}

func TestBurstOfEditsIssuesOneFetch(t *testing.T) {
	m, searcher, recorder := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse([2]string{"Ann", "ann"}), nil
	})
	m.SetSession(testSession())

	for _, text := range []string{"a", "an", "ann"} {
		m.SetSearchText(text)
	}

	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Exactly one fetch for the burst, issued with the final text
	require.Equal(t, 1, searcher.callCount())
	opts := searcher.call(0)
	assert.Equal(t, "ann", opts.Search)
	assert.Equal(t, "file", opts.ItemType)
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, DefaultPageSize, opts.PerPage)
	assert.False(t, opts.Lookup)

	// No stray second settle afterwards
	time.Sleep(8 * testDebounce)
	assert.Equal(t, 1, searcher.callCount())
}

func TestStaleExpiryBehindQueuedEditDoesNotFetch(t *testing.T) {
	interval := 100 * time.Millisecond
	bus := eventbus.New()
	defer bus.Stop()
	searcher := &fakeSearcher{handler: func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse([2]string{"Abby", "abby"}), nil
	}}
	m := NewModel(bus, searcher, Options{DebounceInterval: interval})
	defer m.Close()

	m.SetSession(testSession())
	m.SetSearchText("a")
	flush(m)

	// Hold the loop so an edit and the old timer's expiry queue up together,
	// edit first. Stopping that timer is too late; it has already fired.
	release := make(chan struct{})
	m.post(func() { <-release })
	m.SetSearchText("ab")
	time.Sleep(interval + interval/2)
	close(release)
	flush(m)

	// The expiry ran right after the edit reopened the window; it belongs to
	// the previous window and must not have triggered a fetch.
	assert.Equal(t, 0, searcher.callCount())

	// The reopened window settles on its own schedule, with the final text
	require.Eventually(t, func() bool {
		return searcher.callCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "ab", searcher.call(0).Search)

	// And exactly once
	time.Sleep(2 * interval)
	assert.Equal(t, 1, searcher.callCount())
}

func TestFetchParametersFollowProperties(t *testing.T) {
	m, searcher, recorder := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse(), nil
	})
	m.SetSession(testSession())
	m.SetItemIsFolder(true)
	m.SetLookupMode(domain.GlobalSearch)

	m.SetSearchText("team")

	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, 1, searcher.callCount())
	opts := searcher.call(0)
	assert.Equal(t, "folder", opts.ItemType)
	assert.True(t, opts.Lookup)
}

func TestPublishedListAndReadModel(t *testing.T) {
	response := usersResponse([2]string{"Ann", "ann"})
	m, _, recorder := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return response, nil
	})
	m.SetSession(testSession())
	m.SetSearchText("ann")

	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, 1, m.Count())

	s, ok := m.ShareeAt(0)
	require.True(t, ok)
	assert.Equal(t, domain.ShareTypeUser, s.Type)
	assert.Equal(t, "ann", s.ShareWith)
	assert.Equal(t, "Ann", s.Format())

	display, err := m.Data(0, RoleDisplay)
	require.NoError(t, err)
	assert.Equal(t, "Ann", display)

	match, err := m.Data(0, RoleMatch)
	require.NoError(t, err)
	assert.Equal(t, "Ann (ann)", match)

	raw, err := m.Data(0, RoleSharee)
	require.NoError(t, err)
	assert.Equal(t, s, raw)

	// Out of range is absent, not an error
	value, err := m.Data(5, RoleDisplay)
	require.NoError(t, err)
	assert.Nil(t, value)

	_, ok = m.ShareeAt(5)
	assert.False(t, ok)

	// Unknown roles are a defined error kind
	_, err = m.Data(0, Role(99))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestExcludedShareeNeverPublished(t *testing.T) {
	m, _, recorder := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse([2]string{"Ann", "ann"}), nil
	})
	m.SetSession(testSession())
	m.SetExclusions([]domain.ShareeRef{{Type: domain.ShareTypeUser, ShareWith: "ann"}})
	m.SetSearchText("ann")

	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, m.Count())
	ready := recorder.last(eventbus.EventResultsReady).(eventbus.ResultsReadyEvent)
	assert.Equal(t, 0, ready.Count)
}

func TestPublishEventOrdering(t *testing.T) {
	m, _, recorder := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse([2]string{"Ann", "ann"}), nil
	})
	m.SetSession(testSession())
	m.SetSearchText("ann")

	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []eventbus.EventType{
		eventbus.EventSessionChanged,
		eventbus.EventSearchTextChanged,
		eventbus.EventFetchStateChanged,
		eventbus.EventFetchStateChanged,
		eventbus.EventResultsResetBegan,
		eventbus.EventResultsResetEnded,
		eventbus.EventResultsReady,
	}, recorder.typesSeen())
}

func TestServiceFailureKeepsPreviousResults(t *testing.T) {
	m, _, recorder := newTestModel(t, func(call int, opts directory.SearchOptions) (*directory.ShareeResults, error) {
		if call == 1 {
			return usersResponse([2]string{"Ann", "ann"}), nil
		}
		return nil, &directory.StatusError{StatusCode: 403, Message: "forbidden"}
	})
	m.SetSession(testSession())

	m.SetSearchText("ann")
	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 1, m.Count())

	m.SetSearchText("bob")
	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventSearchError) == 1
	}, 2*time.Second, 5*time.Millisecond)

	errEvent := recorder.last(eventbus.EventSearchError).(eventbus.SearchErrorEvent)
	assert.Equal(t, 403, errEvent.StatusCode)
	assert.Equal(t, "forbidden", errEvent.Message)

	// Fetch state flipped back, but the stale list stays published
	assert.False(t, m.IsFetching())
	assert.Equal(t, 1, m.Count())
	s, ok := m.ShareeAt(0)
	require.True(t, ok)
	assert.Equal(t, "ann", s.ShareWith)
	assert.Equal(t, 1, recorder.count(eventbus.EventResultsReady))
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	m, searcher, recorder := newTestModel(t, func(call int, opts directory.SearchOptions) (*directory.ShareeResults, error) {
		if call == 1 {
			// First fetch hangs until released, well after the second lands
			<-release
			return usersResponse([2]string{"Ann", "ann"}), nil
		}
		return usersResponse([2]string{"Bob", "bob"}), nil
	})
	m.SetSession(testSession())

	m.SetSearchText("ann")
	require.Eventually(t, func() bool {
		return searcher.callCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	m.SetSearchText("bob")
	require.Eventually(t, func() bool {
		return recorder.count(eventbus.EventResultsReady) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 2, searcher.callCount())

	s, ok := m.ShareeAt(0)
	require.True(t, ok)
	require.Equal(t, "bob", s.ShareWith)

	// Now the first fetch finally completes; it belongs to a superseded
	// generation and must not overwrite the newer list.
	close(release)
	time.Sleep(8 * testDebounce)
	flush(m)

	assert.Equal(t, 1, recorder.count(eventbus.EventResultsReady))
	s, ok = m.ShareeAt(0)
	require.True(t, ok)
	assert.Equal(t, "bob", s.ShareWith)
	assert.False(t, m.IsFetching())
}

func TestPropertySettersSuppressNoOps(t *testing.T) {
	m, _, recorder := newTestModel(t, func(int, directory.SearchOptions) (*directory.ShareeResults, error) {
		return usersResponse(), nil
	})

	session := testSession()
	m.SetSession(session)
	m.SetSession(session)
	m.SetItemIsFolder(true)
	m.SetItemIsFolder(true)
	m.SetLookupMode(domain.GlobalSearch)
	m.SetLookupMode(domain.GlobalSearch)
	flush(m)
	// flush drains the model loop but the bus dispatches asynchronously;
	// give it the same grace period the other tests use.
	time.Sleep(8 * testDebounce)

	assert.Equal(t, 1, recorder.count(eventbus.EventSessionChanged))
	assert.Equal(t, 1, recorder.count(eventbus.EventItemKindChanged))
	assert.Equal(t, 1, recorder.count(eventbus.EventLookupModeChanged))

	assert.Equal(t, session, m.Session())
	assert.True(t, m.ItemIsFolder())
	assert.Equal(t, domain.GlobalSearch, m.LookupMode())
}
