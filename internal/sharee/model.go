package sharee

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"sharefind/internal/directory"
	"sharefind/internal/domain"
	"sharefind/internal/eventbus"
)

// DefaultPageSize is how many sharees are requested per category page
const DefaultPageSize = 50

// Role selects which derived value an indexed read returns
type Role int

const (
	// RoleSharee is the candidate itself
	RoleSharee Role = iota
	// RoleDisplay is the human-facing label
	RoleDisplay
	// RoleMatch is the autocompleter match string; not meant for display
	RoleMatch
)

// String returns a human-readable name for the role
func (r Role) String() string {
	switch r {
	case RoleSharee:
		return "sharee"
	case RoleDisplay:
		return "display"
	case RoleMatch:
		return "match"
	}
	return "unknown"
}

// ErrUnknownRole is returned by Data for a role it does not know about
var ErrUnknownRole = errors.New("unknown sharee role")

// DirectorySearcher runs one sharee search against the remote directory.
// *directory.Client implements it.
type DirectorySearcher interface {
	Sharees(ctx context.Context, opts directory.SearchOptions) (*directory.ShareeResults, error)
}

// Options tune a model; zero values pick the defaults
type Options struct {
	DebounceInterval time.Duration
	PageSize         int
}

// Model coordinates debounced typeahead sharee searches and holds the
// resulting ordered candidate list.
//
// All mutations run on a single internal loop goroutine: setters, the
// debounce expiry and fetch completions post closures onto one channel, so
// the coordination logic itself never runs concurrently with itself. Indexed
// reads take a read lock that the loop holds exclusively while it swaps the
// result list, which keeps each published list atomic from the readers'
// perspective.
//
// Overlapping fetches are resolved by generation: every issued fetch gets
// the next generation id and a completion is only applied while it is still
// the most recently issued one. Last issued wins, not last arrived.
type Model struct {
	bus      eventbus.EventBus
	searcher DirectorySearcher
	debounce *debouncer
	pageSize int

	ctx    context.Context
	cancel context.CancelFunc
	ops    chan func()
	done   chan struct{}
	once   sync.Once

	// Owned by the loop goroutine
	phase      Phase
	generation uint64

	mu         sync.RWMutex // guards the fields below
	session    *directory.Session
	searchText string
	itemKind   domain.ItemKind
	lookupMode domain.LookupMode
	fetching   bool
	exclusions domain.ExclusionSet
	sharees    []domain.Sharee
}

// NewModel creates a sharee model publishing on the given bus and searching
// through the given directory searcher. The model is live immediately; call
// Close when done with it.
func NewModel(bus eventbus.EventBus, searcher DirectorySearcher, opts Options) *Model {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		bus:      bus,
		searcher: searcher,
		pageSize: pageSize,
		ctx:      ctx,
		cancel:   cancel,
		ops:      make(chan func(), 64),
		done:     make(chan struct{}),
	}
	m.debounce = newDebouncer(opts.DebounceInterval, func(epoch uint64) {
		m.post(func() { m.onTimerExpired(epoch) })
	})

	go m.run()
	return m
}

// Close stops the loop, the debounce timer and any in-flight request context
func (m *Model) Close() {
	m.once.Do(func() {
		m.debounce.Stop()
		m.cancel()
		close(m.done)
	})
}

// run executes posted closures one at a time until Close
func (m *Model) run() {
	for {
		select {
		case fn := <-m.ops:
			fn()
		case <-m.done:
			return
		}
	}
}

// post hands a closure to the loop goroutine
func (m *Model) post(fn func()) {
	select {
	case m.ops <- fn:
	case <-m.done:
	}
}

// ---------------------------- Properties ---------------------------- //

// SetSession replaces the authenticated session. Without a session no fetch
// is ever issued and the model reports an empty list.
func (m *Model) SetSession(session *directory.Session) {
	m.post(func() {
		m.mu.Lock()
		if m.session == session {
			m.mu.Unlock()
			return
		}
		m.session = session
		m.mu.Unlock()

		m.bus.Publish(eventbus.SessionChangedEvent{})
	})
}

// Session returns the current session, nil when none is set
func (m *Model) Session() *directory.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// SetSearchText updates the query text and reopens the debounce window
func (m *Model) SetSearchText(text string) {
	m.post(func() {
		m.mu.Lock()
		if m.searchText == text {
			m.mu.Unlock()
			return
		}
		m.searchText = text
		m.mu.Unlock()

		m.bus.Publish(eventbus.SearchTextChangedEvent{Text: text})

		phase, act := transition(m.phase, phaseEvent{kind: eventEdit})
		m.phase = phase
		if act == actionRestartTimer {
			m.debounce.Edit()
		}
	})
}

// SearchText returns the current query text
func (m *Model) SearchText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searchText
}

// SetItemIsFolder sets whether the item being shared is a folder
func (m *Model) SetItemIsFolder(isFolder bool) {
	kind := domain.ItemKindFile
	if isFolder {
		kind = domain.ItemKindFolder
	}
	m.post(func() {
		m.mu.Lock()
		if m.itemKind == kind {
			m.mu.Unlock()
			return
		}
		m.itemKind = kind
		m.mu.Unlock()

		m.bus.Publish(eventbus.ItemKindChangedEvent{ItemKind: kind})
	})
}

// ItemIsFolder reports whether the item being shared is a folder
func (m *Model) ItemIsFolder() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.itemKind == domain.ItemKindFolder
}

// SetLookupMode selects local or global recipient lookup
func (m *Model) SetLookupMode(mode domain.LookupMode) {
	m.post(func() {
		m.mu.Lock()
		if m.lookupMode == mode {
			m.mu.Unlock()
			return
		}
		m.lookupMode = mode
		m.mu.Unlock()

		m.bus.Publish(eventbus.LookupModeChangedEvent{Mode: mode})
	})
}

// LookupMode returns the current lookup mode
func (m *Model) LookupMode() domain.LookupMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookupMode
}

// SetExclusions replaces the set of recipients hidden from results, i.e.
// the ones the item is already shared with. Applies from the next fetch on.
func (m *Model) SetExclusions(refs []domain.ShareeRef) {
	exclusions := make(domain.ExclusionSet, len(refs))
	copy(exclusions, refs)
	m.post(func() {
		m.mu.Lock()
		m.exclusions = exclusions
		m.mu.Unlock()
	})
}

// IsFetching reports whether a fetch is in flight
func (m *Model) IsFetching() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetching
}

// ----------------------------- Read model ----------------------------- //

// Count returns the number of published sharees. Like the rest of the read
// model it answers empty while no session is set.
func (m *Model) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return 0
	}
	return len(m.sharees)
}

// ShareeAt returns the sharee at the index, ok=false when out of range
func (m *Model) ShareeAt(index int) (domain.Sharee, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.sharees) {
		return domain.Sharee{}, false
	}
	return m.sharees[index], true
}

// Data returns the derived value for one row and role. An out-of-range
// index yields an absent value; an unknown role is an ErrUnknownRole.
func (m *Model) Data(index int, role Role) (interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.sharees) {
		return nil, nil
	}
	s := m.sharees[index]

	switch role {
	case RoleSharee:
		return s, nil
	case RoleDisplay:
		return s.Format(), nil
	case RoleMatch:
		// Fed to the autocompleter, not shown to the user
		return s.DisplayName + " (" + s.ShareWith + ")", nil
	}

	log.Printf("Got unknown role %d, returning no value", int(role))
	return nil, ErrUnknownRole
}

// ------------------------- Fetch coordination ------------------------- //

// onTimerExpired runs on the loop goroutine when the debounce settles
func (m *Model) onTimerExpired(epoch uint64) {
	// A timer can fire while an edit is already queued ahead of its expiry;
	// that edit reopens the quiet window, so the expiry no longer counts.
	if !m.debounce.Current(epoch) {
		return
	}

	m.mu.RLock()
	text := m.searchText
	hasSession := m.session != nil
	m.mu.RUnlock()

	fetchable := hasSession && text != ""
	phase, act := transition(m.phase, phaseEvent{kind: eventTimerExpired, fetchable: fetchable})
	m.phase = phase

	if act != actionStartFetch {
		if !fetchable {
			log.Printf("Not fetching sharees for search text %q", text)
		}
		return
	}

	m.startFetch()
}

// startFetch issues the next-generation directory search
func (m *Model) startFetch() {
	m.generation++
	generation := m.generation

	m.mu.Lock()
	m.fetching = true
	query := domain.SearchQuery{
		Text:       m.searchText,
		ItemKind:   m.itemKind,
		LookupMode: m.lookupMode,
	}
	m.mu.Unlock()

	m.bus.Publish(eventbus.FetchStateChangedEvent{Fetching: true})

	opts := directory.SearchOptions{
		Search:   query.Text,
		ItemType: query.ItemKind.String(),
		Page:     1,
		PerPage:  m.pageSize,
		Lookup:   query.LookupMode == domain.GlobalSearch,
	}

	go func() {
		results, err := m.searcher.Sharees(m.ctx, opts)
		m.post(func() {
			m.completeFetch(generation, results, err)
		})
	}()
}

// completeFetch runs on the loop goroutine with the outcome of one fetch
func (m *Model) completeFetch(generation uint64, results *directory.ShareeResults, err error) {
	latest := generation == m.generation
	phase, act := transition(m.phase, phaseEvent{kind: eventResponseReceived, latest: latest})
	if act != actionApplyResult {
		log.Printf("Discarding sharee response for superseded fetch %d (latest %d)", generation, m.generation)
		return
	}
	m.phase = phase

	m.mu.Lock()
	m.fetching = false
	exclusions := m.exclusions
	m.mu.Unlock()

	m.bus.Publish(eventbus.FetchStateChangedEvent{Fetching: false})

	if err != nil {
		statusCode := 0
		message := err.Error()
		var statusErr *directory.StatusError
		if errors.As(err, &statusErr) {
			statusCode = statusErr.StatusCode
			message = statusErr.Message
		}
		// The previously published list stays up; stale but valid beats empty
		m.bus.Publish(eventbus.SearchErrorEvent{StatusCode: statusCode, Message: message})
		return
	}

	sharees := Merge(results, exclusions)

	m.bus.Publish(eventbus.ResultsResetBeganEvent{})
	m.mu.Lock()
	m.sharees = sharees
	m.mu.Unlock()
	m.bus.Publish(eventbus.ResultsResetEndedEvent{})
	m.bus.Publish(eventbus.ResultsReadyEvent{Count: len(sharees)})
}
