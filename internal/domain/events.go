package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchTextChanged EventType = "SearchTextChanged"
	EventSessionChanged    EventType = "SessionChanged"
	EventItemKindChanged   EventType = "ItemKindChanged"
	EventLookupModeChanged EventType = "LookupModeChanged"
	EventFetchStateChanged EventType = "FetchStateChanged"
	EventResultsResetBegan EventType = "ResultsResetBegan"
	EventResultsResetEnded EventType = "ResultsResetEnded"
	EventResultsReady      EventType = "ResultsReady"
	EventSearchError       EventType = "SearchError"
	EventConfigLoaded      EventType = "ConfigLoaded"
	EventConfigSaved       EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchTextChangedEvent is emitted when the query text changes
type SearchTextChangedEvent struct {
	Text string
}

func (e SearchTextChangedEvent) Type() EventType { return EventSearchTextChanged }

// SessionChangedEvent is emitted when the authenticated session is replaced
type SessionChangedEvent struct{}

func (e SessionChangedEvent) Type() EventType { return EventSessionChanged }

// ItemKindChangedEvent is emitted when the kind of the shared item changes
type ItemKindChangedEvent struct {
	ItemKind ItemKind
}

func (e ItemKindChangedEvent) Type() EventType { return EventItemKindChanged }

// LookupModeChangedEvent is emitted when the lookup mode changes
type LookupModeChangedEvent struct {
	Mode LookupMode
}

func (e LookupModeChangedEvent) Type() EventType { return EventLookupModeChanged }

// FetchStateChangedEvent is emitted when a fetch starts or finishes
type FetchStateChangedEvent struct {
	Fetching bool
}

func (e FetchStateChangedEvent) Type() EventType { return EventFetchStateChanged }

// ResultsResetBeganEvent is emitted right before the result list is replaced
type ResultsResetBeganEvent struct{}

func (e ResultsResetBeganEvent) Type() EventType { return EventResultsResetBegan }

// ResultsResetEndedEvent is emitted right after the result list is replaced
type ResultsResetEndedEvent struct{}

func (e ResultsResetEndedEvent) Type() EventType { return EventResultsResetEnded }

// ResultsReadyEvent is emitted once a replaced result list is readable
type ResultsReadyEvent struct {
	Count int
}

func (e ResultsReadyEvent) Type() EventType { return EventResultsReady }

// SearchErrorEvent is emitted when the directory search fails
type SearchErrorEvent struct {
	StatusCode int
	Message    string
}

func (e SearchErrorEvent) Type() EventType { return EventSearchError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	ServerURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
