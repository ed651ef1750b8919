package sharee

// Phase is the model's coordination state. Exactly one phase is active at a
// time; an in-flight fetch that has been superseded by new edits is tracked
// by its generation id, not by the phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseFetching
)

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case PhaseDebouncing:
		return "debouncing"
	case PhaseFetching:
		return "fetching"
	}
	return "idle"
}

// action is what the model must do after a transition
type action int

const (
	actionNone action = iota
	actionRestartTimer
	actionStartFetch
	actionApplyResult
)

// eventKind drives the phase machine
type eventKind int

const (
	eventEdit eventKind = iota
	eventTimerExpired
	eventResponseReceived
)

// phaseEvent is one input to the transition function. Fetchable is whether
// the fetch preconditions hold when the timer expires; Latest is whether a
// received response belongs to the most recently issued fetch.
type phaseEvent struct {
	kind      eventKind
	fetchable bool
	latest    bool
}

// transition is the pure state function of the model. All coordination
// decisions live here so the full table can be tested without timers,
// goroutines or a real directory service.
func transition(p Phase, ev phaseEvent) (Phase, action) {
	switch ev.kind {
	case eventEdit:
		// Every edit reopens the quiet window, even while a fetch is in
		// flight; the in-flight fetch stays the latest issued one until a
		// new fetch is actually started.
		return PhaseDebouncing, actionRestartTimer

	case eventTimerExpired:
		if p != PhaseDebouncing {
			// Stale or spurious timer
			return p, actionNone
		}
		if !ev.fetchable {
			return PhaseIdle, actionNone
		}
		return PhaseFetching, actionStartFetch

	case eventResponseReceived:
		if !ev.latest {
			// A newer fetch has been issued since; discard
			return p, actionNone
		}
		if p == PhaseDebouncing {
			// Edits arrived after this fetch was issued. The result is
			// still the newest data we have, so it is applied, but the
			// pending quiet window keeps running.
			return PhaseDebouncing, actionApplyResult
		}
		return PhaseIdle, actionApplyResult
	}

	return p, actionNone
}
