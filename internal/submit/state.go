package submit

// State is the phase of a submission trigger.
type State string

const (
	StateIdle       State = "idle"
	StateAttempting State = "attempting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further attempts follow this state.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Status is a state plus the attempt it refers to. Attempt is 0 while idle.
type Status struct {
	State   State
	Attempt int
}

// Begin is the status of a fresh trigger.
func Begin() Status {
	return Status{State: StateAttempting, Attempt: 1}
}

// Next returns the status that follows an attempt ending with err.
// A nil err succeeds; otherwise the trigger moves to the next attempt while
// attempts remain and fails once they are used up. Non-attempting statuses
// are returned unchanged.
func Next(s Status, err error, maxAttempts int) Status {
	if s.State != StateAttempting {
		return s
	}
	if err == nil {
		return Status{State: StateSucceeded, Attempt: s.Attempt}
	}
	if s.Attempt < maxAttempts {
		return Status{State: StateAttempting, Attempt: s.Attempt + 1}
	}
	return Status{State: StateFailed, Attempt: s.Attempt}
}
