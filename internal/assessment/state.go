package assessment

// State is a phase of an adaptive test session.
type State int

const (
	StateIdle             State = iota // No subject chosen
	StateSubjectChosen                 // Subject recorded, no session (e.g. start failed)
	StateAwaitingQuestion              // Start request in flight
	StateAnswering                     // Exactly one current question
	StateCompleted                     // Server declared the test complete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubjectChosen:
		return "subject-chosen"
	case StateAwaitingQuestion:
		return "awaiting-question"
	case StateAnswering:
		return "answering"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// canChooseSubject reports whether a new session may be started from s.
func (s State) canChooseSubject() bool {
	return s == StateIdle || s == StateSubjectChosen || s == StateCompleted
}
