package assessment

import "context"

// Gateway is the remote boundary that owns question banks, grading and the
// difficulty policy. The controller only drives the protocol.
type Gateway interface {
	// ListSubjects returns the subjects a learner can be tested on.
	ListSubjects(ctx context.Context) ([]Subject, error)

	// StartTest opens a session for subjectID and returns its first question.
	StartTest(ctx context.Context, subjectID string) (*StartResult, error)

	// SubmitAnswer grades one answer and returns the next question, or
	// signals completion.
	SubmitAnswer(ctx context.Context, sub AnswerSubmission) (*AnswerResult, error)
}

// EventKind identifies a session lifecycle event.
type EventKind string

const (
	EventStarted   EventKind = "start"
	EventAnswered  EventKind = "answer"
	EventCompleted EventKind = "complete"
	EventAbandoned EventKind = "abandon"
)

// Event describes a committed transition. It is emitted after the state
// change, never for failed or stale calls.
type Event struct {
	Kind        EventKind
	SessionID   string
	SubjectID   string
	SubjectName string
	QuestionID  string
	Difficulty  Difficulty
	OptionIndex int
	ElapsedMs   int64
	Correct     bool
	Answered    int
	CorrectSum  int
}

// Observer receives session events, typically to persist local history.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}
