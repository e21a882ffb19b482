package quiz

import "github.com/abhisek/stylequiz/internal/assessment"

// startedMsg reports the result of opening a session.
type startedMsg struct {
	Err error
}

// answeredMsg reports the gateway's verdict on a submission.
type answeredMsg struct {
	Outcome assessment.Outcome
	Err     error
}
