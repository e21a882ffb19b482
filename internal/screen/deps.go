package screen

import (
	"context"
	"errors"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/coach"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/store"
)

// Deps are the services screens are built from. Events and Vark may be nil
// when no local database is available.
type Deps struct {
	Client *gateway.Client
	Events store.EventRepo
	Vark   store.VarkRepo
	Coach  *coach.Service
	Log    *logging.Logger
}

// Logger returns Log, or a discarding logger when none is set.
func (d Deps) Logger() *logging.Logger {
	if d.Log == nil {
		return logging.Nop()
	}
	return d.Log
}

// Observer returns the assessment observer that records attempts locally,
// or nil without an event store.
func (d Deps) Observer() assessment.Observer {
	if d.Events == nil {
		return nil
	}
	return store.NewAttemptRecorder(d.Events, d.Log)
}

// RecentScores summarizes local attempts per subject for the study coach,
// newest subjects first.
func (d Deps) RecentScores(ctx context.Context, limit int) []coach.SubjectScore {
	if d.Events == nil {
		return nil
	}
	attempts, err := d.Events.History(ctx, store.QueryOpts{Limit: limit})
	if err != nil {
		d.Logger().WarnContext(ctx, "load recent scores", "error", err)
		return nil
	}
	type tally struct{ answered, correct int }
	order := []string{}
	by := map[string]*tally{}
	for _, a := range attempts {
		name := a.SubjectName
		if name == "" {
			name = a.SubjectID
		}
		t, ok := by[name]
		if !ok {
			t = &tally{}
			by[name] = t
			order = append(order, name)
		}
		t.answered += a.Answered
		t.correct += a.Correct
	}
	out := make([]coach.SubjectScore, 0, len(order))
	for _, name := range order {
		t := by[name]
		if t.answered == 0 {
			continue
		}
		out = append(out, coach.SubjectScore{Subject: name, Accuracy: assessment.Accuracy(t.correct, t.answered)})
	}
	return out
}

// ErrorText returns a message fit for the learner: the platform's own
// message for gateway failures, the error text otherwise.
func ErrorText(err error) string {
	var gwErr *assessment.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.UserMessage()
	}
	return err.Error()
}
