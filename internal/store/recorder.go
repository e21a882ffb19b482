package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/logging"
)

// AttemptRecorder persists assessment session events as local history.
// Each platform session gets a locally generated attempt id. Write
// failures are logged and never interrupt the test.
type AttemptRecorder struct {
	repo EventRepo
	log  *logging.Logger

	mu       sync.Mutex
	attempts map[string]string // session id -> attempt id
}

// NewAttemptRecorder creates a recorder writing to repo.
func NewAttemptRecorder(repo EventRepo, log *logging.Logger) *AttemptRecorder {
	if log == nil {
		log = logging.Nop()
	}
	return &AttemptRecorder{
		repo:     repo,
		log:      log,
		attempts: make(map[string]string),
	}
}

// Observe implements assessment.Observer.
func (r *AttemptRecorder) Observe(ctx context.Context, ev assessment.Event) {
	attemptID := r.attemptID(ev)
	ctx = logging.ContextWithSessionID(ctx, ev.SessionID)

	var err error
	switch ev.Kind {
	case assessment.EventStarted:
		err = r.repo.AppendAttempt(ctx, r.attemptData(attemptID, ActionStart, ev))
	case assessment.EventAnswered:
		err = r.repo.AppendAnswer(ctx, AnswerEventData{
			AttemptID:   attemptID,
			SessionID:   ev.SessionID,
			SubjectID:   ev.SubjectID,
			QuestionID:  ev.QuestionID,
			Difficulty:  string(ev.Difficulty),
			OptionIndex: ev.OptionIndex,
			ElapsedMs:   ev.ElapsedMs,
			Correct:     ev.Correct,
		})
	case assessment.EventCompleted:
		err = r.repo.AppendAttempt(ctx, r.attemptData(attemptID, ActionComplete, ev))
		r.forget(ev.SessionID)
	case assessment.EventAbandoned:
		err = r.repo.AppendAttempt(ctx, r.attemptData(attemptID, ActionAbandon, ev))
		r.forget(ev.SessionID)
	}
	if err != nil {
		r.log.WarnContext(ctx, "record attempt event", "kind", ev.Kind, "error", err)
	}
}

func (r *AttemptRecorder) attemptData(attemptID, action string, ev assessment.Event) AttemptEventData {
	return AttemptEventData{
		AttemptID:   attemptID,
		SessionID:   ev.SessionID,
		SubjectID:   ev.SubjectID,
		SubjectName: ev.SubjectName,
		Action:      action,
		Answered:    ev.Answered,
		Correct:     ev.CorrectSum,
	}
}

func (r *AttemptRecorder) attemptID(ev assessment.Event) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.attempts[ev.SessionID]
	if !ok {
		id = uuid.NewString()
		r.attempts[ev.SessionID] = id
	}
	return id
}

func (r *AttemptRecorder) forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, sessionID)
}
