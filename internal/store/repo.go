package store

import (
	"context"
	"time"

	"github.com/abhisek/stylequiz/internal/vark"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int    // max results (0 = unlimited)
	SubjectID string // only this subject, if set
	From      time.Time
	To        time.Time
}

// CredentialRepo persists the platform bearer token between runs.
type CredentialRepo interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// AttemptEventData captures one lifecycle event of a test attempt.
type AttemptEventData struct {
	AttemptID   string
	SessionID   string
	SubjectID   string
	SubjectName string
	Action      string // start, complete, abandon
	Answered    int
	Correct     int
}

// AnswerEventData captures one graded answer.
type AnswerEventData struct {
	AttemptID   string
	SessionID   string
	SubjectID   string
	QuestionID  string
	Difficulty  string
	OptionIndex int
	ElapsedMs   int64
	Correct     bool
}

// APICallEventData captures one platform API round trip.
type APICallEventData struct {
	Method       string
	Path         string
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// Attempt is a finished (completed or abandoned) test attempt.
type Attempt struct {
	AttemptID   string
	SessionID   string
	SubjectID   string
	SubjectName string
	Action      string
	Answered    int
	Correct     int
	Accuracy    int
	FinishedAt  time.Time
}

// DifficultyStats is the answer tally for one difficulty tier.
type DifficultyStats struct {
	Answered int
	Correct  int
}

// Stats summarizes local history.
type Stats struct {
	AttemptsStarted   int
	AttemptsCompleted int
	AttemptsAbandoned int
	Answered          int
	Correct           int
	Accuracy          int
	AvgElapsedMs      int64
	ByDifficulty      map[string]DifficultyStats
	APICalls          int
	APIFailures       int
	LLMRequests       int
}

// EventRepo provides append and summary access to local events.
type EventRepo interface {
	AppendAttempt(ctx context.Context, data AttemptEventData) error
	AppendAnswer(ctx context.Context, data AnswerEventData) error
	AppendAPICall(ctx context.Context, data APICallEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// History returns finished attempts, newest first.
	History(ctx context.Context, opts QueryOpts) ([]Attempt, error)

	// Stats aggregates every recorded attempt and answer.
	Stats(ctx context.Context) (Stats, error)

	// Reset deletes all events and cached results. Credentials survive.
	Reset(ctx context.Context) error
}

// VarkRecord is a locally cached VARK classification.
type VarkRecord struct {
	Distribution vark.Distribution
	Type         vark.Style
	Synced       bool // whether the platform accepted it
	Timestamp    time.Time
}

// VarkRepo caches VARK results so they survive an unreachable platform.
type VarkRepo interface {
	Save(ctx context.Context, rec VarkRecord) error

	// Latest returns the most recent record, or nil if none exist.
	Latest(ctx context.Context) (*VarkRecord, error)
}
