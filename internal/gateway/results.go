package gateway

import (
	"context"
	"net/http"
	"time"
)

// TestRecord is one finished adaptive test as the platform reports it.
type TestRecord struct {
	Subject           string  `json:"subject"`
	Score             float64 `json:"score"`
	QuestionsAnswered int     `json:"questions_answered"`
	CompletedAt       string  `json:"completed_at"`
}

// Completed parses CompletedAt, which the platform sends as RFC 3339 or a
// bare date.
func (r TestRecord) Completed() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, r.CompletedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Results summarizes a learner's test history.
type Results struct {
	TestsCompleted int          `json:"tests_completed"`
	AverageScore   float64      `json:"average_score"`
	CorrectAnswers int          `json:"correct_answers"`
	History        []TestRecord `json:"test_history"`
}

// Results fetches the learner's test history.
func (c *Client) Results(ctx context.Context) (*Results, error) {
	var res Results
	err := c.do(ctx, call{
		op:     "load results",
		method: http.MethodGet,
		path:   "/results",
		retry:  true,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
