package gateway

import (
	"context"
	"net/http"

	"github.com/abhisek/stylequiz/internal/assessment"
)

// ListSubjects returns the subjects available for adaptive tests. Results
// are cached per token for SubjectCacheTTL.
func (c *Client) ListSubjects(ctx context.Context) ([]assessment.Subject, error) {
	key, err := c.creds.Token(ctx)
	if err != nil {
		return nil, &assessment.GatewayError{Op: "load subjects", Err: err}
	}
	if c.subjects != nil {
		if cached, ok := c.subjects.Get(key); ok {
			return append([]assessment.Subject(nil), cached...), nil
		}
	}

	var wire []wireSubject
	err = c.do(ctx, call{
		op:     "load subjects",
		method: http.MethodGet,
		path:   "/test/subjects",
		schema: schemaSubjects,
		retry:  true,
	}, &wire)
	if err != nil {
		return nil, err
	}

	subjects := make([]assessment.Subject, 0, len(wire))
	for _, w := range wire {
		subjects = append(subjects, w.toSubject())
	}
	if c.subjects != nil {
		c.subjects.Add(key, subjects)
	}
	return append([]assessment.Subject(nil), subjects...), nil
}

// StartTest opens an adaptive test session for subjectID.
func (c *Client) StartTest(ctx context.Context, subjectID string) (*assessment.StartResult, error) {
	const op = "start test"
	var wire wireStart
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/test/start",
		body:   map[string]string{"subject_id": subjectID},
		schema: schemaStart,
	}, &wire)
	if err != nil {
		return nil, err
	}

	q, err := wire.Question.toQuestion()
	if err != nil {
		return nil, &assessment.GatewayError{Op: op, Err: err}
	}
	return &assessment.StartResult{SessionID: string(wire.SessionID), Question: q}, nil
}

// SubmitAnswer sends one answer for grading.
func (c *Client) SubmitAnswer(ctx context.Context, sub assessment.AnswerSubmission) (*assessment.AnswerResult, error) {
	const op = "submit answer"
	if sub.ElapsedMs < 0 {
		return nil, &assessment.ValidationError{Field: "time_spent", Message: "must not be negative"}
	}

	var wire wireAnswer
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/test/submit-answer",
		body: wireAnswerRequest{
			SessionID:  sub.SessionID,
			QuestionID: sub.QuestionID,
			Answer:     sub.OptionIndex,
			TimeSpent:  sub.ElapsedMs,
		},
		schema: schemaAnswer,
	}, &wire)
	if err != nil {
		return nil, err
	}

	next, err := wire.NextQuestion.toQuestion()
	if err != nil {
		return nil, &assessment.GatewayError{Op: op, Err: err}
	}
	return &assessment.AnswerResult{
		IsCorrect:    wire.IsCorrect,
		Completed:    wire.Completed,
		NextQuestion: next,
	}, nil
}

// purgeSubjects drops cached subject lists, e.g. after the identity changes.
func (c *Client) purgeSubjects() {
	if c.subjects != nil {
		c.subjects.Purge()
	}
}
