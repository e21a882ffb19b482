package gateway

import (
	"context"
	"net/http"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/vark"
)

// StudentStats is one row of the teacher overview.
type StudentStats struct {
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	VarkType       vark.Style `json:"vark_type"`
	TestsCompleted int        `json:"tests_completed"`
	AverageScore   float64    `json:"average_score"`
	LastTestDate   string     `json:"last_test_date"`
}

// Students lists every student with their results. Teacher accounts only.
func (c *Client) Students(ctx context.Context) ([]StudentStats, error) {
	var out []StudentStats
	err := c.do(ctx, call{
		op:     "load students",
		method: http.MethodGet,
		path:   "/teacher/students",
		retry:  true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type wireDraft struct {
	SubjectID     string   `json:"subject_id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
}

// CreateQuestion adds an authored question to the bank after validating it
// locally. Teacher accounts only.
func (c *Client) CreateQuestion(ctx context.Context, d assessment.Draft) (*assessment.Question, error) {
	if err := assessment.ValidateDraft(d); err != nil {
		return nil, err
	}
	var wire wireQuestion
	err := c.do(ctx, call{
		op:     "save question",
		method: http.MethodPost,
		path:   "/questions",
		body: wireDraft{
			SubjectID:     d.SubjectID,
			Text:          d.Text,
			Options:       d.Options,
			CorrectAnswer: d.CorrectIndex,
			Difficulty:    string(d.Difficulty),
		},
		schema: schemaQuestion,
	}, &wire)
	if err != nil {
		return nil, err
	}
	q, err := wire.toQuestion()
	if err != nil {
		return nil, &assessment.GatewayError{Op: "save question", Err: err}
	}
	return q, nil
}
