package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/vark"
)

type wireVarkOption struct {
	ID   flexID `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type wireVarkQuestion struct {
	ID      flexID           `json:"id"`
	Text    string           `json:"text"`
	Options []wireVarkOption `json:"options"`
}

// VarkQuestions fetches the questionnaire. Callers fall back to
// vark.DefaultQuestions when this fails.
func (c *Client) VarkQuestions(ctx context.Context) ([]vark.Question, error) {
	const op = "load questionnaire"
	var wire []wireVarkQuestion
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/vark/questions",
		retry:  true,
	}, &wire)
	if err != nil {
		return nil, err
	}
	if len(wire) == 0 {
		return nil, &assessment.GatewayError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, vark.ErrNoQuestions)}
	}

	out := make([]vark.Question, 0, len(wire))
	for _, wq := range wire {
		q := vark.Question{ID: string(wq.ID), Text: wq.Text}
		for _, wo := range wq.Options {
			style, err := vark.ParseStyle(wo.Type)
			if err != nil {
				return nil, &assessment.GatewayError{Op: op, Err: fmt.Errorf("%w: question %s: %v", ErrMalformed, wq.ID, err)}
			}
			q.Options = append(q.Options, vark.Option{ID: string(wo.ID), Text: wo.Text, Style: style})
		}
		out = append(out, q)
	}
	return out, nil
}

type wireVarkSubmit struct {
	VarkType string `json:"vark_type"`
}

// SubmitVarkResult persists a classification and returns the style the
// platform recorded.
func (c *Client) SubmitVarkResult(ctx context.Context, d vark.Distribution) (vark.Style, error) {
	const op = "save learning style"
	var wire wireVarkSubmit
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/vark/submit",
		body:   d,
	}, &wire)
	if err != nil {
		return "", err
	}
	if wire.VarkType == "" {
		return d.Dominant(), nil
	}
	style, err := vark.ParseStyle(wire.VarkType)
	if err != nil {
		return "", &assessment.GatewayError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return style, nil
}

type wireVarkResult struct {
	Visual      int    `json:"visual"`
	Auditory    int    `json:"auditory"`
	ReadWrite   int    `json:"read_write"`
	Kinesthetic int    `json:"kinesthetic"`
	VarkType    string `json:"vark_type"`
}

// GetVarkResult returns the stored classification, or an error matching
// ErrNotFound when the learner has none.
func (c *Client) GetVarkResult(ctx context.Context) (*vark.Result, error) {
	const op = "load learning style"
	var wire wireVarkResult
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/vark/result",
		retry:  true,
	}, &wire)
	if err != nil {
		return nil, err
	}
	if wire.VarkType == "" {
		return nil, &assessment.GatewayError{Op: op, Err: ErrNotFound}
	}
	style, err := vark.ParseStyle(wire.VarkType)
	if err != nil {
		return nil, &assessment.GatewayError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return &vark.Result{
		Distribution: vark.Distribution{
			Visual:      wire.Visual,
			Auditory:    wire.Auditory,
			ReadWrite:   wire.ReadWrite,
			Kinesthetic: wire.Kinesthetic,
		},
		Type: style,
	}, nil
}
