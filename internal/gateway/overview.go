package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/stylequiz/internal/vark"
)

// OverviewSource is the part of the client needed to build an Overview.
type OverviewSource interface {
	Results(ctx context.Context) (*Results, error)
	GetVarkResult(ctx context.Context) (*vark.Result, error)
}

// Overview combines the test record with the learning style.
type Overview struct {
	Results *Results
	Vark    *vark.Result // nil when the questionnaire was never taken
}

// LoadOverview fetches test results and the learning style in parallel. A
// missing learning style is not an error.
func LoadOverview(ctx context.Context, src OverviewSource) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := src.Results(ctx)
		ov.Results = r
		return err
	})
	g.Go(func() error {
		r, err := src.GetVarkResult(ctx)
		if IsNotFound(err) {
			return nil
		}
		ov.Vark = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}
