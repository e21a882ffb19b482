package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/stylequiz/internal/vark"
)

type overviewSource struct {
	results    *Results
	resultsErr error
	vark       *vark.Result
	varkErr    error
}

func (s *overviewSource) Results(context.Context) (*Results, error) {
	return s.results, s.resultsErr
}

func (s *overviewSource) GetVarkResult(context.Context) (*vark.Result, error) {
	return s.vark, s.varkErr
}

func TestLoadOverview(t *testing.T) {
	res := &Results{TestsCompleted: 2, AverageScore: 75}
	vr := &vark.Result{Type: vark.Visual}
	ov, err := LoadOverview(context.Background(), &overviewSource{results: res, vark: vr})
	require.NoError(t, err)
	assert.Same(t, res, ov.Results)
	assert.Same(t, vr, ov.Vark)
}

func TestLoadOverview_MissingVarkIsNotAnError(t *testing.T) {
	ov, err := LoadOverview(context.Background(), &overviewSource{
		results: &Results{},
		varkErr: ErrNotFound,
	})
	require.NoError(t, err)
	assert.NotNil(t, ov.Results)
	assert.Nil(t, ov.Vark)
}

func TestLoadOverview_PropagatesFailures(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadOverview(context.Background(), &overviewSource{results: &Results{}, varkErr: boom})
	assert.ErrorIs(t, err, boom)

	_, err = LoadOverview(context.Background(), &overviewSource{resultsErr: boom})
	assert.ErrorIs(t, err, boom)
}
