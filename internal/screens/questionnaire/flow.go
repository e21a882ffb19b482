package questionnaire

import (
	"context"
	"time"

	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/store"
	"github.com/abhisek/stylequiz/internal/vark"
)

// Submitter sends a finished questionnaire to the platform.
type Submitter interface {
	SubmitVarkResult(ctx context.Context, d vark.Distribution) (vark.Style, error)
}

// LoadQuestions fetches the platform's questionnaire. When that fails, or
// the questions are unusable, the built-in set is returned with fallback
// set.
func LoadQuestions(ctx context.Context, source Source, log *logging.Logger) (qs []vark.Question, fallback bool) {
	qs, err := source.VarkQuestions(ctx)
	if err == nil {
		_, err = vark.NewQuestionnaire(qs)
	}
	if err == nil {
		return qs, false
	}
	log.Warn("using built-in questionnaire", "error", err)
	return vark.DefaultQuestions(), true
}

// Submit sends res upstream and caches it on this device whatever the
// outcome. A valid classification from the platform replaces the local one.
// The returned note is empty unless the result only lives locally.
func Submit(ctx context.Context, src Submitter, cache store.VarkRepo, log *logging.Logger, res vark.Result) (vark.Result, string) {
	note := ""
	synced := false
	style, err := src.SubmitVarkResult(ctx, res.Distribution)
	switch {
	case err == nil:
		synced = true
		if style.Valid() {
			res.Type = style
		}
	case gateway.IsUnauthorized(err):
		note = "Log in to save your learning style to your account. It was saved on this device."
	default:
		log.Warn("vark submit failed", "error", err)
		note = "The platform could not be reached. Your result was saved on this device."
	}
	if cache != nil {
		rec := store.VarkRecord{
			Distribution: res.Distribution,
			Type:         res.Type,
			Synced:       synced,
			Timestamp:    time.Now(),
		}
		if cerr := cache.Save(ctx, rec); cerr != nil {
			log.Warn("cache vark result", "error", cerr)
		}
	}
	return res, note
}
