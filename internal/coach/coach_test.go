package coach

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/stylequiz/internal/llm"
	"github.com/abhisek/stylequiz/internal/vark"
)

func TestTips_CatalogWithoutProvider(t *testing.T) {
	s := NewService(nil)
	tips, err := s.Tips(context.Background(), TipsInput{
		Distribution: vark.Distribution{Visual: 20, Auditory: 50, ReadWrite: 10, Kinesthetic: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, vark.Auditory, tips.Style)
	assert.Equal(t, SourceCatalog, tips.Source)
	assert.Equal(t, vark.Recommendations(vark.Auditory), tips.Items)
	assert.Equal(t, vark.Description(vark.Auditory), tips.Headline)
}

func TestTips_NoProfile(t *testing.T) {
	_, err := NewService(nil).Tips(context.Background(), TipsInput{})
	assert.ErrorIs(t, err, ErrNoProfile)

	_, err = NewService(nil).Tips(context.Background(), TipsInput{Style: "musical"})
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestTips_Generated(t *testing.T) {
	mock := llm.NewMockProvider(llm.Scripted{Content: json.RawMessage(`{
		"headline": "You learn by doing.",
		"tips": ["Redo algebra problems with real objects.", "  ", "Take a short walk between topics."]
	}`)})
	s := NewService(mock)

	tips, err := s.Tips(context.Background(), TipsInput{
		Style:  vark.Kinesthetic,
		Recent: []SubjectScore{{Subject: "Algebra", Accuracy: 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, tips.Source)
	assert.Equal(t, "You learn by doing.", tips.Headline)
	assert.Equal(t, []string{"Redo algebra problems with real objects.", "Take a short walk between topics."}, tips.Items)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	prompt := reqs[0].Messages[0].Content
	assert.Contains(t, prompt, "Kinesthetic")
	assert.Contains(t, prompt, "Algebra: 40%")
	assert.NotNil(t, reqs[0].Schema)
}

func TestTips_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		script llm.Scripted
	}{
		{"provider error", llm.Scripted{Err: errors.New("boom")}},
		{"schema mismatch", llm.Scripted{Content: json.RawMessage(`{"advice":"x"}`)}},
		{"blank tips", llm.Scripted{Content: json.RawMessage(`{"headline":"h","tips":[" "]}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(llm.NewMockProvider(tt.script))
			tips, err := s.Tips(context.Background(), TipsInput{Style: vark.ReadWrite})
			require.NoError(t, err)
			assert.Equal(t, SourceCatalog, tips.Source)
			assert.Equal(t, vark.Recommendations(vark.ReadWrite), tips.Items)
		})
	}
}

func TestUserPrompt(t *testing.T) {
	got := userPrompt(vark.Visual, TipsInput{
		Distribution: vark.Distribution{Visual: 60, Auditory: 20, ReadWrite: 10, Kinesthetic: 10},
	}, 4)
	assert.True(t, strings.HasPrefix(got, "Dominant style: Visual\n"), got)
	assert.Contains(t, got, "visual 60%")
	assert.NotContains(t, got, "Recent accuracy")
	assert.True(t, strings.HasSuffix(got, "between 2 and 4 tips."))
}
