package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/stylequiz/internal/llm"
	"github.com/abhisek/stylequiz/internal/vark"
)

const systemPrompt = `You are a study coach for secondary and university students.
You receive a learner's VARK profile (visual, auditory, read/write, kinesthetic
percentages) and their recent test accuracy per subject.
Give short, concrete study tips that fit the learner's dominant style and, where
a subject is weak, name that subject. Each tip is one sentence, no numbering.`

func userPrompt(style vark.Style, in TipsInput, maxTips int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dominant style: %s\n", style.Label())
	if in.Distribution.Sum() > 0 {
		fmt.Fprintf(&b, "Profile: visual %d%%, auditory %d%%, read/write %d%%, kinesthetic %d%%\n",
			in.Distribution.Visual, in.Distribution.Auditory, in.Distribution.ReadWrite, in.Distribution.Kinesthetic)
	}
	if len(in.Recent) > 0 {
		b.WriteString("Recent accuracy:\n")
		for _, r := range in.Recent {
			fmt.Fprintf(&b, "- %s: %d%%\n", r.Subject, r.Accuracy)
		}
	}
	fmt.Fprintf(&b, "Give between 2 and %d tips.", maxTips)
	return b.String()
}

func tipsSchema(maxTips int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("study-tips-%d", maxTips),
		Description: "Personalised study tips for a learning style",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"headline": map[string]any{
					"type":        "string",
					"description": "One sentence describing how this learner learns best",
				},
				"tips": map[string]any{
					"type":     "array",
					"minItems": 1,
					"maxItems": maxTips,
					"items":    map[string]any{"type": "string"},
				},
			},
			"required":             []any{"headline", "tips"},
			"additionalProperties": false,
		},
	}
}
