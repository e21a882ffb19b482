package assessment

import (
	"errors"
	"strings"
)

// DraftOptionCount is the number of options an authored question carries.
const DraftOptionCount = 4

// Draft is a question being authored for the platform's bank.
type Draft struct {
	SubjectID    string
	Text         string
	Options      []string
	CorrectIndex int
	Difficulty   Difficulty
}

// ValidateDraft checks an authored question before it is sent upstream.
// All problems are reported, joined, each as a *ValidationError.
func ValidateDraft(d Draft) error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &ValidationError{Field: field, Message: msg})
	}

	if strings.TrimSpace(d.SubjectID) == "" {
		add("subject", "is required")
	}
	if strings.TrimSpace(d.Text) == "" {
		add("text", "is required")
	}
	if len(d.Options) != DraftOptionCount {
		add("options", "exactly four options are required")
	} else {
		seen := make(map[string]bool, len(d.Options))
		for _, o := range d.Options {
			key := strings.ToLower(strings.TrimSpace(o))
			if key == "" {
				add("options", "options must not be empty")
				break
			}
			if seen[key] {
				add("options", "options must be distinct")
				break
			}
			seen[key] = true
		}
	}
	if d.CorrectIndex < 0 || d.CorrectIndex >= len(d.Options) {
		add("correct_answer", "must point at one of the options")
	}
	if !d.Difficulty.Valid() {
		add("difficulty", "must be easy, medium or hard")
	}

	return errors.Join(errs...)
}
