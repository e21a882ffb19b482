package vark

import (
	"errors"
	"fmt"
)

// EmptyInputError is returned when aggregating a questionnaire with no
// answers.
type EmptyInputError struct{}

func (*EmptyInputError) Error() string { return "vark: no answers to aggregate" }

// InvalidInput marks the error as a caller mistake rather than a failure.
func (*EmptyInputError) InvalidInput() bool { return true }

// ErrEmptyInput is the EmptyInputError every aggregation returns, so
// callers can match it with errors.Is.
var ErrEmptyInput error = &EmptyInputError{}

// ErrTallySealed is returned when adding to a tally that has been finalized.
var ErrTallySealed = errors.New("vark: tally is sealed")

// Tally counts answered questionnaire items per style.
// The zero value is an empty, writable tally.
type Tally struct {
	counts [len(Styles)]int
	total  int
	sealed bool
}

// Add records one answered item.
func (t *Tally) Add(s Style) error {
	if t.sealed {
		return ErrTallySealed
	}
	i := s.index()
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, string(s))
	}
	t.counts[i]++
	t.total++
	return nil
}

// Seal makes the tally read-only.
func (t *Tally) Seal() {
	t.sealed = true
}

// Count returns the number of answers recorded for s.
func (t *Tally) Count(s Style) int {
	i := s.index()
	if i < 0 {
		return 0
	}
	return t.counts[i]
}

// Total returns the number of answers recorded.
func (t *Tally) Total() int {
	return t.total
}

// Distribution converts the tally into rounded percentages.
func (t *Tally) Distribution() (Distribution, error) {
	if t.total == 0 {
		return Distribution{}, ErrEmptyInput
	}
	var d Distribution
	for i, s := range Styles {
		d.set(s, percent(t.counts[i], t.total))
	}
	return d, nil
}

// percent returns 100*part/whole rounded half up, using integer
// arithmetic so results are exact.
func percent(part, whole int) int {
	return (200*part + whole) / (2 * whole)
}

// Distribution holds the percentage share of each style. All four styles are
// always present; a style that never occurred has 0.
type Distribution struct {
	Visual      int `json:"visual"`
	Auditory    int `json:"auditory"`
	ReadWrite   int `json:"read_write"`
	Kinesthetic int `json:"kinesthetic"`
}

// Get returns the percentage for s, or 0 for an unknown style.
func (d Distribution) Get(s Style) int {
	switch s {
	case Visual:
		return d.Visual
	case Auditory:
		return d.Auditory
	case ReadWrite:
		return d.ReadWrite
	case Kinesthetic:
		return d.Kinesthetic
	}
	return 0
}

func (d *Distribution) set(s Style, v int) {
	switch s {
	case Visual:
		d.Visual = v
	case Auditory:
		d.Auditory = v
	case ReadWrite:
		d.ReadWrite = v
	case Kinesthetic:
		d.Kinesthetic = v
	}
}

// Sum returns the total of all four percentages. Independent rounding means
// this may differ from 100 by a few points.
func (d Distribution) Sum() int {
	return d.Visual + d.Auditory + d.ReadWrite + d.Kinesthetic
}

// Dominant returns the style with the highest share. Ties go to the style
// that comes first in Styles.
func (d Distribution) Dominant() Style {
	best := Styles[0]
	for _, s := range Styles[1:] {
		if d.Get(s) > d.Get(best) {
			best = s
		}
	}
	return best
}

// Result is a completed classification as exchanged with the platform.
type Result struct {
	Distribution
	Type Style `json:"vark_type"`
}

// Aggregate turns an ordered list of style picks into a percentage
// distribution and the dominant style.
func Aggregate(answers []Style) (Distribution, Style, error) {
	if len(answers) == 0 {
		return Distribution{}, "", ErrEmptyInput
	}
	var t Tally
	for i, s := range answers {
		if err := t.Add(s); err != nil {
			return Distribution{}, "", fmt.Errorf("answer %d: %w", i+1, err)
		}
	}
	t.Seal()
	d, err := t.Distribution()
	if err != nil {
		return Distribution{}, "", err
	}
	return d, d.Dominant(), nil
}
