package vark

import (
	"errors"
	"fmt"
	"strings"
)

// Style is one of the four VARK learning-style categories.
type Style string

const (
	Visual      Style = "visual"
	Auditory    Style = "auditory"
	ReadWrite   Style = "read_write"
	Kinesthetic Style = "kinesthetic"
)

// Styles lists every style in canonical order. Ties are always resolved
// in favour of the earliest entry.
var Styles = [...]Style{Visual, Auditory, ReadWrite, Kinesthetic}

// ErrUnknownStyle is returned when a label is not one of the four styles.
var ErrUnknownStyle = errors.New("unknown learning style")

// index returns the canonical position of s, or -1.
func (s Style) index() int {
	for i, st := range Styles {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the four canonical styles.
func (s Style) Valid() bool {
	return s.index() >= 0
}

// Label returns a human-readable name for the style.
func (s Style) Label() string {
	switch s {
	case Visual:
		return "Visual"
	case Auditory:
		return "Auditory"
	case ReadWrite:
		return "Read/Write"
	case Kinesthetic:
		return "Kinesthetic"
	default:
		return string(s)
	}
}

// ParseStyle converts a wire label into a Style. It accepts the canonical
// snake_case labels plus a few spellings seen in older payloads
// ("read/write", "readwrite", upper case).
func ParseStyle(raw string) (Style, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	switch norm {
	case "visual", "v":
		return Visual, nil
	case "auditory", "aural", "a":
		return Auditory, nil
	case "read_write", "read/write", "readwrite", "read-write", "r":
		return ReadWrite, nil
	case "kinesthetic", "kinaesthetic", "k":
		return Kinesthetic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, raw)
}
