package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/ui/theme"
)

// ChoiceMsg is emitted when the learner confirms an option.
type ChoiceMsg struct {
	Index int
}

// Verdict is the grading shown against the chosen option.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

// MultiChoice is a multiple-choice selector. It never knows the answer key;
// the caller marks the chosen option once the verdict is in.
type MultiChoice struct {
	Options  []string
	Selected int
	Locked   bool // ignore input while a submission is in flight
	Chosen   int
	Verdict  Verdict
}

// NewMultiChoice creates a selector over options with nothing chosen.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options, Chosen: -1}
}

// Update handles arrows, number keys and Enter. Number keys select and
// confirm in one step.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Locked || m.Verdict != VerdictNone {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		return m.choose(m.Selected)
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(m.Options) {
			m.Selected = i
			return m.choose(i)
		}
	}
	return m, nil
}

func (m MultiChoice) choose(i int) (MultiChoice, tea.Cmd) {
	if i < 0 || i >= len(m.Options) {
		return m, nil
	}
	m.Chosen = i
	return m, func() tea.Msg { return ChoiceMsg{Index: i} }
}

// Mark records the verdict for the chosen option.
func (m *MultiChoice) Mark(correct bool) {
	if correct {
		m.Verdict = VerdictCorrect
	} else {
		m.Verdict = VerdictIncorrect
	}
	m.Locked = false
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && m.Verdict == VerdictNone {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		style := theme.Unselected
		switch {
		case i == m.Chosen && m.Verdict == VerdictCorrect:
			style = theme.Correct
			line += "  ✓"
		case i == m.Chosen && m.Verdict == VerdictIncorrect:
			style = theme.Incorrect
			line += "  ✗"
		case m.Verdict != VerdictNone:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case m.Locked && i != m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
