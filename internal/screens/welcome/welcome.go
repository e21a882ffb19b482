// Package welcome is the splash screen shown on startup.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/ui/theme"
	"github.com/abhisek/stylequiz/internal/vark"
)

const (
	tickInterval = 100 * time.Millisecond
	tileStep     = 300 * time.Millisecond // one style tile lights up per step
	bannerAt     = 1500 * time.Millisecond
	totalDur     = 2500 * time.Millisecond
)

const tagline = "Find out how you learn best"

var tileIcons = map[vark.Style]string{
	vark.Visual:      "◉",
	vark.Auditory:    "♪",
	vark.ReadWrite:   "✎",
	vark.Kinesthetic: "✋",
}

type tickMsg time.Time

// WelcomeScreen shows a short splash before transitioning to the home
// screen. Any key skips ahead.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced by homeFactory.
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned || w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	lit := int(w.elapsed / tileStep)
	tiles := make([]string, 0, len(vark.Styles))
	for i, st := range vark.Styles {
		c := theme.Border
		if i < lit {
			c = theme.StyleColor(st)
		}
		tile := lipgloss.NewStyle().
			Foreground(c).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Width(13).
			Align(lipgloss.Center).
			Render(tileIcons[st] + "\n" + st.Label())
		tiles = append(tiles, tile)
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))

	if w.elapsed >= bannerAt {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(tagline))
	}

	if w.elapsed >= totalDur {
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
