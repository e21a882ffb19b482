// Package varkresult shows a learning style profile: the distribution over
// the four styles, what the dominant style means, and study tips.
package varkresult

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stylequiz/internal/coach"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/store"
	"github.com/abhisek/stylequiz/internal/ui/components"
	"github.com/abhisek/stylequiz/internal/ui/layout"
	"github.com/abhisek/stylequiz/internal/ui/theme"
	"github.com/abhisek/stylequiz/internal/vark"
)

// Source fetches the saved profile from the platform.
type Source interface {
	GetVarkResult(ctx context.Context) (*vark.Result, error)
}

// TipsProvider produces study tips for a profile.
type TipsProvider interface {
	Tips(ctx context.Context, in coach.TipsInput) (coach.Tips, error)
}

type resultLoadedMsg struct {
	Result *vark.Result
	Note   string
	Err    error
}

type tipsLoadedMsg struct {
	Tips coach.Tips
	Err  error
}

// Option configures a ResultScreen.
type Option func(*ResultScreen)

// WithCoach enables study tips personalised with recent test scores.
func WithCoach(tips TipsProvider, recent []coach.SubjectScore) Option {
	return func(s *ResultScreen) {
		s.coach = tips
		s.recent = recent
	}
}

// WithNote shows a status line under the profile, e.g. that it was only
// saved locally.
func WithNote(note string) Option {
	return func(s *ResultScreen) { s.note = note }
}

// ResultScreen renders one profile.
type ResultScreen struct {
	source Source
	cache  store.VarkRepo
	coach  TipsProvider
	recent []coach.SubjectScore

	result  *vark.Result
	note    string
	loading bool
	errMsg  string

	tips        *coach.Tips
	tipsLoading bool
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New shows a result that is already known, e.g. straight after the
// questionnaire.
func New(res vark.Result, opts ...Option) *ResultScreen {
	s := &ResultScreen{result: &res}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLoader fetches the saved profile from source, falling back to the
// newest cached record when the platform has none or cannot be reached.
// cache may be nil.
func NewLoader(source Source, cache store.VarkRepo, opts ...Option) *ResultScreen {
	s := &ResultScreen{source: source, cache: cache, loading: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ResultScreen) Init() tea.Cmd {
	if s.result != nil {
		return s.loadTips()
	}
	source, cache := s.source, s.cache
	return func() tea.Msg {
		res, note, err := Lookup(context.Background(), source, cache)
		return resultLoadedMsg{Result: res, Note: note, Err: err}
	}
}

// Lookup returns the platform's saved profile. When that fails it falls
// back to the newest record in cache, with a note saying so; the
// platform's error is returned only if there is nothing cached either.
func Lookup(ctx context.Context, source Source, cache store.VarkRepo) (*vark.Result, string, error) {
	res, err := source.GetVarkResult(ctx)
	if err == nil {
		return res, "", nil
	}
	if cache != nil {
		rec, cerr := cache.Latest(ctx)
		if cerr == nil && rec != nil {
			note := "Showing the result saved on this device."
			if !rec.Synced {
				note = "Showing a result saved on this device that was never sent to the platform."
			}
			return &vark.Result{Distribution: rec.Distribution, Type: rec.Type}, note, nil
		}
	}
	return nil, "", err
}

func (s *ResultScreen) loadTips() tea.Cmd {
	if s.coach == nil || s.result == nil {
		return nil
	}
	s.tipsLoading = true
	tips := s.coach
	in := coach.TipsInput{
		Distribution: s.result.Distribution,
		Style:        s.result.Type,
		Recent:       s.recent,
	}
	return func() tea.Msg {
		t, err := tips.Tips(context.Background(), in)
		return tipsLoadedMsg{Tips: t, Err: err}
	}
}

func (s *ResultScreen) Title() string {
	return "My Learning Style"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultLoadedMsg:
		s.loading = false
		if msg.Err != nil {
			if gateway.IsNotFound(msg.Err) {
				s.errMsg = "You have not taken the learning style questionnaire yet."
			} else {
				s.errMsg = screen.ErrorText(msg.Err)
			}
			return s, nil
		}
		s.result = msg.Result
		s.note = msg.Note
		return s, s.loadTips()

	case tipsLoadedMsg:
		s.tipsLoading = false
		if msg.Err == nil {
			s.tips = &msg.Tips
		}
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	if s.loading {
		return theme.Centered(width, theme.TextDim, "\n\n  Loading your learning style...")
	}
	if s.errMsg != "" {
		return theme.Centered(width, theme.TextDim, "\n\n"+s.errMsg)
	}

	res := s.result
	style := res.Type
	if !style.Valid() {
		style = res.Distribution.Dominant()
	}
	cw := min(width-4, 70)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Centered(width, theme.TextDim, "Your dominant learning style"))
	b.WriteString("\n\n")
	badge := lipgloss.NewStyle().
		Foreground(theme.StyleColor(style)).
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.StyleColor(style)).
		Padding(0, 3).
		Render(strings.ToUpper(style.Label()))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, badge))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.Text).
			Render(vark.Description(style))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, RenderDistribution(res.Distribution, cw)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderTips(style, cw)))

	if s.note != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Centered(width, theme.Accent, s.note))
	}
	return b.String()
}

// RenderDistribution draws one colored bar per style.
func RenderDistribution(d vark.Distribution, width int) string {
	var lines []string
	for _, st := range vark.Styles {
		bar := components.NewProgressBar(st.Label(), float64(d.Get(st))/100, true, width)
		bar.LabelWidth = 12
		bar.Fill = theme.StyleColor(st)
		lines = append(lines, bar.View())
	}
	return strings.Join(lines, "\n")
}

func (s *ResultScreen) renderTips(style vark.Style, width int) string {
	var b strings.Builder
	b.WriteString(layout.Section("Study tips", width))
	b.WriteString("\n\n")

	switch {
	case s.tipsLoading:
		b.WriteString(theme.Hint.Render("  Asking your study coach..."))
		return b.String()
	case s.tips != nil:
		if s.tips.Source == coach.SourceLLM && s.tips.Headline != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Width(width).
				Render(s.tips.Headline))
			b.WriteString("\n\n")
		}
		writeItems(&b, s.tips.Items, width)
	default:
		writeItems(&b, vark.Recommendations(style), width)
	}
	return b.String()
}

func writeItems(b *strings.Builder, items []string, width int) {
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width).
			Render(fmt.Sprintf("  • %s", item)))
	}
}
