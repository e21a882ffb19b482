// Package home is the main menu. What it offers depends on whether a
// learner is signed in.
package home

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/stylequiz/internal/assessment"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/router"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/screens/auth"
	"github.com/abhisek/stylequiz/internal/screens/history"
	"github.com/abhisek/stylequiz/internal/screens/questionnaire"
	"github.com/abhisek/stylequiz/internal/screens/results"
	"github.com/abhisek/stylequiz/internal/screens/subjects"
	"github.com/abhisek/stylequiz/internal/screens/varkresult"
	"github.com/abhisek/stylequiz/internal/store"
	"github.com/abhisek/stylequiz/internal/ui/components"
	"github.com/abhisek/stylequiz/internal/ui/layout"
)

// recentLimit bounds how many local attempts feed the study coach.
const recentLimit = 20

type profileLoadedMsg struct {
	User   *gateway.User
	Cached *store.VarkRecord
	Err    error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps    screen.Deps
	user    *gateway.User
	cached  *store.VarkRecord
	loaded  bool
	offline string
	menu    components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.buildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadProfile()
}

// Resume reloads the profile, which may have changed on the screen that
// was just closed.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadProfile()
}

func (h *HomeScreen) loadProfile() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		var msg profileLoadedMsg
		if deps.Vark != nil {
			cached, err := deps.Vark.Latest(ctx)
			if err != nil {
				deps.Logger().WarnContext(ctx, "load cached vark result", "error", err)
			}
			msg.Cached = cached
		}
		if deps.Client == nil {
			return msg
		}
		msg.User, msg.Err = deps.Client.Profile(ctx)
		return msg
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		h.loaded = true
		h.cached = msg.Cached
		h.offline = ""
		switch {
		case msg.Err == nil:
			h.user = msg.User
		case gateway.IsUnauthorized(msg.Err):
			h.user = nil
		default:
			// Keep whatever we knew; the platform may come back.
			h.offline = screen.ErrorText(msg.Err)
		}
		h.buildMenu()
		user := h.user
		return h, func() tea.Msg { return screen.UserMsg{User: user} }

	case screen.UserMsg:
		if msg.User != h.user {
			h.user = msg.User
			h.buildMenu()
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// resultOpts wires the study coach into result screens when one is
// configured.
func (h *HomeScreen) resultOpts() []varkresult.Option {
	if h.deps.Coach == nil {
		return nil
	}
	return []varkresult.Option{
		varkresult.WithCoach(h.deps.Coach, h.deps.RecentScores(context.Background(), recentLimit)),
	}
}

func (h *HomeScreen) buildMenu() {
	deps := h.deps
	noClient := deps.Client == nil

	questionnaireItem := components.MenuItem{
		Label:    "Learning style questionnaire",
		Hint:     "a few quick questions",
		Disabled: noClient,
		Action: func() tea.Cmd {
			return push(questionnaire.New(deps.Client, deps.Vark, deps.Log, h.resultOpts()...))
		},
	}
	historyItem := components.MenuItem{
		Label:    "Local history",
		Hint:     "tests taken on this device",
		Disabled: deps.Events == nil,
		Action: func() tea.Cmd {
			return push(history.New(deps.Events))
		},
	}
	quitItem := components.MenuItem{
		Label:  "Quit",
		Action: func() tea.Cmd { return tea.Quit },
	}

	var items []components.MenuItem
	if h.user != nil {
		items = []components.MenuItem{
			{
				Label: "Take an adaptive test",
				Hint:  "questions adjust to you",
				Action: func() tea.Cmd {
					return push(subjects.New(deps.Client, assessment.WithObserver(deps.Observer())))
				},
			},
			questionnaireItem,
			{
				Label: "My learning style",
				Action: func() tea.Cmd {
					return push(varkresult.NewLoader(deps.Client, deps.Vark, h.resultOpts()...))
				},
			},
			{
				Label: "My results",
				Action: func() tea.Cmd {
					return push(results.New(deps.Client))
				},
			},
			historyItem,
			{
				Label: "Log out",
				Action: func() tea.Cmd {
					client, log := deps.Client, deps.Log
					return func() tea.Msg {
						if err := client.Logout(context.Background()); err != nil && log != nil {
							log.Warn("logout failed", "error", err)
						}
						return screen.UserMsg{User: nil}
					}
				},
			},
			quitItem,
		}
	} else {
		items = []components.MenuItem{
			{
				Label:    "Log in",
				Disabled: noClient,
				Action: func() tea.Cmd {
					return push(auth.NewLogin(deps.Client))
				},
			},
			{
				Label:    "Create account",
				Disabled: noClient,
				Action: func() tea.Cmd {
					return push(auth.NewRegister(deps.Client))
				},
			},
			questionnaireItem,
			historyItem,
			quitItem,
		}
	}
	h.menu = components.NewMenu(items)
}
