package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interview/internal/answers"
	"github.com/abhisek/interview/internal/router"
	"github.com/abhisek/interview/internal/screen"
	"github.com/abhisek/interview/internal/screens/history"
	"github.com/abhisek/interview/internal/screens/interview"
	"github.com/abhisek/interview/internal/screens/result"
	"github.com/abhisek/interview/internal/store"
	"github.com/abhisek/interview/internal/submit"
	"github.com/abhisek/interview/internal/ui/layout"
)

// Deps are the components the TUI drives.
type Deps struct {
	Answers *answers.Store
	Remote  submit.Remote
	Submit  submit.Config

	// Optional.
	Dictation interview.Dictator
	Fetcher   result.Fetcher
	Events    store.EventRepo
	Logger    *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	pipeline *submit.Pipeline
	width    int
	height   int
}

// programBridge delivers pipeline navigation and notices to the running
// program as messages.
type programBridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func (b *programBridge) bind(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

func (b *programBridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *programBridge) Navigate(route string) { b.send(router.NavigateMsg{Route: route}) }
func (b *programBridge) Notify(message string) { b.send(interview.NoticeMsg{Message: message}) }

// newAppModel builds the screen graph: the interview screen at the root,
// results under /feedback/<id> and the submission log under /history.
func newAppModel(ctx context.Context, deps Deps, nav submit.Navigator, notify submit.Notifier) AppModel {
	opts := []submit.Option{submit.WithLogger(deps.Logger)}
	if deps.Events != nil {
		opts = append(opts, submit.WithRecorder(deps.Events))
	}
	pipeline := submit.New(deps.Remote, nav, notify, deps.Submit, opts...)

	screenOpts := []interview.Option{interview.WithContext(ctx)}
	if deps.Dictation != nil {
		screenOpts = append(screenOpts, interview.WithDictation(deps.Dictation))
	}
	r := router.New(interview.New(deps.Answers, pipeline, screenOpts...))

	r.Handle(result.RoutePrefix, func(id string) screen.Screen {
		var ropts []result.Option
		if deps.Fetcher != nil {
			ropts = append(ropts, result.WithFetcher(deps.Fetcher))
		}
		if deps.Events != nil {
			ropts = append(ropts, result.WithHistory(deps.Events))
		}
		return result.New(id, ropts...)
	})
	if deps.Events != nil {
		r.Handle(interview.HistoryRoute, func(string) screen.Screen {
			return history.New(deps.Events)
		})
	}

	return AppModel{
		router:   r,
		pipeline: pipeline,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case interview.NoticeMsg:
		// The notice is modal on the interview screen, which is the root.
		back := m.router.PopToRoot()
		return m, tea.Batch(back, m.router.Update(msg))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) headerStatus() string {
	st := m.pipeline.Status()
	switch st.State {
	case submit.StateAttempting:
		return fmt.Sprintf("submitting %d/%d", st.Attempt, m.pipeline.MaxAttempts())
	case submit.StateSucceeded:
		return "submitted"
	case submit.StateFailed:
		return "not submitted"
	}
	return ""
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.headerStatus(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	bridge := &programBridge{}
	model := newAppModel(ctx, deps, bridge, bridge)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	bridge.bind(p)

	if _, err := p.Run(); err != nil {
		deps.Logger.Error("tui exited with error", "error", err)
		return fmt.Errorf("run interview: %w", err)
	}
	return nil
}
