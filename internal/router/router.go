package router

import (
	"net/url"
	"sort"
	"strings"

	"github.com/abhisek/interview/internal/screen"

	tea "charm.land/bubbletea/v2"
)

// PushScreenMsg requests the router to push a new screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg requests the router to pop the current screen off the stack.
type PopScreenMsg struct{}

// ReplaceScreenMsg requests the router to swap the active screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// NavigateMsg requests the screen registered for Route, such as
// "/feedback/<id>", to be pushed.
type NavigateMsg struct {
	Route string
}

// UnknownRouteMsg is returned when a NavigateMsg matches no registered route.
type UnknownRouteMsg struct {
	Route string
}

// AddressedMsg is implemented by results of work a screen started, such as
// a finished request. The router hands it to that screen even when another
// screen is on top, and drops it once the screen has left the stack.
type AddressedMsg interface {
	Recipient() screen.Screen
}

// Factory builds a screen for the path segment that followed its route prefix.
type Factory func(param string) screen.Screen

type route struct {
	prefix  string
	factory Factory
}

// Router manages a stack of screens.
type Router struct {
	stack  []screen.Screen
	routes []route
}

// New creates a new Router with the given initial screen.
func New(initial screen.Screen) *Router {
	return &Router{
		stack: []screen.Screen{initial},
	}
}

// Handle registers f for routes starting with prefix. The longest matching
// prefix wins.
func (r *Router) Handle(prefix string, f Factory) {
	r.routes = append(r.routes, route{prefix: prefix, factory: f})
	sort.SliceStable(r.routes, func(i, j int) bool {
		return len(r.routes[i].prefix) > len(r.routes[j].prefix)
	})
}

// Resolve builds the screen for a route path.
func (r *Router) Resolve(path string) (screen.Screen, bool) {
	for _, rt := range r.routes {
		rest, ok := strings.CutPrefix(path, rt.prefix)
		if !ok {
			continue
		}
		param, err := url.PathUnescape(rest)
		if err != nil {
			param = rest
		}
		return rt.factory(param), true
	}
	return nil, false
}

// Push adds a screen on top of the stack and calls its Init().
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes the top screen. No-op if stack depth would become 0.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	closeScreen(top)
	return r.resume()
}

// PopToRoot closes every screen above the first one.
func (r *Router) PopToRoot() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	for i := len(r.stack) - 1; i > 0; i-- {
		closeScreen(r.stack[i])
	}
	r.stack = r.stack[:1]
	return r.resume()
}

func (r *Router) resume() tea.Cmd {
	if s, ok := r.Active().(screen.Resumer); ok {
		return s.Resume()
	}
	return nil
}

// Replace swaps the top screen and calls its Init().
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	closeScreen(r.stack[len(r.stack)-1])
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update forwards a message to the active screen and handles navigation messages.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case NavigateMsg:
		s, ok := r.Resolve(msg.Route)
		if !ok {
			unknown := UnknownRouteMsg{Route: msg.Route}
			return func() tea.Msg { return unknown }
		}
		return r.Push(s)
	case AddressedMsg:
		return r.deliver(msg.Recipient(), msg)
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

func (r *Router) deliver(to screen.Screen, msg tea.Msg) tea.Cmd {
	for i, s := range r.stack {
		if s != to {
			continue
		}
		updated, cmd := s.Update(msg)
		r.stack[i] = updated
		return cmd
	}
	return nil
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
