// Package navigation models the app shell's screen state as an explicit value.
//
// The shell shows the language gate until a language is chosen, then the
// demo sign-in gate, then whichever view the visitor navigated to. Every
// transition returns a new State; nothing is mutated in place.
package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/navyasetu/varunnetra/internal/domain"
	"github.com/navyasetu/varunnetra/internal/i18n"
)

var (
	// ErrUnknownView is returned when navigating to a view that does not exist.
	ErrUnknownView = errors.New("unknown view")
	// ErrGated is returned when navigating while a gate screen is showing.
	ErrGated = errors.New("language or sign-in gate still showing")
	// ErrEmptyLanguage is returned when selecting an empty language.
	ErrEmptyLanguage = errors.New("language must not be empty")
)

// View is a content screen reachable once both gates are passed.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewChatbot   View = "chatbot"
	ViewAreaWater View = "areawater"
	ViewTestWater View = "testwater"
	ViewReports   View = "reports"
	ViewAbout     View = "about"
	ViewMap       View = "map"
)

var views = []View{ViewDashboard, ViewChatbot, ViewAreaWater, ViewTestWater, ViewReports, ViewAbout, ViewMap}

// Views returns every content view.
func Views() []View {
	out := make([]View, len(views))
	copy(out, views)
	return out
}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	for _, v := range views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Screen is what the shell renders for a State.
type Screen string

const (
	// ScreenLanguage is the language gate.
	ScreenLanguage Screen = "language"
	// ScreenAuth is the demo sign-in gate.
	ScreenAuth Screen = "auth"
)

// State is the shell's full navigation state.
type State struct {
	Language      i18n.Tag `json:"language,omitempty"`
	Authenticated bool     `json:"authenticated"`
	View          View     `json:"view"`
}

// Initial is the state of a first visit.
func Initial() State {
	return State{View: ViewDashboard}
}

// FromUser rebuilds the state persisted on a user record. Stored values that
// no longer parse fall back to the initial state's.
func FromUser(u *domain.User) State {
	s := Initial()
	if u == nil {
		return s
	}
	if u.HasLanguage() {
		s.Language = i18n.Resolve(u.Language)
	}
	s.Authenticated = u.Authenticated
	if v, err := ParseView(u.View); err == nil {
		s.View = v
	}
	return s
}

// Screen returns the screen to render. Gates take precedence over the view.
func (s State) Screen() Screen {
	switch {
	case s.Language == "":
		return ScreenLanguage
	case !s.Authenticated:
		return ScreenAuth
	default:
		return Screen(s.View)
	}
}

// Gated reports whether a gate screen is showing.
func (s State) Gated() bool {
	return s.Language == "" || !s.Authenticated
}

// SelectLanguage records the visitor's language. Unsupported tags resolve to
// the default language; only an empty selection is refused.
func (s State) SelectLanguage(lang string) (State, error) {
	if strings.TrimSpace(lang) == "" {
		return s, ErrEmptyLanguage
	}
	s.Language = i18n.Resolve(lang)
	return s, nil
}

// Authenticate passes the demo sign-in gate. There are no credentials to check.
func (s State) Authenticate() State {
	s.Authenticated = true
	return s
}

// Navigate switches the current view.
func (s State) Navigate(view string) (State, error) {
	v, err := ParseView(view)
	if err != nil {
		return s, err
	}
	if s.Gated() {
		return s, ErrGated
	}
	s.View = v
	return s, nil
}
