// Package keys holds the keybinding registry shared by all views.
package keys

import "github.com/gdamore/tcell/v2"

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

type binding struct {
	name   string
	action *Action
}

// Registry holds keybindings organized by scope. Bindings dispatch in
// registration order so overlapping runes resolve deterministically.
type Registry struct {
	global []binding
	scopes map[string][]binding
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string][]binding)}
}

// AddGlobal registers a keybinding active on every page.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = append(r.global, binding{name: name, action: action})
}

// AddScope registers a keybinding active only on the named page.
func (r *Registry) AddScope(scope, name string, action *Action) {
	r.scopes[scope] = append(r.scopes[scope], binding{name: name, action: action})
}

// Hints returns visible keybinding descriptions for a scope, scope
// bindings first.
func (r *Registry) Hints(scope string) []string {
	var hints []string
	for _, b := range r.scopes[scope] {
		if b.action.Visible {
			hints = append(hints, b.action.Description)
		}
	}
	for _, b := range r.global {
		if b.action.Visible {
			hints = append(hints, b.action.Description)
		}
	}
	return hints
}

// HandleEvent dispatches a key event to the first matching action in
// the given scope. Scope bindings shadow globals. Returns true if a
// handler ran.
func (r *Registry) HandleEvent(scope string, ev *tcell.EventKey) bool {
	for _, b := range r.scopes[scope] {
		if b.action.Matches(ev) {
			b.action.Handler()
			return true
		}
	}
	for _, b := range r.global {
		if b.action.Matches(ev) {
			b.action.Handler()
			return true
		}
	}
	return false
}
