package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func runeEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestScopeShadowsGlobal(t *testing.T) {
	r := NewRegistry()
	var fired string
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { fired = "global" }})
	r.AddScope("stories", "close", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() { fired = "scope" }})

	if !r.HandleEvent("stories", runeEvent('q')) {
		t.Fatal("expected a handler to match")
	}
	if fired != "scope" {
		t.Errorf("fired = %q, want scope", fired)
	}

	if !r.HandleEvent("chats", runeEvent('q')) {
		t.Fatal("expected global handler to match")
	}
	if fired != "global" {
		t.Errorf("fired = %q, want global", fired)
	}
}

func TestNoMatch(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Handler: func() {}})
	if r.HandleEvent("chats", runeEvent('x')) {
		t.Error("unexpected match for unbound rune")
	}
	if r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)) {
		t.Error("unexpected match for unbound key")
	}
}

func TestHintsOrderAndVisibility(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal("quit", &Action{Key: tcell.KeyRune, Rune: 'q', Description: "q:quit", Visible: true})
	r.AddGlobal("hidden", &Action{Key: tcell.KeyRune, Rune: 'h', Description: "h:hidden"})
	r.AddScope("chats", "open", &Action{Key: tcell.KeyEnter, Description: "enter:open", Visible: true})

	hints := r.Hints("chats")
	if len(hints) != 2 {
		t.Fatalf("got %d hints, want 2: %v", len(hints), hints)
	}
	if hints[0] != "enter:open" || hints[1] != "q:quit" {
		t.Errorf("hints = %v", hints)
	}
}
