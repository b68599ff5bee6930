package views

import (
	"testing"

	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/tui/ui"
)

func testConvs() []model.Conversation {
	return []model.Conversation{
		{ID: "alice@c.us", Name: "Alice", LastMessageText: "see you", UnreadCount: 2},
		{ID: "bob@c.us", Name: "Bob", LastMessageText: "ok"},
		{ID: "work@g.us", Name: "Work Group", LastMessageText: "standup at 10"},
	}
}

func TestConversationListFilterNarrowsRows(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update(testConvs())
	if got := cl.GetRowCount(); got != 4 { // header + 3
		t.Fatalf("row count = %d, want 4", got)
	}

	cl.SetFilter("standup")
	if got := cl.GetRowCount(); got != 2 {
		t.Fatalf("filtered row count = %d, want 2", got)
	}
	cl.Select(1, 0)
	if got := cl.SelectedConversation(); got != "work@g.us" {
		t.Fatalf("selected = %q, want work@g.us", got)
	}

	cl.ClearFilter()
	if got := cl.GetRowCount(); got != 4 {
		t.Fatalf("row count after clear = %d, want 4", got)
	}
}

func TestConversationListUnreadOnly(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update(testConvs())

	cl.ToggleUnreadOnly()
	if got := cl.GetRowCount(); got != 2 {
		t.Fatalf("unread-only row count = %d, want 2", got)
	}
	cl.Select(1, 0)
	if got := cl.SelectedConversation(); got != "alice@c.us" {
		t.Fatalf("selected = %q, want alice@c.us", got)
	}
}
