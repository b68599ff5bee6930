package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/rivo/tview"
)

// ConversationList is the main chat list view.
type ConversationList struct {
	*tview.Table
	theme      *ui.Theme
	convs      []model.Conversation
	filter     string
	unreadOnly bool
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Chats ")
	table.SetTitleColor(theme.TitleColor)

	return &ConversationList{
		Table: table,
		theme: theme,
	}
}

// Update refreshes the list with new data.
func (cl *ConversationList) Update(convs []model.Conversation) {
	cl.convs = convs
	cl.render()
}

// SetFilter sets the active filter text and re-renders.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

// ClearFilter clears the active filter.
func (cl *ConversationList) ClearFilter() {
	cl.filter = ""
	cl.render()
}

// ToggleUnreadOnly flips the unread-only filter.
func (cl *ConversationList) ToggleUnreadOnly() {
	cl.unreadOnly = !cl.unreadOnly
	cl.render()
}

func (cl *ConversationList) visible(c model.Conversation) bool {
	if cl.unreadOnly && c.UnreadCount == 0 {
		return false
	}
	if cl.filter == "" {
		return true
	}
	f := strings.ToLower(cl.filter)
	return strings.Contains(strings.ToLower(c.Name), f) ||
		strings.Contains(strings.ToLower(c.LastMessageText), f)
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" UNREAD", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	row := 1
	for _, c := range cl.convs {
		if !cl.visible(c) {
			continue
		}

		name := c.Name
		if name == "" {
			name = c.ID
		}
		nameColor := cl.theme.FgColor
		badge := ""
		if c.UnreadCount > 0 {
			nameColor = cl.theme.UnreadColor
			badge = fmt.Sprintf("%d", c.UnreadCount)
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(nameColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.LastMessageText))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(formatClock(c.Timestamp)).SetExpansion(0).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(badge).SetExpansion(0).SetTextColor(cl.theme.UnreadColor).SetAlign(tview.AlignRight))
		row++
	}

	switch {
	case cl.unreadOnly:
		cl.SetTitle(fmt.Sprintf(" Chats (%d/%d) unread ", row-1, len(cl.convs)))
	case cl.filter != "":
		cl.SetTitle(fmt.Sprintf(" Chats (%d/%d) filter: %s ", row-1, len(cl.convs), cl.filter))
	default:
		cl.SetTitle(fmt.Sprintf(" Chats (%d) ", len(cl.convs)))
	}
}

// SelectedConversation returns the id of the currently selected row.
func (cl *ConversationList) SelectedConversation() string {
	row, _ := cl.GetSelection()
	idx := row - 1 // account for header
	if idx < 0 {
		return ""
	}
	visible := 0
	for _, c := range cl.convs {
		if !cl.visible(c) {
			continue
		}
		if visible == idx {
			return c.ID
		}
		visible++
	}
	return ""
}

func formatClock(sec int64) string {
	if sec == 0 {
		return ""
	}
	t := time.Unix(sec, 0)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
