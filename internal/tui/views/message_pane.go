package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/matheus3301/zapweb/internal/unread"
	"github.com/rivo/tview"
)

// MessagePane renders a conversation's messages with an unread divider
// and tracks which messages are on screen through an unread.Registry.
// Wrapping is disabled so each message's rendered line span is exact.
type MessagePane struct {
	*tview.TextView
	theme    *ui.Theme
	registry *unread.Registry

	msgs       []model.Message
	anchor     string
	lineTop    map[string]int
	totalLines int
}

// NewMessagePane creates the pane. onViewed fires once per message when
// enough of it has been on screen.
func NewMessagePane(theme *ui.Theme, onViewed func(id string)) *MessagePane {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Messages ")
	tv.SetTitleColor(theme.TitleColor)

	mp := &MessagePane{
		TextView: tv,
		theme:    theme,
		registry: unread.NewRegistry(onViewed),
		lineTop:  make(map[string]int),
	}
	mp.SetInputCapture(mp.handleKey)
	return mp
}

// SetConversationName updates the pane title.
func (mp *MessagePane) SetConversationName(name string) {
	mp.SetTitle(fmt.Sprintf(" %s ", name))
}

// Update re-renders the thread. anchor, when non-empty, marks the first
// unread message and draws the divider above it.
func (mp *MessagePane) Update(msgs []model.Message, anchor string) {
	mp.msgs = msgs
	mp.anchor = anchor
	mp.render()
	mp.ReportVisible()
}

func (mp *MessagePane) render() {
	mp.Clear()
	mp.registry.Reset()
	mp.lineTop = make(map[string]int)

	line := 0
	for _, m := range mp.msgs {
		if mp.anchor != "" && m.ID == mp.anchor {
			_, _ = fmt.Fprintf(mp, "[%s]── unread ──────────[-]\n", colorTag(mp.theme.DividerColor))
			line++
		}

		sender := m.SenderName
		if sender == "" {
			sender = m.SenderID
		}
		if m.FromMe {
			sender = "You"
		}
		body := sanitizeForTerminal(m.Body)
		if body == "" && m.Kind != "chat" {
			body = "[" + m.Kind + "]"
		}

		_, _ = fmt.Fprintf(mp, "[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			tview.Escape(sanitizeForTerminal(sender)),
			formatClock(m.Timestamp),
			tview.Escape(body))

		height := 3 + strings.Count(body, "\n")
		mp.lineTop[m.ID] = line
		mp.registry.SetSpan(m.ID, line, height)
		line += height
	}
	mp.totalLines = line
}

// ScrollToAnchor positions the viewport on the given message id, or on
// the bottom when the id is empty or unknown.
func (mp *MessagePane) ScrollToAnchor(id string) {
	top, ok := mp.lineTop[id]
	if id == "" || !ok {
		mp.ScrollToEnd()
		mp.ReportVisible()
		return
	}
	mp.ScrollTo(top, 0)
	mp.ReportVisible()
}

// ReportVisible feeds the current viewport window to the registry.
func (mp *MessagePane) ReportVisible() {
	offset, _ := mp.GetScrollOffset()
	_, _, _, height := mp.GetInnerRect()
	if height <= 0 {
		return
	}
	mp.registry.ReportWindow(offset, height)
}

func (mp *MessagePane) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	offset, _ := mp.GetScrollOffset()
	_, _, _, height := mp.GetInnerRect()

	switch {
	case ev.Key() == tcell.KeyUp || (ev.Key() == tcell.KeyRune && ev.Rune() == 'k'):
		offset--
	case ev.Key() == tcell.KeyDown || (ev.Key() == tcell.KeyRune && ev.Rune() == 'j'):
		offset++
	case ev.Key() == tcell.KeyPgUp:
		offset -= height
	case ev.Key() == tcell.KeyPgDn:
		offset += height
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'g':
		offset = 0
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'G':
		offset = mp.totalLines
	default:
		return ev
	}

	if max := mp.totalLines - height; offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	mp.ScrollTo(offset, 0)
	mp.ReportVisible()
	return nil
}

func colorTag(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
