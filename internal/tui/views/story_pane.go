package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/rivo/tview"
)

// StoryPane shows contact status groups on the left and the currently
// playing status on the right.
type StoryPane struct {
	*tview.Flex
	theme     *ui.Theme
	groupList *tview.Table
	display   *tview.TextView

	groups []model.ContactStatusGroup
}

// NewStoryPane creates the status viewer layout.
func NewStoryPane(theme *ui.Theme) *StoryPane {
	groupList := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	groupList.SetBorder(true)
	groupList.SetBorderColor(theme.BorderColor)
	groupList.SetBackgroundColor(theme.BgColor)
	groupList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	groupList.SetTitle(" Status ")
	groupList.SetTitleColor(theme.TitleColor)

	display := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	display.SetBorder(true)
	display.SetBorderColor(theme.BorderColor)
	display.SetBackgroundColor(theme.BgColor)
	display.SetTextColor(theme.FgColor)
	display.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		AddItem(groupList, 0, 1, true).
		AddItem(display, 0, 2, false)

	return &StoryPane{
		Flex:      flex,
		theme:     theme,
		groupList: groupList,
		display:   display,
	}
}

// GroupList returns the group table for focus management.
func (sp *StoryPane) GroupList() *tview.Table {
	return sp.groupList
}

// SetSelectedFunc wires group activation.
func (sp *StoryPane) SetSelectedFunc(fn func(contactID string)) {
	sp.groupList.SetSelectedFunc(func(row, col int) {
		if id := sp.groupAt(row); id != "" {
			fn(id)
		}
	})
}

// UpdateGroups refreshes the contact list. unreadOf reports how many
// statuses in a group are still unread.
func (sp *StoryPane) UpdateGroups(groups []model.ContactStatusGroup, unreadOf func(contactID string) int) {
	sp.groups = groups
	sp.groupList.Clear()

	for i, g := range groups {
		name := g.ContactName
		if name == "" {
			name = g.ContactID
		}
		color := sp.theme.FgColor
		badge := ""
		if n := unreadOf(g.ContactID); n > 0 {
			color = sp.theme.UnreadColor
			badge = fmt.Sprintf("%d new", n)
		}
		sp.groupList.SetCell(i, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(color))
		sp.groupList.SetCell(i, 1, tview.NewTableCell(badge).SetTextColor(sp.theme.UnreadColor).SetAlign(tview.AlignRight))
		sp.groupList.SetCell(i, 2, tview.NewTableCell(formatClock(g.LastTimestamp)).SetTextColor(sp.theme.FgColor).SetAlign(tview.AlignRight))
	}
	sp.groupList.SetTitle(fmt.Sprintf(" Status (%d) ", len(groups)))
}

// ShowCurrent renders the playing status with a progress strip.
func (sp *StoryPane) ShowCurrent(group *model.ContactStatusGroup, index int) {
	sp.display.Clear()
	if group == nil || index < 0 || index >= len(group.Statuses) {
		sp.display.SetTitle("")
		_, _ = fmt.Fprint(sp.display, "\n\nSelect a contact to view their status")
		return
	}

	st := group.Statuses[index]
	name := group.ContactName
	if name == "" {
		name = group.ContactID
	}
	sp.display.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(name))))

	var dots strings.Builder
	for i := range group.Statuses {
		if i == index {
			dots.WriteString("●")
		} else {
			dots.WriteString("○")
		}
		dots.WriteByte(' ')
	}

	body := tview.Escape(sanitizeForTerminal(st.Body))
	media := ""
	switch st.Kind {
	case "image":
		media = "[image]"
	case "video":
		media = "[video] (space when finished)"
	}
	if st.MediaURL != "" {
		media += "\n" + tview.Escape(st.MediaURL)
	}

	_, _ = fmt.Fprintf(sp.display, "\n%s\n\n[::d]%s[-:-:-]\n\n%s\n\n%s",
		strings.TrimSpace(dots.String()),
		formatClock(st.Timestamp),
		media,
		body)
}

func (sp *StoryPane) groupAt(row int) string {
	if row < 0 || row >= len(sp.groups) {
		return ""
	}
	return sp.groups[row].ContactID
}
