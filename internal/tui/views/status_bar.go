package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/rivo/tview"
)

// flashTTL is how long a status bar flash stays visible.
const flashTTL = 5 * time.Second

// StatusBar displays persistent profile/connection status, the key
// hints for the active page, and transient flash messages.
type StatusBar struct {
	*tview.TextView
	profile string
	status  string
	hints   string
	flash   ui.Flash
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetStatus updates the connection status display.
func (sb *StatusBar) SetStatus(status string) {
	sb.status = status
	sb.render()
}

// SetHints updates the key hint line for the active page.
func (sb *StatusBar) SetHints(hints string) {
	sb.hints = hints
	sb.render()
}

// SetFlash shows a temporary message; it drops off after flashTTL.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash.Set(msg, flashTTL)
	sb.render()
}

// Refresh repaints the bar, advancing the clock and dropping an
// expired flash.
func (sb *StatusBar) Refresh() {
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", sb.profile, sb.status, clock)
	if sb.hints != "" {
		line += fmt.Sprintf(" | [::d]%s[-:-:-]", sb.hints)
	}
	if flash := sb.flash.Get(); flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", flash)
	}

	_, _ = fmt.Fprint(sb, line)
}
