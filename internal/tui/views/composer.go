package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/rivo/tview"
)

// Composer is the message input line. Sending is not implemented; the
// field renders and submits to a callback that owns the refusal.
type Composer struct {
	*tview.InputField
	onSubmit func(text string)
}

// NewComposer creates the input line.
func NewComposer(theme *ui.Theme) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)
	input.SetTitle(" Compose (i to focus) ")
	input.SetTitleColor(theme.TitleColor)

	c := &Composer{InputField: input}
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSubmit != nil {
			if text := input.GetText(); text != "" {
				c.onSubmit(text)
				input.SetText("")
			}
		}
	})
	return c
}

// SetOnSubmit sets the callback for Enter.
func (c *Composer) SetOnSubmit(fn func(text string)) {
	c.onSubmit = fn
}
