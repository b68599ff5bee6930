package views

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/matheus3301/zapweb/internal/tui/ui"
	"github.com/rivo/tview"
)

// AuthView displays the QR code for linking the client.
type AuthView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewAuthView creates a new auth view.
func NewAuthView(theme *ui.Theme) *AuthView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Link Device ")
	tv.SetTitleColor(theme.TitleColor)

	return &AuthView{
		TextView: tv,
		theme:    theme,
	}
}

// ShowQR renders a QR code string as a scannable ASCII art block.
func (av *AuthView) ShowQR(content string) {
	av.Clear()

	ascii := renderQR(content)
	_, _ = fmt.Fprintf(av, "\n  Scan this QR code with your phone:\n\n%s\n  [::d]Waiting for link...", ascii)
}

// ShowMessage displays a status message.
func (av *AuthView) ShowMessage(msg string) {
	av.Clear()
	_, _ = fmt.Fprintf(av, "\n\n%s", msg)
}

// renderQR converts a string to a compact ASCII QR code using Unicode
// half-block characters.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder

	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top && !bot:
				sb.WriteRune('▀')
			case !top && bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
