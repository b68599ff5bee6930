package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableHeaderBg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	UnreadColor      tcell.Color
	DividerColor     tcell.Color
	MenuKeyColor     tcell.Color
	TitleColor       tcell.Color
	FlashColor       tcell.Color
}

// DefaultTheme returns the default dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorLightGray,
		BorderColor:      tcell.ColorDarkSeaGreen,
		BorderFocusColor: tcell.ColorPaleGreen,
		TableHeaderFg:    tcell.ColorWhite,
		TableHeaderBg:    tcell.ColorBlack,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorMediumSpringGreen,
		UnreadColor:      tcell.ColorSpringGreen,
		DividerColor:     tcell.ColorGoldenrod,
		MenuKeyColor:     tcell.ColorMediumSpringGreen,
		TitleColor:       tcell.ColorSpringGreen,
		FlashColor:       tcell.ColorOrange,
	}
}
