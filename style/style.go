package style

import (
	"charm.land/lipgloss/v2"
)

// warm greys, with a soft green for chosen options
var (
	BorderColor = lipgloss.Color("240")
	HlRowColor  = lipgloss.Color("235")
	ChosenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	FooterStyle = lipgloss.NewStyle().Foreground(BorderColor)
	UnStyle     = lipgloss.NewStyle()

	DropdownStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)
)

// RowStyle returns the style of an option row.
func RowStyle(highlighted, chosen bool) lipgloss.Style {

	style := UnStyle
	if chosen {
		style = ChosenStyle
	}
	if highlighted {
		style = style.Background(HlRowColor)
	}
	return style
}
