package picklist

import "charm.land/lipgloss/v2"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(labelWidth)
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)
