package picklist

import (
	"strings"

	"charm.land/lipgloss/v2"

	"picklist/style"
)

// RenderFooter renders a status line, left and right justified.
func RenderFooter(left, right string, width int) string {

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return style.FooterStyle.Render(left + strings.Repeat(" ", padding) + right)
}
