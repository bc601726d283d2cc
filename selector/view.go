package selector

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	nt "picklist/entity"
	"picklist/style"
)

const (
	placeholder = "select…"
	loadingText = "loading…"
	emptyText   = "no options"
)

// Choice is one selectable row of the rendered dropdown.
type Choice struct {
	Label    string
	Value    string
	Model    nt.Item
	Selected bool
}

// Options returns the selectable rows for the current state.
func (sel Selector) Options() []Choice {

	choices := []Choice{}

	if sel.remote() {
		for _, item := range sel.display.Items {
			choices = append(choices, Choice{
				Label: sel.label(item),
				Value: item.Get(sel.cfg.ValuePath).String(),
				Model: item,
			})
		}
	} else {
		for _, opt := range sel.cfg.Options {
			choices = append(choices, Choice{
				Label: opt.Label,
				Value: opt.Value,
				Model: optionModel(opt),
			})
		}
	}

	if !sel.remoteSearch() {
		choices = filterChoices(choices, sel.term)
	}

	for i := range choices {
		choices[i].Selected = slices.Contains(sel.values, choices[i].Value)
	}

	return choices
}

// ShowPagination is true when the pagination control should render.
func (sel Selector) ShowPagination() bool {
	return sel.remote() && sel.display.Paging.ShowControl()
}

// Render renders the selector, with the dropdown when open.
// highlighted is the index into Options of the row under the cursor.
func (sel Selector) Render(highlighted, width int) string {

	if sel.phase == Booting {
		return style.MutedStyle.Render(loadingText)
	}

	field := sel.renderField()
	if !sel.phase.IsOpen() {
		return field
	}

	lines := []string{field}
	if sel.Loading() {
		lines = append(lines, style.MutedStyle.Render(loadingText))
	} else {
		lines = append(lines, sel.renderOptions(highlighted)...)
	}

	if sel.ShowPagination() {
		lines = append(lines, renderPaging(sel.display.Paging, width-4))
	}

	return style.DropdownStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// unexported

func (sel Selector) label(item nt.Item) string {

	if sel.cfg.Renderer != nil {
		return sel.cfg.Renderer(item)
	}
	return item.Get(sel.cfg.LabelPath).String()
}

func (sel Selector) renderField() string {

	if sel.phase.IsOpen() {
		return "› " + sel.term
	}

	if len(sel.values) == 0 {
		return style.MutedStyle.Render(placeholder) + " ▾"
	}

	labels := make([]string, len(sel.values))
	for i, val := range sel.values {
		labels[i] = val
		if model, ok := sel.chosen[val]; ok && model != nil {
			labels[i] = sel.label(model)
		}
	}
	return strings.Join(labels, ", ") + " ▾"
}

func (sel Selector) renderOptions(highlighted int) []string {

	choices := sel.Options()
	if len(choices) == 0 {
		return []string{style.MutedStyle.Render(emptyText)}
	}

	lines := make([]string, len(choices))
	for i, choice := range choices {
		mark := "  "
		if choice.Selected {
			mark = "✓ "
		}
		lines[i] = style.RowStyle(i == highlighted, choice.Selected).Render(mark + choice.Label)
	}
	return lines
}

// renderPaging renders a pagination summary line.
func renderPaging(paging nt.Paging, width int) string {

	left := fmt.Sprintf("‹ %d/%d ›", paging.Page, paging.Pages)
	right := fmt.Sprintf("%d total", paging.Total)

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return style.FooterStyle.Render(left + strings.Repeat(" ", padding) + right)
}
