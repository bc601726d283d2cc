package picklist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/pkg/errors"

	nt "picklist/entity"
	"picklist/message"
	"picklist/selector"
	"picklist/style"
)

const (
	footerHeight = 2
)

// focus is the form row taking keys while the selector is closed
type focus int

const (
	selectorFocus focus = iota
	toggleFocus
)

// Model is the bubbletea model for the form.
type Model struct {
	Selector selector.Selector
	Search   SearchInput
	Toggle   Checkbox

	title       string
	label       string
	focus       focus
	highlighted int
	notice      string
	empty       bool

	ctx    context.Context
	logger nt.Logger

	Width  int
	Height int
}

func (m Model) Init() tea.Cmd {

	if m.empty {
		return message.ErrorCmd(errors.New("selector has no endpoint and no options"))
	}
	return m.Selector.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {

	switch msg := msg.(type) {

	case selector.ChangedMsg:
		m.logger.Info(m.ctx, "selection changed", "values", msg.Values)
		return m, nil

	case selector.SelectedMsg:
		m.logger.Info(m.ctx, "option selected", "id", msg.Id, "model", msg.Model)
		return m, nil

	case selector.SearchMsg:
		m.highlighted = 0

	case message.NoticeMsg:
		m.notice = fmt.Sprintf("%s %s", msg.Title, msg.Description)
		return m, nil

	case message.UnauthorizedMsg:
		m.notice = "Logged out, sign in again to continue"
		return m, nil

	case message.ErrorMsg:
		m.logger.Error(m.ctx, "error msg", msg.Err)
		m.notice = msg.Err.Error()
		return m, nil

	case tea.KeyPressMsg:
		m.notice = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Selector.Phase().IsOpen() {
			return m.openKey(msg)
		}
		return m.closedKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) View() tea.View {

	if m.Width == 0 {
		return tea.NewView("Loading...")
	}

	rows := []string{titleStyle.Render(m.title), ""}
	rows = append(rows, m.row(selectorFocus, m.label, m.Selector.Render(m.highlighted, m.Width-labelWidth-2)))
	if m.Toggle.Enabled() {
		rows = append(rows, m.row(toggleFocus, "", m.Toggle.Render()))
	}

	formLayer := lipgloss.NewLayer("form", strings.Join(rows, "\n"))

	footerContent := RenderFooter(m.summary(), m.Selector.Phase().String(), m.Width)
	if m.notice != "" {
		footerContent = noticeStyle.Render(m.notice)
	}
	footerLayer := lipgloss.NewLayer("footer", footerContent).Y(m.Height - footerHeight)

	canvas := lipgloss.NewCanvas(m.Width, m.Height)
	canvas.Compose(formLayer)
	canvas.Compose(footerLayer)

	view := tea.NewView(canvas)
	view.AltScreen = true
	return view
}

// unexported

// forward hands msg to the selector, dropping the search text once it closes
func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {

	var cmd tea.Cmd
	m.Selector, cmd = m.Selector.Update(msg)

	if !m.Selector.Phase().IsOpen() {
		m.Search = SearchInput{}
		m.highlighted = 0
	}

	choices := len(m.Selector.Options())
	if m.highlighted >= choices {
		m.highlighted = max(choices-1, 0)
	}

	return m, cmd
}

func (m Model) openKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {

	switch msg.String() {
	case "esc":
		return m.forward(selector.CloseMsg{})

	case "up":
		if m.highlighted > 0 {
			m.highlighted--
		}
		return m, nil

	case "down":
		if m.highlighted < len(m.Selector.Options())-1 {
			m.highlighted++
		}
		return m, nil

	case "enter":
		choices := m.Selector.Options()
		if m.highlighted >= len(choices) {
			return m, nil
		}
		return m.forward(selector.SelectMsg{Value: choices[m.highlighted].Value})

	case "pgdown":
		return m.turnPage(1)

	case "pgup":
		return m.turnPage(-1)
	}

	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

func (m Model) closedKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "tab", "down", "up":
		if m.Toggle.Enabled() {
			m.focus = (m.focus + 1) % 2
		}
		return m, nil
	}

	if m.focus == toggleFocus {
		var cmd tea.Cmd
		m.Toggle, cmd = m.Toggle.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter", "space":
		m.highlighted = 0
		return m.forward(selector.OpenMsg{})

	case "backspace", "delete":
		return m.forward(selector.ClearMsg{})
	}

	return m, nil
}

func (m Model) turnPage(delta int) (Model, tea.Cmd) {

	if !m.Selector.ShowPagination() {
		return m, nil
	}

	paging := m.Selector.Paging()
	page := paging.Page + delta
	if page < 1 || page > paging.Pages {
		return m, nil
	}

	m.highlighted = 0
	return m.forward(selector.PageMsg{Page: page, Size: int(paging.Limit)})
}

func (m Model) row(fcs focus, label, content string) string {

	marker := "  "
	if m.focus == fcs && !m.Selector.Phase().IsOpen() {
		marker = focusStyle.Render("› ")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, marker, labelStyle.Render(label), content)
}

func (m Model) summary() string {

	values := m.Selector.Values()
	if len(values) == 0 {
		return style.MutedStyle.Render("nothing selected")
	}
	return fmt.Sprintf("%d selected: %s", len(values), strings.Join(values, ", "))
}
