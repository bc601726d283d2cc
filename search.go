package picklist

import (
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"

	"picklist/selector"
)

const maxTerm = 64

// SearchInput is the editable search text of an open selector.
// The cursor counts runes.
type SearchInput struct {
	value  []rune
	cursor int
}

// Update edits the text and, when it changes, emits the new term for the selector.
func (si SearchInput) Update(msg tea.KeyPressMsg) (SearchInput, tea.Cmd) {

	oldValue := si.Value()

	switch key := msg.String(); key {
	case "backspace":
		if si.cursor > 0 {
			si.value = append(si.value[:si.cursor-1:si.cursor-1], si.value[si.cursor:]...)
			si.cursor--
		}
	case "delete":
		if si.cursor < len(si.value) {
			si.value = append(si.value[:si.cursor:si.cursor], si.value[si.cursor+1:]...)
		}
	case "left":
		if si.cursor > 0 {
			si.cursor--
		}
	case "right":
		if si.cursor < len(si.value) {
			si.cursor++
		}
	case "home", "ctrl+a":
		si.cursor = 0
	case "end", "ctrl+e":
		si.cursor = len(si.value)
	case "ctrl+u":
		si.value = nil
		si.cursor = 0
	case "space":
		si = si.insert(' ')
	default:
		if utf8.RuneCountInString(key) == 1 {
			r, _ := utf8.DecodeRuneInString(key)
			si = si.insert(r)
		}
	}

	term := si.Value()
	if term == oldValue {
		return si, nil
	}

	return si, func() tea.Msg {
		return selector.SearchMsg{Term: term}
	}
}

func (si SearchInput) Value() string {
	return string(si.value)
}

func (si SearchInput) Cursor() int {
	return si.cursor
}

// unexported

func (si SearchInput) insert(r rune) SearchInput {

	if len(si.value) >= maxTerm {
		return si
	}

	value := make([]rune, 0, len(si.value)+1)
	value = append(value, si.value[:si.cursor]...)
	value = append(value, r)
	si.value = append(value, si.value[si.cursor:]...)
	si.cursor++
	return si
}
