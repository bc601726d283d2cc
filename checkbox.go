package picklist

import (
	"maps"

	tea "charm.land/bubbletea/v2"

	"picklist/selector"
)

// Toggle configures a checkbox that adds one static param to the selector's queries.
type Toggle struct {
	Label string `yaml:"label"`
	Param string `yaml:"param"`
	Value any    `yaml:"value"`
}

// Checkbox toggles a static param on and off
type Checkbox struct {
	toggle  Toggle
	base    map[string]any
	checked bool
}

func NewCheckbox(toggle Toggle, base map[string]any) Checkbox {
	return Checkbox{
		toggle: toggle,
		base:   base,
	}
}

// Update flips the box on "t" or space, sending the selector its new params.
func (cb Checkbox) Update(msg tea.KeyPressMsg) (Checkbox, tea.Cmd) {

	if msg.String() != "t" && msg.String() != "space" {
		return cb, nil
	}

	cb.checked = !cb.checked

	params := cb.Params()
	return cb, func() tea.Msg {
		return selector.ParamsMsg{Params: params}
	}
}

// Params returns the base params, with the toggled param when checked.
func (cb Checkbox) Params() map[string]any {

	params := maps.Clone(cb.base)
	if params == nil {
		params = map[string]any{}
	}

	if cb.checked {
		params[cb.toggle.Param] = cb.toggle.Value
	} else {
		delete(params, cb.toggle.Param)
	}
	return params
}

func (cb Checkbox) Checked() bool {
	return cb.checked
}

func (cb Checkbox) Enabled() bool {
	return cb.toggle.Param != ""
}

func (cb Checkbox) Render() string {
	if cb.checked {
		return "[x] " + cb.toggle.Label
	}
	return "[ ] " + cb.toggle.Label
}
