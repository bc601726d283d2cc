package selector

import (
	nt "picklist/entity"
)

// SelectorMsg is a marker interface for messages destined for a Selector.
type SelectorMsg interface {
	isSelectorMsg()
}

func (OpenMsg) isSelectorMsg()     {}
func (CloseMsg) isSelectorMsg()    {}
func (SearchMsg) isSelectorMsg()   {}
func (PageMsg) isSelectorMsg()     {}
func (SelectMsg) isSelectorMsg()   {}
func (ClearMsg) isSelectorMsg()    {}
func (ValueMsg) isSelectorMsg()    {}
func (ParamsMsg) isSelectorMsg()   {}
func (EndpointMsg) isSelectorMsg() {}
func (fetchedMsg) isSelectorMsg()  {}
func (debounceMsg) isSelectorMsg() {}

// OpenMsg signals the dropdown opened.
type OpenMsg struct{}

// CloseMsg signals the dropdown closed.
type CloseMsg struct{}

// SearchMsg carries the search text after a keystroke.
type SearchMsg struct {
	Term string
}

// PageMsg requests a page from the pagination control.
type PageMsg struct {
	Page int // 1-based
	Size int // Page size, current limit when zero
}

// SelectMsg is an explicit selection gesture on one option.
type SelectMsg struct {
	Value string
}

// ClearMsg clears the selection.
type ClearMsg struct{}

// ValueMsg sets the bound value from outside.
type ValueMsg struct {
	Values []string
}

// ParamsMsg sets the static filter params from outside.
type ParamsMsg struct {
	Params map[string]any
}

// EndpointMsg points the selector at a different endpoint.
type EndpointMsg struct {
	Endpoint string
}

// ChangedMsg reports every selection or clear to the host.
type ChangedMsg struct {
	Id     string
	Values []string
	Models []nt.Item
}

// SelectedMsg reports an explicit selection gesture to the host.
type SelectedMsg struct {
	Id    string
	Model nt.Item
}

// unexported

type fetchedMsg struct {
	id     string
	slot   slot
	gen    uint64
	target target
	paging nt.Paging
	page   nt.Page
	err    error
}

type debounceMsg struct {
	id   string
	seq  int
	term string
}
