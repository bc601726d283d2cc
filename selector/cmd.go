package selector

import (
	tea "charm.land/bubbletea/v2"

	nt "picklist/entity"
)

// fetchCmd fetches a page in the background and reports back with a fetchedMsg
func (sel Selector) fetchCmd(st slot, gen uint64, tgt target, paging nt.Paging, query nt.Query) tea.Cmd {

	ctx, fetcher, endpoint, id := sel.ctx, sel.fetcher, sel.cfg.Endpoint, sel.id

	return func() tea.Msg {

		page, err := fetcher.Fetch(ctx, endpoint, query)

		return fetchedMsg{
			id:     id,
			slot:   st,
			gen:    gen,
			target: tgt,
			paging: paging,
			page:   page,
			err:    err,
		}
	}
}

// bootCmd resolves the bound value(s) into their items
func (sel Selector) bootCmd(gen uint64) tea.Cmd {

	paging := nt.NewListing(sel.cfg.Start, sel.cfg.Limit).Paging

	query := nt.Query{
		Limit: nt.All,
	}
	if !paging.Limit.IsAll() {
		query = nt.Query{
			Start:   paging.Start,
			Limit:   paging.Limit,
			Filters: []nt.Filter{nt.InFilter(sel.cfg.ValuePath, sel.values)},
		}
	}

	return sel.fetchCmd(bootSlot, gen, toDisplay, paging, query)
}

// changedCmd reports the current value(s) to the host
func (sel Selector) changedCmd() tea.Cmd {

	msg := ChangedMsg{
		Id:     sel.id,
		Values: sel.Values(),
		Models: sel.models(),
	}

	return func() tea.Msg {
		return msg
	}
}
