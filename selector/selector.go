package selector

import (
	"context"
	"reflect"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	nt "picklist/entity"
)

const (
	defaultLabelPath = "label"
	defaultValuePath = "value"
	defaultLimit     = nt.Limit(10)
	defaultDebounce  = 500 * time.Millisecond
)

// Fetcher specifies a source of remote option pages.
type Fetcher interface {
	// Fetch a page of items from endpoint
	Fetch(ctx context.Context, endpoint string, query nt.Query) (page nt.Page, err error)
}

// Config is the host supplied configuration of a Selector.
// Endpoint may be empty, in which case Options are used and nothing is fetched.
type Config struct {
	Endpoint   string         `yaml:"endpoint"`
	Value      []string       `yaml:"value,omitempty"`
	Multi      bool           `yaml:"multi,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
	LabelPath  string         `yaml:"label_path,omitempty"`
	ValuePath  string         `yaml:"value_path,omitempty"`
	SearchPath string         `yaml:"search_path,omitempty"`
	Start      int            `yaml:"start,omitempty"`
	Limit      nt.Limit       `yaml:"limit,omitempty"`
	Debounce   time.Duration  `yaml:"debounce,omitempty"`
	Options    []nt.Option    `yaml:"options,omitempty"`

	// Renderer optionally formats an item's option text
	Renderer func(nt.Item) string `yaml:"-"`
}

// Selector is a remote-searchable, paged selection component.
// It is a value: Update returns the next Selector rather than mutating.
type Selector struct {
	id      string
	cfg     Config
	fetcher Fetcher

	phase    Phase
	pristine bool // base listing must be refetched on next open
	flights  flights

	values []string
	chosen map[string]nt.Item // models of selected values, by value
	term   string

	base    nt.Listing // unfiltered page from the last clean open
	search  nt.Listing // filtered page for the active term
	display nt.Listing // copy of whichever is shown

	debounceSeq int
	after       func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	ctx    context.Context
	logger nt.Logger
}

// New creates a Selector, ready to be booted with Init.
func (cfg *Config) New(ctx context.Context, fetcher Fetcher, lgr nt.Logger) Selector {

	cf := cfg.withDefaults()

	sel := Selector{
		id:       uuid.NewString(),
		cfg:      cf,
		fetcher:  fetcher,
		phase:    Closed,
		pristine: true,
		values:   slices.Clone(cf.Value),
		chosen:   map[string]nt.Item{},
		base:     nt.NewListing(cf.Start, cf.Limit),
		search:   nt.NewListing(cf.Start, cf.Limit),
		display:  nt.NewListing(cf.Start, cf.Limit),
		after:    tea.Tick,
		ctx:      ctx,
		logger:   lgr,
	}

	if !sel.remote() {
		sel.chosen = sel.localModels(sel.values)
		return sel
	}

	if len(sel.values) > 0 {
		// Todo: hosts that know the preselected models could skip this round trip
		sel.phase = Booting
		sel.flights, _ = sel.flights.issue(bootSlot)
	}

	return sel
}

// Init issues the preselection fetch when booting.
func (sel Selector) Init() tea.Cmd {

	if sel.phase != Booting {
		return nil
	}
	return sel.bootCmd(sel.flights[bootSlot].gen)
}

// Update applies msg and returns the next state.
func (sel Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {

	switch msg := msg.(type) {

	case OpenMsg:
		return sel.open()

	case CloseMsg:
		return sel.close(), nil

	case SearchMsg:
		return sel.input(msg.Term)

	case debounceMsg:
		if msg.id != sel.id {
			return sel, nil
		}
		return sel.searchFor(msg)

	case PageMsg:
		return sel.turnPage(msg.Page, msg.Size)

	case SelectMsg:
		return sel.choose(msg.Value)

	case ClearMsg:
		return sel.clear()

	case ValueMsg:
		return sel.setValue(msg.Values)

	case ParamsMsg:
		return sel.setParams(msg.Params), nil

	case EndpointMsg:
		return sel.setEndpoint(msg.Endpoint), nil

	case fetchedMsg:
		if msg.id != sel.id {
			return sel, nil
		}
		return sel.land(msg), nil
	}

	return sel, nil
}

// Id distinguishes selectors hosted together.
func (sel Selector) Id() string {
	return sel.id
}

// Phase returns the current phase.
func (sel Selector) Phase() Phase {
	return sel.phase
}

// Pristine is true when the next open will refetch.
func (sel Selector) Pristine() bool {
	return sel.pristine
}

// Loading is true while an option fetch is in flight.
func (sel Selector) Loading() bool {
	return sel.flights.loading()
}

// Booting is true while a preselected value is being resolved.
func (sel Selector) Booting() bool {
	return sel.phase == Booting
}

// Values returns the bound value(s).
func (sel Selector) Values() []string {
	return slices.Clone(sel.values)
}

// Term returns the current search text.
func (sel Selector) Term() string {
	return sel.term
}

// Paging returns the paging of the displayed listing.
func (sel Selector) Paging() nt.Paging {
	return sel.display.Paging
}

// unexported

func (cfg Config) withDefaults() Config {

	if cfg.LabelPath == "" {
		cfg.LabelPath = defaultLabelPath
	}
	if cfg.ValuePath == "" {
		cfg.ValuePath = defaultValuePath
	}
	if cfg.SearchPath == "" {
		cfg.SearchPath = cfg.LabelPath
	}
	if cfg.Limit == 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = defaultDebounce
	}

	return cfg
}

func (sel Selector) remote() bool {
	return sel.cfg.Endpoint != ""
}

// remoteSearch is false when search happens client side.
func (sel Selector) remoteSearch() bool {
	return sel.remote() && !sel.base.Paging.Limit.IsAll()
}

func (sel Selector) open() (Selector, tea.Cmd) {

	if sel.phase != Closed {
		return sel, nil
	}

	sel.phase = Browsing
	sel.term = ""

	if !sel.remote() {
		return sel, nil
	}

	if !sel.pristine {
		sel.display = sel.base
		return sel, nil
	}

	sel.pristine = false
	sel.flights = sel.flights.cancel(pageSlot)

	query := nt.Query{
		Start:  sel.base.Paging.Start,
		Limit:  sel.base.Paging.Limit,
		Params: sel.cfg.Params,
	}

	var gen uint64
	sel.flights, gen = sel.flights.issue(openSlot)
	return sel, sel.fetchCmd(openSlot, gen, toBase, sel.base.Paging, query)
}

func (sel Selector) close() Selector {

	if !sel.phase.IsOpen() {
		return sel
	}

	if sel.phase == Searching {
		sel.pristine = true
	}

	sel.phase = Closed
	sel.term = ""
	sel.debounceSeq++ // drop any search still waiting out the debounce

	return sel
}

func (sel Selector) input(term string) (Selector, tea.Cmd) {

	if !sel.phase.IsOpen() {
		return sel, nil
	}

	sel.term = term

	if !sel.remoteSearch() {
		return sel, nil
	}

	sel.debounceSeq++

	id, seq := sel.id, sel.debounceSeq
	return sel, sel.after(sel.cfg.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id, seq: seq, term: term}
	})
}

func (sel Selector) searchFor(msg debounceMsg) (Selector, tea.Cmd) {

	if msg.seq != sel.debounceSeq || !sel.phase.IsOpen() {
		return sel, nil
	}

	sel.phase = Searching

	paging := sel.search.Paging
	paging.Start = 0
	paging.Limit = sel.base.Paging.Limit

	query := nt.Query{
		Start:  paging.Start,
		Limit:  paging.Limit,
		Params: sel.cfg.Params,
	}
	sel.withTerm(&query, msg.term)

	// a page of the previous term must not land on this one
	sel.flights = sel.flights.cancel(pageSlot)

	var gen uint64
	sel.flights, gen = sel.flights.issue(searchSlot)
	return sel, sel.fetchCmd(searchSlot, gen, toSearch, paging, query)
}

func (sel Selector) turnPage(page, size int) (Selector, tea.Cmd) {

	if !sel.remoteSearch() || !sel.phase.IsOpen() || page < 1 {
		return sel, nil
	}

	if size <= 0 {
		size = int(sel.display.Paging.Limit)
	}

	paging := sel.base.Paging
	tgt := toBase
	feeder := openSlot
	if sel.phase == Searching {
		paging = sel.search.Paging
		tgt = toSearch
		feeder = searchSlot
	}
	paging.Start = (page - 1) * size
	paging.Limit = nt.Limit(size)

	query := nt.Query{
		Start:  paging.Start,
		Limit:  paging.Limit,
		Params: sel.cfg.Params,
	}
	if tgt == toSearch {
		sel.withTerm(&query, sel.term)
	}

	sel.flights = sel.flights.cancel(feeder)

	var gen uint64
	sel.flights, gen = sel.flights.issue(pageSlot)
	return sel, sel.fetchCmd(pageSlot, gen, tgt, paging, query)
}

func (sel Selector) withTerm(query *nt.Query, term string) {

	if term == "" {
		return
	}
	query.Fields = []string{sel.cfg.SearchPath}
	query.Search = []string{term}
}

func (sel Selector) land(msg fetchedMsg) Selector {

	var current bool
	sel.flights, current = sel.flights.land(msg.slot, msg.gen)
	if !current {
		sel.logger.Info(sel.ctx, "discarding superseded fetch", "slot", msg.slot.String(), "gen", msg.gen)
		return sel
	}

	if msg.slot == bootSlot && sel.phase == Booting {
		sel.phase = Closed
	}

	if msg.err != nil {
		sel.logger.Error(sel.ctx, "failed to fetch options", msg.err, "slot", msg.slot.String(), "endpoint", sel.cfg.Endpoint)
		return sel
	}

	listing := nt.Listing{
		Items:  msg.page.Items,
		Paging: msg.page.Apply(msg.paging),
	}
	if listing.Items == nil {
		listing.Items = []nt.Item{}
	}

	switch msg.target {
	case toBase:
		sel.base = listing
		if sel.phase == Browsing {
			sel.display = listing
		}

	case toSearch:
		sel.search = listing
		if sel.phase == Searching {
			sel.display = listing
		}

	case toDisplay:
		sel.display = listing
		sel.chosen = sel.collect(listing.Items, sel.values)
	}

	return sel
}

func (sel Selector) choose(value string) (Selector, tea.Cmd) {

	if sel.phase == Booting {
		return sel, nil
	}

	model := sel.model(value)

	values := []string{value}
	if sel.cfg.Multi {
		values = toggle(sel.values, value)
	}

	chosen := map[string]nt.Item{}
	for _, val := range values {
		chosen[val] = sel.chosen[val]
	}
	if model != nil {
		chosen[value] = model
	}
	sel.chosen = chosen
	sel.values = values

	if len(values) == 0 {
		sel = sel.invalidate()
	}

	if !sel.cfg.Multi {
		sel = sel.close()
	}

	id := sel.id
	selected := func() tea.Msg {
		return SelectedMsg{Id: id, Model: model}
	}

	return sel, tea.Batch(selected, sel.changedCmd())
}

func (sel Selector) clear() (Selector, tea.Cmd) {

	if sel.phase == Booting {
		return sel, nil
	}

	sel.values = nil
	sel.chosen = map[string]nt.Item{}
	sel = sel.invalidate()

	return sel, sel.changedCmd()
}

func (sel Selector) setValue(values []string) (Selector, tea.Cmd) {

	if slices.Equal(values, sel.values) {
		return sel, nil
	}

	sel.values = slices.Clone(values)

	if !sel.remote() {
		sel.chosen = sel.localModels(sel.values)
		return sel, nil
	}

	sel.chosen = sel.collect(sel.knownModels(), sel.values)
	sel = sel.invalidate()

	if sel.phase == Booting {
		sel.flights = sel.flights.cancel(bootSlot)
		sel.phase = Closed
	}

	if len(sel.chosen) == len(sel.values) {
		// nothing to resolve, labels are already at hand
		return sel, nil
	}

	sel.phase = Booting
	sel.term = ""

	var gen uint64
	sel.flights, gen = sel.flights.issue(bootSlot)
	return sel, sel.bootCmd(gen)
}

func (sel Selector) setParams(params map[string]any) Selector {

	if reflect.DeepEqual(params, sel.cfg.Params) {
		return sel
	}

	sel.cfg.Params = params
	return sel.invalidate()
}

func (sel Selector) setEndpoint(endpoint string) Selector {

	if endpoint == sel.cfg.Endpoint {
		return sel
	}

	sel.cfg.Endpoint = endpoint
	return sel.invalidate()
}

// invalidate marks the base listing stale and resets the cached listings.
// Listing fetches still in the air belong to the old state and are dropped.
func (sel Selector) invalidate() Selector {

	sel.pristine = true
	sel.flights = sel.flights.cancel(openSlot).cancel(searchSlot).cancel(pageSlot)
	sel.base = nt.NewListing(sel.cfg.Start, sel.cfg.Limit)
	sel.search = nt.NewListing(sel.cfg.Start, sel.cfg.Limit)

	return sel
}

func (sel Selector) model(value string) nt.Item {

	if !sel.remote() {
		return sel.localModels([]string{value})[value]
	}

	for _, item := range sel.display.Items {
		if item.Get(sel.cfg.ValuePath).String() == value {
			return item
		}
	}
	return sel.chosen[value]
}

// knownModels returns the selected and displayed items.
func (sel Selector) knownModels() []nt.Item {

	items := slices.Clone(sel.display.Items)
	for _, item := range sel.chosen {
		if item != nil {
			items = append(items, item)
		}
	}
	return items
}

// collect picks the models of values out of items.
func (sel Selector) collect(items []nt.Item, values []string) map[string]nt.Item {

	chosen := map[string]nt.Item{}
	for _, item := range items {
		val := item.Get(sel.cfg.ValuePath).String()
		if slices.Contains(values, val) {
			chosen[val] = item
		}
	}
	return chosen
}

func (sel Selector) models() []nt.Item {

	if len(sel.values) == 0 {
		return nil
	}

	models := make([]nt.Item, len(sel.values))
	for i, val := range sel.values {
		models[i] = sel.chosen[val]
	}
	return models
}

func toggle(values []string, value string) []string {

	idx := slices.Index(values, value)
	if idx < 0 {
		return append(slices.Clone(values), value)
	}
	return slices.Delete(slices.Clone(values), idx, idx+1)
}
