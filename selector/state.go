package selector

// Phase is where the selector is in its lifecycle.
// Booting and Searching are exclusive by construction.
type Phase int

const (
	Closed    Phase = iota // dropdown hidden
	Booting                // resolving a preselected value into its label
	Browsing               // dropdown open on the base listing
	Searching              // dropdown open on the search listing
)

var phaseNames = map[Phase]string{
	Closed:    "closed",
	Booting:   "booting",
	Browsing:  "browsing",
	Searching: "searching",
}

func (phase Phase) String() string {
	return phaseNames[phase]
}

// IsOpen is true while the dropdown is shown.
func (phase Phase) IsOpen() bool {
	return phase == Browsing || phase == Searching
}

// slot identifies a logical fetch operation, at most one result per slot is applied.
type slot int

const (
	bootSlot slot = iota
	openSlot
	searchSlot
	pageSlot
	slotCount
)

var slotNames = [slotCount]string{"boot", "open", "search", "page"}

func (st slot) String() string {
	return slotNames[st]
}

// target names the listing a fetch result is written to.
type target int

const (
	toDisplay target = iota
	toBase
	toSearch
)

// flight tracks the latest fetch issued on a slot.
type flight struct {
	gen     uint64
	pending bool
}

// flights holds one flight per slot.
type flights [slotCount]flight

// issue bumps the slot's generation, superseding anything in the air.
func (fl flights) issue(st slot) (flights, uint64) {
	fl[st].gen++
	fl[st].pending = true
	return fl, fl[st].gen
}

// cancel supersedes the slot without issuing anything new.
func (fl flights) cancel(st slot) flights {
	fl[st].gen++
	fl[st].pending = false
	return fl
}

// land settles the slot if gen is still current.
func (fl flights) land(st slot, gen uint64) (flights, bool) {
	if fl[st].gen != gen {
		return fl, false
	}
	fl[st].pending = false
	return fl, true
}

// loading is true while an open, search or page fetch is in the air.
func (fl flights) loading() bool {
	return fl[openSlot].pending || fl[searchSlot].pending || fl[pageSlot].pending
}
