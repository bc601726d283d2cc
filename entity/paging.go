package entity

import (
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Limit is a page size, or All to disable paging.
type Limit int

// All disables paging and remote search.
const All Limit = -1

const allText = "all"

// IsAll is true when paging is disabled.
func (limit Limit) IsAll() bool {
	return limit == All
}

// String returns the wire form of the limit.
func (limit Limit) String() string {
	if limit.IsAll() {
		return allText
	}
	return strconv.Itoa(int(limit))
}

// ParseLimit parses a page size or "all".
func ParseLimit(text string) (limit Limit, err error) {

	if text == allText {
		limit = All
		return
	}

	size, err := strconv.Atoi(text)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse limit %q", text)
		return
	}
	if size <= 0 {
		err = errors.Errorf("limit must be positive or %q, got %d", allText, size)
		return
	}

	limit = Limit(size)
	return
}

// MarshalYAML encodes the limit as a number or "all".
func (limit Limit) MarshalYAML() (any, error) {
	if limit.IsAll() {
		return allText, nil
	}
	return int(limit), nil
}

// UnmarshalYAML decodes a number or "all".
func (limit *Limit) UnmarshalYAML(node *yaml.Node) (err error) {

	parsed, err := ParseLimit(node.Value)
	if err != nil {
		return
	}

	*limit = parsed
	return
}

// Paging describes a window into a remote listing.
type Paging struct {
	Start int   // Zero-based offset of the first item
	Limit Limit // Page size
	Total int   // Total matching items on the server
	Pages int   // Total page count
	Page  int   // Current 1-based page as reported by the server
}

// ShowControl is false when there is nothing to paginate.
func (paging Paging) ShowControl() bool {
	return paging.Pages >= 2 && !paging.Limit.IsAll()
}

// Listing is a cached page of items with its paging.
type Listing struct {
	Items  []Item
	Paging Paging
}

// NewListing returns an empty listing at the configured window.
func NewListing(start int, limit Limit) Listing {
	return Listing{
		Items: []Item{},
		Paging: Paging{
			Start: start,
			Limit: limit,
		},
	}
}

// Page is a normalized fetch result.
type Page struct {
	Items []Item
	Total int
	Pages int
	Page  int
}

// Apply returns paging updated with the counts reported in a page.
func (page Page) Apply(paging Paging) Paging {
	paging.Total = page.Total
	paging.Pages = page.Pages
	paging.Page = page.Page
	return paging
}

// Query is what the selector asks of a fetcher.
// Filters are used for preselection only; Fields and Search for free text only.
type Query struct {
	Start   int
	Limit   Limit
	Filters []Filter
	Fields  []string
	Search  []string
	Params  map[string]any
}

// Option describes one statically supplied choice.
type Option struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Model Item   `yaml:"model,omitempty"`
}
