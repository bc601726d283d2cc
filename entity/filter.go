package entity

import (
	"github.com/pkg/errors"
)

// FilterOp represents a filter operation type.
type FilterOp int

const (
	// Logical operators
	And FilterOp = iota
	Or
	Not

	// Comparison operators
	Eq       // ==
	Ne       // !=
	Gt       // >
	Gte      // >=
	Lt       // <
	Lte      // <=
	Contains // substring match
	Match    // regex match
	In       // membership in a list of values
)

var opNames = map[FilterOp]string{
	And:      "and",
	Or:       "or",
	Not:      "not",
	Eq:       "eq",
	Ne:       "ne",
	Gt:       "gt",
	Gte:      "gte",
	Lt:       "lt",
	Lte:      "lte",
	Contains: "contains",
	Match:    "match",
	In:       "in",
}

// String returns the wire name of the op.
func (op FilterOp) String() string {
	name, ok := opNames[op]
	if !ok {
		return "unknown"
	}
	return name
}

// MarshalText encodes op by wire name.
func (op FilterOp) MarshalText() ([]byte, error) {
	name, ok := opNames[op]
	if !ok {
		return nil, errors.Errorf("unknown filter op %d", int(op))
	}
	return []byte(name), nil
}

// UnmarshalText decodes op from wire name.
func (op *FilterOp) UnmarshalText(text []byte) error {
	for candidate, name := range opNames {
		if name == string(text) {
			*op = candidate
			return nil
		}
	}
	return errors.Errorf("unknown filter op %q", string(text))
}

// Filter represents a composable filter for option queries.
// Only comparisons travel over the wire; logical ops combine them server side.
type Filter struct {
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
	Op       FilterOp `json:"op" yaml:"op"`
	Children []Filter `json:"children,omitempty" yaml:"children,omitempty"`
}

// InFilter matches records whose field is one of values.
func InFilter(field string, values []string) Filter {

	vals := make([]any, len(values))
	for i, val := range values {
		vals[i] = val
	}

	return Filter{
		Field: field,
		Value: vals,
		Op:    In,
	}
}

// AndFilter combines filters, skipping the zero filter.
func AndFilter(filters ...Filter) Filter {

	children := []Filter{}
	for _, filter := range filters {
		if filter.IsZero() {
			continue
		}
		children = append(children, filter)
	}

	switch len(children) {
	case 0:
		return Filter{}
	case 1:
		return children[0]
	}

	return Filter{
		Op:       And,
		Children: children,
	}
}

// IsZero is true for the filter that matches everything.
func (filter Filter) IsZero() bool {
	return filter.Op == And && filter.Field == "" && len(filter.Children) == 0
}
