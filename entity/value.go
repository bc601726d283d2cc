package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value wraps a field value found in an item.
type Value struct {
	Raw any
}

// String returns the value as a string.
func (v Value) String() string {
	switch raw := v.Raw.(type) {
	case nil:
		return ""
	case string:
		return raw
	case float64:
		// json numbers arrive as float64, keep integral ids free of exponents
		if raw == float64(int64(raw)) {
			return fmt.Sprintf("%d", int64(raw))
		}
	case json.Number:
		return raw.String()
	}
	return fmt.Sprintf("%v", v.Raw)
}

// Item is an opaque server record.
type Item map[string]any

// Get returns the value at a dotted path such as "owner.name".
func (item Item) Get(path string) Value {

	var current any = map[string]any(item)
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return Value{}
		}
		current = obj[key]
	}

	return Value{Raw: current}
}
