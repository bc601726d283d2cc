// Package fetch adapts the json api client to the selector's Fetcher.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"picklist/client"
	nt "picklist/entity"
)

const (
	startKey   = "start"
	limitKey   = "limit"
	filtersKey = "filters"
	fieldsKey  = "fields"
	searchKey  = "search"
)

// Getter specifies the one client call the adapter needs.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (env client.Envelope, err error)
}

// Adapter fetches pages of options. It holds no state beyond its Getter.
type Adapter struct {
	getter Getter
}

// New creates an Adapter.
func New(getter Getter) *Adapter {
	return &Adapter{getter: getter}
}

// Fetch gets a normalized page of items from endpoint.
func (ad *Adapter) Fetch(ctx context.Context, endpoint string, query nt.Query) (page nt.Page, err error) {

	values, err := Encode(query)
	if err != nil {
		return
	}

	env, err := ad.getter.Get(ctx, endpoint, values)
	if err != nil {
		return
	}

	items, err := decodeItems(env.Data)
	if err != nil {
		err = errors.Wrapf(err, "failed to decode items from %s", endpoint)
		return
	}

	page = nt.Page{
		Items: items,
		Total: env.Total,
		Pages: env.Pages,
		Page:  env.Page,
	}
	return
}

// Encode translates a query into request parameters.
// Filters, fields and search are json encoded, params are passed as is.
func Encode(query nt.Query) (values url.Values, err error) {

	values = url.Values{}

	for key, val := range query.Params {
		var text string
		text, err = paramText(val)
		if err != nil {
			err = errors.Wrapf(err, "failed to encode param %s", key)
			return
		}
		values.Set(key, text)
	}

	if query.Limit != 0 {
		values.Set(startKey, strconv.Itoa(query.Start))
		values.Set(limitKey, query.Limit.String())
	}

	encoded := []struct {
		key   string
		value any
		empty bool
	}{
		{key: filtersKey, value: query.Filters, empty: len(query.Filters) == 0},
		{key: fieldsKey, value: query.Fields, empty: len(query.Fields) == 0},
		{key: searchKey, value: query.Search, empty: len(query.Search) == 0},
	}

	for _, enc := range encoded {
		if enc.empty {
			continue
		}

		var data []byte
		data, err = json.Marshal(enc.value)
		if err != nil {
			err = errors.Wrapf(err, "failed to encode %s", enc.key)
			return
		}
		values.Set(enc.key, string(data))
	}

	return
}

// Decode translates request parameters back into a query, the inverse of Encode.
// Unrecognized parameters become Params.
func Decode(values url.Values) (query nt.Query, err error) {

	query.Params = map[string]any{}

	for key := range values {
		text := values.Get(key)

		switch key {
		case startKey:
			query.Start, err = strconv.Atoi(text)
			if err == nil && query.Start < 0 {
				err = errors.Errorf("negative start %d", query.Start)
			}
		case limitKey:
			query.Limit, err = nt.ParseLimit(text)
		case filtersKey:
			err = json.Unmarshal([]byte(text), &query.Filters)
		case fieldsKey:
			err = json.Unmarshal([]byte(text), &query.Fields)
		case searchKey:
			err = json.Unmarshal([]byte(text), &query.Search)
		default:
			query.Params[key] = text
		}

		if err != nil {
			err = errors.Wrapf(err, "failed to decode %s", key)
			return
		}
	}

	return
}

// unexported

func paramText(val any) (string, error) {

	switch val := val.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool, int, int64, float64:
		return fmt.Sprintf("%v", val), nil
	}

	data, err := json.Marshal(val)
	return string(data), err
}

func decodeItems(data json.RawMessage) (items []nt.Item, err error) {

	items = []nt.Item{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return
	}

	err = json.Unmarshal(trimmed, &items)
	return
}
