package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picklist/client"
	nt "picklist/entity"
	"picklist/fetch"
)

type queried struct {
	table  string
	filter nt.Filter
	offset int
	limit  nt.Limit
}

type fakeQuerier struct {
	calls []queried
	items []nt.Item
	count int
	err   error
}

func (fq *fakeQuerier) Query(ctx context.Context, table string, filter nt.Filter, offset int, limit nt.Limit) ([]nt.Item, int, error) {
	fq.calls = append(fq.calls, queried{table: table, filter: filter, offset: offset, limit: limit})
	return fq.items, fq.count, fq.err
}

func get(t *testing.T, srv *Server, target string) (*httptest.ResponseRecorder, client.Envelope) {
	t.Helper()

	recorder := httptest.NewRecorder()
	srv.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	var env client.Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &env))
	return recorder, env
}

func TestServeHTTP(t *testing.T) {

	fq := &fakeQuerier{
		items: []nt.Item{{"id": "1", "name": "Ann"}, {"id": "2", "name": "Bob"}},
		count: 25,
	}
	srv := New(fq, nt.NopLogger{})

	values, err := fetch.Encode(nt.Query{
		Start:  10,
		Limit:  10,
		Fields: []string{"name"},
		Search: []string{"an"},
		Params: map[string]any{"kind": "staff"},
	})
	require.NoError(t, err)

	recorder, env := get(t, srv, "/people?"+values.Encode())

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Count)
	assert.Equal(t, 25, env.Total)
	assert.Equal(t, 2, env.Page)
	assert.Equal(t, 3, env.Pages)
	assert.JSONEq(t, `[{"id":"1","name":"Ann"},{"id":"2","name":"Bob"}]`, string(env.Data))

	require.Len(t, fq.calls, 1)
	call := fq.calls[0]
	assert.Equal(t, "people", call.table)
	assert.Equal(t, 10, call.offset)
	assert.Equal(t, nt.Limit(10), call.limit)
	assert.Equal(t, nt.AndFilter(
		nt.Filter{Field: "kind", Op: nt.Eq, Value: "staff"},
		nt.Filter{Op: nt.Or, Children: []nt.Filter{{Field: "name", Op: nt.Contains, Value: "an"}}},
	), call.filter)
}

func TestServeHTTPUnbounded(t *testing.T) {

	fq := &fakeQuerier{items: []nt.Item{}, count: 3}
	srv := New(fq, nt.NopLogger{})

	_, env := get(t, srv, "/people")

	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Pages)
	assert.Equal(t, nt.All, fq.calls[0].limit)
	assert.True(t, fq.calls[0].filter.IsZero())
}

func TestServeHTTPErrors(t *testing.T) {

	t.Run("bad query", func(t *testing.T) {
		fq := &fakeQuerier{}
		recorder, env := get(t, New(fq, nt.NopLogger{}), "/people?limit=none")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.False(t, env.Success)
		assert.Empty(t, fq.calls)
	})

	t.Run("store failure", func(t *testing.T) {
		fq := &fakeQuerier{err: errors.New("no such table")}
		recorder, env := get(t, New(fq, nt.NopLogger{}), "/nope")

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.False(t, env.Success)
		assert.Equal(t, http.StatusInternalServerError, env.Status)
	})

	t.Run("method", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		New(&fakeQuerier{}, nt.NopLogger{}).ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/people", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	})
}

func TestFilter(t *testing.T) {

	t.Run("preselection", func(t *testing.T) {
		in := nt.InFilter("id", []string{"3"})
		assert.Equal(t, in, Filter(nt.Query{Filters: []nt.Filter{in}}))
	})

	t.Run("terms and fields", func(t *testing.T) {
		filter := Filter(nt.Query{
			Fields: []string{"name", "email"},
			Search: []string{"an", "", "bo"},
		})

		expected := nt.Filter{Op: nt.And, Children: []nt.Filter{
			{Op: nt.Or, Children: []nt.Filter{
				{Field: "name", Op: nt.Contains, Value: "an"},
				{Field: "email", Op: nt.Contains, Value: "an"},
			}},
			{Op: nt.Or, Children: []nt.Filter{
				{Field: "name", Op: nt.Contains, Value: "bo"},
				{Field: "email", Op: nt.Contains, Value: "bo"},
			}},
		}}
		assert.Equal(t, expected, filter)
	})

	t.Run("search without fields", func(t *testing.T) {
		assert.True(t, Filter(nt.Query{Search: []string{"an"}}).IsZero())
	})
}

func TestPaginate(t *testing.T) {

	cases := []struct {
		start int
		limit nt.Limit
		total int
		page  int
		pages int
	}{
		{start: 0, limit: 10, total: 0, page: 1, pages: 0},
		{start: 0, limit: 10, total: 10, page: 1, pages: 1},
		{start: 10, limit: 10, total: 11, page: 2, pages: 2},
		{start: 20, limit: 10, total: 25, page: 3, pages: 3},
		{start: 0, limit: nt.All, total: 25, page: 1, pages: 1},
	}

	for _, tc := range cases {
		page, pages := Paginate(tc.start, tc.limit, tc.total)
		assert.Equal(t, tc.page, page)
		assert.Equal(t, tc.pages, pages)
	}
}

// round trip from the adapter, through the client, to the server and back
func TestThroughClient(t *testing.T) {

	fq := &fakeQuerier{
		items: []nt.Item{{"id": float64(3), "name": "Cat"}},
		count: 1,
	}
	hs := httptest.NewServer(New(fq, nt.NopLogger{}))
	defer hs.Close()

	cfg := &client.Config{BaseURL: hs.URL}
	adapter := fetch.New(cfg.New(anonymous{}, nt.NopLogger{}))

	page, err := adapter.Fetch(context.Background(), "/people", nt.Query{
		Start:   0,
		Limit:   10,
		Filters: []nt.Filter{nt.InFilter("id", []string{"3"})},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "3", page.Items[0].Get("id").String())

	assert.Equal(t, nt.InFilter("id", []string{"3"}), fq.calls[0].filter)

	t.Run("refused", func(t *testing.T) {
		values := url.Values{"limit": {"zero"}}
		_, err := cfg.New(anonymous{}, nt.NopLogger{}).Get(context.Background(), "/people", values)
		assert.Equal(t, client.ErrFailed, errors.Cause(err))
	})
}

type anonymous struct{}

func (anonymous) Token() string   { return "" }
func (anonymous) Session() string { return "" }
func (anonymous) Clear() error    { return nil }
