package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nt "picklist/entity"
)

type fakeCreds struct {
	token   string
	session string
	cleared int
}

func (fc *fakeCreds) Token() string   { return fc.token }
func (fc *fakeCreds) Session() string { return fc.session }
func (fc *fakeCreds) Clear() error {
	fc.cleared++
	fc.token = ""
	return nil
}

type notice struct {
	title       string
	description string
}

type fakeNotifier struct {
	notices []notice
}

func (fn *fakeNotifier) Notify(ctx context.Context, title, description string) {
	fn.notices = append(fn.notices, notice{title: title, description: description})
}

// seen is what the test server observed of a request
type seen struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

func newServer(t *testing.T, status int, payload string, requests *[]seen) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*requests = append(*requests, seen{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   string(body),
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newClient(srv *httptest.Server, waf bool, creds *fakeCreds) (*Client, *fakeNotifier) {

	cfg := &Config{BaseURL: srv.URL + "/", WafEnabled: waf}
	cl := cfg.New(creds, nt.NopLogger{})

	ntf := &fakeNotifier{}
	cl.Notifier = ntf

	return cl, ntf
}

func TestGet(t *testing.T) {

	var requests []seen
	srv := newServer(t, 200, `{"success":true,"data":[{"id":1}],"total":12,"page":2,"pages":3}`, &requests)
	cl, ntf := newClient(srv, false, &fakeCreds{token: "abc", session: "s-1"})

	env, err := cl.Get(context.Background(), "/people", url.Values{"start": {"10"}})
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Equal(t, 200, env.StatusCode)
	assert.Equal(t, 12, env.Total)
	assert.Equal(t, 2, env.Page)
	assert.Equal(t, 3, env.Pages)
	assert.JSONEq(t, `[{"id":1}]`, string(env.Data))
	assert.Empty(t, ntf.notices)

	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/people", req.path)
	assert.Equal(t, "10", req.query.Get("start"))
	assert.Equal(t, "Token abc", req.header.Get("Authorization"))
	assert.Equal(t, "s-1", req.header.Get("X-Session"))
	assert.NotEmpty(t, req.header.Get("X-Request-Id"))
}

func TestAnonymous(t *testing.T) {

	var requests []seen
	srv := newServer(t, 200, `{"success":true}`, &requests)
	cl, _ := newClient(srv, false, &fakeCreds{})

	_, err := cl.Get(context.Background(), "/people", nil)
	require.NoError(t, err)

	assert.Empty(t, requests[0].header.Get("Authorization"))
	assert.Empty(t, requests[0].header.Get("X-Session"))
}

func TestWafRewrite(t *testing.T) {

	cases := []struct {
		method string
		waf    bool
		expect string
		path   string
	}{
		{method: http.MethodPut, waf: true, expect: http.MethodPost, path: "/people/1/edit"},
		{method: http.MethodDelete, waf: true, expect: http.MethodPost, path: "/people/1/remove"},
		{method: http.MethodPatch, waf: true, expect: http.MethodPost, path: "/people/1/partial_edit"},
		{method: http.MethodGet, waf: true, expect: http.MethodGet, path: "/people/1"},
		{method: http.MethodPut, waf: false, expect: http.MethodPut, path: "/people/1"},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			var requests []seen
			srv := newServer(t, 200, `{"success":true}`, &requests)
			cl, _ := newClient(srv, tc.waf, &fakeCreds{})

			_, err := cl.Do(context.Background(), tc.method, "/people/1", nil, map[string]string{"name": "Ann"})
			require.NoError(t, err)

			require.Len(t, requests, 1)
			assert.Equal(t, tc.expect, requests[0].method)
			assert.Equal(t, tc.path, requests[0].path)
			assert.JSONEq(t, `{"name":"Ann"}`, requests[0].body)
		})
	}
}

func TestNoContent(t *testing.T) {

	var requests []seen
	srv := newServer(t, 204, "", &requests)
	cl, ntf := newClient(srv, false, &fakeCreds{})

	env, err := cl.Do(context.Background(), http.MethodDelete, "/people/1", nil, nil)
	require.NoError(t, err)

	assert.True(t, env.Success)
	assert.Equal(t, 204, env.StatusCode)
	assert.Empty(t, ntf.notices)
}

func TestUnsuccessfulEnvelope(t *testing.T) {

	var requests []seen
	srv := newServer(t, 200, `{"success":false,"status":422,"message":"name is required"}`, &requests)
	cl, ntf := newClient(srv, false, &fakeCreds{})

	env, err := cl.Get(context.Background(), "/people", nil)

	require.Error(t, err)
	assert.Equal(t, ErrFailed, errors.Cause(err))
	assert.Equal(t, 422, env.StatusCode)
	assert.Equal(t, []notice{{title: "Error", description: "name is required"}}, ntf.notices)
}

func TestUnauthorized(t *testing.T) {

	t.Run("http status", func(t *testing.T) {
		var requests []seen
		srv := newServer(t, 401, `{"detail":"expired"}`, &requests)
		creds := &fakeCreds{token: "stale"}
		cl, ntf := newClient(srv, false, creds)

		loggedOut := 0
		cl.OnUnauthorized = func(ctx context.Context) { loggedOut++ }

		_, err := cl.Get(context.Background(), "/people", nil)

		assert.Equal(t, ErrUnauthorized, errors.Cause(err))
		assert.Equal(t, 1, creds.cleared)
		assert.Equal(t, 1, loggedOut)
		assert.Equal(t, "Token expired !", ntf.notices[0].description)

		// cached token is gone with the session
		_, _ = cl.Get(context.Background(), "/people", nil)
		assert.Empty(t, requests[1].header.Get("Authorization"))
	})

	t.Run("envelope status", func(t *testing.T) {
		var requests []seen
		srv := newServer(t, 200, `{"success":false,"status":401,"message":"login again"}`, &requests)
		creds := &fakeCreds{token: "stale"}
		cl, _ := newClient(srv, false, creds)

		_, err := cl.Get(context.Background(), "/people", nil)

		assert.Equal(t, ErrUnauthorized, errors.Cause(err))
		assert.Equal(t, 1, creds.cleared)
	})
}

func TestRefused(t *testing.T) {

	cases := []struct {
		status int
		title  string
	}{
		{status: 403, title: "Forbidden !"},
		{status: 404, title: "Error"},
		{status: 500, title: "Error"},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var requests []seen
			srv := newServer(t, tc.status, `{}`, &requests)
			cl, ntf := newClient(srv, false, &fakeCreds{})

			_, err := cl.Get(context.Background(), "/people", nil)

			assert.Equal(t, ErrFailed, errors.Cause(err))
			require.Len(t, ntf.notices, 1)
			assert.Equal(t, tc.title, ntf.notices[0].title)
		})
	}
}

func TestMalformedResponse(t *testing.T) {

	var requests []seen
	srv := newServer(t, 200, `<html>`, &requests)
	cl, _ := newClient(srv, false, &fakeCreds{})

	_, err := cl.Get(context.Background(), "/people", nil)
	require.Error(t, err)

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestConfigureReset(t *testing.T) {

	var requests []seen
	srv := newServer(t, 200, `{"success":true}`, &requests)
	creds := &fakeCreds{token: "one"}
	cl, _ := newClient(srv, false, creds)

	cl.Configure()
	creds.token = "two"

	_, err := cl.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "Token one", requests[0].header.Get("Authorization"))

	cl.Reset()
	_, err = cl.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "Token two", requests[1].header.Get("Authorization"))
}
