package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	nt "picklist/entity"
)

var (
	// ErrUnauthorized is the cause of errors from requests refused for lack of a valid token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrFailed is the cause of errors from requests the server did not fulfil.
	ErrFailed = errors.New("request failed")
)

// wafRewrites maps methods blocked by restrictive intermediaries to a path suffix used with POST.
var wafRewrites = map[string]string{
	http.MethodPut:    "/edit",
	http.MethodDelete: "/remove",
	http.MethodPatch:  "/partial_edit",
}

// Credentials specifies where the client finds its persisted session.
type Credentials interface {
	// Token returns the access token, empty when logged out
	Token() string
	// Session returns the secondary session id, empty when unset
	Session() string
	// Clear drops the persisted session
	Clear() error
}

// Notifier specifies a sink for user visible error notices.
type Notifier interface {
	Notify(ctx context.Context, title, description string)
}

// Config is the client's configuration.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	WafEnabled bool          `yaml:"waf_enabled,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	RetryMax   int           `yaml:"retry_max,omitempty"`
}

// Envelope is the server's response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Count   int             `json:"count,omitempty"`
	Total   int             `json:"total,omitempty"`
	Page    int             `json:"page,omitempty"`
	Pages   int             `json:"pages,omitempty"`

	// StatusCode is the envelope's status if given, the http status otherwise
	StatusCode int `json:"-"`
}

// Client is a json api client.
// Credentials are read on first use and cached until Reset or a 401.
type Client struct {
	// Notifier optionally receives error notices
	Notifier Notifier
	// OnUnauthorized is optionally called after a 401 has cleared the session
	OnUnauthorized func(ctx context.Context)

	httpClient *retryablehttp.Client
	baseURL    string
	waf        bool
	creds      Credentials
	logger     nt.Logger

	mu      sync.Mutex
	token   string
	session string
}

// New creates a Client.
func (cfg *Config) New(creds Credentials, lgr nt.Logger) *Client {

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &retryLogger{logger: lgr}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return &Client{
		httpClient: rc,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		waf:        cfg.WafEnabled,
		creds:      creds,
		logger:     lgr,
	}
}

// Configure (re)loads credentials, typically after login.
func (cl *Client) Configure() {

	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.token = cl.creds.Token()
	cl.session = cl.creds.Session()
}

// Reset forgets cached credentials, typically on logout.
func (cl *Client) Reset() {

	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.token = ""
	cl.session = ""
}

// Get performs a GET with query parameters.
func (cl *Client) Get(ctx context.Context, path string, query url.Values) (env Envelope, err error) {
	return cl.Do(ctx, http.MethodGet, path, query, nil)
}

// Do performs a request with an optional json body and unwraps the response envelope.
func (cl *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (env Envelope, err error) {

	method, path = cl.rewrite(method, path)

	req, err := cl.request(ctx, method, path, query, body)
	if err != nil {
		return
	}

	// passthrough error handling hands back the last response once retries are spent
	resp, err := cl.httpClient.Do(req)
	if resp == nil {
		cl.notify(ctx, "Server Error", "Application server encountered an error.")
		err = errors.Wrapf(err, "failed to %s %s", method, path)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		env = Envelope{Success: true, StatusCode: resp.StatusCode}
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = cl.refused(ctx, method, path, resp.StatusCode)
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrapf(err, "failed to read response of %s %s", method, path)
		return
	}

	err = json.Unmarshal(data, &env)
	if err != nil {
		err = errors.Wrapf(err, "failed to unmarshal response of %s %s", method, path)
		return
	}

	env.StatusCode = resp.StatusCode
	if env.Status != 0 {
		env.StatusCode = env.Status
	}

	if !env.Success {
		err = cl.unsuccessful(ctx, method, path, env)
	}
	return
}

// unexported

func (cl *Client) rewrite(method, path string) (string, string) {

	suffix, ok := wafRewrites[method]
	if !cl.waf || !ok {
		return method, path
	}
	return http.MethodPost, path + suffix
}

func (cl *Client) request(ctx context.Context, method, path string, query url.Values, body any) (req *retryablehttp.Request, err error) {

	var reqBody any
	if body != nil {
		var data []byte
		data, err = json.Marshal(body)
		if err != nil {
			err = errors.Wrapf(err, "failed to marshal request body")
			return
		}
		reqBody = bytes.NewReader(data)
	}

	target := cl.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err = retryablehttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		err = errors.Wrapf(err, "failed to create request")
		return
	}

	token, session := cl.credentials()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	if session != "" {
		req.Header.Set("X-Session", session)
	}

	return
}

// credentials returns cached credentials, loading any that are missing.
func (cl *Client) credentials() (token, session string) {

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.token == "" {
		cl.token = cl.creds.Token()
	}
	if cl.session == "" {
		cl.session = cl.creds.Session()
	}

	return cl.token, cl.session
}

func (cl *Client) refused(ctx context.Context, method, path string, status int) error {

	switch status {
	case http.StatusUnauthorized:
		cl.notify(ctx, "Error", "Token expired !")
		cl.unauthorized(ctx)
		return errors.Wrapf(ErrUnauthorized, "%s %s returned %d", method, path, status)

	case http.StatusForbidden:
		cl.notify(ctx, "Forbidden !", "You are not allowed to access this API !")

	default:
		cl.notify(ctx, "Error", "Application encountered an error.")
	}

	return errors.Wrapf(ErrFailed, "%s %s returned %d", method, path, status)
}

func (cl *Client) unsuccessful(ctx context.Context, method, path string, env Envelope) error {

	if env.Message != "" {
		cl.notify(ctx, "Error", env.Message)
	}

	if env.Status == http.StatusUnauthorized {
		cl.unauthorized(ctx)
		return errors.Wrapf(ErrUnauthorized, "%s %s: %s", method, path, env.Message)
	}

	return errors.Wrapf(ErrFailed, "%s %s: %s", method, path, env.Message)
}

// unauthorized clears the persisted session and hands off to the host's login flow.
func (cl *Client) unauthorized(ctx context.Context) {

	err := cl.creds.Clear()
	if err != nil {
		cl.logger.Error(ctx, "failed to clear session", err)
	}
	cl.Reset()

	if cl.OnUnauthorized != nil {
		cl.OnUnauthorized(ctx)
	}
}

func (cl *Client) notify(ctx context.Context, title, description string) {

	cl.logger.Info(ctx, "request error", "title", title, "description", description)
	if cl.Notifier != nil {
		cl.Notifier.Notify(ctx, title, description)
	}
}

// retryLogger adapts Logger to retryablehttp.LeveledLogger
type retryLogger struct {
	logger nt.Logger
}

func (rl *retryLogger) Error(msg string, kv ...any) {
	rl.logger.Error(context.Background(), "retry", errors.New(msg), kv...)
}

func (rl *retryLogger) Info(msg string, kv ...any) {}

func (rl *retryLogger) Debug(msg string, kv ...any) {}

func (rl *retryLogger) Warn(msg string, kv ...any) {
	rl.logger.Info(context.Background(), "retry: "+msg, kv...)
}
