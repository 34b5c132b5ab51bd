package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const fetchBody = `[{"result":{"data":{"json":{"default_account_id":"acc_123"}}}},` +
	`{"result":{"data":{"json":[{"key_type":"secret","live_mode":false,"key":"sk_test_abc"},` +
	`{"key_type":"secret","live_mode":true,"key":"sk_live_xyz"}]}}}]`

// fakeDashboard serves the three batched endpoints and records what it saw.
type fakeDashboard struct {
	t *testing.T

	mu       sync.Mutex
	calls    []string
	bodies   map[string][]byte
	requests map[string]*http.Request

	loginStatus  int
	loginBody    string
	verifyStatus int
	verifyBody   string
	fetchStatus  int
	fetchBody    string
}

func newFakeDashboard(t *testing.T) *fakeDashboard {
	return &fakeDashboard{
		t:            t,
		bodies:       map[string][]byte{},
		requests:     map[string]*http.Request{},
		loginStatus:  http.StatusOK,
		loginBody:    `[{"result":{"data":{"json":{"methodId":"m1"}}}}]`,
		verifyStatus: http.StatusOK,
		verifyBody:   `[{"result":{"data":{"json":null}}}]`,
		fetchStatus:  http.StatusOK,
		fetchBody:    fetchBody,
	}
}

func (d *fakeDashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	d.mu.Lock()
	d.calls = append(d.calls, r.URL.Path)
	d.bodies[r.URL.Path] = body
	d.requests[r.URL.Path] = r
	d.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case loginEmailPath:
		w.WriteHeader(d.loginStatus)
		io.WriteString(w, d.loginBody)
	case authenticateOtpPath:
		if d.verifyStatus == http.StatusOK {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cr3t", Path: "/", HttpOnly: true})
		}
		w.WriteHeader(d.verifyStatus)
		io.WriteString(w, d.verifyBody)
	case protectedDataPath:
		if c, err := r.Cookie("session"); err != nil || c.Value != "s3cr3t" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `[{"error":{"json":{"message":"not logged in","code":-32001,"data":{"code":"UNAUTHORIZED","httpStatus":401}}}}]`)
			return
		}
		w.WriteHeader(d.fetchStatus)
		io.WriteString(w, d.fetchBody)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (d *fakeDashboard) request(path string) *http.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests[path]
}

func (d *fakeDashboard) body(path string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bodies[path]
}

func (d *fakeDashboard) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDashboard) start() Config {
	srv := httptest.NewServer(d)
	d.t.Cleanup(srv.Close)
	return Config{BaseURL: srv.URL, UserAgent: "test-agent"}
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(cfg, zerolog.Nop())
	require.NoError(t, err)
	return s
}
