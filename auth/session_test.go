package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_InvalidBaseURL(t *testing.T) {
	_, err := NewSession(Config{BaseURL: "dashboard.local"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSession_Headers(t *testing.T) {
	d := newFakeDashboard(t)
	cfg := d.start()
	s := newTestSession(t, cfg)

	_, err := s.Post(context.Background(), loginEmailPath, batchQuery(), encodeBatch(withInput(map[string]string{"email": "x"})))
	require.NoError(t, err)

	req := d.request(loginEmailPath)
	require.NotNil(t, req)
	assert.Equal(t, "test-agent", req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, cfg.BaseURL, req.Header.Get("Origin"))
}

func TestSession_PersistsCookies(t *testing.T) {
	d := newFakeDashboard(t)
	s := newTestSession(t, d.start())
	ctx := context.Background()

	require.NoError(t, NewOtpVerifier(s).Verify(ctx, Challenge{MethodID: "m1"}, "123456"))

	cookies := s.Cookies(protectedDataPath)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)

	raw, err := NewDataFetcher(s).Fetch(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, fetchBody, string(raw))

	req := d.request(protectedDataPath)
	require.NotNil(t, req)
	c, err := req.Cookie("session")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", c.Value)
}

func TestDataFetcher_Query(t *testing.T) {
	d := newFakeDashboard(t)
	s := newTestSession(t, d.start())
	ctx := context.Background()
	require.NoError(t, NewOtpVerifier(s).Verify(ctx, Challenge{MethodID: "m1"}, "123456"))

	_, err := NewDataFetcher(s).Fetch(ctx)
	require.NoError(t, err)

	q := d.request(protectedDataPath).URL.Query()
	assert.Equal(t, "1", q.Get("batch"))
	assert.JSONEq(t,
		`{"0":{"json":null,"meta":{"values":["undefined"]}},"1":{"json":null,"meta":{"values":["undefined"]}}}`,
		q.Get("input"))
}

func TestDataFetcher_Unauthenticated(t *testing.T) {
	d := newFakeDashboard(t)
	s := newTestSession(t, d.start())

	_, err := NewDataFetcher(s).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrProtectedFetchFailed)
	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
}

func TestDataFetcher_Canceled(t *testing.T) {
	d := newFakeDashboard(t)
	s := newTestSession(t, d.start())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDataFetcher(s).Fetch(ctx)
	assert.ErrorIs(t, err, ErrProtectedFetchFailed)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, d.seen())
}

func TestSession_Timeout(t *testing.T) {
	for name, timeout := range map[string]time.Duration{
		"sub-second": 300 * time.Millisecond,
		"one second": time.Second,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(timeout + 2*time.Second):
				}
			}))
			t.Cleanup(srv.Close)
			s := newTestSession(t, Config{BaseURL: srv.URL, Timeout: timeout})

			start := time.Now()
			_, err := NewOtpRequester(s).Request(context.Background(), "ops@example.com")
			elapsed := time.Since(start)

			assert.ErrorIs(t, err, ErrOtpRequestFailed)
			assert.ErrorIs(t, err, ErrTransport)
			assert.Less(t, elapsed, timeout+time.Second)
		})
	}
}
