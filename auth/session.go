package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/rs/zerolog"
)

// Config binds every pipeline component to one dashboard origin.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Proxy     string
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Session is an HTTP client bound to a single origin. Cookies set by any
// response are stored in its jar and sent with every later request.
type Session struct {
	origin    *url.URL
	userAgent string
	client    tls_client.HttpClient
	jar       tls_client.CookieJar
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewSession(cfg Config, logger zerolog.Logger) (*Session, error) {
	cfg = cfg.withDefaults()
	origin, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("base url %q is not an absolute origin", cfg.BaseURL)
	}

	jar := tls_client.NewCookieJar()
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutMilliseconds(int(cfg.Timeout.Milliseconds())),
		tls_client.WithClientProfile(clientProfile),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithCookieJar(jar),
	}
	if cfg.Proxy != "" {
		options = append(options, tls_client.WithProxyUrl(cfg.Proxy))
	}
	client, err := tls_client.NewHttpClient(clientLogger{logger}, options...)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &Session{
		origin:    origin,
		userAgent: cfg.UserAgent,
		client:    client,
		jar:       jar,
	}, nil
}

// Cookies returns the cookies the session would attach to a request for path.
func (s *Session) Cookies(path string) []*http.Cookie {
	return s.jar.Cookies(s.resolve(path, nil))
}

func (s *Session) Post(ctx context.Context, path string, query url.Values, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return s.do(ctx, http.MethodPost, s.resolve(path, query), bytes.NewReader(body))
}

func (s *Session) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return s.do(ctx, http.MethodGet, s.resolve(path, query), nil)
}

func (s *Session) resolve(path string, query url.Values) *url.URL {
	ref := &url.URL{Path: path}
	if query != nil {
		ref.RawQuery = query.Encode()
	}
	return s.origin.ResolveReference(ref)
}

func (s *Session) do(ctx context.Context, method string, target *url.URL, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}

	origin := s.origin.Scheme + "://" + s.origin.Host
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// clientLogger routes tls-client diagnostics into zerolog at debug level.
type clientLogger struct {
	log zerolog.Logger
}

func (l clientLogger) Debug(format string, args ...any) { l.log.Debug().Msgf(format, args...) }
func (l clientLogger) Info(format string, args ...any)  { l.log.Debug().Msgf(format, args...) }
func (l clientLogger) Warn(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l clientLogger) Error(format string, args ...any) { l.log.Error().Msgf(format, args...) }
