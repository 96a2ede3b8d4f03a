// Package transport issues the raw HTTP calls the protocol client needs.
// Redirects are never followed and no cookie jar is kept: the session
// layer extracts Set-Cookie values and threads them into every call
// explicitly. All traffic for one session must go through one Client so
// the server sees a single client identity throughout.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentTypeBWP is the content type for obfuscated request bodies.
const ContentTypeBWP = "text/bwp;charset=UTF-8"

// Response is the slimmed-down result of one HTTP exchange.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       string
}

// Header returns the first value of the named response header.
func (r *Response) Header(name string) string {
	return r.Headers.Get(name)
}

// SetCookie returns the session cookie from the response, if any.
func (r *Response) SetCookie() string {
	raw := r.Headers.Get("Set-Cookie")
	if raw == "" {
		return ""
	}

	cookie, _, _ := strings.Cut(raw, ";")

	return cookie
}

// Transport is the HTTP surface the session and client layers depend on.
type Transport interface {
	Get(ctx context.Context, url, cookies string) (*Response, error)
	Post(ctx context.Context, url, body string, headers map[string]string, cookies string) (*Response, error)
	// PostRaw sends a byte-exact body. Obfuscated payloads contain
	// high-bit characters that must not pass through string re-encoding.
	PostRaw(ctx context.Context, url string, body []byte, headers map[string]string, cookies string) (*Response, error)
}

// Profile is the client identity presented to the server. The server
// ties the BWP session to it, so it must not change mid-session.
type Profile struct {
	Name           string
	UserAgent      string
	AcceptLanguage string
}

// ChromeProfile imitates a current desktop Chrome.
func ChromeProfile() Profile {
	return Profile{
		Name:           "chrome120",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}

// Client is the default Transport over net/http.
type Client struct {
	httpClient *http.Client
	profile    Profile
	logger     *slog.Logger
}

func NewClient(profile Profile, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		profile: profile,
		logger:  logger,
	}
}

func (c *Client) Get(ctx context.Context, url, cookies string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req, nil, cookies)
}

func (c *Client) Post(
	ctx context.Context,
	url, body string,
	headers map[string]string,
	cookies string,
) (*Response, error) {
	return c.PostRaw(ctx, url, []byte(body), headers, cookies)
}

func (c *Client) PostRaw(
	ctx context.Context,
	url string,
	body []byte,
	headers map[string]string,
	cookies string,
) (*Response, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}

	return c.do(req, headers, cookies)
}

func (c *Client) do(
	req *http.Request,
	headers map[string]string,
	cookies string,
) (*Response, error) {
	req.Header.Set("User-Agent", c.profile.UserAgent)
	req.Header.Set("Accept-Language", c.profile.AcceptLanguage)

	for name, value := range headers {
		req.Header.Set(name, value)
	}

	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	requestID := uuid.NewString()

	c.logger.Debug("http request",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("http request failed",
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)

		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", req.URL, err)
	}

	c.logger.Debug("http response",
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(raw)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(raw),
	}, nil
}
