// Package http provides the privileged fetch boundary: it downloads course
// files with the browser's session cookies and returns them in the
// size-limited base64 transport format.
package http

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/coursegrab"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/publicsuffix"
)

// DefaultFetchTimeout bounds a single file download.
const DefaultFetchTimeout = 60 * time.Second

// maxRedirects matches the limit of the default http.Client.
const maxRedirects = 10

// Ensure FileFetcher implements coursegrab.FileFetcher at compile time.
var _ coursegrab.FileFetcher = (*FileFetcher)(nil)

// FileFetcher downloads files over HTTP. Session cookies are copied from a
// CookieSource the first time each host is contacted.
type FileFetcher struct {
	transport http.RoundTripper
	jar       http.CookieJar
	cookies   coursegrab.CookieSource
	limiter   coursegrab.DomainLimiter
	timeout   time.Duration
	maxChars  int

	mu     sync.Mutex
	loaded map[string]bool
}

// Option configures a FileFetcher.
type Option func(*FileFetcher)

// WithTimeout sets the per-file timeout. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *FileFetcher) {
		f.timeout = d
	}
}

// WithCookieSource sets where session cookies come from.
func WithCookieSource(s coursegrab.CookieSource) Option {
	return func(f *FileFetcher) {
		f.cookies = s
	}
}

// WithRateLimiter paces downloads per host.
func WithRateLimiter(l coursegrab.DomainLimiter) Option {
	return func(f *FileFetcher) {
		f.limiter = l
	}
}

// WithMaxTransfer sets the ceiling on the encoded payload, in characters.
// Defaults to coursegrab.MaxTransferChars.
func WithMaxTransfer(chars int) Option {
	return func(f *FileFetcher) {
		f.maxChars = chars
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *FileFetcher) {
		f.transport = rt
	}
}

// NewFileFetcher creates a new FileFetcher.
func NewFileFetcher(opts ...Option) *FileFetcher {
	// cookiejar.New never returns an error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	f := &FileFetcher{
		transport: http.DefaultTransport,
		jar:       jar,
		timeout:   DefaultFetchTimeout,
		maxChars:  coursegrab.MaxTransferChars,
		loaded:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchFile downloads req.URL. Failures are reported in the response,
// never as a Go error.
func (f *FileFetcher) FetchFile(ctx context.Context, req coursegrab.FetchRequest) coursegrab.FetchResponse {
	if req.Action != "" && req.Action != coursegrab.ActionFetchFile {
		return coursegrab.FailedResponse(coursegrab.Errorf(coursegrab.EINVALID, "unsupported action %q", req.Action))
	}

	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return coursegrab.FailedResponse(coursegrab.Errorf(coursegrab.EINVALID, "invalid file URL: %q", req.URL))
	}

	if err := f.loadCookies(ctx, u); err != nil {
		return coursegrab.FailedResponse(err)
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return coursegrab.FailedResponse(err)
		}
	}

	var crossed bool
	client := &http.Client{
		Transport: f.transport,
		Jar:       f.jar,
		Timeout:   f.timeout,
		CheckRedirect: func(next *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if !sameOrigin(next.URL, via[0].URL) {
				crossed = true
			}
			return nil
		},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return coursegrab.FailedResponse(err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return failure(crossed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(crossed, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	maxBytes := f.maxChars / 4 * 3
	if resp.ContentLength > int64(maxBytes) {
		return coursegrab.SkippedResponse()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)+1))
	if err != nil {
		return failure(crossed, fmt.Sprintf("read body: %v", err))
	}
	if len(data) > maxBytes {
		return coursegrab.SkippedResponse()
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	if len(encoded) > f.maxChars {
		return coursegrab.SkippedResponse()
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = mimetype.Detect(data).String()
	}

	out := coursegrab.FetchResponse{
		Success:     true,
		Base64:      encoded,
		ContentType: contentType,
	}
	if name := ParseContentDisposition(resp.Header.Get("Content-Disposition")); name != "" {
		out.FilenameFromHeader = &name
	}
	return out
}

// loadCookies copies session cookies for u's host into the jar once.
func (f *FileFetcher) loadCookies(ctx context.Context, u *url.URL) error {
	if f.cookies == nil {
		return nil
	}

	host := strings.ToLower(u.Host)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded[host] {
		return nil
	}

	origin := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	cookies, err := f.cookies.Cookies(ctx, origin.String())
	if err != nil {
		return fmt.Errorf("load session cookies: %w", err)
	}
	f.jar.SetCookies(origin, cookies)
	f.loaded[host] = true
	return nil
}

// Close releases idle connections.
func (f *FileFetcher) Close() error {
	if t, ok := f.transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

func failure(crossed bool, detail string) coursegrab.FetchResponse {
	msg := detail
	if crossed {
		msg = coursegrab.CrossOriginMessagePrefix + ": " + detail
	}
	return coursegrab.FetchResponse{Success: false, Error: msg}
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}
