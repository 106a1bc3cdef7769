// Package rod drives a Chrome browser through the DevTools protocol.
package rod

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/coursegrab"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure types implement interfaces at compile time.
var (
	_ coursegrab.Browser      = (*BrowserManager)(nil)
	_ coursegrab.CookieSource = (*BrowserManager)(nil)
)

// BrowserManager owns the connection to a browser, either one it launched
// or an existing one reached through its DevTools endpoint. Attaching to
// the user's running browser reuses their logged-in session.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	controlURL  string
	userDataDir string
	headless    bool

	browser  *rod.Browser
	launcher *launcher.Launcher
	cancel   context.CancelFunc
	mu       sync.Mutex
	closed   atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithControlURL attaches to a running browser instead of launching one.
// Accepts a websocket URL, an http://host:port address or a bare port.
func WithControlURL(u string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.controlURL = u
	}
}

// WithUserDataDir sets the profile directory of a launched browser, so a
// login survives between runs.
func WithUserDataDir(dir string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.userDataDir = dir
	}
}

// WithHeadless launches the browser without a window. Defaults to false,
// since the user usually has to log in first.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// NewBrowserManager connects to a browser. Close must be called when the
// BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{}
	for _, opt := range opts {
		opt(bm)
	}

	var err error
	if bm.controlURL != "" {
		err = bm.attach()
	} else {
		err = bm.launch()
	}
	if err != nil {
		return nil, err
	}
	return bm, nil
}

func (bm *BrowserManager) attach() error {
	u, err := launcher.ResolveURL(bm.controlURL)
	if err != nil {
		return fmt.Errorf("resolving control URL: %w", err)
	}

	// Canceling the connection context disconnects without closing the
	// user's browser.
	ctx, cancel := context.WithCancel(context.Background())
	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		cancel()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.cancel = cancel
	return nil
}

// launch starts a new browser instance with stability flags.
func (bm *BrowserManager) launch() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(bm.headless)
	if bm.userDataDir != "" {
		lnchr = lnchr.UserDataDir(bm.userDataDir)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// ActiveTab returns the tab the user is looking at: the first page tab
// whose document is visible, else the first page tab.
func (bm *BrowserManager) ActiveTab(ctx context.Context) (coursegrab.Tab, error) {
	if bm.closed.Load() {
		return nil, coursegrab.Errorf(coursegrab.ENOACTIVETAB, "browser closed")
	}

	bm.mu.Lock()
	browser := bm.browser
	bm.mu.Unlock()

	pages, err := browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	if len(pages) == 0 {
		return nil, coursegrab.Errorf(coursegrab.ENOACTIVETAB, "no open tab")
	}

	for _, page := range pages {
		visible, err := isVisible(ctx, page)
		if err == nil && visible {
			return NewTab(browser, page), nil
		}
	}
	return NewTab(browser, pages.First()), nil
}

func isVisible(ctx context.Context, page *rod.Page) (bool, error) {
	res, err := page.Context(ctx).Timeout(2 * time.Second).Eval(`() => document.visibilityState === "visible"`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// OpenTab creates a new tab at url.
func (bm *BrowserManager) OpenTab(ctx context.Context, url string) (coursegrab.Tab, error) {
	bm.mu.Lock()
	browser := bm.browser
	bm.mu.Unlock()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	return NewTab(browser, page), nil
}

// Cookies returns the browser's cookies that would be sent to url.
func (bm *BrowserManager) Cookies(ctx context.Context, url string) ([]*http.Cookie, error) {
	bm.mu.Lock()
	browser := bm.browser
	bm.mu.Unlock()

	cookies, err := browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}
	return toHTTPCookies(cookies, hostOf(url)), nil
}

// Close releases browser resources. A launched browser is shut down; an
// attached one is only disconnected. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.cancel != nil {
		bm.cancel()
		bm.cancel = nil
		bm.browser = nil
		return nil
	}

	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher, or 0 when
// attached to an existing browser.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

func hostOf(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.ToLower(host)
}
