package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// ErrBrowserUnavailable is returned when the automation engine or the
// browser binary cannot be started.
var ErrBrowserUnavailable = errors.New("browser unavailable")

type Options struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	// ProfileRoot is the parent directory for per-session profile
	// directories. Empty means the system temp directory.
	ProfileRoot string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	}
}

// Session owns one headless browser with a private, uniquely named
// profile directory. The profile is never shared between sessions, so
// concurrent scrapes cannot contend on profile locks. Release must run
// on every exit path; it is idempotent.
type Session struct {
	pw         *playwright.Playwright
	context    playwright.BrowserContext
	page       playwright.Page
	profileDir string
	logger     *slog.Logger
	release    sync.Once
}

// Acquire launches a headless browser over a fresh profile directory.
func Acquire(opts *Options) (*Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultOptions().UserAgent
	}

	profileDir, err := os.MkdirTemp(opts.ProfileRoot, "scraper-profile-"+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: failed to start playwright: %v", ErrBrowserUnavailable, err)
	}

	context, err := pw.Chromium.LaunchPersistentContext(profileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:  playwright.Bool(opts.Headless),
		UserAgent: playwright.String(opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight),
		},
	})
	if err != nil {
		pw.Stop()
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: failed to launch browser: %v", ErrBrowserUnavailable, err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		pw.Stop()
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: failed to open page: %v", ErrBrowserUnavailable, err)
	}
	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return &Session{
		pw:         pw,
		context:    context,
		page:       page,
		profileDir: profileDir,
		logger:     slog.Default().With("component", "browser", "profile", profileDir),
	}, nil
}

// ProfileDir returns the session's private profile directory.
func (s *Session) ProfileDir() string {
	return s.profileDir
}

// Release terminates the browser process and removes the profile
// directory. Safe to call more than once and from a deferred path.
func (s *Session) Release() {
	s.release.Do(func() {
		if s.context != nil {
			if err := s.context.Close(); err != nil {
				s.logger.Error("failed to close browser context", "error", err)
			}
		}
		if s.pw != nil {
			if err := s.pw.Stop(); err != nil {
				s.logger.Error("failed to stop playwright", "error", err)
			}
		}
		if s.profileDir != "" {
			if err := os.RemoveAll(s.profileDir); err != nil {
				s.logger.Error("failed to remove profile directory", "error", err)
			}
		}
	})
}

// Navigate loads url and waits for the DOM to be ready.
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// ScrollToBottom scrolls the viewport by one document height so
// lazy-loaded content below the fold gets rendered.
func (s *Session) ScrollToBottom() error {
	_, err := s.page.Evaluate(`window.scrollBy(0, document.body.scrollHeight)`)
	if err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

// ClickIfVisible clicks the first element matching selector if it is
// present and clickable within timeout. A missing or unclickable
// element reports false without error; that is the caller's normal
// exhaustion signal.
func (s *Session) ClickIfVisible(selector string, timeout time.Duration) (bool, error) {
	locator := s.page.Locator(selector).First()

	count, err := locator.Count()
	if err != nil || count == 0 {
		return false, nil
	}

	if err := locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		s.logger.Debug("element not clickable", "selector", selector, "error", err)
		return false, nil
	}

	return true, nil
}

// WaitVisible waits for the first element matching selector to become
// visible within timeout.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("selector %q did not appear: %w", selector, err)
	}
	return nil
}

// Content returns the current document HTML.
func (s *Session) Content() (string, error) {
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}
