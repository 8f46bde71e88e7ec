package scraper

import (
	"io"
	"log/slog"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSession is an in-memory ListingSession for driving the lister
// without a real browser.
type fakeSession struct {
	html        string
	navigateErr error
	waitErr     error
	contentErr  error

	// clicksLeft is how many times the load-more control still reports
	// as clickable.
	clicksLeft int

	navigated     []string
	scrolls       int
	clickAttempts int
	clicks        int
	released      bool
}

func (f *fakeSession) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeSession) ScrollToBottom() error {
	f.scrolls++
	return nil
}

func (f *fakeSession) ClickIfVisible(string, time.Duration) (bool, error) {
	f.clickAttempts++
	if f.clicksLeft > 0 {
		f.clicksLeft--
		f.clicks++
		return true, nil
	}
	return false, nil
}

func (f *fakeSession) WaitVisible(string, time.Duration) error {
	return f.waitErr
}

func (f *fakeSession) Content() (string, error) {
	if f.contentErr != nil {
		return "", f.contentErr
	}
	return f.html, nil
}

func (f *fakeSession) Release() {
	f.released = true
}
