package crawler

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"bverlaan/yogabench/logger"
)

// ChromeFetcher retrieves pages through a headless browser so that
// script-rendered pricing tables are present in the returned markup.
// One browser process is shared across all fetches of a run.
type ChromeFetcher struct {
	allocCtx      context.Context
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	timeout       time.Duration
	settle        time.Duration
	log           *logger.Logger
}

// NewChromeFetcher launches a headless browser. chromeBin may be empty, in
// which case common install locations are probed. Callers must Close the
// fetcher to shut the browser down.
func NewChromeFetcher(chromeBin string, timeout, settle time.Duration) (*ChromeFetcher, error) {
	log := logger.ForFetcher("chrome")

	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgents[0]),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
		log.WithField("binary", chromeBin).Debug("using browser binary")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser eagerly so a missing binary fails the run up front
	// instead of on the first page.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	return &ChromeFetcher{
		allocCtx:      allocCtx,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		timeout:       timeout,
		settle:        settle,
		log:           log,
	}, nil
}

// Strategy returns the fetcher's strategy name
func (f *ChromeFetcher) Strategy() string { return "chrome" }

// Close shuts the browser process down
func (f *ChromeFetcher) Close() error {
	f.cancelBrowser()
	f.cancelAlloc()
	return nil
}

// Fetch opens the URL in a fresh tab, waits for the page to render and
// returns the resulting markup.
func (f *ChromeFetcher) Fetch(rawURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	if err := f.navigate(tabCtx, rawURL); err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	var html string
	ctx, cancel := context.WithTimeout(tabCtx, f.timeout)
	defer cancel()
	err := chromedp.Run(ctx,
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	return html, nil
}

// navigate loads the URL and waits for the document body. When the full wait
// times out (pages that keep polling never go network idle) it falls back to
// a shorter plain navigation.
func (f *ChromeFetcher) navigate(tabCtx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(tabCtx, f.timeout)
	defer cancel()
	err := chromedp.Run(ctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	f.log.WithField("url", rawURL).Debug("full page wait timed out, retrying with content-loaded wait")
	shortCtx, cancelShort := context.WithTimeout(tabCtx, f.timeout/2)
	defer cancelShort()
	return chromedp.Run(shortCtx, chromedp.Navigate(rawURL))
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
