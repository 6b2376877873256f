package crawler

import (
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"bverlaan/yogabench/logger"
	"bverlaan/yogabench/services/cache"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.9,nl;q=0.8",
	"nl-NL,nl;q=0.9,en;q=0.8",
}

// StaticFetcher retrieves pages with a plain HTTP GET and browser-like
// headers. Domains that answer with a rate-limit status are blocked in the
// shared cache for blockTime so subsequent pages on the same host fail fast.
type StaticFetcher struct {
	client    *http.Client
	cacheSvc  cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// NewStaticFetcher creates a static HTTP fetcher. cacheSvc may be nil, in
// which case rate-limit blocking is disabled.
func NewStaticFetcher(timeout time.Duration, cacheSvc cache.CacheService, blockTime time.Duration) *StaticFetcher {
	return &StaticFetcher{
		client:    &http.Client{Timeout: timeout},
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
		log:       logger.ForFetcher("static"),
	}
}

// Strategy returns the fetcher's strategy name
func (f *StaticFetcher) Strategy() string { return "static" }

// Close implements Fetcher. The static fetcher holds no resources.
func (f *StaticFetcher) Close() error { return nil }

// Fetch retrieves the page at rawURL and returns its markup decoded to UTF-8
func (f *StaticFetcher) Fetch(rawURL string) (string, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	if f.isBlocked(host) {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("host %s is rate limited", host)}
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	applyBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.block(host)
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("status %d, host %s blocked for %s", resp.StatusCode, host, f.blockTime)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	return body, nil
}

func (f *StaticFetcher) isBlocked(host string) bool {
	if f.cacheSvc == nil {
		return false
	}
	_, err := f.cacheSvc.Get(blockKey(host))
	return err == nil
}

func (f *StaticFetcher) block(host string) {
	if f.cacheSvc == nil {
		return
	}
	if err := f.cacheSvc.Set(blockKey(host), []byte("1"), f.blockTime); err != nil {
		f.log.WithError(err).WithField("host", host).Warn("failed to record rate-limit block")
	}
}

func blockKey(host string) string {
	return "block:" + strings.ReplaceAll(host, ":", "_")
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in url %q", rawURL)
	}
	return strings.ToLower(u.Host), nil
}

func applyBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", acceptLanguages[rand.IntN(len(acceptLanguages))])
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
}

// decodeBody reads the response body and converts it to UTF-8 based on the
// Content-Type header or, failing that, the document's own declaration.
func decodeBody(resp *http.Response) (string, error) {
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset detection failed: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(data), nil
}
