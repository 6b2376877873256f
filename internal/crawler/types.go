package crawler

import "fmt"

// Competitor is one row of the externally maintained competitor table,
// consumed read-only. Website may be empty until resolved.
type Competitor struct {
	CompetitorID    string `json:"competitor_id"`
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	Website         string `json:"website"`
	Address         string `json:"address"`
	City            string `json:"city"`
	DistanceBikeMin string `json:"distance_bike_min"`
	Tier            string `json:"tier"`
}

// Fetcher is the uniform page retrieval contract. Implementations differ in
// strategy (plain HTTP vs a rendered browser session) but not in shape.
type Fetcher interface {
	// Fetch retrieves the page markup for a URL as a UTF-8 string
	Fetch(url string) (string, error)

	// Close releases any resources held by the fetcher
	Close() error

	// Strategy returns the fetcher's strategy name for logging
	Strategy() string
}

// FetchError wraps a failed page retrieval. Page fetch failures are
// per-resource: the caller logs and skips, never aborts the run.
type FetchError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}
