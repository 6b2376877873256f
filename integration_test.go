package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bverlaan/yogabench/config"
	"bverlaan/yogabench/server"
	"bverlaan/yogabench/services/status"
	"bverlaan/yogabench/services/worker"
	"bverlaan/yogabench/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A minimal studio site: a home page linking to a pricing page that carries
// a drop-in price and a class pack.
const homeHTML = `
<!DOCTYPE html>
<html>
<head><title>Test Studio</title></head>
<body>
    <nav>
        <a href="/about">About us</a>
        <a href="/prijzen">Prijzen</a>
    </nav>
</body>
</html>
`

const pricingHTML = `
<!DOCTYPE html>
<html>
<head><title>Prijzen</title></head>
<body>
    <div class="price-card">Drop-in class €17,50</div>
    <p>Come practice with us whenever it suits you, our teachers welcome
    every level and the studio is a short walk from the station.</p>
    <div class="price-card">10-class pack, valid 90 days €120</div>
</body>
</html>
`

// TestEndToEndRefresh drives a full pass: crawl a fake studio site, persist
// the artifacts and read them back through the HTTP API.
func TestEndToEndRefresh(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, homeHTML)
		case "/prijzen":
			fmt.Fprint(w, pricingHTML)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer site.Close()

	dataDir := t.TempDir()
	cfg := config.Config{
		DataDir:         dataDir,
		WebDir:          t.TempDir(),
		CompetitorsPath: filepath.Join(dataDir, "competitors.csv"),
		PinsPath:        filepath.Join(dataDir, "pinned_competitors.json"),
		MentionsPath:    filepath.Join(dataDir, "pricing_pages.csv"),
		OffersPath:      filepath.Join(dataDir, "offers.csv"),
		OffersHistory:   filepath.Join(dataDir, "offers_history.csv"),
		StatusPath:      filepath.Join(dataDir, "refresh_status.json"),
		OwnStudioPath:   filepath.Join(dataDir, "own_studio.json"),
		FetchStrategy:   config.FetchStatic,
		FetchTimeout:    5 * time.Second,
		CrawlLimit:      40,
	}

	competitorsCSV := "competitor_id,name,brand,website,address,city,distance_bike_min,tier\n" +
		fmt.Sprintf("c1,Test Studio,,%s,Somestraat 1,Amsterdam,5,direct\n", site.URL)
	require.NoError(t, os.WriteFile(cfg.CompetitorsPath, []byte(competitorsCSV), 0644))

	tracker := status.NewTracker(cfg.StatusPath)
	runner := worker.NewRunner(cfg, worker.Deps{
		Tracker:  tracker,
		Fetchers: worker.DefaultFetcherFactory(cfg, nil),
	})

	require.NoError(t, runner.Refresh(0))
	assert.Equal(t, status.StateSuccess, tracker.Snapshot().Status)

	// crawl artifacts landed on disk
	for _, path := range []string{cfg.MentionsPath, cfg.OffersPath, cfg.OffersHistory} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	// and are served by the API, joined with the competitor table
	srv := server.New(cfg, runner, tracker)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/offers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []server.OfferRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.NotEmpty(t, rows)

	byType := make(map[string]server.OfferRow)
	for _, row := range rows {
		assert.Equal(t, "Test Studio", row.Studio)
		assert.Equal(t, "direct", row.Tier)
		byType[row.OfferType] = row
	}

	dropIn, ok := byType["drop_in"]
	require.True(t, ok, "expected a drop-in offer")
	assert.Equal(t, "17.50", dropIn.PriceEUR)
	assert.Equal(t, "17.50", dropIn.PricePerClass)

	pack, ok := byType["pack"]
	require.True(t, ok, "expected a pack offer")
	assert.Equal(t, "120", pack.PriceEUR)
	assert.Equal(t, "10", pack.SessionsIncluded)
	assert.Equal(t, "90", pack.DurationDays)
	assert.Equal(t, "12.00", pack.PricePerClass)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/refresh/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var record status.Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&record))
	assert.Equal(t, status.StateSuccess, record.Status)
	assert.False(t, record.InProgress)
}

// TestEndToEndSelectsByDistance verifies that the crawl honors the limit and
// crawls nearer competitors first.
func TestEndToEndSelectsByDistance(t *testing.T) {
	var crawled []string
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		crawled = append(crawled, r.Host)
		fmt.Fprint(w, "<html><body>Drop-in €15</body></html>")
	}))
	defer site.Close()

	far := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("far competitor should not be crawled")
	}))
	defer far.Close()

	dataDir := t.TempDir()
	cfg := config.Config{
		DataDir:         dataDir,
		CompetitorsPath: filepath.Join(dataDir, "competitors.csv"),
		PinsPath:        filepath.Join(dataDir, "pinned_competitors.json"),
		MentionsPath:    filepath.Join(dataDir, "pricing_pages.csv"),
		OffersPath:      filepath.Join(dataDir, "offers.csv"),
		OffersHistory:   filepath.Join(dataDir, "offers_history.csv"),
		StatusPath:      filepath.Join(dataDir, "refresh_status.json"),
		FetchStrategy:   config.FetchStatic,
		FetchTimeout:    5 * time.Second,
		CrawlLimit:      40,
	}

	competitorsCSV := "competitor_id,name,brand,website,address,city,distance_bike_min,tier\n" +
		fmt.Sprintf("c1,Far Studio,,%s,Verweg 1,Amsterdam,25,adjacent\n", far.URL) +
		fmt.Sprintf("c2,Near Studio,,%s,Dichtbij 1,Amsterdam,3,direct\n", site.URL)
	require.NoError(t, os.WriteFile(cfg.CompetitorsPath, []byte(competitorsCSV), 0644))

	tracker := status.NewTracker(cfg.StatusPath)
	runner := worker.NewRunner(cfg, worker.Deps{
		Tracker:  tracker,
		Fetchers: worker.DefaultFetcherFactory(cfg, nil),
	})

	require.NoError(t, runner.Refresh(1))

	assert.NotEmpty(t, crawled)

	offers, err := storage.LoadOffers(cfg.OffersPath)
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	for _, offer := range offers {
		assert.Equal(t, "c2", offer.CompetitorID)
	}
}
