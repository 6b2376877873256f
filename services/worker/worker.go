package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bverlaan/yogabench/config"
	"bverlaan/yogabench/internal/crawler"
	"bverlaan/yogabench/internal/places"
	"bverlaan/yogabench/internal/pricing"
	"bverlaan/yogabench/logger"
	"bverlaan/yogabench/services/cache"
	"bverlaan/yogabench/services/publisher"
	"bverlaan/yogabench/services/status"
	"bverlaan/yogabench/storage"
)

// FetcherFactory builds a fresh fetcher for one crawl pass. The runner closes
// the fetcher when the pass ends, so browser-backed fetchers do not outlive
// their run.
type FetcherFactory func() (crawler.Fetcher, error)

// DefaultFetcherFactory selects the fetcher from the configured strategy.
func DefaultFetcherFactory(cfg config.Config, cacheSvc cache.CacheService) FetcherFactory {
	return func() (crawler.Fetcher, error) {
		if cfg.FetchStrategy == config.FetchChrome {
			return crawler.NewChromeFetcher(cfg.ChromeBin, cfg.FetchTimeout, cfg.ChromeSettle)
		}
		return crawler.NewStaticFetcher(cfg.FetchTimeout, cacheSvc, cfg.BlockTime), nil
	}
}

// Deps bundles the collaborators a Runner needs. Publisher, Resolver and
// PlacesCache are optional.
type Deps struct {
	Tracker     *status.Tracker
	Publisher   publisher.Publisher
	Resolver    places.WebsiteResolver
	PlacesCache *places.Cache
	Fetchers    FetcherFactory
}

// Runner drives one refresh pass end to end: select competitors, crawl,
// persist artifacts, publish offers. At most one pass runs at a time.
type Runner struct {
	cfg  config.Config
	deps Deps
	log  *logger.Logger
}

// NewRunner creates a refresh runner
func NewRunner(cfg config.Config, deps Deps) *Runner {
	return &Runner{
		cfg:  cfg,
		deps: deps,
		log:  logger.ForWorker(),
	}
}

// Refresh runs one crawl pass synchronously. It returns
// status.ErrAlreadyRunning when a pass is already in progress. Any other
// error has also been recorded on the status tracker.
func (r *Runner) Refresh(limit int) error {
	if err := r.deps.Tracker.Begin("refresh in progress"); err != nil {
		return err
	}

	if err := r.run(limit); err != nil {
		r.deps.Tracker.Fail(err.Error())
		return err
	}
	return nil
}

func (r *Runner) run(limit int) error {
	start := time.Now()

	competitors, err := storage.LoadCompetitors(r.cfg.CompetitorsPath)
	if err != nil {
		return err
	}
	if len(competitors) == 0 {
		return errors.New("no competitors to crawl, populate the competitor table first")
	}

	if limit <= 0 {
		limit = r.cfg.CrawlLimit
	}
	pins := storage.LoadPins(r.cfg.PinsPath)
	selected := crawler.SelectCompetitors(competitors, pins, limit)

	fetcher, err := r.deps.Fetchers()
	if err != nil {
		return fmt.Errorf("fetcher init: %w", err)
	}
	defer fetcher.Close()

	r.log.WithField("competitors", len(selected)).
		WithField("strategy", fetcher.Strategy()).
		Info("refresh pass starting")

	result := crawler.New(fetcher, r.deps.Resolver, r.cfg.CompetitorDelay).Run(selected)

	if r.deps.PlacesCache != nil {
		if err := r.deps.PlacesCache.Save(); err != nil {
			r.log.WithError(err).Warn("failed to persist places cache")
		}
	}

	if err := storage.WriteMentions(r.cfg.MentionsPath, result.Mentions); err != nil {
		return err
	}
	if err := storage.WriteOffers(r.cfg.OffersPath, result.Offers); err != nil {
		return err
	}
	snapshotDate := time.Now().UTC().Format("2006-01-02")
	if err := storage.AppendOffersHistory(r.cfg.OffersHistory, result.Offers, snapshotDate); err != nil {
		return err
	}

	r.publishOffers(result.Offers)

	r.deps.Tracker.Succeed(fmt.Sprintf(
		"crawled %d competitors, found %d offers in %s",
		len(selected), len(result.Offers), time.Since(start).Round(time.Second),
	))
	return nil
}

// publishOffers forwards offers to the stream publisher. Publishing is best
// effort: a broken stream must not fail an otherwise successful crawl.
func (r *Runner) publishOffers(offers []pricing.Offer) {
	if r.deps.Publisher == nil || len(offers) == 0 {
		return
	}

	published := 0
	for _, offer := range offers {
		data, err := json.Marshal(offer)
		if err != nil {
			r.log.WithError(err).WithField("offer_id", offer.OfferID).Error("failed to marshal offer")
			continue
		}
		if err := r.deps.Publisher.Publish("offer", data); err != nil {
			r.log.WithError(err).WithField("offer_id", offer.OfferID).Error("failed to publish offer")
			continue
		}
		published++
	}

	if err := r.deps.Publisher.TrimStreams(); err != nil {
		r.log.WithError(err).Error("failed to trim offer streams")
	}
	r.log.WithField("published", published).Debug("offers published")
}
