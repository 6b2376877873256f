package crawler

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"bverlaan/yogabench/internal/places"
	"bverlaan/yogabench/internal/pricing"
	"bverlaan/yogabench/logger"
)

// Mention is one audit row: a raw price occurrence with its context and the
// page it was found on.
type Mention struct {
	CompetitorID    string `json:"competitor_id"`
	CompetitorName  string `json:"competitor_name"`
	PageURL         string `json:"page_url"`
	PriceRaw        string `json:"price_raw"`
	PriceEUR        string `json:"price_eur"`
	Context         string `json:"context"`
	LastCheckedDate string `json:"last_checked_date"`
}

// Result holds everything a crawl pass produced.
type Result struct {
	Mentions []Mention
	Offers   []pricing.Offer
}

// Crawler walks competitor sites page by page, extracting and classifying
// price mentions. Crawling is sequential by design: the point is a polite
// low-volume pass over a few dozen small business sites, not throughput.
type Crawler struct {
	fetcher         Fetcher
	resolver        places.WebsiteResolver
	competitorDelay time.Duration
	now             func() time.Time
	log             *logger.Logger
}

// New creates a Crawler using the given fetch strategy and website resolver.
func New(fetcher Fetcher, resolver places.WebsiteResolver, competitorDelay time.Duration) *Crawler {
	return &Crawler{
		fetcher:         fetcher,
		resolver:        resolver,
		competitorDelay: competitorDelay,
		now:             time.Now,
		log:             logger.ForCrawl(),
	}
}

// SelectCompetitors orders pinned competitors first, the rest by ascending
// bike distance, and truncates to limit. Rows with a missing or malformed
// distance sort last.
func SelectCompetitors(rows []Competitor, pins []string, limit int) []Competitor {
	pinned := make(map[string]bool, len(pins))
	for _, id := range pins {
		pinned[id] = true
	}

	var first, rest []Competitor
	for _, row := range rows {
		if pinned[row.CompetitorID] {
			first = append(first, row)
		} else {
			rest = append(rest, row)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return distanceOf(rest[i]) < distanceOf(rest[j])
	})

	selected := append(first, rest...)
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func distanceOf(c Competitor) int {
	d, err := strconv.Atoi(c.DistanceBikeMin)
	if err != nil {
		return 9999
	}
	return d
}

// Run crawls the given competitors in order. Failures are contained at the
// smallest possible scope: a page that cannot be fetched skips that page, a
// competitor whose home page fails skips that competitor. Offers are
// deduplicated across the whole run.
func (c *Crawler) Run(competitors []Competitor) *Result {
	result := &Result{}
	dedup := pricing.NewDeduplicator()

	for i, competitor := range competitors {
		c.crawlCompetitor(competitor, result, dedup)
		if c.competitorDelay > 0 && i < len(competitors)-1 {
			time.Sleep(c.competitorDelay)
		}
	}

	c.log.WithField("competitors", len(competitors)).
		WithField("mentions", len(result.Mentions)).
		WithField("offers", len(result.Offers)).
		Info("crawl pass finished")
	return result
}

func (c *Crawler) crawlCompetitor(competitor Competitor, result *Result, dedup *pricing.Deduplicator) {
	log := c.log.WithField("competitor_id", competitor.CompetitorID)

	website := competitor.Website
	if website == "" && c.resolver != nil {
		resolved, err := c.resolver.Website(competitor.Name, competitor.Address, competitor.City)
		if err != nil {
			log.WithError(err).Warn("website lookup failed")
			return
		}
		website = resolved
	}
	if website == "" {
		log.Debug("no website, skipping")
		return
	}

	homeHTML, err := c.fetcher.Fetch(website)
	if err != nil {
		log.WithError(err).Warn("home page fetch failed")
		return
	}

	c.harvestPage(competitor, website, homeHTML, result, dedup)
	for _, pageURL := range DiscoverLinks(homeHTML, website) {
		pageHTML, err := c.fetcher.Fetch(pageURL)
		if err != nil {
			log.WithError(err).WithField("url", pageURL).Warn("page fetch failed, skipping")
			continue
		}
		c.harvestPage(competitor, pageURL, pageHTML, result, dedup)
	}
}

// harvestPage extracts price mentions from one page's markup and folds the
// classified offers into the result.
func (c *Crawler) harvestPage(competitor Competitor, pageURL, pageHTML string, result *Result, dedup *pricing.Deduplicator) {
	date := c.now().UTC().Format("2006-01-02")
	text := pricing.NormalizeText(pageHTML)

	for _, mention := range pricing.Extract(text, pageURL) {
		price := pricing.ParsePrice(mention.RawText)
		result.Mentions = append(result.Mentions, Mention{
			CompetitorID:    competitor.CompetitorID,
			CompetitorName:  competitor.Name,
			PageURL:         pageURL,
			PriceRaw:        mention.RawText,
			PriceEUR:        price,
			Context:         mention.Context,
			LastCheckedDate: date,
		})

		classified := pricing.Classify(mention.Context, mention.RawText)
		if dedup.Seen(pricing.Key(competitor.CompetitorID, classified, price)) {
			continue
		}

		result.Offers = append(result.Offers, pricing.Offer{
			OfferID:                fmt.Sprintf("auto-%04d", len(result.Offers)+1),
			CompetitorID:           competitor.CompetitorID,
			OfferType:              classified.OfferType,
			OfferName:              classified.OfferName,
			ClassType:              classified.ClassType,
			Heat:                   classified.Heat,
			ClassLengthMin:         classified.ClassLengthMin,
			SessionsIncluded:       classified.SessionsIncluded,
			DurationDays:           classified.DurationDays,
			PriceEUR:               price,
			PriceUnit:              classified.PriceUnit,
			UsageLimitType:         classified.UsageLimitType,
			UsageLimitValue:        classified.UsageLimitValue,
			UsageLimitPeriod:       classified.UsageLimitPeriod,
			ContractType:           classified.ContractType,
			ContractMonths:         classified.ContractMonths,
			CancellationNoticeDays: classified.CancellationNoticeDays,
			ClassStyle:             classified.ClassStyle,
			IntensityLevel:         classified.IntensityLevel,
			SourceURL:              pageURL,
			LastCheckedDate:        date,
		})
	}
}
