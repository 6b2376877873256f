package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxDiscoveredLinks caps the crawl fan-out per competitor
const maxDiscoveredLinks = 6

// pricingKeywords mark a URL as likely to carry pricing content
var pricingKeywords = []string{
	"price",
	"pricing",
	"prijzen",
	"tarief",
	"tarieven",
	"membership",
	"memberships",
	"abonnement",
	"pass",
	"passen",
	"strippenkaart",
	"classes",
	"class",
	"schedule",
	"timetable",
	"rooster",
}

// bookingHints mark known booking or shop platforms that studios
// outsource their pricing pages to
var bookingHints = []string{
	"mindbody",
	"momoyoga",
	"eversports",
	"bsport",
	"bookwhen",
	"shop",
	"store",
}

// DiscoverLinks collects candidate pricing page URLs from a competitor's
// home page. Only links whose URL carries a pricing keyword or a booking
// platform hint are kept, query strings are stripped, duplicates are
// removed preserving first-seen order and the result is capped.
func DiscoverLinks(homeHTML, homeURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homeHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(homeURL)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if len(links) >= maxDiscoveredLinks {
			return
		}
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		lowerURL := strings.ToLower(abs.String())
		hinted := containsAnyOf(lowerURL, pricingKeywords) || containsAnyOf(lowerURL, bookingHints)
		if !hinted {
			return
		}

		abs.RawQuery = ""
		abs.Fragment = ""
		link := abs.String()
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})
	return links
}

func containsAnyOf(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
