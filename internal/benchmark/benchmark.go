// Package benchmark derives comparable price metrics from classified offers.
// All metrics are per-offer or grouped aggregates; nothing here touches the
// network or the filesystem.
package benchmark

import (
	"sort"
	"strconv"

	"bverlaan/yogabench/internal/crawler"
	"bverlaan/yogabench/internal/pricing"
)

// AssumedMonthlyClasses is the attendance assumed for memberships that do
// not state how many sessions they include.
const AssumedMonthlyClasses = 8

// PricePerClass normalizes an offer to a single-class price. Drop-ins are
// already per class, packs divide by included sessions and memberships fall
// back to an assumed attendance when sessions are unknown. The second return
// is false when no per-class price can be derived.
func PricePerClass(offer pricing.Offer, assumedClasses float64) (float64, bool) {
	price, err := strconv.ParseFloat(offer.PriceEUR, 64)
	if err != nil {
		return 0, false
	}
	sessions, sessionsErr := strconv.ParseFloat(offer.SessionsIncluded, 64)

	switch offer.OfferType {
	case pricing.OfferDropIn:
		return price, true
	case pricing.OfferPack:
		if sessionsErr == nil && sessions > 0 {
			return price / sessions, true
		}
		return 0, false
	case pricing.OfferMembership:
		if sessionsErr == nil && sessions > 0 {
			return price / sessions, true
		}
		if assumedClasses > 0 {
			return price / assumedClasses, true
		}
		return 0, false
	}
	return 0, false
}

// MonthlyEquivalent scales an offer's price to a 30-day month based on its
// validity window. The second return is false when price or duration is
// missing.
func MonthlyEquivalent(offer pricing.Offer) (float64, bool) {
	price, err := strconv.ParseFloat(offer.PriceEUR, 64)
	if err != nil {
		return 0, false
	}
	duration, err := strconv.ParseFloat(offer.DurationDays, 64)
	if err != nil || duration <= 0 {
		return 0, false
	}
	return price / duration * 30.0, true
}

// SummaryRow is one tier and offer-type group with per-class price spread.
type SummaryRow struct {
	Tier      string            `json:"tier"`
	OfferType pricing.OfferType `json:"offer_type"`
	Count     int               `json:"count"`
	Min       float64           `json:"min"`
	Median    float64           `json:"median"`
	Max       float64           `json:"max"`
}

// Summarize groups offers by competitor tier and offer type and aggregates
// their per-class prices. Offers without a derivable per-class price are
// left out. Rows come back sorted by tier, then offer type.
func Summarize(offers []pricing.Offer, competitors []crawler.Competitor) []SummaryRow {
	tiers := make(map[string]string, len(competitors))
	for _, c := range competitors {
		tiers[c.CompetitorID] = c.Tier
	}

	groups := make(map[[2]string][]float64)
	for _, offer := range offers {
		perClass, ok := PricePerClass(offer, AssumedMonthlyClasses)
		if !ok {
			continue
		}
		tier := tiers[offer.CompetitorID]
		if tier == "" {
			tier = "Unassigned"
		}
		key := [2]string{tier, string(offer.OfferType)}
		groups[key] = append(groups[key], perClass)
	}

	rows := make([]SummaryRow, 0, len(groups))
	for key, prices := range groups {
		sort.Float64s(prices)
		rows = append(rows, SummaryRow{
			Tier:      key[0],
			OfferType: pricing.OfferType(key[1]),
			Count:     len(prices),
			Min:       prices[0],
			Median:    median(prices),
			Max:       prices[len(prices)-1],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Tier != rows[j].Tier {
			return rows[i].Tier < rows[j].Tier
		}
		return rows[i].OfferType < rows[j].OfferType
	})
	return rows
}

// median expects a sorted, non-empty slice
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
