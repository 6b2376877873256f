package pricing

import "strings"

// Deduplicator drops offers whose identity key was already emitted within
// the same run. The key deliberately excludes offer name and source URL so
// the same nominal offer repeated across pages collapses to one row.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty run-scoped deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Key computes the composite identity key for a classified mention.
func Key(competitorID string, c Classification, priceEUR string) string {
	return strings.Join([]string{
		competitorID,
		string(c.OfferType),
		c.ClassType,
		c.Heat,
		c.ClassLengthMin,
		c.SessionsIncluded,
		c.DurationDays,
		string(c.PriceUnit),
		priceEUR,
	}, "|")
}

// Seen records the key and reports whether it was already present.
func (d *Deduplicator) Seen(key string) bool {
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}
