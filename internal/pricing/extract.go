package pricing

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const contextWindow = 60

// euroPattern matches an amount with a currency marker on either side,
// accepting entity encodings of the euro sign and the Dutch ",-" shorthand.
var euroPattern = regexp.MustCompile(
	`(?i)(?:(?:EUR|€|&euro;|&#8364;|&#x20ac;)\s?\d+[.,]?\d*(?:,-)?|\d+[.,]?\d*(?:,-)?\s?(?:EUR|€|&euro;|&#8364;|&#x20ac;))`,
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// boilerplateTerms flag contexts that are navigation, legal or social
// chrome rather than an offer.
var boilerplateTerms = []string{
	"facebook",
	"instagram",
	"cookie",
	"privacy",
	"terms",
	"newsletter",
}

// ignoreTerms flag prices for things that are not class offers.
var ignoreTerms = []string{
	"towel",
	"mat",
	"merch",
	"shop",
	"gift card",
	"cadeau",
	"water bottle",
	"workshop",
	"retreat",
	"training",
	"event",
	"reserve your spot",
	"ticket",
	"register",
}

// NormalizeText flattens page markup into plain text: tags become spaces,
// entities are decoded and runs of whitespace collapse to single spaces.
func NormalizeText(markup string) string {
	text := tagPattern.ReplaceAllString(markup, " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Extract scans normalized page text for euro-amount mentions and returns
// each with its surrounding context window. Mentions inside template
// leftovers or blocklisted contexts are dropped.
func Extract(text, pageURL string) []PriceMention {
	var mentions []PriceMention
	for _, loc := range euroPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]

		start := loc[0] - contextWindow
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		end := loc[1] + contextWindow
		if end > len(text) {
			end = len(text)
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}

		context := strings.TrimSpace(whitespacePattern.ReplaceAllString(text[start:end], " "))

		// Braces in the window mean unrendered client-side templating.
		if strings.ContainsAny(context, "{}") {
			continue
		}
		lower := strings.ToLower(context)
		if containsAny(lower, boilerplateTerms) || containsAny(lower, ignoreTerms) {
			continue
		}

		mentions = append(mentions, PriceMention{
			RawText: raw,
			Context: context,
			PageURL: pageURL,
		})
	}
	return mentions
}

// ParsePrice normalizes a raw currency match to plain decimal text:
// markers stripped, ",-" dropped, comma-decimal rewritten with a dot and
// dot-thousands removed.
func ParsePrice(raw string) string {
	cleaned := raw
	for _, marker := range []string{"EUR", "eur", "€", "&euro;", "&#8364;", "&#x20ac;"} {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",-", ""))

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	return cleaned
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
