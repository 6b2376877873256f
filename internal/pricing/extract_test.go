package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"€12,50", "12.50"},
		{"€ 12,50", "12.50"},
		{"12,50 €", "12.50"},
		{"EUR 1.200,00", "1200.00"},
		{"€1.200,00", "1200.00"},
		{"€89", "89"},
		{"89,- €", "89"},
		{"€120.00", "120.00"},
		{"&euro;25", "25"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ParsePrice(tc.raw), "raw price %q", tc.raw)
	}
}

func TestNormalizeText(t *testing.T) {
	markup := `<div class="price">Drop-in&nbsp;&euro;18,50</div>
		<p>valid   today</p>`
	text := NormalizeText(markup)
	assert.Equal(t, "Drop-in €18,50 valid today", text)
}

func TestExtract(t *testing.T) {
	text := "Single class €18,50 per visit. Unlimited membership 95 € per month."
	mentions := Extract(text, "https://studio.example/pricing")

	assert.Len(t, mentions, 2)
	assert.Equal(t, "€18,50", mentions[0].RawText)
	assert.Equal(t, "95 €", mentions[1].RawText)
	assert.Equal(t, "https://studio.example/pricing", mentions[0].PageURL)
	assert.Contains(t, mentions[0].Context, "Single class")
}

func TestExtractPrefixAndSuffixMarkers(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{"costs EUR 25 only", "EUR 25"},
		{"costs 25 EUR only", "25 EUR"},
		{"costs €89,- only", "€89,-"},
	}

	for _, tc := range testCases {
		mentions := Extract(tc.text, "")
		if assert.Len(t, mentions, 1, "text %q", tc.text) {
			assert.Equal(t, tc.expected, mentions[0].RawText)
		}
	}
}

func TestExtractFiltersBlockedContexts(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"template braces", "price {{ price }} €25 for members"},
		{"social boilerplate", "follow us on instagram €25 promo"},
		{"cookie notice", "we use cookies, accept for €0 discount"},
		{"merchandise", "yoga towel €25 in our shop"},
		{"workshop", "weekend workshop €80 with guest teacher"},
	}

	for _, tc := range testCases {
		assert.Empty(t, Extract(tc.text, ""), tc.name)
	}
}

func TestExtractContextWindowIsBounded(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "padding "
	}
	text := long + "€45 per month " + long
	mentions := Extract(text, "")

	if assert.Len(t, mentions, 1) {
		// ±60 chars around the match plus the match itself
		assert.LessOrEqual(t, len(mentions[0].Context), 130)
	}
}
