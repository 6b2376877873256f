package pricing

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClassifyClassPack(t *testing.T) {
	c := Classify("10-class pack, valid 90 days", "€120")

	assert.Equal(t, OfferPack, c.OfferType)
	assert.Equal(t, "10", c.SessionsIncluded)
	assert.Equal(t, "90", c.DurationDays)
	assert.Equal(t, "10-class pack (90d valid)", c.OfferName)
}

func TestClassifyMembership(t *testing.T) {
	c := Classify("Unlimited monthly membership, cancel anytime", "€89")

	assert.Equal(t, OfferMembership, c.OfferType)
	assert.Equal(t, LimitUnlimited, c.UsageLimitType)
	assert.Equal(t, ContractMonthToMonth, c.ContractType)
	assert.Equal(t, "30", c.CancellationNoticeDays)
	assert.Equal(t, UnitMonth, c.PriceUnit)
	assert.Equal(t, "30", c.DurationDays)
	assert.Equal(t, "Unlimited membership (monthly)", c.OfferName)
}

func TestClassifyIsPure(t *testing.T) {
	context := "5 classes strippenkaart €60, 75 minutes hot yoga"
	first := Classify(context, "€60")
	second := Classify(context, "€60")
	assert.Equal(t, first, second)
}

func TestInferOfferType(t *testing.T) {
	testCases := []struct {
		context  string
		expected OfferType
	}{
		{"10 rittenkaart voor yoga", OfferPack},
		{"monthly membership", OfferMembership},
		{"drop-in class", OfferDropIn},
		{"intro week for new students", OfferIntro},
		{"our studio opened in 2019", OfferUnknown},
		// pack language outranks membership language
		{"monthly class pack", OfferPack},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, inferOfferType(tc.context), "context %q", tc.context)
	}
}

func TestInferClassType(t *testing.T) {
	testCases := []struct {
		context      string
		expectedType string
		expectedHeat string
	}{
		{"Hot yoga drop-in", "hot_yoga", "hot"},
		{"hot pilates intro", "hot_pilates", "hot"},
		{"vinyasa yoga class", "vinyasa", ""},
		{"mat pilates", "pilates", ""},
		{"barre burn", "barre", ""},
		{"regular yoga", "yoga", ""},
		{"bootcamp", "", ""},
	}

	for _, tc := range testCases {
		classType, heat := inferClassType(tc.context)
		assert.Equal(t, tc.expectedType, classType, "context %q", tc.context)
		assert.Equal(t, tc.expectedHeat, heat, "context %q", tc.context)
	}
}

func TestInferSessions(t *testing.T) {
	testCases := []struct {
		context  string
		expected string
	}{
		{"10 classes valid 3 months", "10"},
		{"10-class pack", "10"},
		{"5x pass", "5"},
		{"20 credits", "20"},
		{"10 ritten", "10"},
		{"unlimited membership", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, inferSessions(tc.context), "context %q", tc.context)
	}
}

func TestInferPriceUnit(t *testing.T) {
	testCases := []struct {
		context  string
		raw      string
		expected PriceUnit
	}{
		{"€95 per month unlimited", "€95", UnitMonth},
		{"€30 per week", "€30", UnitWeek},
		{"€500 per year", "€500", UnitYear},
		// the bare "week" wording wins over the 4-weeks phrasing
		{"€89 per 4 weeks", "€89", UnitWeek},
		{"€450 for 6 months", "€450", UnitSixMonths},
		{"€18 per class", "€18", UnitClass},
		{"€120 pack", "€120", UnitNone},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, inferPriceUnit(tc.context, tc.raw), "context %q", tc.context)
	}
}

func TestInferPriceUnitUsesAnchoredWindow(t *testing.T) {
	// the weekly wording sits more than 40 chars from the price, so the
	// anchored window must not see it
	context := "weekly schedule online, find all details about our timetable here €120 10-class card"
	assert.Equal(t, UnitNone, inferPriceUnit(context, "€120"))
}

func TestInferDurationDays(t *testing.T) {
	testCases := []struct {
		context  string
		unit     PriceUnit
		expected string
	}{
		{"valid 28 days", UnitNone, "28"},
		{"valid 90 days", UnitNone, "90"},
		{"valid 1 month", UnitNone, "30"},
		{"valid for 3 months", UnitNone, "90"},
		{"valid 6 maanden", UnitNone, "180"},
		{"valid 1 year", UnitNone, "365"},
		{"valid 8 weeks", UnitNone, "56"},
		{"no validity mentioned", UnitMonth, "30"},
		{"no validity mentioned", UnitYear, "365"},
		{"no validity mentioned", UnitNone, ""},
		// notice wording is a contract term, not a validity window
		{"no commitment, 14 days notice", UnitMonth, "30"},
		{"opzegbaar met 30 dagen opzegtermijn", UnitNone, ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, inferDurationDays(tc.context, tc.unit), "context %q unit %q", tc.context, tc.unit)
	}
}

func TestInferClassLength(t *testing.T) {
	assert.Equal(t, "75", inferClassLength("75 minutes hot yoga"))
	assert.Equal(t, "60", inferClassLength("60 min vinyasa"))
	assert.Equal(t, "", inferClassLength("a long class"))
}

func TestInferUsageLimits(t *testing.T) {
	testCases := []struct {
		context        string
		expectedType   UsageLimitType
		expectedValue  string
		expectedPeriod string
	}{
		{"unlimited classes", LimitUnlimited, "", ""},
		{"onbeperkt sporten", LimitUnlimited, "", ""},
		{"2x per week", LimitClassesPerWeek, "2", "week"},
		{"4 classes per month", LimitClassesPerMonth, "4", "month"},
		{"membership with great perks", LimitUnlimited, "", ""},
		{"a 10-class card", LimitNone, "", ""},
	}

	for _, tc := range testCases {
		limitType, value, period := inferUsageLimits(tc.context)
		assert.Equal(t, tc.expectedType, limitType, "context %q", tc.context)
		assert.Equal(t, tc.expectedValue, value, "context %q", tc.context)
		assert.Equal(t, tc.expectedPeriod, period, "context %q", tc.context)
	}
}

func TestInferContractTerms(t *testing.T) {
	testCases := []struct {
		context        string
		expectedType   ContractType
		expectedMonths string
		expectedNotice string
	}{
		{"cancel anytime", ContractMonthToMonth, "1", "30"},
		{"no commitment, 14 days notice", ContractMonthToMonth, "1", "14"},
		{"12-month contract", ContractAnnual, "12", "0"},
		{"6 month commitment", ContractSemiAnnual, "6", "0"},
		{"3 maanden binding quarterly", ContractQuarterly, "3", "0"},
		{"intro offer for new students", ContractIntro, "0", "0"},
		{"membership", ContractMonthToMonth, "1", "30"},
		{"single class", ContractNone, "", ""},
	}

	for _, tc := range testCases {
		contractType, months, notice := inferContractTerms(tc.context)
		assert.Equal(t, tc.expectedType, contractType, "context %q", tc.context)
		assert.Equal(t, tc.expectedMonths, months, "context %q", tc.context)
		assert.Equal(t, tc.expectedNotice, notice, "context %q", tc.context)
	}
}

func TestInferClassStyle(t *testing.T) {
	testCases := []struct {
		classType         string
		context           string
		expectedStyle     string
		expectedIntensity IntensityLevel
	}{
		{"yoga", "power vinyasa flow", "power_yoga", IntensityHigh},
		{"yoga", "vinyasa flow", "vinyasa_flow", IntensityModerate},
		{"yoga", "power class", "power_yoga", IntensityHigh},
		{"hot_yoga", "gentle slow practice", "yin_restorative", IntensityLow},
		{"hot_yoga", "bikram 26 postures", "bikram_26_2", IntensityHigh},
		{"yoga", "ashtanga led", "ashtanga", IntensityModerate},
		{"yoga", "hatha evening", "hatha", IntensityModerate},
		{"pilates", "reformer studio", "reformer_pilates", IntensityModerate},
		{"pilates", "group class", "mat_pilates", IntensityModerate},
		{"barre", "barre burn", "", IntensityNone},
	}

	for _, tc := range testCases {
		style, intensity := inferClassStyle(tc.classType, tc.context)
		assert.Equal(t, tc.expectedStyle, style, "context %q", tc.context)
		assert.Equal(t, tc.expectedIntensity, intensity, "context %q", tc.context)
	}
}

func TestOfferNameFallback(t *testing.T) {
	c := Classify("Something for €25 here. Unrelated sentence", "€25")
	assert.Equal(t, OfferUnknown, c.OfferType)
	assert.Equal(t, "Something for EUR 25 here", c.OfferName)
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	s := strings.Repeat("a", 99) + "é5"

	cut := truncate(s, 100)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, 100, utf8.RuneCountInString(cut))
	assert.True(t, strings.HasSuffix(cut, "é"))

	assert.Equal(t, "abc", truncate("abc", 100))
}

func TestOfferNameFallbackTruncatesAccentedText(t *testing.T) {
	context := "Privéles op maat voor €95 inclusief begeleiding en advies, " +
		strings.Repeat("héél ", 20) + "uitgebreid"
	c := Classify(context, "€95")

	assert.True(t, utf8.ValidString(c.OfferName))
	assert.LessOrEqual(t, utf8.RuneCountInString(c.OfferName), 100)
}

func TestDeduplicator(t *testing.T) {
	dedup := NewDeduplicator()

	first := Classify("10-class pack, valid 90 days", "€120")
	second := Classify("10-class pack, valid 90 days", "€120")

	assert.False(t, dedup.Seen(Key("c-001", first, "120")))
	assert.True(t, dedup.Seen(Key("c-001", second, "120")))

	// same offer for a different competitor is a different identity
	assert.False(t, dedup.Seen(Key("c-002", first, "120")))
}
