package pricing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Classification holds the field contributions of the heuristic chain for
// one price mention. All fields default to their empty variant.
type Classification struct {
	OfferType              OfferType
	OfferName              string
	ClassType              string
	Heat                   string
	ClassLengthMin         string
	SessionsIncluded       string
	DurationDays           string
	PriceUnit              PriceUnit
	UsageLimitType         UsageLimitType
	UsageLimitValue        string
	UsageLimitPeriod       string
	ContractType           ContractType
	ContractMonths         string
	CancellationNoticeDays string
	ClassStyle             string
	IntensityLevel         IntensityLevel
}

// Hint vocabularies. Order matters where noted.

// packHints are checked before membership hints: pack language is the most
// specific signal.
var packHints = []string{
	"class card",
	"classcard",
	"strippenkaart",
	"rittenkaart",
	"lessenkaart",
	"lessen kaart",
	"pack",
	"pass",
	"kaart",
	"credits",
	"credit",
	"unit",
	"units",
}

var membershipHints = []string{
	"membership",
	"abonnement",
	"unlimited",
	"onbeperkt",
	"monthly",
	"per month",
	"maand",
	"weekly",
	"per week",
	"week",
	"yearly",
	"per year",
	"jaar",
}

var offerTypeHints = []struct {
	hint string
	typ  OfferType
}{
	{"drop-in", OfferDropIn},
	{"drop in", OfferDropIn},
	{"single", OfferDropIn},
	{"intro", OfferIntro},
	{"trial", OfferIntro},
	{"proef", OfferIntro},
}

// classTypeHints is ordered so compound styles are found before the generic
// "yoga"/"pilates" fallbacks shadow them.
var classTypeHints = []struct {
	hint string
	typ  string
}{
	{"private", "private"},
	{"hot pilates", "hot_pilates"},
	{"hot yoga", "hot_yoga"},
	{"vinyasa", "vinyasa"},
	{"ashtanga", "ashtanga"},
	{"yin", "yin"},
	{"kundalini", "kundalini"},
	{"pilates", "pilates"},
	{"barre", "barre"},
	{"power yoga", "power_yoga"},
	{"hatha", "hatha"},
	{"yoga", "yoga"},
}

var unlimitedHints = []string{"unlimited", "onbeperkt", "no limit", "geen limiet"}

var sessionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]*(?:classes|class|lessen|lessons)\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:x|times)\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]*(?:units|unit|credits|credit)\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2})[\s-]*(?:ritten|rittenkaart)\b`),
}

var (
	explicitDaysPattern  = regexp.MustCompile(`\b(\d{1,3})\s*(?:days|dagen)\b`)
	weeksPattern         = regexp.MustCompile(`\b(\d+)\s*week`)
	classLengthPattern   = regexp.MustCompile(`(?i)\b(\d{2,3})\s*(?:min|minutes)\b`)
	noticePattern        = regexp.MustCompile(`(\d+)\s*(?:days?|dagen)\s*(?:notice|opzegtermijn)`)
	perWeekPatterns      = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:x|times)?\s*(?:per|/)\s*week`),
		regexp.MustCompile(`(\d+)\s*(?:classes?|lessen)\s*(?:per|/)\s*week`),
	}
	perMonthPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:x|times)?\s*(?:per|/)\s*(?:month|maand)`),
		regexp.MustCompile(`(\d+)\s*(?:classes?|lessen)\s*(?:per|/)\s*(?:month|maand)`),
	}
)

// Classify runs the full heuristic chain over one price mention. It is a
// pure function of (context, rawPrice); a stage with no matching vocabulary
// contributes its empty value, never an error.
func Classify(context, rawPrice string) Classification {
	var c Classification
	c.PriceUnit = inferPriceUnit(context, rawPrice)
	c.SessionsIncluded = inferSessions(context)
	c.DurationDays = inferDurationDays(context, c.PriceUnit)
	c.OfferType = inferOfferType(context)
	c.ClassType, c.Heat = inferClassType(context)
	c.ClassLengthMin = inferClassLength(context)
	c.UsageLimitType, c.UsageLimitValue, c.UsageLimitPeriod = inferUsageLimits(context)
	c.ContractType, c.ContractMonths, c.CancellationNoticeDays = inferContractTerms(context)
	c.ClassStyle, c.IntensityLevel = inferClassStyle(c.ClassType, context)
	c.OfferName = offerName(context, c)
	return c
}

// inferOfferType picks the offer category. Pack and membership vocabularies
// win over drop-in/intro hints because their language is more specific.
func inferOfferType(context string) OfferType {
	lower := strings.ToLower(context)
	if containsAny(lower, packHints) {
		return OfferPack
	}
	if containsAny(lower, membershipHints) {
		return OfferMembership
	}
	for _, h := range offerTypeHints {
		if strings.Contains(lower, h.hint) {
			return h.typ
		}
	}
	return OfferUnknown
}

func inferClassType(context string) (classType, heat string) {
	lower := strings.ToLower(context)
	for _, h := range classTypeHints {
		if strings.Contains(lower, h.hint) {
			if strings.Contains(h.hint, "hot") {
				heat = "hot"
			}
			return h.typ, heat
		}
	}
	return "", ""
}

func inferSessions(context string) string {
	for _, pattern := range sessionPatterns {
		if m := pattern.FindStringSubmatch(context); m != nil {
			return m[1]
		}
	}
	return ""
}

// priceWindow returns the ±40-char sub-window of the lower-cased context
// anchored on the matched price, or the whole context when the price is not
// literally present.
func priceWindow(context, rawPrice string) string {
	lower := strings.ToLower(context)
	if rawPrice == "" {
		return lower
	}
	idx := strings.Index(lower, strings.ToLower(rawPrice))
	if idx == -1 {
		return lower
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + len(rawPrice) + 40
	if end > len(lower) {
		end = len(lower)
	}
	return lower[start:end]
}

func inferPriceUnit(context, rawPrice string) PriceUnit {
	window := priceWindow(context, rawPrice)
	switch {
	case containsAny(window, []string{"per week", "weekly", "week"}):
		return UnitWeek
	case containsAny(window, []string{"per month", "monthly", "maand"}):
		return UnitMonth
	case containsAny(window, []string{"half year", "halfyear", "6 months", "6 maand", "6 maanden"}):
		return UnitSixMonths
	case containsAny(window, []string{"per 4 weeks", "4 weeks", "4 weken"}):
		return UnitFourWeeks
	case containsAny(window, []string{"per year", "yearly", "jaar"}):
		return UnitYear
	case containsAny(window, []string{"per class", "per lesson", "single"}):
		return UnitClass
	}
	return UnitNone
}

// inferDurationDays resolves an offer's validity window. Explicit phrases
// take precedence over cadence derived from the price unit. Day counts that
// belong to cancellation-notice wording are not a validity window.
func inferDurationDays(context string, unit PriceUnit) string {
	lower := noticePattern.ReplaceAllString(strings.ToLower(context), "")
	if m := explicitDaysPattern.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	switch {
	case strings.Contains(lower, "1 month"), strings.Contains(lower, "one month"):
		return "30"
	case strings.Contains(lower, "3 months"), strings.Contains(lower, "3 maand"):
		return "90"
	case strings.Contains(lower, "6 months"), strings.Contains(lower, "6 maand"):
		return "180"
	case strings.Contains(lower, "1 year"):
		return "365"
	}
	if m := weeksPattern.FindStringSubmatch(lower); m != nil {
		if weeks, err := strconv.Atoi(m[1]); err == nil {
			return strconv.Itoa(weeks * 7)
		}
	}
	switch unit {
	case UnitWeek:
		return "7"
	case UnitMonth:
		return "30"
	case UnitFourWeeks:
		return "28"
	case UnitSixMonths:
		return "180"
	case UnitYear:
		return "365"
	}
	return ""
}

func inferClassLength(context string) string {
	if m := classLengthPattern.FindStringSubmatch(context); m != nil {
		return m[1]
	}
	return ""
}

// inferUsageLimits extracts usage caps. Unlimited vocabulary wins, then
// per-week and per-month counts in that order; a bare membership mention
// defaults to unlimited.
func inferUsageLimits(context string) (UsageLimitType, string, string) {
	lower := strings.ToLower(context)

	if containsAny(lower, unlimitedHints) {
		return LimitUnlimited, "", ""
	}
	for _, pattern := range perWeekPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return LimitClassesPerWeek, m[1], "week"
		}
	}
	for _, pattern := range perMonthPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			return LimitClassesPerMonth, m[1], "month"
		}
	}
	if containsAny(lower, []string{"membership", "abonnement"}) {
		return LimitUnlimited, "", ""
	}
	return LimitNone, "", ""
}

// inferContractTerms extracts commitment language. Month-to-month wording
// outranks fixed terms (longest first), which outrank intro wording; a bare
// membership mention defaults to month-to-month with 30 days notice.
func inferContractTerms(context string) (ContractType, string, string) {
	lower := strings.ToLower(context)

	if containsAny(lower, []string{
		"month-to-month", "month to month", "no commitment", "cancel anytime",
		"geen binding", "opzegbaar", "maand-tot-maand",
	}) {
		noticeDays := "30"
		if m := noticePattern.FindStringSubmatch(lower); m != nil {
			noticeDays = m[1]
		}
		return ContractMonthToMonth, "1", noticeDays
	}
	if containsAny(lower, []string{"12 month", "12-month", "annual", "yearly", "jaar", "12 maanden"}) {
		return ContractAnnual, "12", "0"
	}
	if containsAny(lower, []string{"6 month", "6-month", "half year", "6 maanden"}) {
		return ContractSemiAnnual, "6", "0"
	}
	if containsAny(lower, []string{"3 month", "3-month", "quarterly", "3 maanden"}) {
		return ContractQuarterly, "3", "0"
	}
	if containsAny(lower, []string{"intro", "trial", "proef"}) {
		return ContractIntro, "0", "0"
	}
	if containsAny(lower, []string{"membership", "abonnement"}) {
		return ContractMonthToMonth, "1", "30"
	}
	return ContractNone, "", ""
}

// inferClassStyle maps a class type plus context wording to a detailed
// style and intensity.
func inferClassStyle(classType, context string) (string, IntensityLevel) {
	lower := strings.ToLower(context)

	if classType == "yoga" || classType == "hot_yoga" {
		if containsAny(lower, []string{"vinyasa", "flow"}) {
			if containsAny(lower, []string{"power", "athletic", "strong"}) {
				return "power_yoga", IntensityHigh
			}
			return "vinyasa_flow", IntensityModerate
		}
		if containsAny(lower, []string{"power", "athletic"}) {
			return "power_yoga", IntensityHigh
		}
		if containsAny(lower, []string{"yin", "restorative", "gentle", "slow"}) {
			return "yin_restorative", IntensityLow
		}
		if containsAny(lower, []string{"bikram", "26+2", "26 postures"}) {
			return "bikram_26_2", IntensityHigh
		}
		if strings.Contains(lower, "ashtanga") {
			return "ashtanga", IntensityModerate
		}
		if strings.Contains(lower, "hatha") {
			return "hatha", IntensityModerate
		}
	}
	if classType == "pilates" {
		if strings.Contains(lower, "reformer") {
			return "reformer_pilates", IntensityModerate
		}
		return "mat_pilates", IntensityModerate
	}
	return "", IntensityNone
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]`)
	digitPattern  = regexp.MustCompile(`\d+[.,]?\d*`)
)

// offerName derives a human label for the offer. Drop-in and intro offers
// get fixed labels, memberships and packs a synthesized one; everything
// else falls back to the first sentence-like fragment mentioning a price.
func offerName(context string, c Classification) string {
	lower := strings.ToLower(context)

	switch c.OfferType {
	case OfferDropIn:
		return "Drop-in class"
	case OfferIntro:
		return "Intro offer"
	case OfferMembership:
		label := "Membership"
		if strings.Contains(lower, "unlimited") || strings.Contains(lower, "onbeperkt") {
			label = "Unlimited membership"
		}
		switch c.PriceUnit {
		case UnitWeek:
			return label + " (weekly)"
		case UnitMonth:
			return label + " (monthly)"
		case UnitFourWeeks:
			return label + " (4 weeks)"
		case UnitSixMonths:
			return label + " (6 months)"
		case UnitYear:
			return label + " (yearly)"
		}
		if c.DurationDays == "365" {
			return label + " (yearly)"
		}
		return label
	case OfferPack:
		if c.SessionsIncluded != "" {
			name := fmt.Sprintf("%s-class pack", c.SessionsIncluded)
			if c.DurationDays != "" {
				return fmt.Sprintf("%s (%sd valid)", name, c.DurationDays)
			}
			return name
		}
	}

	cleaned := whitespacePattern.ReplaceAllString(context, " ")
	cleaned = strings.ReplaceAll(cleaned, "€", "EUR ")
	if idx := strings.IndexAny(cleaned, "{}"); idx != -1 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}
	for _, part := range sentenceSplit.Split(cleaned, -1) {
		if strings.Contains(part, "EUR") || digitPattern.MatchString(part) {
			return truncate(strings.TrimSpace(part), 100)
		}
	}
	return truncate(strings.TrimSpace(cleaned), 100)
}

// truncate shortens s to at most n characters, never splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
