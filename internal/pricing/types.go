package pricing

// OfferType classifies what kind of commercial offer a price mention describes.
type OfferType string

const (
	OfferDropIn     OfferType = "drop_in"
	OfferPack       OfferType = "pack"
	OfferMembership OfferType = "membership"
	OfferIntro      OfferType = "intro"
	OfferUnknown    OfferType = "unknown"
)

// PriceUnit is the billing cadence inferred near a price.
type PriceUnit string

const (
	UnitNone      PriceUnit = ""
	UnitWeek      PriceUnit = "week"
	UnitMonth     PriceUnit = "month"
	UnitFourWeeks PriceUnit = "4_weeks"
	UnitSixMonths PriceUnit = "6_months"
	UnitYear      PriceUnit = "year"
	UnitClass     PriceUnit = "class"
)

// UsageLimitType describes how usage of a membership is capped.
type UsageLimitType string

const (
	LimitNone            UsageLimitType = ""
	LimitUnlimited       UsageLimitType = "unlimited"
	LimitClassesPerWeek  UsageLimitType = "classes_per_week"
	LimitClassesPerMonth UsageLimitType = "classes_per_month"
)

// ContractType describes the commitment attached to an offer.
type ContractType string

const (
	ContractNone         ContractType = ""
	ContractMonthToMonth ContractType = "month_to_month"
	ContractAnnual       ContractType = "annual"
	ContractSemiAnnual   ContractType = "semi_annual"
	ContractQuarterly    ContractType = "quarterly"
	ContractIntro        ContractType = "intro"
)

// IntensityLevel is the coarse effort level of a class style.
type IntensityLevel string

const (
	IntensityNone     IntensityLevel = ""
	IntensityLow      IntensityLevel = "low"
	IntensityModerate IntensityLevel = "moderate"
	IntensityHigh     IntensityLevel = "high"
)

// PriceMention is a single detected currency-amount occurrence plus its
// surrounding text. Produced and consumed within one crawl pass.
type PriceMention struct {
	RawText string `json:"raw_text"`
	Context string `json:"context"`
	PageURL string `json:"page_url"`
}

// Offer is one structured pricing unit inferred from a page.
type Offer struct {
	OfferID                string         `json:"offer_id"`
	CompetitorID           string         `json:"competitor_id"`
	OfferType              OfferType      `json:"offer_type"`
	OfferName              string         `json:"offer_name"`
	ClassType              string         `json:"class_type"`
	Heat                   string         `json:"heat"`
	ClassLengthMin         string         `json:"class_length_min"`
	SessionsIncluded       string         `json:"sessions_included"`
	DurationDays           string         `json:"duration_days"`
	PriceEUR               string         `json:"price_eur"`
	PriceUnit              PriceUnit      `json:"price_unit"`
	UsageLimitType         UsageLimitType `json:"usage_limit_type"`
	UsageLimitValue        string         `json:"usage_limit_value"`
	UsageLimitPeriod       string         `json:"usage_limit_period"`
	ContractType           ContractType   `json:"contract_type"`
	ContractMonths         string         `json:"contract_months"`
	CancellationNoticeDays string         `json:"cancellation_notice_days"`
	ClassStyle             string         `json:"class_style"`
	IntensityLevel         IntensityLevel `json:"intensity_level"`
	SourceURL              string         `json:"source_url"`
	LastCheckedDate        string         `json:"last_checked_date"`
}
