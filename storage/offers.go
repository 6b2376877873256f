package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"bverlaan/yogabench/internal/crawler"
	"bverlaan/yogabench/internal/pricing"
)

var mentionHeader = []string{
	"competitor_id",
	"competitor_name",
	"page_url",
	"price_raw",
	"price_eur",
	"context",
	"last_checked_date",
}

var offerHeader = []string{
	"offer_id",
	"competitor_id",
	"offer_type",
	"offer_name",
	"class_type",
	"heat",
	"class_length_min",
	"sessions_included",
	"duration_days",
	"price_eur",
	"price_unit",
	"currency",
	"auto_renew",
	"contract_months",
	"booking_limit",
	"intro_restrictions",
	"usage_limit_type",
	"usage_limit_value",
	"usage_limit_period",
	"contract_type",
	"cancellation_notice_days",
	"class_style",
	"intensity_level",
	"source_url",
	"last_checked_date",
}

// WriteMentions replaces the price-mention audit file with this run's rows.
func WriteMentions(path string, mentions []crawler.Mention) error {
	rows := make([][]string, 0, len(mentions))
	for _, m := range mentions {
		rows = append(rows, []string{
			m.CompetitorID,
			m.CompetitorName,
			m.PageURL,
			m.PriceRaw,
			m.PriceEUR,
			m.Context,
			m.LastCheckedDate,
		})
	}
	return writeCSV(path, mentionHeader, rows)
}

// WriteOffers replaces the structured offers file with this run's rows.
func WriteOffers(path string, offers []pricing.Offer) error {
	rows := make([][]string, 0, len(offers))
	for _, offer := range offers {
		rows = append(rows, offerRow(offer, ""))
	}
	return writeCSV(path, offerHeader, rows)
}

// AppendOffersHistory appends this run's offers to the longitudinal history
// file, stamping each row with the snapshot date. The header is written only
// when the file does not exist yet.
func AppendOffersHistory(path string, offers []pricing.Offer, snapshotDate string) error {
	if len(offers) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create data dir: %w", err)
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("csv: open history %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(append(append([]string{}, offerHeader...), "snapshot_date")); err != nil {
			return fmt.Errorf("csv: write history header: %w", err)
		}
	}
	for _, offer := range offers {
		if err := w.Write(offerRow(offer, snapshotDate)); err != nil {
			return fmt.Errorf("csv: write history row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func offerRow(offer pricing.Offer, snapshotDate string) []string {
	row := []string{
		offer.OfferID,
		offer.CompetitorID,
		string(offer.OfferType),
		offer.OfferName,
		offer.ClassType,
		offer.Heat,
		offer.ClassLengthMin,
		offer.SessionsIncluded,
		offer.DurationDays,
		offer.PriceEUR,
		string(offer.PriceUnit),
		"EUR",
		"", // auto_renew, never inferred automatically
		offer.ContractMonths,
		"", // booking_limit
		"", // intro_restrictions
		string(offer.UsageLimitType),
		offer.UsageLimitValue,
		offer.UsageLimitPeriod,
		string(offer.ContractType),
		offer.CancellationNoticeDays,
		offer.ClassStyle,
		string(offer.IntensityLevel),
		offer.SourceURL,
		offer.LastCheckedDate,
	}
	if snapshotDate != "" {
		row = append(row, snapshotDate)
	}
	return row
}

// LoadOffers reads a previously written offers file. A missing file yields
// an empty list.
func LoadOffers(path string) ([]pricing.Offer, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	offers := make([]pricing.Offer, 0, len(records)-1)
	for _, row := range records[1:] {
		offers = append(offers, pricing.Offer{
			OfferID:                field(row, "offer_id"),
			CompetitorID:           field(row, "competitor_id"),
			OfferType:              pricing.OfferType(field(row, "offer_type")),
			OfferName:              field(row, "offer_name"),
			ClassType:              field(row, "class_type"),
			Heat:                   field(row, "heat"),
			ClassLengthMin:         field(row, "class_length_min"),
			SessionsIncluded:       field(row, "sessions_included"),
			DurationDays:           field(row, "duration_days"),
			PriceEUR:               field(row, "price_eur"),
			PriceUnit:              pricing.PriceUnit(field(row, "price_unit")),
			UsageLimitType:         pricing.UsageLimitType(field(row, "usage_limit_type")),
			UsageLimitValue:        field(row, "usage_limit_value"),
			UsageLimitPeriod:       field(row, "usage_limit_period"),
			ContractType:           pricing.ContractType(field(row, "contract_type")),
			ContractMonths:         field(row, "contract_months"),
			CancellationNoticeDays: field(row, "cancellation_notice_days"),
			ClassStyle:             field(row, "class_style"),
			IntensityLevel:         pricing.IntensityLevel(field(row, "intensity_level")),
			SourceURL:              field(row, "source_url"),
			LastCheckedDate:        field(row, "last_checked_date"),
		})
	}
	return offers, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create data dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	return records, nil
}
