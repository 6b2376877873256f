package storage

import (
	"bverlaan/yogabench/internal/crawler"
)

// LoadCompetitors reads the externally maintained competitor table. The file
// is treated as read-only input: crawl runs never modify it. A missing file
// yields an empty list.
func LoadCompetitors(path string) ([]crawler.Competitor, error) {
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

	competitors := make([]crawler.Competitor, 0, len(records)-1)
	for _, row := range records[1:] {
		competitors = append(competitors, crawler.Competitor{
			CompetitorID:    field(row, "competitor_id"),
			Name:            field(row, "name"),
			Brand:           field(row, "brand"),
			Website:         field(row, "website"),
			Address:         field(row, "address"),
			City:            field(row, "city"),
			DistanceBikeMin: field(row, "distance_bike_min"),
			Tier:            field(row, "tier"),
		})
	}
	return competitors, nil
}
