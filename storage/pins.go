package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// maxPins caps how many competitors can be pinned to the top of a crawl
const maxPins = 10

type pinsFile struct {
	CompetitorIDs []string `json:"competitor_ids"`
}

// LoadPins reads the pinned competitor IDs. A missing or malformed file
// yields an empty list, never an error: pins are a convenience, not state
// the pipeline depends on.
func LoadPins(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var pins pinsFile
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil
	}
	if len(pins.CompetitorIDs) > maxPins {
		return pins.CompetitorIDs[:maxPins]
	}
	return pins.CompetitorIDs
}

// SavePins persists the pinned competitor IDs, capped to the pin limit.
func SavePins(path string, competitorIDs []string) ([]string, error) {
	if competitorIDs == nil {
		competitorIDs = []string{}
	}
	if len(competitorIDs) > maxPins {
		competitorIDs = competitorIDs[:maxPins]
	}

	data, err := json.MarshalIndent(pinsFile{CompetitorIDs: competitorIDs}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pins: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("write pins %q: %w", path, err)
	}
	return competitorIDs, nil
}
