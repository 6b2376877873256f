package storage

import (
	"encoding/json"
	"os"
)

// LoadOwnStudio reads the operator's own studio profile as free-form JSON.
// A missing or malformed file yields an empty object.
func LoadOwnStudio(path string) map[string]interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]interface{}{}
	}
	var studio map[string]interface{}
	if err := json.Unmarshal(data, &studio); err != nil || studio == nil {
		return map[string]interface{}{}
	}
	return studio
}
