package places

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// Client is a minimal Google Places text-search client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a places client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 25 * time.Second,
		},
	}
}

// ReadKey resolves the Places API key from the environment or a key file.
func ReadKey(envKey, keyPath string) (string, error) {
	if envKey != "" {
		return strings.TrimSpace(envKey), nil
	}
	if keyPath != "" {
		raw, err := os.ReadFile(keyPath)
		if err != nil {
			return "", fmt.Errorf("failed to read places key file: %w", err)
		}
		key := strings.TrimSpace(string(raw))
		if key == "" {
			return "", fmt.Errorf("empty places key file: %s", keyPath)
		}
		return key, nil
	}
	return "", fmt.Errorf("places API key not found; set GOOGLE_PLACES_KEY or GOOGLE_PLACES_KEY_PATH")
}

type textSearchResponse struct {
	Results []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

type detailsResponse struct {
	Result struct {
		Website          string `json:"website"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"result"`
}

// Lookup runs a text search for the query and, when a place is found,
// fetches its website and formatted address. A query with no results
// returns an empty Entry and no error.
func (c *Client) Lookup(query string) (Entry, error) {
	var search textSearchResponse
	params := url.Values{"query": {query}, "key": {c.apiKey}}
	if err := c.getJSON(c.baseURL+"/textsearch/json?"+params.Encode(), &search); err != nil {
		return Entry{}, fmt.Errorf("places text search: %w", err)
	}
	if len(search.Results) == 0 || search.Results[0].PlaceID == "" {
		return Entry{}, nil
	}

	placeID := search.Results[0].PlaceID
	var details detailsResponse
	params = url.Values{
		"place_id": {placeID},
		"fields":   {"name,formatted_address,website,url,formatted_phone_number"},
		"key":      {c.apiKey},
	}
	if err := c.getJSON(c.baseURL+"/details/json?"+params.Encode(), &details); err != nil {
		return Entry{}, fmt.Errorf("places details: %w", err)
	}

	return Entry{
		PlaceID:          placeID,
		Website:          details.Result.Website,
		FormattedAddress: details.Result.FormattedAddress,
	}, nil
}

func (c *Client) getJSON(rawURL string, out interface{}) error {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
