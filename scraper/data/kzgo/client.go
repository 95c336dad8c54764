package kzgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kzsync/pkg/errs"
)

// Map is the map metadata of provider B: the bonus count, the difficulty
// tier, the workshop id as a string and the mode support flags.
type Map struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Tier        int64    `json:"tier"`
	Bonuses     int64    `json:"bonuses"`
	WorkshopID  string   `json:"workshopId"`
	SupportsSKZ bool     `json:"skz"`
	SupportsVNL bool     `json:"vnl"`
	MapperIDs   []string `json:"mapperIds"`
	MapperNames []string `json:"mapperNames"`
}

// Client talks to the secondary map metadata provider.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMaps fetches all map metadata rows.
func (c *Client) GetMaps(ctx context.Context) ([]Map, error) {
	url := fmt.Sprintf("%s/maps", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d on %s", errs.ErrUnavailable, resp.StatusCode, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d on URL %s", resp.StatusCode, url)
	}

	var maps []Map
	if err := json.NewDecoder(resp.Body).Decode(&maps); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformed, err)
	}

	return maps, nil
}
