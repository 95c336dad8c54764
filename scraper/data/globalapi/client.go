package globalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	neturl "net/url"
	"time"

	"kzsync/pkg/errs"
)

// Client talks to the paginated REST leaderboard API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON runs a GET request and decodes the response, translating the
// status code into the shared error taxonomy. 500-502 responses and
// transport failures are transient; 404 means the entity doesn't exist.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding.
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errs.ErrNotFound, url)
	case resp.StatusCode >= 500 && resp.StatusCode <= 502:
		return fmt.Errorf("%w: status %d on %s", errs.ErrUnavailable, resp.StatusCode, url)
	default:
		return fmt.Errorf("API returned status code %d on URL %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrMalformed, err)
	}

	return nil
}

// GetRecord fetches exactly one record by its id.
func (c *Client) GetRecord(ctx context.Context, id uint32) (*Record, error) {
	url := fmt.Sprintf("%s/records/%d", c.baseURL, id)

	var record Record
	if err := c.getJSON(ctx, url, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// GetPlayers fetches one page of the player listing. An empty page signals
// that the listing is exhausted.
func (c *Client) GetPlayers(ctx context.Context, offset int, limit int) ([]Player, error) {
	url := fmt.Sprintf("%s/players?offset=%d&limit=%d", c.baseURL, offset, limit)

	var players []Player
	if err := c.getJSON(ctx, url, &players); err != nil {
		return nil, err
	}

	return players, nil
}

// GetPlayerByCommunityID fetches the canonical player row for a community id.
func (c *Client) GetPlayerByCommunityID(ctx context.Context, id uint32) (*Player, error) {
	url := fmt.Sprintf("%s/players?steamid64=%d&limit=1", c.baseURL, uint64(id)+76561197960265728)

	var players []Player
	if err := c.getJSON(ctx, url, &players); err != nil {
		return nil, err
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("%w: player %d", errs.ErrNotFound, id)
	}

	return &players[0], nil
}

// GetPlayerByName fetches the first player matching a name.
func (c *Client) GetPlayerByName(ctx context.Context, name string) (*Player, error) {
	url := fmt.Sprintf("%s/players?name=%s&limit=1", c.baseURL, neturl.QueryEscape(name))

	var players []Player
	if err := c.getJSON(ctx, url, &players); err != nil {
		return nil, err
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("%w: player %q", errs.ErrNotFound, name)
	}

	return &players[0], nil
}

// GetServers fetches one page of the server listing.
func (c *Client) GetServers(ctx context.Context, offset int, limit int) ([]Server, error) {
	url := fmt.Sprintf("%s/servers?offset=%d&limit=%d", c.baseURL, offset, limit)

	var servers []Server
	if err := c.getJSON(ctx, url, &servers); err != nil {
		return nil, err
	}

	return servers, nil
}

// GetServer fetches a single server by its id.
func (c *Client) GetServer(ctx context.Context, id uint16) (*Server, error) {
	url := fmt.Sprintf("%s/servers/%d", c.baseURL, id)

	var server Server
	if err := c.getJSON(ctx, url, &server); err != nil {
		return nil, err
	}

	return &server, nil
}

// GetServerByName fetches a single server by its exact name.
func (c *Client) GetServerByName(ctx context.Context, name string) (*Server, error) {
	url := fmt.Sprintf("%s/servers/name/%s", c.baseURL, neturl.PathEscape(name))

	var server Server
	if err := c.getJSON(ctx, url, &server); err != nil {
		return nil, err
	}

	return &server, nil
}

// GetMaps fetches the full global map listing.
func (c *Client) GetMaps(ctx context.Context) ([]Map, error) {
	url := fmt.Sprintf("%s/maps?limit=9999", c.baseURL)

	var maps []Map
	if err := c.getJSON(ctx, url, &maps); err != nil {
		return nil, err
	}

	return maps, nil
}
