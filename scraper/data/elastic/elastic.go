package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"kzsync/pkg/config"
	"kzsync/pkg/database/models"
	"kzsync/pkg/kztime"
)

// Record is a run document from the search index, normalized across the two
// historical document shapes.
type Record struct {
	ID         uint32      `json:"id"`
	MapName    string      `json:"map_name"`
	Stage      uint8       `json:"stage"`
	ModeName   string      `json:"mode"`
	PlayerName string      `json:"player_name"`
	SteamID64  string      `json:"steamid64"`
	Teleports  uint32      `json:"teleports"`
	Time       float64     `json:"time"`
	ServerName string      `json:"server_name"`
	CreatedOn  kztime.Time `json:"created_on"`
}

// Payload is one page of the scroll plus the continuation cursor. Documents
// failing both known shapes land in Malformed instead of aborting the page.
type Payload struct {
	ScrollID  string
	Records   []Record
	Malformed []json.RawMessage
}

// Done reports the terminal scroll condition: a page carrying nothing at all.
func (p *Payload) Done() bool {
	return len(p.Records) == 0 && len(p.Malformed) == 0
}

// Fetcher wraps the search index client with the scroll plumbing.
type Fetcher struct {
	client *elasticsearch.Client
	index  string
	window string
	size   int
}

// NewFetcher connects to the search index described by the config.
func NewFetcher(cfg config.ElasticConfig) (*Fetcher, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't create the elastic client: %w", err)
	}

	return &Fetcher{
		client: client,
		index:  cfg.Index,
		window: cfg.ScrollWindow,
		size:   cfg.ChunkSize,
	}, nil
}

// response is the raw shape of both the search and the scroll endpoints.
type response struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FetchInitial opens a new scroll over the full index.
func (f *Fetcher) FetchInitial(ctx context.Context) (*Payload, error) {
	body := strings.NewReader(`{"query":{"match_all":{}}}`)

	res, err := f.client.Search(
		f.client.Search.WithContext(ctx),
		f.client.Search.WithIndex(f.index),
		f.client.Search.WithSize(f.size),
		f.client.Search.WithScroll(scrollWindow(f.window)),
		f.client.Search.WithBody(body),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch request to elastic failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elastic returned status %s", res.Status())
	}

	return decodePage(res.Body)
}

// Fetch exchanges the current scroll id for the next page and a new cursor.
func (f *Fetcher) Fetch(ctx context.Context, scrollID string) (*Payload, error) {
	res, err := f.client.Scroll(
		f.client.Scroll.WithContext(ctx),
		f.client.Scroll.WithScrollID(scrollID),
		f.client.Scroll.WithScroll(scrollWindow(f.window)),
	)
	if err != nil {
		return nil, fmt.Errorf("scroll request to elastic failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elastic returned status %s", res.Status())
	}

	return decodePage(res.Body)
}

func decodePage(body io.Reader) (*Payload, error) {
	var parsed response
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse elastic response: %w", err)
	}

	payload := &Payload{ScrollID: parsed.ScrollID}

	for _, hit := range parsed.Hits.Hits {
		record, ok := ParseDocument(hit.Source)
		if !ok {
			payload.Malformed = append(payload.Malformed, hit.Source)
			continue
		}

		payload.Records = append(payload.Records, *record)
	}

	return payload, nil
}

// serverObjectShape is the richer historical document shape, embedding the
// server as an object.
type serverObjectShape struct {
	ID         uint32  `json:"id"`
	MapName    string  `json:"map_name"`
	Stage      uint8   `json:"stage"`
	ModeName   string  `json:"mode"`
	PlayerName string  `json:"player_name"`
	SteamID64  string  `json:"steamid64"`
	Teleports  uint32  `json:"teleports"`
	Time       float64 `json:"time"`
	Server     struct {
		ID   uint16 `json:"id"`
		Name string `json:"name"`
	} `json:"server"`
	CreatedOn kztime.Time `json:"created_on"`
}

// serverNameShape is the flatter historical shape carrying only the name.
type serverNameShape struct {
	ID         uint32      `json:"id"`
	MapName    string      `json:"map_name"`
	Stage      uint8       `json:"stage"`
	ModeName   string      `json:"mode"`
	PlayerName string      `json:"player_name"`
	SteamID64  string      `json:"steamid64"`
	Teleports  uint32      `json:"teleports"`
	Time       float64     `json:"time"`
	ServerName string      `json:"server_name"`
	CreatedOn  kztime.Time `json:"created_on"`
}

// ParseDocument tries the richer shape first and falls back to the flatter
// one. Documents failing both are malformed.
func ParseDocument(source json.RawMessage) (*Record, bool) {
	var rich serverObjectShape
	if err := json.Unmarshal(source, &rich); err == nil && rich.Server.Name != "" {
		return validate(&Record{
			ID:         rich.ID,
			MapName:    rich.MapName,
			Stage:      rich.Stage,
			ModeName:   rich.ModeName,
			PlayerName: rich.PlayerName,
			SteamID64:  rich.SteamID64,
			Teleports:  rich.Teleports,
			Time:       rich.Time,
			ServerName: rich.Server.Name,
			CreatedOn:  rich.CreatedOn,
		})
	}

	var flat serverNameShape
	if err := json.Unmarshal(source, &flat); err == nil && flat.ServerName != "" {
		return validate(&Record{
			ID:         flat.ID,
			MapName:    flat.MapName,
			Stage:      flat.Stage,
			ModeName:   flat.ModeName,
			PlayerName: flat.PlayerName,
			SteamID64:  flat.SteamID64,
			Teleports:  flat.Teleports,
			Time:       flat.Time,
			ServerName: flat.ServerName,
			CreatedOn:  flat.CreatedOn,
		})
	}

	return nil, false
}

// validate rejects documents whose key fields can't be used downstream.
func validate(record *Record) (*Record, bool) {
	if record.ID == 0 || record.MapName == "" || record.SteamID64 == "" {
		return nil, false
	}

	if _, ok := models.ModeIDFromName(record.ModeName); !ok {
		return nil, false
	}

	return record, true
}

// scrollWindow parses the configured window into the duration the client
// expects. The config keeps the upstream "4m" notation.
func scrollWindow(window string) time.Duration {
	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 4 * time.Minute
	}
	return parsed
}
