// Package discovery queries the external place-search provider for
// candidate clinics. The provider is treated as a best-effort data
// source: an unconfigured key or a failed request yields an empty
// result with a warning, never an error that would abort an import.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outreach_backend/platform/config"
	"outreach_backend/platform/logger"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1"
	fieldMask      = "places.id,places.displayName,places.formattedAddress," +
		"places.websiteUri,places.nationalPhoneNumber,places.primaryType,places.location"
)

// RawPlace is one candidate business as returned by the provider,
// flattened out of the provider's nested response shape.
type RawPlace struct {
	ID       string
	Name     string
	Address  string
	City     string
	Website  string
	Phone    string
	Category string
}

// Client calls the text-search endpoint of the places provider.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	log        *logger.Logger
}

func New(cfg config.DiscoveryConfig, log *logger.Logger) *Client {
	pageSize := cfg.GetPlacesPageSize()
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Client{
		baseURL:  defaultBaseURL,
		apiKey:   cfg.GetPlacesAPIKey(),
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type searchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize"`
	PageToken string `json:"pageToken,omitempty"`
}

type wirePlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string `json:"formattedAddress"`
	WebsiteURI          string `json:"websiteUri"`
	NationalPhoneNumber string `json:"nationalPhoneNumber"`
	PrimaryType         string `json:"primaryType"`
}

type searchResponse struct {
	Places        []wirePlace `json:"places"`
	NextPageToken string      `json:"nextPageToken"`
}

// Search runs one text query through the provider, following page tokens.
// A missing API key or a provider failure logs a warning and returns an
// empty slice; discovery degrading should never fail the batch around it.
func (c *Client) Search(ctx context.Context, query string) ([]RawPlace, error) {
	if c.apiKey == "" {
		c.log.Warn("places api key is empty, search skipped", "query", query)
		return nil, nil
	}

	var out []RawPlace
	pageToken := ""
	for {
		resp, err := c.searchPage(ctx, query, pageToken)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("places search failed", "query", query, "error", err.Error())
			return out, nil
		}
		for _, p := range resp.Places {
			out = append(out, placeFromWire(p))
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.log.Info("places search returned results", "query", query, "count", len(out))
	return out, nil
}

func (c *Client) searchPage(ctx context.Context, query, pageToken string) (*searchResponse, error) {
	payload, err := json.Marshal(searchRequest{
		TextQuery: query,
		PageSize:  c.pageSize,
		PageToken: pageToken,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/places:searchText", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("places returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

func placeFromWire(p wirePlace) RawPlace {
	return RawPlace{
		ID:       p.ID,
		Name:     p.DisplayName.Text,
		Address:  p.FormattedAddress,
		City:     cityFromAddress(p.FormattedAddress),
		Website:  p.WebsiteURI,
		Phone:    p.NationalPhoneNumber,
		Category: p.PrimaryType,
	}
}

// cityFromAddress guesses the city out of a formatted address like
// "123 St, New York, NY 10001, USA". Crude but sufficient for the
// name-signature dedup key; an empty guess is fine.
func cityFromAddress(address string) string {
	if !strings.Contains(address, ",") {
		return ""
	}
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 3 {
		return parts[len(parts)-3]
	}
	return parts[len(parts)-2]
}
