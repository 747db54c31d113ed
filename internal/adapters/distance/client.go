package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client resolves road distance from the kitchen to a destination through an
// external routing/geocoding provider. The caller treats failures as a
// degradable condition, so errors here stay plain.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

type routeResp struct {
	DistanceKm float64 `json:"distance_km"`
	Status     string  `json:"status"`
}

func (c *Client) ResolveKm(ctx context.Context, location string) (float64, error) {
	if c.baseURL == "" {
		return 0, errors.New("distance provider not configured")
	}
	if location == "" {
		return 0, errors.New("empty location")
	}

	u := fmt.Sprintf("%s/route?dest=%s", c.baseURL, url.QueryEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("distance provider status %d: %s", resp.StatusCode, string(body))
	}

	var out routeResp
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, err
	}
	if out.Status != "" && out.Status != "ok" {
		return 0, fmt.Errorf("distance provider: %s", out.Status)
	}
	if out.DistanceKm < 0 {
		return 0, errors.New("distance provider returned negative distance")
	}
	return out.DistanceKm, nil
}
