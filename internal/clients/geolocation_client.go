// Package clients provides HTTP clients for communicating with external services.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
)

// GeolocationClient resolves the caller's position from an ip-api style
// geolocation service. It stands in for the device location API.
type GeolocationClient struct {
	baseURL    string
	granted    bool
	httpClient *http.Client
	logger     zerolog.Logger
}

// geolocationResponse is the subset of the service response we rely on.
type geolocationResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewGeolocationClient creates a client for the geolocation service. granted is
// the user's standing consent to location lookups.
func NewGeolocationClient(baseURL string, granted bool, logger zerolog.Logger) *GeolocationClient {
	return &GeolocationClient{
		baseURL: baseURL,
		granted: granted,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With().Str("client", "geolocation").Logger(),
	}
}

// RequestPermission reports the configured consent.
func (c *GeolocationClient) RequestPermission(ctx context.Context) (bool, error) {
	return c.granted, nil
}

// CurrentPosition queries the service once.
func (c *GeolocationClient) CurrentPosition(ctx context.Context) (markers.Coordinate, error) {
	url := c.baseURL + "/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return markers.Coordinate{}, fmt.Errorf("failed to create position request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return markers.Coordinate{}, fmt.Errorf("%w: %w", markers.ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return markers.Coordinate{}, fmt.Errorf("%w: geolocation service returned status code %d", markers.ErrPositionUnavailable, resp.StatusCode)
	}

	var body geolocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return markers.Coordinate{}, fmt.Errorf("%w: failed to decode response: %w", markers.ErrPositionUnavailable, err)
	}
	if body.Status != "success" {
		return markers.Coordinate{}, fmt.Errorf("%w: %s", markers.ErrPositionUnavailable, body.Message)
	}

	pos := markers.Coordinate{Latitude: body.Lat, Longitude: body.Lon}
	if err := pos.Validate(); err != nil {
		return markers.Coordinate{}, fmt.Errorf("%w: %w", markers.ErrPositionUnavailable, err)
	}

	c.logger.Info().Float64("latitude", pos.Latitude).Float64("longitude", pos.Longitude).Msg("Resolved current position")
	return pos, nil
}
