// Package mapbox queries the Mapbox geocoding API for points of interest.
package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nearby/config"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

const geocodingPath = "/geocoding/v5/mapbox.places/"

// Client is a Mapbox geocoding client
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a geocoding client from the mapbox configuration
func NewClient(cfg *config.Config) service.PlaceSearcher {
	return NewClientWithHTTP(cfg.Mapbox.BaseURL, cfg.Mapbox.AccessToken, &http.Client{Timeout: cfg.Mapbox.Timeout})
}

// NewClientWithHTTP creates a geocoding client with an explicit endpoint and HTTP client
func NewClientWithHTTP(baseURL, accessToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  httpClient,
	}
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"`
}

// SearchPOI issues exactly one GET request. No retries.
func (c *Client) SearchPOI(ctx context.Context, query service.POIQuery) ([]service.GeocodedFeature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(query), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create geocoding request")
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call geocoding API")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// an unreadable body is reported as empty
		body, _ := io.ReadAll(resp.Body)

		return nil, domainerrors.NewPlacesAPIError(resp.StatusCode, string(body))
	}

	var collection featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
		return nil, errors.Wrap(err, "failed to decode geocoding response")
	}

	features := make([]service.GeocodedFeature, 0, len(collection.Features))
	for _, f := range collection.Features {
		if len(f.Center) < 2 {
			continue
		}
		features = append(features, service.GeocodedFeature{
			ID:      f.ID,
			Name:    f.Text,
			Address: f.PlaceName,
			Center:  entity.Coordinate{Latitude: f.Center[1], Longitude: f.Center[0]},
		})
	}

	return features, nil
}

func (c *Client) buildURL(query service.POIQuery) string {
	params := url.Values{}
	params.Set("proximity", formatFloat(query.Proximity.Longitude)+","+formatFloat(query.Proximity.Latitude))
	params.Set("types", "poi")
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("access_token", c.accessToken)

	return c.baseURL + geocodingPath + url.PathEscape(query.Text) + ".json?" + params.Encode()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
