// Package ninjas calls the API Ninjas endpoints used to validate and enrich
// restaurant records.
package ninjas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/sngm3741/restaurant-graph/api/internal/common/errors"
	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/observability/metrics"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/domain"
)

const (
	DefaultBaseURL = "https://api.api-ninjas.com"

	EndpointValidatePhone = "validatephone"
	EndpointGeocoding     = "geocoding"
	EndpointWorldTime     = "worldtime"
	EndpointWeather       = "weather"

	apiKeyHeader = "X-Api-Key"
)

// Config defines dependencies required by Client.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

// Client is safe for concurrent use; it holds no mutable state beyond the
// shared *http.Client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
	metrics    *metrics.Metrics
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: httpClient,
		logger:     log.With(map[string]interface{}{"component": "ninjas"}),
		metrics:    cfg.Metrics,
	}
}

// ValidatePhone checks a phone number. An invalid number is returned as data
// with Valid=false, not as an error. The timezone list is returned as is,
// even when empty.
func (c *Client) ValidatePhone(ctx context.Context, number string) (domain.PhoneValidation, error) {
	var payload validatePhoneResponse
	if err := c.get(ctx, EndpointValidatePhone, url.Values{"number": {number}}, &payload); err != nil {
		return domain.PhoneValidation{}, err
	}
	return domain.PhoneValidation{
		Valid:     payload.IsValid,
		Country:   payload.Country,
		Timezones: append([]string{}, payload.Timezones...),
	}, nil
}

// GeocodeCity returns the coordinate candidates for a city, possibly none.
func (c *Client) GeocodeCity(ctx context.Context, city string) ([]domain.Coordinates, error) {
	var payload []geocodingResponse
	if err := c.get(ctx, EndpointGeocoding, url.Values{"city": {city}}, &payload); err != nil {
		return nil, err
	}

	coordinates := make([]domain.Coordinates, 0, len(payload))
	for _, candidate := range payload {
		coordinates = append(coordinates, domain.Coordinates{
			Latitude:  candidate.Latitude,
			Longitude: candidate.Longitude,
		})
	}
	return coordinates, nil
}

func (c *Client) WorldTime(ctx context.Context, timezone string) (domain.WorldTime, error) {
	var payload worldTimeResponse
	if err := c.get(ctx, EndpointWorldTime, url.Values{"timezone": {timezone}}, &payload); err != nil {
		return domain.WorldTime{}, err
	}
	if payload.Datetime == "" {
		return domain.WorldTime{}, apperrors.NewUpstreamPayloadError(EndpointWorldTime, errors.New("missing datetime"))
	}
	return domain.WorldTime{Datetime: payload.Datetime}, nil
}

func (c *Client) Weather(ctx context.Context, latitude, longitude float64) (domain.Weather, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(latitude, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(longitude, 'f', -1, 64)},
	}

	var payload weatherResponse
	if err := c.get(ctx, EndpointWeather, params, &payload); err != nil {
		return domain.Weather{}, err
	}
	if payload.Temp == nil {
		return domain.Weather{}, apperrors.NewUpstreamPayloadError(EndpointWeather, errors.New("missing temp"))
	}
	return domain.Weather{Temperature: *payload.Temp}, nil
}

// get issues one GET to /v1/<endpoint> and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (err error) {
	if c.apiKey == "" {
		return apperrors.NewMissingAPIKeyError(endpoint)
	}

	started := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = string(apperrors.CodeOf(err))
		}
		c.metrics.ObserveUpstream(endpoint, result, started)
	}()

	requestURL := fmt.Sprintf("%s/v1/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return apperrors.NewUpstreamUnavailableError(endpoint, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Warn("enrichment request failed", map[string]interface{}{
			"endpoint": endpoint,
		})
		return apperrors.NewUpstreamUnavailableError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("enrichment request returned non-success status", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return apperrors.NewUpstreamStatusError(endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstreamPayloadError(endpoint, err)
	}

	c.logger.Debug("enrichment request completed", map[string]interface{}{
		"endpoint":   endpoint,
		"durationMs": time.Since(started).Milliseconds(),
	})
	return nil
}
