package geocoder

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

const (
	// MapQuestURL is the MapQuest geocoding endpoint
	MapQuestURL = "https://www.mapquestapi.com/geocoding/v1/address"
	// DefaultTimeout is the HTTP client timeout for one lookup
	DefaultTimeout = 10 * time.Second
)

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig retries twice with exponential backoff
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// MapQuestConfig holds configuration for the MapQuest client
type MapQuestConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retry   *RetryConfig
}

// MapQuest geocodes through the MapQuest open geocoding API
type MapQuest struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

var _ Geocoder = (*MapQuest)(nil)

// NewMapQuest creates a MapQuest client
func NewMapQuest(config MapQuestConfig) *MapQuest {
	if config.BaseURL == "" {
		config.BaseURL = MapQuestURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}

	return &MapQuest{
		apiKey:     config.APIKey,
		baseURL:    config.BaseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
		retry:      retry,
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// APIError is a non-success answer from MapQuest
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mapquest error (status %d): %v", e.StatusCode, e.Messages)
}

// IsRetryableStatusCode checks if an HTTP status code should trigger a retry
func IsRetryableStatusCode(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout || statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// CalculateBackoff returns initialBackoff * 2^attempt, capped at maxBackoff
func CalculateBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := config.InitialBackoff * time.Duration(1<<uint(attempt))
	if backoff > config.MaxBackoff {
		return config.MaxBackoff
	}
	return backoff
}

// Geocode returns the first location MapQuest reports for address
func (m *MapQuest) Geocode(ctx context.Context, address string) (*Location, error) {
	var lastErr error
	for attempt := 0; attempt <= m.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(CalculateBackoff(attempt-1, m.retry)):
			}
		}

		loc, err := m.geocodeOnce(ctx, address)
		if err == nil {
			return loc, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !IsRetryableStatusCode(apiErr.StatusCode) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (m *MapQuest) geocodeOnce(ctx context.Context, address string) (*Location, error) {
	query := url.Values{}
	query.Set("key", m.apiKey)
	query.Set("location", address)
	query.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Messages: []string{string(body)}}
	}

	var result mapQuestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Info.StatusCode != 0 {
		return nil, &APIError{StatusCode: result.Info.StatusCode, Messages: result.Info.Messages}
	}
	if len(result.Results) == 0 || len(result.Results[0].Locations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}

	l := result.Results[0].Locations[0]
	return &Location{
		Latitude:         l.LatLng.Lat,
		Longitude:        l.LatLng.Lng,
		FormattedAddress: formatAddress(l.Street, l.AdminArea5, l.AdminArea3, l.PostalCode, l.AdminArea1),
		Street:           l.Street,
		City:             l.AdminArea5,
		State:            l.AdminArea3,
		Zipcode:          l.PostalCode,
		Country:          l.AdminArea1,
	}, nil
}
