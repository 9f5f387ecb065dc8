package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yjleow/wbgt-bot/internal/wbgt"
)

var (
	// ErrUpstreamUnavailable is returned on transport failure or a
	// non-success HTTP status from the weather endpoint.
	ErrUpstreamUnavailable = errors.New("wbgt upstream unavailable")

	// ErrMalformedPayload is returned when the response body is not JSON.
	// A JSON body missing the expected data/records path is treated as an
	// empty record list instead.
	ErrMalformedPayload = errors.New("malformed wbgt payload")
)

// DefaultBaseURL is the data.gov.sg real-time weather endpoint.
const DefaultBaseURL = "https://api-open.data.gov.sg/v2/real-time/api/weather"

// Client fetches raw WBGT records for a normalized date string.
// Each call issues exactly one fresh request: no retries, no caching.
type Client struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client. If baseURL is empty, DefaultBaseURL is used.
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wbgt-upstream",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		client:  client,
		circuit: cb,
	}
}

// Fetch issues one GET with the fixed api=wbgt selector and the given date,
// and returns the parsed record list.
func (c *Client) Fetch(ctx context.Context, date string) ([]wbgt.Record, error) {
	values := url.Values{}
	values.Set("api", "wbgt")
	values.Set("date", date)

	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.doFetch(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return nil, err
	}

	records, ok := result.([]wbgt.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return records, nil
}

func (c *Client) doFetch(req *http.Request) ([]wbgt.Record, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Records []struct {
				Datetime string `json:"datetime"`
				Item     struct {
					Readings []struct {
						Station struct {
							ID         string `json:"id"`
							Name       string `json:"name"`
							TownCenter string `json:"townCenter"`
						} `json:"station"`
						WBGT       *float64 `json:"wbgt"`
						HeatStress *string  `json:"heatStress"`
					} `json:"readings"`
				} `json:"item"`
			} `json:"records"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	records := make([]wbgt.Record, 0, len(payload.Data.Records))
	for _, rec := range payload.Data.Records {
		readings := make([]wbgt.StationReading, 0, len(rec.Item.Readings))
		for _, rd := range rec.Item.Readings {
			readings = append(readings, wbgt.StationReading{
				Station: wbgt.Station{
					ID:         rd.Station.ID,
					Name:       rd.Station.Name,
					TownCenter: rd.Station.TownCenter,
				},
				WBGT:       rd.WBGT,
				HeatStress: rd.HeatStress,
			})
		}
		records = append(records, wbgt.Record{
			Datetime: rec.Datetime,
			Readings: readings,
		})
	}

	return records, nil
}
