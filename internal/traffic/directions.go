package traffic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

const (
	requestTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

// ErrNoCredential is returned when no API key has been provisioned yet.
var ErrNoCredential = errors.New("no api credential provisioned")

// KeySource supplies the API credential at request time, so a key saved
// through the provisioning flow is picked up on the next poll without a
// restart. *models.DeviceConfigStore satisfies it.
type KeySource interface {
	APIKey() string
}

// DirectionsClient polls a distance-matrix style routing API: one GET per
// poll with origin, destination and departure_time=now, answered by a JSON
// document with a status field and the two durations.
type DirectionsClient struct {
	baseURL string
	keys    KeySource
	client  *http.Client
}

func NewDirectionsClient(baseURL string, keys KeySource) *DirectionsClient {
	return &DirectionsClient{
		baseURL: baseURL,
		keys:    keys,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type durationValue struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

type matrixElement struct {
	Status            string         `json:"status"`
	Duration          *durationValue `json:"duration"`
	DurationInTraffic *durationValue `json:"duration_in_traffic"`
}

type matrixRow struct {
	Elements []matrixElement `json:"elements"`
}

type matrixResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
	Rows         []matrixRow `json:"rows"`
}

func (c *DirectionsClient) Sample(ctx context.Context, route models.Route) (models.TrafficSample, error) {
	key := c.keys.APIKey()
	if key == "" {
		return models.TrafficSample{}, ErrNoCredential
	}

	q := url.Values{}
	q.Set("origins", route.Origin.String())
	q.Set("destinations", route.Destination.String())
	q.Set("departure_time", "now")
	q.Set("key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.TrafficSample{}, fmt.Errorf("build directions request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.TrafficSample{}, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.TrafficSample{}, fmt.Errorf("directions request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return models.TrafficSample{}, fmt.Errorf("read directions response: %w", err)
	}
	if len(body) == 0 {
		return models.TrafficSample{}, errors.New("empty directions response")
	}

	var parsed matrixResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.TrafficSample{}, fmt.Errorf("decode directions response: %w", err)
	}

	if parsed.Status != "OK" {
		if parsed.ErrorMessage != "" {
			return models.TrafficSample{}, fmt.Errorf("directions status %q: %s", parsed.Status, parsed.ErrorMessage)
		}
		return models.TrafficSample{}, fmt.Errorf("directions status %q", parsed.Status)
	}
	if len(parsed.Rows) == 0 || len(parsed.Rows[0].Elements) == 0 {
		return models.TrafficSample{}, errors.New("directions response has no route element")
	}

	el := parsed.Rows[0].Elements[0]
	if el.Status != "OK" {
		return models.TrafficSample{}, fmt.Errorf("route element status %q", el.Status)
	}
	if el.Duration == nil || el.DurationInTraffic == nil {
		return models.TrafficSample{}, errors.New("directions response missing duration fields")
	}

	return models.NewTrafficSample(route, el.Duration.Value, el.DurationInTraffic.Value, time.Now()), nil
}
