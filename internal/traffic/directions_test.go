package traffic

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

type staticKey string

func (k staticKey) APIKey() string { return string(k) }

var testRoute = models.Route{
	Origin:      models.Coordinates{Lat: 52.244904, Lng: -7.136517},
	Destination: models.Coordinates{Lat: 52.252018, Lng: -7.096286},
}

func matrixBody(duration, durationInTraffic int) string {
	return fmt.Sprintf(`{
		"status": "OK",
		"rows": [{"elements": [{
			"status": "OK",
			"duration": {"value": %d, "text": "x"},
			"duration_in_traffic": {"value": %d, "text": "y"}
		}]}]
	}`, duration, durationInTraffic)
}

func TestDirectionsClientParsesDurations(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"origins":        r.URL.Query().Get("origins"),
			"destinations":   r.URL.Query().Get("destinations"),
			"departure_time": r.URL.Query().Get("departure_time"),
			"key":            r.URL.Query().Get("key"),
		}
		fmt.Fprint(w, matrixBody(1000, 1400))
	}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("test-key"))
	sample, err := client.Sample(context.Background(), testRoute)
	require.NoError(t, err)

	assert.Equal(t, 1000, sample.DurationWithoutTraffic)
	assert.Equal(t, 1400, sample.DurationWithTraffic)
	assert.Equal(t, 400, sample.Delta())
	assert.Equal(t, models.ColorRed, sample.Color())
	assert.NotEmpty(t, sample.ID)

	assert.Equal(t, "52.244904,-7.136517", gotQuery["origins"])
	assert.Equal(t, "52.252018,-7.096286", gotQuery["destinations"])
	assert.Equal(t, "now", gotQuery["departure_time"])
	assert.Equal(t, "test-key", gotQuery["key"])
}

func TestDirectionsClientEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("k"))
	_, err := client.Sample(context.Background(), testRoute)
	assert.ErrorContains(t, err, "empty")
}

func TestDirectionsClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "rows": [`)
	}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("k"))
	_, err := client.Sample(context.Background(), testRoute)
	assert.Error(t, err)
}

func TestDirectionsClientNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "bad key", "rows": []}`)
	}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("k"))
	_, err := client.Sample(context.Background(), testRoute)
	assert.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestDirectionsClientNonOKElementStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`)
	}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("k"))
	_, err := client.Sample(context.Background(), testRoute)
	assert.ErrorContains(t, err, "ZERO_RESULTS")
}

func TestDirectionsClientMissingDurations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OK", "rows": [{"elements": [{"status": "OK", "duration": {"value": 100}}]}]}`)
	}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("k"))
	_, err := client.Sample(context.Background(), testRoute)
	assert.ErrorContains(t, err, "duration")
}

func TestDirectionsClientNoCredential(t *testing.T) {
	client := NewDirectionsClient("http://unused.invalid", staticKey(""))
	_, err := client.Sample(context.Background(), testRoute)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestDirectionsClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewDirectionsClient(server.URL, staticKey("k"))
	_, err := client.Sample(context.Background(), testRoute)
	assert.ErrorContains(t, err, "500")
}
