package models

import (
	"fmt"
	"time"

	"github.com/lucsky/cuid"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the point in the "lat,lng" form routing APIs expect.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Route is the fixed origin/destination pair the display watches.
type Route struct {
	Origin      Coordinates `json:"origin"`
	Destination Coordinates `json:"destination"`
}

// TrafficSample is one poll result: baseline and in-traffic travel durations
// for the route, in seconds.
type TrafficSample struct {
	ID                     string    `json:"id"`
	Route                  Route     `json:"route"`
	DurationWithoutTraffic int       `json:"duration_sec"`
	DurationWithTraffic    int       `json:"duration_in_traffic_sec"`
	SampledAt              time.Time `json:"sampled_at"`
}

func NewTrafficSample(route Route, withoutTraffic, withTraffic int, at time.Time) TrafficSample {
	return TrafficSample{
		ID:                     cuid.New(),
		Route:                  route,
		DurationWithoutTraffic: withoutTraffic,
		DurationWithTraffic:    withTraffic,
		SampledAt:              at,
	}
}

// Delta is the added travel time caused by traffic, in seconds.
func (s TrafficSample) Delta() int {
	return s.DurationWithTraffic - s.DurationWithoutTraffic
}

// Color classifies the sample.
func (s TrafficSample) Color() ColorState {
	return Classify(s.DurationWithoutTraffic, s.DurationWithTraffic)
}
