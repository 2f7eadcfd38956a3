package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name           string
		withoutTraffic int
		withTraffic    int
		want           ColorState
	}{
		{"delta of exactly 60s is green", 1000, 1060, ColorGreen},
		{"delta of 61s is yellow", 1000, 1061, ColorYellow},
		{"delta of exactly 300s is yellow", 1000, 1300, ColorYellow},
		{"delta of 301s is red", 1000, 1301, ColorRed},
		{"zero delta is green", 1000, 1000, ColorGreen},
		{"negative delta is green", 1000, 900, ColorGreen},
		{"zero durations are green", 0, 0, ColorGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.withoutTraffic, tt.withTraffic))
		})
	}
}

func TestClassifyScenarios(t *testing.T) {
	assert.Equal(t, ColorGreen, Classify(1000, 1050))
	assert.Equal(t, ColorYellow, Classify(1000, 1100))
	assert.Equal(t, ColorRed, Classify(1000, 1400))
}

func TestClassifyIsIdempotent(t *testing.T) {
	for _, pair := range [][2]int{{1000, 1050}, {1000, 1100}, {1000, 1400}, {0, 0}} {
		first := Classify(pair[0], pair[1])
		second := Classify(pair[0], pair[1])
		assert.Equal(t, first, second)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Every non-negative input lands on exactly one of the three states.
	for without := 0; without <= 500; without += 50 {
		for with := 0; with <= 2000; with += 77 {
			got := Classify(without, with)
			assert.Contains(t, []ColorState{ColorGreen, ColorYellow, ColorRed}, got)
		}
	}
}

func TestColorStateStringRoundTrip(t *testing.T) {
	for _, state := range []ColorState{ColorGreen, ColorYellow, ColorRed} {
		parsed, err := ParseColorState(state.String())
		assert.NoError(t, err)
		assert.Equal(t, state, parsed)
	}

	_, err := ParseColorState("purple")
	assert.Error(t, err)
}

func TestTrafficSampleDeltaAndColor(t *testing.T) {
	route := Route{
		Origin:      Coordinates{Lat: 52.244904, Lng: -7.136517},
		Destination: Coordinates{Lat: 52.252018, Lng: -7.096286},
	}
	sample := NewTrafficSample(route, 1000, 1400, time.Now())

	assert.NotEmpty(t, sample.ID)
	assert.Equal(t, 400, sample.Delta())
	assert.Equal(t, ColorRed, sample.Color())
}
