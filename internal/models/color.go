package models

import "fmt"

// ColorState is the traffic classification shown on the strip.
type ColorState int

const (
	ColorGreen ColorState = iota
	ColorYellow
	ColorRed
)

// Thresholds on the traffic delta, in seconds.
const (
	yellowThreshold = 60
	redThreshold    = 300
)

func (c ColorState) String() string {
	switch c {
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	default:
		return fmt.Sprintf("ColorState(%d)", int(c))
	}
}

// ParseColorState maps the string form back to a ColorState.
func ParseColorState(s string) (ColorState, error) {
	switch s {
	case "green":
		return ColorGreen, nil
	case "yellow":
		return ColorYellow, nil
	case "red":
		return ColorRed, nil
	default:
		return ColorGreen, fmt.Errorf("unknown color state %q", s)
	}
}

// Classify derives the display color from the baseline and in-traffic travel
// durations, both in seconds. Only the delta matters: more than five minutes
// of added travel time is red, more than one minute is yellow, anything else
// (including a negative delta) is green.
func Classify(withoutTraffic, withTraffic int) ColorState {
	delta := withTraffic - withoutTraffic
	switch {
	case delta > redThreshold:
		return ColorRed
	case delta > yellowThreshold:
		return ColorYellow
	default:
		return ColorGreen
	}
}
