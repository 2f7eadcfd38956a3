// Package display models the addressable LED strip: a fixed-length pixel
// buffer with gamma correction and a hardware byte-order calibration,
// rendered through pluggable devices.
package display

import (
	"fmt"
	"sync"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

const bytesPerPixel = 3

// RGB is one pixel color, pre-gamma.
type RGB struct {
	R, G, B uint8
}

// Lighter returns the tint the twinkle animation pulses to: each channel
// halfway toward full brightness.
func (c RGB) Lighter() RGB {
	return RGB{
		R: c.R + (255-c.R)/2,
		G: c.G + (255-c.G)/2,
		B: c.B + (255-c.B)/2,
	}
}

var (
	Green  = RGB{G: 255}
	Yellow = RGB{R: 255, G: 191}
	Red    = RGB{R: 255}
)

// ColorFor maps a traffic classification to its strip color.
func ColorFor(state models.ColorState) RGB {
	switch state {
	case models.ColorRed:
		return Red
	case models.ColorYellow:
		return Yellow
	default:
		return Green
	}
}

// ByteOrder is the per-hardware channel ordering on the wire. The strip this
// was built for swaps red and green, so GRB is the default calibration.
type ByteOrder int

const (
	OrderRGB ByteOrder = iota
	OrderGRB
)

func ParseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "rgb":
		return OrderRGB, nil
	case "grb", "":
		return OrderGRB, nil
	default:
		return OrderGRB, fmt.Errorf("unknown byte order %q", s)
	}
}

// Device receives fully rendered wire frames.
type Device interface {
	Render(frame []byte) error
}

// Frame is one animation frame, one color per pixel.
type Frame []RGB

// Strip owns the pixel buffer and fans rendered frames out to its devices.
type Strip struct {
	mu      sync.Mutex
	order   ByteOrder
	pixels  int
	buf     []byte
	devices []Device
}

func NewStrip(pixels int, order ByteOrder, devices ...Device) *Strip {
	return &Strip{
		order:   order,
		pixels:  pixels,
		buf:     make([]byte, pixels*bytesPerPixel),
		devices: devices,
	}
}

func (s *Strip) Len() int { return s.pixels }

func (s *Strip) Order() ByteOrder { return s.order }

// AddDevice attaches another render target.
func (s *Strip) AddDevice(d Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append(s.devices, d)
}

// set writes one gamma-corrected pixel into the buffer. Caller holds s.mu.
func (s *Strip) set(i int, c RGB) {
	idx := i * bytesPerPixel
	r, g, b := gamma(c.R), gamma(c.G), gamma(c.B)
	if s.order == OrderGRB {
		s.buf[idx+0] = g
		s.buf[idx+1] = r
		s.buf[idx+2] = b
		return
	}
	s.buf[idx+0] = r
	s.buf[idx+1] = g
	s.buf[idx+2] = b
}

// Apply renders a frame to every attached device. The first device error is
// returned after all devices have been attempted.
func (s *Strip) Apply(f Frame) error {
	if len(f) != s.pixels {
		return fmt.Errorf("frame has %d pixels, strip has %d", len(f), s.pixels)
	}

	s.mu.Lock()
	for i, c := range f {
		s.set(i, c)
	}
	wire := make([]byte, len(s.buf))
	copy(wire, s.buf)
	devices := s.devices
	s.mu.Unlock()

	var firstErr error
	for _, d := range devices {
		if err := d.Render(wire); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Fill sets every pixel to one color.
func (s *Strip) Fill(c RGB) error {
	f := make(Frame, s.pixels)
	for i := range f {
		f[i] = c
	}
	return s.Apply(f)
}

// Snapshot copies the current wire buffer, for tests and the status page.
func (s *Strip) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

// gamma approximates perceptually linear brightness; LED output is non-linear
// to the eye.
func gamma(v uint8) uint8 {
	return uint8((uint16(v) * uint16(v)) / 255)
}
