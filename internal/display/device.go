package display

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleDevice draws the strip as a row of colored cells on an ANSI
// terminal, redrawing in place. It stands in for the physical strip during
// development.
type ConsoleDevice struct {
	mu    sync.Mutex
	w     io.Writer
	order ByteOrder
}

func NewConsoleDevice(w io.Writer, order ByteOrder) *ConsoleDevice {
	return &ConsoleDevice{w: w, order: order}
}

func (d *ConsoleDevice) Render(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := fmt.Fprint(d.w, "\r"); err != nil {
		return err
	}
	for i := 0; i+bytesPerPixel <= len(frame); i += bytesPerPixel {
		r, g, b := frame[i], frame[i+1], frame[i+2]
		if d.order == OrderGRB {
			r, g = g, r
		}
		if _, err := fmt.Fprintf(d.w, "\x1b[48;2;%d;%d;%dm  ", r, g, b); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(d.w, "\x1b[0m")
	return err
}

// BufferDevice captures the last rendered frame. Used by tests and as the
// source for the status endpoint's strip preview.
type BufferDevice struct {
	mu     sync.Mutex
	last   []byte
	frames int
}

func NewBufferDevice() *BufferDevice {
	return &BufferDevice{}
}

func (d *BufferDevice) Render(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = make([]byte, len(frame))
	copy(d.last, frame)
	d.frames++
	return nil
}

// Last returns a copy of the most recent frame, or nil before the first
// render.
func (d *BufferDevice) Last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return nil
	}
	out := make([]byte, len(d.last))
	copy(out, d.last)
	return out
}

// Frames reports how many frames have been rendered.
func (d *BufferDevice) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}
