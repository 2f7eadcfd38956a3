package display

// Animation is a precomputed frame sequence the monitor advances one frame
// per clock tick. There are no delays in here; pacing belongs to the caller's
// tick schedule.
type Animation struct {
	frames []Frame
	pos    int
}

// Next returns the next frame, or (nil, false) once the sequence is
// exhausted.
func (a *Animation) Next() (Frame, bool) {
	if a == nil || a.pos >= len(a.frames) {
		return nil, false
	}
	f := a.frames[a.pos]
	a.pos++
	return f, true
}

func (a *Animation) Done() bool {
	return a == nil || a.pos >= len(a.frames)
}

// Len reports the total frame count.
func (a *Animation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.frames)
}

func solid(pixels int, c RGB) Frame {
	f := make(Frame, pixels)
	for i := range f {
		f[i] = c
	}
	return f
}

// Sweep fills the strip pixel by pixel from the previous color to the new
// one, one frame per pixel. With reverse set the fill runs right to left.
func Sweep(pixels int, from, to RGB, reverse bool) *Animation {
	frames := make([]Frame, 0, pixels)
	for step := 1; step <= pixels; step++ {
		f := make(Frame, pixels)
		for i := range f {
			filled := i < step
			if reverse {
				filled = i >= pixels-step
			}
			if filled {
				f[i] = to
			} else {
				f[i] = from
			}
		}
		frames = append(frames, f)
	}
	return &Animation{frames: frames}
}

// Twinkle sweeps the strip to a lighter tint of the base color and back,
// holding the tint for pauseFrames in between. The sequence starts and ends
// on the base color so the idle display is unchanged afterwards.
func Twinkle(pixels int, base RGB, pauseFrames int) *Animation {
	tint := base.Lighter()

	up := Sweep(pixels, base, tint, false)
	down := Sweep(pixels, tint, base, true)

	frames := make([]Frame, 0, up.Len()+pauseFrames+down.Len())
	frames = append(frames, up.frames...)
	for i := 0; i < pauseFrames; i++ {
		frames = append(frames, solid(pixels, tint))
	}
	frames = append(frames, down.frames...)
	return &Animation{frames: frames}
}
