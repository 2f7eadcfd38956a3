package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepFillsLeftToRight(t *testing.T) {
	anim := Sweep(4, Green, Red, false)
	assert.Equal(t, 4, anim.Len())

	first, ok := anim.Next()
	require.True(t, ok)
	assert.Equal(t, Frame{Red, Green, Green, Green}, first)

	anim.Next()
	third, ok := anim.Next()
	require.True(t, ok)
	assert.Equal(t, Frame{Red, Red, Red, Green}, third)

	last, ok := anim.Next()
	require.True(t, ok)
	assert.Equal(t, Frame{Red, Red, Red, Red}, last)

	_, ok = anim.Next()
	assert.False(t, ok)
	assert.True(t, anim.Done())
}

func TestSweepReversedFillsRightToLeft(t *testing.T) {
	anim := Sweep(3, Green, Yellow, true)

	first, ok := anim.Next()
	require.True(t, ok)
	assert.Equal(t, Frame{Green, Green, Yellow}, first)
}

func TestSweepIsDeterministic(t *testing.T) {
	a, b := Sweep(5, Green, Red, false), Sweep(5, Green, Red, false)
	for {
		fa, oka := a.Next()
		fb, okb := b.Next()
		assert.Equal(t, oka, okb)
		if !oka {
			break
		}
		assert.Equal(t, fa, fb)
	}
}

func TestTwinkleStartsAndEndsOnBase(t *testing.T) {
	const pixels = 3
	const pause = 2
	anim := Twinkle(pixels, Green, pause)

	// Up sweep + pause + down sweep.
	assert.Equal(t, pixels+pause+pixels, anim.Len())

	var frames []Frame
	for {
		f, ok := anim.Next()
		if !ok {
			break
		}
		frames = append(frames, f)
	}

	tint := Green.Lighter()

	// The sweep up begins from the base color and ends fully tinted.
	assert.Equal(t, Frame{tint, Green, Green}, frames[0])
	assert.Equal(t, Frame{tint, tint, tint}, frames[pixels-1])

	// Pause holds the tint.
	assert.Equal(t, Frame{tint, tint, tint}, frames[pixels])

	// The final frame restores the base color everywhere.
	assert.Equal(t, Frame{Green, Green, Green}, frames[len(frames)-1])
}

func TestNilAnimationIsDone(t *testing.T) {
	var anim *Animation
	assert.True(t, anim.Done())
	assert.Equal(t, 0, anim.Len())

	_, ok := anim.Next()
	assert.False(t, ok)
}
