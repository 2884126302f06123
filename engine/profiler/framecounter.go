package profiler

import (
	"fmt"
	"time"
)

// FrameCounter publishes a frames-per-second figure once every Window.
type FrameCounter struct {
	Window time.Duration

	last   time.Time
	frames int
	fps    int
}

func NewFrameCounter(now time.Time) *FrameCounter {
	return &FrameCounter{Window: time.Second, last: now}
}

// Frame records a presented frame. It returns true when a new FPS value
// was published, which happens once the window has fully elapsed.
func (c *FrameCounter) Frame(now time.Time) bool {
	c.frames++
	if now.Sub(c.last) < c.Window {
		return false
	}
	c.fps = c.frames
	c.frames = 0
	c.last = now
	return true
}

// FPS is the frame count of the last completed window.
func (c *FrameCounter) FPS() int { return c.fps }

func (c *FrameCounter) String() string { return fmt.Sprintf("FPS: %d", c.fps) }
