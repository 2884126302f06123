package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/hubastard/bounce/engine/shapes"
)

var (
	ErrNoRectangles   = errors.New("rectangle count must be greater than 0")
	ErrCanvasTooSmall = fmt.Errorf("canvas must be larger than %gx%g pixels", shapes.MaxSize, shapes.MaxSize)
)

// Options configures a new State.
type Options struct {
	Count         int
	Width, Height float64
	// Source feeds rectangle generation. Nil seeds a PCG from the clock.
	Source shapes.Source
	// Workers > 1 spreads Update over a worker pool in contiguous chunks.
	// It is clamped to Count, and the pool lives until State.Close.
	Workers int
	// AllowEmpty permits Count == 0 (empty buffers, nothing drawn).
	AllowEmpty bool
}

// State owns the rectangles and the canonical canvas size.
type State struct {
	rects         []shapes.Rectangle
	width, height float64

	workers int
	pool    worker.DynamicWorkerPool
	chunks  [][2]int
}

// New validates opts and generates the rectangles. Nothing is returned on error.
func New(opts Options) (*State, error) {
	if opts.Count < 0 || (opts.Count == 0 && !opts.AllowEmpty) {
		return nil, fmt.Errorf("%w: got %d", ErrNoRectangles, opts.Count)
	}
	if opts.Width <= shapes.MaxSize || opts.Height <= shapes.MaxSize {
		return nil, fmt.Errorf("%w: got %gx%g", ErrCanvasTooSmall, opts.Width, opts.Height)
	}

	src := opts.Source
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	s := &State{
		rects:  shapes.Generate(src, opts.Count, opts.Width, opts.Height),
		width:  opts.Width,
		height: opts.Height,
	}

	if opts.Workers > 1 && opts.Count > 1 {
		s.workers = min(opts.Workers, opts.Count)
		s.chunks = splitChunks(opts.Count, s.workers)
		s.pool = worker.NewDynamicWorkerPool(s.workers, len(s.chunks), time.Second)
	}
	return s, nil
}

// Update advances every rectangle one tick against the current canvas size.
func (s *State) Update() {
	w, h := s.width, s.height
	if s.pool == nil {
		for i := range s.rects {
			s.rects[i].Update(w, h)
		}
		return
	}

	// Per-tick barrier; rectangles never interact so chunks are independent.
	var wg sync.WaitGroup
	for id, c := range s.chunks {
		part := s.rects[c[0]:c[1]]
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := range part {
					part[i].Update(w, h)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// SetCanvasSize takes effect on the next Update. Rectangles are not moved.
func (s *State) SetCanvasSize(w, h float64) {
	s.width = w
	s.height = h
}

// Close stops the worker pool. Update keeps working sequentially afterwards.
// Calling Close more than once is fine.
func (s *State) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Stop()
	s.pool = nil
	s.workers = 0
}

func (s *State) CanvasSize() (w, h float64) { return s.width, s.height }

// Rectangles exposes the live sequence in render order. Callers must not
// append to or reslice it.
func (s *State) Rectangles() []shapes.Rectangle { return s.rects }

func (s *State) Len() int { return len(s.rects) }

// Workers reports how many chunks Update is split into; 0 means sequential.
func (s *State) Workers() int { return s.workers }

func splitChunks(n, parts int) [][2]int {
	size := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}
