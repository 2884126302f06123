package encoder

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hubastard/bounce/engine/sim"
)

type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// Single 10x10 rectangle at the origin, at rest, colored (0.2, 0.4, 0.6).
func restingState(t *testing.T, w, h float64) *sim.State {
	t.Helper()
	src := &seqSource{vals: []float64{0, 0, 0, 0, 0.5, 0.5, 0.2, 0.4, 0.6}}
	s, err := sim.New(sim.Options{Count: 1, Width: w, Height: h, Source: src})
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return s
}

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func TestBufferSizes(t *testing.T) {
	for _, n := range []int{0, 1, 5, 100} {
		s, err := sim.New(sim.Options{
			Count: n, Width: 640, Height: 480,
			Source:     rand.New(rand.NewPCG(1, 2)),
			AllowEmpty: true,
		})
		if err != nil {
			t.Fatalf("sim.New(%d): %v", n, err)
		}
		e := New(s)
		e.Update()

		if got := len(e.Positions()); got != 12*n {
			t.Errorf("N=%d: len(Positions) = %d, want %d", n, got, 12*n)
		}
		if got := len(e.Colors()); got != 24*n {
			t.Errorf("N=%d: len(Colors) = %d, want %d", n, got, 24*n)
		}
		if got := e.VertexCount(); got != 6*n {
			t.Errorf("N=%d: VertexCount = %d, want %d", n, got, 6*n)
		}
		if got := e.Stats().TotalVertexCount(); got != 6*n {
			t.Errorf("N=%d: Stats().TotalVertexCount = %d, want %d", n, got, 6*n)
		}
	}
}

func TestEncodeGoldenVertices(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		want []float32
	}{
		{
			name: "Square canvas",
			w:    100, h: 100,
			want: []float32{-1, 1, -0.8, 1, -1, 0.8, -1, 0.8, -0.8, 1, -0.8, 0.8},
		},
		{
			name: "Wide canvas",
			w:    200, h: 100,
			want: []float32{-1, 1, -0.9, 1, -1, 0.8, -1, 0.8, -0.9, 1, -0.9, 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(restingState(t, tt.w, tt.h))
			e.Encode()

			got := e.Positions()
			if len(got) != len(tt.want) {
				t.Fatalf("len(Positions) = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if !approxEqual(got[i], tt.want[i]) {
					t.Errorf("Positions[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEncodeFlatColor(t *testing.T) {
	e := New(restingState(t, 100, 100))
	e.Encode()

	want := [4]float32{0.2, 0.4, 0.6, 1}
	cols := e.Colors()
	for v := 0; v < VerticesPerRect; v++ {
		for k := 0; k < ColorSize; k++ {
			if got := cols[v*ColorSize+k]; got != want[k] {
				t.Fatalf("vertex %d channel %d = %v, want %v", v, k, got, want[k])
			}
		}
	}
}

func TestResizeAffectsNextEncodeOnly(t *testing.T) {
	s := restingState(t, 100, 100)
	e := New(s)
	e.Encode()
	before := append([]float32(nil), e.Positions()...)

	s.SetCanvasSize(200, 100)
	for i := range before {
		if e.Positions()[i] != before[i] {
			t.Fatalf("resize rewrote buffer at %d before the next Encode", i)
		}
	}

	e.Encode()
	if !approxEqual(e.Positions()[2], -0.9) {
		t.Errorf("after resize x2 = %v, want -0.9", e.Positions()[2])
	}
}

func TestUpdateAdvancesSimulation(t *testing.T) {
	s, err := sim.New(sim.Options{Count: 20, Width: 400, Height: 300, Source: rand.New(rand.NewPCG(9, 9))})
	if err != nil {
		t.Fatal(err)
	}
	e := New(s)
	first := s.Rectangles()[0]

	e.Update()
	if s.Rectangles()[0] == first {
		t.Errorf("Update did not advance the simulation")
	}
	if e.Stats().Frames != 1 {
		t.Errorf("Frames = %d, want 1", e.Stats().Frames)
	}
}

func TestBuffersAreReused(t *testing.T) {
	s, err := sim.New(sim.Options{Count: 50, Width: 800, Height: 600, Source: rand.New(rand.NewPCG(3, 3))})
	if err != nil {
		t.Fatal(err)
	}
	e := New(s)
	p0, c0 := &e.Positions()[0], &e.Colors()[0]

	allocs := testing.AllocsPerRun(50, e.Update)
	if allocs != 0 {
		t.Errorf("Update allocated %v times per frame", allocs)
	}
	if &e.Positions()[0] != p0 || &e.Colors()[0] != c0 {
		t.Errorf("buffers were reallocated")
	}
}

func TestByteViews(t *testing.T) {
	e := New(restingState(t, 100, 100))
	e.Encode()

	pb, cb := e.PositionBytes(), e.ColorBytes()
	if len(pb) != 12*4 || len(cb) != 24*4 {
		t.Fatalf("byte lengths = %d, %d, want 48, 96", len(pb), len(cb))
	}
	if got := math.Float32frombits(binary.NativeEndian.Uint32(pb[8:])); got != e.Positions()[2] {
		t.Errorf("position byte view = %v, want %v", got, e.Positions()[2])
	}

	// Views alias the buffers.
	e.Colors()[0] = 0.75
	if got := math.Float32frombits(binary.NativeEndian.Uint32(cb)); got != 0.75 {
		t.Errorf("color byte view = %v after write, want 0.75", got)
	}
}

func TestByteViewsEmpty(t *testing.T) {
	s, err := sim.New(sim.Options{Count: 0, Width: 100, Height: 100, AllowEmpty: true})
	if err != nil {
		t.Fatal(err)
	}
	e := New(s)
	if e.PositionBytes() != nil || e.ColorBytes() != nil {
		t.Error("empty encoder should expose nil byte views")
	}
}
