package encoder

import (
	"unsafe"

	"github.com/hubastard/bounce/engine/sim"
)

// Per-rectangle layout: two triangles, 6 vertices, tightly packed.
const (
	VerticesPerRect  = 6
	PositionSize     = 2 // floats per vertex
	ColorSize        = 4 // floats per vertex
	PositionsPerRect = VerticesPerRect * PositionSize
	ColorsPerRect    = VerticesPerRect * ColorSize
)

// Statistics captures what the last encoded frame will submit.
type Statistics struct {
	Frames    uint64
	RectCount int
}

// TotalVertexCount reports vertices per draw call.
func (s Statistics) TotalVertexCount() int { return s.RectCount * VerticesPerRect }

// FrameEncoder converts simulation state into flat clip-space position and
// color buffers. Both buffers are sized once at construction and rewritten in
// place every frame.
type FrameEncoder struct {
	state     *sim.State
	positions []float32
	colors    []float32
	stats     Statistics
}

// New allocates buffers for the state's fixed rectangle count.
func New(state *sim.State) *FrameEncoder {
	n := state.Len()
	return &FrameEncoder{
		state:     state,
		positions: make([]float32, n*PositionsPerRect),
		colors:    make([]float32, n*ColorsPerRect),
		stats:     Statistics{RectCount: n},
	}
}

// Update advances the simulation one tick and re-encodes the buffers.
func (e *FrameEncoder) Update() {
	e.state.Update()
	e.Encode()
}

// Encode rewrites both buffers from the current state. Canvas size is read
// by copy so a resize between frames only affects the next Encode.
func (e *FrameEncoder) Encode() {
	cw, ch := e.state.CanvasSize()
	sx := 2 / float32(cw)
	sy := 2 / float32(ch)

	pos := e.positions
	col := e.colors
	for i := range e.state.Rectangles() {
		r := &e.state.Rectangles()[i]

		x1 := float32(r.X)*sx - 1
		y1 := -(float32(r.Y)*sy - 1)
		x2 := (float32(r.X)+float32(r.Width))*sx - 1
		y2 := -((float32(r.Y)+float32(r.Height))*sy - 1)

		// TL, TR, BL then BL, TR, BR.
		p := pos[i*PositionsPerRect : (i+1)*PositionsPerRect : (i+1)*PositionsPerRect]
		p[0], p[1] = x1, y1
		p[2], p[3] = x2, y1
		p[4], p[5] = x1, y2
		p[6], p[7] = x1, y2
		p[8], p[9] = x2, y1
		p[10], p[11] = x2, y2

		rgba := r.Color().Float32()
		c := col[i*ColorsPerRect : (i+1)*ColorsPerRect : (i+1)*ColorsPerRect]
		for v := 0; v < VerticesPerRect; v++ {
			copy(c[v*ColorSize:], rgba[:])
		}
	}
	e.stats.Frames++
}

func (e *FrameEncoder) Positions() []float32 { return e.positions }
func (e *FrameEncoder) Colors() []float32    { return e.colors }

// PositionBytes and ColorBytes view the buffers as raw bytes for upload APIs
// that take byte slices. The views alias the buffers; nothing is copied.
func (e *FrameEncoder) PositionBytes() []byte { return floatBytes(e.positions) }
func (e *FrameEncoder) ColorBytes() []byte    { return floatBytes(e.colors) }

// VertexCount is the triangle-list vertex count for one draw call.
func (e *FrameEncoder) VertexCount() int { return len(e.positions) / PositionSize }
func (e *FrameEncoder) RectCount() int   { return e.stats.RectCount }

func (e *FrameEncoder) State() *sim.State { return e.state }

// Stats returns the current frame statistics snapshot.
func (e *FrameEncoder) Stats() Statistics { return e.stats }

func floatBytes(buf []float32) []byte {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*4)
}
