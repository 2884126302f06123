//go:build js && wasm

package webgl

import (
	"fmt"
	"syscall/js"

	"github.com/hubastard/bounce/engine/assets"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/encoder"
	"github.com/hubastard/bounce/engine/sim"
)

type glConsts struct {
	arrayBuffer    int
	dynamicDraw    int
	floatType      int
	triangles      int
	colorBufferBit int
	depthTest      int
	blend          int
	compileStatus  int
	linkStatus     int
	vertexShader   int
	fragmentShader int
}

// gpuBuffer pairs a GL buffer with the typed arrays used to stage uploads.
// The Float32Array and its byte view are created once and reused every frame.
type gpuBuffer struct {
	id    js.Value
	f32   js.Value
	bytes js.Value
}

// RendererWebGL draws the encoder's triangle list into a WebGL2 context.
type RendererWebGL struct {
	gl     js.Value
	consts glConsts
	enc    *encoder.FrameEncoder

	program js.Value
	vao     js.Value
	pos     gpuBuffer
	col     gpuBuffer
	posLoc  int
	colLoc  int
}

// New builds the program and both buffers on canvas's webgl2 context.
func New(canvas js.Value, state *sim.State) (*RendererWebGL, error) {
	gl := canvas.Call("getContext", "webgl2")
	if gl.IsUndefined() || gl.IsNull() {
		return nil, fmt.Errorf("context: webgl2 is not available")
	}
	r := &RendererWebGL{gl: gl, enc: encoder.New(state), program: js.Null(), vao: js.Null()}
	r.consts = glConsts{
		arrayBuffer:    gl.Get("ARRAY_BUFFER").Int(),
		dynamicDraw:    gl.Get("DYNAMIC_DRAW").Int(),
		floatType:      gl.Get("FLOAT").Int(),
		triangles:      gl.Get("TRIANGLES").Int(),
		colorBufferBit: gl.Get("COLOR_BUFFER_BIT").Int(),
		depthTest:      gl.Get("DEPTH_TEST").Int(),
		blend:          gl.Get("BLEND").Int(),
		compileStatus:  gl.Get("COMPILE_STATUS").Int(),
		linkStatus:     gl.Get("LINK_STATUS").Int(),
		vertexShader:   gl.Get("VERTEX_SHADER").Int(),
		fragmentShader: gl.Get("FRAGMENT_SHADER").Int(),
	}

	if err := r.init(); err != nil {
		r.Shutdown()
		return nil, err
	}
	return r, nil
}

func (r *RendererWebGL) init() error {
	src, err := assets.GLSLES300()
	if err != nil {
		return err
	}
	if r.program, err = r.buildProgram(src.Vertex, src.Fragment); err != nil {
		return fmt.Errorf("program: %w", err)
	}

	// Looked up once; the hot path never queries locations.
	r.posLoc = r.gl.Call("getAttribLocation", r.program, assets.PositionAttrib).Int()
	r.colLoc = r.gl.Call("getAttribLocation", r.program, assets.ColorAttrib).Int()
	if r.posLoc < 0 || r.colLoc < 0 {
		return fmt.Errorf("program: attributes not found (%s=%d, %s=%d)",
			assets.PositionAttrib, r.posLoc, assets.ColorAttrib, r.colLoc)
	}

	r.vao = r.gl.Call("createVertexArray")
	if r.vao.IsNull() {
		return fmt.Errorf("vertex array: create failed")
	}
	r.gl.Call("bindVertexArray", r.vao)
	defer r.gl.Call("bindVertexArray", js.Null())

	if r.pos, err = r.newBuffer("position buffer", len(r.enc.Positions())); err != nil {
		return err
	}
	r.gl.Call("enableVertexAttribArray", r.posLoc)
	r.gl.Call("vertexAttribPointer", r.posLoc, encoder.PositionSize, r.consts.floatType, false, 0, 0)

	if r.col, err = r.newBuffer("color buffer", len(r.enc.Colors())); err != nil {
		return err
	}
	r.gl.Call("enableVertexAttribArray", r.colLoc)
	r.gl.Call("vertexAttribPointer", r.colLoc, encoder.ColorSize, r.consts.floatType, false, 0, 0)
	r.gl.Call("bindBuffer", r.consts.arrayBuffer, js.Null())

	r.gl.Call("disable", r.consts.depthTest)
	r.gl.Call("disable", r.consts.blend)

	w, h := r.enc.State().CanvasSize()
	r.Resize(int(w), int(h))

	core.Logger().Info("webgl ready",
		"version", r.gl.Call("getParameter", r.gl.Get("VERSION")).String(),
		"vertices", r.enc.VertexCount())
	return nil
}

func (r *RendererWebGL) newBuffer(name string, floats int) (gpuBuffer, error) {
	id := r.gl.Call("createBuffer")
	if id.IsNull() {
		return gpuBuffer{}, fmt.Errorf("%s: create failed", name)
	}
	f32 := js.Global().Get("Float32Array").New(floats)
	r.gl.Call("bindBuffer", r.consts.arrayBuffer, id)
	r.gl.Call("bufferData", r.consts.arrayBuffer, floats*4, r.consts.dynamicDraw)
	return gpuBuffer{
		id:    id,
		f32:   f32,
		bytes: js.Global().Get("Uint8Array").New(f32.Get("buffer")),
	}, nil
}

// Update advances the simulation and re-encodes the CPU buffers.
func (r *RendererWebGL) Update() { r.enc.Update() }

// Render clears to black, uploads both buffers in full and issues one draw.
func (r *RendererWebGL) Render() {
	r.gl.Call("clearColor", colors.Black.R, colors.Black.G, colors.Black.B, colors.Black.A)
	r.gl.Call("clear", r.consts.colorBufferBit)

	n := r.enc.VertexCount()
	if n == 0 {
		return
	}
	r.upload(r.pos, r.enc.PositionBytes())
	r.upload(r.col, r.enc.ColorBytes())

	r.gl.Call("useProgram", r.program)
	r.gl.Call("bindVertexArray", r.vao)
	r.gl.Call("drawArrays", r.consts.triangles, 0, n)
	r.gl.Call("bindVertexArray", js.Null())
}

func (r *RendererWebGL) upload(b gpuBuffer, data []byte) {
	js.CopyBytesToJS(b.bytes, data)
	r.gl.Call("bindBuffer", r.consts.arrayBuffer, b.id)
	r.gl.Call("bufferSubData", r.consts.arrayBuffer, 0, b.f32)
}

func (r *RendererWebGL) Resize(w, h int) {
	r.gl.Call("viewport", 0, 0, w, h)
}

func (r *RendererWebGL) Encoder() *encoder.FrameEncoder { return r.enc }

func (r *RendererWebGL) Shutdown() {
	for _, b := range []*gpuBuffer{&r.col, &r.pos} {
		if b.id.Truthy() {
			r.gl.Call("deleteBuffer", b.id)
			*b = gpuBuffer{}
		}
	}
	if r.vao.Truthy() {
		r.gl.Call("deleteVertexArray", r.vao)
		r.vao = js.Null()
	}
	if r.program.Truthy() {
		r.gl.Call("deleteProgram", r.program)
		r.program = js.Null()
	}
}

func (r *RendererWebGL) compileShader(kind int, src string) (js.Value, error) {
	sh := r.gl.Call("createShader", kind)
	r.gl.Call("shaderSource", sh, src)
	r.gl.Call("compileShader", sh)
	if !r.gl.Call("getShaderParameter", sh, r.consts.compileStatus).Bool() {
		log := r.gl.Call("getShaderInfoLog", sh).String()
		r.gl.Call("deleteShader", sh)
		return js.Null(), fmt.Errorf("shader compile error: %s", log)
	}
	return sh, nil
}

func (r *RendererWebGL) buildProgram(vsSrc, fsSrc string) (js.Value, error) {
	vs, err := r.compileShader(r.consts.vertexShader, vsSrc)
	if err != nil {
		return js.Null(), err
	}
	fs, err := r.compileShader(r.consts.fragmentShader, fsSrc)
	if err != nil {
		r.gl.Call("deleteShader", vs)
		return js.Null(), err
	}

	prog := r.gl.Call("createProgram")
	r.gl.Call("attachShader", prog, vs)
	r.gl.Call("attachShader", prog, fs)
	r.gl.Call("linkProgram", prog)
	r.gl.Call("deleteShader", vs)
	r.gl.Call("deleteShader", fs)

	if !r.gl.Call("getProgramParameter", prog, r.consts.linkStatus).Bool() {
		log := r.gl.Call("getProgramInfoLog", prog).String()
		r.gl.Call("deleteProgram", prog)
		return js.Null(), fmt.Errorf("program link error: %s", log)
	}
	return prog, nil
}
