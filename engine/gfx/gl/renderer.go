package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/bounce/engine/assets"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/encoder"
	"github.com/hubastard/bounce/engine/sim"
)

const floatSize = 4

// RendererGL draws the encoder's triangle list with one VAO and two dynamic
// vertex buffers. A GL context must be current on the calling thread.
type RendererGL struct {
	enc *encoder.FrameEncoder

	program uint32
	vao     uint32
	posVBO  uint32
	colVBO  uint32
	posLoc  uint32
	colLoc  uint32
}

// New compiles the program and allocates both buffers at their final size.
// On error every object created so far is released.
func New(state *sim.State) (*RendererGL, error) {
	r := &RendererGL{enc: encoder.New(state)}
	if err := r.init(state); err != nil {
		r.Shutdown()
		return nil, err
	}
	return r, nil
}

func (r *RendererGL) init(state *sim.State) error {
	core.Logger().Info("gl device",
		"vendor", gl.GoStr(gl.GetString(gl.VENDOR)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)))

	src, err := assets.GLSL330()
	if err != nil {
		return err
	}
	r.program, err = makeProgram(src.Vertex, src.Fragment)
	if err != nil {
		return fmt.Errorf("program: %w", err)
	}
	if r.posLoc, err = attribLocation(r.program, assets.PositionAttrib); err != nil {
		return err
	}
	if r.colLoc, err = attribLocation(r.program, assets.ColorAttrib); err != nil {
		return err
	}

	gl.GenVertexArrays(1, &r.vao)
	if r.vao == 0 {
		return fmt.Errorf("vertex array: glGenVertexArrays returned 0")
	}
	gl.BindVertexArray(r.vao)
	defer gl.BindVertexArray(0)

	if r.posVBO, err = allocBuffer("position buffer", bufferBytes(r.enc.Positions())); err != nil {
		return err
	}
	gl.EnableVertexAttribArray(r.posLoc)
	gl.VertexAttribPointer(r.posLoc, encoder.PositionSize, gl.FLOAT, false, 0, gl.PtrOffset(0))

	if r.colVBO, err = allocBuffer("color buffer", bufferBytes(r.enc.Colors())); err != nil {
		return err
	}
	gl.EnableVertexAttribArray(r.colLoc)
	gl.VertexAttribPointer(r.colLoc, encoder.ColorSize, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	w, h := state.CanvasSize()
	r.Resize(int(w), int(h))

	core.Logger().Debug("gl buffers",
		"positions", bufferBytes(r.enc.Positions()),
		"colors", bufferBytes(r.enc.Colors()),
		"vertices", r.enc.VertexCount())
	return nil
}

// Update advances the simulation and re-encodes the CPU buffers.
func (r *RendererGL) Update() { r.enc.Update() }

// Render clears to black, uploads both buffers in full and issues one draw.
func (r *RendererGL) Render() {
	bg := colors.Black.Float32()
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)

	n := r.enc.VertexCount()
	if n == 0 {
		return
	}

	pos, col := r.enc.Positions(), r.enc.Colors()
	gl.BindBuffer(gl.ARRAY_BUFFER, r.posVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, bufferBytes(pos), gl.Ptr(pos))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, bufferBytes(col), gl.Ptr(col))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.UseProgram(r.program)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(n))
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func (r *RendererGL) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (r *RendererGL) Encoder() *encoder.FrameEncoder { return r.enc }

func (r *RendererGL) Shutdown() {
	if r.colVBO != 0 {
		gl.DeleteBuffers(1, &r.colVBO)
		r.colVBO = 0
	}
	if r.posVBO != 0 {
		gl.DeleteBuffers(1, &r.posVBO)
		r.posVBO = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

func bufferBytes(buf []float32) int { return len(buf) * floatSize }

func allocBuffer(name string, size int) (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("%s: glGenBuffers returned 0", name)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteBuffers(1, &id)
		return 0, fmt.Errorf("%s: allocate %d bytes: gl error 0x%x", name, size, e)
	}
	return id, nil
}

func attribLocation(program uint32, name string) (uint32, error) {
	loc := gl.GetAttribLocation(program, gl.Str(name+"\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("attribute %q not found in program", name)
	}
	return uint32(loc), nil
}

// --- Shader utilities ---

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen)+1)
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", trimLog(log))
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen)+1)
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", trimLog(log))
	}
	return prog, nil
}

func trimLog(s string) string {
	return strings.TrimRight(s, "\x00\n ")
}
