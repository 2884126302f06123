package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed shaders
var shaderFS embed.FS

// Attribute names and locations shared by every shader dialect.
const (
	PositionAttrib   = "a_position"
	ColorAttrib      = "a_color"
	PositionLocation = 0
	ColorLocation    = 1
)

// WGSL entry points.
const (
	WGSLVertexEntry   = "vs_main"
	WGSLFragmentEntry = "fs_main"
)

// ShaderPair is a vertex and fragment source for one GLSL dialect.
type ShaderPair struct {
	Vertex   string
	Fragment string
}

// Shader reads an embedded shader source by file name.
func Shader(name string) (string, error) {
	b, err := fs.ReadFile(shaderFS, "shaders/"+name)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", name, err)
	}
	return string(b), nil
}

// LoadShader returns the source null-terminated for gl.Strs.
func LoadShader(name string) (string, error) {
	src, err := Shader(name)
	if err != nil {
		return "", err
	}
	if len(src) == 0 || src[len(src)-1] != 0 {
		src += "\x00"
	}
	return src, nil
}

// GLSL330 returns the desktop OpenGL 3.3 core program, null-terminated.
func GLSL330() (ShaderPair, error) {
	return loadPair(LoadShader, "rect.vert.glsl", "rect.frag.glsl")
}

// GLSLES300 returns the WebGL2 program.
func GLSLES300() (ShaderPair, error) {
	return loadPair(Shader, "rect_es.vert.glsl", "rect_es.frag.glsl")
}

// WGSL returns the WebGPU module holding both entry points.
func WGSL() (string, error) {
	return Shader("rect.wgsl")
}

func loadPair(load func(string) (string, error), vert, frag string) (ShaderPair, error) {
	v, err := load(vert)
	if err != nil {
		return ShaderPair{}, err
	}
	f, err := load(frag)
	if err != nil {
		return ShaderPair{}, err
	}
	return ShaderPair{Vertex: v, Fragment: f}, nil
}
