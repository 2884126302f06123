package platform

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
)

// SurfaceDescriptor returns the platform surface for a NoAPI window, or nil
// for a window that owns a GL context.
func (g *GLFWWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if g.glContext {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(g.w)
}
