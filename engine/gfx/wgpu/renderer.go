package wgpubackend

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/hubastard/bounce/engine/assets"
	"github.com/hubastard/bounce/engine/colors"
	"github.com/hubastard/bounce/engine/core"
	"github.com/hubastard/bounce/engine/gfx/encoder"
	"github.com/hubastard/bounce/engine/sim"
)

const floatSize = 4

// RendererWGPU draws the encoder's triangle list through a WebGPU surface.
type RendererWGPU struct {
	enc *encoder.FrameEncoder

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	format      wgpu.TextureFormat
	alphaMode   wgpu.CompositeAlphaMode
	presentMode wgpu.PresentMode

	module   *wgpu.ShaderModule
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.RenderPipeline
	posBuf   *wgpu.Buffer
	colBuf   *wgpu.Buffer
}

// New acquires every GPU object up front. On error whatever was acquired is
// released before returning.
func New(desc *wgpu.SurfaceDescriptor, state *sim.State, vsync bool) (*RendererWGPU, error) {
	if desc == nil {
		return nil, fmt.Errorf("surface: window has no WebGPU surface descriptor")
	}
	runtime.LockOSThread()

	r := &RendererWGPU{enc: encoder.New(state), presentMode: presentMode(vsync)}
	if err := r.init(desc); err != nil {
		r.Shutdown()
		return nil, err
	}
	return r, nil
}

func (r *RendererWGPU) init(desc *wgpu.SurfaceDescriptor) error {
	log := core.Logger()

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(desc)
	if r.surface == nil {
		return fmt.Errorf("surface: create failed")
	}

	var err error
	r.adapter, err = r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
	})
	if err != nil {
		return fmt.Errorf("adapter: %w", err)
	}
	r.device, err = r.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "bounce device"})
	if err != nil {
		return fmt.Errorf("device: %w", err)
	}
	r.queue = r.device.GetQueue()

	caps := r.surface.GetCapabilities(r.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return fmt.Errorf("surface: adapter reports no compatible formats")
	}
	r.format = caps.Formats[0]
	r.alphaMode = caps.AlphaModes[0]

	w, h := r.enc.State().CanvasSize()
	r.configure(int(w), int(h))

	if err := r.createPipeline(); err != nil {
		return err
	}

	if r.posBuf, err = r.createVertexBuffer("position buffer", bufferBytes(r.enc.Positions())); err != nil {
		return err
	}
	if r.colBuf, err = r.createVertexBuffer("color buffer", bufferBytes(r.enc.Colors())); err != nil {
		return err
	}

	log.Info("wgpu ready",
		"format", fmt.Sprint(r.format),
		"present", fmt.Sprint(r.presentMode),
		"vertices", r.enc.VertexCount())
	return nil
}

func (r *RendererWGPU) createPipeline() error {
	src, err := assets.WGSL()
	if err != nil {
		return err
	}
	r.module, err = r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "rect shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if err != nil {
		return fmt.Errorf("shader compile error: %w", err)
	}

	r.layout, err = r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{Label: "rect layout"})
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}

	r.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "rect pipeline",
		Layout: r.layout,
		Vertex: wgpu.VertexState{
			Module:     r.module,
			EntryPoint: assets.WGSLVertexEntry,
			Buffers:    vertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     r.module,
			EntryPoint: assets.WGSLFragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    r.format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("program link error: %w", err)
	}
	return nil
}

// vertexLayouts describes the two tightly packed buffers: slot 0 holds
// positions, slot 1 holds colors.
func vertexLayouts() []wgpu.VertexBufferLayout {
	return []wgpu.VertexBufferLayout{
		{
			ArrayStride: encoder.PositionSize * floatSize,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         wgpu.VertexFormatFloat32x2,
				ShaderLocation: assets.PositionLocation,
			}},
		},
		{
			ArrayStride: encoder.ColorSize * floatSize,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         wgpu.VertexFormatFloat32x4,
				ShaderLocation: assets.ColorLocation,
			}},
		},
	}
}

// createVertexBuffer returns nil for zero sizes; WebGPU rejects empty buffers.
func (r *RendererWGPU) createVertexBuffer(label string, size int) (*wgpu.Buffer, error) {
	if size == 0 {
		return nil, nil
	}
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return buf, nil
}

func (r *RendererWGPU) configure(w, h int) {
	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.format,
		Width:       uint32(w),
		Height:      uint32(h),
		PresentMode: r.presentMode,
		AlphaMode:   r.alphaMode,
	})
}

// Update advances the simulation and re-encodes the CPU buffers.
func (r *RendererWGPU) Update() { r.enc.Update() }

// Render uploads both buffers, clears to black, draws and presents. A frame
// whose surface texture cannot be acquired is skipped.
func (r *RendererWGPU) Render() {
	n := r.enc.VertexCount()
	if n > 0 {
		r.queue.WriteBuffer(r.posBuf, 0, r.enc.PositionBytes())
		r.queue.WriteBuffer(r.colBuf, 0, r.enc.ColorBytes())
	}

	tex, err := r.surface.GetCurrentTexture()
	if err != nil {
		core.Logger().Debug("wgpu frame skipped", "err", err)
		return
	}
	defer tex.Release()
	view, err := tex.CreateView(nil)
	if err != nil {
		core.Logger().Debug("wgpu frame skipped", "err", err)
		return
	}
	defer view.Release()

	enc, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	defer enc.Release()

	pass := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: colors.Black.R, G: colors.Black.G, B: colors.Black.B, A: colors.Black.A},
		}},
	})
	if n > 0 {
		pass.SetPipeline(r.pipeline)
		pass.SetVertexBuffer(0, r.posBuf, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, r.colBuf, 0, wgpu.WholeSize)
		pass.Draw(uint32(n), 1, 0, 0)
	}
	pass.End()

	cmd, err := enc.Finish(nil)
	if err != nil {
		return
	}
	r.queue.Submit(cmd)
	cmd.Release()
	r.surface.Present()
}

// Resize reconfigures the surface. Zero sizes (minimized) are ignored.
func (r *RendererWGPU) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	r.configure(w, h)
}

func (r *RendererWGPU) Encoder() *encoder.FrameEncoder { return r.enc }

// Shutdown releases GPU objects in reverse acquisition order.
func (r *RendererWGPU) Shutdown() {
	if r.colBuf != nil {
		r.colBuf.Release()
		r.colBuf = nil
	}
	if r.posBuf != nil {
		r.posBuf.Release()
		r.posBuf = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.layout != nil {
		r.layout.Release()
		r.layout = nil
	}
	if r.module != nil {
		r.module.Release()
		r.module = nil
	}
	if r.queue != nil {
		r.queue.Release()
		r.queue = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
}

func presentMode(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

func bufferBytes(buf []float32) int { return len(buf) * floatSize }
