package wgpubackend

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestVertexLayouts(t *testing.T) {
	layouts := vertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("len = %d, want 2", len(layouts))
	}
	tests := []struct {
		stride   uint64
		format   wgpu.VertexFormat
		location uint32
	}{
		{8, wgpu.VertexFormatFloat32x2, 0},
		{16, wgpu.VertexFormatFloat32x4, 1},
	}
	for i, tt := range tests {
		l := layouts[i]
		if l.ArrayStride != tt.stride {
			t.Errorf("layout %d stride = %d, want %d", i, l.ArrayStride, tt.stride)
		}
		if len(l.Attributes) != 1 || l.Attributes[0].Format != tt.format || l.Attributes[0].ShaderLocation != tt.location {
			t.Errorf("layout %d attributes = %+v", i, l.Attributes)
		}
		if l.Attributes[0].Offset != 0 {
			t.Errorf("layout %d not tightly packed", i)
		}
	}
}

func TestPresentMode(t *testing.T) {
	if presentMode(true) != wgpu.PresentModeFifo {
		t.Error("vsync should use FIFO")
	}
	if presentMode(false) != wgpu.PresentModeImmediate {
		t.Error("no vsync should use Immediate")
	}
}
