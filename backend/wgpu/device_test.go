// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// halDevices is a device provider exposing HAL handles.
type halDevices struct {
	device hal.Device
	queue  hal.Queue
}

func (p halDevices) HalDevice() any { return p.device }
func (p halDevices) HalQueue() any  { return p.queue }

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newNoopRenderer creates a Renderer on a noop device with a 64x64 render
// target already set.
func newNoopRenderer(t *testing.T, capacity int) *Renderer {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	r, err := New(backend.Options{
		Width:    64,
		Height:   64,
		Capacity: capacity,
		Provider: halDevices{device: device, queue: queue},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sketch_test_target",
		Size:          hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "sketch_test_target_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		t.Fatalf("CreateTextureView() error = %v", err)
	}
	t.Cleanup(func() {
		_ = r.Close()
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	r.SetTarget(view)
	return r
}

// TestRendererSessionFrames draws a drawing with native and expanded runs
// through a Session and checks the encoded frame.
func TestRendererSessionFrames(t *testing.T) {
	r := newNoopRenderer(t, 64)
	s, err := sketch.NewSession(r)
	if err != nil {
		t.Fatal(err)
	}

	place := func(mode sketch.Mode, points ...[2]float32) {
		t.Helper()
		if err := s.SetMode(mode); err != nil {
			t.Fatal(err)
		}
		for _, p := range points {
			ev := sketch.VertexPlaced{X: p[0], Y: p[1], Width: 64, Height: 64}
			if _, err := s.PlaceVertex(ev); err != nil {
				t.Fatalf("PlaceVertex(%v, %v) error = %v", mode, p, err)
			}
		}
	}
	// Vertex 0 is a point, 1-3 a loop, 4-7 a fan and 8-9 a line.
	place(sketch.Points, [2]float32{8, 8})
	place(sketch.LineLoop, [2]float32{10, 10}, [2]float32{50, 10}, [2]float32{30, 40})
	place(sketch.TriangleFan, [2]float32{32, 32}, [2]float32{60, 32}, [2]float32{60, 60}, [2]float32{32, 60})
	place(sketch.Lines, [2]float32{0, 63}, [2]float32{63, 0})

	want := []drawCall{
		{topology: gputypes.PrimitiveTopologyPointList, first: 0, count: 1},
		{topology: gputypes.PrimitiveTopologyLineList, first: 0, count: 6, scratch: true},
		{topology: gputypes.PrimitiveTopologyTriangleList, first: 6, count: 6, scratch: true},
		{topology: gputypes.PrimitiveTopologyLineList, first: 8, count: 2},
	}
	if !slices.Equal(r.calls, want) {
		t.Errorf("calls = %+v, want %+v", r.calls, want)
	}

	// The scratch stream holds the loop closed back to vertex 1, then the
	// fan split into triangles around vertex 4.
	wantIdx := []int{1, 2, 2, 3, 3, 1, 4, 5, 6, 4, 6, 7}
	positions, colors := s.Store().ExportAll()
	var wantPos, wantCol []float32
	for _, i := range wantIdx {
		wantPos = append(wantPos, positions[2*i:2*i+2]...)
		wantCol = append(wantCol, colors[3*i:3*i+3]...)
	}
	if !slices.Equal(r.scratchPos, wantPos) {
		t.Errorf("scratch positions = %v, want %v", r.scratchPos, wantPos)
	}
	if !slices.Equal(r.scratchCol, wantCol) {
		t.Errorf("scratch colors = %v, want %v", r.scratchCol, wantCol)
	}
	if r.scratch == nil || r.scratch.capacity != 1024 {
		t.Errorf("scratch buffers = %+v, want capacity 1024", r.scratch)
	}

	if got := r.mirrored(); got != 10 {
		t.Errorf("mirrored() = %d, want 10", got)
	}
	if !slices.Equal(r.positions, positions) {
		t.Errorf("mirror positions = %v, want %v", r.positions, positions)
	}

	// One pipeline per topology used, created on first use.
	if got := len(r.pipelines.pipelines); got != 3 {
		t.Errorf("cached pipelines = %d, want 3", got)
	}

	// Redrawing replays the same frame.
	if err := s.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !slices.Equal(r.calls, want) {
		t.Errorf("calls after Render = %+v, want %+v", r.calls, want)
	}
}

func TestRendererRestore(t *testing.T) {
	r := newNoopRenderer(t, 8)
	s, err := sketch.NewSession(r, sketch.WithCapacity(8))
	if err != nil {
		t.Fatal(err)
	}
	snap := sketch.Snapshot{
		Runs:      []sketch.Run{{Mode: sketch.TriangleStrip, Length: 4}, {Mode: sketch.LineStrip, Length: 2}},
		Positions: []float32{-1, -1, 1, -1, -1, 1, 1, 1, 0, 0, 0.5, 0.5},
		Colors:    make([]float32, 18),
	}
	if err := s.Restore(snap); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	want := []drawCall{
		{topology: gputypes.PrimitiveTopologyTriangleStrip, first: 0, count: 4},
		{topology: gputypes.PrimitiveTopologyLineStrip, first: 4, count: 2},
	}
	if !slices.Equal(r.calls, want) {
		t.Errorf("calls = %+v, want %+v", r.calls, want)
	}
	if r.scratch != nil {
		t.Error("native runs allocated scratch buffers")
	}
}

func TestRendererErrors(t *testing.T) {
	r := newNoopRenderer(t, 2)

	if err := r.Upload(0, make([]float32, 6), make([]float32, 9)); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("Upload() past capacity error = %v, want ErrOutOfRange", err)
	}
	if err := r.DrawPrimitives(sketch.Points, 0, 1); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("DrawPrimitives() before upload error = %v, want ErrOutOfRange", err)
	}

	r.SetTarget(nil)
	if err := r.Flush(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("Flush() without target error = %v, want ErrNoTarget", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Upload(0, []float32{0, 0}, []float32{0, 0, 0}); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Upload() after Close error = %v, want ErrClosed", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestWaitResult(t *testing.T) {
	lost := errors.New("device lost")
	tests := []struct {
		name     string
		signaled bool
		err      error
		want     error
	}{
		{"signaled", true, nil, nil},
		{"timed out", false, nil, ErrTimeout},
		{"wait failed", false, lost, lost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := waitResult(tt.signaled, tt.err)
			if tt.want == nil {
				if err != nil {
					t.Errorf("waitResult() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("waitResult() error = %v, want %v", err, tt.want)
			}
		})
	}
}
