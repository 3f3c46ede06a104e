// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/backend"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoTarget is returned by Flush when no render target has been set.
	ErrNoTarget = errors.New("wgpu: no render target")

	// ErrTimeout is returned by Flush when a submitted frame does not
	// complete in time.
	ErrTimeout = errors.New("wgpu: timed out waiting for GPU")
)

// submitTimeout bounds the wait for a submitted frame.
const submitTimeout = 5 * time.Second

func init() {
	backend.Register(backend.NameWGPU, func(opts backend.Options) (backend.Backend, error) {
		return New(opts)
	})
}

// drawCall is one recorded DrawPrimitives call.
type drawCall struct {
	topology gputypes.PrimitiveTopology
	first    uint32
	count    uint32
	scratch  bool // draw from the scratch buffers
}

// Renderer draws runs on the GPU. It implements backend.Backend.
//
// Renderer is NOT safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	target hal.TextureView
	clear  gputypes.Color

	pipelines *pipelineCache
	vertices  *vertexBuffers // mirrors the geometry store
	scratch   *vertexBuffers // expanded LINE_LOOP / TRIANGLE_FAN runs

	// CPU copies needed to expand runs without reading back the GPU.
	positions []float32
	colors    []float32
	capacity  int

	// Per-frame state.
	calls      []drawCall
	scratchPos []float32
	scratchCol []float32
	staging    []byte

	closed bool
}

var _ backend.Backend = (*Renderer)(nil)

// halProvider is implemented by device providers that expose HAL handles.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// New creates a GPU renderer on the device supplied by opts.Provider.
// It fails with sketch.ErrMissingSurfaceOrContext when the provider is
// missing or does not expose a HAL device and queue.
func New(opts backend.Options) (*Renderer, error) {
	opts = opts.WithDefaults()
	device, queue, err := halFromProvider(opts.Provider)
	if err != nil {
		return nil, err
	}

	format := gputypes.TextureFormatBGRA8Unorm
	if dp, ok := opts.Provider.(gpucontext.DeviceProvider); ok {
		format = dp.SurfaceFormat()
	}

	pipelines, err := newPipelineCache(device, format)
	if err != nil {
		return nil, err
	}
	vertices, err := newVertexBuffers(device, "sketch_vertices", opts.Capacity)
	if err != nil {
		pipelines.destroy()
		return nil, err
	}

	bg := opts.Background
	r := &Renderer{
		device:    device,
		queue:     queue,
		format:    format,
		clear:     gputypes.Color{R: float64(bg[0]), G: float64(bg[1]), B: float64(bg[2]), A: 1},
		pipelines: pipelines,
		vertices:  vertices,
		capacity:  opts.Capacity,
	}
	sketch.Logger().Info("wgpu: renderer created",
		slog.Int("capacity", opts.Capacity),
		slog.Uint64("positionBytes", positionOffset(opts.Capacity)),
		slog.Uint64("colorBytes", colorOffset(opts.Capacity)))
	return r, nil
}

// halFromProvider extracts the HAL device and queue from a provider.
func halFromProvider(provider any) (hal.Device, hal.Queue, error) {
	if provider == nil {
		return nil, nil, fmt.Errorf("%w: wgpu: no device provider", sketch.ErrMissingSurfaceOrContext)
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("%w: wgpu: provider does not expose HAL types", sketch.ErrMissingSurfaceOrContext)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: wgpu: provider HalDevice is not hal.Device", sketch.ErrMissingSurfaceOrContext)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: wgpu: provider HalQueue is not hal.Queue", sketch.ErrMissingSurfaceOrContext)
	}
	return device, queue, nil
}

// Name implements backend.Backend.
func (r *Renderer) Name() string { return backend.NameWGPU }

// SetTarget sets the texture view the next frame renders into.
func (r *Renderer) SetTarget(view hal.TextureView) {
	r.target = view
}

// Upload implements sketch.Renderer. Only the new vertices are written,
// at their byte offsets in the fixed-size vertex buffers.
func (r *Renderer) Upload(first int, positions, colors []float32) error {
	if r.closed {
		return backend.ErrClosed
	}
	n, err := backend.CheckUpload(first, r.mirrored(), r.capacity, positions, colors)
	if err != nil {
		return err
	}
	r.positions = append(r.positions[:sketch.PositionComponents*first], positions...)
	r.colors = append(r.colors[:sketch.ColorComponents*first], colors...)
	r.staging = r.vertices.write(r.queue, first, positions, colors, r.staging)
	sketch.Logger().Debug("wgpu: vertices uploaded", slog.Int("first", first), slog.Int("count", n))
	return nil
}

// Clear implements sketch.Renderer. It starts a new frame; the render pass
// clears the target when the frame is flushed.
func (r *Renderer) Clear() error {
	if r.closed {
		return backend.ErrClosed
	}
	r.calls = r.calls[:0]
	r.scratchPos = r.scratchPos[:0]
	r.scratchCol = r.scratchCol[:0]
	return nil
}

// DrawPrimitives implements sketch.Renderer.
func (r *Renderer) DrawPrimitives(mode sketch.Mode, first, count int) error {
	if r.closed {
		return backend.ErrClosed
	}
	if err := backend.CheckDraw(mode, first, count, r.mirrored()); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	topology, native := mode.Topology()
	if native {
		r.calls = append(r.calls, drawCall{
			topology: topology,
			first:    uint32(first), //nolint:gosec // bounded by capacity
			count:    uint32(count), //nolint:gosec // bounded by capacity
		})
		return nil
	}

	idx := mode.Expand(first, count)
	if len(idx) == 0 {
		return nil
	}
	start := len(r.scratchPos) / sketch.PositionComponents
	for _, i := range idx {
		r.scratchPos = append(r.scratchPos, r.positions[sketch.PositionComponents*i:sketch.PositionComponents*(i+1)]...)
		r.scratchCol = append(r.scratchCol, r.colors[sketch.ColorComponents*i:sketch.ColorComponents*(i+1)]...)
	}
	r.calls = append(r.calls, drawCall{
		topology: topology,
		first:    uint32(start),    //nolint:gosec // bounded by scratch size
		count:    uint32(len(idx)), //nolint:gosec // bounded by scratch size
		scratch:  true,
	})
	return nil
}

// Flush implements sketch.Renderer. It encodes the frame's draw calls
// into one render pass, submits it and waits for completion.
func (r *Renderer) Flush() error {
	if r.closed {
		return backend.ErrClosed
	}
	if r.target == nil {
		return ErrNoTarget
	}
	if err := r.uploadScratch(); err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sketch_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sketch_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "sketch_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clear,
		}},
	})
	var bound *vertexBuffers
	for _, c := range r.calls {
		pipeline, err := r.pipelines.get(c.topology)
		if err != nil {
			rp.End()
			return err
		}
		rp.SetPipeline(pipeline)
		vb := r.vertices
		if c.scratch {
			vb = r.scratch
		}
		if vb != bound {
			vb.bind(rp)
			bound = vb
		}
		rp.Draw(c.count, 1, c.first, 0)
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := waitResult(r.device.Wait(fence, 1, submitTimeout)); err != nil {
		return err
	}
	sketch.Logger().Debug("wgpu: frame submitted", slog.Int("draws", len(r.calls)))
	return nil
}

// waitResult turns the result of a fence wait into an error.
func waitResult(signaled bool, err error) error {
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !signaled {
		return fmt.Errorf("%w after %v", ErrTimeout, submitTimeout)
	}
	return nil
}

// uploadScratch writes the frame's expanded vertices, growing the scratch
// buffers when they are too small.
func (r *Renderer) uploadScratch() error {
	n := len(r.scratchPos) / sketch.PositionComponents
	if n == 0 {
		return nil
	}
	if r.scratch == nil || r.scratch.capacity < n {
		size := max(n, 1024)
		if r.scratch != nil {
			size = max(n, 2*r.scratch.capacity)
		}
		vb, err := newVertexBuffers(r.device, "sketch_scratch", size)
		if err != nil {
			return err
		}
		r.scratch.destroy(r.device)
		r.scratch = vb
	}
	r.staging = r.scratch.write(r.queue, 0, r.scratchPos, r.scratchCol, r.staging)
	return nil
}

// Close implements backend.Backend. It releases all GPU resources; the
// device itself belongs to the provider and is left alone.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.scratch.destroy(r.device)
	r.vertices.destroy(r.device)
	r.pipelines.destroy()
	r.scratch, r.vertices, r.pipelines = nil, nil, nil
	return nil
}

func (r *Renderer) mirrored() int {
	return len(r.positions) / sketch.PositionComponents
}
