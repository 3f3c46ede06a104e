// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sketch"
	"github.com/gogpu/wgpu/hal"
)

// Byte strides of the two vertex streams.
//
//	position (vec2<f32>) = 8 bytes  (location 0, buffer 0)
//	color    (vec3<f32>) = 12 bytes (location 1, buffer 1)
const (
	positionStride = sketch.PositionComponents * 4
	colorStride    = sketch.ColorComponents * 4
)

// positionOffset returns the byte offset of vertex i in the position buffer.
func positionOffset(i int) uint64 {
	return uint64(i) * positionStride //nolint:gosec // i is bounded by the buffer capacity
}

// colorOffset returns the byte offset of vertex i in the color buffer.
func colorOffset(i int) uint64 {
	return uint64(i) * colorStride //nolint:gosec // i is bounded by the buffer capacity
}

// vertexLayout returns the vertex buffer layouts shared by all pipelines.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: positionStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			},
		},
		{
			ArrayStride: colorStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1}, // color
			},
		},
	}
}

// encodeFloats appends the little-endian bytes of v to dst.
func encodeFloats(dst []byte, v []float32) []byte {
	for _, f := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

// vertexBuffers is a pair of position and color buffers holding up to
// capacity vertices.
type vertexBuffers struct {
	positions hal.Buffer
	colors    hal.Buffer
	capacity  int
}

// newVertexBuffers allocates both buffers at their full size.
func newVertexBuffers(device hal.Device, label string, capacity int) (*vertexBuffers, error) {
	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	pos, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_positions",
		Size:  positionOffset(capacity),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s position buffer: %w", label, err)
	}
	col, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_colors",
		Size:  colorOffset(capacity),
		Usage: usage,
	})
	if err != nil {
		device.DestroyBuffer(pos)
		return nil, fmt.Errorf("create %s color buffer: %w", label, err)
	}
	return &vertexBuffers{positions: pos, colors: col, capacity: capacity}, nil
}

// write uploads vertices starting at first.
func (vb *vertexBuffers) write(queue hal.Queue, first int, positions, colors []float32, staging []byte) []byte {
	staging = encodeFloats(staging[:0], positions)
	queue.WriteBuffer(vb.positions, positionOffset(first), staging)
	staging = encodeFloats(staging[:0], colors)
	queue.WriteBuffer(vb.colors, colorOffset(first), staging)
	return staging
}

// bind sets both buffers on the render pass.
func (vb *vertexBuffers) bind(rp hal.RenderPassEncoder) {
	rp.SetVertexBuffer(0, vb.positions, 0)
	rp.SetVertexBuffer(1, vb.colors, 0)
}

func (vb *vertexBuffers) destroy(device hal.Device) {
	if vb == nil {
		return
	}
	if vb.colors != nil {
		device.DestroyBuffer(vb.colors)
	}
	if vb.positions != nil {
		device.DestroyBuffer(vb.positions)
	}
}
