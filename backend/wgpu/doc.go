// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides a GPU backend for sketch using gogpu/wgpu.
//
// The backend mirrors the geometry store in two GPU vertex buffers of
// fixed capacity, one for positions (float32x2) and one for colors
// (float32x3). Each upload writes only the new vertices at their byte
// offset with Queue.WriteBuffer; buffers are never reallocated.
//
// A frame is recorded between Clear and Flush. Each DrawPrimitives call
// becomes one Draw in a single render pass that clears the target; Flush
// encodes the pass, submits it and waits for the GPU.
//
// # Topologies
//
// POINTS, LINES, LINE_STRIP, TRIANGLES and TRIANGLE_STRIP map directly to
// WebGPU primitive topologies. WebGPU has no line loop or triangle fan, so
// those runs are expanded on the CPU into line and triangle lists
// (see sketch.Mode.Expand) and drawn from a scratch vertex buffer.
// WebGPU points are always one pixel wide.
//
// # Device Sharing
//
// The backend does not create a device. It takes one from the provider in
// backend.Options, which must expose HalDevice() and HalQueue() returning
// hal.Device and hal.Queue (gogpu's gpucontext provider does). Without a
// provider New fails with sketch.ErrMissingSurfaceOrContext.
//
// The render target is set per frame with SetTarget, typically to the
// current swapchain texture view.
//
// # Shaders
//
// The WGSL shader in shaders/vertex_color.wgsl is compiled to SPIR-V with
// gogpu/naga when the backend is created.
package wgpu
