// Package backend provides pluggable renderers for sketch.
//
// A backend mirrors the session's geometry store and draws runs of
// vertices on request. Backends register themselves by name in init(),
// following the database/sql driver pattern:
//
//	import (
//	    "github.com/gogpu/sketch/backend"
//	    _ "github.com/gogpu/sketch/backend/raster" // registers "raster"
//	)
//
//	r, err := backend.New("raster", backend.Options{Width: 800, Height: 600})
//
// # Available Backends
//
//   - raster: CPU rasterization into a gg.Context, with PNG output
//   - wgpu: GPU rendering through gogpu/wgpu HAL, with two vertex buffers
//     of fixed capacity mirroring the store
//   - trace: records draw calls without drawing; used for tests and
//     debugging
//
// # Backend Selection
//
// Use Default to get the best available backend. It prefers the GPU and
// falls back to raster. If nothing can be created the error wraps
// sketch.ErrMissingSurfaceOrContext, which is fatal at startup.
package backend
