// Package sketch is an incremental vertex-buffer drawing engine.
//
// # Overview
//
// A user draws points, lines and polygons by clicking on a surface. Every
// click becomes one vertex: it is mapped to normalized device coordinates,
// appended with the current color to a fixed-capacity [GeometryStore], and
// recorded in a [RunLedger] under the current primitive [Mode]. The ledger
// groups consecutive vertices that share a mode into runs; after each
// change the whole drawing is replayed through a [Renderer], one draw call
// per run.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/sketch"
//	    "github.com/gogpu/sketch/backend/raster"
//	)
//
//	r := raster.New(800, 600)
//	s, err := sketch.NewSession(r, sketch.WithMode(sketch.LineStrip))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s.PlaceVertex(sketch.VertexPlaced{X: 100, Y: 100, Width: 800, Height: 600})
//	s.PlaceVertex(sketch.VertexPlaced{X: 700, Y: 500, Width: 800, Height: 600})
//	r.SavePNG("out.png")
//
// # Snapshots
//
// [Snapshot] captures the run ledger and both vertex arrays. Its JSON form
// is one array: run records followed by the flat positions and colors.
// Run metadata is restored exactly on load, so a reloaded drawing batches
// the same way it did before it was saved. See [SaveFile] and [LoadFile].
//
// # Event Loop
//
// [Loop] drives a [Session] as a single actor. UI code posts typed events
// ([VertexPlaced], [ModeSelected], [SnapshotRequested], [SnapshotOpen], ...)
// and the loop handles them one at a time. Snapshot loads read the file on
// a separate goroutine and post [SnapshotLoaded] back to the loop, which
// replaces the drawing atomically.
//
// # Coordinate System
//
// Click positions are surface-local pixels with the origin at the top-left
// and Y down. Stored vertices are NDC: [-1, 1] on both axes, origin at the
// center, Y up.
package sketch
