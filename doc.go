// Package nae is an immediate-mode 2D drawing engine.
//
// # Overview
//
// A Draw records shapes, paths, images, patterns and text between Begin and
// End. Everything is tessellated on the CPU into triangle batches that share
// a pipeline and texture, and End hands the batches to a Sink. Sinks do the
// rasterization: backend/software renders into an image, backend/wgpu
// renders through a WebGPU device and backend/ebiten draws onto an
// Ebitengine screen.
//
// # Quick Start
//
//	sink := software.New()
//	if err := sink.Init(); err != nil {
//		log.Fatal(err)
//	}
//	d := nae.NewDraw(sink, nae.WithSize(512, 512))
//
//	d.Begin(&nae.White)
//	d.SetColor(nae.RGB(1, 0, 0))
//	d.Circle(256, 256, 100)
//	d.BeginPath(100, 100).LineTo(400, 120).LineTo(250, 400).End(true).Stroke(8)
//	if err := d.End(); err != nil {
//		log.Fatal(err)
//	}
//	sink.SavePNG("output.png")
//
// # Architecture
//
// The library is organized into:
//   - Public API: Draw, PathBuilder, Tessellator, TransformStack, Textures, Sink
//   - Internal: path (flattening), stroke (outlines), tess (fill triangulation), parallel (workers), cache (LRU)
//   - Sinks: backend/software, backend/wgpu, backend/ebiten; recording captures and replays frames
//   - text shapes and rasterizes glyphs into atlases; script runs Lua scenes
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians, positive angles turn from +X towards +Y
//
// # Contract violations
//
// Calling a drawing method outside Begin/End, popping the base transform or
// misusing a PathBuilder panics with a *ContractError. Hosts running
// untrusted scene code wrap calls in Catch.
package nae

// Version is the current version of the library.
const Version = "0.1.0"
