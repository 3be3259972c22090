// Package backend provides a registry of pluggable frame sinks.
//
// A Backend is a nae.Sink with an Init/Close lifecycle. Concrete backends
// live in sub-packages and register themselves from init():
//
//	import _ "github.com/Nazariglez/nae/backend/software"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b := backend.Get(backend.BackendSoftware)
//	if err := b.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	d := nae.NewDraw(b, nae.WithSize(800, 600))
//
// InitDefault walks the priority list (wgpu, ebiten, software) and returns
// the first backend whose Init succeeds.
//
// # Available Backends
//
// - "software": CPU rasterizer built on golang.org/x/image/vector
// - "wgpu": GPU sink on the gogpu/wgpu HAL
// - "ebiten": draws batches onto an ebiten.Image
package backend
