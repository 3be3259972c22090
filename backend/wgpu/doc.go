// Package wgpu draws nae frames on the GPU through the gogpu/wgpu HAL.
//
// The sink renders into an offscreen RGBA8 texture and, unless readback
// is disabled, copies the result back to the CPU after every frame so it
// can be saved or shown by something else. Render-to-texture frames write
// their result back into the nae texture registry.
//
// A device is opened on first Init from the best registered HAL backend.
// Import a backend set to make real GPUs available:
//
//	import (
//		_ "github.com/gogpu/wgpu/hal/allbackends"
//		_ "github.com/Nazariglez/nae/backend/wgpu"
//	)
//
// An existing device can be shared with WithDevice or WithProvider.
package wgpu
