// Package software is a CPU frame sink. It rasterizes batches with edge
// functions and pixel-center sampling, optionally supersampled, into an
// *image.RGBA or back into a target texture.
//
// Importing the package registers it with the backend registry:
//
//	import _ "github.com/Nazariglez/nae/backend/software"
//
//	b := backend.Get(backend.BackendSoftware)
package software
