package backend

import (
	"errors"

	"github.com/Nazariglez/nae"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when frames are submitted before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	BackendSoftware = "software"
	BackendWGPU     = "wgpu"
	BackendEbiten   = "ebiten"
)

// Backend is a nae.Sink with a lifecycle. Backends are registered via
// Register and selected with Get or Default.
type Backend interface {
	nae.Sink

	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// Init acquires the backend's resources. It must succeed before the
	// first frame.
	Init() error

	// Close releases all backend resources.
	Close()
}
