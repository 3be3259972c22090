package nae

// DrawOption configures a Draw during creation.
//
// Example:
//
//	d := nae.NewDraw(sink, nae.WithSize(800, 600), nae.WithDeviceScale(2))
type DrawOption func(*drawOptions)

type drawOptions struct {
	width, height   int
	scale           float64
	tess            *Tessellator
	textures        *Textures
	resetPaint      bool
	circleTolerance float64
	batchCapacity   int
}

// DefaultBatchCapacity is the default vertex limit of a single batch.
const DefaultBatchCapacity = 1 << 16

func defaultDrawOptions() drawOptions {
	return drawOptions{
		width:           800,
		height:          600,
		scale:           1,
		circleTolerance: DefaultTolerance,
		batchCapacity:   DefaultBatchCapacity,
	}
}

// WithSize sets the logical size of the render target.
func WithSize(width, height int) DrawOption {
	return func(o *drawOptions) {
		o.width = width
		o.height = height
	}
}

// WithDeviceScale sets the device pixel ratio reported to the sink.
// Values <= 0 are ignored.
func WithDeviceScale(scale float64) DrawOption {
	return func(o *drawOptions) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithTessellator makes the Draw use t instead of allocating its own.
// The Tessellator must not be used by another goroutine meanwhile.
func WithTessellator(t *Tessellator) DrawOption {
	return func(o *drawOptions) {
		o.tess = t
	}
}

// WithTextures shares an existing texture registry, typically one owned by
// the window or loader that also feeds the sink.
func WithTextures(t *Textures) DrawOption {
	return func(o *drawOptions) {
		o.textures = t
	}
}

// WithPaintReset makes every Begin restore the color to white and the
// global alpha to 1. By default paint state carries over between frames.
func WithPaintReset(reset bool) DrawOption {
	return func(o *drawOptions) {
		o.resetPaint = reset
	}
}

// WithCircleTolerance sets the maximum chordal error, in target pixels,
// used to pick the segment count of circles and ellipses.
func WithCircleTolerance(tol float64) DrawOption {
	return func(o *drawOptions) {
		if tol > 0 {
			o.circleTolerance = tol
		}
	}
}

// WithBatchCapacity caps the number of vertices in one batch. Longer runs
// of compatible primitives are split into several batches.
func WithBatchCapacity(n int) DrawOption {
	return func(o *drawOptions) {
		if n >= 3 {
			o.batchCapacity = n
		}
	}
}
