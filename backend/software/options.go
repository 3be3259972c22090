package software

// Filter selects texture sampling.
type Filter uint8

const (
	// FilterLinear blends the four nearest texels.
	FilterLinear Filter = iota
	// FilterNearest picks the texel under the sample point.
	FilterNearest
)

func (f Filter) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "linear"
}

// Option configures a Sink.
type Option func(*options)

type options struct {
	supersample int
	workers     int
	filter      Filter
	bandHeight  int
}

func defaultOptions() options {
	return options{
		supersample: 2,
		workers:     0,
		filter:      FilterLinear,
		bandHeight:  32,
	}
}

// WithSupersample renders at n×n samples per pixel and filters down with
// a bilinear kernel at the end of the frame. n = 1 disables antialiasing.
// Values below 1 are ignored.
func WithSupersample(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.supersample = n
		}
	}
}

// WithWorkers sets the number of rasterizer goroutines; 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.workers = n
		}
	}
}

// WithFilter sets texture filtering.
func WithFilter(f Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}
