package wgpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Option configures a Sink.
type Option func(*options)

type options struct {
	backend  hal.Backend
	variant  gputypes.Backend
	device   hal.Device
	queue    hal.Queue
	provider gpucontext.DeviceProvider
	readback bool
	label    string
}

func defaultOptions() options {
	return options{readback: true, label: "nae"}
}

// WithHAL opens the device on the given HAL backend instead of the best
// registered one. Tests use noop.API{}.
func WithHAL(b hal.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithVariant selects a registered HAL backend by variant.
func WithVariant(v gputypes.Backend) Option {
	return func(o *options) { o.variant = v }
}

// WithDevice renders with an already opened device. The sink does not
// destroy it on Close.
func WithDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.device = device
		o.queue = queue
	}
}

// WithProvider takes the device from a gpucontext provider, such as a
// gogpu window. The provider must expose HAL handles, either through
// HalDevice/HalQueue methods or by returning them from Device/Queue.
func WithProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithReadback controls whether default-surface frames are copied back
// to the CPU. Render-to-texture frames always read back.
func WithReadback(on bool) Option {
	return func(o *options) { o.readback = on }
}

// WithLabel prefixes GPU object labels.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}
