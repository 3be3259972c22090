package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Nazariglez/nae"
)

// gpu holds the device a sink renders with. owned is false for devices
// handed in by the caller.
type gpu struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
	owned    bool
}

// halProvider is implemented by gpucontext providers that expose raw HAL
// handles next to their typed ones.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

func openGPU(o *options) (*gpu, error) {
	switch {
	case o.device != nil:
		if o.queue == nil {
			return nil, fmt.Errorf("wgpu: WithDevice needs a queue")
		}
		return &gpu{device: o.device, queue: o.queue, name: "external"}, nil
	case o.provider != nil:
		return providerGPU(o)
	}

	b := o.backend
	if b == nil {
		var err error
		b, err = selectBackend(o.variant)
		if err != nil {
			return nil, err
		}
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: %v has no adapters", b.Variant())
	}

	sel := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			sel = &adapters[i]
			break
		}
	}
	open, err := sel.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open %q: %w", sel.Info.Name, err)
	}
	return &gpu{
		instance: instance,
		device:   open.Device,
		queue:    open.Queue,
		name:     sel.Info.Name,
		owned:    true,
	}, nil
}

func selectBackend(v gputypes.Backend) (hal.Backend, error) {
	if v != gputypes.BackendEmpty {
		b, ok := hal.GetBackend(v)
		if !ok {
			return nil, fmt.Errorf("wgpu: HAL backend %v not registered", v)
		}
		return b, nil
	}
	b, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("wgpu: no HAL backend: %w", err)
	}
	return b, nil
}

func providerGPU(o *options) (*gpu, error) {
	p := o.provider
	var dev, q any
	if hp, ok := p.(halProvider); ok {
		dev, q = hp.HalDevice(), hp.HalQueue()
	} else {
		dev, q = p.Device(), p.Queue()
	}
	device, ok := dev.(hal.Device)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider device %T is not a hal.Device", dev)
	}
	queue, ok := q.(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider queue %T is not a hal.Queue", q)
	}
	info := p.AdapterInfo()
	nae.Logger().Debug("wgpu using provider device", "adapter", info.Name, "type", info.Type)
	return &gpu{device: device, queue: queue, name: info.Name}, nil
}

func (g *gpu) close() {
	if !g.owned {
		return
	}
	_ = g.device.WaitIdle()
	g.device.Destroy()
	if g.instance != nil {
		g.instance.Destroy()
	}
}
