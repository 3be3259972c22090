package backend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Nazariglez/nae"
)

type fakeBackend struct {
	name    string
	initErr error
	inited  bool
	frames  int
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Init() error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inited = true
	return nil
}
func (f *fakeBackend) Close()                 { f.inited = false }
func (f *fakeBackend) Begin(*nae.Frame) error { return nil }
func (f *fakeBackend) Draw(*nae.Batch) error  { return nil }
func (f *fakeBackend) End() error             { f.frames++; return nil }

// withRegistry swaps the global registry for the duration of a test.
func withRegistry(t *testing.T, reg map[string]Factory) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = reg
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func factory(name string, err error) Factory {
	return func() Backend { return &fakeBackend{name: name, initErr: err} }
}

func TestRegisterAndGet(t *testing.T) {
	withRegistry(t, map[string]Factory{})

	if Get("fake") != nil {
		t.Fatal("Get() on empty registry should return nil")
	}
	Register("fake", factory("fake", nil))
	if !IsRegistered("fake") {
		t.Error("IsRegistered(fake) = false, want true")
	}
	b := Get("fake")
	if b == nil || b.Name() != "fake" {
		t.Fatalf("Get(fake) = %v, want fake backend", b)
	}
	if Get("fake") == b {
		t.Error("Get() should return a fresh instance per call")
	}

	Unregister("fake")
	if IsRegistered("fake") {
		t.Error("IsRegistered(fake) after Unregister = true")
	}
}

func TestRegisterNilPanics(t *testing.T) {
	withRegistry(t, map[string]Factory{})
	defer func() {
		if recover() == nil {
			t.Error("Register(nil) did not panic")
		}
	}()
	Register("nil", nil)
}

func TestAvailableSorted(t *testing.T) {
	withRegistry(t, map[string]Factory{})
	Register("zeta", factory("zeta", nil))
	Register("alpha", factory("alpha", nil))
	Register(BackendSoftware, factory(BackendSoftware, nil))

	want := []string{"alpha", BackendSoftware, "zeta"}
	if got := Available(); !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestDefaultPriority(t *testing.T) {
	tests := []struct {
		name       string
		registered []string
		want       string
	}{
		{"empty", nil, ""},
		{"software only", []string{BackendSoftware}, BackendSoftware},
		{"ebiten over software", []string{BackendSoftware, BackendEbiten}, BackendEbiten},
		{"wgpu first", []string{BackendSoftware, BackendEbiten, BackendWGPU}, BackendWGPU},
		{"unknown fallback", []string{"custom"}, "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withRegistry(t, map[string]Factory{})
			for _, n := range tt.registered {
				Register(n, factory(n, nil))
			}
			b := Default()
			got := ""
			if b != nil {
				got = b.Name()
			}
			if got != tt.want {
				t.Errorf("Default() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMustDefaultPanics(t *testing.T) {
	withRegistry(t, map[string]Factory{})
	defer func() {
		if recover() == nil {
			t.Error("MustDefault() on empty registry did not panic")
		}
	}()
	MustDefault()
}

func TestInitDefaultSkipsFailures(t *testing.T) {
	withRegistry(t, map[string]Factory{})
	gpuErr := errors.New("no adapter")
	Register(BackendWGPU, factory(BackendWGPU, gpuErr))
	Register(BackendSoftware, factory(BackendSoftware, nil))

	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	if b.Name() != BackendSoftware {
		t.Errorf("InitDefault() = %q, want %q", b.Name(), BackendSoftware)
	}
	if !b.(*fakeBackend).inited {
		t.Error("InitDefault() returned an uninitialised backend")
	}
}

func TestInitDefaultAllFail(t *testing.T) {
	withRegistry(t, map[string]Factory{})
	_, err := InitDefault()
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("InitDefault() empty error = %v, want ErrBackendNotAvailable", err)
	}

	gpuErr := errors.New("no adapter")
	Register(BackendWGPU, factory(BackendWGPU, gpuErr))
	_, err = InitDefault()
	if !errors.Is(err, gpuErr) {
		t.Errorf("InitDefault() error = %v, want %v", err, gpuErr)
	}
}

func TestBackendIsSink(t *testing.T) {
	var b Backend = &fakeBackend{name: "fake"}
	d := nae.NewDraw(b, nae.WithSize(10, 10))
	d.Begin(nil)
	d.Rect(0, 0, 5, 5)
	if err := d.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if b.(*fakeBackend).frames != 1 {
		t.Errorf("frames = %d, want 1", b.(*fakeBackend).frames)
	}
}
