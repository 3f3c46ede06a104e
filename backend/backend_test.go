package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/sketch"
)

// stubBackend is a minimal Backend for registry tests.
type stubBackend struct {
	name string
	opts Options
}

func (s *stubBackend) Name() string                               { return s.name }
func (s *stubBackend) Close() error                               { return nil }
func (s *stubBackend) Upload(int, []float32, []float32) error     { return nil }
func (s *stubBackend) Clear() error                               { return nil }
func (s *stubBackend) DrawPrimitives(sketch.Mode, int, int) error { return nil }
func (s *stubBackend) Flush() error                               { return nil }

func stubFactory(name string) Factory {
	return func(opts Options) (Backend, error) {
		return &stubBackend{name: name, opts: opts}, nil
	}
}

func failingFactory(err error) Factory {
	return func(Options) (Backend, error) {
		return nil, err
	}
}

// withRegistry runs fn with an empty registry and restores it afterwards.
func withRegistry(t *testing.T, fn func()) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	}()
	fn()
}

func TestRegistryRegisterAndNew(t *testing.T) {
	withRegistry(t, func() {
		Register("stub", stubFactory("stub"))
		if !IsRegistered("stub") {
			t.Fatal("stub backend not registered")
		}
		if got := Available(); !slices.Equal(got, []string{"stub"}) {
			t.Errorf("Available() = %v, want [stub]", got)
		}

		b, err := New("stub", Options{Width: 10, Height: 20})
		if err != nil {
			t.Fatalf("New(stub) error = %v", err)
		}
		if b.Name() != "stub" {
			t.Errorf("Name() = %q, want stub", b.Name())
		}
		opts := b.(*stubBackend).opts
		if opts.Capacity != sketch.MaxVertices || opts.PointSize != DefaultPointSize || opts.LineWidth != DefaultLineWidth {
			t.Errorf("factory options = %+v, want defaults applied", opts)
		}

		Unregister("stub")
		if IsRegistered("stub") {
			t.Error("stub still registered after Unregister")
		}
	})
}

func TestRegistryUnknown(t *testing.T) {
	withRegistry(t, func() {
		_, err := New("nope", Options{})
		if !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("New(nope) error = %v, want ErrBackendNotAvailable", err)
		}
	})
}

func TestRegisterNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register(nil) did not panic")
		}
	}()
	Register("nil", nil)
}

func TestDefaultPriority(t *testing.T) {
	withRegistry(t, func() {
		Register(NameRaster, stubFactory(NameRaster))
		Register(NameWGPU, stubFactory(NameWGPU))
		b, err := Default(Options{Width: 1, Height: 1})
		if err != nil {
			t.Fatal(err)
		}
		if b.Name() != NameWGPU {
			t.Errorf("Default() = %q, want %q", b.Name(), NameWGPU)
		}
	})
}

func TestDefaultFallback(t *testing.T) {
	withRegistry(t, func() {
		Register(NameWGPU, failingFactory(sketch.ErrMissingSurfaceOrContext))
		Register(NameRaster, stubFactory(NameRaster))
		b, err := Default(Options{Width: 1, Height: 1})
		if err != nil {
			t.Fatal(err)
		}
		if b.Name() != NameRaster {
			t.Errorf("Default() = %q, want %q", b.Name(), NameRaster)
		}
	})
}

func TestDefaultNoneAvailable(t *testing.T) {
	withRegistry(t, func() {
		boom := errors.New("no device")
		Register(NameWGPU, failingFactory(boom))
		_, err := Default(Options{})
		if !errors.Is(err, sketch.ErrMissingSurfaceOrContext) {
			t.Errorf("Default() error = %v, want ErrMissingSurfaceOrContext", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("Default() error = %v, want it to carry the wgpu failure", err)
		}
	})
}

func TestCheckUpload(t *testing.T) {
	tests := []struct {
		name      string
		first     int
		mirrored  int
		capacity  int
		positions []float32
		colors    []float32
		want      int
		wantErr   bool
	}{
		{"append", 2, 2, 10, make([]float32, 4), make([]float32, 6), 2, false},
		{"rewrite all", 0, 5, 10, make([]float32, 10), make([]float32, 15), 5, false},
		{"gap", 3, 2, 10, make([]float32, 2), make([]float32, 3), 0, true},
		{"over capacity", 9, 9, 10, make([]float32, 4), make([]float32, 6), 0, true},
		{"partial position", 0, 0, 10, make([]float32, 3), make([]float32, 3), 0, true},
		{"count mismatch", 0, 0, 10, make([]float32, 4), make([]float32, 3), 0, true},
		{"negative first", -1, 0, 10, nil, nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CheckUpload(tt.first, tt.mirrored, tt.capacity, tt.positions, tt.colors)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("CheckUpload() error = %v, want ErrOutOfRange", err)
				}
				return
			}
			if err != nil || n != tt.want {
				t.Errorf("CheckUpload() = %d, %v, want %d, nil", n, err, tt.want)
			}
		})
	}
}

func TestCheckDraw(t *testing.T) {
	if err := CheckDraw(sketch.Lines, 2, 3, 5); err != nil {
		t.Errorf("CheckDraw(in range) error = %v", err)
	}
	if err := CheckDraw(sketch.Lines, 3, 3, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("CheckDraw(past end) error = %v, want ErrOutOfRange", err)
	}
	if err := CheckDraw(sketch.Mode(50), 0, 1, 5); !errors.Is(err, sketch.ErrInvalidMode) {
		t.Errorf("CheckDraw(bad mode) error = %v, want ErrInvalidMode", err)
	}
}
