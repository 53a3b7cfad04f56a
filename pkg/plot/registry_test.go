package plot

import (
	"runtime"
	"testing"
	"time"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

func TestRegistrySubplotForms(t *testing.T) {
	r := NewRegistry()
	c := skyproj.NewCanvas()

	first, err := r.Acquire(c, 111, skyproj.Mollweide, skyproj.AxisOptions{})
	if err != nil {
		t.Fatalf("Acquire(111) error = %v", err)
	}
	forms := []any{[]int{1, 1, 1}, []any{int64(1), int64(1), int64(1)}, skyproj.Subplot{Rows: 1, Cols: 1, Index: 1}, int64(111)}
	for _, form := range forms {
		got, err := r.Acquire(c, form, skyproj.Mollweide, skyproj.AxisOptions{})
		if err != nil {
			t.Fatalf("Acquire(%v) error = %v", form, err)
		}
		if got != first {
			t.Errorf("Acquire(%v) returned a different axis", form)
		}
	}
	if n := len(c.Regions()); n != 1 {
		t.Errorf("canvas has %d regions, want 1", n)
	}
	if ax, ok := r.Lookup(c, "111"); ok || ax != nil {
		t.Error("Lookup() with an invalid subplot succeeded")
	}
	if ax, ok := r.Lookup(c, []int{1, 1, 1}); !ok || ax != first {
		t.Error("Lookup() did not find the axis")
	}
}

func TestRegistrySubplotsAndCanvases(t *testing.T) {
	r := NewRegistry()
	a, b := skyproj.NewCanvas(), skyproj.NewCanvas()

	left, err := r.Acquire(a, 121, skyproj.Mollweide, skyproj.AxisOptions{})
	if err != nil {
		t.Fatal(err)
	}
	right, err := r.Acquire(a, 122, skyproj.Hammer, skyproj.AxisOptions{})
	if err != nil {
		t.Fatal(err)
	}
	other, err := r.Acquire(b, 121, skyproj.Mollweide, skyproj.AxisOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if left == right || left == other {
		t.Error("distinct subplots or canvases share an axis")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Lookup(b, 122); ok {
		t.Error("Lookup() found an axis that was never created")
	}
}

func TestRegistryProjectionMismatch(t *testing.T) {
	r := NewRegistry()
	c := skyproj.NewCanvas()
	if _, err := r.Acquire(c, 111, skyproj.Mollweide, skyproj.AxisOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := r.Acquire(c, []int{1, 1, 1}, skyproj.Hammer, skyproj.AxisOptions{})
	if !errors.Is(err, errors.ErrCodeProjectionMismatch) {
		t.Fatalf("Acquire() error = %v, want %s", err, errors.ErrCodeProjectionMismatch)
	}
	if n := len(c.Regions()); n != 1 {
		t.Errorf("mismatch created a region: %d regions", n)
	}
}

func TestRegistryInvalidInput(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Acquire(nil, 111, skyproj.Mollweide, skyproj.AxisOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil canvas: error = %v", err)
	}
	if _, err := r.Acquire(skyproj.NewCanvas(), 119, skyproj.Mollweide, skyproj.AxisOptions{}); err == nil {
		t.Error("out-of-grid subplot succeeded")
	}
}

func TestRegistryFailedAcquireLeavesNoEntry(t *testing.T) {
	r := NewRegistry()
	canvas := skyproj.NewCanvas()

	if _, err := r.Acquire(canvas, 119, skyproj.Mollweide, skyproj.AxisOptions{}); err == nil {
		t.Fatal("out-of-grid subplot succeeded")
	}
	if _, err := r.Acquire(canvas, 111, skyproj.Kind("bogus"), skyproj.AxisOptions{}); err == nil {
		t.Fatal("unknown projection succeeded")
	}
	if n := r.Len(); n != 0 {
		t.Errorf("Len() = %d after failed acquires, want 0", n)
	}
	if n := len(canvas.Regions()); n != 0 {
		t.Errorf("canvas has %d regions after failed acquires, want 0", n)
	}

	if _, err := r.Acquire(canvas, 111, skyproj.Mollweide, skyproj.AxisOptions{}); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if n := r.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
	runtime.KeepAlive(canvas)
}

func TestRegistryEvictsUnreachableCanvas(t *testing.T) {
	r := NewRegistry()
	func() {
		c := skyproj.NewCanvas()
		if _, err := r.Acquire(c, 111, skyproj.Mollweide, skyproj.AxisOptions{}); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Acquire(c, 212, skyproj.Hammer, skyproj.AxisOptions{}); err != nil {
			t.Fatal(err)
		}
	}()

	kept := skyproj.NewCanvas()
	if _, err := r.Acquire(kept, 111, skyproj.Mollweide, skyproj.AxisOptions{}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for r.Len() > 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Len() = %d after GC, want 1", r.Len())
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if _, ok := r.Lookup(kept, 111); !ok {
		t.Error("reachable canvas was evicted")
	}
	runtime.KeepAlive(kept)
}
