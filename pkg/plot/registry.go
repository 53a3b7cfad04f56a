package plot

import (
	"runtime"
	"sync"
	"weak"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

// Registry remembers the axis created for each (canvas, subplot) pair so
// that successive plots aimed at the same subplot draw onto one axis.
//
// Canvases are held weakly. When a canvas becomes unreachable its entry is
// dropped by a runtime cleanup; nothing has to be released by hand. Axes do
// not reference their canvas, so an entry never keeps its own key alive.
type Registry struct {
	mu      sync.Mutex
	entries map[weak.Pointer[skyproj.Canvas]]map[skyproj.Subplot]*skyproj.Axis
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[weak.Pointer[skyproj.Canvas]]map[skyproj.Subplot]*skyproj.Axis),
	}
}

// DefaultRegistry is shared by plotters that are not given their own.
var DefaultRegistry = NewRegistry()

// Acquire returns the axis for subplot on canvas, creating the subplot and
// axis on first use. subplot is anything [skyproj.ParseSubplot] accepts, so
// 111 and [1, 1, 1] name the same axis.
//
// An existing axis of a different kind is a PROJECTION_MISMATCH error: the
// caller asked for two projections on one subplot.
func (r *Registry) Acquire(canvas *skyproj.Canvas, subplot any, kind skyproj.Kind, opts skyproj.AxisOptions) (*skyproj.Axis, error) {
	if canvas == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "registry needs a canvas")
	}
	sp, err := skyproj.ParseSubplot(subplot)
	if err != nil {
		return nil, err
	}

	key := weak.Make(canvas)
	r.mu.Lock()
	defer r.mu.Unlock()

	if ax, ok := r.entries[key][sp]; ok {
		if ax.Kind() != kind {
			return nil, errors.New(errors.ErrCodeProjectionMismatch,
				"subplot %s already holds a %s axis, not %s", sp, ax.Kind(), kind)
		}
		return ax, nil
	}

	// Check the projection before touching the canvas so a bad kind leaves
	// no stray region behind.
	if _, err := skyproj.NewProjection(kind, opts.Lon0); err != nil {
		return nil, err
	}
	region, err := canvas.AddSubplot(sp)
	if err != nil {
		return nil, err
	}
	ax, err := skyproj.NewAxis(region, kind, opts)
	if err != nil {
		return nil, err
	}

	axes, ok := r.entries[key]
	if !ok {
		axes = make(map[skyproj.Subplot]*skyproj.Axis)
		r.entries[key] = axes
		runtime.AddCleanup(canvas, r.evict, key)
	}
	axes[sp] = ax
	return ax, nil
}

// Lookup returns the axis registered for subplot on canvas, if any.
func (r *Registry) Lookup(canvas *skyproj.Canvas, subplot any) (*skyproj.Axis, bool) {
	sp, err := skyproj.ParseSubplot(subplot)
	if err != nil || canvas == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ax, ok := r.entries[weak.Make(canvas)][sp]
	return ax, ok
}

// Len returns the number of canvases with registered axes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// evict runs on the runtime's cleanup goroutine once the canvas is gone.
func (r *Registry) evict(key weak.Pointer[skyproj.Canvas]) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}
