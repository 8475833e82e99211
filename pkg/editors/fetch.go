package editors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/schema"
)

// optionsFetcher drives dependency-aware option resolution for the dynamic
// editor kinds. It tracks the composite value of the editor's dependencies
// so a burst of notifications triggers at most one refresh per distinct
// dependency state, and stamps every request with a sequence number so a
// late-arriving stale response never overwrites a newer one.
type optionsFetcher struct {
	surface   *inspector.Surface
	def       *schema.PropertyDefinition
	apply     func(ctx context.Context, opts []schema.Option)
	disposed  func() bool
	debounced bool

	seq     uint64
	lastSig string
	primed  bool
	timer   *time.Timer
}

func newOptionsFetcher(s *inspector.Surface, def *schema.PropertyDefinition, debounced bool, disposed func() bool, apply func(ctx context.Context, opts []schema.Option)) *optionsFetcher {
	return &optionsFetcher{
		surface:   s,
		def:       def,
		apply:     apply,
		disposed:  disposed,
		debounced: debounced,
	}
}

// dynamic reports whether options are provider-resolved at all. Schemas with
// static items never fetch.
func (f *optionsFetcher) dynamic() bool {
	return !f.def.HasStaticItems() && f.surface.Provider() != nil
}

// prime issues the initial fetch, recording the dependency signature it was
// issued for.
func (f *optionsFetcher) prime(ctx context.Context) {
	if !f.dynamic() {
		return
	}

	f.lastSig = f.signature()
	f.primed = true
	f.fetch(ctx)
}

// propertyChanged refreshes when the changed path is one of the editor's
// dependencies and the composite dependency value actually changed since
// the last resolution.
func (f *optionsFetcher) propertyChanged(ctx context.Context, path string) {
	if !f.dynamic() || len(f.def.Depends) == 0 {
		return
	}

	if !f.affected(path) {
		return
	}

	sig := f.signature()
	if f.primed && sig == f.lastSig {
		return
	}

	f.lastSig = sig
	f.primed = true
	f.schedule(ctx)
}

// refresh re-resolves unconditionally. Override deactivation uses it, since
// an active override may have masked dependency changes.
func (f *optionsFetcher) refresh(ctx context.Context) {
	if !f.dynamic() {
		return
	}

	f.lastSig = f.signature()
	f.primed = true
	f.fetch(ctx)
}

func (f *optionsFetcher) affected(path string) bool {
	for _, dep := range f.def.Depends {
		if f.surface.ResolveDependencyPath(dep) == path {
			return true
		}
	}

	return false
}

// signature encodes the current values of every dependency, read from the
// root surface's extraction. Equal signatures mean no re-fetch is due.
func (f *optionsFetcher) signature() string {
	parts := make([]any, 0, len(f.def.Depends))

	for _, dep := range f.def.Depends {
		v, _ := f.surface.LookupValue(f.surface.ResolveDependencyPath(dep))
		parts = append(parts, v)
	}

	encoded, err := json.Marshal(parts)
	if err != nil {
		return fmt.Sprintf("%#v", parts)
	}

	return string(encoded)
}

func (f *optionsFetcher) schedule(ctx context.Context) {
	debounce := f.surface.DebounceInterval()
	if !f.debounced || debounce <= 0 {
		f.fetch(ctx)

		return
	}

	if f.timer != nil {
		f.timer.Stop()
	}

	f.timer = time.AfterFunc(debounce, func() {
		f.surface.Dispatch(func() {
			if f.disposed() {
				return
			}

			f.fetch(ctx)
		})
	})
}

func (f *optionsFetcher) fetch(ctx context.Context) {
	f.seq++
	seq := f.seq
	path := f.surface.PropertyPath(f.def.Property)

	f.surface.FetchOptions(ctx, path, func(opts []schema.Option, err error) {
		if f.disposed() || seq != f.seq {
			return
		}

		if err != nil {
			f.surface.Logger().WarnContext(ctx, "options request failed",
				"property_path", path, "error", err)

			return
		}

		f.apply(ctx, opts)
	})
}

// dispose stops the debounce timer and invalidates in-flight completions.
func (f *optionsFetcher) dispose() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}

	f.seq++
}
