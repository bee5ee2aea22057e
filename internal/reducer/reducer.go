// Package reducer implements the fork-join parallel fan-out used by the
// cataloguer and K-Means operator, and the thread-local reducer views of
// spec §4.6/§5/§9: per-task accumulators merged via a commutative monoid
// at task-join. Built on golang.org/x/sync/errgroup, the concurrency
// primitive this pack's text/vector-adjacent repositories (onemcp,
// contextd, aistore, among the other_examples manifests) standardize on
// for bounded fan-out — the teacher repo has no parallelism of its own to
// ground this on, so this package follows spec §5 directly and picks the
// idiomatic Go tool for it.
package reducer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/veclust/internal/errs"
)

// sequentialThreshold is the range size below which For runs inline
// instead of spawning goroutines — spec §5's "sequential fallback is
// acceptable for small ranges".
const sequentialThreshold = 64

// Options configures a parallel fan-out.
type Options struct {
	// Workers caps concurrent goroutines; 0 means runtime.GOMAXPROCS(0).
	Workers int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// WorkerCount reports how many distinct worker ids ForWorker will use for
// n items under these options — the size a Views pool addressed by worker
// id (rather than by item index) should be allocated at.
func (o Options) WorkerCount(n int) int {
	if n <= 0 {
		return 0
	}
	if n < sequentialThreshold {
		return 1
	}
	w := o.workers()
	if w > n {
		w = n
	}
	return w
}

// For runs fn(i) for every i in [0, n) across o.workers() goroutines,
// stopping at the first error and propagating ctx cancellation — the
// "suspend only at task-spawn/task-join boundaries" model of spec §5. For
// ranges smaller than sequentialThreshold it runs inline with no
// goroutines at all.
func For(ctx context.Context, n int, o Options, fn func(ctx context.Context, i int) error) error {
	return ForWorker(ctx, n, o, func(ctx context.Context, _, i int) error { return fn(ctx, i) })
}

// ForWorker behaves like For but also passes the calling goroutine's
// 0-based worker id to fn (always 0 in the sequential fallback), so
// per-goroutine state — a Views slot, a local accumulator — can be
// addressed by worker rather than by item. This is what the k-means++ and
// Lloyd-iteration reducer views in spec §4.8 need: one centre-set
// accumulator per goroutine, not one per point.
func ForWorker(ctx context.Context, n int, o Options, fn func(ctx context.Context, worker, i int) error) error {
	if n <= 0 {
		return nil
	}
	if n < sequentialThreshold {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return errs.Wrap(errs.Cancelled, err, "fan-out cancelled at index %d", i)
			}
			if err := fn(ctx, 0, i); err != nil {
				return err
			}
		}
		return nil
	}

	workers := o.workers()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return errs.Wrap(errs.Cancelled, err, "fan-out cancelled at index %d", i)
				}
				if err := fn(gctx, w, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// View is a lazily-initialized thread-local accumulator, one per
// concurrent worker, merged at join under a caller-supplied commutative
// monoid. Identity creation is lazy so that dimensions known only at the
// call site (k, d, ...) can flow into New. This is the "reducer view"
// concept of spec §4.6/§9, generalized across the word-container and
// vector-set reducers that need it.
type Views[T any] struct {
	newIdentity func() T
	slots       []T
	served      []bool
}

// NewViews creates one uninitialized slot per worker; newIdentity is
// invoked the first time a given slot is requested via At, satisfying
// spec §4.9's "reducer view served un-initialised: lazy-initialise on
// first use".
func NewViews[T any](workers int, newIdentity func() T) *Views[T] {
	return &Views[T]{newIdentity: newIdentity, slots: make([]T, workers), served: make([]bool, workers)}
}

// At returns worker w's view, creating it on first access.
func (v *Views[T]) At(w int) *T {
	if !v.served[w] {
		v.slots[w] = v.newIdentity()
		v.served[w] = true
	}
	return &v.slots[w]
}

// Served reports whether worker w's view was ever requested (an
// unserved view is the reducer's identity and safe to skip when merging).
func (v *Views[T]) Served(w int) bool { return v.served[w] }

// Reduce folds every served view into acc using merge, in worker order.
// Order does not matter for a correct (commutative) monoid — spec §5
// explicitly does not guarantee any particular merge order.
func (v *Views[T]) Reduce(acc *T, merge func(acc *T, view T)) {
	for w := range v.slots {
		if v.served[w] {
			merge(acc, v.slots[w])
		}
	}
}
