// Package kmeans implements the K-Means operator of spec §4.8:
// k-means++ seeding and Lloyd iteration over dense or sparse data sets,
// using the sparse-vs-dense squared-distance optimisation and a
// commutative centre-set reducer for the parallel assignment step.
package kmeans

import (
	"context"
	"math/rand"

	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/dataset"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/reducer"
	"github.com/happyhackingspace/veclust/internal/vector"
)

// convergenceEpsilon is the squared-distance centroid-motion threshold of
// spec §4.8 step 5.
const convergenceEpsilon = 1e-4

// State is the operator's lifecycle, per spec §4.8: transitions are
// single-threaded from the caller's perspective even though the work
// within a state fans out across goroutines.
type State int

const (
	Uninit State = iota
	Seeded
	Iterating
	Converged
	Capped
)

func (s State) String() string {
	switch s {
	case Uninit:
		return "uninit"
	case Seeded:
		return "seeded"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case Capped:
		return "capped"
	default:
		return "unknown"
	}
}

// points is the random-access input view K-Means iterates: a data set's
// rows, dense or sparse, addressed by index.
type points struct {
	set *dataset.Set
}

func (p points) Len() int { return p.set.NumRows() }

// sqDist returns the squared distance from point i to centre c, using the
// sparse-dense optimisation (with c's cached squared norm) when the point
// store is sparse.
func (p points) sqDist(i int, c vector.Centre) float64 {
	if p.set.Dense != nil {
		return p.set.Dense.Row(i).SquareEuclideanDistance(c.Dense)
	}
	return p.set.Sparse.Row(i).SqDistDense(c.Dense, c.SqNorm)
}

// addInto accumulates point i into view (adding its values, bumping Count).
func (p points) addInto(i int, view *vector.Centre) {
	if p.set.Dense != nil {
		view.AddDense(p.set.Dense.Row(i))
		return
	}
	view.AddSparse(p.set.Sparse.Row(i))
}

func centreFromPoint(pts points, i, dim int) vector.Centre {
	c := vector.NewCentre(dim)
	pts.addInto(i, &c)
	c.Count = 0 // the point's values are copied verbatim; occupancy is a Lloyd-iteration concept, not meaningful yet
	c.RefreshSqNorm()
	return c
}

func firstUnchosen(chosen []bool) int {
	for i, c := range chosen {
		if !c {
			return i
		}
	}
	return 0
}

// Operator holds K-Means state across the Seed/Run call sequence.
type Operator struct {
	k   int
	dim int

	state       State
	centres     []vector.Centre
	assignments []int
	lastSSE     float64
	lastIters   int

	cfg *config.Config
}

// New validates cfg and constructs an uninitialised operator for data of
// dimension dim.
func New(cfg *config.Config, dim int) (*Operator, error) {
	if err := cfg.ValidateForKMeans(); err != nil {
		return nil, err
	}
	if dim <= 0 {
		return nil, errs.New(errs.InvalidArgument, "kmeans: dim must be > 0, got %d", dim)
	}
	return &Operator{k: cfg.NumClusters, dim: dim, state: Uninit, cfg: cfg}, nil
}

// State reports the operator's current lifecycle state.
func (op *Operator) State() State { return op.state }

// Centres returns the current centre set; valid once Seed has run.
func (op *Operator) Centres() []vector.Centre { return op.centres }

// WithinSSE returns the sum of squared distances from the last completed
// iteration.
func (op *Operator) WithinSSE() float64 { return op.lastSSE }

// NumIterations returns the iteration count Run last stopped at.
func (op *Operator) NumIterations() int { return op.lastIters }

// Assignments returns the per-point cluster index from the last completed
// Lloyd sweep.
func (op *Operator) Assignments() []int { return op.assignments }

// Seed picks k initial centres from set using k-means++ (spec §4.8,
// initialisation steps 1-5).
func (op *Operator) Seed(ctx context.Context, set *dataset.Set) error {
	if set.IsEmpty() {
		return errs.New(errs.EmptyInput, "kmeans: cannot seed from an empty data set")
	}
	n := set.NumRows()
	if op.k > n {
		return errs.New(errs.InvalidArgument, "kmeans: num_clusters %d exceeds point count %d", op.k, n)
	}
	pts := points{set: set}
	rng := rand.New(rand.NewSource(op.cfg.RandomSeed))

	centres := make([]vector.Centre, 0, op.k)
	chosen := make([]bool, n)

	first := rng.Intn(n)
	centres = append(centres, centreFromPoint(pts, first, op.dim))
	chosen[first] = true

	d := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		if i == first {
			continue
		}
		d[i] = pts.sqDist(i, centres[0])
		sum += d[i]
	}

	for len(centres) < op.k {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(errs.Cancelled, err, "kmeans: seeding cancelled")
		}

		next := pickWeighted(rng, d, chosen, sum)
		newCentre := centreFromPoint(pts, next, op.dim)
		centres = append(centres, newCentre)
		chosen[next] = true
		d[next] = 0

		err := reducer.For(ctx, n, reducer.Options{Workers: op.cfg.Workers()}, func(_ context.Context, i int) error {
			if chosen[i] {
				return nil
			}
			nd := pts.sqDist(i, newCentre)
			if nd < d[i] {
				d[i] = nd
			}
			return nil
		})
		if err != nil {
			return err
		}
		sum = 0
		for i := 0; i < n; i++ {
			if !chosen[i] {
				sum += d[i]
			}
		}
	}

	op.centres = centres
	op.state = Seeded
	return nil
}

// pickWeighted draws the next k-means++ centre index, weighted by d, among
// points not yet chosen (spec §4.8 step 3). It always returns an unchosen
// index, falling back to the first unchosen point if sum has collapsed to
// zero (every remaining candidate coincides with an existing centre).
func pickWeighted(rng *rand.Rand, d []float64, chosen []bool, sum float64) int {
	if sum <= 0 {
		return firstUnchosen(chosen)
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i, isChosen := range chosen {
		if isChosen {
			continue
		}
		acc += d[i]
		if acc > r {
			return i
		}
	}
	return firstUnchosen(chosen)
}

// Run performs Lloyd iteration to convergence or until max_iters, per
// spec §4.8. Seed must have completed first.
func (op *Operator) Run(ctx context.Context, set *dataset.Set) error {
	if op.state != Seeded && op.state != Iterating {
		return errs.New(errs.Invariant, "kmeans: Run requires Seed to have completed")
	}
	op.state = Iterating
	pts := points{set: set}
	assignments := make([]int, set.NumRows())
	for i := range assignments {
		assignments[i] = -1
	}

	for {
		done, err := op.step(ctx, pts, assignments)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// step runs a single Lloyd sweep and updates the operator's state,
// returning true once the operator has transitioned to Converged or
// Capped. Exposed at package level (via the unexported helper, tested in
// package) so iteration-by-iteration SSE can be observed directly.
func (op *Operator) step(ctx context.Context, pts points, assignments []int) (bool, error) {
	if op.cfg.MaxIterations > 0 && op.lastIters >= op.cfg.MaxIterations {
		op.assignments = assignments
		op.state = Capped
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, errs.Wrap(errs.Cancelled, err, "kmeans: iteration cancelled")
	}

	fresh, changed, sse, err := op.assignAndAccumulate(ctx, pts, assignments)
	if err != nil {
		return false, err
	}
	op.lastIters++

	prevDense := snapshotCentres(op.centres)
	for j := range fresh {
		if fresh[j].Count == 0 {
			// spec §4.8 step 4: empty centres are retained as-is, not
			// re-seeded or zeroed — keep last iteration's centre whole.
			op.cfg.Warnf("empty-centroid", "cluster %d received no points in iteration %d; retaining previous centroid", j, op.lastIters)
			fresh[j] = op.centres[j]
			continue
		}
		fresh[j].ScaleByCount()
		fresh[j].RefreshSqNorm()
	}
	op.centres = fresh
	op.lastSSE = sse

	if !changed || centresStable(prevDense, op.centres) {
		op.assignments = assignments
		op.state = Converged
		return true, nil
	}
	return false, nil
}

// assignAndAccumulate runs one Lloyd sweep: assign every point to its
// nearest centre, fold the assignment into per-worker reducer views, and
// reduce those views into a fresh centre set (spec §4.8 Lloyd steps 1-3).
func (op *Operator) assignAndAccumulate(ctx context.Context, pts points, assignments []int) ([]vector.Centre, bool, float64, error) {
	n := pts.Len()
	workerCount := reducer.Options{Workers: op.cfg.Workers()}.WorkerCount(n)

	views := reducer.NewViews(workerCount, func() []vector.Centre {
		cs := make([]vector.Centre, op.k)
		for i := range cs {
			cs[i] = vector.NewCentre(op.dim)
		}
		return cs
	})
	sseViews := reducer.NewViews(workerCount, func() float64 { return 0 })
	changed := false // benign last-wins race across goroutines, per spec §4.8 step 2

	err := reducer.ForWorker(ctx, n, reducer.Options{Workers: op.cfg.Workers()}, func(_ context.Context, worker, i int) error {
		best, bestDist := 0, pts.sqDist(i, op.centres[0])
		for j := 1; j < op.k; j++ {
			dist := pts.sqDist(i, op.centres[j])
			if dist < bestDist {
				best, bestDist = j, dist
			}
		}
		if assignments[i] != best {
			assignments[i] = best
			changed = true
		}
		view := views.At(worker)
		pts.addInto(i, &(*view)[best])
		*sseViews.At(worker) += bestDist
		return nil
	})
	if err != nil {
		return nil, false, 0, err
	}

	fresh := make([]vector.Centre, op.k)
	for j := range fresh {
		fresh[j] = vector.NewCentre(op.dim)
	}
	views.Reduce(&fresh, func(acc *[]vector.Centre, view []vector.Centre) {
		for j := range view {
			(*acc)[j].Merge(view[j])
		}
	})

	totalSSE := 0.0
	sseViews.Reduce(&totalSSE, func(acc *float64, view float64) { *acc += view })

	return fresh, changed, totalSSE, nil
}

func snapshotCentres(cs []vector.Centre) []vector.Dense {
	out := make([]vector.Dense, len(cs))
	for i, c := range cs {
		out[i] = c.Dense.Copy()
	}
	return out
}

// centresStable reports whether every centre moved by less than
// convergenceEpsilon in squared distance since prev — spec §4.8 step 5.
func centresStable(prev []vector.Dense, cur []vector.Centre) bool {
	for i := range cur {
		if cur[i].SquareEuclideanDistance(prev[i]) >= convergenceEpsilon {
			return false
		}
	}
	return true
}
