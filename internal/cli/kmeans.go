package cli

import (
	"context"
	"log/slog"

	"github.com/happyhackingspace/veclust/internal/arff"
	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/dataset"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/kmeans"
	"github.com/happyhackingspace/veclust/internal/normalize"
	"github.com/happyhackingspace/veclust/internal/vector"
	"github.com/happyhackingspace/veclust/internal/vectorset"
	"github.com/spf13/cobra"
)

func (c *CLI) newKmeansCommand() *cobra.Command {
	var (
		input       string
		output      string
		numClusters int
		maxIters    int
		restarts    int
		forceDense  bool
	)

	cmd := &cobra.Command{
		Use:   "kmeans",
		Short: "Cluster an ARFF vector set with K-Means",
		Example: `  veclust kmeans -i weights.arff -o assignments.arff -c 5
  veclust kmeans -i weights.arff -o - -c 3 -m 100 -r 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" || output == "" {
				return errs.New(errs.InvalidArgument, "kmeans: -i and -o are required")
			}

			cfg := config.Default()
			cfg.Warn = config.SlogWarn
			cfg.NumClusters = numClusters
			cfg.MaxIterations = maxIters
			cfg.NumRestarts = restarts
			cfg.ForceDense = forceDense
			if err := cfg.ValidateForKMeans(); err != nil {
				return err
			}

			reader := arff.NewReader(arff.ModeARFF, &cfg)
			set, err := reader.Read(input)
			if err != nil {
				return err
			}
			if set.IsEmpty() {
				return errs.New(errs.EmptyInput, "kmeans: %s has no rows", input)
			}
			if cfg.ForceDense && set.Sparse != nil {
				dense := vectorset.NewDense(set.Sparse.Rows(), set.Dim())
				for r := 0; r < set.Sparse.Rows(); r++ {
					i, err := dense.EmplaceBack()
					if err != nil {
						return err
					}
					row := dense.Row(i)
					set.Sparse.Row(r).AddToDense(&row)
				}
				set.Dense, set.Sparse = dense, nil
			}

			extrema, err := normalize.Compute(set)
			if err != nil {
				return err
			}
			scaleSet(set, extrema)

			best, err := runRestarts(cmd.Context(), &cfg, set, restarts)
			if err != nil {
				return err
			}

			for i := range best.centres {
				normalize.UnscaleDense(best.centres[i].Values, extrema)
				best.centres[i].RefreshSqNorm()
			}
			slog.Info("kmeans finished", "state", best.state, "within_sse", best.sse, "iterations", best.iters)

			return writeAssignments(output, set, best.assignments, best.centres)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input ARFF vector set")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output assignment file (or - for stdout)")
	cmd.Flags().IntVarP(&numClusters, "clusters", "c", 0, "Number of clusters (required, >0)")
	cmd.Flags().IntVarP(&maxIters, "max-iterations", "m", 0, "Max Lloyd iterations (0 = unlimited)")
	cmd.Flags().IntVarP(&restarts, "restarts", "r", 0, "Number of restarts, keeping the lowest within-SSE run")
	cmd.Flags().BoolVarP(&forceDense, "dense", "d", false, "Force dense point storage during clustering")
	return cmd
}

// scaleSet normalises set's vectors in place, dense or sparse.
func scaleSet(set *dataset.Set, extrema []normalize.Extrema) {
	if set.Dense != nil {
		for r := 0; r < set.Dense.Rows(); r++ {
			normalize.ScaleDense(set.Dense.Row(r).Values, extrema)
		}
		return
	}
	normalize.ScaleSparse(set.Sparse, extrema)
}

// kmeansRun is the outcome of one K-Means initialisation.
type kmeansRun struct {
	centres     []vector.Centre
	assignments []int
	sse         float64
	iters       int
	state       kmeans.State
}

// runRestarts runs 1+restarts independent K-Means initialisations against
// set and keeps the one with the lowest within-cluster SSE — §4.14's `-r`
// restart loop.
func runRestarts(ctx context.Context, cfg *config.Config, set *dataset.Set, restarts int) (kmeansRun, error) {
	var best kmeansRun
	haveBest := false

	for attempt := 0; attempt <= restarts; attempt++ {
		runCfg := *cfg
		runCfg.RandomSeed = cfg.RandomSeed + int64(attempt)
		op, err := kmeans.New(&runCfg, set.Dim())
		if err != nil {
			return kmeansRun{}, err
		}
		if err := op.Seed(ctx, set); err != nil {
			return kmeansRun{}, err
		}
		if err := op.Run(ctx, set); err != nil {
			return kmeansRun{}, err
		}
		run := kmeansRun{
			centres:     op.Centres(),
			assignments: op.Assignments(),
			sse:         op.WithinSSE(),
			iters:       op.NumIterations(),
			state:       op.State(),
		}
		if !haveBest || run.sse < best.sse {
			best = run
			haveBest = true
		}
	}
	return best, nil
}
