package cli

import (
	"os"

	"github.com/happyhackingspace/veclust/internal/arff"
	"github.com/happyhackingspace/veclust/internal/catalogue"
	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/corpus"
	"github.com/happyhackingspace/veclust/internal/dataset"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/tfidf"
	"github.com/spf13/cobra"
)

func (c *CLI) newTfidfCommand() *cobra.Command {
	var (
		input       string
		output      string
		doSort      bool
		termMajor   bool
		algorithm   string
		useInterMap bool
	)

	cmd := &cobra.Command{
		Use:   "tfidf",
		Short: "Build a TF-IDF term catalogue from a directory of documents",
		Example: `  veclust tfidf -i testdata/docs -o weights.arff
  veclust tfidf -i testdata/docs -o - -w -a s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" || output == "" {
				return errs.New(errs.InvalidArgument, "tfidf: -i and -o are required")
			}

			cfg := config.Default()
			cfg.Warn = config.SlogWarn
			cfg.DoSort = doSort
			cfg.TermMajor = termMajor
			cfg.UseIntermediateMap = useInterMap
			var err error
			cfg.Algorithm, err = parseAlgorithm(algorithm)
			if err != nil {
				return err
			}

			files, err := corpus.List(input)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errs.New(errs.EmptyInput, "tfidf: %s contains no documents", input)
			}

			cat, err := catalogue.Build(cmd.Context(), corpus.Paths(files), &cfg)
			if err != nil {
				return err
			}
			tfidf.AssignIDs(cat.Aggregate)

			var set *dataset.Set
			if termMajor {
				vs, err := tfidf.BuildTermMajor(cmd.Context(), cat.PerFile, cat.Aggregate, &cfg)
				if err != nil {
					return err
				}
				set = &dataset.Set{Sparse: vs, Columns: cat.Aggregate, Transposed: true}
			} else {
				vs, err := tfidf.BuildDocumentMajor(cmd.Context(), cat.PerFile, cat.Aggregate, &cfg)
				if err != nil {
					return err
				}
				set = &dataset.Set{Sparse: vs, Columns: cat.Aggregate}
			}

			return writeOutput(output, set)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input directory of documents")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output ARFF file (or - for stdout)")
	cmd.Flags().BoolVarP(&doSort, "sort", "s", false, "Legacy sort option; accepted, has no effect on the build")
	cmd.Flags().BoolVarP(&termMajor, "term-major", "w", false, "Emit a term-major (transposed) vector set")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "h", "Legacy algorithm variant: h (all-hash), u (unsorted-fast), s (sorted-fast); validated, has no effect on the build")
	cmd.Flags().BoolVarP(&useInterMap, "intermediate-map", "m", false, "Legacy intermediate-map option; accepted, has no effect on the build")
	return cmd
}

func parseAlgorithm(s string) (config.Algorithm, error) {
	switch s {
	case "h":
		return config.AllHash, nil
	case "u":
		return config.UnsortedFast, nil
	case "s":
		return config.SortedFast, nil
	default:
		return 0, errs.New(errs.InvalidArgument, "tfidf: unknown algorithm %q, want h, u, or s", s)
	}
}

// writeOutput writes set as ARFF to path, or to stdout when path is "-".
func writeOutput(path string, set *dataset.Set) error {
	w := arff.NewWriter(arff.ModeARFF)
	if path == "-" {
		return w.Write(os.Stdout, set, "veclust")
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.Io, err, "tfidf: creating %s", path)
	}
	defer f.Close()
	return w.Write(f, set, "veclust")
}
