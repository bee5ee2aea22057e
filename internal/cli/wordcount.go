package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/happyhackingspace/veclust/internal/catalogue"
	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/corpus"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/wordbank"
	"github.com/happyhackingspace/veclust/internal/wordcontainer"
	"github.com/spf13/cobra"
)

func (c *CLI) newWordcountCommand() *cobra.Command {
	var (
		input      string
		topN       int
		descending bool
	)

	cmd := &cobra.Command{
		Use:   "wordcount",
		Short: "Report per-term document frequencies across a corpus",
		Example: `  veclust wordcount -i testdata/docs -d 10 -s
  veclust wordcount -i testdata/docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errs.New(errs.InvalidArgument, "wordcount: -i is required")
			}
			files, err := corpus.List(input)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errs.New(errs.EmptyInput, "wordcount: %s contains no documents", input)
			}

			cfg := config.Default()
			cfg.Warn = config.SlogWarn
			result, err := catalogue.Build(cmd.Context(), corpus.Paths(files), &cfg)
			if err != nil {
				return err
			}

			type row struct {
				term  string
				count int
			}
			rows := make([]row, 0, result.Aggregate.Size())
			result.Aggregate.Each(func(key string, _ wordbank.Handle, value wordcontainer.AppearCount) {
				rows = append(rows, row{term: key, count: value.DocFreq})
			})
			if descending {
				sort.Slice(rows, func(i, j int) bool { return rows[i].count > rows[j].count })
			} else {
				sort.Slice(rows, func(i, j int) bool { return rows[i].term < rows[j].term })
			}

			n := len(rows)
			if topN > 0 && topN < n {
				n = topN
			}
			for i := 0; i < n; i++ {
				fmt.Fprintf(os.Stdout, "%s\t%d\n", rows[i].term, rows[i].count)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input directory of documents")
	cmd.Flags().IntVarP(&topN, "top", "d", 0, "Show only the top N terms (0 = all)")
	cmd.Flags().BoolVarP(&descending, "sort", "s", false, "Sort by descending document frequency")
	return cmd
}
