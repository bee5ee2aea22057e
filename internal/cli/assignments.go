package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/happyhackingspace/veclust/internal/dataset"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/vector"
)

// writeAssignments writes one "<row>\t<cluster>" line per input row,
// followed by a "% centroids" comment block giving each centre's dense
// coordinates — driver-parity output, not part of the core's contract.
func writeAssignments(path string, set *dataset.Set, assignments []int, centres []vector.Centre) error {
	var w *bufio.Writer
	if path == "-" {
		w = bufio.NewWriter(os.Stdout)
	} else {
		f, err := os.Create(path)
		if err != nil {
			return errs.Wrap(errs.Io, err, "kmeans: creating %s", path)
		}
		defer f.Close()
		w = bufio.NewWriter(f)
	}

	for i, cluster := range assignments {
		if _, err := fmt.Fprintf(w, "%d\t%d\n", i, cluster); err != nil {
			return errs.Wrap(errs.Io, err, "kmeans: writing assignment %d", i)
		}
	}

	fmt.Fprintf(w, "%% centroids (count=%d, dim=%d)\n", len(centres), set.Dim())
	for i, c := range centres {
		fields := make([]string, len(c.Values))
		for d, v := range c.Values {
			fields[d] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintf(w, "%% %d: %s\n", i, strings.Join(fields, ","))
	}

	return w.Flush()
}
