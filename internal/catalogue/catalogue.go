// Package catalogue implements the parallel word/n-gram catalogue builder
// of spec §4.5: per-file term maps folded into a directory-wide document
// frequency aggregate.
package catalogue

import (
	"context"
	"hash/fnv"
	"os"
	"strings"

	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/reducer"
	"github.com/happyhackingspace/veclust/internal/wordbank"
	"github.com/happyhackingspace/veclust/internal/wordcontainer"
)

// chunkTargetSize is the ~1 MiB split size of spec §4.5 step 1.
const chunkTargetSize = 1 << 20

// ngramSeparator is the byte inserted between words when an n-gram's
// combined hash is computed, per spec §4.5's n-gram variant.
const ngramSeparator = 0x1f

// File builds the per-file term catalogue at path: a word -> occurrence
// count map, ready to be folded into a directory aggregate via
// wordcontainer.CountPresenceFrom. The file is read whole and enregistered
// into its own bank (step 1's "memory-map or read into a shared chunk");
// it is then split into ~1 MiB pieces, each adjusted backward to the
// nearest whitespace, and tokenised concurrently into thread-local maps
// that are reduced pairwise at join.
func File(ctx context.Context, path string, cfg *config.Config) (*wordcontainer.Map[int], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading %s", path)
	}

	provenance := wordbank.New()
	provenance.Enregister(data)

	bounds := splitOnWhitespace(data, chunkTargetSize)
	if len(bounds) == 0 {
		return wordcontainer.NewMap[int](nil), nil
	}

	views := reducer.NewViews(len(bounds), func() *wordcontainer.Map[int] {
		return wordcontainer.NewMap[int](nil)
	})

	err = reducer.For(ctx, len(bounds), reducer.Options{Workers: cfg.Workers()}, func(_ context.Context, i int) error {
		lo, hi := bounds[i][0], bounds[i][1]
		view := views.At(i)
		tokenize(data[lo:hi], func(word []byte) {
			(*view).Upsert(string(toUpper(word)), func(cur int, _ bool) int { return cur + 1 })
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	agg := wordcontainer.NewMap[int](nil)
	views.Reduce(&agg, func(acc **wordcontainer.Map[int], view *wordcontainer.Map[int]) {
		(*acc).Reduce(view, wordcontainer.IntAdd{})
	})
	return agg, nil
}

// FileNgrams builds a per-file n-gram catalogue: a sliding window of size
// n over the tokenised word stream, keyed by the n words joined with
// ngramSeparator. The per-window FNV-1a combined hash is computed for
// parity with the original hash-keyed n-gram map, but the join string
// itself is what Go's built-in map equality actually keys on.
func FileNgrams(ctx context.Context, path string, n int, cfg *config.Config) (*wordcontainer.Map[int], error) {
	if n <= 0 {
		return nil, errs.New(errs.InvalidArgument, "ngram size must be positive, got %d", n)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading %s", path)
	}

	var words []string
	tokenize(data, func(word []byte) {
		words = append(words, string(toUpper(word)))
	})

	agg := wordcontainer.NewMap[int](nil)
	for i := 0; i+n <= len(words); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errs.Wrap(errs.Cancelled, err, "ngram scan cancelled at word %d", i)
			}
		}
		window := words[i : i+n]
		key := ngramKey(window)
		agg.Upsert(key, func(cur int, _ bool) int { return cur + 1 })
	}
	_ = cfg
	return agg, nil
}

// ngramKey joins the words of an n-gram window into the string Go's map
// actually hashes and compares by.
func ngramKey(words []string) string { return strings.Join(words, string(rune(ngramSeparator))) }

// ngramHash computes the FNV-1a combined hash of an n-gram window, each
// word's bytes separated by ngramSeparator — spec §4.5's hashing scheme,
// kept for provenance even though ngramKey is what the Go map keys on.
func ngramHash(words []string) uint64 {
	h := fnv.New64a()
	for i, w := range words {
		if i > 0 {
			h.Write([]byte{ngramSeparator})
		}
		h.Write([]byte(w))
	}
	return h.Sum64()
}

// Result is a directory-wide catalogue build: every file's own term map
// plus the document-frequency aggregate across all of them (ids not yet
// assigned; see the tfidf package's AssignIDs).
type Result struct {
	Files     []string
	PerFile   []*wordcontainer.Map[int]
	Aggregate *wordcontainer.Map[wordcontainer.AppearCount]
}

// Build tokenises every file concurrently and folds each resulting
// per-file map into the global aggregate via count_presence, so that
// repeated terms within one document bump document frequency by exactly
// one — spec §4.5's "aggregate accumulates document frequencies without
// double-counting repeats inside a file". Folding itself runs
// single-threaded: the aggregate is one shared container and its own
// reduce is not wired for concurrent writers.
func Build(ctx context.Context, files []string, cfg *config.Config) (*Result, error) {
	perFile := make([]*wordcontainer.Map[int], len(files))
	err := reducer.For(ctx, len(files), reducer.Options{Workers: cfg.Workers()}, func(ctx context.Context, i int) error {
		m, err := File(ctx, files[i], cfg)
		if err != nil {
			return err
		}
		perFile[i] = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	agg := wordcontainer.NewMap[wordcontainer.AppearCount](nil)
	for _, m := range perFile {
		wordcontainer.CountPresenceFrom(agg, m, func(cur wordcontainer.AppearCount, present bool) wordcontainer.AppearCount {
			if present {
				return wordcontainer.AppearCount{DocFreq: cur.DocFreq + 1}
			}
			return wordcontainer.AppearCount{DocFreq: 1}
		})
	}
	return &Result{Files: files, PerFile: perFile, Aggregate: agg}, nil
}

// splitOnWhitespace partitions data into contiguous [start,end) bounds of
// approximately target bytes each, every split (except the final one)
// backed off to the nearest preceding whitespace byte — spec §4.5 step 1.
func splitOnWhitespace(data []byte, target int) [][2]int {
	n := len(data)
	if n == 0 {
		return nil
	}
	var bounds [][2]int
	start := 0
	for start < n {
		end := start + target
		if end >= n {
			end = n
		} else {
			probe := end
			for probe > start && !isSpace(data[probe]) {
				probe--
			}
			if probe == start {
				end = start + target // no whitespace in range: hard split
			} else {
				end = probe
			}
		}
		bounds = append(bounds, [2]int{start, end})
		start = end
	}
	return bounds
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// isWordByte reports whether b belongs to the [A-Z'] character class once
// folded to upper case — spec §4.5 step 2.
func isWordByte(b byte) bool {
	u := toUpperByte(b)
	return (u >= 'A' && u <= 'Z') || u == '\''
}

func toUpperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// toUpper returns an upper-cased copy of word.
func toUpper(word []byte) []byte {
	out := make([]byte, len(word))
	for i, b := range word {
		out[i] = toUpperByte(b)
	}
	return out
}

// tokenize emits every maximal run of [A-Z'] (case-folded) in chunk, in
// order, via emit.
func tokenize(chunk []byte, emit func(word []byte)) {
	start := -1
	for i := 0; i <= len(chunk); i++ {
		wordByte := i < len(chunk) && isWordByte(chunk[i])
		switch {
		case wordByte && start == -1:
			start = i
		case !wordByte && start != -1:
			emit(chunk[start:i])
			start = -1
		}
	}
}
