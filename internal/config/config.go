// Package config collects the explicit configuration that replaces the
// driver globals (infile, outfile, num_clusters, max_iters, force_dense,
// by_words, do_sort, rnd_init) described in spec §9.
package config

import (
	"log/slog"
	"runtime"

	"github.com/happyhackingspace/veclust/internal/errs"
)

// Algorithm records the TF-IDF construction strategy named by the legacy
// "-a {h|u|s}" driver flag. The catalogue and tfidf packages do not read
// it: every value builds per-document catalogues as hash maps.
type Algorithm int

const (
	// AllHash is "-a h", the all-hash variant.
	AllHash Algorithm = iota
	// UnsortedFast is "-a u", the unsorted-fast variant.
	UnsortedFast
	// SortedFast is "-a s", the sorted-fast variant.
	SortedFast
)

func (a Algorithm) String() string {
	switch a {
	case AllHash:
		return "all-hash"
	case UnsortedFast:
		return "unsorted-fast"
	case SortedFast:
		return "sorted-fast"
	default:
		return "unknown"
	}
}

// WarnFunc receives a warning that must never change a returned error —
// the side channel described in spec §7.
type WarnFunc func(kind, msg string, args ...any)

// Config is passed into every core entry point instead of relying on
// package-level globals.
type Config struct {
	InputPath  string
	OutputPath string

	NumClusters   int
	MaxIterations int // 0 = unlimited
	NumRestarts   int // keep the restart with the lowest within-SSE

	ForceDense bool

	ByWords   bool // true = word mode, false = n-gram mode
	NgramSize int  // only meaningful when ByWords is false

	DoSort             bool
	TermMajor          bool
	UseIntermediateMap bool
	Algorithm          Algorithm

	RandomSeed int64
	NumWorkers int // 0 = runtime.GOMAXPROCS(0)

	Warn WarnFunc
}

// Default returns a Config with the same defaults the legacy drivers used.
func Default() Config {
	return Config{
		ByWords:    true,
		NgramSize:  1,
		Algorithm:  AllHash,
		NumWorkers: 0,
		Warn:       SlogWarn,
	}
}

// Workers returns the configured worker count, resolving 0 to GOMAXPROCS.
func (c Config) Workers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// warn calls the configured warning sink, defaulting to a no-op.
func (c Config) warn(kind, msg string, args ...any) {
	if c.Warn != nil {
		c.Warn(kind, msg, args...)
	}
}

// Warnf is the call site form used throughout the core packages.
func (c Config) Warnf(kind, msg string, args ...any) { c.warn(kind, msg, args...) }

// ValidateForKMeans checks the fields the K-Means operator depends on,
// per the failure table in spec §4.9.
func (c Config) ValidateForKMeans() error {
	if c.NumClusters <= 0 {
		return errs.New(errs.InvalidArgument, "num_clusters must be > 0, got %d", c.NumClusters)
	}
	if c.NumRestarts < 0 {
		return errs.New(errs.InvalidArgument, "num_restarts must be >= 0, got %d", c.NumRestarts)
	}
	return nil
}

// SlogWarn is the default WarnFunc, wired to log/slog the way the teacher's
// CLI wires its own logging in internal/cli.
func SlogWarn(kind, msg string, args ...any) {
	slog.Warn(msg, append([]any{"kind", kind}, args...)...)
}
