// Package veclust builds a TF-IDF term catalogue from a directory of text
// documents and clusters the resulting vectors with K-Means.
//
//	p := veclust.New(cfg)
//	result, err := p.Build(context.Background(), "testdata/docs")
//	fmt.Println(result.Clusters, result.WithinSSE)
package veclust

import (
	"context"

	"github.com/happyhackingspace/veclust/internal/catalogue"
	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/corpus"
	"github.com/happyhackingspace/veclust/internal/dataset"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/kmeans"
	"github.com/happyhackingspace/veclust/internal/normalize"
	"github.com/happyhackingspace/veclust/internal/tfidf"
	"github.com/happyhackingspace/veclust/internal/vector"
	"github.com/happyhackingspace/veclust/internal/vectorset"
	"github.com/happyhackingspace/veclust/internal/wordcontainer"
)

// Pipeline runs the catalogue-build -> vectorise -> normalise -> cluster
// sequence of spec §1's overview against a directory of documents.
type Pipeline struct {
	cfg config.Config
}

// New constructs a Pipeline under the given configuration. cfg is copied;
// later mutation of the caller's value has no effect.
func New(cfg config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Result is everything a Build call produces: the per-document cluster
// assignment, the final within-cluster SSE, the iteration count K-Means
// stopped at, and the catalogue the vectors were built from (useful for
// inspecting term ids or document frequencies after the fact). Vectors
// holds the TF-IDF set as scaled for clustering (normalize.ScaleSparse).
// Centroids is reported back in the original TF-IDF range (Unscale'd),
// not the normalised one Vectors and WithinSSE are in.
type Result struct {
	Catalogue   *catalogue.Result
	Vectors     *vectorset.Sparse
	Clusters    []int
	Centroids   []vector.Centre
	Centres     int
	WithinSSE   float64
	Iterations  int
	KMeansState kmeans.State
}

// Build walks dir, builds the document catalogue (word or n-gram, per
// cfg.ByWords/cfg.NgramSize), vectorises it with TF-IDF, and clusters the
// result with K-Means. Any failure at any stage aborts the whole run; a
// directory with zero documents fails with errs.EmptyInput.
func (p *Pipeline) Build(ctx context.Context, dir string) (*Result, error) {
	files, err := corpus.List(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errs.New(errs.EmptyInput, "veclust: %s contains no documents", dir)
	}
	paths := corpus.Paths(files)

	cat, err := p.buildCatalogue(ctx, paths)
	if err != nil {
		return nil, err
	}
	tfidf.AssignIDs(cat.Aggregate)

	vecs, err := tfidf.BuildDocumentMajor(ctx, cat.PerFile, cat.Aggregate, &p.cfg)
	if err != nil {
		return nil, err
	}

	set, err := assembleDataset(vecs, cat)
	if err != nil {
		return nil, err
	}

	extrema, err := normalize.Compute(set)
	if err != nil {
		return nil, err
	}
	normalize.ScaleSparse(vecs, extrema)

	op, err := kmeans.New(&p.cfg, set.Dim())
	if err != nil {
		return nil, err
	}
	if err := op.Seed(ctx, set); err != nil {
		return nil, err
	}
	if err := op.Run(ctx, set); err != nil {
		return nil, err
	}

	centres := op.Centres()
	for i := range centres {
		normalize.UnscaleDense(centres[i].Values, extrema)
		centres[i].RefreshSqNorm()
	}

	return &Result{
		Catalogue:   cat,
		Vectors:     vecs,
		Clusters:    op.Assignments(),
		Centroids:   centres,
		Centres:     len(centres),
		WithinSSE:   op.WithinSSE(),
		Iterations:  op.NumIterations(),
		KMeansState: op.State(),
	}, nil
}

// buildCatalogue dispatches to the word or n-gram cataloguer per cfg.
func (p *Pipeline) buildCatalogue(ctx context.Context, paths []string) (*catalogue.Result, error) {
	if p.cfg.ByWords {
		return catalogue.Build(ctx, paths, &p.cfg)
	}

	perFile := make([]*wordcontainer.Map[int], len(paths))
	for i, path := range paths {
		m, err := catalogue.FileNgrams(ctx, path, p.cfg.NgramSize, &p.cfg)
		if err != nil {
			return nil, err
		}
		perFile[i] = m
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
	return &catalogue.Result{Files: paths, PerFile: perFile, Aggregate: agg}, nil
}

// assembleDataset couples the freshly built vector set with the
// catalogue's term index into the dataset.Set tuple the normalizer and
// K-Means operator both expect.
func assembleDataset(vecs *vectorset.Sparse, cat *catalogue.Result) (*dataset.Set, error) {
	set := &dataset.Set{Sparse: vecs, Columns: cat.Aggregate}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
