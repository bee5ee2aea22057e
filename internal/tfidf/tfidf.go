// Package tfidf implements the TF-IDF builder of spec §4.6: id assignment,
// document-major and term-major sparse vectorisation, and a scored-map
// variant that returns a term -> tfidf score map per document.
package tfidf

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/happyhackingspace/veclust/internal/config"
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/reducer"
	"github.com/happyhackingspace/veclust/internal/vectorset"
	"github.com/happyhackingspace/veclust/internal/wordbank"
	"github.com/happyhackingspace/veclust/internal/wordcontainer"
)

// AssignIDs stamps every distinct term in aggregate with a unique id in
// ascending lexical order — spec §4.6's assign_ids pre-condition pass.
// Assigning in sorted order (rather than Map's unspecified iteration
// order) makes the mapping reproducible across runs without requiring
// every downstream consumer to re-sort.
func AssignIDs(aggregate *wordcontainer.Map[wordcontainer.AppearCount]) {
	keys := make([]string, 0, aggregate.Size())
	aggregate.Each(func(key string, _ wordbank.Handle, _ wordcontainer.AppearCount) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	for id, k := range keys {
		v, _ := aggregate.Find(k)
		v.ID = id
		aggregate.Insert(k, v)
	}
}

// weight computes tf * log10((N+1)/(df+1)), the scoring function named in
// spec §4.6 for both the document-major and term-major builders.
func weight(tf, n, df int) float64 {
	return float64(tf) * math.Log10(float64(n+1)/float64(df+1))
}

// BuildDocumentMajor produces one sparse vector per document — spec
// §4.6's default output. Document i's vector is allocated as a single
// stripe sized to its own term count, populated with (index=term id,
// value=tfidf), and sorted by index since Map iteration order is not
// guaranteed monotone in id.
func BuildDocumentMajor(ctx context.Context, perFile []*wordcontainer.Map[int], aggregate *wordcontainer.Map[wordcontainer.AppearCount], cfg *config.Config) (*vectorset.Sparse, error) {
	n := len(perFile)
	if n == 0 {
		return nil, errs.New(errs.EmptyInput, "tfidf: no documents to vectorise")
	}
	dim := aggregate.Size()
	nnz := 0
	for _, m := range perFile {
		nnz += m.Size()
	}
	vs := vectorset.NewSparse(n, dim, nnz)

	// EmplaceBack advances a single shared cursor; it must run
	// sequentially before the per-document fill-in fans out.
	rowOf := make([]int, n)
	for i := 0; i < n; i++ {
		idx, err := vs.EmplaceBack(dim, perFile[i].Size())
		if err != nil {
			return nil, err
		}
		rowOf[i] = idx
	}

	err := reducer.For(ctx, n, reducer.Options{Workers: cfg.Workers()}, func(_ context.Context, i int) error {
		k := 0
		var failure error
		perFile[i].Each(func(term string, _ wordbank.Handle, tf int) {
			if failure != nil {
				return
			}
			av, ok := aggregate.Find(term)
			if !ok {
				failure = errs.New(errs.Invariant, "tfidf: term %q missing from aggregate", term)
				return
			}
			vs.SetNonzero(rowOf[i], k, av.ID, weight(tf, n, av.DocFreq))
			k++
		})
		return failure
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		row := vs.Row(rowOf[i])
		row.SortByIndex()
	}
	return vs, nil
}

// BuildTermMajor produces one sparse vector per term: entries
// (index=document, value=tfidf). Per-term row offsets are precomputed
// from document frequency, concurrent writers into a term's row advance a
// per-term atomic cursor, and each row is sorted by index once filled —
// spec §4.6.
func BuildTermMajor(ctx context.Context, perFile []*wordcontainer.Map[int], aggregate *wordcontainer.Map[wordcontainer.AppearCount], cfg *config.Config) (*vectorset.Sparse, error) {
	n := len(perFile)
	if n == 0 {
		return nil, errs.New(errs.EmptyInput, "tfidf: no documents to vectorise")
	}
	dim := aggregate.Size()
	if dim == 0 {
		return nil, errs.New(errs.EmptyInput, "tfidf: empty term aggregate")
	}

	// One row per term, id-ordered; rowOf[id] gives the vector-set row
	// index and rowLen[id] the row's expected nonzero count.
	rowLen := make([]int, dim)
	aggregate.Each(func(_ string, _ wordbank.Handle, av wordcontainer.AppearCount) {
		rowLen[av.ID] = av.DocFreq
	})

	nnz := 0
	for _, l := range rowLen {
		nnz += l
	}
	vs := vectorset.NewSparse(dim, n, nnz)
	rowOf := make([]int, dim)
	for id := 0; id < dim; id++ {
		idx, err := vs.EmplaceBack(n, rowLen[id])
		if err != nil {
			return nil, err
		}
		rowOf[id] = idx
	}

	cursors := make([]int32, dim) // per-term atomic fetch-add write cursor
	err := reducer.For(ctx, n, reducer.Options{Workers: cfg.Workers()}, func(_ context.Context, doc int) error {
		var failure error
		perFile[doc].Each(func(term string, _ wordbank.Handle, tf int) {
			if failure != nil {
				return
			}
			av, ok := aggregate.Find(term)
			if !ok {
				failure = errs.New(errs.Invariant, "tfidf: term %q missing from aggregate", term)
				return
			}
			k := atomic.AddInt32(&cursors[av.ID], 1) - 1
			vs.SetNonzero(rowOf[av.ID], int(k), doc, weight(tf, n, av.DocFreq))
		})
		return failure
	})
	if err != nil {
		return nil, err
	}

	err = reducer.For(ctx, dim, reducer.Options{Workers: cfg.Workers()}, func(_ context.Context, id int) error {
		row := vs.Row(rowOf[id])
		row.SortByIndex()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vs, nil
}

// ApplyInPlace returns, for each per-document term-count map, a new
// term-score map with the same keys, for callers that want scored
// catalogues rather than a materialised vector set. The input count maps
// are not modified.
func ApplyInPlace(perFile []*wordcontainer.Map[int], aggregate *wordcontainer.Map[wordcontainer.AppearCount]) ([]*wordcontainer.Map[float64], error) {
	n := len(perFile)
	scored := make([]*wordcontainer.Map[float64], n)
	for i, m := range perFile {
		out := wordcontainer.NewMap[float64](nil)
		var failure error
		m.Each(func(term string, _ wordbank.Handle, tf int) {
			if failure != nil {
				return
			}
			av, ok := aggregate.Find(term)
			if !ok {
				failure = errs.New(errs.Invariant, "tfidf: term %q missing from aggregate", term)
				return
			}
			out.Insert(term, weight(tf, n, av.DocFreq))
		})
		if failure != nil {
			return nil, failure
		}
		scored[i] = out
	}
	return scored, nil
}
