// Package dataset couples a vector set with the word containers that index
// its columns (and optionally its rows), per spec §3's data_set tuple.
package dataset

import (
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/vectorset"
	"github.com/happyhackingspace/veclust/internal/wordcontainer"
)

// Set is the Go realization of spec §3's
// (relation_name, column_index_container, optional_row_index_container,
// vector_set, is_transposed) tuple.
type Set struct {
	RelationName string
	Columns      *wordcontainer.Map[wordcontainer.AppearCount] // column (term) index
	Rows         *wordcontainer.SortedSet                       // optional row (document) index
	Dense        *vectorset.Dense
	Sparse       *vectorset.Sparse
	Transposed   bool
}

// numRows and dim report the shape the vector set actually carries,
// regardless of which of Dense/Sparse is populated.
func (s *Set) numRows() int {
	if s.Dense != nil {
		return s.Dense.Rows()
	}
	if s.Sparse != nil {
		return s.Sparse.Rows()
	}
	return 0
}

func (s *Set) dim() int {
	if s.Dense != nil {
		return s.Dense.Dim()
	}
	if s.Sparse != nil {
		return s.Sparse.Dim()
	}
	return 0
}

// Validate checks the size invariants spec §3 requires: the vector set's
// row count equals the row-index size (or column-index size when
// transposed), and the column dimension equals the column-index size.
func (s *Set) Validate() error {
	rows := s.numRows()
	dim := s.dim()

	colSize := 0
	if s.Columns != nil {
		colSize = s.Columns.Size()
	}
	rowSize := 0
	haveRowIndex := s.Rows != nil
	if haveRowIndex {
		rowSize = s.Rows.Size()
	}

	if s.Transposed {
		if haveRowIndex && dim != rowSize {
			return errs.New(errs.Invariant, "transposed data set: dim %d != row index size %d", dim, rowSize)
		}
		if rows != colSize {
			return errs.New(errs.Invariant, "transposed data set: rows %d != column index size %d", rows, colSize)
		}
		return nil
	}

	if haveRowIndex && rows != rowSize {
		return errs.New(errs.Invariant, "data set: rows %d != row index size %d", rows, rowSize)
	}
	if dim != colSize {
		return errs.New(errs.Invariant, "data set: dim %d != column index size %d", dim, colSize)
	}
	return nil
}

// IsEmpty reports whether the set carries zero rows — the signal for the
// EmptyInput disposition of spec §4.9.
func (s *Set) IsEmpty() bool { return s.numRows() == 0 }

// NumRows exposes the vector set's row count to downstream packages.
func (s *Set) NumRows() int { return s.numRows() }

// Dim exposes the vector set's column dimension to downstream packages.
func (s *Set) Dim() int { return s.dim() }
