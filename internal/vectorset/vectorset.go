// Package vectorset implements the single-allocation backing stores for
// many vectors of common length, per spec §3/§4.4.
package vectorset

import (
	"github.com/happyhackingspace/veclust/internal/errs"
	"github.com/happyhackingspace/veclust/internal/vector"
)

// Dense is a pooled backing store for m dense rows of dimension n. Rows
// are non-owning views into one contiguous []float64.
type Dense struct {
	dim      int
	capacity int
	backing  []float64
	rows     int // logical row count (<= capacity), adjustable by Trim
}

// NewDense allocates a Dense set with room for capacity rows of dim
// dimension — total_budget = capacity * dim, per spec §4.4.
func NewDense(capacity, dim int) *Dense {
	return &Dense{dim: dim, capacity: capacity, backing: make([]float64, capacity*dim)}
}

// Dim reports the fixed row dimension.
func (s *Dense) Dim() int { return s.dim }

// Rows reports the current logical row count.
func (s *Dense) Rows() int { return s.rows }

// Capacity reports the maximum number of rows the backing store can hold.
func (s *Dense) Capacity() int { return s.capacity }

// EmplaceBack appends one logical row (zero-initialized) and returns its
// index, advancing the internal cursor. It fails with CapacityExceeded
// (errs.ResourceExhausted) if the cursor would pass the budget.
func (s *Dense) EmplaceBack() (int, error) {
	if s.rows >= s.capacity {
		return 0, errs.New(errs.ResourceExhausted, "dense vector set: capacity %d exceeded", s.capacity)
	}
	idx := s.rows
	s.rows++
	return idx, nil
}

// Row returns a view of row i as a vector.Dense sharing the backing array;
// mutations through it are visible in the set.
func (s *Dense) Row(i int) vector.Dense {
	start := i * s.dim
	return vector.Dense{Values: s.backing[start : start+s.dim : start+s.dim]}
}

// TrimNumber sets the logical row count; it never grows past the current
// count (only shrinks), per spec §4.4.
func (s *Dense) TrimNumber(n int) {
	if n < s.rows {
		s.rows = n
	}
}

// ReduceInto merges this set into dst elementwise, skipping rows whose
// companion counters array reports zero — the reducer-view merge of spec
// §4.4 ("elementwise += per index, skipping rows whose counter is zero, so
// not-yet-served per-thread views remain identity"). counters must have
// length >= Rows().
func (s *Dense) ReduceInto(dst *Dense, counters []int) {
	for i := 0; i < s.rows; i++ {
		if counters[i] == 0 {
			continue
		}
		row := s.Row(i)
		dstRow := dst.Row(i)
		dstRow.Add(row)
	}
}

// Sparse is a pooled backing store for many sparse rows sharing one
// (values, indices) backing pair, addressed by a per-row offset table —
// spec §4.4's "total_budget = sum(nonzeros)" sparse variant.
type Sparse struct {
	dim         int
	nnzBudget   int
	values      []float64
	indices     []int
	rowOffset   []int // rowOffset[i] is the start offset of row i within values/indices
	rowLength   []int // rowLength[i] is the row's logical vector length (usually == dim)
	rowNonzeros []int // rowNonzeros[i] is the row's stored nonzero count
	cursor      int   // next free slot in values/indices
	rows        int
}

// NewSparse allocates a Sparse set with a total nonzero budget and a
// logical dimension shared by all rows.
func NewSparse(capacityRows, dim, nnzBudget int) *Sparse {
	return &Sparse{
		dim:         dim,
		nnzBudget:   nnzBudget,
		values:      make([]float64, nnzBudget),
		indices:     make([]int, nnzBudget),
		rowOffset:   make([]int, 0, capacityRows),
		rowLength:   make([]int, 0, capacityRows),
		rowNonzeros: make([]int, 0, capacityRows),
	}
}

// Dim reports the logical dimension shared by every row.
func (s *Sparse) Dim() int { return s.dim }

// Rows reports the current logical row count.
func (s *Sparse) Rows() int { return s.rows }

// EmplaceBack appends one logical row of the given length and expected
// nonzero count, advancing the cursor into the shared backing arrays. It
// fails with ResourceExhausted if the cursor would pass nnzBudget.
func (s *Sparse) EmplaceBack(length, nonzeros int) (int, error) {
	if s.cursor+nonzeros > s.nnzBudget {
		return 0, errs.New(errs.ResourceExhausted, "sparse vector set: nnz budget %d exceeded", s.nnzBudget)
	}
	idx := s.rows
	s.rowOffset = append(s.rowOffset, s.cursor)
	s.rowLength = append(s.rowLength, length)
	s.rowNonzeros = append(s.rowNonzeros, 0)
	s.cursor += nonzeros
	s.rows++
	return idx, nil
}

// SetNonzero writes the k'th (index, value) pair of row i. k must be less
// than the nonzeros reserved for row i in EmplaceBack.
func (s *Sparse) SetNonzero(row, k, index int, value float64) {
	off := s.rowOffset[row] + k
	s.values[off] = value
	s.indices[off] = index
	if k+1 > s.rowNonzeros[row] {
		s.rowNonzeros[row] = k + 1
	}
}

// Row returns a vector.Sparse view of row i sharing the backing arrays.
func (s *Sparse) Row(i int) vector.Sparse {
	off := s.rowOffset[i]
	n := s.rowNonzeros[i]
	return vector.Sparse{
		Values:  s.values[off : off+n : off+n],
		Indices: s.indices[off : off+n : off+n],
		Length:  s.rowLength[i],
	}
}

// TrimNumber shrinks the logical row count; it never grows.
func (s *Sparse) TrimNumber(n int) {
	if n < s.rows {
		s.rows = n
	}
}
