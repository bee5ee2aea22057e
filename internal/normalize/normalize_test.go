package normalize

import (
	"math"
	"testing"

	"github.com/happyhackingspace/veclust/internal/dataset"
	"github.com/happyhackingspace/veclust/internal/vectorset"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func denseSetFromRows(rows [][]float64) *dataset.Set {
	dim := len(rows[0])
	vs := vectorset.NewDense(len(rows), dim)
	for _, r := range rows {
		i, _ := vs.EmplaceBack()
		row := vs.Row(i)
		for d, v := range r {
			row.Set(d, v)
		}
	}
	return &dataset.Set{Dense: vs}
}

func TestComputeExtremaDense(t *testing.T) {
	set := denseSetFromRows([][]float64{
		{1, 10},
		{5, 2},
		{3, 6},
	})
	ex, err := Compute(set)
	if err != nil {
		t.Fatal(err)
	}
	if ex[0].Min != 1 || ex[0].Max != 5 {
		t.Errorf("dim0 = %+v, want (1,5)", ex[0])
	}
	if ex[1].Min != 2 || ex[1].Max != 10 {
		t.Errorf("dim1 = %+v, want (2,10)", ex[1])
	}
}

func TestScaleUnscaleRoundTrip(t *testing.T) {
	e := Extrema{Min: 2, Max: 10}
	for _, v := range []float64{2, 5, 10, 7.5} {
		scaled := Scale(v, e)
		back := Unscale(scaled, e)
		if !almostEqual(back, v) {
			t.Errorf("round trip v=%v: scaled=%v back=%v", v, scaled, back)
		}
	}
}

func TestScaleUsesPlusOneBias(t *testing.T) {
	e := Extrema{Min: 0, Max: 9}
	got := Scale(9, e)
	want := 9.0 / 10.0 // (9-0)/(9-0+1), not 1.0
	if !almostEqual(got, want) {
		t.Errorf("Scale(max) = %v, want %v (the +1 bias keeps it below 1)", got, want)
	}
}

func TestScaleConstantDimensionMapsToOne(t *testing.T) {
	e := Extrema{Min: 4, Max: 4}
	if got := Scale(4, e); got != 1 {
		t.Errorf("Scale on constant dim = %v, want 1", got)
	}
}

func TestUnscaleConstantDimension(t *testing.T) {
	e := Extrema{Min: 4, Max: 4}
	if got := Unscale(1, e); got != 4 {
		t.Errorf("Unscale(1) on constant dim = %v, want 4", got)
	}
	if got := Unscale(0, e); got != 0 {
		t.Errorf("Unscale(0) on constant dim = %v, want 0", got)
	}
}

func TestComputeSparseUnseenDimensionIsZeroZero(t *testing.T) {
	vs := vectorset.NewSparse(2, 5, 4)
	r0, _ := vs.EmplaceBack(5, 1)
	vs.SetNonzero(r0, 0, 1, 3.0)
	r1, _ := vs.EmplaceBack(5, 1)
	vs.SetNonzero(r1, 0, 1, 7.0)
	set := &dataset.Set{Sparse: vs}

	ex, err := Compute(set)
	if err != nil {
		t.Fatal(err)
	}
	if ex[0] != (Extrema{}) {
		t.Errorf("never-seen dim 0 = %+v, want (0,0)", ex[0])
	}
	if ex[1].Min != 3 || ex[1].Max != 7 {
		t.Errorf("seen dim 1 = %+v, want (3,7)", ex[1])
	}
}

func TestScaleSparseRewritesOnlyStoredEntries(t *testing.T) {
	vs := vectorset.NewSparse(2, 3, 3)
	r0, _ := vs.EmplaceBack(3, 2)
	vs.SetNonzero(r0, 0, 0, 4.0)
	vs.SetNonzero(r0, 1, 2, 8.0)
	r1, _ := vs.EmplaceBack(3, 1)
	vs.SetNonzero(r1, 0, 0, 0.0)

	extrema := []Extrema{{Min: 0, Max: 4}, {Min: 0, Max: 0}, {Min: 2, Max: 8}}
	ScaleSparse(vs, extrema)

	row0 := vs.Row(r0)
	if got, want := row0.Values[0], Scale(4.0, extrema[0]); !almostEqual(got, want) {
		t.Errorf("row0 dim0 = %v, want %v", got, want)
	}
	if got, want := row0.Values[1], Scale(8.0, extrema[2]); !almostEqual(got, want) {
		t.Errorf("row0 dim2 = %v, want %v", got, want)
	}
	row1 := vs.Row(r1)
	if got, want := row1.Values[0], Scale(0.0, extrema[0]); !almostEqual(got, want) {
		t.Errorf("row1 dim0 = %v, want %v", got, want)
	}
}

func TestComputeSparsePartialRowFoldsInImplicitZero(t *testing.T) {
	vs := vectorset.NewSparse(2, 3, 2)
	r0, _ := vs.EmplaceBack(3, 1)
	vs.SetNonzero(r0, 0, 0, 5.0) // row 0 has an entry at dim 0
	_, _ = vs.EmplaceBack(3, 0) // row 1 has no entries: implicit 0 at dim 0
	set := &dataset.Set{Sparse: vs}

	ex, err := Compute(set)
	if err != nil {
		t.Fatal(err)
	}
	if ex[0].Min != 0 || ex[0].Max != 5 {
		t.Errorf("dim0 = %+v, want (0,5) once the implicit zero row is folded in", ex[0])
	}
}
