package vector

// Centre is a K-Means centroid: a Dense vector decorated with a cached
// squared norm and a population counter, per spec §3/§4.3. spec §9 allows
// either a tagged struct or a generic decorator chain for attribute
// decoration; this is the tagged-struct choice, matching the teacher's
// preference for small concrete types (crf.Alphabet, vectorizer.SparseVector)
// over generic wrapper hierarchies.
type Centre struct {
	Dense
	SqNorm float64
	Count  int
}

// NewCentre allocates a zeroed centre of dimension n.
func NewCentre(n int) Centre {
	return Centre{Dense: NewDense(n)}
}

// Empty reports whether no point is currently assigned to this centre —
// spec §3's "counter == 0 means empty, not scaled" invariant.
func (c Centre) Empty() bool { return c.Count == 0 }

// RefreshSqNorm recomputes the cached squared norm from the current Dense
// values. Callers must call this after any direct mutation of Values.
func (c *Centre) RefreshSqNorm() { c.SqNorm = c.Dense.SquaredNorm() }

// AddDense adds a dense point and bumps Count — spec §4.3: "+= on such a
// decorator adds the base vectors and sums the counters".
func (c *Centre) AddDense(p Dense) {
	c.Dense.Add(p)
	c.Count++
}

// AddSparse adds a sparse point's nonzeros into the centre and bumps Count.
func (c *Centre) AddSparse(p Sparse) {
	p.AddToDense(&c.Dense)
	c.Count++
}

// Merge folds another centre accumulator (e.g. a per-thread reducer view)
// into c: values add elementwise, counts add, per spec §4.4's vector-set
// reducer merge ("elementwise += per index, skipping rows whose counter is
// zero").
func (c *Centre) Merge(other Centre) {
	if other.Count == 0 {
		return
	}
	c.Dense.Add(other.Dense)
	c.Count += other.Count
}

// Clear resets both the base vector and the counter — spec §4.3.
func (c *Centre) Clear() {
	c.Dense.Clear()
	c.SqNorm = 0
	c.Count = 0
}

// ScaleByCount divides the accumulated sum by Count to produce the mean,
// leaving empty centres untouched (spec §4.8 step 4: "empty centres are
// retained as-is").
func (c *Centre) ScaleByCount() {
	if c.Count == 0 {
		return
	}
	c.Dense.Scale(1.0 / float64(c.Count))
}
