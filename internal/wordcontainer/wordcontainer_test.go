package wordcontainer

import (
	"testing"

	"github.com/happyhackingspace/veclust/internal/wordbank"
)

func TestMapInsertFind(t *testing.T) {
	m := NewMap[int](nil)
	m.Insert("fox", 2)
	m.Insert("dog", 1)
	if v, ok := m.Find("fox"); !ok || v != 2 {
		t.Errorf("Find(fox) = %v, %v, want 2, true", v, ok)
	}
	if _, ok := m.Find("cat"); ok {
		t.Error("Find(cat) should report absent")
	}
	if m.Size() != 2 {
		t.Errorf("Size = %d, want 2", m.Size())
	}
}

func TestMapReduceDisjointCommutative(t *testing.T) {
	a := NewMap[int](nil)
	a.Insert("a", 1)
	b := NewMap[int](nil)
	b.Insert("b", 2)

	a.Reduce(b, IntAdd{})
	want := map[string]int{"a": 1, "b": 2}
	if a.Size() != 2 {
		t.Fatalf("Size = %d, want 2", a.Size())
	}
	for k, wv := range want {
		if v, ok := a.Find(k); !ok || v != wv {
			t.Errorf("Find(%s) = %v, %v, want %v, true", k, v, ok, wv)
		}
	}
}

// TestMapReduceCommutativity asserts spec §8: for disjoint keys, A∪B == B∪A.
func TestMapReduceCommutativity(t *testing.T) {
	build := func(swap bool) map[string]int {
		a := NewMap[int](nil)
		a.Insert("a", 1)
		a.Insert("x", 10)
		b := NewMap[int](nil)
		b.Insert("b", 2)
		b.Insert("y", 20)
		out := map[string]int{}
		if swap {
			b.Reduce(a, IntAdd{})
			b.Each(func(key string, _ wordbank.Handle, v int) { out[key] = v })
			return out
		}
		a.Reduce(b, IntAdd{})
		a.Each(func(key string, _ wordbank.Handle, v int) { out[key] = v })
		return out
	}
	ab := build(false)
	ba := build(true)
	if len(ab) != len(ba) {
		t.Fatalf("lengths differ: %d vs %d", len(ab), len(ba))
	}
	for k, v := range ab {
		if ba[k] != v {
			t.Errorf("key %s: A∪B=%d, B∪A=%d", k, v, ba[k])
		}
	}
}

func TestMapReduceOverlapAddsValues(t *testing.T) {
	a := NewMap[int](nil)
	a.Insert("x", 3)
	b := NewMap[int](nil)
	b.Insert("x", 4)
	a.Reduce(b, IntAdd{})
	v, ok := a.Find("x")
	if !ok || v != 7 {
		t.Errorf("Find(x) = %v, %v, want 7, true", v, ok)
	}
}

func TestMapReduceLargerOther(t *testing.T) {
	a := NewMap[int](nil)
	a.Insert("x", 1)
	b := NewMap[int](nil)
	for _, k := range []string{"p", "q", "r", "s", "x"} {
		b.Insert(k, 1)
	}
	a.Reduce(b, IntAdd{})
	if a.Size() != 5 {
		t.Fatalf("Size = %d, want 5", a.Size())
	}
	if v, _ := a.Find("x"); v != 2 {
		t.Errorf("Find(x) = %d, want 2", v)
	}
}

// TestCountPresenceDocumentFrequency reproduces spec §8 scenario 2:
// df(a)=2, df(b)=3, df(c)=2 over corpus ["a b", "b c", "c a b"].
func TestCountPresenceDocumentFrequency(t *testing.T) {
	toAppear := func(existing AppearCount, present bool) AppearCount {
		if present {
			existing.DocFreq++
			return existing
		}
		return AppearCount{DocFreq: 1}
	}
	docs := [][]string{{"a", "b"}, {"b", "c"}, {"c", "a", "b"}}
	agg := NewMap[AppearCount](nil)
	for _, doc := range docs {
		perDoc := NewMap[AppearCount](nil)
		for _, term := range doc {
			perDoc.Upsert(term, func(cur AppearCount, existed bool) AppearCount {
				cur.DocFreq++
				return cur
			})
		}
		perDocList := perDoc.ToList(true)
		aggList := agg.ToList(true)
		aggList.CountPresence(perDocList, toAppear)
		agg = mapFromList(aggList)
	}
	want := map[string]int{"a": 2, "b": 3, "c": 2}
	for term, wantDF := range want {
		v, ok := agg.Find(term)
		if !ok || v.DocFreq != wantDF {
			t.Errorf("df(%s) = %+v, want DocFreq %d", term, v, wantDF)
		}
	}
}

func mapFromList(l *List[AppearCount]) *Map[AppearCount] {
	m := NewMap[AppearCount](l.WordBank())
	for i := 0; i < l.Size(); i++ {
		k, v := l.At(i)
		m.Insert(k, v)
	}
	return m
}

func TestListSortAndBinarySearch(t *testing.T) {
	l := NewList[int](nil)
	for _, w := range []string{"fox", "dog", "cat"} {
		l.Insert(w, 1)
	}
	l.Sort()
	if _, ok := l.BinarySearch("dog"); !ok {
		t.Error("expected dog to be found")
	}
	if _, ok := l.BinarySearch("zzz"); ok {
		t.Error("expected zzz to be absent")
	}
}

func TestListReduceMergesSortedOrder(t *testing.T) {
	a := NewList[int](nil)
	a.Insert("b", 1)
	a.Insert("d", 1)
	a.Sort()
	b := NewList[int](nil)
	b.Insert("a", 1)
	b.Insert("c", 1)
	b.Insert("d", 1)
	b.Sort()
	a.Reduce(b, IntAdd{})
	var keys []string
	var dval int
	a.Each(func(key string, _ wordbank.Handle, v int) {
		keys = append(keys, key)
		if key == "d" {
			dval = v
		}
	})
	want := []string{"a", "b", "c", "d"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
	if dval != 2 {
		t.Errorf("merged value for d = %d, want 2", dval)
	}
}

func TestSortedSetInsertDedup(t *testing.T) {
	s := NewSortedSet(nil)
	s.Insert("b")
	s.Insert("a")
	s.Insert("b")
	if s.Size() != 2 {
		t.Errorf("Size = %d, want 2", s.Size())
	}
	if !s.Contains("a") || !s.Contains("b") {
		t.Error("expected a and b to be present")
	}
	items := s.Items()
	if items[0] != "a" || items[1] != "b" {
		t.Errorf("Items = %v, want sorted [a b]", items)
	}
}
