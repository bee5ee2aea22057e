package wordbank

import (
	"bytes"
	"testing"
)

func TestStoreAndBytes(t *testing.T) {
	b := New()
	h1, err := b.Store([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := b.Store([]byte("world"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes(h1)); got != "hello" {
		t.Errorf("Bytes(h1) = %q, want hello", got)
	}
	if got := string(b.Bytes(h2)); got != "world" {
		t.Errorf("Bytes(h2) = %q, want world", got)
	}
}

// TestHandleStability asserts spec §8's word bank stability invariant: once
// a handle is handed out, its bytes remain bitwise identical until the bank
// is dropped, even after many subsequent Store calls force new chunks.
func TestHandleStability(t *testing.T) {
	b := NewWithKind(Managed, 8) // tiny chunk size forces many chunk rollovers
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	handles := make([]Handle, len(words))
	for i, w := range words {
		h, err := b.Store([]byte(w))
		if err != nil {
			t.Fatal(err)
		}
		handles[i] = h
	}
	for i, w := range words {
		if got := string(b.Bytes(handles[i])); got != w {
			t.Errorf("handle %d: Bytes = %q, want %q", i, got, w)
		}
	}
}

func TestAppendExtendsTail(t *testing.T) {
	b := New()
	h, err := b.Store([]byte("cat"))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := b.Append(h, []byte("erpillar"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes(h2)); got != "caterpillar" {
		t.Errorf("Append = %q, want caterpillar", got)
	}
}

func TestAppendNotAtTailCopiesForward(t *testing.T) {
	b := New()
	h, err := b.Store([]byte("cat"))
	if err != nil {
		t.Fatal(err)
	}
	// Inserting something else moves the tail past h.
	if _, err := b.Store([]byte("dog")); err != nil {
		t.Fatal(err)
	}
	h2, err := b.Append(h, []byte("fish"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes(h2)); got != "catfish" {
		t.Errorf("Append (non-tail) = %q, want catfish", got)
	}
	// Original handle must still resolve to "cat" (stability invariant).
	if got := string(b.Bytes(h)); got != "cat" {
		t.Errorf("original handle = %q, want cat", got)
	}
}

func TestEraseTail(t *testing.T) {
	b := New()
	h1, err := b.Store([]byte("keep"))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := b.Store([]byte("speculative"))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.EraseTail(h2); err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes(h1)); got != "keep" {
		t.Errorf("Bytes(h1) after erase = %q, want keep", got)
	}
	// A fresh store should now reuse the erased space.
	h3, err := b.Store([]byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes(h3)); got != "new" {
		t.Errorf("Bytes(h3) = %q, want new", got)
	}
}

func TestEraseTailRejectsNonTail(t *testing.T) {
	b := New()
	h1, err := b.Store([]byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Store([]byte("second")); err != nil {
		t.Fatal(err)
	}
	if err := b.EraseTail(h1); err == nil {
		t.Fatal("expected error erasing a non-tail handle")
	}
}

func TestEnregisterAndSlice(t *testing.T) {
	b := New()
	data := []byte("THE QUICK FOX")
	root := b.Enregister(data)
	h := b.Slice(root.chunk, 4, 9)
	if got := string(b.Bytes(h)); got != "QUICK" {
		t.Errorf("Slice = %q, want QUICK", got)
	}
}

func TestAbsorbTransfersChunks(t *testing.T) {
	a := New()
	ha, err := a.Store([]byte("owned-by-a"))
	if err != nil {
		t.Fatal(err)
	}
	b := New()
	hb, err := b.Store([]byte("owned-by-b"))
	if err != nil {
		t.Fatal(err)
	}
	base := b.Absorb(a)
	if a.NumChunks() != 0 {
		t.Errorf("a should be empty after absorb, has %d chunks", a.NumChunks())
	}
	rebased := Offset(ha, base)
	if !bytes.Equal(b.Bytes(rebased), []byte("owned-by-a")) {
		t.Errorf("rebased handle did not resolve correctly")
	}
	if !bytes.Equal(b.Bytes(hb), []byte("owned-by-b")) {
		t.Errorf("b's own handle broke after absorb")
	}
}

func TestEqualAcrossBanks(t *testing.T) {
	a := New()
	b := New()
	ha, _ := a.Store([]byte("same"))
	hb, _ := b.Store([]byte("same"))
	if !Equal(a, ha, b, hb) {
		t.Error("Equal should report true for identical bytes across banks")
	}
	hc, _ := b.Store([]byte("different"))
	if Equal(a, ha, b, hc) {
		t.Error("Equal should report false for differing bytes")
	}
}

func TestMallocedBank(t *testing.T) {
	b := NewWithKind(Malloced, 0)
	h, err := b.Store([]byte("isolated"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b.Bytes(h)); got != "isolated" {
		t.Errorf("Bytes = %q, want isolated", got)
	}
	if b.NumChunks() != 1 {
		t.Errorf("NumChunks = %d, want 1", b.NumChunks())
	}
}
