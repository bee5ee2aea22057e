// Package wordbank implements the string arena ("word bank") that interns
// words and n-gram terms as stable, comparable handles backed by a list of
// immutable byte chunks. See spec §3 and §4.1.
package wordbank

import (
	"bytes"

	"github.com/happyhackingspace/veclust/internal/errs"
)

// defaultChunkSize is the minimum size of an owned, managed chunk.
const defaultChunkSize = 64 * 1024

// Handle is a stable reference into a Bank's storage. Handles from the same
// Bank compare by identity (chunk + offset); handles from different Banks
// must be compared by bytes via Equal.
type Handle struct {
	chunk  int32
	offset int32
	length int32
}

// IsZero reports whether h is the zero Handle (never returned by Store).
func (h Handle) IsZero() bool { return h.length == 0 && h.chunk == 0 && h.offset == 0 }

// chunk is one immutable (once sealed) byte buffer. Chunks are shared by
// reference: absorb transfers ownership, enregister adopts externally-owned
// bytes, both without copying.
type chunk struct {
	data  []byte
	tail  int  // write cursor for managed chunks; unused for pre-allocated/enregistered chunks
	owned bool // true if this bank allocated the slice itself (managed variant)
}

// Kind selects one of the three word-bank storage strategies from spec §3.
type Kind int

const (
	// Managed owns monotonically-allocated chunks sized to >= a configured
	// minimum, and supports append-to-tail and speculative erase.
	Managed Kind = iota
	// PreAllocated is non-owning: it receives a single externally-supplied
	// chunk (e.g. a memory-mapped file) and delimits words in place.
	PreAllocated
	// Malloced gives each word its own backing allocation; used for
	// benchmark parity with the legacy implementation, not for speed.
	Malloced
)

// Bank is a word arena. The zero value is not usable; use New.
type Bank struct {
	kind      Kind
	chunks    []*chunk
	chunkSize int
}

// New creates an empty Managed bank with the default chunk size.
func New() *Bank {
	return NewWithKind(Managed, defaultChunkSize)
}

// NewWithKind creates an empty bank of the given kind. minChunkSize is only
// consulted for Managed banks; it is the minimum size of a freshly
// allocated chunk (a single Store larger than minChunkSize still gets its
// own appropriately-sized chunk).
func NewWithKind(kind Kind, minChunkSize int) *Bank {
	if minChunkSize <= 0 {
		minChunkSize = defaultChunkSize
	}
	return &Bank{kind: kind, chunkSize: minChunkSize}
}

// Kind reports the bank's storage strategy.
func (b *Bank) Kind() Kind { return b.kind }

// NumChunks reports the number of chunks currently owned or adopted.
func (b *Bank) NumChunks() int { return len(b.chunks) }

// Bytes dereferences a handle into the bytes last written there. The slice
// remains valid for the Bank's lifetime (the word-bank stability invariant
// in spec §8).
func (b *Bank) Bytes(h Handle) []byte {
	c := b.chunks[h.chunk]
	return c.data[h.offset : h.offset+h.length]
}

// Store copies bytes into the arena, appends an implicit terminator (the
// byte slice's own length serves as the terminator; no sentinel byte is
// written into managed storage), and returns a stable handle.
func (b *Bank) Store(word []byte) (Handle, error) {
	switch b.kind {
	case Malloced:
		return b.storeMalloced(word)
	case PreAllocated:
		return Handle{}, errs.New(errs.Invariant, "Store is not supported on a pre-allocated bank; use Enregister and Slice")
	default:
		return b.storeManaged(word)
	}
}

func (b *Bank) storeMalloced(word []byte) (Handle, error) {
	buf := make([]byte, len(word))
	copy(buf, word)
	idx := int32(len(b.chunks))
	b.chunks = append(b.chunks, &chunk{data: buf, tail: len(buf), owned: true})
	return Handle{chunk: idx, offset: 0, length: int32(len(buf))}, nil
}

func (b *Bank) storeManaged(word []byte) (Handle, error) {
	c, idx, err := b.tailChunkForAppend(len(word))
	if err != nil {
		return Handle{}, err
	}
	offset := c.tail
	c.data = append(c.data[:c.tail], word...)
	c.tail += len(word)
	return Handle{chunk: idx, offset: int32(offset), length: int32(len(word))}, nil
}

// tailChunkForAppend returns a chunk with room to append n more bytes,
// allocating a fresh one if the current tail chunk is full or absent.
func (b *Bank) tailChunkForAppend(n int) (*chunk, int32, error) {
	if len(b.chunks) > 0 {
		last := b.chunks[len(b.chunks)-1]
		if last.owned && cap(last.data)-last.tail >= n {
			return last, int32(len(b.chunks) - 1), nil
		}
	}
	size := b.chunkSize
	if n > size {
		size = n
	}
	buf := make([]byte, 0, size)
	if buf == nil {
		return nil, 0, errs.New(errs.ResourceExhausted, "failed to allocate %d-byte chunk", size)
	}
	b.chunks = append(b.chunks, &chunk{data: buf, tail: 0, owned: true})
	return b.chunks[len(b.chunks)-1], int32(len(b.chunks) - 1), nil
}

// Append extends the word named by partial (if it still sits at the
// current tail of its chunk) with more bytes; otherwise it behaves like
// Store after copying the partial word's bytes forward. Only meaningful
// for Managed banks.
func (b *Bank) Append(partial Handle, more []byte) (Handle, error) {
	if b.kind != Managed {
		return Handle{}, errs.New(errs.Invariant, "Append requires a Managed bank")
	}
	if int(partial.chunk) < len(b.chunks) {
		c := b.chunks[partial.chunk]
		atTail := int(partial.offset)+int(partial.length) == c.tail
		if atTail && c.owned && cap(c.data)-c.tail >= len(more) {
			c.data = append(c.data[:c.tail], more...)
			c.tail += len(more)
			return Handle{chunk: partial.chunk, offset: partial.offset, length: partial.length + int32(len(more))}, nil
		}
	}
	// Not at tail (or chunk grew elsewhere): copy the original bytes
	// forward together with the extension.
	prefix := b.Bytes(partial)
	joined := make([]byte, 0, len(prefix)+len(more))
	joined = append(joined, prefix...)
	joined = append(joined, more...)
	return b.Store(joined)
}

// EraseTail rewinds the arena's write cursor back to h, cancelling a
// speculative insert. Valid only if h names the bytes currently at the
// tail of its chunk and nothing has been stored since.
func (b *Bank) EraseTail(h Handle) error {
	if int(h.chunk) >= len(b.chunks) {
		return errs.New(errs.Invariant, "erase_tail: unknown chunk %d", h.chunk)
	}
	c := b.chunks[h.chunk]
	if int(h.offset)+int(h.length) != c.tail {
		return errs.New(errs.Invariant, "erase_tail: handle is not at the current tail")
	}
	if int(h.chunk) != len(b.chunks)-1 {
		return errs.New(errs.Invariant, "erase_tail: handle's chunk is not the bank's last chunk")
	}
	c.tail = int(h.offset)
	c.data = c.data[:c.tail]
	return nil
}

// Enregister adopts an externally-provided chunk (for example the full
// contents of a memory-mapped input file) with shared, non-owning
// ownership. Words subsequently delimited within data borrow directly from
// it; the bank never copies or frees it.
func (b *Bank) Enregister(data []byte) Handle {
	idx := int32(len(b.chunks))
	b.chunks = append(b.chunks, &chunk{data: data, tail: len(data), owned: false})
	return Handle{chunk: idx, offset: 0, length: int32(len(data))}
}

// Slice returns a handle for the sub-range [start,end) of a previously
// enregistered (or stored) chunk, without copying. This is how the
// cataloguer delimits words in place inside a pre-allocated chunk.
func (b *Bank) Slice(chunkIdx int32, start, end int) Handle {
	return Handle{chunk: chunkIdx, offset: int32(start), length: int32(end - start)}
}

// Absorb transfers ownership of other's chunks into b in O(chunks) and
// empties other. Handles previously issued by other remain valid — they
// continue to reference the same chunk slices, now reachable through b.
// Absorb does not renumber other's existing handles; callers that hold
// handles minted before Absorb must rebase h.chunk by the chunk-count b
// had before calling Absorb (see Offset).
func (b *Bank) Absorb(other *Bank) int32 {
	base := int32(len(b.chunks))
	b.chunks = append(b.chunks, other.chunks...)
	other.chunks = nil
	return base
}

// Offset rebases a handle minted against other (before an Absorb call that
// returned base) so it addresses the same bytes through b.
func Offset(h Handle, base int32) Handle {
	return Handle{chunk: h.chunk + base, offset: h.offset, length: h.length}
}

// Equal compares the bytes referenced by two handles, each resolved
// against its own bank — the cross-arena equality spec §3 requires.
func Equal(ba *Bank, ha Handle, bb *Bank, hb Handle) bool {
	return bytes.Equal(ba.Bytes(ha), bb.Bytes(hb))
}
