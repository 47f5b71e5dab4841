// Package ring provides single-producer single-consumer byte queues for
// moving data between interrupt-side callbacks and foreground code. The
// serial engine never owns a buffer; sessions own rings from here.
package ring

import "sync/atomic"

// Ring is a power-of-two SPSC byte ring. One side produces (the receive
// callback, or the application's write path) and one side consumes; the
// indices are monotonic and published with atomic stores only.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index
	wr   atomic.Uint32 // producer index

	readable chan struct{} // edge: 0 -> >0 available
	writable chan struct{} // edge: 0 -> >0 space
}

// New allocates a ring. Size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be a power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Size returns the capacity in bytes.
func (r *Ring) Size() int { return len(r.buf) }

// Available returns the number of bytes ready to read.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

// Space returns the number of bytes that can be written without loss.
func (r *Ring) Space() int { return int(r.size() - (r.wr.Load() - r.rd.Load())) }

// PutByte enqueues one byte without blocking. It reports false when the
// ring is full; callers in interrupt context must treat that as a drop.
func (r *Ring) PutByte(b byte) bool {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd == r.size() {
		return false
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1)
	if wr-rd == 0 {
		notify(r.readable)
	}
	return true
}

// GetByte dequeues one byte without blocking.
func (r *Ring) GetByte() (byte, bool) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd == 0 {
		return 0, false
	}
	b := r.buf[rd&r.mask]
	r.rd.Store(rd + 1)
	if r.size()-(wr-rd) == 0 {
		notify(r.writable)
	}
	return b, true
}

// WriteFrom copies as much of src as fits and returns the count.
func (r *Ring) WriteFrom(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	avail := wr - rd
	space := int(r.size() - avail)
	if space <= 0 {
		return 0
	}
	n := space
	if len(src) < n {
		n = len(src)
	}

	idx := wr & r.mask
	first := int(r.size() - idx)
	if first > n {
		first = n
	}
	copy(r.buf[idx:idx+uint32(first)], src[:first])
	if rest := n - first; rest > 0 {
		copy(r.buf[:rest], src[first:n])
	}
	r.wr.Store(wr + uint32(n))

	if avail == 0 {
		notify(r.readable)
	}
	return n
}

// ReadInto copies up to len(dst) buffered bytes out and returns the count.
func (r *Ring) ReadInto(dst []byte) int {
	if len(dst) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	avail := int(wr - rd)
	if avail <= 0 {
		return 0
	}
	n := avail
	if len(dst) < n {
		n = len(dst)
	}

	idx := rd & r.mask
	first := int(r.size() - idx)
	if first > n {
		first = n
	}
	copy(dst[:first], r.buf[idx:idx+uint32(first)])
	if rest := n - first; rest > 0 {
		copy(dst[first:n], r.buf[:rest])
	}
	r.rd.Store(rd + uint32(n))

	if r.size()-(wr-rd) == 0 {
		notify(r.writable)
	}
	return n
}

// Clear discards all buffered bytes. Only safe while both sides are idle.
func (r *Ring) Clear() {
	r.rd.Store(0)
	r.wr.Store(0)
}

// Readable signals the 0 -> >0 available transition. Coalesced; callers
// must re-check state after waking.
func (r *Ring) Readable() <-chan struct{} { return r.readable }

// Writable signals the 0 -> >0 space transition. Coalesced.
func (r *Ring) Writable() <-chan struct{} { return r.writable }

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
