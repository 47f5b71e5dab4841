package ring

import "sync"

// Handle is an opaque identifier for a registered Ring, suitable for
// session replies on the bus. The zero handle is invalid.
type Handle uint32

var (
	regMu sync.RWMutex
	reg          = map[Handle]*Ring{}
	next  Handle = 1
)

// Register adds a ring to the registry and returns its handle.
func Register(r *Ring) Handle {
	if r == nil {
		return 0
	}
	regMu.Lock()
	h := next
	next++
	reg[h] = r
	regMu.Unlock()
	return h
}

// Lookup resolves a handle; zero or unknown handles yield nil.
func Lookup(h Handle) *Ring {
	if h == 0 {
		return nil
	}
	regMu.RLock()
	r := reg[h]
	regMu.RUnlock()
	return r
}

// Release removes the handle. Existing *Ring pointers stay valid.
func Release(h Handle) {
	regMu.Lock()
	delete(reg, h)
	regMu.Unlock()
}
