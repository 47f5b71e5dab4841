package types

// ------------------------
// Capability addressing & kinds
// ------------------------

type Kind string

const (
	KindSerial Kind = "serial"
	KindTimer  Kind = "timer"
	KindMapFn  Kind = "mapfn"
)

// CapabilityAddress identifies a public capability on the bus.
type CapabilityAddress struct {
	Domain string `json:"domain"` // e.g. "io"
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
}
