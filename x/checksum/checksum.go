// Package checksum provides the small frame checksums used on serial
// links: additive, XOR, and Fletcher-16.
package checksum

// Sum8 is the modular additive checksum of p.
func Sum8(p []byte) byte {
	var s byte
	for _, b := range p {
		s += b
	}
	return s
}

// Xor8 is the longitudinal redundancy check (XOR of all bytes).
func Xor8(p []byte) byte {
	var s byte
	for _, b := range p {
		s ^= b
	}
	return s
}

// Fletcher16 computes the Fletcher-16 checksum with the standard
// modulo-255 reduction.
func Fletcher16(p []byte) uint16 {
	var lo, hi uint16
	for _, b := range p {
		lo = (lo + uint16(b)) % 255
		hi = (hi + lo) % 255
	}
	return hi<<8 | lo
}
