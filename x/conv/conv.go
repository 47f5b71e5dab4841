// Package conv provides allocation-free ASCII number formatting and
// parsing for firmware paths where fmt/strconv are too heavy.
package conv

// Utoa writes the base-10 representation of u into buf and returns the
// used tail slice. buf should be at least 20 bytes for uint64.
func Utoa(buf []byte, u uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if u == 0 {
		i--
		buf[i] = '0'
		return buf[i:]
	}
	for u > 0 && i > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return buf[i:]
}

// Itoa is the signed variant of Utoa.
func Itoa(buf []byte, n int64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	s := Utoa(buf[1:], uint64(-n))
	// Utoa wrote into the tail of buf[1:]; the sign goes just before it.
	off := len(buf) - len(s) - 1
	buf[off] = '-'
	return buf[off:]
}

// U32Hex writes 8 uppercase hex digits, zero-padded, no prefix.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	const digits = "0123456789ABCDEF"
	i := len(buf)
	for j := 0; j < 8; j++ {
		i--
		buf[i] = digits[n&0xF]
		n >>= 4
	}
	return buf[i:]
}

// ParseU32 parses an unsigned base-10 number. The second result is
// false for empty input, non-digits, or overflow past 32 bits.
func ParseU32(s string) (uint32, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
		if v > 0xFFFFFFFF {
			return 0, false
		}
	}
	return uint32(v), true
}
