package mathx

// Integer division helpers for firmware maths. Inputs are unsigned;
// a zero divisor yields zero rather than trapping.

// CeilDiv returns ceil(a/b).
func CeilDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv returns a/b rounded half-up: floor((a + b/2) / b).
func RoundDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}
