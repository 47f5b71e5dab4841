package uart

import (
	"math/big"
	"testing"

	"serialcore-go/errcode"
)

func TestComputeDivisorDocumentedCase(t *testing.T) {
	// 9600 baud at a 4 MHz clock, prescale 4:
	// 4e6 / (4*9600) = 104.166..., rounds to 104, divisor 103.
	div, err := ComputeDivisor(9600, 4_000_000)
	if err != nil {
		t.Fatalf("ComputeDivisor: %v", err)
	}
	if div != 103 {
		t.Fatalf("divisor = %d, want 103", div)
	}
}

func TestComputeDivisorRoundsHalfUp(t *testing.T) {
	// clock/(4*baud) = 2.5 exactly when clock = 10*baud.
	// Half-up must give 3, divisor 2; truncation would give divisor 1.
	div, err := ComputeDivisor(1000, 10_000)
	if err != nil {
		t.Fatalf("ComputeDivisor: %v", err)
	}
	if div != 2 {
		t.Fatalf("divisor = %d, want 2 (round half up)", div)
	}
}

// Re-derive each fixed-point divisor with exact rational arithmetic and
// require identical round-half-up results.
func TestComputeDivisorMatchesExactRational(t *testing.T) {
	cases := []struct{ baud, clock uint32 }{
		{9600, 4_000_000},
		{19200, 4_000_000},
		{115200, 125_000_000},
		{300, 32_768 * 4},
		{57600, 8_000_000},
		{1200, 1_000_000},
		{230400, 48_000_000},
	}
	for _, c := range cases {
		got, err := ComputeDivisor(c.baud, c.clock)
		if err != nil {
			t.Fatalf("(%d,%d): %v", c.baud, c.clock, err)
		}
		// round(clock / (Prescale*baud)) with big.Rat, half away from zero.
		q := new(big.Rat).SetFrac64(int64(c.clock), int64(Prescale)*int64(c.baud))
		num, den := q.Num().Int64(), q.Denom().Int64()
		want := (2*num + den) / (2 * den) // floor((n/d)+1/2)
		if int64(got) != want-1 {
			t.Fatalf("(%d,%d): divisor = %d, exact = %d", c.baud, c.clock, got, want-1)
		}
		// The achieved rate must re-derive to within one rounding step.
		back := AchievedBaud(got, c.clock)
		if back == 0 {
			t.Fatalf("(%d,%d): achieved baud is zero", c.baud, c.clock)
		}
	}
}

func TestComputeDivisorRejectsZeroAndOverflow(t *testing.T) {
	// Baud faster than the generator can express: divisor would be 0.
	if _, err := ComputeDivisor(1_000_000, 4_000_000); err != errcode.InvalidDivisor {
		t.Fatalf("fast baud err = %v, want invalid_divisor", err)
	}
	// Extremely low baud against a high clock: past 16 bits.
	if _, err := ComputeDivisor(50, 1_000_000_000); err != errcode.InvalidDivisor {
		t.Fatalf("overflow err = %v, want invalid_divisor", err)
	}
	if _, err := ComputeDivisor(0, 4_000_000); err != errcode.InvalidDivisor {
		t.Fatalf("zero baud err = %v, want invalid_divisor", err)
	}
	if _, err := ComputeDivisor(9600, 0); err != errcode.InvalidDivisor {
		t.Fatalf("zero clock err = %v, want invalid_divisor", err)
	}
}

func TestComputeDivisorUpperBoundFits(t *testing.T) {
	// Largest representable divisor must still be accepted.
	// clock = 4*baud*65536 -> round = 65536 -> divisor 65535.
	div, err := ComputeDivisor(10, 4*10*65536)
	if err != nil {
		t.Fatalf("ComputeDivisor: %v", err)
	}
	if div != 65535 {
		t.Fatalf("divisor = %d, want 65535", div)
	}
	// One step beyond overflows the register width.
	if _, err := ComputeDivisor(10, 4*10*65537); err != errcode.InvalidDivisor {
		t.Fatalf("err = %v, want invalid_divisor", err)
	}
}
