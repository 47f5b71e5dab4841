package mathx

import "testing"

func TestClampAndBetween(t *testing.T) {
	if Clamp(5, 0, 10) != 5 || Clamp(-1, 0, 10) != 0 || Clamp(11, 0, 10) != 10 {
		t.Fatal("Clamp basic cases wrong")
	}
	if Clamp(5, 10, 0) != 5 {
		t.Fatal("Clamp must tolerate swapped bounds")
	}
	if !Between(3, 1, 5) || Between(6, 1, 5) || !Between(3, 5, 1) {
		t.Fatal("Between wrong")
	}
}

func TestRoundDivHalfUp(t *testing.T) {
	cases := []struct{ a, b, want uint32 }{
		{10, 4, 3}, // 2.5 rounds up
		{9, 4, 2},  // 2.25 rounds down
		{11, 4, 3}, // 2.75 rounds up
		{8, 4, 2},  // exact
		{0, 4, 0},  // zero numerator
		{5, 0, 0},  // zero divisor guarded
		{104, 1, 104},
	}
	for _, c := range cases {
		if got := RoundDiv(c.a, c.b); got != c.want {
			t.Fatalf("RoundDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
	if CeilDiv(uint32(9), 4) != 3 || CeilDiv(uint32(8), 4) != 2 {
		t.Fatal("CeilDiv wrong")
	}
}

func TestMapU16(t *testing.T) {
	if got := MapU16(512, 0, 1023, 0, 100); got != 50 {
		t.Fatalf("MapU16 midpoint = %d, want 50", got)
	}
	if MapU16(0, 0, 1023, 10, 20) != 10 || MapU16(1023, 0, 1023, 10, 20) != 20 {
		t.Fatal("MapU16 endpoints wrong")
	}
	if MapU16(2000, 0, 1023, 0, 100) != 100 {
		t.Fatal("MapU16 must clamp above range")
	}
	if MapU16(7, 5, 5, 42, 99) != 42 {
		t.Fatal("MapU16 degenerate input range must return outMin")
	}
}

func TestMapU16InvertedOutputRange(t *testing.T) {
	if got := MapU16(0, 0, 100, 100, 0); got != 100 {
		t.Fatalf("inverted low endpoint = %d, want 100", got)
	}
	if got := MapU16(100, 0, 100, 100, 0); got != 0 {
		t.Fatalf("inverted high endpoint = %d, want 0", got)
	}
	if got := MapU16(25, 0, 100, 100, 0); got != 75 {
		t.Fatalf("inverted quarter = %d, want 75", got)
	}
	// Clamping still lands on the matching output bound.
	if MapU16(200, 0, 100, 100, 0) != 0 || MapU16(0, 10, 100, 100, 0) != 100 {
		t.Fatal("inverted range must clamp to the mapped bounds")
	}
}

func TestLerpU16(t *testing.T) {
	if LerpU16(0, 100, 0) != 0 || LerpU16(0, 100, 65535) != 100 {
		t.Fatal("LerpU16 endpoints wrong")
	}
	mid := LerpU16(0, 100, 32768)
	if mid < 49 || mid > 51 {
		t.Fatalf("LerpU16 midpoint = %d, want ~50", mid)
	}
	// Descending works too.
	if LerpU16(100, 0, 65535) != 0 {
		t.Fatal("LerpU16 descending endpoint wrong")
	}
}
