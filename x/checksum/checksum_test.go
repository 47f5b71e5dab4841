package checksum

import "testing"

func TestSum8(t *testing.T) {
	if Sum8(nil) != 0 {
		t.Fatal("Sum8(nil) != 0")
	}
	if got := Sum8([]byte{1, 2, 3}); got != 6 {
		t.Fatalf("Sum8 = %d, want 6", got)
	}
	// Modular wrap.
	if got := Sum8([]byte{0xFF, 0x02}); got != 1 {
		t.Fatalf("Sum8 wrap = %d, want 1", got)
	}
}

func TestXor8(t *testing.T) {
	if got := Xor8([]byte{0xAA, 0x55}); got != 0xFF {
		t.Fatalf("Xor8 = %#x, want 0xFF", got)
	}
	if got := Xor8([]byte{0x41, 0x41}); got != 0 {
		t.Fatalf("Xor8 self-cancel = %#x, want 0", got)
	}
}

func TestFletcher16KnownVectors(t *testing.T) {
	// Standard test vectors.
	cases := []struct {
		in   string
		want uint16
	}{
		{"abcde", 0xC8F0},
		{"abcdef", 0x2057},
		{"abcdefgh", 0x0627},
	}
	for _, c := range cases {
		if got := Fletcher16([]byte(c.in)); got != c.want {
			t.Fatalf("Fletcher16(%q) = %#04x, want %#04x", c.in, got, c.want)
		}
	}
}
