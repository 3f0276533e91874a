package ber

import "testing"

func TestBERRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 65535, 1 << 24, 1<<32 - 1, 1 << 40}
	widths := []int{4, 8, 9}

	for _, v := range values {
		for _, w := range widths {
			enc, err := EncodeBER(v, w)
			if err != nil {
				// value doesn't fit this width; that's fine, skip.
				continue
			}
			if len(enc) != w {
				t.Fatalf("EncodeBER(%d, %d): got length %d", v, w, len(enc))
			}
			got, n, err := DecodeBER(enc)
			if err != nil {
				t.Fatalf("DecodeBER(%x): %v", enc, err)
			}
			if got != v || n != w {
				t.Errorf("round trip mismatch: want (%d, %d), got (%d, %d)", v, w, got, n)
			}
		}
	}
}

func TestDecodeBERRejectsNoHighBit(t *testing.T) {
	if _, _, err := DecodeBER([]byte{0x04, 0, 0, 0, 0}); err == nil {
		t.Fatal("expected error for BER preamble missing the high bit")
	}
}

func TestDecodeBERRejectsShortBuffer(t *testing.T) {
	if _, _, err := DecodeBER([]byte{0x84, 0, 0}); err == nil {
		t.Fatal("expected error for truncated BER value")
	}
}

func TestMinWidthFor(t *testing.T) {
	cases := []struct {
		length uint64
		min    int
		want   int
	}{
		{0, 4, 4},
		{1 << 20, 4, 4},
		{1 << 24, 4, 5},
		{1 << 32, 4, 6},
	}
	for _, c := range cases {
		if got := MinWidthFor(c.length, c.min); got != c.want {
			t.Errorf("MinWidthFor(%d, %d) = %d, want %d", c.length, c.min, got, c.want)
		}
	}
}
