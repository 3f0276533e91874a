package mpeg2

import (
	"bytes"
	"testing"
)

func picture(ptype PictureType) []byte {
	return []byte{0, 0, 1, pictureStartCode, 0, byte(ptype) << 3}
}

func gop(closed bool) []byte {
	b := byte(0)
	if closed {
		b = 0x40
	}
	return []byte{0, 0, 1, gopStartCode, b, 0, 0, 0}
}

func TestScanClassifiesPictureTypesAndGOPStart(t *testing.T) {
	var stream []byte
	stream = append(stream, gop(true)...)
	stream = append(stream, picture(PictureI)...)
	stream = append(stream, picture(PictureP)...)
	stream = append(stream, picture(PictureB)...)

	frames, err := Scan(bytes.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if !frames[0].GOPStart || !frames[0].ClosedGOP {
		t.Errorf("frame 0 should carry the closed GOP-start marker, got %+v", frames[0])
	}
	if frames[1].GOPStart || frames[2].GOPStart {
		t.Error("only the first frame of a GOP should carry GOPStart")
	}
	wantTypes := []PictureType{PictureI, PictureP, PictureB}
	for i, want := range wantTypes {
		if frames[i].Type != want {
			t.Errorf("frame %d type = %d, want %d", i, frames[i].Type, want)
		}
	}
}

func TestFrameFlags(t *testing.T) {
	cases := []struct {
		name string
		f    Frame
		want uint8
	}{
		{"I, closed GOP start", Frame{Type: PictureI, GOPStart: true, ClosedGOP: true}, 0xC0},
		{"I, no GOP markers", Frame{Type: PictureI}, 0x00},
		{"P picture", Frame{Type: PictureP}, 0x22},
		{"B picture", Frame{Type: PictureB}, 0x33},
		{"P, open GOP start", Frame{Type: PictureP, GOPStart: true}, 0x62},
	}
	for _, c := range cases {
		if got := c.f.Flags(); got != c.want {
			t.Errorf("%s: Flags() = %#x, want %#x", c.name, got, c.want)
		}
	}
}
