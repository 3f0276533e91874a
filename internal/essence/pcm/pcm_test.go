package pcm

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := make([]byte, 48000*2*2) // 1 second, stereo, 16-bit
	for i := range data {
		data[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, 2, 48000, 16, data); err != nil {
		t.Fatal(err)
	}
	s, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if s.Channels != 2 || s.SampleRate != 48000 || s.BitsPerSample != 16 {
		t.Fatalf("unexpected format: %+v", s)
	}
	if !bytes.Equal(s.Data, data) {
		t.Fatal("decoded PCM data does not match encoded data")
	}
}

func TestFramesCBRSlicing(t *testing.T) {
	s := &Stream{SampleRate: 48000, BlockAlign: 4, Data: make([]byte, 4*2000*3)}
	frames, err := s.Frames(24, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for _, f := range frames {
		if len(f) != 4*2000 {
			t.Errorf("frame length %d, want %d", len(f), 4*2000)
		}
	}
}

func TestFramesRejectsNonMultiple(t *testing.T) {
	s := &Stream{SampleRate: 48000, BlockAlign: 4, Data: make([]byte, 4*2000*3+1)}
	if _, err := s.Frames(24, 1); err == nil {
		t.Fatal("expected error for a data length not an exact multiple of the frame size")
	}
}

func TestChannelCount(t *testing.T) {
	cases := map[ChannelFormat]int{
		Format51: 6, Format61: 7, Format71: 8, Format71DS: 8, FormatWTF: 2,
	}
	for f, want := range cases {
		if got := ChannelCount(f); got != want {
			t.Errorf("ChannelCount(%s) = %d, want %d", f, got, want)
		}
	}
	if ChannelCount("bogus") != 0 {
		t.Error("expected 0 for an unrecognized channel format")
	}
}
