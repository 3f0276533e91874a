package j2c

import (
	"bytes"
	"testing"
)

func codestream(body string) []byte {
	b := []byte{0xff, 0x4f}
	b = append(b, []byte(body)...)
	b = append(b, 0xff, 0xd9)
	return b
}

func TestValidate(t *testing.T) {
	if err := Validate(codestream("payload")); err != nil {
		t.Fatal(err)
	}
	if err := Validate([]byte{0x00, 0x01}); err == nil {
		t.Fatal("expected error for a buffer missing SOC/EOC markers")
	}
}

func TestScannerSplitsConcatenatedStream(t *testing.T) {
	var stream []byte
	stream = append(stream, codestream("one")...)
	stream = append(stream, codestream("two-longer-payload")...)

	s := NewScanner(bytes.NewReader(stream))
	first, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(first); err != nil {
		t.Errorf("first codestream failed validation: %v", err)
	}
	second, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(second); err != nil {
		t.Errorf("second codestream failed validation: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Error("expected two distinct codestreams")
	}
	if _, err := s.Next(); err == nil {
		t.Fatal("expected io.EOF once both codestreams are consumed")
	}
}
