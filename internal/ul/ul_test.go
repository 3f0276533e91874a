package ul

import "testing"

func TestMatchIgnoreStream(t *testing.T) {
	a := UL{0x06, 0x0e, 0x2b, 0x34, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0x01}
	b := a
	b[15] = 0x09
	if !a.MatchIgnoreStream(b) {
		t.Fatal("expected match ignoring only the stream-index byte")
	}
	b[7] = 0xff
	if a.MatchIgnoreStream(b) {
		t.Fatal("expected mismatch when a non-stream byte differs")
	}
}

func TestNewUUIDv5Deterministic(t *testing.T) {
	ns := UUID{1, 2, 3}
	a := NewUUIDv5(ns, []byte("hello"))
	b := NewUUIDv5(ns, []byte("hello"))
	if a != b {
		t.Fatal("NewUUIDv5 must be deterministic for identical namespace+name")
	}
	c := NewUUIDv5(ns, []byte("world"))
	if a == c {
		t.Fatal("NewUUIDv5 must differ for different names")
	}
}

func TestNewUUIDRandom(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	if a == b {
		t.Fatal("NewUUID produced two identical UUIDs")
	}
}

func TestULFromBytes(t *testing.T) {
	raw := make([]byte, 16)
	for i := range raw {
		raw[i] = byte(i)
	}
	u, err := ULFromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "000102030405060708090a0b0c0d0e0f" {
		t.Fatalf("unexpected hex encoding: %s", u.String())
	}
	if _, err := ULFromBytes(raw[:15]); err == nil {
		t.Fatal("expected error for wrong-length input")
	}
}

func TestMDDRegistryBothLabelSets(t *testing.T) {
	for _, set := range []LabelSet{Interop, SMPTE} {
		e, ok := For(set).ByName("PrimerPack")
		if !ok {
			t.Fatalf("PrimerPack missing from label set %v", set)
		}
		if e.UL == (UL{}) {
			t.Fatalf("PrimerPack resolved to zero UL in label set %v", set)
		}
	}
}
