package indextable

import "testing"

func TestBuilderVBRLookup(t *testing.T) {
	b := NewBuilder(24, 1, 129, 1, 0)
	offsets := []uint64{0, 512, 1100, 2048}
	for i, off := range offsets {
		flags := uint8(0)
		if i == 0 {
			flags = FlagGOPStart
		}
		b.Append(off, flags, 0)
	}
	segs := b.Segments()
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment for %d entries, got %d", len(offsets), len(segs))
	}
	for i, want := range offsets {
		got, err := Lookup(segs, int64(i))
		if err != nil {
			t.Fatalf("Lookup(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("Lookup(%d) = %d, want %d", i, got, want)
		}
	}
	if _, err := Lookup(segs, int64(len(offsets))); err == nil {
		t.Fatal("expected OutOfRange for a frame past the end")
	}
}

func TestBuilderSplitsAtSegmentBoundary(t *testing.T) {
	b := NewBuilder(24, 1, 129, 1, 0)
	total := MaxEntriesPerSegment + 5
	for i := 0; i < total; i++ {
		b.Append(uint64(i)*100, 0, 0)
	}
	segs := b.Segments()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments for %d entries, got %d", total, len(segs))
	}
	if len(segs[0].IndexEntries) != MaxEntriesPerSegment {
		t.Errorf("first segment has %d entries, want %d", len(segs[0].IndexEntries), MaxEntriesPerSegment)
	}
	if len(segs[1].IndexEntries) != 5 {
		t.Errorf("second segment has %d entries, want 5", len(segs[1].IndexEntries))
	}
	if got, err := Lookup(segs, int64(MaxEntriesPerSegment)); err != nil || got != uint64(MaxEntriesPerSegment)*100 {
		t.Errorf("Lookup across segment boundary = (%d, %v)", got, err)
	}
}

func TestBuilderCBR(t *testing.T) {
	b := NewBuilder(24, 1, 129, 1, 4096)
	for i := 0; i < 10; i++ {
		b.Append(uint64(i)*4096, 0, 0)
	}
	got, err := Lookup(b.Segments(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3*4096 {
		t.Errorf("CBR Lookup(3) = %d, want %d", got, 3*4096)
	}
}

func TestDeriveKeyFrameOffsets(t *testing.T) {
	s := &Segment{IndexEntries: []IndexEntry{
		{Flags: FlagGOPStart},
		{},
		{},
		{Flags: FlagGOPStart},
		{},
	}}
	DeriveKeyFrameOffsets(s)
	// Each entry's offset counts forward from the most recent GOP-start
	// entry, the entry itself included, so GOP-start entries 0 and 3 get 0
	// and entry 4 is 1 away from entry 3.
	want := []int8{0, 1, 2, 0, 1}
	for i, w := range want {
		if s.IndexEntries[i].KeyFrameOffset != w {
			t.Errorf("entry %d: KeyFrameOffset = %d, want %d", i, s.IndexEntries[i].KeyFrameOffset, w)
		}
	}
}
