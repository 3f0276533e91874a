// Package indextable implements the variable-rate Index Table Segment,
// component G: per-frame stream offsets plus the CBR fast path where
// only EditUnitByteCount is stored.
package indextable

import (
	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ber"
	"github.com/cinecert/asdcplib-sub001/internal/klv"
	"github.com/cinecert/asdcplib-sub001/internal/tlv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// MaxEntriesPerSegment bounds a segment so it never exceeds ~64 KiB
// (spec §3: "starts a new segment every ~1486 entries").
const MaxEntriesPerSegment = 1486

// IndexEntry is one VBR index entry.
type IndexEntry struct {
	TemporalOffset int8
	KeyFrameOffset int8
	Flags          uint8
	StreamOffset   uint64
}

// DeltaEntry describes one content-element layout slot within an edit unit.
type DeltaEntry struct {
	PosTableIndex int8
	Slice         uint8
	ElementDelta  uint32
}

// GOP-start flag bit used by the key-frame-offset derivation pass.
const FlagGOPStart = 0x40

// Segment is one Index Table Segment.
type Segment struct {
	IndexEditRateNum  int32
	IndexEditRateDen  int32
	IndexStartPosition int64
	IndexDuration      int64
	EditUnitByteCount  uint32 // non-zero => CBR
	IndexSID           uint32
	BodySID            uint32
	SliceCount         uint8
	PosTableCount      uint8
	DeltaEntries       []DeltaEntry
	IndexEntries       []IndexEntry
}

// IsCBR reports whether this segment is constant bit rate.
func (s *Segment) IsCBR() bool { return s.EditUnitByteCount > 0 }

var (
	tagEditRate         uint16 = 0x3f0b
	tagStartPosition    uint16 = 0x3f0c
	tagDuration         uint16 = 0x3f0d
	tagEditUnitByteCount uint16 = 0x3f05
	tagIndexSID         uint16 = 0x3f06
	tagBodySID          uint16 = 0x3f07
	tagSliceCount       uint16 = 0x3f08
	tagPosTableCount    uint16 = 0x3f0e
	tagDeltaEntryArray  uint16 = 0x3f09
	tagIndexEntryArray  uint16 = 0x3f0a
)

// Encode serializes one segment as a KLV packet whose value is a TLV set.
func (s *Segment) Encode(set ul.LabelSet, primer *tlv.Primer, minBERWidth int) ([]byte, error) {
	const op = "indextable.Segment.Encode"
	e, ok := ul.For(set).ByName("IndexTableSegment")
	if !ok {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	sw := tlv.NewSetWriter(primer)
	item := func(tag uint16, v []byte) error {
		u := e.UL
		u[15] = byte(tag)
		return sw.WriteItem(u, tag, v)
	}
	if err := item(byte16(tagEditRate), tlv.EncodeRational(s.IndexEditRateNum, s.IndexEditRateDen)); err != nil {
		return nil, err
	}
	if err := item(byte16(tagStartPosition), tlv.EncodeU64(uint64(s.IndexStartPosition))); err != nil {
		return nil, err
	}
	if err := item(byte16(tagDuration), tlv.EncodeU64(uint64(s.IndexDuration))); err != nil {
		return nil, err
	}
	if err := item(byte16(tagEditUnitByteCount), tlv.EncodeU32(s.EditUnitByteCount)); err != nil {
		return nil, err
	}
	if err := item(byte16(tagIndexSID), tlv.EncodeU32(s.IndexSID)); err != nil {
		return nil, err
	}
	if err := item(byte16(tagBodySID), tlv.EncodeU32(s.BodySID)); err != nil {
		return nil, err
	}
	if err := item(byte16(tagSliceCount), tlv.EncodeU8(s.SliceCount)); err != nil {
		return nil, err
	}
	if err := item(byte16(tagPosTableCount), tlv.EncodeU8(s.PosTableCount)); err != nil {
		return nil, err
	}
	if len(s.DeltaEntries) > 0 {
		elemSize := 6
		elems := make([][]byte, len(s.DeltaEntries))
		for i, d := range s.DeltaEntries {
			b := make([]byte, elemSize)
			b[0] = byte(d.PosTableIndex)
			b[1] = d.Slice
			be := ber.BE
			be.PutUint32(b[2:6], d.ElementDelta)
			elems[i] = b
		}
		batch, err := tlv.EncodeBatch(elemSize, elems)
		if err != nil {
			return nil, err
		}
		if err := item(byte16(tagDeltaEntryArray), batch); err != nil {
			return nil, err
		}
	}
	if !s.IsCBR() && len(s.IndexEntries) > 0 {
		elemSize := 11
		elems := make([][]byte, len(s.IndexEntries))
		for i, ie := range s.IndexEntries {
			b := make([]byte, elemSize)
			b[0] = byte(ie.TemporalOffset)
			b[1] = byte(ie.KeyFrameOffset)
			b[2] = ie.Flags
			ber.BE.PutUint64(b[3:11], ie.StreamOffset)
			elems[i] = b
		}
		batch, err := tlv.EncodeBatch(elemSize, elems)
		if err != nil {
			return nil, err
		}
		if err := item(byte16(tagIndexEntryArray), batch); err != nil {
			return nil, err
		}
	}
	return klv.WritePacket(e.UL, sw.Bytes(), minBERWidth)
}

func byte16(tag uint16) uint16 { return tag }

// Decode parses one Index Table Segment value.
func Decode(value []byte) (*Segment, error) {
	const op = "indextable.Decode"
	items, err := tlv.DecodeSet(value)
	if err != nil {
		return nil, err
	}
	get := func(tag uint16) ([]byte, bool) {
		it, ok := items[tag]
		if !ok {
			return nil, false
		}
		return it.Value, true
	}
	s := &Segment{}
	if v, ok := get(tagEditRate); ok {
		n, d, err := tlv.DecodeRational(v)
		if err != nil {
			return nil, err
		}
		s.IndexEditRateNum, s.IndexEditRateDen = n, d
	}
	if v, ok := get(tagStartPosition); ok {
		s.IndexStartPosition = beI64(v)
	}
	if v, ok := get(tagDuration); ok {
		s.IndexDuration = beI64(v)
	}
	if v, ok := get(tagEditUnitByteCount); ok && len(v) == 4 {
		s.EditUnitByteCount = ber.BE.Uint32(v)
	}
	if v, ok := get(tagIndexSID); ok && len(v) == 4 {
		s.IndexSID = ber.BE.Uint32(v)
	}
	if v, ok := get(tagBodySID); ok && len(v) == 4 {
		s.BodySID = ber.BE.Uint32(v)
	}
	if v, ok := get(tagSliceCount); ok && len(v) == 1 {
		s.SliceCount = v[0]
	}
	if v, ok := get(tagPosTableCount); ok && len(v) == 1 {
		s.PosTableCount = v[0]
	}
	if v, ok := get(tagDeltaEntryArray); ok {
		size, elems, err := tlv.DecodeBatch(v)
		if err != nil {
			return nil, err
		}
		if size != 6 {
			return nil, asdcperr.New(asdcperr.FormatError, op, nil)
		}
		for _, e := range elems {
			s.DeltaEntries = append(s.DeltaEntries, DeltaEntry{
				PosTableIndex: int8(e[0]),
				Slice:         e[1],
				ElementDelta:  ber.BE.Uint32(e[2:6]),
			})
		}
	}
	if v, ok := get(tagIndexEntryArray); ok {
		size, elems, err := tlv.DecodeBatch(v)
		if err != nil {
			return nil, err
		}
		if size != 11 {
			return nil, asdcperr.New(asdcperr.FormatError, op, nil)
		}
		for _, e := range elems {
			s.IndexEntries = append(s.IndexEntries, IndexEntry{
				TemporalOffset: int8(e[0]),
				KeyFrameOffset: int8(e[1]),
				Flags:          e[2],
				StreamOffset:   ber.BE.Uint64(e[3:11]),
			})
		}
	}
	DeriveKeyFrameOffsets(s)
	return s, nil
}

func beI64(v []byte) int64 {
	var n uint64
	for _, b := range v {
		n = (n << 8) | uint64(b)
	}
	return int64(n)
}

// DeriveKeyFrameOffsets runs the post-pass described in spec §3: for each
// entry, KeyFrameOffset is the positive distance forward from the last
// entry (the entry itself included) whose flags carry the GOP-start bit
// (0x40), so a GOP-start entry gets 0 and frame_num - key_frame_offset
// recovers the GOP-start frame number.
func DeriveKeyFrameOffsets(s *Segment) {
	lastGOPStart := -1
	for i := range s.IndexEntries {
		if s.IndexEntries[i].Flags&FlagGOPStart != 0 {
			lastGOPStart = i
		}
		if lastGOPStart >= 0 {
			s.IndexEntries[i].KeyFrameOffset = int8(i - lastGOPStart)
		}
	}
}

// Lookup implements the frame -> byte-offset algorithm of spec §4.G across
// a set of segments, in order.
func Lookup(segments []*Segment, n int64) (uint64, error) {
	const op = "indextable.Lookup"
	for _, s := range segments {
		if s.IsCBR() {
			return uint64(n) * uint64(s.EditUnitByteCount), nil
		}
		if s.IndexStartPosition <= n && n < s.IndexStartPosition+s.IndexDuration {
			idx := n - s.IndexStartPosition
			if idx < 0 || int(idx) >= len(s.IndexEntries) {
				continue
			}
			return s.IndexEntries[idx].StreamOffset, nil
		}
	}
	return 0, asdcperr.New(asdcperr.OutOfRange, op, nil)
}

// Builder accumulates entries for the writer's "current segment",
// splitting into a new Segment every MaxEntriesPerSegment entries.
type Builder struct {
	EditRateNum, EditRateDen int32
	IndexSID, BodySID        uint32
	CBR                      uint32 // 0 == VBR

	segments []*Segment
	cur      *Segment
	nextPos  int64
}

func NewBuilder(editRateNum, editRateDen int32, indexSID, bodySID, cbrByteCount uint32) *Builder {
	b := &Builder{EditRateNum: editRateNum, EditRateDen: editRateDen, IndexSID: indexSID, BodySID: bodySID, CBR: cbrByteCount}
	if cbrByteCount > 0 {
		b.segments = []*Segment{{
			IndexEditRateNum: editRateNum, IndexEditRateDen: editRateDen,
			EditUnitByteCount: cbrByteCount, IndexSID: indexSID, BodySID: bodySID,
		}}
	}
	return b
}

// Append records one frame's absolute stream offset; for VBR this appends
// an IndexEntry, rolling to a new Segment at the 1486-entry boundary.
func (b *Builder) Append(streamOffset uint64, flags uint8, temporalOffset int8) {
	if b.CBR > 0 {
		b.segments[0].IndexDuration++
		return
	}
	if b.cur == nil || len(b.cur.IndexEntries) >= MaxEntriesPerSegment {
		b.cur = &Segment{
			IndexEditRateNum: b.EditRateNum, IndexEditRateDen: b.EditRateDen,
			IndexStartPosition: b.nextPos, IndexSID: b.IndexSID, BodySID: b.BodySID,
		}
		b.segments = append(b.segments, b.cur)
	}
	b.cur.IndexEntries = append(b.cur.IndexEntries, IndexEntry{
		StreamOffset: streamOffset, Flags: flags, TemporalOffset: temporalOffset,
	})
	b.cur.IndexDuration++
	b.nextPos++
}

// Segments returns all accumulated segments in write order.
func (b *Builder) Segments() []*Segment { return b.segments }
