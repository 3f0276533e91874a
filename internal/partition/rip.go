package partition

import (
	"io"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ber"
	"github.com/cinecert/asdcplib-sub001/internal/klv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// RIPEntry is one (BodySID, absolute-offset) pair.
type RIPEntry struct {
	BodySID uint32
	Offset  uint64
}

// RIP is the trailing Random Index Pack.
type RIP struct {
	Entries []RIPEntry
}

// Encode serializes the RIP value plus its own trailing total-length
// footer (spec §4.F: "the trailing length equals the packet's total byte
// count").
func (r RIP) Encode(set ul.LabelSet) ([]byte, error) {
	e, _ := ul.For(set).ByName("RandomIndexPack")
	w := ber.NewWriter()
	for _, ent := range r.Entries {
		w.WriteU32BE(ent.BodySID)
		w.WriteU64BE(ent.Offset)
	}
	packet, err := klv.WritePacket(e.UL, w.Bytes(), 4)
	if err != nil {
		return nil, err
	}
	total := uint32(len(packet) + 4)
	out := make([]byte, 0, len(packet)+4)
	out = append(out, packet...)
	var tb [4]byte
	ber.BE.PutUint32(tb[:], total)
	out = append(out, tb[:]...)
	return out, nil
}

// Locate implements the end-of-file RIP location protocol (spec §4.F):
// seek to size-4, read a u32 BE total length, seek back by that length
// from the end, and parse the KLV there.
func Locate(r io.ReaderAt, fileSize int64) (RIP, int64, error) {
	const op = "partition.Locate"
	if fileSize < 4 {
		return RIP{}, 0, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	var lb [4]byte
	if _, err := r.ReadAt(lb[:], fileSize-4); err != nil {
		return RIP{}, 0, asdcperr.New(asdcperr.FormatError, op, err)
	}
	total := int64(ber.BE.Uint32(lb[:]))
	if total <= 0 || total > fileSize {
		return RIP{}, 0, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	ripStart := fileSize - total
	p, err := klv.ReadAt(r, ripStart, 32)
	if err != nil {
		return RIP{}, 0, err
	}
	ripUL, _ := ul.For(ul.SMPTE).ByName("RandomIndexPack")
	ripULInterop, _ := ul.For(ul.Interop).ByName("RandomIndexPack")
	if !p.Key.Equal(ripUL.UL) && !p.Key.Equal(ripULInterop.UL) {
		return RIP{}, 0, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	value, err := klv.ReadValue(r, p)
	if err != nil {
		return RIP{}, 0, err
	}
	if len(value)%12 != 0 {
		return RIP{}, 0, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	var rip RIP
	for off := 0; off < len(value); off += 12 {
		sid := ber.BE.Uint32(value[off : off+4])
		offset := ber.BE.Uint64(value[off+4 : off+12])
		rip.Entries = append(rip.Entries, RIPEntry{BodySID: sid, Offset: offset})
	}
	if len(rip.Entries) == 0 || rip.Entries[0].Offset != 0 {
		return RIP{}, 0, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	return rip, ripStart, nil
}
