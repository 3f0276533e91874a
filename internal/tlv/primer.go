// Package tlv implements the Primer-driven Tag-Length-Value set codec,
// component D: a 2-byte local Tag resolves through the Primer to a UL,
// which resolves through the UL registry (component B) to a typed field.
package tlv

import (
	"sort"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Primer is the ordered local-tag -> UL map (spec §3). On write, dynamic
// tags are assigned top-down from 0xffff for ULs whose MDD entry carries
// no static tag (spec §9).
type Primer struct {
	tagToUL map[uint16]ul.UL
	ulToTag map[ul.UL]uint16
	next    uint16
}

func NewPrimer() *Primer {
	return &Primer{tagToUL: map[uint16]ul.UL{}, ulToTag: map[ul.UL]uint16{}, next: 0xffff}
}

// TagFor returns the tag for u, registering a dynamic tag if u has no
// static MDD tag and is not yet present (invariant P4).
func (p *Primer) TagFor(u ul.UL, staticTag uint16) uint16 {
	if t, ok := p.ulToTag[u]; ok {
		return t
	}
	var tag uint16
	if staticTag != 0 {
		tag = staticTag
	} else {
		tag = p.next
		p.next--
	}
	p.tagToUL[tag] = u
	p.ulToTag[u] = tag
	return tag
}

// Resolve maps a tag back to its UL; ok is false for an unregistered tag.
func (p *Primer) Resolve(tag uint16) (ul.UL, bool) {
	u, ok := p.tagToUL[tag]
	return u, ok
}

// Register records an explicit tag -> UL binding, used while rebuilding
// the Primer from a file on read.
func (p *Primer) Register(tag uint16, u ul.UL) {
	p.tagToUL[tag] = u
	p.ulToTag[u] = tag
}

// SortedTags returns the set of registered tags in ascending order, for
// deterministic Primer-pack serialization.
func (p *Primer) SortedTags() []uint16 {
	tags := make([]uint16, 0, len(p.tagToUL))
	for t := range p.tagToUL {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Encode serializes the Primer Pack value: a batch of (tag, UL) pairs.
func (p *Primer) Encode() []byte {
	tags := p.SortedTags()
	out := make([]byte, 0, 8+18*len(tags))
	var hdr [8]byte
	be := func(v uint32, b []byte) { b[0] = byte(v >> 24); b[1] = byte(v >> 16); b[2] = byte(v >> 8); b[3] = byte(v) }
	be(uint32(len(tags)), hdr[0:4])
	be(18, hdr[4:8])
	out = append(out, hdr[:]...)
	for _, t := range tags {
		out = append(out, byte(t>>8), byte(t))
		u := p.tagToUL[t]
		out = append(out, u.Bytes()...)
	}
	return out
}

// DecodePrimer parses a Primer Pack value.
func DecodePrimer(value []byte) (*Primer, error) {
	const op = "tlv.DecodePrimer"
	if len(value) < 8 {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	be32 := func(b []byte) uint32 { return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]) }
	count := be32(value[0:4])
	elemSize := be32(value[4:8])
	if count > 65536 || elemSize != 18 {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	p := NewPrimer()
	off := 8
	for i := uint32(0); i < count; i++ {
		if off+18 > len(value) {
			return nil, asdcperr.New(asdcperr.FormatError, op, nil)
		}
		tag := uint16(value[off])<<8 | uint16(value[off+1])
		u, err := ul.ULFromBytes(value[off+2 : off+18])
		if err != nil {
			return nil, asdcperr.New(asdcperr.FormatError, op, err)
		}
		p.Register(tag, u)
		off += 18
	}
	return p, nil
}
