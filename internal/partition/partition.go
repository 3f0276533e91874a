// Package partition implements the fixed-layout Partition Pack and the
// trailing Random Index Pack, component F of the codec.
package partition

import (
	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ber"
	"github.com/cinecert/asdcplib-sub001/internal/klv"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Kind names the partition variant; the variant is conveyed only by the
// KLV key UL, never by a field inside the value (spec §4.F).
type Kind int

const (
	KindHeader Kind = iota
	KindBody
	KindFooter
)

// Pack is the big-endian Partition Pack body.
type Pack struct {
	Kind               Kind
	MajorVersion       uint16
	MinorVersion       uint16
	KAGSize            uint32
	ThisPartition      uint64
	PreviousPartition  uint64
	FooterPartition    uint64
	HeaderByteCount    uint64
	IndexByteCount     uint64
	IndexSID           uint32
	BodyOffset         uint64
	BodySID            uint32
	OperationalPattern ul.UL
	EssenceContainers  []ul.UL
}

func keyFor(k Kind, set ul.LabelSet) ul.UL {
	var name string
	switch k {
	case KindHeader:
		name = "HeaderPartitionClosedComplete"
	case KindBody:
		name = "BodyPartitionClosedComplete"
	default:
		name = "FooterPartitionComplete"
	}
	e, _ := ul.For(set).ByName(name)
	return e.UL
}

// Encode serializes p as a full KLV packet.
func (p Pack) Encode(set ul.LabelSet, minBERWidth int) ([]byte, error) {
	w := ber.NewWriter()
	w.WriteU16BE(p.MajorVersion)
	w.WriteU16BE(p.MinorVersion)
	w.WriteU32BE(p.KAGSize)
	w.WriteU64BE(p.ThisPartition)
	w.WriteU64BE(p.PreviousPartition)
	w.WriteU64BE(p.FooterPartition)
	w.WriteU64BE(p.HeaderByteCount)
	w.WriteU64BE(p.IndexByteCount)
	w.WriteU32BE(p.IndexSID)
	w.WriteU64BE(p.BodyOffset)
	w.WriteU32BE(p.BodySID)
	w.WriteBytes(p.OperationalPattern.Bytes())
	w.WriteU32BE(uint32(len(p.EssenceContainers)))
	w.WriteU32BE(16)
	for _, ec := range p.EssenceContainers {
		w.WriteBytes(ec.Bytes())
	}
	return klv.WritePacket(keyFor(p.Kind, set), w.Bytes(), minBERWidth)
}

// Decode parses a Partition Pack value given the packet's key (which
// determines Kind and, on SMPTE files, status bits the caller may inspect
// separately; this codec only distinguishes Header/Body/Footer).
func Decode(key ul.UL, value []byte) (Pack, error) {
	const op = "partition.Decode"
	c := ber.NewCursor(value)
	p := Pack{}
	var err error
	if p.MajorVersion, err = c.ReadU16BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.MinorVersion, err = c.ReadU16BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.KAGSize, err = c.ReadU32BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.ThisPartition, err = c.ReadU64BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.PreviousPartition, err = c.ReadU64BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.FooterPartition, err = c.ReadU64BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.HeaderByteCount, err = c.ReadU64BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.IndexByteCount, err = c.ReadU64BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.IndexSID, err = c.ReadU32BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.BodyOffset, err = c.ReadU64BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if p.BodySID, err = c.ReadU32BE(); err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	opBytes, err := c.ReadN(16)
	if err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	p.OperationalPattern, _ = ul.ULFromBytes(opBytes)
	count, err := c.ReadU32BE()
	if err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	elemSize, err := c.ReadU32BE()
	if err != nil {
		return p, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if elemSize != 16 {
		return p, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	for i := uint32(0); i < count; i++ {
		b, err := c.ReadN(16)
		if err != nil {
			return p, asdcperr.New(asdcperr.FormatError, op, err)
		}
		u, _ := ul.ULFromBytes(b)
		p.EssenceContainers = append(p.EssenceContainers, u)
	}
	for _, k := range []Kind{KindHeader, KindBody, KindFooter} {
		if keyFor(k, ul.SMPTE).Equal(key) || keyFor(k, ul.Interop).Equal(key) {
			p.Kind = k
			break
		}
	}
	return p, nil
}
