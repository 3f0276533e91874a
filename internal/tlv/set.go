package tlv

import (
	"time"
	"unicode/utf16"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ber"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Item is one decoded (tag, value) entry from a TLV set.
type Item struct {
	Tag   uint16
	Value []byte
}

// DecodeSet enumerates (tag, length, value) triples over an in-memory KLV
// value region, building an in-memory map keyed by tag. Order within the
// set is not significant (spec §4.E).
func DecodeSet(value []byte) (map[uint16]Item, error) {
	const op = "tlv.DecodeSet"
	items := map[uint16]Item{}
	off := 0
	for off < len(value) {
		if off+4 > len(value) {
			return nil, asdcperr.New(asdcperr.FormatError, op, nil)
		}
		tag := uint16(value[off])<<8 | uint16(value[off+1])
		length := uint16(value[off+2])<<8 | uint16(value[off+3])
		off += 4
		if off+int(length) > len(value) {
			return nil, asdcperr.New(asdcperr.FormatError, op, nil)
		}
		items[tag] = Item{Tag: tag, Value: value[off : off+int(length)]}
		off += int(length)
	}
	return items, nil
}

// SetWriter accumulates items in the order they are written; each item's
// 2-byte length is written directly from its already-encoded value (spec
// §4.E write path).
type SetWriter struct {
	w      *ber.Writer
	primer *Primer
}

func NewSetWriter(p *Primer) *SetWriter { return &SetWriter{w: ber.NewWriter(), primer: p} }

func (s *SetWriter) Bytes() []byte { return s.w.Bytes() }

// WriteItem writes tag (registering u in the Primer if needed) then value.
func (s *SetWriter) WriteItem(u ul.UL, staticTag uint16, value []byte) error {
	const op = "tlv.SetWriter.WriteItem"
	if len(value) > 0xffff {
		return asdcperr.New(asdcperr.KlvCoding, op, nil)
	}
	tag := s.primer.TagFor(u, staticTag)
	s.w.WriteU16BE(tag)
	s.w.WriteU16BE(uint16(len(value)))
	s.w.WriteBytes(value)
	return nil
}

// --- typed field encode helpers ---

func EncodeU8(v uint8) []byte  { return []byte{v} }
func EncodeU16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
func EncodeU32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
func EncodeU64(v uint64) []byte {
	out := make([]byte, 8)
	ber.BE.PutUint64(out, v)
	return out
}
func EncodeI8(v int8) []byte  { return []byte{byte(v)} }

func EncodeRational(num, den int32) []byte {
	out := make([]byte, 8)
	ber.BE.PutUint32(out[0:4], uint32(num))
	ber.BE.PutUint32(out[4:8], uint32(den))
	return out
}

func DecodeRational(b []byte) (num, den int32, err error) {
	if len(b) != 8 {
		return 0, 0, asdcperr.New(asdcperr.FormatError, "tlv.DecodeRational", nil)
	}
	return int32(ber.BE.Uint32(b[0:4])), int32(ber.BE.Uint32(b[4:8])), nil
}

// timestamps use the SMPTE KLV 8-byte packed date/time form.
func EncodeTimestamp(t time.Time) []byte {
	out := make([]byte, 8)
	ber.BE.PutUint16(out[0:2], uint16(t.Year()))
	out[2] = byte(t.Month())
	out[3] = byte(t.Day())
	out[4] = byte(t.Hour())
	out[5] = byte(t.Minute())
	out[6] = byte(t.Second())
	out[7] = byte(t.Nanosecond() / 4000000)
	return out
}

func DecodeTimestamp(b []byte) (time.Time, error) {
	if len(b) != 8 {
		return time.Time{}, asdcperr.New(asdcperr.FormatError, "tlv.DecodeTimestamp", nil)
	}
	return time.Date(int(ber.BE.Uint16(b[0:2])), time.Month(b[2]), int(b[3]), int(b[4]), int(b[5]), int(b[6]), int(b[7])*4000000, time.UTC), nil
}

func EncodeUTF16BE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		ber.BE.PutUint16(out[i*2:i*2+2], u)
	}
	return out
}

func DecodeUTF16BE(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", asdcperr.New(asdcperr.FormatError, "tlv.DecodeUTF16BE", nil)
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = ber.BE.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(units)), nil
}

// EncodeBatch serializes a batch of fixed-size elements as
// (count:u32 BE, element_size:u32 BE, elements...), refusing counts or
// element sizes beyond the limits in spec §9.
func EncodeBatch(elemSize int, elements [][]byte) ([]byte, error) {
	const op = "tlv.EncodeBatch"
	if len(elements) > 65536 || elemSize > 1024 {
		return nil, asdcperr.New(asdcperr.KlvCoding, op, nil)
	}
	out := make([]byte, 0, 8+elemSize*len(elements))
	out = append(out, EncodeU32(uint32(len(elements)))...)
	out = append(out, EncodeU32(uint32(elemSize))...)
	for _, e := range elements {
		if len(e) != elemSize {
			return nil, asdcperr.New(asdcperr.KlvCoding, op, nil)
		}
		out = append(out, e...)
	}
	return out, nil
}

// DecodeBatch parses a batch header and returns its raw elements.
func DecodeBatch(value []byte) (elemSize int, elements [][]byte, err error) {
	const op = "tlv.DecodeBatch"
	if len(value) < 8 {
		return 0, nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	count := ber.BE.Uint32(value[0:4])
	size := ber.BE.Uint32(value[4:8])
	if count > 65536 || size > 1024 {
		return 0, nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	off := 8
	out := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+int(size) > len(value) {
			return 0, nil, asdcperr.New(asdcperr.FormatError, op, nil)
		}
		out = append(out, value[off:off+int(size)])
		off += int(size)
	}
	return int(size), out, nil
}

// DecodeULArray decodes a raw sequence of 16-byte ULs (array, not batch:
// no count/size header, runs to end-of-value — spec §9).
func DecodeULArray(value []byte) ([]ul.UL, error) {
	if len(value)%16 != 0 {
		return nil, asdcperr.New(asdcperr.FormatError, "tlv.DecodeULArray", nil)
	}
	out := make([]ul.UL, 0, len(value)/16)
	for off := 0; off < len(value); off += 16 {
		u, _ := ul.ULFromBytes(value[off : off+16])
		out = append(out, u)
	}
	return out, nil
}

func EncodeULArray(us []ul.UL) []byte {
	out := make([]byte, 0, 16*len(us))
	for _, u := range us {
		out = append(out, u.Bytes()...)
	}
	return out
}
