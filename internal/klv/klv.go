// Package klv implements the Key-Length-Value packet framing component C
// of the codec is built on: recognizing the SMPTE UL preamble, reading and
// writing BER-coded lengths, and positioning a cursor at the value start
// without eagerly consuming it (mirrors the teacher's ebml.Decoder.Next,
// which frames an element and hands back a bounded sub-decoder).
package klv

import (
	"io"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/ber"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

// Preamble is the fixed first 4 octets every SMPTE UL begins with.
var Preamble = [4]byte{0x06, 0x0e, 0x2b, 0x34}

// Packet describes a framed KLV packet positioned over a file: the value
// itself is not read eagerly, matching spec §4.C.
type Packet struct {
	Key             ul.UL
	ValueLen        uint64
	ValueStartOffset int64
	KLLen           uint32
}

// ReadAt frames one KLV packet starting at offset off in r, without reading
// the value. headerHint bytes (32 typical) are pre-fetched to cover K+L.
func ReadAt(r io.ReaderAt, off int64, headerHint int) (Packet, error) {
	const op = "klv.ReadAt"
	if headerHint < 25 {
		headerHint = 32
	}
	buf := make([]byte, headerHint)
	n, err := r.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return Packet{}, asdcperr.New(asdcperr.FormatError, op, err)
	}
	buf = buf[:n]
	if len(buf) < 16 || [4]byte(buf[:4]) != Preamble {
		return Packet{}, asdcperr.New(asdcperr.BadPreamble, op, nil)
	}
	var key ul.UL
	copy(key[:], buf[:16])
	length, consumed, err := ber.DecodeBER(buf[16:])
	if err != nil {
		return Packet{}, err
	}
	if length > ber.MaxValueLength {
		return Packet{}, asdcperr.New(asdcperr.PacketTooLarge, op, nil)
	}
	klLen := 16 + consumed
	return Packet{
		Key:              key,
		ValueLen:         length,
		ValueStartOffset: off + int64(klLen),
		KLLen:            uint32(klLen),
	}, nil
}

// ReadValue reads the full value of p into an owned buffer.
func ReadValue(r io.ReaderAt, p Packet) ([]byte, error) {
	buf := make([]byte, p.ValueLen)
	if p.ValueLen == 0 {
		return buf, nil
	}
	_, err := r.ReadAt(buf, p.ValueStartOffset)
	if err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, "klv.ReadValue", err)
	}
	return buf, nil
}

// ReadFromBytes frames a packet embedded at offset 0 of an in-memory
// buffer (used when iterating an already-loaded header-metadata or index
// byte region). Returns the packet descriptor, its value slice, and the
// remaining unread tail of buf.
func ReadFromBytes(buf []byte) (Packet, []byte, []byte, error) {
	const op = "klv.ReadFromBytes"
	if len(buf) < 17 || [4]byte(buf[:4]) != Preamble {
		return Packet{}, nil, nil, asdcperr.New(asdcperr.BadPreamble, op, nil)
	}
	var key ul.UL
	copy(key[:], buf[:16])
	length, consumed, err := ber.DecodeBER(buf[16:])
	if err != nil {
		return Packet{}, nil, nil, err
	}
	if length > ber.MaxValueLength {
		return Packet{}, nil, nil, asdcperr.New(asdcperr.PacketTooLarge, op, nil)
	}
	klLen := 16 + consumed
	if uint64(len(buf)-klLen) < length {
		return Packet{}, nil, nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	value := buf[klLen : klLen+int(length)]
	rest := buf[klLen+int(length):]
	return Packet{Key: key, ValueLen: length, KLLen: uint32(klLen)}, value, rest, nil
}

// WriteKL encodes key + BER-length using minWidth (0 == default 4,
// escalated automatically when length exceeds 0x00ffffff).
func WriteKL(key ul.UL, length uint64, minWidth int) ([]byte, error) {
	width := ber.MinWidthFor(length, minWidth)
	lenBytes, err := ber.EncodeBER(length, width)
	if err != nil {
		return nil, asdcperr.New(asdcperr.KlvCoding, "klv.WriteKL", err)
	}
	out := make([]byte, 0, 16+len(lenBytes))
	out = append(out, key.Bytes()...)
	out = append(out, lenBytes...)
	return out, nil
}

// WritePacket encodes a full KLV packet (key + BER length + value).
func WritePacket(key ul.UL, value []byte, minWidth int) ([]byte, error) {
	kl, err := WriteKL(key, uint64(len(value)), minWidth)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(kl)+len(value))
	out = append(out, kl...)
	out = append(out, value...)
	return out, nil
}

// Fill returns a KLV-Fill packet whose total encoded size equals size
// (used to pad the header partition to its reserved size on finalize).
func Fill(fillUL ul.UL, size int) ([]byte, error) {
	const op = "klv.Fill"
	if size < 17 {
		return nil, asdcperr.New(asdcperr.KlvCoding, op, nil)
	}
	// Reserve room for key(16) + BER(minimal 4) and grow the value to
	// make the packet exactly `size` bytes; escalate BER width if needed.
	for width := 4; width <= 9; width++ {
		valueLen := size - 16 - width
		if valueLen < 0 {
			continue
		}
		lenBytes, err := ber.EncodeBER(uint64(valueLen), width)
		if err != nil {
			continue
		}
		out := make([]byte, 0, size)
		out = append(out, fillUL.Bytes()...)
		out = append(out, lenBytes...)
		out = append(out, make([]byte, valueLen)...)
		if len(out) == size {
			return out, nil
		}
	}
	return nil, asdcperr.New(asdcperr.KlvCoding, op, nil)
}
