// Package ber implements the BER length codec and the little/big-endian
// scalar read/write helpers component A of the codec is built on. All MXF
// structural integers are big-endian (spec §6); the little-endian helpers
// exist for WAV and ACES/JPEG-XS sub-headers consumed by essence parsers.
package ber

import (
	"encoding/binary"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
)

// MaxValueLength is the largest KLV value this codec will accept (64 MiB).
const MaxValueLength = 64 << 20

// DecodeBER parses a BER length at the start of buf.
// Returns the decoded value and the number of bytes consumed.
func DecodeBER(buf []byte) (uint64, int, error) {
	const op = "ber.DecodeBER"
	if len(buf) < 1 {
		return 0, 0, asdcperr.New(asdcperr.MalformedBER, op, nil)
	}
	first := buf[0]
	if first&0x80 == 0 {
		// Open question resolved per spec §9: require the high bit
		// strictly, everywhere (the "strict reader" reading of asdcplib's
		// two divergent read_test_BER call sites).
		return 0, 0, asdcperr.New(asdcperr.MalformedBER, op, nil)
	}
	width := int(first & 0x7f)
	if width == 0 || width > 8 {
		return 0, 0, asdcperr.New(asdcperr.MalformedBER, op, nil)
	}
	total := 1 + width
	if len(buf) < total {
		return 0, 0, asdcperr.New(asdcperr.MalformedBER, op, nil)
	}
	var v uint64
	for i := 0; i < width; i++ {
		v = (v << 8) | uint64(buf[1+i])
	}
	return v, total, nil
}

// EncodeBER encodes value into targetWidth octets in total (the leading BER
// preamble octet included), or auto-selects the smallest of {4, 8, 9} that
// fits when targetWidth == 0.
func EncodeBER(value uint64, targetWidth int) ([]byte, error) {
	const op = "ber.EncodeBER"
	if targetWidth == 0 {
		switch {
		case value <= 0xffffff:
			targetWidth = 4
		case value <= 1<<56-1:
			targetWidth = 8
		default:
			targetWidth = 9
		}
	}
	if targetWidth > 9 {
		return nil, asdcperr.New(asdcperr.MalformedBER, op, nil)
	}
	bodyWidth := targetWidth - 1
	if bodyWidth <= 0 {
		return nil, asdcperr.New(asdcperr.MalformedBER, op, nil)
	}
	if bodyWidth < 8 {
		max := uint64(1)<<(uint(bodyWidth)*8) - 1
		if value > max {
			return nil, asdcperr.New(asdcperr.MalformedBER, op, nil)
		}
	}
	out := make([]byte, targetWidth)
	out[0] = 0x80 | byte(bodyWidth)
	for i := bodyWidth - 1; i >= 0; i-- {
		out[1+i] = byte(value)
		value >>= 8
	}
	return out, nil
}

// MinWidthFor returns the smallest BER width (including preamble octet)
// that can hold length, escalating past the codec's default minimum of 4
// once the length exceeds the 3-octet range, per component C.
func MinWidthFor(length uint64, minWidth int) int {
	if minWidth == 0 {
		minWidth = 4
	}
	if length > 0x00ffffff && minWidth < 5 {
		minWidth = 5
	}
	bodyWidth := minWidth - 1
	for bodyWidth < 8 && length > (uint64(1)<<(uint(bodyWidth)*8)-1) {
		bodyWidth++
	}
	return bodyWidth + 1
}

// BE provides big-endian scalar encode/decode helpers over byte slices.
var BE = binary.BigEndian

// LE provides little-endian scalar encode/decode helpers, used by WAV and
// ACES/JPEG-XS sub-headers (spec §6).
var LE = binary.LittleEndian
