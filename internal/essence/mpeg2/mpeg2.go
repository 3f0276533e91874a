// Package mpeg2 slices an MPEG-2 elementary stream into frame-sized
// essence units for a track file writer, classifying each frame's
// picture coding type and GOP boundaries so the index table carries
// picture-type and key-frame flags (spec §4.I write_frame, §3
// IndexEntry.flags). Temporal offsets are not derived.
package mpeg2

import (
	"io"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
	"github.com/cinecert/asdcplib-sub001/internal/indextable"
)

// start codes relevant to frame slicing.
const (
	pictureStartCode = 0x00
	gopStartCode     = 0xb8
)

// PictureType is the MPEG-2 picture coding type carried in bits 3-5 of
// the second picture-header byte after the picture start code.
type PictureType int

const (
	PictureI PictureType = 1
	PictureP PictureType = 2
	PictureB PictureType = 3
)

// Frame is one access unit sliced out of the elementary stream.
type Frame struct {
	Data      []byte
	Type      PictureType
	GOPStart  bool
	ClosedGOP bool
}

// pictureTypeFlags maps a picture coding type to its spec §4.G flag byte:
// I = 0x00, P = 0x22, B = 0x33.
var pictureTypeFlags = map[PictureType]uint8{
	PictureI: 0x00,
	PictureP: 0x22,
	PictureB: 0x33,
}

// Flags packs the frame's picture-type and GOP-start markers into the
// single byte an IndexEntry carries (spec §3).
func (f Frame) Flags() uint8 {
	flags := pictureTypeFlags[f.Type]
	if f.GOPStart {
		flags |= indextable.FlagGOPStart
	}
	if f.ClosedGOP {
		flags |= 0x80
	}
	return flags
}

// startCode is one 00 00 01 xx marker found in the stream, together with
// the byte offset it starts at.
type startCode struct {
	offset int
	code   byte
}

// Scan reads the entire elementary stream and slices it into access
// units, one per picture start code, each carrying any GOP/sequence
// headers that precede it.
func Scan(r io.Reader) ([]Frame, error) {
	const op = "mpeg2.Scan"
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}
	codes := findStartCodes(buf)

	var frames []Frame
	gopPending, closedPending := false, false

	for i, sc := range codes {
		switch sc.code {
		case gopStartCode:
			gopPending = true
			if sc.offset+4 < len(buf) {
				closedPending = buf[sc.offset+4]&0x40 != 0
			}
		case pictureStartCode:
			end := len(buf)
			if i+1 < len(codes) {
				end = nextPictureOffset(codes, i+1, len(buf))
			}
			start := boundaryStart(codes, i)
			var ptype PictureType
			hdrOff := sc.offset + 4
			if hdrOff+1 < len(buf) {
				ptype = PictureType((buf[hdrOff+1] >> 3) & 0x07)
			}
			frames = append(frames, Frame{
				Data:      buf[start:end],
				Type:      ptype,
				GOPStart:  gopPending,
				ClosedGOP: closedPending,
			})
			gopPending, closedPending = false, false
		}
	}
	return frames, nil
}

// boundaryStart walks backward from codes[i] (a picture start code) to
// include any non-picture headers (sequence/GOP) immediately preceding it
// that belong to the same access unit.
func boundaryStart(codes []startCode, i int) int {
	j := i
	for j > 0 && codes[j-1].code != pictureStartCode {
		j--
	}
	return codes[j].offset
}

// nextPictureOffset returns the byte offset where the access unit
// starting at codes[from] ends: either the start of the next access
// unit's leading non-picture headers, or the end of the buffer.
func nextPictureOffset(codes []startCode, from int, bufLen int) int {
	for k := from; k < len(codes); k++ {
		if codes[k].code == pictureStartCode {
			return boundaryStart(codes, k)
		}
	}
	return bufLen
}

func findStartCodes(buf []byte) []startCode {
	var codes []startCode
	for i := 0; i+3 < len(buf); i++ {
		if buf[i] == 0 && buf[i+1] == 0 && buf[i+2] == 1 {
			codes = append(codes, startCode{offset: i, code: buf[i+3]})
		}
	}
	return codes
}
