// Package pcm slices and reassembles 24-bit PCM essence carried in a WAV
// container into constant-bit-rate edit units (spec §6 "-l <5.1|6.1|7.1|
// 7.1DS|WTF>" channel formats).
package pcm

import (
	"encoding/binary"
	"io"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
)

// ChannelFormat names one of the SMPTE channel-assignment layouts a PCM
// track file can declare.
type ChannelFormat string

const (
	Format51    ChannelFormat = "5.1"
	Format61    ChannelFormat = "6.1"
	Format71    ChannelFormat = "7.1"
	Format71DS  ChannelFormat = "7.1DS"
	FormatWTF   ChannelFormat = "WTF"
)

// ChannelCount returns the channel count a ChannelFormat expects, or 0 if
// unrecognized.
func ChannelCount(f ChannelFormat) int {
	switch f {
	case Format51:
		return 6
	case Format61:
		return 7
	case Format71, Format71DS:
		return 8
	case FormatWTF:
		return 2
	default:
		return 0
	}
}

// Stream is a decoded WAV payload: raw interleaved PCM samples plus the
// format parameters needed to compute edit-unit byte sizes.
type Stream struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	BlockAlign    uint16
	Data          []byte
}

// Decode parses a RIFF/WAVE container down to its fmt and data chunks.
func Decode(r io.Reader) (*Stream, error) {
	const op = "pcm.Decode"
	var riffHdr [12]byte
	if _, err := io.ReadFull(r, riffHdr[:]); err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if string(riffHdr[0:4]) != "RIFF" || string(riffHdr[8:12]) != "WAVE" {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	s := &Stream{}
	var haveFmt, haveData bool
	for {
		var chunkHdr [8]byte
		if _, err := io.ReadFull(r, chunkHdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, asdcperr.New(asdcperr.FormatError, op, err)
		}
		id := string(chunkHdr[0:4])
		size := binary.LittleEndian.Uint32(chunkHdr[4:8])
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, asdcperr.New(asdcperr.FormatError, op, err)
		}
		if size%2 == 1 {
			var pad [1]byte
			io.ReadFull(r, pad[:])
		}
		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, asdcperr.New(asdcperr.FormatError, op, nil)
			}
			s.Channels = binary.LittleEndian.Uint16(body[2:4])
			s.SampleRate = binary.LittleEndian.Uint32(body[4:8])
			s.BlockAlign = binary.LittleEndian.Uint16(body[12:14])
			s.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
		case "data":
			s.Data = body
			haveData = true
		}
	}
	if !haveFmt || !haveData {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	return s, nil
}

// EditUnitByteCount returns the CBR frame size for one edit unit at
// editRateNum/editRateDen, matching the index table's EditUnitByteCount
// fast path (spec §3).
func (s *Stream) EditUnitByteCount(editRateNum, editRateDen int32) uint32 {
	samplesPerUnit := uint64(s.SampleRate) * uint64(editRateDen) / uint64(editRateNum)
	return uint32(samplesPerUnit) * uint32(s.BlockAlign)
}

// Frames splits Data into CBR edit units of size EditUnitByteCount,
// returning asdcperr.FormatError if Data's length is not an exact
// multiple of the frame size.
func (s *Stream) Frames(editRateNum, editRateDen int32) ([][]byte, error) {
	const op = "pcm.Stream.Frames"
	size := s.EditUnitByteCount(editRateNum, editRateDen)
	if size == 0 || len(s.Data)%int(size) != 0 {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	n := len(s.Data) / int(size)
	frames := make([][]byte, n)
	for i := 0; i < n; i++ {
		frames[i] = s.Data[i*int(size) : (i+1)*int(size)]
	}
	return frames, nil
}

// Encode reassembles frames back into a playable RIFF/WAVE file, the
// inverse of Decode (spec §6 unwrap path).
func Encode(w io.Writer, channels, sampleRate uint32, bitsPerSample uint16, data []byte) error {
	const op = "pcm.Encode"
	blockAlign := uint16(channels) * bitsPerSample / 8
	byteRate := sampleRate * uint32(blockAlign)

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+len(data)))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(len(data)))

	if _, err := w.Write(hdr[:]); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	if _, err := w.Write(data); err != nil {
		return asdcperr.New(asdcperr.FormatError, op, err)
	}
	return nil
}
