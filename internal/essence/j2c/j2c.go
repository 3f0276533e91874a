// Package j2c slices a directory or concatenated stream of raw J2C
// (JPEG 2000 codestream) frames for a track file writer. Each frame is a
// complete codestream delimited by the SOC (0xFF4F) and EOC (0xFFD9)
// markers; a directory source supplies one file per frame directly.
package j2c

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cinecert/asdcplib-sub001/internal/asdcperr"
)

const (
	markerSOC = 0xff4f
	markerEOC = 0xffd9
)

// Directory returns every *.j2c/*.jp2/*.j2k file in dir in lexical order,
// one frame per file (spec §6 "slices a directory ... of raw J2C
// codestreams into frames").
func Directory(dir string) ([]string, error) {
	const op = "j2c.Directory"
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".j2c", ".jp2", ".j2k":
			names = append(names, path)
		}
		return nil
	})
	if err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFrame loads one codestream file verbatim.
func ReadFrame(path string) ([]byte, error) {
	const op = "j2c.ReadFrame"
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, asdcperr.New(asdcperr.FormatError, op, err)
	}
	if err := Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate reports whether b begins with SOC and ends with EOC, the
// minimal well-formedness check for a raw codestream (no JP2 box wrapper).
func Validate(b []byte) error {
	const op = "j2c.Validate"
	if len(b) < 4 {
		return asdcperr.New(asdcperr.FormatError, op, nil)
	}
	if uint16(b[0])<<8|uint16(b[1]) != markerSOC {
		return asdcperr.New(asdcperr.FormatError, op, nil)
	}
	if uint16(b[len(b)-2])<<8|uint16(b[len(b)-1]) != markerEOC {
		return asdcperr.New(asdcperr.FormatError, op, nil)
	}
	return nil
}

// Scanner slices consecutive codestreams out of a single concatenated
// stream, used when frames are muxed together rather than stored one
// file per frame.
type Scanner struct {
	r   io.Reader
	buf []byte
	pos int
	eof bool
}

func NewScanner(r io.Reader) *Scanner { return &Scanner{r: r} }

// Next returns the next codestream, or io.EOF once exhausted.
func (s *Scanner) Next() ([]byte, error) {
	const op = "j2c.Scanner.Next"
	if err := s.fill(); err != nil {
		return nil, err
	}
	if len(s.buf)-s.pos < 4 {
		return nil, io.EOF
	}
	start := s.pos
	if uint16(s.buf[start])<<8|uint16(s.buf[start+1]) != markerSOC {
		return nil, asdcperr.New(asdcperr.FormatError, op, nil)
	}
	i := start + 2
	for {
		for i+1 >= len(s.buf) && !s.eof {
			if err := s.fill(); err != nil {
				return nil, err
			}
		}
		if i+1 >= len(s.buf) {
			return nil, asdcperr.New(asdcperr.FormatError, op, io.ErrUnexpectedEOF)
		}
		if uint16(s.buf[i])<<8|uint16(s.buf[i+1]) == markerEOC {
			end := i + 2
			s.pos = end
			return s.buf[start:end], nil
		}
		i++
	}
}

func (s *Scanner) fill() error {
	if s.eof {
		return nil
	}
	chunk := make([]byte, 1<<16)
	n, err := s.r.Read(chunk)
	if n > 0 {
		s.buf = append(s.buf, chunk[:n]...)
	}
	if err == io.EOF {
		s.eof = true
		return nil
	}
	if err != nil {
		return asdcperr.New(asdcperr.FormatError, "j2c.Scanner.fill", err)
	}
	return nil
}
