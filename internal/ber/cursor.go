package ber

import "github.com/cinecert/asdcplib-sub001/internal/asdcperr"

// Cursor is a bounded, random-access reader/writer over an in-memory byte
// slice, mirroring the teacher's bufio-backed Decoder but for the
// already-loaded value regions component D and E operate on (header
// metadata, index segments).
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential reads starting at offset 0.
func NewCursor(buf []byte) *Cursor { return &Cursor{buf: buf} }

func (c *Cursor) Len() int       { return len(c.buf) - c.pos }
func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Bytes() []byte  { return c.buf }
func (c *Cursor) Remaining() []byte { return c.buf[c.pos:] }

// ReadN returns the next n bytes and advances the cursor.
func (c *Cursor) ReadN(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, asdcperr.New(asdcperr.FormatError, "ber.Cursor.ReadN", nil)
	}
	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *Cursor) ReadU8() (byte, error) {
	b, err := c.ReadN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadU16BE() (uint16, error) {
	b, err := c.ReadN(2)
	if err != nil {
		return 0, err
	}
	return BE.Uint16(b), nil
}

func (c *Cursor) ReadU32BE() (uint32, error) {
	b, err := c.ReadN(4)
	if err != nil {
		return 0, err
	}
	return BE.Uint32(b), nil
}

func (c *Cursor) ReadU64BE() (uint64, error) {
	b, err := c.ReadN(8)
	if err != nil {
		return 0, err
	}
	return BE.Uint64(b), nil
}

// ReadBER decodes a BER length at the cursor and advances past it.
func (c *Cursor) ReadBER() (uint64, error) {
	v, n, err := DecodeBER(c.Remaining())
	if err != nil {
		return 0, err
	}
	c.pos += n
	return v, nil
}

// Writer accumulates bytes for a value region; used by component C/D/H
// writers that must patch a length after the fact.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *Writer) WriteU8(v byte)      { w.buf = append(w.buf, v) }

func (w *Writer) WriteU16BE(v uint16) {
	var b [2]byte
	BE.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU32BE(v uint32) {
	var b [4]byte
	BE.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU64BE(v uint64) {
	var b [8]byte
	BE.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PatchU16BE rewrites a previously written u16 placeholder at byte offset at.
func (w *Writer) PatchU16BE(at int, v uint16) {
	BE.PutUint16(w.buf[at:at+2], v)
}
