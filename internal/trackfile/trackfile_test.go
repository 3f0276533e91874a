package trackfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/cinecert/asdcplib-sub001/internal/iobackend"
	"github.com/cinecert/asdcplib-sub001/internal/ul"
)

func writeAndRead(t *testing.T, threePart, encrypted bool) (*Reader, [][]byte) {
	t.Helper()
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "test.mxf")

	wb, err := iobackend.OpenFileForWrite(path)
	is.NoErr(err)

	info := DefaultWriterInfo()
	if encrypted {
		info.EncryptEssence = true
		info.ContextID = ul.NewUUID()
		info.CryptographicKeyID = ul.NewUUID()
	}

	var opts []WriterOption
	if threePart {
		opts = append(opts, WithThreePartLayout())
	}
	w := NewWriter(wb, info, EssencePCM, OP1a, 24, 1, opts...)
	is.NoErr(w.SetSourceStream())

	frames := [][]byte{
		[]byte("frame number zero, the first one written"),
		[]byte("frame number one"),
		[]byte("frame number two, slightly longer than the others"),
	}
	for _, f := range frames {
		is.NoErr(w.WriteFrame(f))
	}
	is.NoErr(w.Finalize(context.Background()))

	rb, err := iobackend.OpenFileForRead(path)
	is.NoErr(err)
	r, err := Open(context.Background(), rb)
	is.NoErr(err)
	return r, frames
}

func TestWriterReaderRoundTrip2Part(t *testing.T) {
	is := is.New(t)
	r, frames := writeAndRead(t, false, false)

	is.Equal(r.FrameCount(), int64(len(frames)))
	for i, want := range frames {
		got, err := r.ReadFrame(int64(i))
		is.NoErr(err)
		is.Equal(string(got), string(want))
	}
}

func TestWriterReaderRoundTrip3Part(t *testing.T) {
	is := is.New(t)
	r, frames := writeAndRead(t, true, false)

	is.Equal(r.FrameCount(), int64(len(frames)))
	for i, want := range frames {
		got, err := r.ReadFrame(int64(i))
		is.NoErr(err)
		is.Equal(string(got), string(want))
	}
}

func TestWriterReaderRoundTripEncrypted(t *testing.T) {
	is := is.New(t)
	r, frames := writeAndRead(t, false, true)

	for i, want := range frames {
		got, err := r.ReadFrame(int64(i))
		is.NoErr(err)
		is.Equal(string(got), string(want))
	}
}

func TestReaderKindMatchesWriterEssence(t *testing.T) {
	is := is.New(t)
	r, _ := writeAndRead(t, false, false)
	is.Equal(r.Kind(), EssencePCM)
}

func TestWriteFrameBeforeReadyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unready.mxf")
	wb, err := iobackend.OpenFileForWrite(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(wb, DefaultWriterInfo(), EssencePCM, OP1a, 24, 1)
	if err := w.WriteFrame([]byte("too early")); err == nil {
		t.Fatal("expected an error writing a frame before SetSourceStream")
	}
}

func TestFinalizeFromReadyProducesEmptyTrack(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "empty.mxf")
	wb, err := iobackend.OpenFileForWrite(path)
	is.NoErr(err)

	w := NewWriter(wb, DefaultWriterInfo(), EssencePCM, OP1a, 24, 1)
	is.NoErr(w.SetSourceStream())
	is.NoErr(w.Finalize(context.Background()))

	rb, err := iobackend.OpenFileForRead(path)
	is.NoErr(err)
	r, err := Open(context.Background(), rb)
	is.NoErr(err)
	is.Equal(r.FrameCount(), int64(0))
}
