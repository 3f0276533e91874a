// Package iobackend provides the random-access byte-range storage
// backends a TrackFileReader can open a track file from: the local
// filesystem, or an object-storage bucket addressed by byte range.
// Component A (spec §4.A) is specified against "a random-access file and
// bounded memory slices"; this package is the concrete set of things that
// can satisfy that random-access file role in a deployed pipeline.
package iobackend

import (
	"context"
	"io"
)

// ReaderAt is the minimal read-side contract TrackFileReader needs.
type ReaderAt interface {
	io.ReaderAt
	Size(ctx context.Context) (int64, error)
}

// WriterAt is the minimal write-side contract TrackFileWriter needs: MXF
// track files are written with in-place rewrites (the header partition is
// re-written at offset 0 on finalize), so the backend must support
// WriteAt, not just sequential append.
type WriterAt interface {
	io.WriterAt
	io.Closer
	Truncate(size int64) error
}
