package iobackend

import (
	"context"
	"os"
)

// FileBackend wraps a local *os.File as both ReaderAt and WriterAt. This
// is the backend every TrackFileReader/Writer uses by default, matching
// the teacher's direct *os.File usage in ebml.NewDecoder.
type FileBackend struct {
	f *os.File
}

func OpenFileForRead(path string) (*FileBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileBackend{f: f}, nil
}

func OpenFileForWrite(path string) (*FileBackend, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &FileBackend{f: f}, nil
}

func (b *FileBackend) ReadAt(p []byte, off int64) (int, error)  { return b.f.ReadAt(p, off) }
func (b *FileBackend) WriteAt(p []byte, off int64) (int, error) { return b.f.WriteAt(p, off) }
func (b *FileBackend) Close() error                              { return b.f.Close() }
func (b *FileBackend) Truncate(size int64) error                 { return b.f.Truncate(size) }

func (b *FileBackend) Size(ctx context.Context) (int64, error) {
	info, err := b.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
