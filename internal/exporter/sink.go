package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink opens named write targets for an [Exporter].
type Sink interface {
	// Open creates or truncates name and returns a writer. Close must report any flush failure.
	Open(ctx context.Context, name string) (io.WriteCloser, error)
	// Locate returns the identifier reported to callers for name.
	Locate(name string) string
}

// DirSink writes files into a local directory, creating it on first use.
type DirSink struct {
	Dir string
}

// NewDirSink returns a [DirSink]; an empty dir means the working directory.
func NewDirSink(dir string) *DirSink {
	if dir == "" {
		dir = "."
	}
	return &DirSink{Dir: dir}
}

func (s *DirSink) Locate(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *DirSink) Open(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(s.Locate(name))
	if err != nil {
		return nil, err
	}
	return &syncedFile{File: f}, nil
}

// syncedFile fsyncs before closing so Close only succeeds once the bytes are on disk.
type syncedFile struct {
	*os.File
}

func (f *syncedFile) Close() error {
	if err := f.File.Sync(); err != nil {
		f.File.Close()
		return err
	}
	return f.File.Close()
}
