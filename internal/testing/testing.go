// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MemorySink is an in-memory export sink. Files become visible in Files only after Close.
type MemorySink struct {
	Prefix string

	mu    sync.Mutex
	Files map[string]string
}

func NewMemorySink(prefix string) *MemorySink {
	return &MemorySink{Prefix: prefix, Files: map[string]string{}}
}

func (m *MemorySink) Locate(name string) string {
	return path.Join(m.Prefix, name)
}

func (m *MemorySink) Open(ctx context.Context, name string) (io.WriteCloser, error) {
	return &memFile{sink: m, name: m.Locate(name)}, nil
}

// File returns the committed content for a located name.
func (m *MemorySink) File(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.Files[name]
	return content, ok
}

type memFile struct {
	sink *MemorySink
	name string
	buf  bytes.Buffer
}

func (f *memFile) Write(p []byte) (int, error) { return f.buf.Write(p) }

func (f *memFile) Close() error {
	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	f.sink.Files[f.name] = f.buf.String()
	return nil
}

// FailingSink fails one stage of the write for names listed in Fail (all names when Fail is empty).
//
// Names not in Fail are written to Inner, which must be set whenever Fail is.
type FailingSink struct {
	OpenErr    error // returned from Open
	WriteLimit int   // writes the file accepts before failing
	CloseErr   error // returned from Close
	Fail       map[string]bool
	Inner      *MemorySink
}

func (s *FailingSink) Locate(name string) string {
	if s.Inner != nil {
		return s.Inner.Locate(name)
	}
	return name
}

func (s *FailingSink) Open(ctx context.Context, name string) (io.WriteCloser, error) {
	if len(s.Fail) > 0 && !s.Fail[name] {
		return s.Inner.Open(ctx, name)
	}
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	lw := NewLimitedWriter(s.WriteLimit, 0, io.Discard)
	return &failingFile{w: &lw, closeErr: s.CloseErr}, nil
}

type failingFile struct {
	w        io.Writer
	closeErr error
}

func (f *failingFile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *failingFile) Close() error                { return f.closeErr }

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
