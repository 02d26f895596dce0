package export

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// ByteSource serves rendered export bytes. Payloads at or above the threshold
// are spilled to a temp file under TempDir and served from disk; smaller ones
// stay in memory. A threshold of zero or less disables spilling.
type ByteSource struct {
	mu        sync.Mutex
	data      []byte
	size      int64
	threshold int64
	tempDir   string
	path      string
}

// NewByteSource creates a byte source for data.
func NewByteSource(data []byte, threshold int64, tempDir string) *ByteSource {
	return &ByteSource{
		data:      data,
		size:      int64(len(data)),
		threshold: threshold,
		tempDir:   tempDir,
	}
}

// Size returns the payload size in bytes.
func (s *ByteSource) Size() int64 {
	return s.size
}

// ShouldSpill reports whether the payload goes to disk.
func (s *ByteSource) ShouldSpill() bool {
	return s.threshold > 0 && s.size >= s.threshold
}

// Spilled reports whether the payload has been written to disk.
func (s *ByteSource) Spilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path != ""
}

// Path returns the spill file path, if any.
func (s *ByteSource) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Prepare spills the payload when required. It is safe to call repeatedly.
func (s *ByteSource) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepareLocked()
}

func (s *ByteSource) prepareLocked() error {
	if !s.ShouldSpill() || s.path != "" {
		return nil
	}

	tmp, err := os.CreateTemp(s.tempDir, "gridexport-*.tmp")
	if err != nil {
		return NewError(KindDelivery, "spill file create failed", err)
	}
	if _, err := tmp.Write(s.data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return NewError(KindDelivery, "spill file write failed", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return NewError(KindDelivery, "spill file close failed", err)
	}

	s.path = tmp.Name()
	s.data = nil
	return nil
}

// Open returns a reader over the payload.
func (s *ByteSource) Open() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepareLocked(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return io.NopCloser(bytes.NewReader(s.data)), nil
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, NewError(KindDelivery, "spill file open failed", err)
	}
	return file, nil
}

// Close removes the spill file, if any.
func (s *ByteSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	s.path = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ DataSource = (*ByteSource)(nil)
