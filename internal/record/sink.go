package record

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Sink persists records in order.
type Sink interface {
	Write(r Record) error
	Close() error
}

// FileSink appends formatted lines to a file, flushing after every write.
type FileSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", path, err)
	}
	return &FileSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the file path.
func (s *FileSink) Path() string {
	return s.path
}

// Write appends one line and flushes it.
func (s *FileSink) Write(r Record) error {
	if _, err := s.w.WriteString(r.Format() + "\n"); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	return errors.Join(flushErr, closeErr)
}

// MemorySink keeps records in memory for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record

	// WriteError, if set, will be returned by Write.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write stores r.
func (m *MemorySink) Write(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	m.records = append(m.records, r)
	return nil
}

// Close marks the sink closed.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Records returns a copy of the written records.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Tee writes to a primary sink and best-effort mirrors. Only primary failures
// are returned; mirror failures are logged.
type Tee struct {
	primary Sink
	mirrors []Sink
	logger  *zap.Logger
}

// NewTee creates a Tee. Nil mirrors are skipped.
func NewTee(primary Sink, logger *zap.Logger, mirrors ...Sink) *Tee {
	t := &Tee{primary: primary, logger: logger}
	for _, m := range mirrors {
		if m != nil {
			t.mirrors = append(t.mirrors, m)
		}
	}
	return t
}

// Write writes r to the primary, then to every mirror.
func (t *Tee) Write(r Record) error {
	if err := t.primary.Write(r); err != nil {
		return err
	}
	for _, m := range t.mirrors {
		if err := m.Write(r); err != nil {
			t.logger.Warn("mirror write failed", zap.Error(err))
		}
	}
	return nil
}

// Close closes mirrors then the primary and returns the primary's error.
func (t *Tee) Close() error {
	for _, m := range t.mirrors {
		if err := m.Close(); err != nil {
			t.logger.Warn("mirror close failed", zap.Error(err))
		}
	}
	return t.primary.Close()
}
