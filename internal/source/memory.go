package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemorySource is an appendable in-memory line source. Until Close is
// called GetLineWaiting blocks for lines that have not been appended yet.
type MemorySource struct {
	mu     sync.RWMutex
	lines  [][]byte
	name   string
	grown  chan struct{}
	closed bool
}

// NewMemorySource creates an open memory source holding lines
func NewMemorySource(name string, lines ...string) *MemorySource {
	m := &MemorySource{
		name:  name,
		grown: make(chan struct{}),
	}
	m.Append(lines...)
	return m
}

// ReadMemorySource loads every line of r into a closed memory source.
// Lines have no length limit; a trailing \r is dropped as for files.
func ReadMemorySource(name string, r io.Reader) (*MemorySource, error) {
	m := NewMemorySource(name)

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSuffix(line, []byte{'\n'})
			m.appendBytes(bytes.TrimRight(line, "\r"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	m.Close()
	return m, nil
}

// Append adds lines to the end of the source
func (m *MemorySource) Append(lines ...string) {
	for _, l := range lines {
		m.appendBytes([]byte(l))
	}
}

func (m *MemorySource) appendBytes(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.lines = append(m.lines, b)
	close(m.grown)
	m.grown = make(chan struct{})
}

// Close stops the source from growing and releases waiters
func (m *MemorySource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.grown)
	}
	return nil
}

// LineCount returns total number of lines
func (m *MemorySource) LineCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}

// GetLine returns line at index
func (m *MemorySource) GetLine(idx int) (*Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if idx < 0 || idx >= len(m.lines) {
		return nil, nil
	}
	return &Line{Content: m.lines[idx], Number: idx}, nil
}

// GetLineWaiting returns line at index, waiting until it is appended,
// the source is closed or ctx is done
func (m *MemorySource) GetLineWaiting(ctx context.Context, idx int) (*Line, error) {
	if idx < 0 {
		return nil, nil
	}
	for {
		m.mu.RLock()
		count := len(m.lines)
		closed := m.closed
		grown := m.grown
		m.mu.RUnlock()

		if idx < count {
			return m.GetLine(idx)
		}
		if closed {
			return nil, nil
		}

		select {
		case <-grown:
		case <-ctx.Done():
			return nil, nil
		}
	}
}

// Path returns the name the source was created with
func (m *MemorySource) Path() string {
	return m.name
}
