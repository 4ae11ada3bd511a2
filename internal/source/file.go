package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/TimelordUK/logrange/internal/index"
	lrio "github.com/TimelordUK/logrange/internal/io"
)

// FileOptions tunes a FileSource
type FileOptions struct {
	// Follow hides the unterminated last line and lets GetLineWaiting block
	// until the line is appended.
	Follow bool

	// WaitTimeout bounds GetLineWaiting; zero waits until ctx is done.
	WaitTimeout time.Duration
}

// FileSource provides lines from a single, possibly growing, file
type FileSource struct {
	mu        sync.RWMutex
	file      *lrio.MappedFile
	lineIndex *index.LineIndex
	path      string
	opts      FileOptions

	// grown is closed and replaced whenever lines are added or the source stops
	grown     chan struct{}
	closed    bool
	truncated bool
}

// NewFileSourceWithOptions opens a file source with the given options
func NewFileSourceWithOptions(path string, opts FileOptions) (*FileSource, error) {
	file, err := lrio.OpenMapped(path)
	if err != nil {
		return nil, err
	}

	lineIndex, err := index.BuildLineIndex(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("index %s: %w", path, err)
	}

	return &FileSource{
		file:      file,
		lineIndex: lineIndex,
		path:      path,
		opts:      opts,
		grown:     make(chan struct{}),
	}, nil
}

// LineCount returns total number of lines
func (s *FileSource) LineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lineCountLocked()
}

func (s *FileSource) lineCountLocked() int {
	if s.opts.Follow && !s.truncated && !s.closed {
		return s.lineIndex.CompleteCount()
	}
	return s.lineIndex.LineCount()
}

// GetLine returns line at index
func (s *FileSource) GetLine(idx int) (*Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, nil
	}
	if idx < 0 || idx >= s.lineCountLocked() {
		return nil, nil
	}

	content, err := s.lineIndex.GetLine(idx)
	if err != nil {
		return nil, fmt.Errorf("read line %d of %s: %w", idx, s.path, err)
	}
	if content == nil {
		return nil, nil
	}

	return &Line{
		Content: content,
		Level:   LevelUnknown,
		Number:  idx,
	}, nil
}

// GetLineWaiting returns line at index, waiting for it while following
func (s *FileSource) GetLineWaiting(ctx context.Context, idx int) (*Line, error) {
	if idx < 0 {
		return nil, nil
	}

	var timeout <-chan time.Time
	if s.opts.WaitTimeout > 0 {
		timer := time.NewTimer(s.opts.WaitTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		s.mu.RLock()
		count := s.lineCountLocked()
		waiting := s.opts.Follow && !s.closed && !s.truncated
		grown := s.grown
		s.mu.RUnlock()

		if idx < count {
			return s.GetLine(idx)
		}
		if !waiting {
			return nil, nil
		}

		select {
		case <-grown:
		case <-timeout:
			return nil, nil
		case <-ctx.Done():
			return nil, nil
		}
	}
}

// Refresh checks if file has grown and indexes new lines.
// It returns the number of lines that became present.
func (s *FileSource) Refresh() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.truncated {
		return 0, ErrTruncated
	}

	oldLineCount := s.lineCountLocked()

	changed, err := s.file.Refresh()
	if err != nil {
		if errors.Is(err, lrio.ErrShrunk) {
			s.truncated = true
			s.broadcastLocked()
			return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return 0, err
	}

	if !changed {
		return 0, nil
	}

	if err := s.lineIndex.Extend(); err != nil {
		return 0, fmt.Errorf("index %s: %w", s.path, err)
	}

	newLines := s.lineCountLocked() - oldLineCount
	if newLines > 0 {
		s.broadcastLocked()
	}
	return newLines, nil
}

func (s *FileSource) broadcastLocked() {
	close(s.grown)
	s.grown = make(chan struct{})
}

// Close closes the file source and releases waiters
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.broadcastLocked()
	return s.file.Close()
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Following reports whether the source still waits for appended lines
func (s *FileSource) Following() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.Follow && !s.closed && !s.truncated
}
