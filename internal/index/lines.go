package index

import (
	"bytes"

	lrio "github.com/TimelordUK/logrange/internal/io"
)

// chunkSize is the read size used while scanning for newlines
const chunkSize = 64 * 1024

// LineIndex stores the byte offset of every newline in a file.
// Line i spans [start(i), newlines[i]); the bytes after the last newline
// form an unterminated tail line that may still be growing.
type LineIndex struct {
	newlines []int64
	scanned  int64 // first byte not yet scanned for newlines
	file     *lrio.MappedFile
}

// BuildLineIndex scans the file and builds a line offset index
func BuildLineIndex(file *lrio.MappedFile) (*LineIndex, error) {
	// Estimate initial capacity (assume ~100 bytes per line)
	estimatedLines := int(file.Size()/100) + 1
	idx := &LineIndex{
		newlines: make([]int64, 0, estimatedLines),
		file:     file,
	}
	if err := idx.Extend(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Extend indexes any bytes appended since the last scan
func (idx *LineIndex) Extend() error {
	size := idx.file.Size()
	buf := make([]byte, chunkSize)

	pos := idx.scanned
	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := idx.file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return err
		}

		chunk := buf[:n]
		offset := 0
		for {
			i := bytes.IndexByte(chunk[offset:], '\n')
			if i == -1 {
				break
			}
			idx.newlines = append(idx.newlines, pos+int64(offset+i))
			offset += i + 1
		}

		pos += int64(n)
	}
	idx.scanned = pos
	return nil
}

// CompleteCount returns the number of newline-terminated lines
func (idx *LineIndex) CompleteCount() int {
	return len(idx.newlines)
}

// HasTail reports whether unterminated bytes follow the last newline
func (idx *LineIndex) HasTail() bool {
	return idx.tailStart() < idx.file.Size()
}

// LineCount returns the total number of lines, counting an unterminated tail
func (idx *LineIndex) LineCount() int {
	if idx.HasTail() {
		return len(idx.newlines) + 1
	}
	return len(idx.newlines)
}

func (idx *LineIndex) tailStart() int64 {
	if len(idx.newlines) == 0 {
		return 0
	}
	return idx.newlines[len(idx.newlines)-1] + 1
}

// ByteOffset returns the byte offset of a line, -1 when out of range
func (idx *LineIndex) ByteOffset(lineNum int) int64 {
	if lineNum < 0 || lineNum >= idx.LineCount() {
		return -1
	}
	if lineNum == 0 {
		return 0
	}
	return idx.newlines[lineNum-1] + 1
}

// GetLine returns the content of line at given index (0-based).
// Out-of-range lines yield nil content and no error.
func (idx *LineIndex) GetLine(lineNum int) ([]byte, error) {
	start := idx.ByteOffset(lineNum)
	if start < 0 {
		return nil, nil
	}

	end := idx.file.Size()
	if lineNum < len(idx.newlines) {
		end = idx.newlines[lineNum]
	}

	content, err := idx.file.ReadRange(start, end)
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = []byte{}
	}
	return bytes.TrimRight(content, "\r"), nil
}
