package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/jcrsync/pkg/storage"
)

// BinaryComparator compares files byte-by-byte after a size check
type BinaryComparator struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare compares path in both trees. Both files must exist.
func (c *BinaryComparator) Compare(ctx context.Context, left, right storage.Tree, path string) (*Comparison, error) {
	leftInfo, err := left.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	rightInfo, err := right.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	// Quick check: if sizes differ, files are different
	if leftInfo.Size != rightInfo.Size {
		return &Comparison{
			Path:   path,
			Result: Different,
			Reason: fmt.Sprintf("size mismatch: %d != %d", leftInfo.Size, rightInfo.Size),
		}, nil
	}

	leftReader, err := left.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer leftReader.Close()

	rightReader, err := right.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rightReader.Close()

	leftBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(leftBufPtr)
	leftBuf := *leftBufPtr

	rightBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(rightBufPtr)
	rightBuf := *rightBufPtr

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		leftN, leftErr := io.ReadFull(leftReader, leftBuf)
		rightN, rightErr := io.ReadFull(rightReader, rightBuf)

		if leftErr != nil && !isEOF(leftErr) {
			return nil, fmt.Errorf("failed to read %s: %w", path, leftErr)
		}
		if rightErr != nil && !isEOF(rightErr) {
			return nil, fmt.Errorf("failed to read %s: %w", path, rightErr)
		}

		if leftN != rightN || !bytes.Equal(leftBuf[:leftN], rightBuf[:rightN]) {
			return &Comparison{
				Path:   path,
				Result: Different,
				Reason: fmt.Sprintf("content differs at byte offset %d", offset+firstDifference(leftBuf[:leftN], rightBuf[:rightN])),
			}, nil
		}
		offset += int64(leftN)

		if isEOF(leftErr) || isEOF(rightErr) {
			break
		}
	}

	return &Comparison{
		Path:   path,
		Result: Same,
		Reason: fmt.Sprintf("content matches (%d bytes)", offset),
	}, nil
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func firstDifference(a, b []byte) int64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int64(i)
		}
	}
	return int64(n)
}
