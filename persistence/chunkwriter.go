package persistence

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spacemeshos/raid/bits"
	"github.com/spacemeshos/raid/shared"
)

type Writer interface {
	Write(chunk bits.Bits) error
	NumChunks() (uint64, error)
	Flush() error
	Close() error
}

// ChunkWriter appends fixed-size chunks to a member drive file.
type ChunkWriter struct {
	file      *os.File
	buf       *bufio.Writer
	chunkSize int
}

// A compile time check to ensure that ChunkWriter fully implements the Writer interface.
var _ Writer = (*ChunkWriter)(nil)

// NewChunkWriter creates filename, discarding any previous content.
func NewChunkWriter(filename string, chunkSize int) (*ChunkWriter, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for chunks writer: %w", err)
	}
	return &ChunkWriter{
		file:      f,
		buf:       bufio.NewWriterSize(f, bufferSize(chunkSize)),
		chunkSize: chunkSize,
	}, nil
}

func (w *ChunkWriter) Write(chunk bits.Bits) error {
	if chunk.Len() != w.chunkSize {
		return fmt.Errorf("invalid chunk size; expected: %d, given: %d", w.chunkSize, chunk.Len())
	}
	_, err := w.buf.Write(chunk.Bytes())
	return err
}

// NumChunks returns the number of chunks written so far, buffered ones included.
func (w *ChunkWriter) NumChunks() (uint64, error) {
	info, err := w.file.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()+int64(w.buf.Buffered())) / uint64(w.chunkSize), nil
}

func (w *ChunkWriter) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush disk writer: %w", err)
	}
	return nil
}

// Name returns the path of the underlying file.
func (w *ChunkWriter) Name() string {
	return w.file.Name()
}

// Close flushes buffered chunks, syncs the file to stable storage and closes it.
func (w *ChunkWriter) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to sync %v: %w", w.file.Name(), err)
	}
	return w.file.Close()
}

// bufferSize returns a buffer size holding a whole number of chunks.
func bufferSize(chunkSize int) int {
	const target = 1 << 16
	if chunkSize >= target {
		return chunkSize
	}
	return target / chunkSize * chunkSize
}
