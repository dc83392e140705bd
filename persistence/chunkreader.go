package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spacemeshos/raid/bits"
	"github.com/spacemeshos/raid/shared"
)

var ErrPartialChunk = errors.New("drive holds a partial chunk")

type Reader interface {
	ReadNext(dst bits.Bits) error
	NumChunks() (uint64, error)
	Close() error
}

// ChunkReader reads fixed-size chunks from a member drive file sequentially.
type ChunkReader struct {
	file      *os.File
	buf       *bufio.Reader
	chunkSize int
}

// A compile time check to ensure that ChunkReader fully implements the Reader interface.
var _ Reader = (*ChunkReader)(nil)

func NewChunkReader(name string, chunkSize int) (*ChunkReader, error) {
	file, err := os.OpenFile(name, os.O_RDONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for chunks reader: %w", err)
	}

	return &ChunkReader{
		file:      file,
		buf:       bufio.NewReaderSize(file, bufferSize(chunkSize)),
		chunkSize: chunkSize,
	}, nil
}

// ReadNext fills dst with the next chunk. It returns io.EOF once all chunks
// have been read, and io.ErrUnexpectedEOF if the drive ends mid-chunk.
func (r *ChunkReader) ReadNext(dst bits.Bits) error {
	if dst.Len() != r.chunkSize {
		return fmt.Errorf("invalid chunk size; expected: %d, given: %d", r.chunkSize, dst.Len())
	}
	_, err := io.ReadFull(r.buf, dst.Bytes())
	return err
}

func (r *ChunkReader) NumChunks() (uint64, error) {
	info, err := r.file.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size()%int64(r.chunkSize) != 0 {
		return 0, fmt.Errorf("%w: %v has %d bytes, chunk size: %d", ErrPartialChunk, r.file.Name(), info.Size(), r.chunkSize)
	}
	return uint64(info.Size()) / uint64(r.chunkSize), nil
}

func (r *ChunkReader) Close() error {
	r.buf = nil
	return r.file.Close()
}
