package persistence

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/raid/bits"
)

var ErrDriveSizeMismatch = errors.New("drives' number of chunks mismatch")

// GroupReader reads a slice of member drives in lockstep, one chunk from every
// drive per stripe. A nil reader marks a drive that is not read; its slot is
// zero filled.
type GroupReader struct {
	readers   []Reader
	numChunks uint64
}

// Group groups a slice of Reader into one stripe reader. All non-nil readers
// must hold the same number of chunks.
func Group(readers []Reader) (*GroupReader, error) {
	if len(readers) < 2 {
		return nil, errors.New("number of readers must be at least 2")
	}

	var numChunks uint64
	present := 0
	for i, r := range readers {
		if r == nil {
			continue
		}
		n, err := r.NumChunks()
		if err != nil {
			return nil, err
		}
		if present > 0 && n != numChunks {
			return nil, fmt.Errorf("%w: drive %d has %d chunks, expected: %d", ErrDriveSizeMismatch, i, n, numChunks)
		}
		numChunks = n
		present++
	}
	if present == 0 {
		return nil, errors.New("at least one non-nil reader is required")
	}

	return &GroupReader{
		readers:   readers,
		numChunks: numChunks,
	}, nil
}

// Next reads the next stripe into dst, one chunk per drive. It returns io.EOF
// after the last stripe.
func (g *GroupReader) Next(dst []bits.Bits) error {
	if len(dst) != len(g.readers) {
		return fmt.Errorf("invalid destination length; expected: %d, given: %d", len(g.readers), len(dst))
	}

	read := false
	for i, r := range g.readers {
		if r == nil {
			clear(dst[i].Bytes())
			continue
		}
		if err := r.ReadNext(dst[i]); err != nil {
			if err == io.EOF && read {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		read = true
	}
	return nil
}

// NumChunks returns the number of stripes held by the group.
func (g *GroupReader) NumChunks() uint64 {
	return g.numChunks
}

func (g *GroupReader) Close() error {
	var errs []error
	for _, r := range g.readers {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GroupWriter writes a stripe to a slice of member drives, one chunk per drive.
type GroupWriter struct {
	writers []Writer
}

func NewGroupWriter(writers []Writer) (*GroupWriter, error) {
	if len(writers) < 2 {
		return nil, errors.New("number of writers must be at least 2")
	}
	for i, w := range writers {
		if w == nil {
			return nil, fmt.Errorf("writer %d is nil", i)
		}
	}
	return &GroupWriter{writers: writers}, nil
}

// Write appends chunks[i] to drive i.
func (g *GroupWriter) Write(chunks []bits.Bits) error {
	if len(chunks) != len(g.writers) {
		return fmt.Errorf("invalid number of chunks; expected: %d, given: %d", len(g.writers), len(chunks))
	}
	for i, w := range g.writers {
		if err := w.Write(chunks[i]); err != nil {
			return fmt.Errorf("drive %d: %w", i, err)
		}
	}
	return nil
}

// Flush flushes all drives concurrently.
func (g *GroupWriter) Flush() error {
	var eg errgroup.Group
	for i, w := range g.writers {
		eg.Go(func() error {
			if err := w.Flush(); err != nil {
				return fmt.Errorf("drive %d: %w", i, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Close closes all drives concurrently. Every drive is closed even if some fail.
func (g *GroupWriter) Close() error {
	var eg errgroup.Group
	for i, w := range g.writers {
		eg.Go(func() error {
			if err := w.Close(); err != nil {
				return fmt.Errorf("drive %d: %w", i, err)
			}
			return nil
		})
	}
	return eg.Wait()
}
