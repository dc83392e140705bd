// Package stripe defines the capabilities of a stripe layout and implements
// the single-parity layout (RAID3), where the last member holds the XOR of all
// data members.
package stripe

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/raid/bits"
)

// ErrContract is wrapped by every error caused by a caller violating the
// contract of a stripe (wrong lengths, out of range indices). Such errors
// indicate a defect in the caller, not a failed device.
var ErrContract = errors.New("stripe contract violation")

var (
	ErrGeometry    = fmt.Errorf("%w: invalid geometry", ErrContract)
	ErrChunkCount  = fmt.Errorf("%w: chunk count mismatch", ErrContract)
	ErrChunkSize   = fmt.Errorf("%w: chunk size mismatch", ErrContract)
	ErrMemberIndex = fmt.Errorf("%w: member index out of range", ErrContract)
)

// Stripe holds a fixed set of equally sized members, of which DataChunks are
// data and the rest are redundancy derived from the data.
type Stripe interface {
	// DataChunks returns the number of data members.
	DataChunks() int
	// ChunkSize returns the size of every member in bytes.
	ChunkSize() int
	// Write stores data as the data members and recomputes redundancy.
	// len(data) must equal DataChunks.
	Write(data []bits.Bits) error
	// Read copies the data members into out. len(out) must equal DataChunks.
	Read(out []bits.Bits) error
	// Restorer returns the stripe as a Restorer if the layout supports
	// reconstruction of lost members.
	Restorer() (Restorer, bool)
}

// Restorer regenerates a single member from the remaining ones.
type Restorer interface {
	// Restore overwrites member i with the value derived from all other
	// members. The current content of member i is ignored.
	Restore(i int) error
}
