package stripe

import (
	"fmt"

	"github.com/spacemeshos/raid/bits"
)

// MinMembers is the smallest member count of a single-parity stripe: one data
// member and its parity.
const MinMembers = 2

// A compile time check to ensure that RAID3 fully implements the Stripe and Restorer interfaces.
var (
	_ Stripe   = (*RAID3)(nil)
	_ Restorer = (*RAID3)(nil)
)

// RAID3 is a stripe of D members of N bytes each. Members 0..D-2 hold data and
// member D-1 holds parity, the XOR of all data members. Whenever the stripe
// is clean the XOR of all D members is zero, which lets any single member be
// regenerated from the other D-1.
//
// RAID3 does no locking; callers sharing an instance must serialize access.
type RAID3 struct {
	members   []bits.Bits
	chunkSize int
}

// NewRAID3 returns an all-zero stripe with the given number of members of
// chunkSize bytes each.
func NewRAID3(members, chunkSize int) (*RAID3, error) {
	if members < MinMembers {
		return nil, fmt.Errorf("%w: expected >= %d members, given: %d", ErrGeometry, MinMembers, members)
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: expected chunk size >= 1, given: %d", ErrGeometry, chunkSize)
	}

	s := &RAID3{
		members:   make([]bits.Bits, members),
		chunkSize: chunkSize,
	}
	for i := range s.members {
		s.members[i] = bits.Zero(chunkSize)
	}
	return s, nil
}

// Members returns the total number of members, data and parity.
func (s *RAID3) Members() int {
	return len(s.members)
}

// ParityIndex returns the index of the parity member.
func (s *RAID3) ParityIndex() int {
	return len(s.members) - 1
}

func (s *RAID3) DataChunks() int {
	return len(s.members) - 1
}

func (s *RAID3) ChunkSize() int {
	return s.chunkSize
}

func (s *RAID3) Write(data []bits.Bits) error {
	if len(data) != s.DataChunks() {
		return fmt.Errorf("%w: RAID3 expects %d chunks, given: %d", ErrChunkCount, s.DataChunks(), len(data))
	}
	for i, chunk := range data {
		if chunk.Len() != s.chunkSize {
			return fmt.Errorf("%w: chunk %d has %d bytes, expected: %d", ErrChunkSize, i, chunk.Len(), s.chunkSize)
		}
	}

	for i, chunk := range data {
		s.members[i].CopyFrom(chunk.Bytes())
	}
	s.writeParity()
	return nil
}

func (s *RAID3) Read(out []bits.Bits) error {
	if len(out) != s.DataChunks() {
		return fmt.Errorf("%w: output buffer must be %d chunks, given: %d", ErrChunkCount, s.DataChunks(), len(out))
	}

	for i := range out {
		if out[i].Len() == s.chunkSize {
			out[i].CopyFrom(s.members[i].Bytes())
		} else {
			out[i] = s.members[i].Clone()
		}
	}
	return nil
}

func (s *RAID3) Restorer() (Restorer, bool) {
	return s, true
}

// Restore regenerates member i. The parity member is recomputed from the data
// members as they are; a data member is derived from parity and the other
// data members.
func (s *RAID3) Restore(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}

	if i == s.ParityIndex() {
		s.writeParity()
		return nil
	}
	s.reconstructData(i)
	return nil
}

// Member returns a copy of member i.
func (s *RAID3) Member(i int) (bits.Bits, error) {
	if err := s.checkIndex(i); err != nil {
		return bits.Bits{}, err
	}
	return s.members[i].Clone(), nil
}

// SetMember overwrites member i with a copy of b without touching any other
// member. It is meant for loading members from storage; the stripe is only
// clean again once every member has been loaded or restored.
func (s *RAID3) SetMember(i int, b bits.Bits) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if b.Len() != s.chunkSize {
		return fmt.Errorf("%w: member %d given %d bytes, expected: %d", ErrChunkSize, i, b.Len(), s.chunkSize)
	}
	s.members[i].CopyFrom(b.Bytes())
	return nil
}

// Erase zeroes member i, modelling the loss of that member.
func (s *RAID3) Erase(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	clear(s.members[i].Bytes())
	return nil
}

// Reset zeroes every member.
func (s *RAID3) Reset() {
	for _, m := range s.members {
		clear(m.Bytes())
	}
}

// Syndrome returns the XOR of all members. It is zero iff the stripe is clean.
// A non-zero syndrome tells that some member is inconsistent, not which one.
func (s *RAID3) Syndrome() bits.Bits {
	acc := bits.Zero(s.chunkSize)
	for _, m := range s.members {
		acc.XorInPlace(m)
	}
	return acc
}

// writeParity sets the parity member to the XOR of all data members.
func (s *RAID3) writeParity() {
	p := s.members[s.ParityIndex()]
	clear(p.Bytes())
	for _, m := range s.members[:s.ParityIndex()] {
		p.XorInPlace(m)
	}
}

// reconstructData sets data member i to parity XOR every other data member.
func (s *RAID3) reconstructData(i int) {
	acc := s.members[s.ParityIndex()].Clone()
	for j, m := range s.members[:s.ParityIndex()] {
		if j != i {
			acc.XorInPlace(m)
		}
	}
	s.members[i].CopyFrom(acc.Bytes())
}

func (s *RAID3) checkIndex(i int) error {
	if i < 0 || i >= len(s.members) {
		return fmt.Errorf("%w: RAID3 has %d members, %d is not a valid index", ErrMemberIndex, len(s.members), i)
	}
	return nil
}
