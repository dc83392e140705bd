// Package bits provides a fixed-size bit vector backed by bytes, following the
// LSB pattern: bit i is stored in byte i/8 at position i%8, where the
// least-significant bit of byte 0 is bit 0 of the vector.
package bits

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Bits is a vector of exactly Len() bytes. The size is fixed when the vector
// is created and never changes afterwards.
//
// The zero value is an empty vector. Assigning a Bits value shares the
// backing bytes; use Clone for an independent copy.
type Bits struct {
	b []byte
}

// Zero returns an all-zero vector of n bytes.
func Zero(n int) Bits {
	if n < 0 {
		panic(fmt.Sprintf("bits: negative size %d", n))
	}
	return Bits{b: make([]byte, n)}
}

// FromBytes returns a vector holding a copy of p.
func FromBytes(p []byte) Bits {
	b := make([]byte, len(p))
	copy(b, p)
	return Bits{b: b}
}

// Len returns the size of the vector in bytes.
func (v Bits) Len() int {
	return len(v.b)
}

// BitLen returns the size of the vector in bits.
func (v Bits) BitLen() int {
	return len(v.b) * 8
}

// Bytes returns the backing bytes. Writes through the returned slice mutate v.
func (v Bits) Bytes() []byte {
	return v.b
}

// CopyTo copies the vector into dst and returns the number of bytes copied.
func (v Bits) CopyTo(dst []byte) int {
	return copy(dst, v.b)
}

// CopyFrom overwrites the vector with the leading bytes of src and returns the
// number of bytes copied. Bytes beyond len(src) are left untouched.
func (v Bits) CopyFrom(src []byte) int {
	return copy(v.b, src)
}

// Clone returns an independent copy of v.
func (v Bits) Clone() Bits {
	return FromBytes(v.b)
}

// Get reports whether bit i is set. It panics if i is out of range.
func (v Bits) Get(i int) bool {
	v.checkIndex(i)
	return (v.b[i>>3]>>(i&7))&1 == 1
}

// Set sets bit i to val. It panics if i is out of range.
func (v Bits) Set(i int, val bool) {
	v.checkIndex(i)
	m := byte(1) << (i & 7)
	if val {
		v.b[i>>3] |= m
	} else {
		v.b[i>>3] &^= m
	}
}

func (v Bits) checkIndex(i int) {
	if i < 0 || i >= v.BitLen() {
		panic(fmt.Sprintf("bits: index out of range [%d] with length %d", i, v.BitLen()))
	}
}

// XorInPlace sets v to v ^ rhs. Both vectors must have the same size.
func (v Bits) XorInPlace(rhs Bits) {
	if len(v.b) != len(rhs.b) {
		panic(fmt.Sprintf("bits: size mismatch: %d != %d", len(v.b), len(rhs.b)))
	}
	for i, b := range rhs.b {
		v.b[i] ^= b
	}
}

// Xor returns a new vector holding v ^ rhs. Neither operand is modified.
func (v Bits) Xor(rhs Bits) Bits {
	out := v.Clone()
	out.XorInPlace(rhs)
	return out
}

// Equal reports whether v and o hold the same bytes.
func (v Bits) Equal(o Bits) bool {
	return bytes.Equal(v.b, o.b)
}

// IsZero reports whether every bit of v is unset.
func (v Bits) IsZero() bool {
	for _, b := range v.b {
		if b != 0 {
			return false
		}
	}
	return true
}

func (v Bits) String() string {
	return hex.EncodeToString(v.b)
}
