package bits

import (
	"math/rand"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func TestZero(t *testing.T) {
	req := require.New(t)

	for _, n := range []int{0, 1, 4, 32} {
		v := Zero(n)
		req.Equal(n, v.Len())
		req.Equal(n*8, v.BitLen())
		req.Equal(make([]byte, n), v.Bytes())
		req.True(v.IsZero())
	}

	req.Panics(func() { Zero(-1) })
}

func TestZero_AllBitsFalse(t *testing.T) {
	v := Zero(3)
	for i := 0; i < 24; i++ {
		require.False(t, v.Get(i), "bit %d", i)
	}
}

func TestFromBytes_Copies(t *testing.T) {
	req := require.New(t)

	raw := []byte{1, 2, 3}
	v := FromBytes(raw)
	raw[0] = 0xFF
	req.Equal([]byte{1, 2, 3}, v.Bytes())
}

func TestBytes_ExposesBackingStorage(t *testing.T) {
	req := require.New(t)

	v := Zero(4)
	raw := v.Bytes()
	raw[1] = 0xAB
	raw[3] = 0xCD
	req.Equal([]byte{0, 0xAB, 0, 0xCD}, v.Bytes())
}

func TestCopyToCopyFrom(t *testing.T) {
	req := require.New(t)

	v := Zero(4)
	req.Equal(4, v.CopyFrom([]byte{9, 8, 7, 6, 5}))
	req.Equal([]byte{9, 8, 7, 6}, v.Bytes())

	req.Equal(2, v.CopyFrom([]byte{1, 1}))
	req.Equal([]byte{1, 1, 7, 6}, v.Bytes())

	dst := make([]byte, 6)
	req.Equal(4, v.CopyTo(dst))
	req.Equal([]byte{1, 1, 7, 6, 0, 0}, dst)
}

func TestClone_Independent(t *testing.T) {
	req := require.New(t)

	a := FromBytes([]byte{1, 2, 3, 4})
	b := a.Clone()
	b.Set(0, false)
	b.Bytes()[3] = 0

	req.Equal([]byte{1, 2, 3, 4}, a.Bytes())
	req.Equal([]byte{0, 2, 3, 0}, b.Bytes())
}

func TestGetSet_BitOrder(t *testing.T) {
	req := require.New(t)

	v := Zero(2)

	v.Set(0, true)
	req.True(v.Get(0))
	req.Equal(byte(0b0000_0001), v.Bytes()[0])

	v.Set(7, true)
	req.True(v.Get(7))
	req.Equal(byte(0b1000_0001), v.Bytes()[0])

	v.Set(8, true)
	req.True(v.Get(8))
	req.Equal(byte(0b0000_0001), v.Bytes()[1])

	v.Set(7, false)
	req.False(v.Get(7))
	req.Equal(byte(0b0000_0001), v.Bytes()[0])
}

func TestGetSet_RoundTripLeavesOtherBits(t *testing.T) {
	req := require.New(t)

	f := fuzz.New().RandSource(rand.NewSource(1001))
	var raw [16]byte
	f.Fuzz(&raw)
	orig := FromBytes(raw[:])

	for i := 0; i < orig.BitLen(); i++ {
		v := orig.Clone()

		v.Set(i, true)
		req.True(v.Get(i))
		v.Set(i, false)
		req.False(v.Get(i))

		for j := 0; j < v.BitLen(); j++ {
			if j == i {
				continue
			}
			req.Equal(orig.Get(j), v.Get(j), "bit %d changed while setting bit %d", j, i)
		}
	}
}

func TestGetSet_OutOfRange(t *testing.T) {
	req := require.New(t)

	a := Zero(1)
	req.Panics(func() { a.Get(8) })
	req.Panics(func() { a.Get(-1) })

	b := Zero(2)
	req.Panics(func() { b.Set(16, true) })
	req.Panics(func() { b.Set(-1, false) })
	req.NotPanics(func() { b.Set(15, true) })
}

func TestXor(t *testing.T) {
	req := require.New(t)

	a := FromBytes([]byte{0xFF, 0x00, 0xAA, 0x55})
	b := FromBytes([]byte{0x0F, 0x0F, 0xF0, 0xF0})
	expected := []byte{0xF0, 0x0F, 0x5A, 0xA5}

	c := a.Xor(b)
	req.Equal(expected, c.Bytes())
	req.Equal([]byte{0xFF, 0x00, 0xAA, 0x55}, a.Bytes(), "Xor must not mutate the receiver")
	req.Equal([]byte{0x0F, 0x0F, 0xF0, 0xF0}, b.Bytes(), "Xor must not mutate the argument")

	a.XorInPlace(b)
	req.Equal(expected, a.Bytes())

	x := FromBytes([]byte{0x12, 0x34, 0x56, 0x78})
	y := FromBytes([]byte{0xFF, 0xFF, 0x00, 0x00})
	req.Equal([]byte{0xED, 0xCB, 0x56, 0x78}, x.Xor(y).Bytes())

	q := FromBytes([]byte{1, 2, 3, 4})
	q.XorInPlace(q.Clone())
	req.True(q.IsZero())
}

func TestXor_SizeMismatch(t *testing.T) {
	req := require.New(t)

	req.Panics(func() { Zero(2).XorInPlace(Zero(3)) })
	req.Panics(func() { Zero(3).Xor(Zero(2)) })
}

func TestXor_Algebra(t *testing.T) {
	req := require.New(t)

	f := fuzz.New().RandSource(rand.NewSource(101))
	for i := 0; i < 100; i++ {
		var raw [3][8]byte
		f.Fuzz(&raw)
		x, y, z := FromBytes(raw[0][:]), FromBytes(raw[1][:]), FromBytes(raw[2][:])

		req.True(x.Xor(y).Xor(z).Equal(x.Xor(y.Xor(z))), "associativity")
		req.True(x.Xor(y).Equal(y.Xor(x)), "commutativity")
		req.True(x.Xor(x).IsZero(), "self inverse")
		req.True(x.Xor(Zero(8)).Equal(x), "identity")
	}
}

func TestEqual(t *testing.T) {
	req := require.New(t)

	a := FromBytes([]byte{1, 2, 3})
	b := FromBytes([]byte{1, 2, 3})
	c := FromBytes([]byte{3, 2, 1})

	req.True(a.Equal(b))
	req.False(a.Equal(c))
	req.False(a.Equal(Zero(2)))
}

func TestString(t *testing.T) {
	require.Equal(t, "00ff10", FromBytes([]byte{0x00, 0xFF, 0x10}).String())
}
