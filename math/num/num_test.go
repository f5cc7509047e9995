package num_test

import (
	"testing"

	"github.com/dkbh/tfhecore/math/num"
	"github.com/stretchr/testify/assert"
)

func TestLog2(t *testing.T) {
	assert.Equal(t, 0, num.Log2(uint64(1)))
	assert.Equal(t, 3, num.Log2(uint64(8)))
	assert.Equal(t, 3, num.Log2(uint64(15)))
	assert.Equal(t, 4, num.Log2(uint64(16)))
}

func TestDivRound(t *testing.T) {
	assert.Equal(t, uint64(3), num.DivRound(uint64(10), uint64(3)))
	assert.Equal(t, uint64(4), num.DivRound(uint64(11), uint64(3)))
}

func TestRoundRatio(t *testing.T) {
	// Rescaling from q=1024 to q'=8 should round 511 -> 4 (511*8/1024 = 3.99...).
	got := num.RoundRatio(uint64(511), uint64(8), uint64(1024), uint64(8))
	assert.Equal(t, uint64(4), got)

	got = num.RoundRatio(uint64(0), uint64(8), uint64(1024), uint64(8))
	assert.Equal(t, uint64(0), got)
}

func TestSignedRoundTrip(t *testing.T) {
	const q = uint64(1024)
	// The representable signed range is (-q/2, q/2]; -512 and 512 share
	// a residue, and the canonical signed form of that residue is +512.
	cases := map[int64]int64{0: 0, 1: 1, -1: -1, 511: 511, -512: 512, 512: 512}
	for x, want := range cases {
		u := num.ToUnsigned(x, q)
		back := num.ToSigned(u, q)
		assert.Equal(t, want, back)
	}
}
