package poly_test

import (
	"testing"

	"github.com/dkbh/tfhecore/math/poly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRingRejectsBadModulus(t *testing.T) {
	assert.Panics(t, func() { poly.NewRing[uint64](16, 17) }) // 17 !≡ 1 mod 32
}

func TestFourierRoundTrip(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)
	p := ring.NewPoly()
	for i := range p.Coeffs {
		p.Coeffs[i] = uint64(i + 1)
	}

	f := ring.NewFourierPoly()
	ring.ToFourierPolyAssign(p, f)

	back := ring.NewPoly()
	ring.ToPolyAssign(f, back)

	require.Equal(t, p.Coeffs, back.Coeffs)
}

func TestMulFourierMatchesSchoolbookNegacyclic(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)

	a := ring.NewPoly()
	b := ring.NewPoly()
	a.Coeffs[1] = 1 // a = X
	b.Coeffs[1] = 1 // b = X

	af, bf := ring.NewFourierPoly(), ring.NewFourierPoly()
	ring.ToFourierPolyAssign(a, af)
	ring.ToFourierPolyAssign(b, bf)

	cf := ring.NewFourierPoly()
	ring.MulFourierAssign(af, bf, cf)

	c := ring.NewPoly()
	ring.ToPolyAssign(cf, c)

	want := ring.NewPoly()
	want.Coeffs[2] = 1 // X * X = X^2
	assert.Equal(t, want.Coeffs, c.Coeffs)
}

func TestMonomialMulPolyAssignWrapsNegacyclically(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)
	p := ring.NewPoly()
	p.Coeffs[15] = 5 // coefficient at the top degree

	out := ring.NewPoly()
	ring.MonomialMulPolyAssign(p, 1, out) // multiply by X: X^15 * X = X^16 = -1

	want := ring.NewPoly()
	want.Coeffs[0] = 12289 - 5
	assert.Equal(t, want.Coeffs, out.Coeffs)
}

func TestAddSubAssignCoefficientForm(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)
	a, b := ring.NewPoly(), ring.NewPoly()
	a.Coeffs[0], b.Coeffs[0] = 12000, 500

	sum := ring.NewPoly()
	ring.AddAssign(a, b, sum)
	assert.Equal(t, uint64(211), sum.Coeffs[0]) // (12000+500) mod 12289

	diff := ring.NewPoly()
	ring.SubAssign(b, a, diff)
	assert.Equal(t, uint64(12289-11500), diff.Coeffs[0])
}

func TestMonomialToFourierPolyAssignMatchesCoefficientForm(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)

	want := ring.NewPoly()
	want.Coeffs[5] = 1
	wantF := ring.NewFourierPoly()
	ring.ToFourierPolyAssign(want, wantF)

	gotF := ring.NewFourierPoly()
	ring.MonomialToFourierPolyAssign(5, gotF)

	assert.Equal(t, wantF.Coeffs, gotF.Coeffs)
}

func TestMonomialSubOneToFourierPolyAssignMatchesCoefficientForm(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)

	want := ring.NewPoly()
	want.Coeffs[5] = 1
	want.Coeffs[0] = 12289 - 1 // X^5 - 1
	wantF := ring.NewFourierPoly()
	ring.ToFourierPolyAssign(want, wantF)

	gotF := ring.NewFourierPoly()
	ring.MonomialSubOneToFourierPolyAssign(5, gotF)

	assert.Equal(t, wantF.Coeffs, gotF.Coeffs)
}

func TestSubFourierAssignMatchesCoefficientForm(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)
	a, b := ring.NewPoly(), ring.NewPoly()
	a.Coeffs[2], b.Coeffs[2] = 100, 30

	af, bf := ring.NewFourierPoly(), ring.NewFourierPoly()
	ring.ToFourierPolyAssign(a, af)
	ring.ToFourierPolyAssign(b, bf)

	diffF := ring.NewFourierPoly()
	ring.SubFourierAssign(af, bf, diffF)

	diff := ring.NewPoly()
	ring.ToPolyAssign(diffF, diff)
	assert.Equal(t, uint64(70), diff.Coeffs[2])
}

func TestToPolyAddAssignUnsafeAccumulates(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)

	base := ring.NewPoly()
	base.Coeffs[3] = 10

	add := ring.NewPoly()
	add.Coeffs[3] = 7
	addF := ring.NewFourierPoly()
	ring.ToFourierPolyAssign(add, addF)

	ring.ToPolyAddAssignUnsafe(addF, base)
	assert.Equal(t, uint64(17), base.Coeffs[3])
}

func TestClearAndCopyFrom(t *testing.T) {
	ring := poly.NewRing[uint64](16, 12289)
	p := ring.NewPoly()
	p.Coeffs[0] = 42

	q := ring.NewPoly()
	q.CopyFrom(p)
	require.Equal(t, p.Coeffs, q.Coeffs)

	ring.Clear(p)
	for _, c := range p.Coeffs {
		require.Equal(t, uint64(0), c)
	}
	require.Equal(t, uint64(42), q.Coeffs[0], "Clear must not affect the copy")

	pf, qf := ring.NewFourierPoly(), ring.NewFourierPoly()
	pf.Coeffs[0] = 9
	qf.CopyFrom(pf)
	require.Equal(t, pf.Coeffs, qf.Coeffs)
}
