// Package poly implements negacyclic polynomial arithmetic over
// Z_Q[x]/(x^N+1), the PolyRing collaborator assumed available by the
// bootstrapping core. Polynomials carry one of two representations:
// coefficient form (Poly) and evaluation form (FourierPoly, an
// NTT-domain vector), with explicit conversions between them. Q must be
// an odd prime with Q ≡ 1 (mod 2N) so that a primitive 2N-th root of
// unity exists mod Q; this is the "moduli suitable for NTT" invariant
// from the ring parameters.
package poly

import (
	"fmt"
	"math/bits"

	"github.com/dkbh/tfhecore/math/num"
)

// Poly is a polynomial in Z_Q[x]/(x^N+1) in coefficient form.
type Poly[T num.Uint] struct {
	Coeffs []T
}

// FourierPoly is a polynomial in evaluation (NTT) form: Coeffs holds the
// values of the psi-twisted polynomial at the N-th roots of unity, in
// bit-reversed order. Pointwise operations do not depend on the order.
type FourierPoly[T num.Uint] struct {
	Coeffs []T
}

// Ring holds the negacyclic ring parameters and precomputed NTT
// twiddle tables for a fixed (N, Q).
type Ring[T num.Uint] struct {
	N int
	Q T

	psiPow    []T // psi^i, i in [0, N), bit-reversed
	psiInvPow []T // psi^-i, i in [0, N), bit-reversed
	omegaPow  []T // omega^i, i in [0, N), bit-reversed, omega = psi^2
	omegaInv  []T // omega^-i, bit-reversed
	nInv      T
}

// NewRing constructs a Ring for degree N and modulus Q. Panics if Q is
// not congruent to 1 mod 2N (no primitive 2N-th root of unity would
// exist), which indicates a misconfigured parameter set rather than a
// runtime condition a caller can recover from.
func NewRing[T num.Uint](N int, Q T) *Ring[T] {
	if N <= 0 || N&(N-1) != 0 {
		panic(fmt.Sprintf("poly: N=%d is not a power of two", N))
	}
	twoN := uint64(2 * N)
	if (uint64(Q)-1)%twoN != 0 {
		panic(fmt.Sprintf("poly: Q=%d is not congruent to 1 mod 2N=%d", uint64(Q), twoN))
	}

	psi := findPrimitiveRoot(Q, uint64(2*N))
	omega := modMulT(psi, psi, Q)

	r := &Ring[T]{N: N, Q: Q}
	r.psiPow = bitReversedPowers(psi, Q, N)
	r.psiInvPow = bitReversedPowers(modInverse(psi, Q), Q, N)
	r.omegaPow = bitReversedPowers(omega, Q, N)
	r.omegaInv = bitReversedPowers(modInverse(omega, Q), Q, N)
	r.nInv = T(modInverse(T(N)%Q, Q))
	return r
}

// NewPoly returns a zeroed coefficient-form polynomial of degree N.
func (r *Ring[T]) NewPoly() Poly[T] {
	return Poly[T]{Coeffs: make([]T, r.N)}
}

// NewFourierPoly returns a zeroed evaluation-form polynomial of degree N.
func (r *Ring[T]) NewFourierPoly() FourierPoly[T] {
	return FourierPoly[T]{Coeffs: make([]T, r.N)}
}

// Clear zeroes p in place.
func (r *Ring[T]) Clear(p Poly[T]) {
	for i := range p.Coeffs {
		p.Coeffs[i] = 0
	}
}

// CopyFrom copies src into p.
func (p Poly[T]) CopyFrom(src Poly[T]) {
	copy(p.Coeffs, src.Coeffs)
}

// CopyFrom copies src into p.
func (p FourierPoly[T]) CopyFrom(src FourierPoly[T]) {
	copy(p.Coeffs, src.Coeffs)
}

// AddAssign computes p0 + p1 mod Q into pOut (coefficient form).
func (r *Ring[T]) AddAssign(p0, p1, pOut Poly[T]) {
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = addMod(p0.Coeffs[i], p1.Coeffs[i], r.Q)
	}
}

// SubAssign computes p0 - p1 mod Q into pOut (coefficient form).
func (r *Ring[T]) SubAssign(p0, p1, pOut Poly[T]) {
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = subMod(p0.Coeffs[i], p1.Coeffs[i], r.Q)
	}
}

// AddFourierAssign computes p0 + p1 in evaluation form.
func (r *Ring[T]) AddFourierAssign(p0, p1, pOut FourierPoly[T]) {
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = addMod(p0.Coeffs[i], p1.Coeffs[i], r.Q)
	}
}

// SubFourierAssign computes p0 - p1 in evaluation form.
func (r *Ring[T]) SubFourierAssign(p0, p1, pOut FourierPoly[T]) {
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = subMod(p0.Coeffs[i], p1.Coeffs[i], r.Q)
	}
}

// MulFourierAssign computes the pointwise (ring) product of p0 and p1
// in evaluation form into pOut.
func (r *Ring[T]) MulFourierAssign(p0, p1, pOut FourierPoly[T]) {
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = modMulT(p0.Coeffs[i], p1.Coeffs[i], r.Q)
	}
}

// MulAddFourierAssign computes pOut += p0 * p1 in evaluation form.
func (r *Ring[T]) MulAddFourierAssign(p0, p1, pOut FourierPoly[T]) {
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = addMod(pOut.Coeffs[i], modMulT(p0.Coeffs[i], p1.Coeffs[i], r.Q), r.Q)
	}
}

// ToFourierPolyAssign transforms p from coefficient to evaluation form.
func (r *Ring[T]) ToFourierPolyAssign(p Poly[T], pOut FourierPoly[T]) {
	buf := make([]T, r.N)
	for i := 0; i < r.N; i++ {
		buf[i] = modMulT(p.Coeffs[i], r.psiPow[bitReverse(i, r.N)], r.Q)
	}
	nttForward(buf, r.omegaPow, r.Q)
	copy(pOut.Coeffs, buf)
}

// ToPolyAssign transforms pf from evaluation to coefficient form.
func (r *Ring[T]) ToPolyAssign(pf FourierPoly[T], pOut Poly[T]) {
	buf := make([]T, r.N)
	copy(buf, pf.Coeffs)
	nttInverse(buf, r.omegaInv, r.Q)
	for i := 0; i < r.N; i++ {
		pOut.Coeffs[i] = modMulT(modMulT(buf[i], r.nInv, r.Q), r.psiInvPow[bitReverse(i, r.N)], r.Q)
	}
}

// ToPolyAddAssignUnsafe transforms pf to coefficient form and adds the
// result into pOut, without first clearing pOut. "Unsafe" mirrors the
// teacher's naming for in-place accumulation helpers: callers are
// responsible for having cleared pOut if a fresh value was intended.
func (r *Ring[T]) ToPolyAddAssignUnsafe(pf FourierPoly[T], pOut Poly[T]) {
	tmp := r.NewPoly()
	r.ToPolyAssign(pf, tmp)
	r.AddAssign(pOut, tmp, pOut)
}

// MonomialMulPolyAssign computes X^d * p in the negacyclic ring and
// writes the result to pOut. d may be negative; it is reduced mod 2N.
func (r *Ring[T]) MonomialMulPolyAssign(p Poly[T], d int, pOut Poly[T]) {
	n := r.N
	dd := ((d % (2 * n)) + 2*n) % (2 * n)
	for i := 0; i < n; i++ {
		j := i + dd
		sign := (j / n) % 2
		j %= n
		if sign == 0 {
			pOut.Coeffs[j] = p.Coeffs[i]
		} else {
			pOut.Coeffs[j] = negMod(p.Coeffs[i], r.Q)
		}
	}
}

// MonomialToFourierPolyAssign writes the evaluation-form representation
// of the monomial X^d into pfOut.
func (r *Ring[T]) MonomialToFourierPolyAssign(d int, pfOut FourierPoly[T]) {
	m := r.NewPoly()
	n := r.N
	dd := ((d % (2 * n)) + 2*n) % (2 * n)
	if dd < n {
		m.Coeffs[dd] = 1
	} else {
		m.Coeffs[dd-n] = negMod(T(1), r.Q)
	}
	r.ToFourierPolyAssign(m, pfOut)
}

// MonomialSubOneToFourierPolyAssign writes the evaluation-form
// representation of (X^d - 1) into pfOut, the factor that turns "rotate
// by d" into "multiply by (X^d-1), then add back the un-rotated
// accumulator". The AP accumulator in package tfhe does not call it.
func (r *Ring[T]) MonomialSubOneToFourierPolyAssign(d int, pfOut FourierPoly[T]) {
	m := r.NewPoly()
	n := r.N
	dd := ((d % (2 * n)) + 2*n) % (2 * n)
	if dd < n {
		m.Coeffs[dd] = addMod(m.Coeffs[dd], 1, r.Q)
	} else {
		m.Coeffs[dd-n] = subMod(m.Coeffs[dd-n], 1, r.Q)
	}
	m.Coeffs[0] = subMod(m.Coeffs[0], 1, r.Q)
	r.ToFourierPolyAssign(m, pfOut)
}

func addMod[T num.Uint](a, b, q T) T {
	s := a + b
	if s >= q {
		s -= q
	}
	return s
}

func subMod[T num.Uint](a, b, q T) T {
	if a >= b {
		return a - b
	}
	return a + q - b
}

func negMod[T num.Uint](a, q T) T {
	if a == 0 {
		return 0
	}
	return q - a
}

func modMulT[T num.Uint](a, b, q T) T {
	return T(modMul(uint64(a), uint64(b), uint64(q)))
}

func modMul(a, b, q uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, r := bits.Div64(hi, lo, q)
	return r
}

func modPow(base, exp, q uint64) uint64 {
	result := uint64(1) % q
	base %= q
	for exp > 0 {
		if exp&1 == 1 {
			result = modMul(result, base, q)
		}
		base = modMul(base, base, q)
		exp >>= 1
	}
	return result
}

func modInverse[T num.Uint](a, q T) T {
	// Q is prime, so a^(Q-2) mod Q is the inverse (Fermat's little theorem).
	return T(modPow(uint64(a), uint64(q)-2, uint64(q)))
}

// findPrimitiveRoot returns a generator of the unique subgroup of order
// m in Z_Q^*, for m | (Q-1).
func findPrimitiveRoot[T num.Uint](q T, m uint64) T {
	qm1 := uint64(q) - 1
	factors := primeFactors(m)
	for g := uint64(2); ; g++ {
		cand := modPow(g, qm1/m, uint64(q))
		if cand == 0 || cand == 1 {
			continue
		}
		ok := true
		for _, p := range factors {
			if modPow(cand, m/p, uint64(q)) == 1 {
				ok = false
				break
			}
		}
		if ok {
			return T(cand)
		}
	}
}

// primeFactors returns the distinct prime factors of n via trial
// division followed by a Pollard-rho fallback for any large remaining
// cofactor.
func primeFactors(n uint64) []uint64 {
	var fs []uint64
	for _, p := range []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31} {
		if n%p == 0 {
			fs = append(fs, p)
			for n%p == 0 {
				n /= p
			}
		}
	}
	if n > 1 {
		fs = append(fs, distinctFactors(n)...)
	}
	return fs
}

func distinctFactors(n uint64) []uint64 {
	if n == 1 {
		return nil
	}
	if isProbablePrime(n) {
		return []uint64{n}
	}
	d := pollardRho(n)
	left := distinctFactors(d)
	right := distinctFactors(n / d)
	seen := map[uint64]bool{}
	var out []uint64
	for _, f := range append(left, right...) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func isProbablePrime(n uint64) bool {
	if n < 2 {
		return false
	}
	for _, p := range []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37} {
		if n == p {
			return true
		}
		if n%p == 0 {
			return false
		}
	}
	d := n - 1
	r := 0
	for d%2 == 0 {
		d /= 2
		r++
	}
	for _, a := range []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37} {
		x := modPow(a, d, n)
		if x == 1 || x == n-1 {
			continue
		}
		composite := true
		for i := 0; i < r-1; i++ {
			x = modMul(x, x, n)
			if x == n-1 {
				composite = false
				break
			}
		}
		if composite {
			return false
		}
	}
	return true
}

func pollardRho(n uint64) uint64 {
	if n%2 == 0 {
		return 2
	}
	c := uint64(1)
	for {
		x, y, d := uint64(2), uint64(2), uint64(1)
		f := func(v uint64) uint64 { return (modMul(v, v, n) + c) % n }
		for d == 1 {
			x = f(x)
			y = f(f(y))
			diff := x
			if y > x {
				diff = y - x
			} else {
				diff = x - y
			}
			if diff == 0 {
				d = n
				break
			}
			d = gcd(diff, n)
		}
		if d != n {
			return d
		}
		c++
	}
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func bitReverse(x, n int) int {
	bitsN := num.Log2(uint64(n))
	r := 0
	for i := 0; i < bitsN; i++ {
		r |= ((x >> i) & 1) << (bitsN - 1 - i)
	}
	return r
}

func bitReversedPowers[T num.Uint](base T, q T, n int) []T {
	out := make([]T, n)
	cur := T(1) % q
	pow := make([]T, n)
	for i := 0; i < n; i++ {
		pow[i] = cur
		cur = modMulT(cur, base, q)
	}
	for i := 0; i < n; i++ {
		out[bitReverse(i, n)] = pow[i]
	}
	return out
}

// nttForward performs an in-place Cooley-Tukey decimation-in-time NTT.
// buf must be in natural order on entry; on return it holds the
// evaluation-form values in bit-reversed order. omegaPow holds powers of
// omega in bit-reversed order, as produced by bitReversedPowers; group i
// uses omegaPow[2*i], the square root of omegaPow[i].
func nttForward[T num.Uint](buf []T, omegaPow []T, q T) {
	n := len(buf)
	for length, k := n/2, 1; length >= 1; length, k = length/2, k*2 {
		for i := 0; i < k; i++ {
			w := omegaPow[2*i]
			for j := i * 2 * length; j < i*2*length+length; j++ {
				u := buf[j]
				v := modMulT(buf[j+length], w, q)
				buf[j] = addMod(u, v, q)
				buf[j+length] = subMod(u, v, q)
			}
		}
	}
}

// nttInverse performs an in-place Gentleman-Sande decimation-in-frequency
// inverse NTT, matching nttForward's bit-reversal convention.
func nttInverse[T num.Uint](buf []T, omegaInvPow []T, q T) {
	n := len(buf)
	for length, k := 1, n/2; length < n; length, k = length*2, k/2 {
		for i := 0; i < k; i++ {
			w := omegaInvPow[2*i]
			for j := i * 2 * length; j < i*2*length+length; j++ {
				u := buf[j]
				v := buf[j+length]
				buf[j] = addMod(u, v, q)
				buf[j+length] = modMulT(subMod(u, v, q), w, q)
			}
		}
	}
}
