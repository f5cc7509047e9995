package tfhe

import (
	"sync"

	"github.com/dkbh/tfhecore/csprng"
	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/math/poly"
)

// RGSWEvalKey is a gadget-decomposed RLWE encryption of a monomial
// X^m, stored in evaluation form so the accumulator's external product
// (spec.md §4.2, AddToACCAP) never needs to re-transform it. Rows is
// d_g2 = 2*BlindRotateLevel entries; row 2i carries the i-th gadget
// power embedded into column 0 (the "a" half), row 2i+1 into column 1
// (the "b" half) — the interleaved layout spec.md §4.2 describes via
// "[2i][0][mm]" / "[2i+1][1][mm]".
type RGSWEvalKey[T num.Uint] struct {
	Rows [][2]poly.FourierPoly[T]
}

// BSKey is the 3-D indexed blind-rotation key from spec.md §3:
// Value[i][j][k] encrypts X^{s_i * j * B_r^k} (signed), for
// i in [0,n), j in [1,B_r), k in [0,digitsR).
type BSKey[T num.Uint] struct {
	Value  [][][]RGSWEvalKey[T]
	n      int
	baseR  T
	digitsR int
}

// reduceMonomialExponent folds m into [0, q), then scales by
// factor = 2N/q to embed it into the ring's exponent space, mirroring
// KeyGenAP in original_source/src/binfhe/lib/rgsw-acc-dm.cpp: mm =
// (((m % q) + q) % q) * (2N/q). The scaled exponent is then reduced to
// its (mm, sign) representative in [0, N) via the ring's negacyclic
// wraparound X^N = -1.
func reduceMonomialExponent[T num.Uint](m int64, q T, N int) (mm int, sign int64) {
	qi := int64(q)
	factor := int64(2*N) / qi
	e := ((m % qi) + qi) % qi
	scaled := e * factor
	if scaled < int64(N) {
		return int(scaled), 1
	}
	return int(scaled) - N, -1
}

func scaledMonomialFourier[T num.Uint](ring *poly.Ring[T], val T, mm int) poly.FourierPoly[T] {
	m := ring.NewPoly()
	m.Coeffs[mm] = val
	f := ring.NewFourierPoly()
	ring.ToFourierPolyAssign(m, f)
	return f
}

// KeyGenAP produces a single RGSW encryption of X^m under the ring
// secret skNTT (already in evaluation form), following spec.md §4.2's
// KeyGenAP: each row is a fresh RLWE encryption of zero, with the
// gadget vector added at the monomial's coefficient position in the
// appropriate column.
func KeyGenAP[T num.Uint](params Parameters[T], skNTT poly.FourierPoly[T], m int64, uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) RGSWEvalKey[T] {
	ring := params.ring
	dg := params.gadget.Level
	dg2 := 2 * dg

	rows := make([][2]poly.FourierPoly[T], dg2)
	for l := 0; l < dg2; l++ {
		aPoly := ring.NewPoly()
		csprng.SamplePoly(uniform, ring.Q, aPoly.Coeffs)
		aF := ring.NewFourierPoly()
		ring.ToFourierPolyAssign(aPoly, aF)

		bF := ring.NewFourierPoly()
		ring.MulFourierAssign(aF, skNTT, bF)

		ePoly := ring.NewPoly()
		csprng.SampleGaussianPoly(gauss, ring.Q, ePoly.Coeffs)
		eF := ring.NewFourierPoly()
		ring.ToFourierPolyAssign(ePoly, eF)
		ring.AddFourierAssign(bF, eF, bF)

		rows[l] = [2]poly.FourierPoly[T]{aF, bF}
	}

	mm, sign := reduceMonomialExponent(m, params.q, ring.N)
	for i := 0; i < dg; i++ {
		val := params.gadget.Pow[i]
		if sign < 0 {
			val = negModT(val, ring.Q)
		}
		mf := scaledMonomialFourier(ring, val, mm)
		ring.AddFourierAssign(rows[2*i][0], mf, rows[2*i][0])
		ring.AddFourierAssign(rows[2*i+1][1], mf, rows[2*i+1][1])
	}
	return RGSWEvalKey[T]{Rows: rows}
}

func negModT[T num.Uint](a, q T) T {
	if a == 0 {
		return 0
	}
	return q - a
}

// KeyGenACC generates the full blind-rotation key. The n*(B_r-1)*digitsR
// independent KeyGenAP calls are embarrassingly parallel (spec.md §5);
// this fans them out across goroutines, one per LWE index i, joining
// before returning.
func KeyGenACC[T num.Uint](params Parameters[T], skNTT poly.FourierPoly[T], sv LWESecretKey[T], uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) BSKey[T] {
	n := params.n
	baseR := uint64(params.baseR)
	digitsR := params.digitsR

	bsKey := BSKey[T]{
		Value:   make([][][]RGSWEvalKey[T], n),
		n:       n,
		baseR:   params.baseR,
		digitsR: digitsR,
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			sSigned := num.ToSigned(sv.Value[i], params.q)
			row := make([][]RGSWEvalKey[T], baseR)
			for j := uint64(1); j < baseR; j++ {
				col := make([]RGSWEvalKey[T], digitsR)
				pow := uint64(1)
				for k := 0; k < digitsR; k++ {
					m := sSigned * int64(j) * int64(pow)
					col[k] = KeyGenAP(params, skNTT, m, uniform, gauss)
					pow *= baseR
				}
				row[j] = col
			}
			bsKey.Value[i] = row
		}(i)
	}
	wg.Wait()
	return bsKey
}

// SignedDigitDecompose decomposes c0 and c1 into d_g balanced base-B_g
// digit polynomials each, interleaved as dct[2i] = i-th digit of c0,
// dct[2i+1] = i-th digit of c1 (spec.md §4.2, §9's "must be balanced,
// not unsigned"). Each digit polynomial's coefficients lie in
// [-B_g/2, B_g/2), represented as residues mod Q.
func SignedDigitDecompose[T num.Uint](ring *poly.Ring[T], c0, c1 poly.Poly[T], gadget GadgetParameters[T]) []poly.Poly[T] {
	dg := gadget.Level
	dct := make([]poly.Poly[T], 2*dg)
	for i := range dct {
		dct[i] = ring.NewPoly()
	}

	decomposeInto(ring, c0, gadget, dct, 0)
	decomposeInto(ring, c1, gadget, dct, 1)
	return dct
}

func decomposeInto[T num.Uint](ring *poly.Ring[T], p poly.Poly[T], gadget GadgetParameters[T], dct []poly.Poly[T], parity int) {
	dg := gadget.Level
	base := int64(gadget.Base)
	Q := int64(ring.Q)
	half := base / 2
	for c := 0; c < ring.N; c++ {
		cur := num.ToSigned(p.Coeffs[c], ring.Q)
		for i := 0; i < dg; i++ {
			m := cur % base
			if m < 0 {
				m += base
			}
			d := m
			if d >= half {
				d -= base
			}
			dct[2*i+parity].Coeffs[c] = num.ToUnsigned(d, T(Q))
			cur = (cur - d) / base
		}
	}
}

// EvalACC drives the accumulator through the full blind rotation
// described by spec.md §4.2's EvalACC: for each LWE index i, the
// negated-and-mixed-radix-decomposed a_i selects a sequence of RGSW
// keys to fold into acc via AddToACCAP.
func EvalACC[T num.Uint](params Parameters[T], bsKey BSKey[T], acc RLWECiphertext[T], a []T) {
	q := params.q
	baseR := uint64(params.baseR)
	for i := 0; i < params.n; i++ {
		aI := uint64((q - a[i]%q) % q)
		for k := 0; k < params.digitsR; k++ {
			d := aI % baseR
			aI /= baseR
			if d != 0 {
				AddToACCAP(params, bsKey.Value[i][d][k], acc)
			}
		}
	}
}

// AddToACCAP performs the external product of acc with the RGSW key ev,
// replacing acc in place with ev "applied" to acc (spec.md §4.2).
func AddToACCAP[T num.Uint](params Parameters[T], ev RGSWEvalKey[T], acc RLWECiphertext[T]) {
	ring := params.ring
	dct := SignedDigitDecompose(ring, acc.C0, acc.C1, params.gadget)

	dctF := make([]poly.FourierPoly[T], len(dct))
	for l, d := range dct {
		dctF[l] = ring.NewFourierPoly()
		ring.ToFourierPolyAssign(d, dctF[l])
	}

	acc0F := ring.NewFourierPoly()
	acc1F := ring.NewFourierPoly()
	for l := range dctF {
		ring.MulAddFourierAssign(dctF[l], ev.Rows[l][0], acc0F)
		ring.MulAddFourierAssign(dctF[l], ev.Rows[l][1], acc1F)
	}

	ring.ToPolyAssign(acc0F, acc.C0)
	ring.ToPolyAssign(acc1F, acc.C1)
}
