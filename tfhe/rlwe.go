package tfhe

import (
	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/math/poly"
)

// RLWECiphertext is a pair of polynomials over Z_Q[x]/(x^N+1), always
// held in coefficient form between accumulator steps (spec.md §3).
type RLWECiphertext[T num.Uint] struct {
	C0, C1 poly.Poly[T]
}

// NewRLWECiphertext allocates a zeroed RLWE ciphertext for the given
// ring.
func NewRLWECiphertext[T num.Uint](ring *poly.Ring[T]) RLWECiphertext[T] {
	return RLWECiphertext[T]{C0: ring.NewPoly(), C1: ring.NewPoly()}
}

// ExtractConstantLWE extracts the LWE ciphertext encrypting the
// constant term of ct under the length-N ring secret (spec.md §4.3
// "Extraction"). A'[0] = C0[0], A'[i] = -C0[N-i] for i>0 (the
// transpose of the negacyclic coefficient vector), b_out = C1[0]: the
// accumulator's test polynomial lives in C1, so the constant term a
// caller cares about comes from there.
func (ct RLWECiphertext[T]) ExtractConstantLWE(ring *poly.Ring[T]) LWECiphertext[T] {
	N := ring.N
	Q := ring.Q
	out := NewLWECiphertext[T](N)
	out.A[0] = ct.C0.Coeffs[0]
	for i := 1; i < N; i++ {
		v := ct.C0.Coeffs[N-i]
		if v == 0 {
			out.A[i] = 0
		} else {
			out.A[i] = Q - v
		}
	}
	out.B = ct.C1.Coeffs[0]
	return out
}
