package tfhe

import (
	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/math/poly"
)

// Evaluator bundles the parameters and keys that every bootstrap, gate,
// and large-precision call needs, mirroring the teacher's
// Evaluator[T] that holds a compiled Parameters plus its EvaluationKey.
type Evaluator[T num.Uint] struct {
	Params Parameters[T]
	Key    BTKey[T]
}

// NewEvaluator binds params and key into an Evaluator ready to drive
// gates and bootstraps.
func NewEvaluator[T num.Uint](params Parameters[T], key BTKey[T]) *Evaluator[T] {
	return &Evaluator[T]{Params: params, Key: key}
}

// qOver8 returns floor(Q/8)+1, the representation spec.md §4.3 specifies
// for the "±Q/8" test-polynomial amplitude.
func qOver8[T num.Uint](Q T) T {
	return Q/8 + 1
}

// buildTestPolyGate constructs the gate-mode test polynomial described
// in spec.md §4.3: zero everywhere except at indices scaled by
// 2N/q, where it holds ±Q/8 depending on which side of the (q1, q2)
// threshold window `(b - j) mod q` falls on.
func buildTestPolyGate[T num.Uint](params Parameters[T], b, q1, q2 T) poly.Poly[T] {
	ring := params.ring
	m := ring.NewPoly()
	q := int64(params.q)
	factor := uint64(2*ring.N) / uint64(params.q)
	q8 := qOver8(params.Q)
	negQ8 := params.Q - q8
	bI, q1I, q2I := int64(b), int64(q1), int64(q2)
	for j := int64(0); j < q/2; j++ {
		temp := ((bI-j)%q + q) % q
		var val T
		if q1I < q2I {
			if temp >= q1I && temp < q2I {
				val = negQ8
			} else {
				val = q8
			}
		} else {
			if temp >= q2I && temp < q1I {
				val = q8
			} else {
				val = negQ8
			}
		}
		m.Coeffs[uint64(j)*factor] = val
	}
	return m
}

// buildTestPolyFunc constructs the functional-mode test polynomial from
// spec.md §4.3: m[j*factor] = (Q/targetQ) * f((b-j) mod q) for j in
// [0, q/2).
func buildTestPolyFunc[T num.Uint](params Parameters[T], b, targetQ T, f func(T) T) poly.Poly[T] {
	ring := params.ring
	m := ring.NewPoly()
	q := int64(params.q)
	factor := uint64(2*ring.N) / uint64(params.q)
	scale := uint64(params.Q) / uint64(targetQ)
	bI := int64(b)
	for j := int64(0); j < q/2; j++ {
		x := ((bI-j)%q + q) % q
		fx := f(T(x))
		m.Coeffs[uint64(j)*factor] = T((uint64(fx) * scale) % uint64(params.Q))
	}
	return m
}

// bootstrapCore drives the accumulator from testPoly, extracts the
// constant-term LWE ciphertext, and runs the refresh tail (modulus
// switch, key switch, modulus switch) to outputQ (spec.md §4.3). When
// addQOver8 is set, Q/8 is added to the extracted constant term before
// the refresh tail, shifting a gate-mode result from ±Q/8 to {0, Q/4}.
func (e *Evaluator[T]) bootstrapCore(ct LWECiphertext[T], testPoly poly.Poly[T], outputQ T, addQOver8 bool) (LWECiphertext[T], error) {
	if e.Key.BSKey.Value == nil {
		return LWECiphertext[T]{}, newError(ErrConfig, "Bootstrap", "evaluation key has no blind-rotation key set")
	}
	if len(ct.A) != e.Params.n {
		return LWECiphertext[T]{}, newError(ErrArithmetic, "Bootstrap", "input ciphertext dimension %d does not match params.n=%d", len(ct.A), e.Params.n)
	}
	ring := e.Params.ring
	acc := NewRLWECiphertext[T](ring)
	copy(acc.C1.Coeffs, testPoly.Coeffs)

	EvalACC(e.Params, e.Key.BSKey, acc, ct.A)

	extracted := acc.ExtractConstantLWE(ring)
	if addQOver8 {
		extracted.B = (extracted.B + qOver8(e.Params.Q)) % e.Params.Q
	}

	tmp := ModSwitch(extracted, e.Params.Q, e.Params.qKS)
	switched := KeySwitch(e.Key.KSKey, tmp)
	out := ModSwitch(switched, e.Params.qKS, outputQ)
	return out, nil
}
