package tfhe

import (
	"github.com/dkbh/tfhecore/math/num"
)

// LUT classification results from ClassifyLUT (spec.md §4.5).
const (
	LUTNegacyclic = 0
	LUTPeriodic   = 1
	LUTArbitrary  = 2
)

// ClassifyLUT inspects lut (length L, values mod bigQ) and reports
// whether it is negacyclic (LUT[i] = bigQ - LUT[L/2+i]), periodic
// (LUT[i] = LUT[L/2+i]), or neither (spec.md §4.5's checkInputFunction).
func ClassifyLUT[T num.Uint](lut []T, bigQ T) int {
	half := len(lut) / 2
	negacyclic, periodic := true, true
	for i := 0; i < half; i++ {
		lo, hi := lut[i], lut[half+i]
		if negacyclic {
			want := T(0)
			if hi != 0 {
				want = bigQ - hi
			}
			if lo != want {
				negacyclic = false
			}
		}
		if periodic && lo != hi {
			periodic = false
		}
		if !negacyclic && !periodic {
			break
		}
	}
	switch {
	case negacyclic:
		return LUTNegacyclic
	case periodic:
		return LUTPeriodic
	default:
		return LUTArbitrary
	}
}

// EvalFunc evaluates an arbitrary look-up table homomorphically,
// dispatching on the table's shape (spec.md §4.5).
func (e *Evaluator[T]) EvalFunc(ct LWECiphertext[T], lut []T, beta, bigQ T) (LWECiphertext[T], error) {
	q := e.Params.q
	switch ClassifyLUT(lut, bigQ) {
	case LUTNegacyclic:
		adj := EvalAddConstEq(ct, beta, q)
		f := func(x T) T { return lut[int(x)] }
		testPoly := buildTestPolyFunc(e.Params, adj.B, bigQ, f)
		return e.bootstrapCore(adj, testPoly, bigQ, false)

	case LUTArbitrary:
		if q > T(e.Params.N) {
			return LWECiphertext[T]{}, newError(ErrNotImplemented, "EvalFunc", "arbitrary LUT requires q <= N")
		}
		extended := make([]T, len(lut)*2)
		copy(extended, lut)
		copy(extended[len(lut):], lut)
		return e.EvalFunc(ct, extended, beta, bigQ*2)

	default: // periodic
		half := q / 2
		quarter := q / 4
		adj := EvalAddConstEq(ct, beta, q)

		f1 := func(x T) T {
			if uint64(x) < uint64(half) {
				return q - quarter
			}
			return quarter
		}
		testPoly1 := buildTestPolyFunc(e.Params, adj.B, q, f1)
		ctF1, err := e.bootstrapCore(adj, testPoly1, q, false)
		if err != nil {
			return LWECiphertext[T]{}, err
		}

		ctAdj := EvalSubEq(adj, ctF1, q)
		ctAdj = EvalAddConstEq(ctAdj, q-quarter, q)

		fNeg := func(x T) T {
			if uint64(x) < uint64(half) {
				return lut[x]
			}
			v := lut[uint64(x)-uint64(half)]
			if v == 0 {
				return 0
			}
			return bigQ - v
		}
		testPoly2 := buildTestPolyFunc(e.Params, ctAdj.B, bigQ, fNeg)
		return e.bootstrapCore(ctAdj, testPoly2, bigQ, false)
	}
}

// evalFloorCoarse runs the first of EvalFloor's two bootstraps: a
// low-bit estimate f1(x) = x < q/2 ? -q/4 : q/4, represented mod bigQ
// (spec.md §4.5).
func (e *Evaluator[T]) evalFloorCoarse(adj LWECiphertext[T], bigQ T) (LWECiphertext[T], error) {
	q := e.Params.q
	half, quarter := q/2, q/4
	f1 := func(x T) T {
		if uint64(x) < uint64(half) {
			return bigQ - quarter
		}
		return quarter
	}
	testPoly := buildTestPolyFunc(e.Params, adj.B, bigQ, f1)
	return e.bootstrapCore(adj, testPoly, bigQ, false)
}

// evalFloorCorrect runs the second of EvalFloor's two bootstraps: the
// piecewise correction f2 that folds the coarse estimate's error back in
// (spec.md §4.5).
func (e *Evaluator[T]) evalFloorCorrect(ctLow LWECiphertext[T], bigQ T) (LWECiphertext[T], error) {
	q := e.Params.q
	quarter := q / 4
	bq := uint64(bigQ)
	f2 := func(m T) T {
		mm := uint64(m)
		switch {
		case mm < uint64(quarter):
			return T((bq + bq - uint64(q)/2 - mm) % bq)
		case mm < 3*uint64(quarter):
			return T(mm % bq)
		default:
			return T((bq + uint64(q)/2 - mm%bq) % bq)
		}
	}
	testPoly := buildTestPolyFunc(e.Params, ctLow.B, bigQ, f2)
	return e.bootstrapCore(ctLow, testPoly, bigQ, false)
}

// EvalFloor strips the low-order q-sized digit from ct, represented mod
// bigQ, via two bootstraps (spec.md §4.5).
func (e *Evaluator[T]) EvalFloor(ct LWECiphertext[T], beta, bigQ T) (LWECiphertext[T], error) {
	adj := EvalAddConstEq(ct, beta, bigQ)
	ctF1, err := e.evalFloorCoarse(adj, bigQ)
	if err != nil {
		return LWECiphertext[T]{}, err
	}
	ctLow := EvalSubEq(adj, ctF1, bigQ)
	ctF2, err := e.evalFloorCorrect(ctLow, bigQ)
	if err != nil {
		return LWECiphertext[T]{}, err
	}
	return EvalSubEq(ctLow, ctF2, bigQ), nil
}

// roundQtoQ rescales ct's components from modulus oldQ to newQ by
// rounding, exactly as ModSwitch does; EvalSign/EvalDecomp's iterative
// loop calls this RoundqQ step after each EvalFloor (spec.md §4.5).
func roundQtoQ[T num.Uint](ct LWECiphertext[T], oldQ, newQ T) LWECiphertext[T] {
	return ModSwitch(ct, oldQ, newQ)
}

// ceilLog2 returns ceil(log2(x)) for x > 0.
func ceilLog2[T num.Uint](x T) int {
	if x <= 1 {
		return 0
	}
	n := num.Log2(x - 1)
	return n + 1
}

// chooseBaseG implements spec.md §4.5/§9's dynamic base-G schedule:
// presence of exactly 3 entries in the EK map triggers this rule instead
// of a single static base.
func chooseBaseG[T num.Uint](bigQ, currentBase T) T {
	bits := ceilLog2(bigQ)
	switch {
	case bits <= 17:
		return T(1) << 27
	case bits <= 26:
		return T(1) << 18
	default:
		return currentBase
	}
}

// evalSignDecomp implements the shared iteration body of EvalSign and
// EvalDecomp: repeatedly floor and rescale ct until its modulus reaches
// q, optionally snapshotting each low digit along the way, then runs the
// terminal sign bootstrap (spec.md §4.5).
func (e *Evaluator[T]) evalSignDecomp(ct LWECiphertext[T], beta, bigQ T, collectDigits bool) (LWECiphertext[T], []LWECiphertext[T], error) {
	q := e.Params.q
	op := "EvalSign"
	if collectDigits {
		op = "EvalDecomp"
	}
	if bigQ <= q {
		return LWECiphertext[T]{}, nil, newError(ErrConfig, op, "bigger_q must exceed q")
	}

	var digits []LWECiphertext[T]
	cur := ct
	curQ := bigQ
	evalCur := e

	originalBase := e.Params.gadget.Base
	for curQ > q {
		if collectDigits {
			digits = append(digits, cur.Copy())
		}

		floored, err := evalCur.EvalFloor(cur, beta, curQ)
		if err != nil {
			return LWECiphertext[T]{}, nil, err
		}

		oldQ := curQ
		curQ = curQ / q * 2 * beta

		if len(e.Key.BaseGKeys) == 3 {
			newBase := chooseBaseG(curQ, originalBase)
			bsk, ok := e.Key.BaseGKeys[uint64(newBase)]
			if !ok {
				return LWECiphertext[T]{}, nil, newError(ErrLookup, op, "no blind-rotation key for base_G=%d", newBase)
			}
			localParams := e.Params.Clone()
			localParams.gadget = compileGadgetReal(GadgetParametersLiteral[T]{Base: newBase, Level: localParams.gadget.Level}, localParams.Q)
			evalCur = &Evaluator[T]{Params: localParams, Key: BTKey[T]{BSKey: bsk, KSKey: e.Key.KSKey}}
		}

		cur = roundQtoQ(floored, oldQ, curQ)
	}

	quarter := q / 4
	adj := EvalAddConstEq(cur, beta, curQ)
	f3 := func(m T) T {
		if uint64(m) < uint64(q)/2 {
			return e.Params.Q / 4
		}
		return e.Params.Q - e.Params.Q/4
	}
	testPoly := buildTestPolyFunc(e.Params, adj.B, e.Params.Q, f3)
	final, err := e.bootstrapCore(adj, testPoly, q, false)
	if err != nil {
		return LWECiphertext[T]{}, nil, err
	}
	final.B = (final.B + q - quarter) % q

	if collectDigits {
		digits = append(digits, final)
	}
	return final, digits, nil
}

// EvalSign reports the high bit of ct (spec.md §4.5): 0 if the
// plaintext is below bigQ/2, 1 otherwise, encoded at the bit position.
func (e *Evaluator[T]) EvalSign(ct LWECiphertext[T], beta, bigQ T) (LWECiphertext[T], error) {
	out, _, err := e.evalSignDecomp(ct, beta, bigQ, false)
	return out, err
}

// EvalDecomp decomposes ct into base-q digits, least-significant first,
// with the final sign-style bootstrap's output appended last (spec.md
// §4.5, §8 property 8).
func (e *Evaluator[T]) EvalDecomp(ct LWECiphertext[T], beta, bigQ T) ([]LWECiphertext[T], error) {
	_, digits, err := e.evalSignDecomp(ct, beta, bigQ, true)
	return digits, err
}
