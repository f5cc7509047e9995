package tfhe

import (
	"fmt"

	"github.com/dkbh/tfhecore/math/num"
)

// Gate enumerates the Boolean gates this core evaluates directly or by
// composition (spec.md §6).
type Gate int

const (
	GateOR Gate = iota
	GateAND
	GateNOR
	GateNAND
	GateXORFast
	GateXNORFast
	GateXOR
	GateXNOR
)

func (g Gate) String() string {
	switch g {
	case GateOR:
		return "OR"
	case GateAND:
		return "AND"
	case GateNOR:
		return "NOR"
	case GateNAND:
		return "NAND"
	case GateXORFast:
		return "XOR_FAST"
	case GateXNORFast:
		return "XNOR_FAST"
	case GateXOR:
		return "XOR"
	case GateXNOR:
		return "XNOR"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// gateConst returns the rotation threshold q1 for gates handled directly
// by a single bootstrap (spec.md §4.4's constant table). XOR/XNOR are
// composed from AND/OR/NOT and have no table entry of their own.
func gateConst[T num.Uint](gate Gate, q T) (T, bool) {
	qI := int64(q)
	switch gate {
	case GateOR:
		return T(3 * qI / 8), true
	case GateAND:
		return T(5 * qI / 8), true
	case GateNOR:
		return T(7 * qI / 8), true
	case GateNAND:
		return T(qI / 8), true
	case GateXORFast:
		return T(5 * qI / 8), true
	case GateXNORFast:
		return T(qI / 8), true
	default:
		return 0, false
	}
}

// EvalNOT negates a ciphertext with no key material: a_i -> q - a_i,
// b -> q/4 - b (spec.md §4.4).
func (e *Evaluator[T]) EvalNOT(ct LWECiphertext[T]) LWECiphertext[T] {
	q := e.Params.q
	out := NewLWECiphertext[T](len(ct.A))
	for i, a := range ct.A {
		if a == 0 {
			out.A[i] = 0
		} else {
			out.A[i] = q - a%q
		}
	}
	quarter := q / 4
	out.B = (quarter + q - ct.B%q) % q
	return out
}

// runGateBootstrap builds the gate-mode test polynomial around q1 and
// drives a single bootstrap, shifting the extracted constant term by
// Q/8 back into the {0, q/4} encoding (spec.md §4.3/§4.4).
func (e *Evaluator[T]) runGateBootstrap(ctprep LWECiphertext[T], q1 T) (LWECiphertext[T], error) {
	q := e.Params.q
	q2 := (q1 + q/2) % q
	testPoly := buildTestPolyGate(e.Params, ctprep.B, q1, q2)
	return e.bootstrapCore(ctprep, testPoly, q, true)
}

// EvalBinGate evaluates gate over ct0 and ct1 (spec.md §4.4). Aliased
// inputs are rejected: EvalBinGate(g, c, c) would give c incorrect noise
// behavior, so callers needing that must copy c first.
func (e *Evaluator[T]) EvalBinGate(gate Gate, ct0, ct1 LWECiphertext[T]) (LWECiphertext[T], error) {
	if ct0.Equal(ct1) {
		return LWECiphertext[T]{}, newError(ErrConfig, "EvalBinGate", "ct0 and ct1 must not alias the same ciphertext")
	}
	q := e.Params.q

	switch gate {
	case GateXOR, GateXNOR:
		notCt1 := e.EvalNOT(ct1)
		notCt0 := e.EvalNOT(ct0)
		left, err := e.EvalBinGate(GateAND, ct0, notCt1)
		if err != nil {
			return LWECiphertext[T]{}, err
		}
		right, err := e.EvalBinGate(GateAND, notCt0, ct1)
		if err != nil {
			return LWECiphertext[T]{}, err
		}
		out, err := e.EvalBinGate(GateOR, left, right)
		if err != nil {
			return LWECiphertext[T]{}, err
		}
		if gate == GateXNOR {
			out = e.EvalNOT(out)
		}
		return out, nil

	case GateXORFast, GateXNORFast:
		diff := EvalSubEq(ct0, ct1, q)
		ctprep := EvalAddEq(diff, diff, q)
		q1, _ := gateConst[T](gate, q)
		return e.runGateBootstrap(ctprep, q1)

	default:
		q1, ok := gateConst[T](gate, q)
		if !ok {
			return LWECiphertext[T]{}, newError(ErrNotImplemented, "EvalBinGate", "gate %v has no accumulator constant", gate)
		}
		ctprep := EvalAddEq(ct0, ct1, q)
		return e.runGateBootstrap(ctprep, q1)
	}
}

// Bootstrap performs an identity refresh of ct: adds q/4 to the input's
// b and runs the AND gate's bootstrap (spec.md §4.4).
func (e *Evaluator[T]) Bootstrap(ct LWECiphertext[T]) (LWECiphertext[T], error) {
	q := e.Params.q
	ctprep := ct.Copy()
	ctprep.B = (ctprep.B + q/4) % q
	q1, _ := gateConst[T](GateAND, q)
	return e.runGateBootstrap(ctprep, q1)
}
