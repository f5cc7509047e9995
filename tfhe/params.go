// Package tfhe implements the bootstrapping core: LWE/RGSW primitives,
// the AP-variant blind-rotation accumulator, the bootstrap core, the
// Boolean gate layer, and the large-precision operators built on top of
// bootstrapping.
package tfhe

import (
	"fmt"
	"math"

	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/math/poly"
)

// AccumulatorMethod selects the blind-rotation accumulator algorithm.
// Only AP is implemented by this core; GINX is reserved for a future
// extension (spec.md §6 lists it as "an alternative not detailed in
// this spec").
type AccumulatorMethod int

const (
	AccumulatorAP AccumulatorMethod = iota
	AccumulatorGINX
)

// NewAccumulator validates that method is one this core actually drives
// an accumulator for. Only AP is implemented; GINX is carried as an
// enum value (spec.md §6) but has no EvalACC/AddToACCAP behind it, so
// callers that probe for it before committing to a full KeyGen get a
// typed error instead of a silently missing feature.
func NewAccumulator(method AccumulatorMethod) (AccumulatorMethod, error) {
	if method == AccumulatorGINX {
		return 0, newError(ErrNotImplemented, "NewAccumulator", "GINX accumulator method has no implementation in this core")
	}
	return method, nil
}

func (m AccumulatorMethod) String() string {
	switch m {
	case AccumulatorAP:
		return "AP"
	case AccumulatorGINX:
		return "GINX"
	default:
		return fmt.Sprintf("AccumulatorMethod(%d)", int(m))
	}
}

// GadgetParametersLiteral describes a gadget decomposition before the
// gadget vector itself is computed.
type GadgetParametersLiteral[T num.Uint] struct {
	Base  T
	Level int
}

// GadgetParameters holds a compiled gadget decomposition: the base, the
// digit count, and the precomputed powers of the base (spec.md §3's
// Gpow[i] = B_g^i mod Q).
type GadgetParameters[T num.Uint] struct {
	Base  T
	Level int
	Pow   []T
}

// ParametersLiteral is the uncompiled, hand-editable form of a parameter
// set: the form a catalog entry (spec.md §6's enumerated selector)
// resolves to before Compile() derives the gadget vectors and builds the
// polynomial ring.
type ParametersLiteral[T num.Uint] struct {
	// LWEDimension is n: the dimension of the input/output LWE
	// ciphertexts that gates and EvalFunc operate on.
	LWEDimension int
	// PolyDegree is N: the ring dimension of the accumulator.
	PolyDegree int
	// LWEModulus is q, the small modulus; must divide 2*PolyDegree.
	LWEModulus T
	// RingModulus is Q, an odd prime congruent to 1 mod 2*PolyDegree.
	RingModulus T
	// KeySwitchModulus is q_KS, the intermediate modulus used by the
	// key-switch from dimension N back to dimension n.
	KeySwitchModulus T

	LWEStdDev  float64
	RLWEStdDev float64

	BlindRotateBaseG   T
	BlindRotateLevel   int
	KeySwitchBase      T
	KeySwitchLevel     int
	BlindRotateBaseR   T

	AccumulatorMethod AccumulatorMethod
}

// LWEParams holds the compiled LWE-layer parameters (spec.md §3's
// LWEParams entity).
type LWEParams[T num.Uint] struct {
	n    int
	N    int
	q    T
	Q    T
	qKS  T
	lweStdDev  float64
	rlweStdDev float64
}

func (p LWEParams[T]) N_() int   { return p.n }
func (p LWEParams[T]) Deg() int  { return p.N }
func (p LWEParams[T]) Q_() T     { return p.Q }
func (p LWEParams[T]) Q_q() T    { return p.q }
func (p LWEParams[T]) Q_qKS() T  { return p.qKS }

// StdDevLWE returns the LWE noise standard deviation.
func (p LWEParams[T]) StdDevLWE() float64 { return p.lweStdDev }

// StdDevRLWE returns the RLWE (accumulator) noise standard deviation.
func (p LWEParams[T]) StdDevRLWE() float64 { return p.rlweStdDev }

// RGSWParams holds the compiled RGSW/accumulator parameters (spec.md
// §3's RGSWParams entity): the gadget vector, the AP base and digit
// count, and the polynomial ring the accumulator runs over.
type RGSWParams[T num.Uint] struct {
	gadget     GadgetParameters[T]
	keySwitch  GadgetParameters[T]
	baseR      T
	digitsR    int
	ring       *poly.Ring[T]
	method     AccumulatorMethod
}

// Parameters bundles LWEParams and RGSWParams plus the derived ring,
// mirroring the teacher's Parameters[T] that an Evaluator is
// constructed from.
type Parameters[T num.Uint] struct {
	LWEParams[T]
	RGSWParams[T]
}

// Clone returns a deep-enough copy of p suitable for the large-precision
// operators to mutate locally (spec.md §9: "thread a mutable local
// parameter view through these operations instead of mutating shared
// state"). The gadget tables and ring are immutable once built, so they
// are shared by reference; only the scalar fields that EvalFunc/EvalSign
// temporarily rescale are copied by value, which Go's struct assignment
// already does.
func (p Parameters[T]) Clone() Parameters[T] {
	return p
}

// MessageModulus is the plaintext modulus gates encode into: 4, placing
// plaintexts at {0, q/4, q/2, 3q/4} as spec.md §4.1 requires.
func (p Parameters[T]) MessageModulus() T {
	return 4
}

// Compile derives gadget vectors, the NTT-friendly polynomial ring, and
// validates the invariants from spec.md §3. It panics on a malformed
// literal: these are construction-time configuration errors, not
// runtime conditions a caller can recover from (the teacher's
// ParametersLiteral.Compile follows the same convention, see
// OurFDFB_test.go's assert.NotPanics).
func (lit ParametersLiteral[T]) Compile() Parameters[T] {
	twoN := T(2 * lit.PolyDegree)
	if uint64(twoN)%uint64(lit.LWEModulus) != 0 {
		panic("tfhe: LWEModulus must divide 2*PolyDegree")
	}
	if lit.LWEDimension >= lit.PolyDegree {
		panic("tfhe: LWEDimension must be smaller than PolyDegree")
	}
	if uint64(lit.LWEModulus)%4 != 0 {
		panic("tfhe: LWEModulus must be divisible by 4 (spec.md §9 open question on q/4 rounding)")
	}
	if _, err := NewAccumulator(lit.AccumulatorMethod); err != nil {
		panic("tfhe: " + err.Error())
	}

	ring := poly.NewRing[T](lit.PolyDegree, lit.RingModulus)

	brLit := GadgetParametersLiteral[T]{Base: lit.BlindRotateBaseG, Level: lit.BlindRotateLevel}
	gadget := compileGadgetReal(brLit, lit.RingModulus)

	ksLit := GadgetParametersLiteral[T]{Base: lit.KeySwitchBase, Level: lit.KeySwitchLevel}
	ksGadget := compileGadgetReal(ksLit, lit.KeySwitchModulus)

	digitsR := digitCount(lit.LWEModulus, lit.BlindRotateBaseR)

	return Parameters[T]{
		LWEParams: LWEParams[T]{
			n: lit.LWEDimension, N: lit.PolyDegree,
			q: lit.LWEModulus, Q: lit.RingModulus, qKS: lit.KeySwitchModulus,
			lweStdDev: lit.LWEStdDev, rlweStdDev: lit.RLWEStdDev,
		},
		RGSWParams: RGSWParams[T]{
			gadget: gadget, keySwitch: ksGadget,
			baseR: lit.BlindRotateBaseR, digitsR: digitsR,
			ring: ring, method: lit.AccumulatorMethod,
		},
	}
}

func digitCount[T num.Uint](q, base T) int {
	n := 0
	x := uint64(q)
	b := uint64(base)
	for x > 1 {
		x = (x + b - 1) / b
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

func compileGadgetReal[T num.Uint](lit GadgetParametersLiteral[T], mod T) GadgetParameters[T] {
	pow := make([]T, lit.Level)
	cur := uint64(1) % uint64(mod)
	for i := 0; i < lit.Level; i++ {
		pow[i] = T(cur)
		cur = (cur * uint64(lit.Base)) % uint64(mod)
	}
	return GadgetParameters[T]{Base: lit.Base, Level: lit.Level, Pow: pow}
}

// EstimateFailureProbability returns a rough, closed-form estimate of
// the post-bootstrap decryption failure probability under a standard
// Gaussian noise tail bound, following the same shape as the teacher's
// EstimateFailureProbability: failure occurs when the accumulated noise
// exceeds q/8 (half of the q/4 gap between adjacent plaintexts, which
// sit at {0, q/4, q/2, 3q/4}).
func (p Parameters[T]) EstimateFailureProbability() float64 {
	// The accumulator's noise is absolute (see csprng.GaussianSampler),
	// carried in the Q-scale ring; scale it down by q/Q to compare
	// against the q-scale failure bound below, the same rescaling
	// ModSwitch applies to the ciphertext itself.
	sigma := p.rlweStdDev * float64(p.q) / float64(p.Q)
	bound := float64(p.q) / 8
	if sigma <= 0 {
		return 0
	}
	z := bound / (sigma * math.Sqrt(2))
	return math.Erfc(z)
}
