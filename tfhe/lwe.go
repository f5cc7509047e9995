package tfhe

import (
	"math/bits"

	"github.com/dkbh/tfhecore/csprng"
	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/math/vec"
)

// LWECiphertext is an LWE ciphertext (a, b) encrypting a plaintext in
// b - <a,s> (spec.md §3). The modulus it lives under is implicit from
// context (q, q_KS, or bigger_q); callers are responsible for not mixing
// ciphertexts under different moduli.
type LWECiphertext[T num.Uint] struct {
	A []T
	B T
}

// NewLWECiphertext allocates a zeroed ciphertext of dimension n.
func NewLWECiphertext[T num.Uint](n int) LWECiphertext[T] {
	return LWECiphertext[T]{A: make([]T, n)}
}

// Copy returns an independent copy of ct.
func (ct LWECiphertext[T]) Copy() LWECiphertext[T] {
	out := NewLWECiphertext[T](len(ct.A))
	vec.CopyAssign(ct.A, out.A)
	out.B = ct.B
	return out
}

// Equal reports whether ct and other share the same underlying slice;
// used by EvalBinGate to reject aliased inputs (spec.md §4.4).
func (ct LWECiphertext[T]) Equal(other LWECiphertext[T]) bool {
	if len(ct.A) == 0 || len(other.A) == 0 {
		return false
	}
	return &ct.A[0] == &other.A[0]
}

// LWESecretKey is a length-n vector of small secret coefficients, held
// in [0, q) but interpreted in the signed range (-q/2, q/2] wherever
// the accumulator needs a signed exponent (spec.md §4.2).
type LWESecretKey[T num.Uint] struct {
	Value []T
}

// EvalAddEq returns ct0 + ct1 mod q, matching dimensions and modulus.
func EvalAddEq[T num.Uint](ct0, ct1 LWECiphertext[T], q T) LWECiphertext[T] {
	out := NewLWECiphertext[T](len(ct0.A))
	vec.AddAssign(ct0.A, ct1.A, q, out.A)
	out.B = (ct0.B + ct1.B) % q
	return out
}

// EvalSubEq returns ct0 - ct1 mod q.
func EvalSubEq[T num.Uint](ct0, ct1 LWECiphertext[T], q T) LWECiphertext[T] {
	out := NewLWECiphertext[T](len(ct0.A))
	vec.SubAssign(ct0.A, ct1.A, q, out.A)
	out.B = (ct0.B + q - ct1.B%q) % q
	return out
}

// EvalAddConstEq adds a plaintext constant to ct.B mod q, leaving A
// untouched.
func EvalAddConstEq[T num.Uint](ct LWECiphertext[T], c, q T) LWECiphertext[T] {
	out := ct.Copy()
	out.B = (ct.B + c) % q
	return out
}

// EvalNegEq returns the additive inverse of ct mod q.
func EvalNegEq[T num.Uint](ct LWECiphertext[T], q T) LWECiphertext[T] {
	out := NewLWECiphertext[T](len(ct.A))
	vec.NegAssign(ct.A, q, out.A)
	if ct.B == 0 {
		out.B = 0
	} else {
		out.B = q - ct.B%q
	}
	return out
}

// ModSwitch rescales ct from modulus qOld to modulus qNew by rounding
// each component, half-to-nearest with ties away from zero (spec.md
// §4.1).
func ModSwitch[T num.Uint](ct LWECiphertext[T], qOld, qNew T) LWECiphertext[T] {
	out := NewLWECiphertext[T](len(ct.A))
	for i, a := range ct.A {
		out.A[i] = num.RoundRatio(a, qNew, qOld, qNew)
	}
	out.B = num.RoundRatio(ct.B, qNew, qOld, qNew)
	return out
}

// Encrypt produces a fresh LWE encryption of msg (already scaled into
// Z_q, e.g. msg*q/4 for a gate bit) under sk. Encryption is outside this
// core's required scope (spec.md §4.1) but is implemented for tests.
func Encrypt[T num.Uint](sk LWESecretKey[T], q T, scaled T, uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) LWECiphertext[T] {
	n := len(sk.Value)
	ct := NewLWECiphertext[T](n)
	csprng.SamplePoly(uniform, q, ct.A)
	var acc uint64
	for i := 0; i < n; i++ {
		acc += uint64(ct.A[i]) * uint64(sk.Value[i])
	}
	e := gauss.Sample(uint64(q))
	ct.B = T((acc+uint64(scaled)+e)%uint64(q)) % q
	return ct
}

// Decrypt recovers the noisy plaintext b - <a,s> mod q.
func Decrypt[T num.Uint](sk LWESecretKey[T], ct LWECiphertext[T], q T) T {
	var acc uint64
	for i, a := range ct.A {
		acc += uint64(a) * uint64(sk.Value[i])
	}
	diff := (uint64(ct.B) + uint64(q) - acc%uint64(q)) % uint64(q)
	return T(diff)
}

// KSKey is a gadget-decomposed key-switching key from a length-N LWE
// secret (the extracted ring secret) to a length-n LWE secret, operating
// modulo q_KS (spec.md §3's KSkey entity).
type KSKey[T num.Uint] struct {
	// Value[i][j] encrypts Gpow[j] * skFrom[i] under skTo, for the
	// key-switch gadget's own base/level (independent of the blind
	// rotation gadget).
	Value [][]LWECiphertext[T]
	n     int
	N     int
	qKS   T
	gadget GadgetParameters[T]
}

// KeySwitchGen produces a key-switching key from skFrom (dimension N,
// the extracted ring secret) to skTo (dimension n), under modulus q_KS
// (spec.md §4.1). Fails fatally (panics) if the dimensions of skTo don't
// match params.n: this is a programmer error in wiring keys together,
// not a runtime condition.
func KeySwitchGen[T num.Uint](params Parameters[T], skFrom []T, skTo LWESecretKey[T], uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) KSKey[T] {
	if len(skTo.Value) != params.n {
		panic("tfhe: KeySwitchGen: skTo dimension does not match params.n")
	}
	ksk := KSKey[T]{
		Value: make([][]LWECiphertext[T], len(skFrom)),
		n:     params.n, N: len(skFrom), qKS: params.qKS, gadget: params.keySwitch,
	}
	for i, s := range skFrom {
		row := make([]LWECiphertext[T], params.keySwitch.Level)
		for j := 0; j < params.keySwitch.Level; j++ {
			scaled := mulModU64(uint64(s), uint64(params.keySwitch.Pow[j]), uint64(params.qKS))
			row[j] = Encrypt(skTo, params.qKS, T(scaled), uniform, gauss)
		}
		ksk.Value[i] = row
	}
	return ksk
}

// KeySwitch replaces an LWE ciphertext under the extracted ring secret
// (dimension N) with one under the dimension-n secret, operating
// modulo q_KS (spec.md §4.1). ctIn must already be reduced mod q_KS by
// the caller (the refresh tail handles this ordering; see bootstrap.go).
//
// KeySwitchGen encrypts +skFrom[i]*Gpow[j] under skTo, so decrypting a
// KSK entry gives b - <a,skTo> = +skFrom[i]*Gpow[j] (this module's own
// Decrypt convention is m = b - <a,s>). Combining ctOut = (0, ctIn.B) -
// Σ d_ij·KSK[i][j] therefore carries -Σ d_ij*skFrom[i]*Gpow[j] = -<ctIn.A,
// skFrom> into ctOut's phase alongside ctIn.B, reproducing ctIn.B -
// <ctIn.A,skFrom> under skTo.
func KeySwitch[T num.Uint](ksk KSKey[T], ctIn LWECiphertext[T]) LWECiphertext[T] {
	out := NewLWECiphertext[T](ksk.n)
	out.B = ctIn.B

	base := uint64(ksk.gadget.Base)
	for i, a := range ctIn.A {
		digits := decomposeUnsignedDigits(uint64(a), base, ksk.gadget.Level, uint64(ksk.qKS))
		for j, d := range digits {
			if d == 0 {
				continue
			}
			row := ksk.Value[i][j]
			subScaled(out, row, T(d), ksk.qKS)
		}
	}
	return out
}

func subScaled[T num.Uint](out LWECiphertext[T], ct LWECiphertext[T], scalar, q T) {
	for i := range out.A {
		term := mulModU64(uint64(scalar), uint64(ct.A[i]), uint64(q))
		out.A[i] = T((uint64(out.A[i]) + uint64(q) - term) % uint64(q))
	}
	term := mulModU64(uint64(scalar), uint64(ct.B), uint64(q))
	out.B = T((uint64(out.B) + uint64(q) - term) % uint64(q))
}

// decomposeUnsignedDigits writes x in base `base`, least-significant
// digit first, truncated to `levels` digits. Used by KeySwitch, which
// (unlike the accumulator's SignedDigitDecompose) only needs an
// unsigned decomposition since q_KS ciphertexts don't feed back into the
// noise-sensitive external product.
func decomposeUnsignedDigits(x, base uint64, levels int, mod uint64) []uint64 {
	digits := make([]uint64, levels)
	for i := 0; i < levels; i++ {
		digits[i] = x % base
		x /= base
	}
	return digits
}

func mulModU64(a, b, q uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, r := bits.Div64(hi, lo, q)
	return r
}
