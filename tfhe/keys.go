package tfhe

import (
	"github.com/dkbh/tfhecore/csprng"
	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/math/poly"
)

// RingSecretKey is the length-N secret used by the accumulator, derived
// from the LWE secret that keying material is generated for (spec.md
// §4.2's "ring secret skNTT").
type RingSecretKey[T num.Uint] struct {
	Coeffs poly.Poly[T]
	NTT    poly.FourierPoly[T]
}

// GenRingSecretKey samples a fresh binary ring secret and precomputes
// its evaluation-form representation, which is all KeyGenAP ever needs.
func GenRingSecretKey[T num.Uint](params Parameters[T], uniform *csprng.UniformSampler) RingSecretKey[T] {
	ring := params.ring
	sk := ring.NewPoly()
	for i := range sk.Coeffs {
		sk.Coeffs[i] = T(uniform.Sample(2))
	}
	nttForm := ring.NewFourierPoly()
	ring.ToFourierPolyAssign(sk, nttForm)
	return RingSecretKey[T]{Coeffs: sk, NTT: nttForm}
}

// GenLWESecretKey samples a fresh LWE secret of dimension n, with
// entries in {0,1} (a binary secret is the common case for these
// presets; the accumulator's signed-digit machinery works for any small
// secret, so this is a choice of key distribution, not a core
// restriction).
func GenLWESecretKey[T num.Uint](params Parameters[T], uniform *csprng.UniformSampler) LWESecretKey[T] {
	sk := LWESecretKey[T]{Value: make([]T, params.n)}
	for i := range sk.Value {
		sk.Value[i] = T(uniform.Sample(2))
	}
	return sk
}

// BTKey bundles the blind-rotation key and key-switching key that every
// bootstrap, gate, and large-precision call needs (spec.md §3's BTKey).
type BTKey[T num.Uint] struct {
	BSKey BSKey[T]
	KSKey KSKey[T]
	// BaseGKeys holds an alternate BSKey per base_G, populated only when
	// dynamic-base large-precision evaluation is requested (spec.md §9,
	// "Dynamic base-G map"). A caller using a single static base leaves
	// this nil.
	BaseGKeys map[uint64]BSKey[T]
}

// KeyGen generates a fresh BTKey for lweSecret under params: the ring
// secret is sampled internally, the blind-rotation key is generated in
// parallel over its n independent rows, and the key-switching key is
// generated from the extracted ring secret back to lweSecret (spec.md
// §6's KeyGen(params, LWEsk) -> BTKey).
func KeyGen[T num.Uint](params Parameters[T], lweSecret LWESecretKey[T], uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) BTKey[T] {
	ringSecret := GenRingSecretKey(params, uniform)
	bsKey := KeyGenACC(params, ringSecret.NTT, lweSecret, uniform, gauss)
	ksKey := KeySwitchGen(params, ringSecret.Coeffs.Coeffs, lweSecret, uniform, gauss)
	return BTKey[T]{BSKey: bsKey, KSKey: ksKey}
}

// KeyGenDynamicBase generates a BTKey whose BaseGKeys map has one entry
// per base in bases, plus the default BSKey generated at params'
// configured base_G. Populating exactly 3 entries triggers the dynamic
// base-G schedule in EvalSign/EvalDecomp (spec.md §9).
func KeyGenDynamicBase[T num.Uint](params Parameters[T], lweSecret LWESecretKey[T], bases []T, uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) BTKey[T] {
	// One ring secret backs every key below: the default BSKey, the
	// KSKey, and each BaseGKeys entry all have to agree on the secret
	// the accumulator and key-switch were built against, so this must
	// not call KeyGen (which would sample its own, independent secret).
	ringSecret := GenRingSecretKey(params, uniform)
	bsKey := KeyGenACC(params, ringSecret.NTT, lweSecret, uniform, gauss)
	ksKey := KeySwitchGen(params, ringSecret.Coeffs.Coeffs, lweSecret, uniform, gauss)

	base := BTKey[T]{BSKey: bsKey, KSKey: ksKey}
	base.BaseGKeys = make(map[uint64]BSKey[T], len(bases))
	for _, g := range bases {
		p := params
		p.gadget = compileGadgetReal(GadgetParametersLiteral[T]{Base: g, Level: p.gadget.Level}, p.Q)
		base.BaseGKeys[uint64(g)] = KeyGenACC(p, ringSecret.NTT, lweSecret, uniform, gauss)
	}
	return base
}
