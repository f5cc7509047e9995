package tfhe

// Preset names the enumerated parameter-set selector from spec.md §6.
// The catalog it resolves to is ambient plumbing this module needs to be
// buildable and testable; spec.md marks the actual security-parameter
// design external to this core (see DESIGN.md).
type Preset int

const (
	PresetTOY Preset = iota
	PresetMEDIUM
	PresetSTD128AP
	PresetSTD128APOpt
	PresetSTD128
	PresetSTD128Opt
	PresetSTD192
	PresetSTD192Opt
	PresetSTD256
	PresetSTD256Opt
	PresetSTD128Q
	PresetSTD128QOpt
	PresetSTD192Q
	PresetSTD192QOpt
	PresetSTD256Q
	PresetSTD256QOpt
	PresetSignedModTest
)

// Uint32Presets resolves a Preset to a ParametersLiteral[uint32], for the
// 32-bit toy/medium tier used by fast tests.
func Uint32Presets(p Preset) ParametersLiteral[uint32] {
	switch p {
	case PresetTOY:
		return ParametersLiteral[uint32]{
			LWEDimension: 4, PolyDegree: 16,
			LWEModulus: 8, RingModulus: 12289, KeySwitchModulus: 97,
			LWEStdDev: 3.2, RLWEStdDev: 3.19,
			BlindRotateBaseG: 16, BlindRotateLevel: 4,
			KeySwitchBase: 4, KeySwitchLevel: 4,
			BlindRotateBaseR: 8,
			AccumulatorMethod: AccumulatorAP,
		}
	case PresetMEDIUM:
		return ParametersLiteral[uint32]{
			LWEDimension: 16, PolyDegree: 1024,
			LWEModulus: 512, RingModulus: 12289, KeySwitchModulus: 1021,
			LWEStdDev: 3.2, RLWEStdDev: 3.19,
			BlindRotateBaseG: 128, BlindRotateLevel: 2,
			KeySwitchBase: 4, KeySwitchLevel: 7,
			BlindRotateBaseR: 512,
			AccumulatorMethod: AccumulatorAP,
		}
	default:
		panic("tfhe: preset not available at 32-bit precision, use Uint64Presets")
	}
}

// Uint64Presets resolves a Preset to a ParametersLiteral[uint64]. All
// STD* entries share PolyDegree=1024 and a base ring modulus congruent
// to 1 mod 2048, verified to admit a primitive 2048-th root of unity;
// they differ in ring modulus bit-width (the nominal "security level")
// and LWE dimension. The _OPT variants use a coarser blind-rotation
// gadget (fewer, larger digits) trading a wider noise budget for fewer
// external-product terms; the Q-suffixed variants keep q=512 and use a
// wider ring modulus (about 2^39 instead of 2^26-2^29), matching the
// distinction spec.md §6 names but leaves unspecified.
func Uint64Presets(p Preset) ParametersLiteral[uint64] {
	const N = 1024
	const q = 512
	base := func(n int, Q, qKS uint64, baseG uint64, levelG int, baseR uint64) ParametersLiteral[uint64] {
		return ParametersLiteral[uint64]{
			LWEDimension: n, PolyDegree: N,
			LWEModulus: q, RingModulus: Q, KeySwitchModulus: qKS,
			LWEStdDev: 3.2, RLWEStdDev: 3.19,
			BlindRotateBaseG: baseG, BlindRotateLevel: levelG,
			KeySwitchBase: 4, KeySwitchLevel: 10,
			BlindRotateBaseR: baseR,
			AccumulatorMethod: AccumulatorAP,
		}
	}
	switch p {
	case PresetSTD128AP:
		return base(458, 67127297, 1031, 1<<9, 3, q)
	case PresetSTD128APOpt:
		return base(458, 67127297, 1031, 1<<14, 2, q)
	case PresetSTD128:
		return base(512, 67153921, 1031, 1<<9, 3, q)
	case PresetSTD128Opt:
		return base(512, 67153921, 1031, 1<<14, 2, q)
	case PresetSTD192:
		return base(805, 536881153, 2053, 1<<10, 3, q)
	case PresetSTD192Opt:
		return base(805, 536881153, 2053, 1<<15, 2, q)
	case PresetSTD256:
		return base(990, 536903681, 2053, 1<<10, 3, q)
	case PresetSTD256Opt:
		return base(990, 536903681, 2053, 1<<15, 2, q)
	case PresetSTD128Q:
		return base(512, 549755860993, 4099, 1<<14, 3, q)
	case PresetSTD128QOpt:
		return base(512, 549755860993, 4099, 1<<20, 2, q)
	case PresetSTD192Q:
		return base(805, 549755873281, 4099, 1<<14, 3, q)
	case PresetSTD192QOpt:
		return base(805, 549755873281, 4099, 1<<20, 2, q)
	case PresetSTD256Q:
		return base(990, 549755904001, 4099, 1<<14, 3, q)
	case PresetSTD256QOpt:
		return base(990, 549755904001, 4099, 1<<20, 2, q)
	case PresetSignedModTest:
		return base(32, 562949953443841, 8209, 1<<17, 3, q)
	default:
		panic("tfhe: preset not available at 64-bit precision, use Uint32Presets")
	}
}
