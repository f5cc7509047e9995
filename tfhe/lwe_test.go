package tfhe_test

import (
	"testing"

	"github.com/dkbh/tfhecore/csprng"
	"github.com/dkbh/tfhecore/tfhe"
	"github.com/stretchr/testify/require"
)

func toyParams(t *testing.T) tfhe.Parameters[uint32] {
	t.Helper()
	return tfhe.Uint32Presets(tfhe.PresetTOY).Compile()
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	params := toyParams(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(params.StdDevLWE())

	sk := tfhe.GenLWESecretKey(params, uniform)
	for _, bit := range []uint32{0, 1} {
		scaled := bit * (params.Q_q() / 4)
		ct := tfhe.Encrypt(sk, params.Q_q(), scaled, uniform, gauss)
		got := tfhe.Decrypt(sk, ct, params.Q_q())
		require.InDelta(t, int(scaled), int(got), 1)
	}
}

func TestEvalAddEqMatchesPlaintextSum(t *testing.T) {
	params := toyParams(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(params.StdDevLWE())
	sk := tfhe.GenLWESecretKey(params, uniform)
	q := params.Q_q()

	ct1 := tfhe.Encrypt(sk, q, q/4, uniform, gauss)
	ct2 := tfhe.Encrypt(sk, q, q/4, uniform, gauss)
	sum := tfhe.EvalAddEq(ct1, ct2, q)

	got := tfhe.Decrypt(sk, sum, q)
	require.InDelta(t, int(q/2), int(got), 1)
}

func TestModSwitchPreservesRoundedValue(t *testing.T) {
	params := toyParams(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(params.StdDevLWE())
	sk := tfhe.GenLWESecretKey(params, uniform)
	q := params.Q_q()

	ct := tfhe.Encrypt(sk, q, q/4, uniform, gauss)
	down := tfhe.ModSwitch(ct, q, q/2)
	up := tfhe.ModSwitch(down, q/2, q)

	got := tfhe.Decrypt(sk, up, q)
	require.InDelta(t, int(q/4), int(got), 2)
}
