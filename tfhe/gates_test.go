package tfhe_test

import (
	"fmt"
	"testing"

	"github.com/dkbh/tfhecore/csprng"
	"github.com/dkbh/tfhecore/tfhe"
	"github.com/stretchr/testify/require"
)

func mediumEvaluator(t *testing.T) (*tfhe.Evaluator[uint32], tfhe.LWESecretKey[uint32], uint32) {
	t.Helper()
	params := tfhe.Uint32Presets(tfhe.PresetMEDIUM).Compile()
	uniform := csprng.NewUniformSampler()
	rlweGauss := csprng.NewGaussianSampler(params.StdDevRLWE())

	sk := tfhe.GenLWESecretKey(params, uniform)
	key := tfhe.KeyGen(params, sk, uniform, rlweGauss)
	return tfhe.NewEvaluator(params, key), sk, params.Q_q()
}

func encryptBit(sk tfhe.LWESecretKey[uint32], q uint32, bit int, uniform *csprng.UniformSampler, gauss *csprng.GaussianSampler) tfhe.LWECiphertext[uint32] {
	return tfhe.Encrypt(sk, q, uint32(bit)*(q/4), uniform, gauss)
}

func decryptBit(sk tfhe.LWESecretKey[uint32], ct tfhe.LWECiphertext[uint32], q uint32) int {
	got := tfhe.Decrypt(sk, ct, q)
	if got < q/4 {
		return 0
	}
	return 1
}

func TestEvalBinGateTruthTables(t *testing.T) {
	eval, sk, q := mediumEvaluator(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(eval.Params.StdDevLWE())

	truth := map[tfhe.Gate]func(a, b int) int{
		tfhe.GateAND:  func(a, b int) int { return a & b },
		tfhe.GateOR:   func(a, b int) int { return a | b },
		tfhe.GateNAND: func(a, b int) int { return 1 - (a & b) },
		tfhe.GateNOR:  func(a, b int) int { return 1 - (a | b) },
		tfhe.GateXOR:  func(a, b int) int { return a ^ b },
		tfhe.GateXNOR: func(a, b int) int { return 1 - (a ^ b) },
	}

	for gate, f := range truth {
		for _, a := range []int{0, 1} {
			for _, b := range []int{0, 1} {
				name := fmt.Sprintf("%v(%d,%d)", gate, a, b)
				t.Run(name, func(t *testing.T) {
					ct0 := encryptBit(sk, q, a, uniform, gauss)
					ct1 := encryptBit(sk, q, b, uniform, gauss)
					out, err := eval.EvalBinGate(gate, ct0, ct1)
					require.NoError(t, err)
					require.Equal(t, f(a, b), decryptBit(sk, out, q))
				})
			}
		}
	}
}

func TestEvalNOT(t *testing.T) {
	eval, sk, q := mediumEvaluator(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(eval.Params.StdDevLWE())

	for _, bit := range []int{0, 1} {
		ct := encryptBit(sk, q, bit, uniform, gauss)
		out := eval.EvalNOT(ct)
		require.Equal(t, 1-bit, decryptBit(sk, out, q))
	}
}

func TestBootstrapIdempotent(t *testing.T) {
	eval, sk, q := mediumEvaluator(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(eval.Params.StdDevLWE())

	for _, bit := range []int{0, 1} {
		ct := encryptBit(sk, q, bit, uniform, gauss)
		refreshed, err := eval.Bootstrap(ct)
		require.NoError(t, err)
		require.Equal(t, bit, decryptBit(sk, refreshed, q))

		twice, err := eval.Bootstrap(refreshed)
		require.NoError(t, err)
		require.Equal(t, bit, decryptBit(sk, twice, q))
	}
}

func TestBootstrapRejectsWrongDimensionCiphertext(t *testing.T) {
	eval, _, _ := mediumEvaluator(t)

	bad := tfhe.NewLWECiphertext[uint32](eval.Params.N_() + 1)
	_, err := eval.Bootstrap(bad)
	require.Error(t, err)

	var tfheErr *tfhe.Error
	require.ErrorAs(t, err, &tfheErr)
	require.Equal(t, tfhe.ErrArithmetic, tfheErr.Kind)
}

func TestEvalBinGateRejectsAliasedInputs(t *testing.T) {
	eval, sk, q := mediumEvaluator(t)
	uniform := csprng.NewUniformSampler()
	gauss := csprng.NewGaussianSampler(eval.Params.StdDevLWE())

	ct := encryptBit(sk, q, 1, uniform, gauss)
	_, err := eval.EvalBinGate(tfhe.GateAND, ct, ct)
	require.Error(t, err)

	var tfheErr *tfhe.Error
	require.ErrorAs(t, err, &tfheErr)
	require.Equal(t, tfhe.ErrConfig, tfheErr.Kind)
}
