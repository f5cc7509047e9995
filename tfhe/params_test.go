package tfhe_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/dkbh/tfhecore/math/num"
	"github.com/dkbh/tfhecore/tfhe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var presets32 = []tfhe.Preset{tfhe.PresetTOY, tfhe.PresetMEDIUM}

var presets64 = []tfhe.Preset{
	tfhe.PresetSTD128AP, tfhe.PresetSTD128APOpt,
	tfhe.PresetSTD128, tfhe.PresetSTD128Opt,
	tfhe.PresetSTD192, tfhe.PresetSTD192Opt,
	tfhe.PresetSTD256, tfhe.PresetSTD256Opt,
	tfhe.PresetSTD128Q, tfhe.PresetSTD128QOpt,
	tfhe.PresetSTD192Q, tfhe.PresetSTD192QOpt,
	tfhe.PresetSTD256Q, tfhe.PresetSTD256QOpt,
	tfhe.PresetSignedModTest,
}

func TestPresetsCompile32(t *testing.T) {
	for _, p := range presets32 {
		lit := tfhe.Uint32Presets(p)
		t.Run(fmt.Sprintf("n=%d/N=%d", lit.LWEDimension, lit.PolyDegree), func(t *testing.T) {
			assert.NotPanics(t, func() { lit.Compile() })
		})
	}
}

func TestPresetsCompile64(t *testing.T) {
	for _, p := range presets64 {
		lit := tfhe.Uint64Presets(p)
		t.Run(fmt.Sprintf("n=%d/Q=%d", lit.LWEDimension, lit.RingModulus), func(t *testing.T) {
			assert.NotPanics(t, func() { lit.Compile() })
		})
	}
}

func TestCompileRejectsModulusNotDividingTwoN(t *testing.T) {
	lit := tfhe.Uint32Presets(tfhe.PresetTOY)
	lit.LWEModulus = 7 // 7 does not divide 2*16=32
	assert.Panics(t, func() { lit.Compile() })
}

func TestCompileRejectsModulusNotDivisibleByFour(t *testing.T) {
	lit := tfhe.Uint32Presets(tfhe.PresetTOY)
	lit.LWEModulus = 2
	lit.PolyDegree = 16
	assert.Panics(t, func() { lit.Compile() })
}

func TestMessageModulusIsFour(t *testing.T) {
	params := tfhe.Uint32Presets(tfhe.PresetTOY).Compile()
	assert.Equal(t, uint32(4), params.MessageModulus())
}

func TestEstimateFailureProbabilityDecreasesWithMargin(t *testing.T) {
	tight := tfhe.Uint32Presets(tfhe.PresetTOY)
	tight.RLWEStdDev = 50.0
	loose := tfhe.Uint32Presets(tfhe.PresetTOY)
	loose.RLWEStdDev = 1.0

	pTight := tight.Compile().EstimateFailureProbability()
	pLoose := loose.Compile().EstimateFailureProbability()
	assert.Greater(t, pTight, pLoose)
	assert.False(t, math.IsNaN(pTight))
}

func TestNewAccumulatorRejectsGINX(t *testing.T) {
	_, err := tfhe.NewAccumulator(tfhe.AccumulatorGINX)
	require.Error(t, err)

	var tfheErr *tfhe.Error
	require.ErrorAs(t, err, &tfheErr)
	assert.Equal(t, tfhe.ErrNotImplemented, tfheErr.Kind)
}

func TestCompileRejectsGINXAccumulatorMethod(t *testing.T) {
	lit := tfhe.Uint32Presets(tfhe.PresetTOY)
	lit.AccumulatorMethod = tfhe.AccumulatorGINX
	assert.Panics(t, func() { lit.Compile() })
}

func TestClonePreservesMessageModulus(t *testing.T) {
	params := tfhe.Uint32Presets(tfhe.PresetMEDIUM).Compile()
	clone := params.Clone()
	assert.Equal(t, params.MessageModulus(), clone.MessageModulus())
	_ = num.Log2(uint64(params.MessageModulus()))
}
