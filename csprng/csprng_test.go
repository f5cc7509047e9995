package csprng_test

import (
	"testing"

	"github.com/dkbh/tfhecore/csprng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSamplerStaysInRange(t *testing.T) {
	s := csprng.NewUniformSampler()
	const q = uint64(12289)
	for i := 0; i < 2000; i++ {
		x := s.Sample(q)
		require.Less(t, x, q)
	}
}

func TestSamplePolyFillsEveryCoefficient(t *testing.T) {
	s := csprng.NewUniformSampler()
	out := make([]uint64, 64)
	csprng.SamplePoly(s, uint64(97), out)

	seenNonzero := false
	for _, v := range out {
		assert.Less(t, v, uint64(97))
		if v != 0 {
			seenNonzero = true
		}
	}
	assert.True(t, seenNonzero, "64 uniform draws mod 97 should not all be zero")
}

func TestGaussianSamplerCentered(t *testing.T) {
	g := csprng.NewGaussianSampler(3.2)
	var sum float64
	const trials = 4000
	for i := 0; i < trials; i++ {
		sum += g.SampleFloat()
	}
	mean := sum / trials
	assert.InDelta(t, 0.0, mean, 0.5, "sample mean should be close to zero")
}

func TestGaussianSampleModQInRange(t *testing.T) {
	g := csprng.NewGaussianSampler(3.2)
	const q = uint64(1024)
	for i := 0; i < 1000; i++ {
		x := g.Sample(q)
		require.Less(t, x, q)
	}
}
