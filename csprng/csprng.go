// Package csprng implements the uniform and discrete-Gaussian samplers
// that spec.md treats as externally supplied collaborators. Key
// generation and fresh-encryption noise both route through here; no
// evaluation-path code depends on randomness, matching the "calls are a
// pure function of their inputs" requirement on evaluation (spec.md §5).
package csprng

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/dkbh/tfhecore/math/num"
)

// UniformSampler draws uniform residues mod q from a ChaCha20 keystream
// seeded once from crypto/rand. Reusing one keyed stream per sampler
// avoids re-keying per draw while still giving each KeyGen call an
// independent, unpredictable stream. A sampler is safe for concurrent
// use; draws are serialized on an internal lock.
type UniformSampler struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
}

// NewUniformSampler creates a sampler seeded from the system CSPRNG.
func NewUniformSampler() *UniformSampler {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		panic("csprng: failed to seed uniform sampler: " + err.Error())
	}
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		panic("csprng: failed to seed uniform sampler: " + err.Error())
	}
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic("csprng: " + err.Error())
	}
	return &UniformSampler{cipher: c}
}

func (s *UniformSampler) nextUint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf [8]byte
	s.cipher.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Sample draws a single uniform residue in [0, q).
func (s *UniformSampler) Sample(q uint64) uint64 {
	// Rejection sampling removes the small modulo bias for q that does
	// not divide 2^64.
	lim := (math.MaxUint64 / q) * q
	for {
		x := s.nextUint64()
		if x < lim {
			return x % q
		}
	}
}

// SampleSlice fills out with uniform residues mod q.
func (s *UniformSampler) SampleSlice(q uint64, out []uint64) {
	for i := range out {
		out[i] = s.Sample(q)
	}
}

// SamplePoly fills out with uniform residues mod q.
func SamplePoly[T num.Uint](s *UniformSampler, q T, out []T) {
	for i := range out {
		out[i] = T(s.Sample(uint64(q)))
	}
}

// GaussianSampler draws discrete-Gaussian noise with a fixed standard
// deviation, via Box-Muller over a ChaCha20 stream of its own (an
// internal UniformSampler seeded independently at construction). A
// sampler is safe for concurrent use.
type GaussianSampler struct {
	uniform *UniformSampler
	stdDev  float64
	mu      sync.Mutex
	cached  float64
	hasNext bool
}

// NewGaussianSampler creates a sampler with the given standard
// deviation, expressed in absolute Z_q units (spec.md §3's LWEStdDev/
// RLWEStdDev: a small value like 3.19, independent of q, added directly
// to a ciphertext component).
func NewGaussianSampler(stdDev float64) *GaussianSampler {
	return &GaussianSampler{uniform: NewUniformSampler(), stdDev: stdDev}
}

func (s *GaussianSampler) nextFloat() float64 {
	const scale = 1.0 / (1 << 53)
	return float64(s.uniform.nextUint64()>>11) * scale
}

// SampleFloat draws one real-valued Gaussian sample with the sampler's
// standard deviation.
func (s *GaussianSampler) SampleFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasNext {
		s.hasNext = false
		return s.cached
	}
	u1, u2 := s.nextFloat(), s.nextFloat()
	for u1 <= 1e-300 {
		u1 = s.nextFloat()
	}
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	s.cached = r * math.Sin(theta) * s.stdDev
	s.hasNext = true
	return r * math.Cos(theta) * s.stdDev
}

// Sample draws a discrete error term in Z_q by rounding a real Gaussian
// sample (already in absolute units) and reducing mod q.
func (s *GaussianSampler) Sample(q uint64) uint64 {
	x := int64(math.Round(s.SampleFloat()))
	xi := x % int64(q)
	if xi < 0 {
		xi += int64(q)
	}
	return uint64(xi)
}

// SampleSlice fills out with independent discrete Gaussian error terms
// mod q.
func (s *GaussianSampler) SampleSlice(q uint64, out []uint64) {
	for i := range out {
		out[i] = s.Sample(q)
	}
}

// SampleGaussianPoly fills out with independent discrete Gaussian error
// terms mod q, for use as RLWE encryption-of-zero noise in KeyGenAP.
func SampleGaussianPoly[T num.Uint](s *GaussianSampler, q T, out []T) {
	for i := range out {
		out[i] = T(s.Sample(uint64(q)))
	}
}
