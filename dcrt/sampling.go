package dcrt

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/tuneinsight/lattigo/v4/utils"
	"golang.org/x/crypto/sha3"
)

// SeededPRNG derives a keyed PRNG from a master seed and a domain
// separation tag, so that every consumer of randomness in the pipeline
// gets an independent, reproducible stream.
func SeededPRNG(seed []byte, tag string) (utils.PRNG, error) {
	h := sha3.New256()
	h.Write(seed)
	h.Write([]byte(tag))
	prng, err := utils.NewKeyedPRNG(h.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("dcrt: keyed prng: %w", err)
	}
	return prng, nil
}

// SeededRand derives a deterministic math/rand source from a master
// seed and tag, for the rejection-based Gaussian samplers.
func SeededRand(seed []byte, tag string) *rand.Rand {
	h := sha3.Sum256(append(append([]byte{}, seed...), []byte(tag)...))
	s := int64(binary.LittleEndian.Uint64(h[:8]) & 0x7FFFFFFFFFFFFFFF)
	return rand.New(rand.NewSource(s))
}

// UniformElement draws a uniform ring element from the given PRNG, in
// coefficient domain.
func (c *Context) UniformElement(prng utils.PRNG) *RingElement {
	return &RingElement{ctx: c, poly: c.backend.UniformPoly(prng), dom: Coeff}
}

// UniformElementSeeded draws a uniform ring element deterministically
// from (seed, tag), the hash-sampler entry point.
func (c *Context) UniformElementSeeded(seed []byte, tag string) (*RingElement, error) {
	prng, err := SeededPRNG(seed, tag)
	if err != nil {
		return nil, err
	}
	return c.UniformElement(prng), nil
}

// GaussianElement draws a ring element with i.i.d. D_Z(0, sigma)
// coefficients, reduced into every limb. The result is in coefficient
// domain; the signed integer draws are returned alongside so callers
// that track short vectors exactly (the trapdoor) keep them.
func (c *Context) GaussianElement(rng *rand.Rand, sigma float64) (*RingElement, []int64) {
	g := NewGaussianSampler(rng, sigma)
	ints := make([]int64, c.n)
	for i := range ints {
		ints[i] = g.Draw(0)
	}
	return c.FromSignedCoeffs(ints), ints
}
