package dcrt

import (
	"errors"
	"fmt"
	"math/big"
	"os"
)

// Context carries the immutable cryptographic parameters: ring dimension,
// CRT modulus chain, gadget base and Gaussian width. It is constructed
// once at setup, shared by pointer and never mutated.
type Context struct {
	n     int
	qi    []uint64
	q     *big.Int
	base  uint64
	sigma float64
	k     int // gadget digits: smallest k with base^k >= q

	backend LimbBackend
}

// NewContext builds a Context over the Lattigo limb backend. The primes
// must be pairwise distinct NTT-friendly primes (q_i = 1 mod 2n).
func NewContext(n int, qi []uint64, base uint64, sigma float64) (*Context, error) {
	be, err := newLattigoBackend(n, qi)
	if err != nil {
		return nil, fmt.Errorf("dcrt: build limb backend: %w", err)
	}
	return newContext(n, qi, base, sigma, be)
}

// NewContextWithBackend builds a Context over a caller-supplied limb
// backend, for testing the core against alternative arithmetic.
func NewContextWithBackend(n int, qi []uint64, base uint64, sigma float64, be LimbBackend) (*Context, error) {
	return newContext(n, qi, base, sigma, be)
}

func newContext(n int, qi []uint64, base uint64, sigma float64, be LimbBackend) (*Context, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, errors.New("dcrt: ring dimension must be a power of two")
	}
	if len(qi) == 0 {
		return nil, errors.New("dcrt: empty modulus chain")
	}
	seen := make(map[uint64]bool, len(qi))
	for _, p := range qi {
		if seen[p] {
			return nil, fmt.Errorf("dcrt: duplicate prime %d in modulus chain", p)
		}
		seen[p] = true
	}
	if base < 2 {
		return nil, errors.New("dcrt: gadget base must be at least 2")
	}
	if sigma <= 0 {
		return nil, errors.New("dcrt: gaussian width must be positive")
	}

	q := big.NewInt(1)
	for _, p := range qi {
		q.Mul(q, new(big.Int).SetUint64(p))
	}

	// k = ceil(log_base q)
	k := 0
	pow := big.NewInt(1)
	bb := new(big.Int).SetUint64(base)
	for pow.Cmp(q) < 0 {
		pow.Mul(pow, bb)
		k++
	}
	if k < 2 {
		return nil, fmt.Errorf("dcrt: base %d covers the modulus in %d digit(s); the gadget needs at least 2", base, k)
	}

	ctx := &Context{
		n:       n,
		qi:      append([]uint64(nil), qi...),
		q:       q,
		base:    base,
		sigma:   sigma,
		k:       k,
		backend: be,
	}
	dbg(os.Stderr, "[dcrt] context N=%d limbs=%d base=%d digits=%d\n", n, len(qi), base, k)
	return ctx, nil
}

// defaultChain is a three-prime NTT-friendly chain (about 90 modulus
// bits). Every prime has 2-adicity at least 23, so the chain serves any
// ring dimension up to 2^22.
var defaultChain = []uint64{998244353, 754974721, 469762049}

// TestContext returns the small parameter set used throughout the test
// suite: n=16 over three 30-bit NTT primes, gadget base 8.
func TestContext() (*Context, error) {
	return NewContext(16, defaultChain, 8, 3.19)
}

// PresetContext builds a context of dimension 2^logN over the default
// prime chain with the given gadget base.
func PresetContext(logN int, base uint64) (*Context, error) {
	if logN < 1 || logN > 22 {
		return nil, fmt.Errorf("dcrt: logN %d outside the default chain's range", logN)
	}
	return NewContext(1<<logN, defaultChain, base, 3.19)
}

// N returns the ring dimension.
func (c *Context) N() int { return c.n }

// Moduli returns the CRT prime chain, in order.
func (c *Context) Moduli() []uint64 { return append([]uint64(nil), c.qi...) }

// Levels returns the number of CRT limbs.
func (c *Context) Levels() int { return len(c.qi) }

// Modulus returns a copy of the full modulus q = prod q_i.
func (c *Context) Modulus() *big.Int { return new(big.Int).Set(c.q) }

// Base returns the gadget base.
func (c *Context) Base() uint64 { return c.base }

// Sigma returns the Gaussian width parameter.
func (c *Context) Sigma() float64 { return c.sigma }

// Digits returns the gadget length ceil(log_base q). It bounds the size
// growth of decomposed matrices and, transitively, the number of
// encoding levels a parameter set supports.
func (c *Context) Digits() int { return c.k }

// Backend returns the limb arithmetic service.
func (c *Context) Backend() LimbBackend { return c.backend }

// Same reports whether two contexts carry identical parameters: ring,
// gadget base and Gaussian width.
func (c *Context) Same(other *Context) bool {
	if c == other {
		return true
	}
	if other == nil || c.n != other.n || len(c.qi) != len(other.qi) {
		return false
	}
	for i, p := range c.qi {
		if other.qi[i] != p {
			return false
		}
	}
	return c.base == other.base && c.sigma == other.sigma
}
