package dcrt

import (
	"github.com/tuneinsight/lattigo/v4/ring"
	"github.com/tuneinsight/lattigo/v4/utils"
)

// LimbBackend is the numeric service the core consumes for per-prime
// modular arithmetic and number-theoretic transforms. It only promises
// residues in [0, q_i) per limb; callers must not assume anything about
// the internal representation beyond that.
type LimbBackend interface {
	N() int
	Moduli() []uint64

	NewPoly() *ring.Poly
	Copy(src, dst *ring.Poly)

	NTT(p, out *ring.Poly)
	InvNTT(p, out *ring.Poly)

	MForm(p, out *ring.Poly)
	InvMForm(p, out *ring.Poly)
	MulCoeffsMontgomery(a, b, out *ring.Poly)
	MulCoeffsMontgomeryAndAdd(a, b, out *ring.Poly)

	Add(a, b, out *ring.Poly)
	Sub(a, b, out *ring.Poly)
	Neg(a, out *ring.Poly)
	MulScalar(a *ring.Poly, scalar uint64, out *ring.Poly)

	Equal(a, b *ring.Poly) bool

	// UniformPoly fills a fresh polynomial with uniform residues drawn
	// from the given PRNG. The result is in coefficient domain.
	UniformPoly(prng utils.PRNG) *ring.Poly
}

// lattigoBackend implements LimbBackend on a multi-limb Lattigo ring.
type lattigoBackend struct {
	r *ring.Ring
}

func newLattigoBackend(n int, qi []uint64) (*lattigoBackend, error) {
	r, err := ring.NewRing(n, qi)
	if err != nil {
		return nil, err
	}
	return &lattigoBackend{r: r}, nil
}

func (b *lattigoBackend) N() int           { return b.r.N }
func (b *lattigoBackend) Moduli() []uint64 { return b.r.Modulus }

func (b *lattigoBackend) NewPoly() *ring.Poly       { return b.r.NewPoly() }
func (b *lattigoBackend) Copy(src, dst *ring.Poly)  { ring.Copy(src, dst) }
func (b *lattigoBackend) NTT(p, out *ring.Poly)     { b.r.NTT(p, out) }
func (b *lattigoBackend) InvNTT(p, out *ring.Poly)  { b.r.InvNTT(p, out) }
func (b *lattigoBackend) MForm(p, out *ring.Poly)   { b.r.MForm(p, out) }
func (b *lattigoBackend) InvMForm(p, out *ring.Poly) { b.r.InvMForm(p, out) }

func (b *lattigoBackend) MulCoeffsMontgomery(a, p, out *ring.Poly) {
	b.r.MulCoeffsMontgomery(a, p, out)
}

func (b *lattigoBackend) MulCoeffsMontgomeryAndAdd(a, p, out *ring.Poly) {
	b.r.MulCoeffsMontgomeryAndAdd(a, p, out)
}

func (b *lattigoBackend) Add(a, p, out *ring.Poly) { b.r.Add(a, p, out) }
func (b *lattigoBackend) Sub(a, p, out *ring.Poly) { b.r.Sub(a, p, out) }
func (b *lattigoBackend) Neg(a, out *ring.Poly)    { b.r.Neg(a, out) }

func (b *lattigoBackend) MulScalar(a *ring.Poly, scalar uint64, out *ring.Poly) {
	b.r.MulScalar(a, scalar, out)
}

func (b *lattigoBackend) Equal(a, p *ring.Poly) bool { return b.r.Equal(a, p) }

func (b *lattigoBackend) UniformPoly(prng utils.PRNG) *ring.Poly {
	s := ring.NewUniformSampler(prng, b.r)
	p := b.r.NewPoly()
	s.Read(p)
	return p
}
