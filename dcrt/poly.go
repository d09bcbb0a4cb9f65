package dcrt

import (
	"github.com/tuneinsight/lattigo/v4/ring"
)

// Domain flags whether a RingElement stores coefficients or NTT
// evaluations. All limbs of one element share the flag.
type Domain int

const (
	Coeff Domain = iota
	Eval
)

// RingElement is one element of R_q in double-CRT form: a residue row
// per CRT prime, all in the same domain. Operations return fresh
// elements and never mutate their operands unless documented.
type RingElement struct {
	ctx  *Context
	poly *ring.Poly
	dom  Domain
}

// NewRingElement returns the zero element in coefficient domain.
func (c *Context) NewRingElement() *RingElement {
	return &RingElement{ctx: c, poly: c.backend.NewPoly(), dom: Coeff}
}

// NewConstant returns the constant polynomial v (as an unsigned residue)
// in coefficient domain.
func (c *Context) NewConstant(v uint64) *RingElement {
	e := c.NewRingElement()
	for lvl, qi := range c.qi {
		e.poly.Coeffs[lvl][0] = v % qi
	}
	return e
}

// FromSignedCoeffs builds an element from signed integer coefficients,
// reducing into each limb. The result is in coefficient domain.
func (c *Context) FromSignedCoeffs(coeffs []int64) *RingElement {
	e := c.NewRingElement()
	for lvl, qi := range c.qi {
		mod := int64(qi)
		for i := 0; i < c.n && i < len(coeffs); i++ {
			e.poly.Coeffs[lvl][i] = uint64(((coeffs[i] % mod) + mod) % mod)
		}
	}
	return e
}

// Context returns the owning context.
func (e *RingElement) Context() *Context { return e.ctx }

// Domain returns the current representation domain.
func (e *RingElement) Domain() Domain { return e.dom }

// Poly exposes the raw limb data. Callers must respect the [0, q_i)
// residue invariant.
func (e *RingElement) Poly() *ring.Poly { return e.poly }

// Copy returns a deep copy.
func (e *RingElement) Copy() *RingElement {
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: e.dom}
	e.ctx.backend.Copy(e.poly, out.poly)
	return out
}

// NTT returns the element in evaluation domain. If it already is, the
// element itself is returned.
func (e *RingElement) NTT() *RingElement {
	if e.dom == Eval {
		return e
	}
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: Eval}
	e.ctx.backend.NTT(e.poly, out.poly)
	return out
}

// InvNTT returns the element in coefficient domain. If it already is,
// the element itself is returned.
func (e *RingElement) InvNTT() *RingElement {
	if e.dom == Coeff {
		return e
	}
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: Coeff}
	e.ctx.backend.InvNTT(e.poly, out.poly)
	return out
}

// align brings two operands into a common domain. A mixed pair is
// aligned to Eval (the coefficient operand is forward transformed).
func align(a, b *RingElement) (*RingElement, *RingElement) {
	if a.dom == b.dom {
		return a, b
	}
	return a.NTT(), b.NTT()
}

// Add returns a+b limb-wise. Operands must share a context.
func (e *RingElement) Add(other *RingElement) (*RingElement, error) {
	if !e.ctx.Same(other.ctx) {
		return nil, ErrContextMismatch
	}
	a, b := align(e, other)
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: a.dom}
	e.ctx.backend.Add(a.poly, b.poly, out.poly)
	return out, nil
}

// Sub returns a-b limb-wise.
func (e *RingElement) Sub(other *RingElement) (*RingElement, error) {
	if !e.ctx.Same(other.ctx) {
		return nil, ErrContextMismatch
	}
	a, b := align(e, other)
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: a.dom}
	e.ctx.backend.Sub(a.poly, b.poly, out.poly)
	return out, nil
}

// Neg returns -a limb-wise.
func (e *RingElement) Neg() *RingElement {
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: e.dom}
	e.ctx.backend.Neg(e.poly, out.poly)
	return out
}

// MulScalar returns a*s for a small unsigned scalar (a gadget digit).
func (e *RingElement) MulScalar(s uint64) *RingElement {
	out := &RingElement{ctx: e.ctx, poly: e.ctx.backend.NewPoly(), dom: e.dom}
	e.ctx.backend.MulScalar(e.poly, s, out.poly)
	return out
}

// Mul returns the ring product a*b. Operands in coefficient domain are
// forward transformed first (into fresh values); the result is in
// evaluation domain.
func (e *RingElement) Mul(other *RingElement) (*RingElement, error) {
	if !e.ctx.Same(other.ctx) {
		return nil, ErrContextMismatch
	}
	a, b := e.NTT(), other.NTT()
	be := e.ctx.backend
	am := be.NewPoly()
	be.MForm(a.poly, am)
	out := &RingElement{ctx: e.ctx, poly: be.NewPoly(), dom: Eval}
	be.MulCoeffsMontgomery(am, b.poly, out.poly)
	return out, nil
}

// AddMul accumulates acc += a*b in place. The accumulator must be in
// evaluation domain; this is the inner-product kernel used by the
// matrix layer.
func (e *RingElement) AddMul(a, b *RingElement) error {
	if !e.ctx.Same(a.ctx) || !e.ctx.Same(b.ctx) {
		return ErrContextMismatch
	}
	if e.dom != Eval {
		panic("dcrt: AddMul accumulator must be in evaluation domain")
	}
	an, bn := a.NTT(), b.NTT()
	be := e.ctx.backend
	am := be.NewPoly()
	be.MForm(an.poly, am)
	be.MulCoeffsMontgomeryAndAdd(am, bn.poly, e.poly)
	return nil
}

// Equal compares all limbs exactly. Ring arithmetic is exact modulo the
// chain, so there is no approximate variant. Elements in different
// domains are aligned before comparison.
func (e *RingElement) Equal(other *RingElement) bool {
	if !e.ctx.Same(other.ctx) {
		return false
	}
	a, b := align(e, other)
	return e.ctx.backend.Equal(a.poly, b.poly)
}

// IsZero reports whether the element is identically zero.
func (e *RingElement) IsZero() bool {
	for lvl := range e.poly.Coeffs {
		for _, c := range e.poly.Coeffs[lvl] {
			if c != 0 {
				return false
			}
		}
	}
	return true
}
