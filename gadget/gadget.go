// Package gadget implements the base-b gadget vector g = (1, b, b^2,
// ..., b^{k-1}) over the residue ring and the digit decomposition that
// inverts it. Decomposition digits are least significant first, so
// Recompose(Decompose(x)) walks the same order the gadget vector does.
package gadget

import (
	"math/big"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
)

// Vector returns g as a 1 x k row of constant polynomials, powers of
// the context base reduced into each limb.
func Vector(ctx *dcrt.Context) *matrix.Matrix {
	k := ctx.Digits()
	g := matrix.New(ctx, 1, k)
	pow := uint64(1)
	base := ctx.Base()
	powBig := big.NewInt(1)
	baseBig := new(big.Int).SetUint64(base)
	for j := 0; j < k; j++ {
		if powBig.IsUint64() {
			pow = powBig.Uint64()
			g.Set(0, j, ctx.NewConstant(pow))
		} else {
			e := ctx.NewRingElement()
			e.SetCoeffBig(0, powBig)
			g.Set(0, j, e)
		}
		powBig.Mul(powBig, baseBig)
	}
	return g
}

// Matrix returns G = I_d (x) g, the d x dk block gadget matrix.
func Matrix(ctx *dcrt.Context, d int) (*matrix.Matrix, error) {
	id := matrix.Identity(ctx, d)
	return id.Tensor(Vector(ctx))
}

// Decompose writes x as a k x 1 column of digit polynomials with
// coefficients in [0, base), least significant digit first, so that
// g * Decompose(x) = x. Digits are taken from the full CRT lift of
// each coefficient.
func Decompose(x *dcrt.RingElement) *matrix.Matrix {
	ctx := x.Context()
	k := ctx.Digits()
	n := ctx.N()
	base := new(big.Int).SetUint64(ctx.Base())

	coeffs := x.CoeffsBig()
	out := matrix.New(ctx, k, 1)
	digits := make([]*dcrt.RingElement, k)
	for j := 0; j < k; j++ {
		digits[j] = ctx.NewRingElement()
	}
	rem := new(big.Int)
	for i := 0; i < n; i++ {
		c := new(big.Int).Set(coeffs[i])
		for j := 0; j < k; j++ {
			c.QuoRem(c, base, rem)
			if rem.Sign() != 0 {
				digits[j].SetCoeffBig(i, rem)
			}
		}
	}
	for j := 0; j < k; j++ {
		out.Set(j, 0, digits[j])
	}
	return out
}

// DecomposeMatrix decomposes every entry of a d x c matrix into the
// dk x c matrix D with Matrix(ctx, d) * D = M. Rows of D are grouped
// per source row: block r holds the k digit rows of row r.
func DecomposeMatrix(m *matrix.Matrix) *matrix.Matrix {
	ctx := m.Context()
	k := ctx.Digits()
	out := matrix.New(ctx, m.Rows()*k, m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			col := Decompose(m.At(i, j))
			for l := 0; l < k; l++ {
				out.Set(i*k+l, j, col.At(l, 0))
			}
		}
	}
	return out
}

// Recompose evaluates g * digits for a k x 1 digit column, undoing
// Decompose.
func Recompose(digits *matrix.Matrix) (*dcrt.RingElement, error) {
	ctx := digits.Context()
	g := Vector(ctx)
	prod, err := g.Mul(digits)
	if err != nil {
		return nil, err
	}
	return prod.At(0, 0).InvNTT(), nil
}
