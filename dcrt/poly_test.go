package dcrt

import (
	"math/big"
	"testing"
)

func testCtx(t *testing.T) *Context {
	t.Helper()
	ctx, err := TestContext()
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	return ctx
}

func randomElem(t *testing.T, ctx *Context, tag string) *RingElement {
	t.Helper()
	e, err := ctx.UniformElementSeeded([]byte("poly-test-seed"), tag)
	if err != nil {
		t.Fatalf("uniform element: %v", err)
	}
	return e
}

func TestAddAssociative(t *testing.T) {
	ctx := testCtx(t)
	a := randomElem(t, ctx, "a")
	b := randomElem(t, ctx, "b")
	c := randomElem(t, ctx, "c")

	ab, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	left, _ := ab.Add(c)
	bc, _ := b.Add(c)
	right, _ := a.Add(bc)
	if !left.Equal(right) {
		t.Fatalf("(a+b)+c != a+(b+c)")
	}
}

func TestMulDistributesOverAdd(t *testing.T) {
	ctx := testCtx(t)
	a := randomElem(t, ctx, "a")
	b := randomElem(t, ctx, "b")
	c := randomElem(t, ctx, "c")

	bc, _ := b.Add(c)
	left, err := a.Mul(bc)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	ab, _ := a.Mul(b)
	ac, _ := a.Mul(c)
	right, _ := ab.Add(ac)
	if !left.Equal(right) {
		t.Fatalf("a*(b+c) != a*b + a*c")
	}
}

func TestNTTRoundTrip(t *testing.T) {
	ctx := testCtx(t)
	a := randomElem(t, ctx, "roundtrip")
	back := a.NTT().InvNTT()
	if !a.Equal(back) {
		t.Fatalf("NTT then InvNTT is not the identity")
	}
	if back.Domain() != Coeff {
		t.Fatalf("expected coefficient domain after InvNTT")
	}
}

func TestSubNegConsistency(t *testing.T) {
	ctx := testCtx(t)
	a := randomElem(t, ctx, "a")
	b := randomElem(t, ctx, "b")

	diff, _ := a.Sub(b)
	sum, _ := diff.Add(b)
	if !sum.Equal(a) {
		t.Fatalf("(a-b)+b != a")
	}
	negSum, _ := a.Add(a.Neg())
	if !negSum.IsZero() {
		t.Fatalf("a + (-a) != 0")
	}
}

func TestContextMismatch(t *testing.T) {
	ctx := testCtx(t)
	other, err := NewContext(16, []uint64{998244353, 754974721}, 8, 3.19)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	a := ctx.NewConstant(1)
	b := other.NewConstant(1)
	if _, err := a.Add(b); err != ErrContextMismatch {
		t.Fatalf("want ErrContextMismatch, got %v", err)
	}
	if _, err := a.Mul(b); err != ErrContextMismatch {
		t.Fatalf("want ErrContextMismatch, got %v", err)
	}
}

func TestConstantMul(t *testing.T) {
	ctx := testCtx(t)
	a := randomElem(t, ctx, "a")
	one := ctx.NewConstant(1)
	prod, err := a.Mul(one)
	if err != nil {
		t.Fatalf("mul: %v", err)
	}
	if !prod.Equal(a) {
		t.Fatalf("a*1 != a")
	}
}

func TestCRTRoundTrip(t *testing.T) {
	ctx := testCtx(t)
	a := randomElem(t, ctx, "crt")
	coeffs := a.CoeffsBig()
	b := ctx.NewRingElement()
	for j, v := range coeffs {
		b.SetCoeffBig(j, v)
	}
	if !a.Equal(b) {
		t.Fatalf("CRT reconstruct/redistribute mismatch")
	}
	q := ctx.Modulus()
	for j, v := range coeffs {
		if v.Sign() < 0 || v.Cmp(q) >= 0 {
			t.Fatalf("coefficient %d out of [0,q): %s", j, v.String())
		}
	}
}

func TestCenteredLift(t *testing.T) {
	ctx := testCtx(t)
	minusOne := ctx.FromSignedCoeffs([]int64{-1})
	c := minusOne.CenteredCoeffsBig()
	if c[0].Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("centered lift of -1: got %s", c[0].String())
	}
	if minusOne.MaxNorm().Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("max norm of -1 poly should be 1")
	}
}

func TestSeededSamplingDeterministic(t *testing.T) {
	ctx := testCtx(t)
	a, err := ctx.UniformElementSeeded([]byte("seed"), "tag")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	b, err := ctx.UniformElementSeeded([]byte("seed"), "tag")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("same seed and tag must give the same element")
	}
	c, _ := ctx.UniformElementSeeded([]byte("seed"), "other")
	if a.Equal(c) {
		t.Fatalf("distinct tags must give independent streams")
	}
}
