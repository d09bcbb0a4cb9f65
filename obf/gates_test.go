package obf

import (
	"testing"

	"github.com/tuneinsight/lattigo/v4/utils"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/gadget"
	"github.com/hackertron/diamond-io/matrix"
)

// Encodings here are exact, c = s*(A + x*G) with no error term, so the
// composed ciphertexts must match the gate keys identically.

func uniformKey(t *testing.T, ctx *dcrt.Context, prng utils.PRNG, cols int) *matrix.Matrix {
	t.Helper()
	m := matrix.New(ctx, 1, cols)
	for j := 0; j < cols; j++ {
		m.Set(0, j, ctx.UniformElement(prng).NTT())
	}
	return m
}

func encodeBit(t *testing.T, a, g *matrix.Matrix, x int, s *dcrt.RingElement) *matrix.Matrix {
	t.Helper()
	key := a
	if x == 1 {
		var err error
		if key, err = a.Add(g); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	c, err := key.ScalarMul(s)
	if err != nil {
		t.Fatalf("ScalarMul: %v", err)
	}
	return c
}

func TestGateHomomorphism(t *testing.T) {
	ctx := testCtx(t)
	prng, err := dcrt.SeededPRNG([]byte("gates"), "keys")
	if err != nil {
		t.Fatalf("SeededPRNG: %v", err)
	}
	g, err := gadget.Matrix(ctx, 1)
	if err != nil {
		t.Fatalf("gadget.Matrix: %v", err)
	}
	k := ctx.Digits()

	s := ctx.UniformElement(prng).NTT()
	a1 := uniformKey(t, ctx, prng, k)
	a2 := uniformKey(t, ctx, prng, k)

	x1, x2 := 1, 1
	c1 := encodeBit(t, a1, g, x1, s)
	c2 := encodeBit(t, a2, g, x2, s)

	// add: x1 + x2 would leave the bit range, so use x2 = 0 there
	c2zero := encodeBit(t, a2, g, 0, s)
	aAdd, err := AddGate(a1, a2)
	if err != nil {
		t.Fatalf("AddGate: %v", err)
	}
	cAdd, err := c1.Add(c2zero)
	if err != nil {
		t.Fatalf("Add encodings: %v", err)
	}
	if want := encodeBit(t, aAdd, g, x1, s); !cAdd.Equal(want) {
		t.Fatal("added encodings do not match the sum key")
	}

	// mul: c2 * G^-1(-A1) + x2*c1 encodes x1*x2 under the product key
	aMul, err := MulGate(ctx, a1, a2)
	if err != nil {
		t.Fatalf("MulGate: %v", err)
	}
	neg, err := matrix.New(ctx, 1, k).Sub(a1)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	cMul, err := c2.Mul(gadget.DecomposeMatrix(neg))
	if err != nil {
		t.Fatalf("Mul decomposition: %v", err)
	}
	if cMul, err = cMul.Add(c1); err != nil {
		t.Fatalf("Add x2*c1: %v", err)
	}
	if want := encodeBit(t, aMul, g, x1*x2, s); !cMul.Equal(want) {
		t.Fatal("multiplied encodings do not match the product key")
	}
}
