package bench

import (
	"math/rand"
	"testing"

	"github.com/hackertron/diamond-io/dcrt"
)

func benchContext(b *testing.B) *dcrt.Context {
	b.Helper()
	ctx, err := dcrt.TestContext()
	if err != nil {
		b.Fatal(err)
	}
	return ctx
}

func randElement(b *testing.B, ctx *dcrt.Context, tag string) *dcrt.RingElement {
	b.Helper()
	e, err := ctx.UniformElementSeeded([]byte("bench"), tag)
	if err != nil {
		b.Fatal(err)
	}
	return e
}

func BenchmarkNTTForwardInverse(b *testing.B) {
	ctx := benchContext(b)
	e := randElement(b, ctx, "ntt")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e = e.NTT().InvNTT()
	}
}

func BenchmarkRingMul(b *testing.B) {
	ctx := benchContext(b)
	x := randElement(b, ctx, "mul-x").NTT()
	y := randElement(b, ctx, "mul-y").NTT()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := x.Mul(y); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGaussianElement(b *testing.B) {
	ctx := benchContext(b)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ctx.GaussianElement(rng, ctx.Sigma())
	}
}

func BenchmarkCRTLift(b *testing.B) {
	ctx := benchContext(b)
	e := randElement(b, ctx, "lift")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.CoeffsBig()
	}
}
