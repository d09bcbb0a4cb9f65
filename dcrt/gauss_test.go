package dcrt

import (
	"math"
	"math/rand"
	"testing"
)

func TestGaussianSamplerMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sigma := 3.19
	g := NewGaussianSampler(rng, sigma)

	const draws = 20000
	var sum, sumSq float64
	for i := 0; i < draws; i++ {
		v := float64(g.Draw(0))
		sum += v
		sumSq += v * v
	}
	mean := sum / draws
	variance := sumSq/draws - mean*mean
	if math.Abs(mean) > 0.15 {
		t.Fatalf("mean too far from zero: %f", mean)
	}
	if math.Abs(variance-sigma*sigma) > 1.5 {
		t.Fatalf("variance %f too far from %f", variance, sigma*sigma)
	}
}

func TestGaussianSamplerKarneyBranch(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	sigma := 1000.0 // above the inversion threshold
	g := NewGaussianSampler(rng, sigma)
	for i := 0; i < 200; i++ {
		v := g.Draw(0)
		if math.Abs(float64(v)) > 10*sigma {
			t.Fatalf("sample %d outside 10 sigma", v)
		}
	}
}

func TestGaussianSamplerDeterministic(t *testing.T) {
	g1 := NewGaussianSampler(rand.New(rand.NewSource(3)), 4.0)
	g2 := NewGaussianSampler(rand.New(rand.NewSource(3)), 4.0)
	for i := 0; i < 100; i++ {
		if g1.Draw(0.5) != g2.Draw(0.5) {
			t.Fatalf("same seed must reproduce the same stream")
		}
	}
}

func TestGaussianElementCoeffsMatch(t *testing.T) {
	ctx := testCtx(t)
	e, ints := ctx.GaussianElement(rand.New(rand.NewSource(5)), 3.19)
	centered := e.CenteredCoeffsBig()
	for i, v := range ints {
		if centered[i].Int64() != v {
			t.Fatalf("coefficient %d: poly %d vs draw %d", i, centered[i].Int64(), v)
		}
	}
}
