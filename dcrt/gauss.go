// Discrete Gaussian sampling over the integers, with both Peikert
// inversion sampling (small widths) and Karney exact rejection sampling
// (large widths). See Karney '13 and DG14.

package dcrt

import (
	"math"
	"math/rand"
	"sort"
)

const (
	karneyThreshold = 300.0 // width above which Karney's sampler takes over
	tailAccuracy    = 5e-32 // tail-mass accuracy for the inversion CDF
)

// GaussianSampler draws from D_Z(mean, sigma). It owns no hidden state:
// all randomness comes from the rand.Rand handed to the constructor, so
// a fixed seed makes every draw reproducible and concurrent samplers
// never contend.
type GaussianSampler struct {
	sigma   float64
	rng     *rand.Rand
	peikert bool
	mass0   float64   // probability mass at zero
	cdf     []float64 // cumulative probabilities for x=1..M
}

// NewGaussianSampler constructs a sampler with the given width. Panics
// if sigma exceeds 59 bits.
func NewGaussianSampler(rng *rand.Rand, sigma float64) *GaussianSampler {
	if math.Log2(sigma) > 59 {
		panic("dcrt: gaussian width cannot exceed 59 bits")
	}
	g := &GaussianSampler{sigma: sigma, rng: rng}
	g.peikert = sigma < karneyThreshold
	if g.peikert {
		g.initialize()
	}
	return g
}

func (g *GaussianSampler) initialize() {
	variance := g.sigma * g.sigma
	m := int(math.Ceil(g.sigma * math.Sqrt(-2*math.Log(tailAccuracy))))
	sum := 1.0
	for x := 1; x <= m; x++ {
		sum += 2 * math.Exp(-float64(x*x)/(2*variance))
	}
	g.mass0 = 1 / sum
	g.cdf = make([]float64, m)
	for x := 1; x <= m; x++ {
		p := g.mass0 * math.Exp(-float64(x*x)/(2*variance))
		if x == 1 {
			g.cdf[x-1] = p
		} else {
			g.cdf[x-1] = g.cdf[x-2] + p
		}
	}
}

// Draw samples one integer from D_Z(mean, sigma).
func (g *GaussianSampler) Draw(mean float64) int64 {
	if g.peikert {
		u := g.rng.Float64() - 0.5
		if math.Abs(u) <= g.mass0/2 {
			return int64(math.Round(mean))
		}
		target := math.Abs(u) - g.mass0/2
		idx := sort.SearchFloat64s(g.cdf, target)
		sample := int64(idx + 1)
		if u < 0 {
			sample = -sample
		}
		return sample + int64(math.Round(mean))
	}
	return g.karney(mean)
}

// karney implements Algorithm 4 (steps D1-D8) from Karney '13.
func (g *GaussianSampler) karney(mean float64) int64 {
	sigma := g.sigma
	for {
		k := g.algoG()
		if !g.algoP(k * (k - 1)) {
			continue
		}
		s := 1
		if g.rng.Intn(2) == 0 {
			s = -1
		}
		di0 := sigma*float64(k) + float64(s)*mean
		i0 := math.Ceil(di0)
		x0 := (i0 - di0) / sigma
		j := g.rng.Int63n(int64(math.Ceil(sigma)))
		x := x0 + float64(j)/sigma
		if !(x < 1) || (x == 0 && s < 0 && k == 0) {
			continue
		}
		// D7: k+1 true returns from algoB before accepting
		passed := true
		for i := 0; i < k+1; i++ {
			if !g.algoB(k, float32(x)) {
				passed = false
				break
			}
		}
		if !passed {
			continue
		}
		return int64(s) * (int64(i0) + j)
	}
}

// algoH: one Bernoulli trial with probability 1/sqrt(e), float32 fast path.
func (g *GaussianSampler) algoH() bool {
	ha := g.rng.Float32()
	if ha > 0.5 {
		return true
	}
	if ha < 0.5 {
		for {
			hb := g.rng.Float32()
			if hb > ha {
				return false
			}
			if hb < ha {
				ha = g.rng.Float32()
			} else {
				return g.algoHDouble()
			}
			if ha > hb {
				return true
			}
			if ha == hb {
				return g.algoHDouble()
			}
		}
	}
	return g.algoHDouble()
}

func (g *GaussianSampler) algoHDouble() bool {
	ha := g.rng.Float64()
	if !(ha < 0.5) {
		return true
	}
	for {
		hb := g.rng.Float64()
		if !(hb < ha) {
			return false
		}
		ha = g.rng.Float64()
		if !(ha < hb) {
			return true
		}
	}
}

// algoG: count consecutive successes of H.
func (g *GaussianSampler) algoG() int {
	n := 0
	for g.algoH() {
		n++
	}
	return n
}

// algoP: accept n trials of H.
func (g *GaussianSampler) algoP(n int) bool {
	for i := 0; i < n; i++ {
		if !g.algoH() {
			return false
		}
	}
	return true
}

// algoB: inner Bernoulli rejection of Karney, float32 fast path.
func (g *GaussianSampler) algoB(k int, x float32) bool {
	y := x
	m := 2*k + 2
	n := 0
	for {
		z := g.rng.Float32()
		if z > y {
			break
		}
		if z < y {
			r := g.rng.Float32()
			rT := (2*float32(k) + x) / float32(m)
			if r > rT {
				break
			}
			if r < rT {
				y = z
				n++
				continue
			}
			return g.algoBDouble(k, x)
		}
		return g.algoBDouble(k, x)
	}
	return n%2 == 0
}

func (g *GaussianSampler) algoBDouble(k int, x float32) bool {
	y := x
	m := 2*k + 2
	n := 0
	for {
		z := g.rng.Float64()
		if !(z < float64(y)) {
			break
		}
		r := g.rng.Float64()
		if !(r < (float64(2*k)+float64(x))/float64(m)) {
			break
		}
		y = float32(z)
		n++
	}
	return n%2 == 0
}
