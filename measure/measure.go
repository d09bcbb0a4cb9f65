// Package measure collects opt-in size accounting. Counters are only
// active when MEASURE_SIZES=1 is set, so instrumented call sites cost
// a single branch otherwise.
package measure

import (
	"fmt"
	"os"
	"sync"
)

var Enabled bool
var Global Counter

func init() {
	Enabled = os.Getenv("MEASURE_SIZES") == "1"
	Global = Counter{m: make(map[string]int64)}
}

// BytesElement is the packed size of one ring element: n coefficients
// per limb, 8 bytes each.
func BytesElement(n, limbs int) int64 {
	return int64(n) * int64(limbs) * 8
}

// BytesMatrix is the packed size of a rows x cols matrix of ring
// elements.
func BytesMatrix(rows, cols, n, limbs int) int64 {
	return int64(rows) * int64(cols) * BytesElement(n, limbs)
}

func Human(n int64) string {
	const (
		KiB = 1024
		MiB = 1024 * KiB
	)
	switch {
	case n >= MiB:
		return fmt.Sprintf("%.1f MiB", float64(n)/float64(MiB))
	case n >= KiB:
		return fmt.Sprintf("%.1f KiB", float64(n)/float64(KiB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

type Counter struct {
	mu sync.Mutex
	m  map[string]int64
}

func (c *Counter) Add(key string, n int64) {
	if !Enabled {
		return
	}
	c.mu.Lock()
	c.m[key] += n
	c.mu.Unlock()
}

// SnapshotAndReset returns the collected counters and clears them.
func (c *Counter) SnapshotAndReset() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	c.m = make(map[string]int64)
	return out
}

func (c *Counter) Dump() {
	if !Enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Println("[measure] Size report:")
	for k, v := range c.m {
		fmt.Printf("[measure] %s = %s\n", k, Human(v))
	}
}
