package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
	"github.com/hackertron/diamond-io/measure"
	"github.com/hackertron/diamond-io/measureutil"
	"github.com/hackertron/diamond-io/obf"
	"github.com/hackertron/diamond-io/prof"
)

// obfuscate encodes an n-input AND branching program and writes the
// encoding to disk. Set MEASURE_SIZES=1 for a size report.
func main() {
	inputs := flag.Int("inputs", 2, "number of program inputs (one level per input)")
	seed := flag.String("seed", "", "encoding seed (required)")
	out := flag.String("out", "obf.json", "output file")
	timings := flag.Bool("timings", false, "print aggregated timings")
	flag.Parse()

	if *seed == "" {
		log.Fatalf("obfuscate: -seed is required")
	}
	if *inputs < 1 {
		log.Fatalf("obfuscate: -inputs must be >= 1")
	}

	ctx, err := dcrt.TestContext()
	if err != nil {
		log.Fatalf("context: %v", err)
	}
	if max := obf.MaxDepth(ctx); *inputs > max {
		log.Fatalf("obfuscate: %d inputs exceeds the depth budget %d", *inputs, max)
	}

	prog := andProgram(ctx, *inputs)
	o, err := obf.Encode(ctx, prog, []byte(*seed))
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	data, err := o.Marshal()
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("encoded %d-input AND program (%d levels) to %s (%s)\n",
		*inputs, o.Depth(), *out, measure.Human(int64(len(data))))

	if *timings {
		for label, t := range prof.Aggregate(prof.SnapshotAndReset()) {
			fmt.Printf("%-16s x%-5d %v\n", label, t.Count, t.Dur)
		}
	}
	if measure.Enabled {
		for key, bytes := range measureutil.SnapshotAndReset() {
			fmt.Printf("[measure] %s = %s\n", key, measure.Human(bytes))
		}
	}
}

func andProgram(ctx *dcrt.Context, inputs int) *obf.Program {
	p := &obf.Program{InputLen: inputs, Dim: 2}
	for i := 0; i < inputs; i++ {
		p.Levels = append(p.Levels, obf.Level{
			Input: i,
			M0:    matrix.New(ctx, 2, 2),
			M1:    matrix.Identity(ctx, 2),
		})
	}
	return p
}
