package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
	"github.com/hackertron/diamond-io/obf"
)

// paramsweep times encoding and evaluation across gadget bases and
// program depths, then renders the timings as an HTML chart page.

type sweepPoint struct {
	Base     uint64  `json:"base"`
	Depth    int     `json:"depth"`
	Digits   int     `json:"digits"`
	EncodeMS float64 `json:"encode_ms"`
	EvalMS   float64 `json:"eval_ms"`
	Bytes    int     `json:"record_bytes"`
}

func main() {
	outDir := flag.String("out", "Sweep_Reports", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	bases := []uint64{4, 8, 16}
	var points []sweepPoint
	for _, base := range bases {
		ctx, err := dcrt.NewContext(16, []uint64{998244353, 754974721, 469762049}, base, 3.19)
		if err != nil {
			log.Fatalf("context base %d: %v", base, err)
		}
		maxDepth := obf.MaxDepth(ctx)
		for depth := 1; depth <= maxDepth; depth++ {
			pt, err := runPoint(ctx, base, depth)
			if err != nil {
				log.Fatalf("base %d depth %d: %v", base, depth, err)
			}
			log.Printf("[sweep] base=%d depth=%d encode=%.1fms eval=%.2fms size=%d",
				base, depth, pt.EncodeMS, pt.EvalMS, pt.Bytes)
			points = append(points, pt)
		}
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("sweep_%s.json", ts))
	if b, err := json.MarshalIndent(points, "", "  "); err == nil {
		if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
			log.Printf("warn: save sweep json: %v", err)
		}
	}

	page := components.NewPage()
	page.AddCharts(
		timingChart("Encode time by depth", points, func(p sweepPoint) float64 { return p.EncodeMS }),
		timingChart("Evaluate time by depth", points, func(p sweepPoint) float64 { return p.EvalMS }),
	)
	htmlPath := filepath.Join(*outDir, fmt.Sprintf("sweep_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Sweep page:", htmlPath)
	fmt.Println("Sweep JSON:", jsonPath)
}

func runPoint(ctx *dcrt.Context, base uint64, depth int) (sweepPoint, error) {
	prog := &obf.Program{InputLen: depth, Dim: 2}
	for i := 0; i < depth; i++ {
		prog.Levels = append(prog.Levels, obf.Level{
			Input: i,
			M0:    matrix.New(ctx, 2, 2),
			M1:    matrix.Identity(ctx, 2),
		})
	}

	start := time.Now()
	o, err := obf.Encode(ctx, prog, []byte(fmt.Sprintf("sweep/%d/%d", base, depth)))
	if err != nil {
		return sweepPoint{}, err
	}
	encodeMS := float64(time.Since(start).Microseconds()) / 1000

	bits := make([]bool, depth)
	for i := range bits {
		bits[i] = true
	}
	start = time.Now()
	accept, err := o.Evaluate(bits)
	if err != nil {
		return sweepPoint{}, err
	}
	if !accept {
		return sweepPoint{}, fmt.Errorf("all-ones input rejected")
	}
	evalMS := float64(time.Since(start).Microseconds()) / 1000

	data, err := o.Marshal()
	if err != nil {
		return sweepPoint{}, err
	}
	return sweepPoint{
		Base:     base,
		Depth:    depth,
		Digits:   ctx.Digits(),
		EncodeMS: encodeMS,
		EvalMS:   evalMS,
		Bytes:    len(data),
	}, nil
}

func timingChart(title string, points []sweepPoint, pick func(sweepPoint) float64) *charts.Line {
	byBase := make(map[uint64]map[int]float64)
	depthSet := make(map[int]bool)
	maxDepth := 0
	for _, p := range points {
		if byBase[p.Base] == nil {
			byBase[p.Base] = make(map[int]float64)
		}
		byBase[p.Base][p.Depth] = pick(p)
		depthSet[p.Depth] = true
		if p.Depth > maxDepth {
			maxDepth = p.Depth
		}
	}
	var xLabels []string
	var depths []int
	for d := 1; d <= maxDepth; d++ {
		if depthSet[d] {
			depths = append(depths, d)
			xLabels = append(xLabels, fmt.Sprintf("%d", d))
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "milliseconds, one series per gadget base"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xLabels)
	for _, base := range []uint64{4, 8, 16} {
		series, ok := byBase[base]
		if !ok {
			continue
		}
		items := make([]opts.LineData, len(depths))
		for i, d := range depths {
			items[i] = opts.LineData{Value: series[d]}
		}
		line.AddSeries(fmt.Sprintf("base %d", base), items)
	}
	return line
}
