package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hackertron/diamond-io/obf"
)

// evaluate loads a persisted encoding and runs it on an input string
// of '0'/'1' characters.
func main() {
	in := flag.String("in", "obf.json", "encoded program file")
	input := flag.String("input", "", "input bits, e.g. 1101 (required)")
	flag.Parse()

	if *input == "" {
		log.Fatalf("evaluate: -input is required")
	}
	bits := make([]bool, len(*input))
	for i, c := range *input {
		switch c {
		case '0':
		case '1':
			bits[i] = true
		default:
			log.Fatalf("evaluate: input byte %d is %q, want 0 or 1", i, c)
		}
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read %s: %v", *in, err)
	}
	o, err := obf.Decode(data)
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	accept, err := o.Evaluate(bits)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	if accept {
		fmt.Println("accept")
		return
	}
	fmt.Println("reject")
	os.Exit(1)
}
