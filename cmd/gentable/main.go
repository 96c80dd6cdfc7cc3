// Command gentable regenerates the saturation humidity ratio table read by
// the evaluator: one row per whole degree Fahrenheit, grains of water per
// pound of dry air at saturation, from the Hyland-Wexler vapor pressure
// formulation.
//
// Usage:
//
//	go run ./cmd/gentable -out humidityratio.csv
//	go run ./cmd/gentable -min 0 -max 120 -pressure 84300 -out denver.csv
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/metar-economizer/internal/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("gentable", flag.ContinueOnError)
	minF := fs.Int("min", domain.MinTableTempF, "lowest temperature in °F")
	maxF := fs.Int("max", domain.MaxTableTempF, "highest temperature in °F")
	pressure := fs.Float64("pressure", domain.StandardPressurePa, "barometric pressure in Pa")
	out := fs.String("out", "", "output CSV path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := domain.GenerateSaturationTable(*minF, *maxF, *pressure)
	if err != nil {
		return fmt.Errorf("generate table: %w", err)
	}

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := domain.WriteSaturationTable(bw, rows); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if *out != "" {
		log.Printf("wrote %d rows (%d..%d °F at %.0f Pa) to %s", len(rows), *minF, *maxF, *pressure, *out)
	}
	return nil
}
