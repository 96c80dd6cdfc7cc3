// Command validate checks the data the evaluator depends on: the saturation
// table (coverage, ordering, agreement with the vapor pressure formula) and,
// optionally, a directory of captured station files that must all decode.
//
// Usage:
//
//	go run ./cmd/validate -table humidityratio.csv
//	go run ./cmd/validate -table humidityratio.csv -reports ./captured
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/metar-economizer/internal/domain"
)

// formulaTolerance is the allowed relative difference from the generated value.
// The CSV carries eight significant digits.
const formulaTolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tablePath := flag.String("table", "humidityratio.csv", "saturation table CSV")
	reportsDir := flag.String("reports", "", "directory of captured <ID>.TXT station files (optional)")
	pressure := flag.Float64("pressure", domain.StandardPressurePa, "pressure the table was generated for, in Pa")
	flag.Parse()

	os.Exit(run(os.Stdout, *tablePath, *reportsDir, *pressure))
}

func run(w io.Writer, tablePath, reportsDir string, pressure float64) int {
	fmt.Fprintln(w, "=== Economizer Data Validation ===")
	fmt.Fprintln(w)

	table, err := domain.LoadSaturationTable(tablePath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return domain.ExitCode(err)
	}

	expected, err := domain.GenerateSaturationTable(domain.MinTableTempF, domain.MaxTableTempF, pressure)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCoverage(table, expected),
		validateOrdering(table, expected),
		validateFormula(table, expected),
	}
	reports := 0
	if reportsDir != "" {
		p, n := validateReports(reportsDir, table)
		phases = append(phases, p)
		reports = n
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Table rows: %d, station files: %d\n", table.Len(), reports)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// validateCoverage requires a row for every temperature the formula yields.
func validateCoverage(table *domain.SaturationTable, expected []domain.SaturationRow) *phase {
	p := &phase{name: "Table coverage"}
	for _, r := range expected {
		if _, err := table.Lookup(r.TempF); err != nil {
			p.errorf("missing %d°F", r.TempF)
		}
	}
	if table.Len() != len(expected) {
		p.errorf("row count %d, expected %d", table.Len(), len(expected))
	}
	return p
}

// validateOrdering requires saturation to rise with temperature.
func validateOrdering(table *domain.SaturationTable, expected []domain.SaturationRow) *phase {
	p := &phase{name: "Table strictly increasing"}
	prev, prevF := 0.0, 0
	for i, r := range expected {
		v, err := table.Lookup(r.TempF)
		if err != nil {
			continue
		}
		if i > 0 && v <= prev {
			p.errorf("%d°F (%g) not above %d°F (%g)", r.TempF, v, prevF, prev)
		}
		prev, prevF = v, r.TempF
	}
	return p
}

// validateFormula compares each row against the generated value.
func validateFormula(table *domain.SaturationTable, expected []domain.SaturationRow) *phase {
	p := &phase{name: "Table matches Hyland-Wexler"}
	for _, r := range expected {
		v, err := table.Lookup(r.TempF)
		if err != nil {
			continue
		}
		if rel := math.Abs(v-r.Grains) / r.Grains; rel > formulaTolerance {
			p.errorf("%d°F: table %g, formula %g (rel diff %.2e)", r.TempF, v, r.Grains, rel)
		}
	}
	return p
}

// validateReports decodes every *.TXT file in dir. Variable and calm winds are
// valid reports; decoding errors and table misses are not.
func validateReports(dir string, table *domain.SaturationTable) (*phase, int) {
	p := &phase{name: "Station files decode"}
	paths, err := filepath.Glob(filepath.Join(dir, "*.TXT"))
	if err != nil {
		p.errorf("list %s: %v", dir, err)
		return p, 0
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		p.errorf("no *.TXT files in %s", dir)
		return p, 0
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("%s: %v", filepath.Base(path), err)
			continue
		}
		obs, err := domain.ParseMETAR(string(data))
		if err != nil && !errors.Is(err, domain.ErrIneffectiveWind) {
			p.errorf("%s: %v", filepath.Base(path), err)
			continue
		}
		if _, err := domain.OutdoorState(obs, table); err != nil {
			p.errorf("%s: %v", filepath.Base(path), err)
		}
	}
	return p, len(paths)
}
