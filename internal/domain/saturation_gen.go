package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

const (
	// StandardPressurePa is sea-level barometric pressure.
	StandardPressurePa = 101325.0

	// GrainsPerPound converts lb/lb humidity ratios to grains/lb.
	GrainsPerPound = 7000.0

	// molecular weight ratio of water vapor to dry air
	vaporAirRatio = 0.621945
)

// SaturationRow is one generated table row.
type SaturationRow struct {
	TempF  int
	Grains float64
}

// SaturationPressure returns the saturation vapor pressure (Pa) at tempF using
// the Hyland-Wexler formulation: over ice below freezing, over liquid water
// at and above it.
func SaturationPressure(tempF float64) float64 {
	t := (tempF-32)*5/9 + 273.15
	if t < 273.15 {
		return math.Exp(-5.6745359e3/t +
			6.3925247 -
			9.6778430e-3*t +
			6.2215701e-7*t*t +
			2.0747825e-9*t*t*t -
			9.4840240e-13*t*t*t*t +
			4.1635019*math.Log(t))
	}
	return math.Exp(-5.8002206e3/t +
		1.3914993 -
		4.8640239e-2*t +
		4.1764768e-5*t*t -
		1.4452093e-8*t*t*t +
		6.5459673*math.Log(t))
}

// SaturatedGrains returns the saturated humidity ratio in grains/lb at tempF
// and the given total pressure. ok is false once the air would boil.
func SaturatedGrains(tempF, pressurePa float64) (grains float64, ok bool) {
	pws := SaturationPressure(tempF)
	if pws >= pressurePa {
		return 0, false
	}
	return vaporAirRatio * pws / (pressurePa - pws) * GrainsPerPound, true
}

// GenerateSaturationTable computes one row per whole degree in [minF, maxF].
// Temperatures at or above the boiling point for pressurePa are omitted.
func GenerateSaturationTable(minF, maxF int, pressurePa float64) ([]SaturationRow, error) {
	if minF < MinTableTempF || maxF > MaxTableTempF || minF > maxF {
		return nil, fmt.Errorf("range %d..%d must lie within %d..%d", minF, maxF, MinTableTempF, MaxTableTempF)
	}
	if pressurePa <= 0 {
		return nil, fmt.Errorf("pressure must be positive, got %v", pressurePa)
	}

	rows := make([]SaturationRow, 0, maxF-minF+1)
	for f := minF; f <= maxF; f++ {
		g, ok := SaturatedGrains(float64(f), pressurePa)
		if !ok {
			continue
		}
		rows = append(rows, SaturationRow{TempF: f, Grains: g})
	}
	return rows, nil
}

// WriteSaturationTable writes rows in the two-column CSV layout read by
// ParseSaturationTable.
func WriteSaturationTable(w io.Writer, rows []SaturationRow) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.TempF),
			strconv.FormatFloat(r.Grains, 'g', 8, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", r.TempF, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
