package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Domain of the saturation table in whole degrees Fahrenheit.
const (
	MinTableTempF = -150
	MaxTableTempF = 212
)

// SaturationTable maps whole-degree dry-bulb temperatures (°F) to the
// saturated humidity ratio in grains of water per pound of dry air.
// It is immutable once loaded.
type SaturationTable struct {
	ratios map[int]float64
}

// NewSaturationTable builds a table from an in-memory map, applying the same
// checks as ParseSaturationTable. The map is copied.
func NewSaturationTable(ratios map[int]float64) (*SaturationTable, error) {
	t := &SaturationTable{ratios: make(map[int]float64, len(ratios))}
	for k, v := range ratios {
		if err := checkRow(k, v); err != nil {
			return nil, err
		}
		t.ratios[k] = v
	}
	return t, nil
}

// LoadSaturationTable reads the two-column CSV resource at path.
func LoadSaturationTable(path string) (*SaturationTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open saturation table %s: %w: %w", path, ErrResourceMissing, err)
	}
	defer f.Close()

	t, err := ParseSaturationTable(f)
	if err != nil {
		return nil, fmt.Errorf("load saturation table %s: %w", path, err)
	}
	return t, nil
}

// ParseSaturationTable reads "tempF,grains" rows. A single leading header row
// whose first field is not an integer is skipped; blank lines are ignored.
func ParseSaturationTable(r io.Reader) (*SaturationTable, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true

	t := &SaturationTable{ratios: make(map[int]float64)}
	for line := 1; ; line++ {
		rec, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}

		if line == 1 && isHeader(rec) {
			continue
		}

		key, value, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if _, dup := t.ratios[key]; dup {
			return nil, fmt.Errorf("row %d: %w: duplicate temperature %d", line, ErrMalformedRecord, key)
		}
		t.ratios[key] = value
	}

	if len(t.ratios) == 0 {
		return nil, fmt.Errorf("%w: table has no rows", ErrMalformedRecord)
	}
	return t, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	return err != nil
}

func parseRow(rec []string) (int, float64, error) {
	if len(rec) != 2 {
		return 0, 0, fmt.Errorf("%w: want 2 fields, got %d", ErrMalformedRecord, len(rec))
	}
	key, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: temperature %q is not an integer", ErrMalformedRecord, rec[0])
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: ratio %q is not a number", ErrMalformedRecord, rec[1])
	}
	if err := checkRow(key, value); err != nil {
		return 0, 0, err
	}
	return key, value, nil
}

func checkRow(key int, value float64) error {
	if key < MinTableTempF || key > MaxTableTempF {
		return fmt.Errorf("%w: temperature %d outside %d..%d", ErrMalformedRecord, key, MinTableTempF, MaxTableTempF)
	}
	if !(value > 0) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: ratio %v at %d must be positive", ErrMalformedRecord, value, key)
	}
	return nil
}

// Lookup returns the saturated humidity ratio (grains/lb) at exactly tempF.
// There is no interpolation between neighbouring keys.
func (t *SaturationTable) Lookup(tempF int) (float64, error) {
	v, ok := t.ratios[tempF]
	if !ok {
		return 0, fmt.Errorf("%w: no saturation ratio for %d°F", ErrKeyNotFound, tempF)
	}
	return v, nil
}

// Len returns the number of rows.
func (t *SaturationTable) Len() int { return len(t.ratios) }

// roundTemp rounds a temperature to the table key. Halves go to the even
// neighbour, the same rule the table was keyed with.
func roundTemp(f float64) int {
	return int(math.RoundToEven(f))
}
