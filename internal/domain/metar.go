package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// headerLayout is the first line of a stations/<ID>.TXT file.
const headerLayout = "2006/01/02 15:04"

var (
	// stationRe matches an ICAO location indicator, e.g. "KSBY" or "K33N".
	stationRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)

	// issueTimeRe matches the day/time group, e.g. "151253Z".
	issueTimeRe = regexp.MustCompile(`^\d{6}Z$`)

	// windRe matches the wind group: direction (or VRB), speed, optional gust, knots.
	// "27008G15KT" -> dir=270, speed=08, gust=15.
	windRe = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?KT$`)

	// tempRe matches the temperature/dew point group in whole Celsius,
	// "M" marking negatives: "12/08", "M02/M08".
	tempRe = regexp.MustCompile(`^(M?\d{2})/(M?\d{2})$`)
)

// metarTokens splits a station file into its header line and the report
// body, with the remarks section cut off at "RMK".
type metarTokens struct {
	header  string
	body    []string
	remarks []string
}

func tokenize(raw string) (metarTokens, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return metarTokens{}, fmt.Errorf("%w: want timestamp and report lines, got %d line(s)", ErrMalformedObservation, len(lines))
	}

	// Long reports may wrap; everything after the header is one report.
	fields := strings.Fields(strings.Join(lines[1:], " "))
	if len(fields) > 0 && (fields[0] == "METAR" || fields[0] == "SPECI") {
		fields = fields[1:]
	}

	tok := metarTokens{header: lines[0], body: fields}
	for i, f := range fields {
		if f == "RMK" {
			tok.body = fields[:i]
			tok.remarks = fields[i+1:]
			break
		}
	}
	return tok, nil
}

// ParseMETAR decodes a NOAA stations/<ID>.TXT report.
//
// Any missing or non-numeric field yields ErrMalformedObservation. A variable
// ("VRB") or calm ("00") wind yields an *IneffectiveWindError together with the
// fully decoded observation, so callers can still show what was reported.
func ParseMETAR(raw string) (WeatherObservation, error) {
	tok, err := tokenize(raw)
	if err != nil {
		return WeatherObservation{}, err
	}

	observedAt, err := time.ParseInLocation(headerLayout, tok.header, time.UTC)
	if err != nil {
		return WeatherObservation{}, fmt.Errorf("%w: timestamp %q", ErrMalformedObservation, tok.header)
	}

	body := tok.body
	if len(body) < 3 {
		return WeatherObservation{}, fmt.Errorf("%w: report too short: %q", ErrMalformedObservation, strings.Join(body, " "))
	}
	if !stationRe.MatchString(body[0]) {
		return WeatherObservation{}, fmt.Errorf("%w: station id %q", ErrMalformedObservation, body[0])
	}
	if !issueTimeRe.MatchString(body[1]) {
		return WeatherObservation{}, fmt.Errorf("%w: issue time %q", ErrMalformedObservation, body[1])
	}

	obs := WeatherObservation{
		ObservedAt: observedAt,
		StationID:  body[0],
		Raw:        strings.TrimSpace(raw),
	}

	// The wind group follows the issue time, shifted by report modifiers.
	i := 2
	for i < len(body) && (body[i] == "AUTO" || body[i] == "COR") {
		if body[i] == "AUTO" {
			obs.Auto = true
		}
		i++
	}
	if i >= len(body) {
		return WeatherObservation{}, fmt.Errorf("%w: missing wind group", ErrMalformedObservation)
	}
	wind, err := parseWind(body[i])
	if err != nil {
		return WeatherObservation{}, err
	}
	obs.Wind = wind

	tempC, dewC, err := findTemperatures(body[i+1:])
	if err != nil {
		return WeatherObservation{}, err
	}
	if dewC > tempC {
		return WeatherObservation{}, fmt.Errorf("%w: dew point %d°C above temperature %d°C", ErrMalformedObservation, dewC, tempC)
	}
	obs.TemperatureC = tempC
	obs.DewPointC = dewC
	obs.TemperatureF = CelsiusToFahrenheit(float64(tempC))
	obs.DewPointF = CelsiusToFahrenheit(float64(dewC))

	switch {
	case obs.Wind.Variable:
		return obs, &IneffectiveWindError{Reason: WindVariable}
	case obs.Wind.Calm():
		return obs, &IneffectiveWindError{Reason: WindCalm}
	}
	return obs, nil
}

func parseWind(group string) (Wind, error) {
	m := windRe.FindStringSubmatch(group)
	if m == nil {
		return Wind{}, fmt.Errorf("%w: wind group %q", ErrMalformedObservation, group)
	}

	var w Wind
	if m[1] == "VRB" {
		w.Variable = true
	} else {
		dir, _ := strconv.Atoi(m[1]) // regexp guarantees digits
		if dir > 360 {
			return Wind{}, fmt.Errorf("%w: wind direction %d", ErrMalformedObservation, dir)
		}
		w.DirectionDeg = float64(dir % 360)
	}

	speed, _ := strconv.Atoi(m[2])
	w.SpeedKnots = float64(speed)

	if m[3] != "" {
		gust, _ := strconv.Atoi(m[3])
		w.GustKnots = float64(gust)
	}
	return w, nil
}

func findTemperatures(tokens []string) (tempC, dewC int, err error) {
	for _, t := range tokens {
		m := tempRe.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		return parseSignedCelsius(m[1]), parseSignedCelsius(m[2]), nil
	}
	return 0, 0, fmt.Errorf("%w: missing temperature/dew point group", ErrMalformedObservation)
}

// parseSignedCelsius decodes "M05" as -5 and "12" as 12. Input is pre-validated.
func parseSignedCelsius(s string) int {
	neg := strings.HasPrefix(s, "M")
	v, _ := strconv.Atoi(strings.TrimPrefix(s, "M"))
	if neg {
		return -v
	}
	return v
}

// CelsiusToFahrenheit converts a Celsius temperature.
func CelsiusToFahrenheit(c float64) float64 {
	return 9.0/5.0*c + 32
}
