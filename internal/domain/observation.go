package domain

import (
	"math"
	"time"
)

// knotsPerMph converts knots to statute miles per hour for display.
const knotsPerMph = 0.868976

// Wind is the decoded METAR wind group.
type Wind struct {
	DirectionDeg float64 `json:"direction_deg"`
	Variable     bool    `json:"variable,omitempty"` // "VRB" direction
	SpeedKnots   float64 `json:"speed_knots"`
	GustKnots    float64 `json:"gust_knots,omitempty"` // 0 when no gust was reported
}

// SpeedMph returns the wind speed in miles per hour, rounded to a whole number.
func (w Wind) SpeedMph() float64 {
	return math.RoundToEven(w.SpeedKnots / knotsPerMph)
}

// Calm reports whether the wind speed is zero.
func (w Wind) Calm() bool {
	return w.SpeedKnots == 0
}

// WeatherObservation is one decoded station report.
type WeatherObservation struct {
	ObservedAt   time.Time `json:"observed_at"`
	StationID    string    `json:"station_id"`
	Auto         bool      `json:"auto,omitempty"`
	TemperatureC int       `json:"temperature_c"`
	DewPointC    int       `json:"dew_point_c"`
	TemperatureF float64   `json:"temperature_f"`
	DewPointF    float64   `json:"dew_point_f"`
	Wind         Wind      `json:"wind"`
	Raw          string    `json:"raw"`
}

// Age returns how long ago the observation was taken relative to now.
func (o WeatherObservation) Age(now time.Time) time.Duration {
	return now.Sub(o.ObservedAt)
}

// PsychrometricState describes one body of moist air.
type PsychrometricState struct {
	TemperatureF     float64 `json:"temperature_f"`
	RelativeHumidity float64 `json:"relative_humidity"` // fraction 0..1
	HumidityRatio    float64 `json:"humidity_ratio"`    // lb water / lb dry air
	Enthalpy         float64 `json:"enthalpy"`          // BTU / lb dry air
}

// Mode is the economizer operating mode.
type Mode string

const (
	ModeHeating Mode = "heating"
	ModeCooling Mode = "cooling"
)

// Equivalent units reported with each mode.
const (
	UnitKilowatts = "kW"
	UnitTons      = "tons"
)

// EconomizerResult is the heat flow produced by opening the windows.
type EconomizerResult struct {
	HeatFlowBTUH float64 `json:"heat_flow_btuh"` // negative for heating
	Mode         Mode    `json:"mode"`
	Equivalent   float64 `json:"equivalent"`
	Unit         string  `json:"unit"`
}

// Evaluation is the complete record of one economizer run.
type Evaluation struct {
	StationID   string             `json:"station_id"`
	Observation WeatherObservation `json:"observation"`
	Outdoor     PsychrometricState `json:"outdoor"`
	Indoor      PsychrometricState `json:"indoor"`
	Opening     WindowOpening      `json:"opening"`
	MassFlow    float64            `json:"mass_flow_lb_per_hr"`
	Result      EconomizerResult   `json:"result"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}
