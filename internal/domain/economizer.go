package domain

import "fmt"

const (
	btuhPerKilowatt = 3412.14163
	btuhPerTon      = 12000.0
)

// IndoorConditions are the entered indoor dry bulb and relative humidity.
type IndoorConditions struct {
	TemperatureF       float64 `validate:"gte=0,lte=120"`
	RelativeHumidityPc float64 `validate:"gte=0,lte=100"`
}

// Validate checks the indoor entry limits.
func (c IndoorConditions) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: indoor conditions: %w", ErrInvalidUserInput, err)
	}
	return nil
}

// IndoorState derives the indoor psychrometric state.
func IndoorState(c IndoorConditions, table *SaturationTable) (PsychrometricState, error) {
	if err := c.Validate(); err != nil {
		return PsychrometricState{}, err
	}
	return Enthalpy(c.TemperatureF, c.RelativeHumidityPc/100, table)
}

// Evaluate computes the heat flow Q = m * (h_indoor - h_outdoor) in BTU/hr.
// Negative Q is heating, reported in kW; otherwise cooling, reported in tons
// of refrigeration.
func Evaluate(indoor, outdoor PsychrometricState, massFlow float64) EconomizerResult {
	q := massFlow * (indoor.Enthalpy - outdoor.Enthalpy)
	if q < 0 {
		return EconomizerResult{
			HeatFlowBTUH: q,
			Mode:         ModeHeating,
			Equivalent:   q / btuhPerKilowatt,
			Unit:         UnitKilowatts,
		}
	}
	return EconomizerResult{
		HeatFlowBTUH: q,
		Mode:         ModeCooling,
		Equivalent:   q / btuhPerTon,
		Unit:         UnitTons,
	}
}

// NewEvaluation assembles the full record of a run, stamped with the package clock.
func NewEvaluation(obs WeatherObservation, indoor, outdoor PsychrometricState, opening WindowOpening) Evaluation {
	m := MassFlowRate(obs.Wind.SpeedKnots, obs.Wind.DirectionDeg, opening.FacingDeg, opening.Area())
	return Evaluation{
		StationID:   obs.StationID,
		Observation: obs,
		Outdoor:     outdoor,
		Indoor:      indoor,
		Opening:     opening,
		MassFlow:    m,
		Result:      Evaluate(indoor, outdoor, m),
		EvaluatedAt: Now(),
	}
}
