package domain

import "fmt"

// Moist-air enthalpy in imperial units:
//
//	h = 0.240*t + W*(0.444*t + 1061)
//
// with t in °F, W in lb water per lb dry air, h in BTU per lb dry air.
const (
	specificHeatDryAir = 0.240  // BTU/lb°F
	specificHeatVapor  = 0.444  // BTU/lb°F
	latentHeatWater    = 1061.0 // BTU/lb
)

// Enthalpy derives the psychrometric state of air at tempF and relative
// humidity rh (fraction 0..1). The saturation ratio is looked up at the
// rounded temperature; the enthalpy formula uses tempF unrounded.
func Enthalpy(tempF, rh float64, table *SaturationTable) (PsychrometricState, error) {
	if rh < 0 || rh > 1 {
		return PsychrometricState{}, fmt.Errorf("%w: relative humidity %v outside 0..1", ErrInvalidUserInput, rh)
	}

	saturated, err := table.Lookup(roundTemp(tempF))
	if err != nil {
		return PsychrometricState{}, fmt.Errorf("enthalpy at %.1f°F: %w", tempF, err)
	}

	w := saturated * rh / GrainsPerPound
	return PsychrometricState{
		TemperatureF:     tempF,
		RelativeHumidity: rh,
		HumidityRatio:    w,
		Enthalpy:         specificHeatDryAir*tempF + w*(specificHeatVapor*tempF+latentHeatWater),
	}, nil
}

// RelativeHumidityFromDewPoint approximates relative humidity as the ratio of
// the saturation humidity ratios at the dew point and at the dry bulb.
func RelativeHumidityFromDewPoint(tempF, dewPointF float64, table *SaturationTable) (float64, error) {
	atDew, err := table.Lookup(roundTemp(dewPointF))
	if err != nil {
		return 0, fmt.Errorf("dew point %.1f°F: %w", dewPointF, err)
	}
	atDry, err := table.Lookup(roundTemp(tempF))
	if err != nil {
		return 0, fmt.Errorf("dry bulb %.1f°F: %w", tempF, err)
	}
	return atDew / atDry, nil
}

// OutdoorState derives the outdoor psychrometric state from an observation.
func OutdoorState(obs WeatherObservation, table *SaturationTable) (PsychrometricState, error) {
	rh, err := RelativeHumidityFromDewPoint(obs.TemperatureF, obs.DewPointF, table)
	if err != nil {
		return PsychrometricState{}, err
	}
	if rh > 1 {
		// Possible only with a table that is not increasing in temperature.
		rh = 1
	}
	return Enthalpy(obs.TemperatureF, rh, table)
}
