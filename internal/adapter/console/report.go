package console

import (
	"fmt"
	"time"

	"github.com/couchcryptid/metar-economizer/internal/domain"
)

// Title is printed once at startup.
const Title = "ECONOMIZER CONTROL WEATHER CONDITIONS EVALUATOR"

// Banner prints the program title.
func (c *Console) Banner() {
	c.printf("%s\n\n", Title)
}

// Fatal reports an error that ends the run.
func (c *Console) Fatal(err error) {
	c.printf("\n *** FATAL ERROR: %v ***\n", err)
	c.printf(" *** Returning to operating system with errorlevel %d.\n", domain.ExitCode(err))
}

// StationUnavailable explains a failed fetch before the menu is shown again.
func (c *Console) StationUnavailable(station string, err error) {
	c.printf("\n *** No current observation for %s (%v). Please choose another station.\n", station, err)
}

// Retrieved echoes the raw station file.
func (c *Console) Retrieved(station, raw string) {
	c.printf(" *** Retrieved %d bytes for %s - \n%s\n", len(raw), station, raw)
	c.printf(" *** Parsing outdoor weather data - \n")
}

// Observation prints the decoded report fields.
func (c *Console) Observation(obs domain.WeatherObservation) {
	c.printf("Date/Time: %s UTC\n", obs.ObservedAt.UTC().Format("01/02/2006 @15:04"))
	c.printf("Location: %s\n", obs.StationID)
	c.printf("Dry Bulb Temperature: %d degrees Celsius (%.1f degrees Fahrenheit)\n", obs.TemperatureC, obs.TemperatureF)
	c.printf("Dew Point: %d degrees Celsius (%.1f degrees Fahrenheit)\n", obs.DewPointC, obs.DewPointF)
	c.printf("Wind: %s\n", formatWind(obs.Wind))
}

func formatWind(w domain.Wind) string {
	dir := fmt.Sprintf("%03.0f degrees", w.DirectionDeg)
	if w.Variable {
		dir = "VRB"
	}
	s := fmt.Sprintf("%s @%g Knots (%g MPH)", dir, w.SpeedKnots, w.SpeedMph())
	if w.GustKnots > 0 {
		s += fmt.Sprintf(" gusting %g Knots", w.GustKnots)
	}
	return s
}

// Stale warns that the report is older than expected.
func (c *Console) Stale(age time.Duration) {
	c.printf(" *** Warning: this observation is %s old.\n", age.Round(time.Minute))
}

// IneffectiveWind explains why no estimate follows.
func (c *Console) IneffectiveWind(reason string) {
	switch reason {
	case domain.WindVariable:
		c.printf("*** Wind is too variable for effective economizer operation...\n\n")
	default:
		c.printf("*** Wind is calm --- ineffective for economizer operation...\n\n")
	}
}

// Outdoor prints the derived outdoor air state.
func (c *Console) Outdoor(s domain.PsychrometricState) {
	c.printf("Relative Humidity: %.1f%%\n", s.RelativeHumidity*100)
	c.printf("\n *** Outdoor Enthalpy: %.1f BTU per lb of dry air\n\n", s.Enthalpy)
}

// Indoor prints the derived indoor air state.
func (c *Console) Indoor(s domain.PsychrometricState) {
	c.printf("\n *** Indoor Enthalpy: %.1f BTU per lb of dry air\n\n", s.Enthalpy)
}

// Result prints the heat flow estimate.
func (c *Console) Result(r domain.EconomizerResult) {
	c.printf("\nOpening the windows will provide %.2f BTU/hr of %s.\n", r.HeatFlowBTUH, r.Mode)
	c.printf("Equivalent to %.2f %s.\n\n", r.Equivalent, r.Unit)
}
