// Package domain models surface weather observations and the moist-air
// calculations used to decide whether opening the windows will heat or cool
// a building.
//
// # Data Source
//
// Observations come from the NOAA/NWS METAR station files published at
// https://tgftp.nws.noaa.gov/data/observations/metar/stations/. Each file
// holds the latest report for one station:
//
//	2024/05/14 12:53
//	KSBY 141253Z AUTO 27008G15KT 10SM CLR 12/08 A3012 RMK AO2
//
// Line one is the observation time in UTC; line two is the coded report.
// Long reports may wrap onto further lines, which are joined before decoding.
//
// # METAR Conventions
//
// Token order:
//
//	<station> <DDHHMMZ> [AUTO|COR] <wind> ... <temp>/<dew> ... [RMK ...]
//	AUTO (automated station) and COR (correction) shift the wind group one
//	position to the right. Everything after RMK is ignored.
//
// Wind group:
//
//	"dddffKT" or "dddffGggKT", direction in degrees true, speed and gust in knots.
//	"VRB" in place of the direction means a variable wind; speed "00" means calm.
//	Both decode fully but are reported as an [IneffectiveWindError].
//
// Temperature group:
//
//	"TT/DD" in whole degrees Celsius; an "M" prefix marks a negative value,
//	e.g. "M02/M08" = -2°C / -8°C. A dew point above the temperature is rejected.
//
// # Psychrometrics
//
// Units are imperial throughout: °F, grains or lb of water per lb of dry air,
// BTU per lb of dry air, lb/hr of air.
//
// Humidity ratio:
//
//	W = W_sat(t) * RH / 7000    (W_sat in grains/lb from the saturation table)
//
// Enthalpy:
//
//	h = 0.240*t + W*(0.444*t + 1061)
//
// Outdoor relative humidity is approximated from the report as
// W_sat(dew point) / W_sat(dry bulb). Table lookups use the temperature
// rounded half-to-even to a whole degree.
//
// # Economizer Estimate
//
// Air mass flow through the windows:
//
//	m = knots * 101.27 * |cos(offset)| * area / 4.5    (zero when offset >= 90°)
//
// Heat flow is Q = m * (h_indoor - h_outdoor) BTU/hr. Negative Q is heating,
// reported in kW (Q / 3412.14163); otherwise cooling, reported in tons of
// refrigeration (Q / 12000). See [MassFlowRate] for the handling of the offset angle.
package domain
