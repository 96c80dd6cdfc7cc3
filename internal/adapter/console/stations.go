package console

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/metar-economizer/internal/domain"
)

// Station is a menu entry.
type Station struct {
	ID   string
	Name string
}

// Stations is the Delmarva menu, in display order.
var Stations = []Station{
	{"KGED", "Delaware Coastal Airport, Georgetown, Sussex County, DE"},
	{"KSBY", "Wicomico Regional Airport, Salisbury, Wicomico County, MD"},
	{"KWAL", "Wallops Flight Facility, Wallops Island, Accomac County, VA"},
	{"KOXB", "Ocean City Municipal Airport, Ocean City, Worcester County, MD"},
	{"KDOV", "Dover Air Force Base, Dover, Kent County, DE"},
	{"KILG", "New Castle County Airport, New Castle, New Castle County, DE"},
	{"K33N", "Delaware Airpark, Smyrna, Kent County, DE"},
	{"KCGE", "Cambridge Dorchester Regional Airport, Cambridge, Dorchester County, MD"},
}

var icaoRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)

// resolveStation maps a menu answer to a station id: a menu number, an ICAO
// id typed directly, or "e" to exit.
func resolveStation(answer string) (string, error) {
	a := strings.ToUpper(strings.TrimSpace(answer))
	if a == "E" {
		return "", domain.ErrUserExit
	}
	if n, err := strconv.Atoi(a); err == nil {
		if n >= 1 && n <= len(Stations) {
			return Stations[n-1].ID, nil
		}
		return "", invalid("Choose 1-%d, a 4-character station id, or 'e'.", len(Stations))
	}
	if icaoRe.MatchString(a) {
		return a, nil
	}
	return "", invalid("Choose 1-%d, a 4-character station id, or 'e'.", len(Stations))
}

// SelectStation shows the menu until the user picks a station or exits.
// Exiting returns domain.ErrUserExit.
func (c *Console) SelectStation(ctx context.Context) (string, error) {
	for {
		c.printf("\nLOCAL WEATHER OBSERVATIONS\n\n")
		for i, s := range Stations {
			c.printf("%d ... %s\n", i+1, s.Name)
		}
		c.printf("\nPlease select an area wx forecast, enter a station id, or 'e' to EXIT: ")

		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}
		id, err := resolveStation(line)
		switch {
		case err == nil:
			return id, nil
		case errors.Is(err, domain.ErrUserExit):
			c.printf("\n")
			return "", err
		default:
			c.printf("\n *** %v\n", err)
		}
	}
}
