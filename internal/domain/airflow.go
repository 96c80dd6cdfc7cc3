package domain

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const (
	// fpmPerKnot converts wind speed in knots to feet per minute.
	fpmPerKnot = 101.27

	// cfmToLbPerHr is 60 min/hr * 0.075 lb/ft³ (standard air density).
	cfmToLbPerHr = 4.5

	inchesPerFoot = 12.0
)

var validate = validator.New()

// WindowOpening is a set of identical rectangular openings facing one direction.
type WindowOpening struct {
	WidthFt   float64 `json:"width_ft" validate:"gt=0"`
	HeightFt  float64 `json:"height_ft" validate:"gt=0"`
	Quantity  int     `json:"quantity" validate:"gte=1,lte=9"`
	FacingDeg float64 `json:"facing_deg" validate:"gte=0,lte=359"`
}

// windowInches holds the raw entry limits for an opening.
type windowInches struct {
	Width    float64 `validate:"gte=20,lte=60"`
	Height   float64 `validate:"gte=1,lte=30"`
	Quantity int     `validate:"gte=1,lte=9"`
	Facing   float64 `validate:"gte=0,lte=359"`
}

// NewWindowOpening builds an opening from dimensions in inches. Width must be
// 20-60 in, height 1-30 in, quantity 1-9 and facing 0-359 degrees from true north.
func NewWindowOpening(widthIn, heightIn float64, quantity int, facingDeg float64) (WindowOpening, error) {
	in := windowInches{Width: widthIn, Height: heightIn, Quantity: quantity, Facing: facingDeg}
	if err := validate.Struct(in); err != nil {
		return WindowOpening{}, fmt.Errorf("%w: window opening: %w", ErrInvalidUserInput, err)
	}

	w := WindowOpening{
		WidthFt:   widthIn / inchesPerFoot,
		HeightFt:  heightIn / inchesPerFoot,
		Quantity:  quantity,
		FacingDeg: facingDeg,
	}
	if err := validate.Struct(w); err != nil {
		return WindowOpening{}, fmt.Errorf("%w: window opening: %w", ErrInvalidUserInput, err)
	}
	return w, nil
}

// Area returns the total open area in square feet.
func (w WindowOpening) Area() float64 {
	return w.WidthFt * w.HeightFt * float64(w.Quantity)
}

// MassFlowRate estimates the air mass flow (lb/hr) driven through an opening
// of areaSqft by the wind. Wind arriving 90° or more off the opening's facing
// contributes nothing. Directions are not wrapped modulo 360.
//
// The offset in degrees is passed to math.Cos unconverted.
func MassFlowRate(windKnots, windDirDeg, openingDirDeg, areaSqft float64) float64 {
	offset := math.Abs(windDirDeg - openingDirDeg)
	if offset >= 90 {
		return 0
	}
	fpm := windKnots * fpmPerKnot
	cfm := fpm * math.Abs(math.Cos(offset)) * areaSqft
	return cfm / cfmToLbPerHr
}
