package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy. Callers match with errors.Is; every returned error wraps
// exactly one of these.
var (
	// ErrResourceMissing means the saturation table file does not exist.
	ErrResourceMissing = errors.New("resource missing")
	// ErrMalformedRecord means a saturation table row could not be parsed.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrStationUnavailable means the weather source had no report for the station.
	ErrStationUnavailable = errors.New("station unavailable")
	// ErrFetchTimeout means the weather source did not answer within the fetch timeout.
	ErrFetchTimeout = errors.New("fetch timed out")
	// ErrMalformedObservation means the report text lacks a usable field.
	ErrMalformedObservation = errors.New("malformed observation")
	// ErrIneffectiveWind means the wind is variable or calm.
	ErrIneffectiveWind = errors.New("ineffective wind condition")
	// ErrKeyNotFound means a temperature is outside the saturation table.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidUserInput means an entered value failed to parse or validate.
	ErrInvalidUserInput = errors.New("invalid user input")
	// ErrInputClosed means the interactive input ended before the run completed.
	ErrInputClosed = errors.New("input closed")
	// ErrUserExit means the user chose to leave at the station menu.
	ErrUserExit = errors.New("user exit")
)

// Wind condition reasons reported by IneffectiveWindError.
const (
	WindVariable = "variable"
	WindCalm     = "calm"
)

// IneffectiveWindError reports a valid but unusable wind group.
type IneffectiveWindError struct {
	Reason string // WindVariable or WindCalm
}

func (e *IneffectiveWindError) Error() string {
	return fmt.Sprintf("%s: wind is %s", ErrIneffectiveWind, e.Reason)
}

func (e *IneffectiveWindError) Unwrap() error { return ErrIneffectiveWind }

// Process exit codes, one per fatal category.
const (
	ExitOK                   = 0
	ExitResourceMissing      = 1
	ExitMalformedRecord      = 2
	ExitMalformedObservation = 3
	ExitKeyNotFound          = 4
	ExitInputClosed          = 5
)

// ExitCode maps a run error to the process exit status. Clean terminations
// (nil, user exit, interrupt, ineffective wind) return ExitOK; anything
// unclassified is treated like a missing resource.
func ExitCode(err error) int {
	switch {
	case err == nil,
		errors.Is(err, ErrUserExit),
		errors.Is(err, context.Canceled),
		errors.Is(err, ErrIneffectiveWind):
		return ExitOK
	case errors.Is(err, ErrMalformedRecord):
		return ExitMalformedRecord
	case errors.Is(err, ErrMalformedObservation):
		return ExitMalformedObservation
	case errors.Is(err, ErrKeyNotFound):
		return ExitKeyNotFound
	case errors.Is(err, ErrInputClosed):
		return ExitInputClosed
	default:
		return ExitResourceMissing
	}
}
