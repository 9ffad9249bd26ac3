package models

import "errors"

var (
	// ErrUnknownScenario is returned for a scenario that is not one of the three
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrUnknownMonth is returned for a month key outside jan..dec
	ErrUnknownMonth = errors.New("unknown month")
)
