package onboarding

import "errors"

var (
	// ErrRecordNotFound is returned when an update targets a record id that
	// does not exist. Callers must treat this as desynced state and restart
	// rather than retry-create under the old id.
	ErrRecordNotFound = errors.New("onboarding record not found")

	// ErrInvalidRecordID is returned for a non-positive record id.
	ErrInvalidRecordID = errors.New("invalid onboarding record id")
)
