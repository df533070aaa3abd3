package leads

import "errors"

var (
	// ErrInvalidLeadID is returned when lead_id is present but not positive.
	ErrInvalidLeadID = errors.New("invalid lead_id")

	// ErrInvalidPhone is returned when the phone cannot be normalized to a
	// country-prefixed number.
	ErrInvalidPhone = errors.New("invalid phone format")

	// ErrMissingOriginURL is returned when a create request omits origin_url.
	ErrMissingOriginURL = errors.New("origin_url is required")

	// ErrLeadNotFound is returned when an update targets a missing lead.
	ErrLeadNotFound = errors.New("lead not found")
)
