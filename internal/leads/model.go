package leads

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// countryPrefix is prepended to bare area-code numbers.
const countryPrefix = "55"

const maxFieldLen = 500

// Lead is one row of the marketing leads table.
type Lead struct {
	ID                int64           `json:"id"`
	Name              *string         `json:"name"`
	FirstName         *string         `json:"first_name"`
	ClinicName        *string         `json:"clinic_name"`
	OriginURL         *string         `json:"origin_url"`
	Phone             *string         `json:"phone"`
	Email             *string         `json:"email"`
	QualificationType *string         `json:"qualification_type"`
	DataJSON          json.RawMessage `json:"data_json"`
	ScheduleEvent     json.RawMessage `json:"schedule_event"`
	UTMsJSON          json.RawMessage `json:"utms_json"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// UpsertRequest is the intake body. An absent lead_id inserts; a positive
// one updates that row.
type UpsertRequest struct {
	LeadID            *int64          `json:"lead_id,omitempty"`
	Name              string          `json:"name"`
	FirstName         string          `json:"first_name"`
	ClinicName        *string         `json:"clinic_name"`
	OriginURL         string          `json:"origin_url"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email"`
	QualificationType *string         `json:"qualification_type"`
	DataJSON          json.RawMessage `json:"data_json,omitempty"`
	ScheduleEvent     json.RawMessage `json:"schedule_event,omitempty"`
	UTMsJSON          json.RawMessage `json:"utms_json,omitempty"`
}

// Payload is the sparse set of columns a request writes. Absent request
// fields stay absent so updates never clobber columns the caller did not
// send.
type Payload map[string]any

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func sanitize(s string) string {
	clean := strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
	runes := []rune(clean)
	if len(runes) > maxFieldLen {
		return string(runes[:maxFieldLen])
	}
	return clean
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone normalizes a raw phone to digits with the country prefix.
// Bare ten or eleven digit numbers (area code plus subscriber) get the
// prefix prepended; anything that does not land on twelve or thirteen
// digits is rejected.
func FormatPhone(raw string) (string, bool) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) < 10 {
		return "", false
	}
	if len(digits) <= 11 {
		digits = countryPrefix + digits
	}
	if len(digits) >= 12 && len(digits) <= 13 {
		return digits, true
	}
	return "", false
}

// BuildPayload validates and sanitizes the request into column writes.
func (r *UpsertRequest) BuildPayload() (Payload, error) {
	if r.LeadID != nil && *r.LeadID <= 0 {
		return nil, ErrInvalidLeadID
	}

	payload := Payload{}
	if r.Name != "" {
		payload["name"] = sanitize(r.Name)
	}
	if r.FirstName != "" {
		payload["first_name"] = sanitize(r.FirstName)
	}
	if r.ClinicName != nil {
		if clean := sanitize(*r.ClinicName); clean != "" {
			payload["clinic_name"] = clean
		} else {
			payload["clinic_name"] = nil
		}
	}
	if r.OriginURL != "" {
		payload["origin_url"] = sanitize(r.OriginURL)
	}
	if r.Phone != "" {
		formatted, ok := FormatPhone(r.Phone)
		if !ok {
			return nil, ErrInvalidPhone
		}
		payload["phone"] = formatted
	}
	if r.Email != "" {
		payload["email"] = sanitize(r.Email)
	}
	if r.QualificationType != nil {
		if clean := sanitize(*r.QualificationType); clean != "" {
			payload["qualification_type"] = clean
		} else {
			payload["qualification_type"] = nil
		}
	}
	if len(r.DataJSON) > 0 {
		payload["data_json"] = []byte(r.DataJSON)
	}
	if len(r.ScheduleEvent) > 0 {
		payload["schedule_event"] = []byte(r.ScheduleEvent)
	}
	if len(r.UTMsJSON) > 0 {
		payload["utms_json"] = []byte(r.UTMsJSON)
	}

	if r.LeadID == nil {
		if _, ok := payload["origin_url"]; !ok {
			return nil, ErrMissingOriginURL
		}
	}
	return payload, nil
}
