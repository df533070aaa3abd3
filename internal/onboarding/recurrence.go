package onboarding

import (
	"fmt"
	"strings"
)

// RecurrenceBlock is one weekly-recurring time window. Days sharing the same
// start/end and contiguous in week order are compressed into a single rule.
type RecurrenceBlock struct {
	RRule     string `json:"rrule"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// weekOrder fixes the Mon..Sun walk used for grouping.
var weekOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayCodes = map[string]string{
	"monday":    "MO",
	"tuesday":   "TU",
	"wednesday": "WE",
	"thursday":  "TH",
	"friday":    "FR",
	"saturday":  "SA",
	"sunday":    "SU",
}

// dayWindow is the per-day intermediate form both schedule shapes reduce to.
type dayWindow struct {
	present bool
	start   string
	end     string
}

// OperatingHoursToBlocks converts the operating-hours answer, a weekday map
// of {enabled, start, end}, into recurrence blocks. Disabled or missing days
// do not participate. Returns nil when no day is usable.
func OperatingHoursToBlocks(schedule map[string]any) []RecurrenceBlock {
	windows := make(map[string]dayWindow, len(weekOrder))
	for _, day := range weekOrder {
		raw, ok := schedule[day].(map[string]any)
		if !ok {
			continue
		}
		if enabled, ok := raw["enabled"].(bool); !ok || !enabled {
			continue
		}
		start, _ := raw["start"].(string)
		end, _ := raw["end"].(string)
		if start == "" || end == "" {
			continue
		}
		windows[day] = dayWindow{present: true, start: start, end: end}
	}
	return groupWindows(windows)
}

// DeactivationScheduleToBlocks converts the deactivation-schedule answer, a
// weekday map of {start_h, end_h} integer hours, into recurrence blocks.
// A {"mode": "always_on"} answer means no schedule and yields nil; the hour
// map may also sit under a "schedule" key.
func DeactivationScheduleToBlocks(value map[string]any) []RecurrenceBlock {
	if mode, ok := value["mode"].(string); ok && mode == "always_on" {
		return nil
	}
	schedule := value
	if nested, ok := value["schedule"].(map[string]any); ok {
		schedule = nested
	}

	windows := make(map[string]dayWindow, len(weekOrder))
	for _, day := range weekOrder {
		raw, ok := schedule[day].(map[string]any)
		if !ok {
			continue
		}
		startH, okStart := hourValue(raw["start_h"])
		endH, okEnd := hourValue(raw["end_h"])
		if !okStart || !okEnd {
			continue
		}
		windows[day] = dayWindow{
			present: true,
			start:   fmt.Sprintf("%02d:00", startH),
			end:     fmt.Sprintf("%02d:00", endH),
		}
	}
	return groupWindows(windows)
}

// hourValue accepts the integer hour in the forms JSON decoding produces.
func hourValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// groupWindows walks Mon..Sun and emits one block per maximal run of
// consecutive days sharing identical start and end times.
func groupWindows(windows map[string]dayWindow) []RecurrenceBlock {
	var blocks []RecurrenceBlock
	var run []string
	var current dayWindow

	flush := func() {
		if len(run) == 0 {
			return
		}
		codes := make([]string, len(run))
		for i, day := range run {
			codes[i] = weekdayCodes[day]
		}
		blocks = append(blocks, RecurrenceBlock{
			RRule:     "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ","),
			StartTime: current.start,
			EndTime:   current.end,
		})
		run = nil
	}

	for _, day := range weekOrder {
		w := windows[day]
		if !w.present {
			flush()
			continue
		}
		if len(run) > 0 && (w.start != current.start || w.end != current.end) {
			flush()
		}
		current = w
		run = append(run, day)
	}
	flush()
	return blocks
}
