package promotions

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"incontridolci-backend/internal/domain"
)

// nightAnchorHour is the UTC hour every night promotion starts at.
const nightAnchorHour = 23

// MaxDurationHours caps a single purchase at one year.
const MaxDurationHours = 24 * 365

// Only the leading HH:MM of a "HH:MM-HH:MM" slot is used.
var timeSlotRe = regexp.MustCompile(`^(\d{2}):(\d{2})`)

// WindowRequest describes the promotion a user is buying.
// TimezoneOffsetMinutes follows the browser convention: UTC = local + offset.
type WindowRequest struct {
	Type                  domain.PromotionMode
	DurationHours         int
	TimeSlot              string
	TimezoneOffsetMinutes int
}

// Window is the [Start, End) interval a listing is promoted for, in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// CalculateWindow computes when a promotion starts and ends.
//
// Day promotions start at the chosen local slot converted to UTC today, or immediately
// when that instant is not in the future. Night promotions start at the next 23:00 UTC;
// a purchase made at exactly 23:00:00 starts that same instant.
func CalculateWindow(req WindowRequest, now time.Time) (Window, error) {
	if req.DurationHours <= 0 {
		return Window{}, fmt.Errorf("duration must be positive, got %d hours", req.DurationHours)
	}
	if req.DurationHours > MaxDurationHours {
		return Window{}, fmt.Errorf("duration exceeds %d hours, got %d", MaxDurationHours, req.DurationHours)
	}
	now = now.UTC()

	var start time.Time
	switch req.Type {
	case domain.PromotionDay:
		hour, minute, err := ParseTimeSlot(req.TimeSlot)
		if err != nil {
			return Window{}, err
		}
		target := slotInstantUTC(now, hour*60+minute+req.TimezoneOffsetMinutes)
		if target.After(now) {
			start = target
		} else {
			start = now
		}
	case domain.PromotionNight:
		anchor := time.Date(now.Year(), now.Month(), now.Day(), nightAnchorHour, 0, 0, 0, time.UTC)
		if anchor.Before(now) {
			anchor = anchor.AddDate(0, 0, 1)
		}
		start = anchor
	default:
		return Window{}, fmt.Errorf("unknown promotion type %q", req.Type)
	}

	end := start.Add(time.Duration(req.DurationHours) * time.Hour)
	if !end.After(start) {
		return Window{}, fmt.Errorf("promotion window ends at %s, not after start %s", end, start)
	}
	return Window{Start: start, End: end}, nil
}

// slotInstantUTC places totalUTCMinutes on today's UTC calendar day. Values outside
// [0, 1440) roll into the previous or next UTC day.
func slotInstantUTC(now time.Time, totalUTCMinutes int) time.Time {
	hours := floorDiv(totalUTCMinutes, 60)
	minutes := totalUTCMinutes - hours*60
	return time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseTimeSlot returns the start hour and minute of a "HH:MM-HH:MM" slot.
func ParseTimeSlot(slot string) (hour, minute int, err error) {
	m := timeSlotRe.FindStringSubmatch(slot)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time slot %q", slot)
	}
	return hour, minute, nil
}
