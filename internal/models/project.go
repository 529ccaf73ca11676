package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"auctionshowcase/internal/apperr"
)

const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

var Statuses = []string{StatusUpcoming, StatusOngoing, StatusCompleted}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

var clockRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses an H:MM or HH:MM start time.
func ParseClock(s string) (hour, minute int, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, apperr.Validation("%s is not a valid time format! Please use HH:MM format (e.g., 4:30 or 16:30)", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// StartsAt combines the calendar day of dateStart with the clock time in loc.
func StartsAt(dateStart time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := dateStart.Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}

// DeriveStatus reports upcoming before the start and ongoing from then on.
// completed is only ever set explicitly.
func DeriveStatus(startsAt, now time.Time) string {
	if now.Before(startsAt) {
		return StatusUpcoming
	}
	return StatusOngoing
}

// Clock formats t as HH:MM in loc.
func Clock(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
