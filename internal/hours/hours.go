// Package hours resolves the open/closed state of a business from its weekly
// schedule.
package hours

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/site-engine/internal/model"
)

const (
	minutesPerDay = 24 * 60
	daysPerWeek   = 7
)

// dayNames is indexed by time.Weekday.
var dayNames = [daysPerWeek]string{
	model.Sunday,
	model.Monday,
	model.Tuesday,
	model.Wednesday,
	model.Thursday,
	model.Friday,
	model.Saturday,
}

// slot is a parsed period. Days are time.Weekday indexes, times are minutes
// after midnight.
type slot struct {
	day      int
	closeDay int
	open     int
	close    int
	wraps    bool
}

// DayName returns the canonical day name for a weekday.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// Resolve computes the open/closed state at now. It never returns an unknown
// state: empty or fully malformed schedules resolve to CLOSED with no next
// change. now must be expressed in the business's local time.
func Resolve(periods []model.Period, now time.Time) model.HoursStatus {
	slots := parseSlots(periods)
	if len(slots) == 0 {
		return model.HoursStatus{Status: model.StatusClosed}
	}

	today := int(now.Weekday())
	yesterday := (today + daysPerWeek - 1) % daysPerWeek
	nowMin := now.Hour()*60 + now.Minute()

	for _, s := range slots {
		switch {
		case s.day == today && s.wraps && nowMin >= s.open:
			return openUntil(now, 1, s.closeDay, s.close)
		case s.day == today && !s.wraps && s.open <= nowMin && nowMin < s.close:
			return openUntil(now, 0, today, s.close)
		case s.day == yesterday && s.wraps && nowMin < s.close:
			return openUntil(now, 0, today, s.close)
		}
	}

	if next := nextOpening(slots, today, nowMin, now); next != nil {
		return model.HoursStatus{Status: model.StatusClosed, NextChange: next}
	}
	return model.HoursStatus{Status: model.StatusClosed}
}

// HasSchedule reports whether at least one period parses cleanly.
func HasSchedule(periods []model.Period) bool {
	return len(parseSlots(periods)) > 0
}

func openUntil(now time.Time, dayOffset, closeDay, closeMin int) model.HoursStatus {
	return model.HoursStatus{
		IsOpen: true,
		Status: model.StatusOpen,
		NextChange: &model.NextChange{
			Day:    dayNames[closeDay],
			Time:   formatClock(closeMin),
			Action: model.ActionCloses,
			At:     at(now, dayOffset, closeMin),
		},
	}
}

// nextOpening scans a full weekly cycle starting today. Offset 0 only looks
// at openings later today; offset 7 revisits today's earlier openings a week
// out so a non-empty schedule always yields a next opening.
func nextOpening(slots []slot, today, nowMin int, now time.Time) *model.NextChange {
	for offset := 0; offset <= daysPerWeek; offset++ {
		day := (today + offset) % daysPerWeek

		var opens []int
		for _, s := range slots {
			if s.day != day {
				continue
			}
			if offset == 0 && s.open <= nowMin {
				continue
			}
			if offset == daysPerWeek && s.open > nowMin {
				continue
			}
			opens = append(opens, s.open)
		}
		if len(opens) == 0 {
			continue
		}
		slices.Sort(opens)

		return &model.NextChange{
			Day:    dayNames[day],
			Time:   formatClock(opens[0]),
			Action: model.ActionOpens,
			At:     at(now, offset, opens[0]),
		}
	}
	return nil
}

func at(now time.Time, dayOffset, minutes int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+dayOffset,
		minutes/60, minutes%60, 0, 0, now.Location())
}

// parseSlots drops malformed periods rather than failing the whole schedule.
func parseSlots(periods []model.Period) []slot {
	slots := make([]slot, 0, len(periods))
	for _, p := range periods {
		s, ok := parseSlot(p)
		if !ok {
			continue
		}
		slots = append(slots, s)
	}
	return slots
}

func parseSlot(p model.Period) (slot, bool) {
	day, ok := ParseDay(p.OpenDay)
	if !ok {
		return slot{}, false
	}
	open, ok := ParseClock(p.OpenTime)
	if !ok || open >= minutesPerDay {
		return slot{}, false
	}
	closeMin, ok := ParseClock(p.CloseTime)
	if !ok || closeMin == open {
		return slot{}, false
	}

	s := slot{day: day, closeDay: day, open: open, close: closeMin}
	if closeMin < open {
		s.wraps = true
		s.closeDay = (day + 1) % daysPerWeek
		if cd, ok := ParseDay(p.CloseDay); ok {
			s.closeDay = cd
		}
	}
	return s, true
}

// ParseDay maps a day name ("MONDAY", "monday", "Mon") to its time.Weekday
// index.
func ParseDay(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for i, name := range dayNames {
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return i, true
		}
	}
	return 0, false
}

// ParseClock parses "HH:MM" or "HHMM" into minutes after midnight. "24:00"
// is accepted as end of day.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	var hh, mm string
	switch {
	case strings.Contains(s, ":"):
		parts := strings.SplitN(s, ":", 2)
		hh, mm = parts[0], parts[1]
	case len(s) == 4:
		hh, mm = s[:2], s[2:]
	default:
		return 0, false
	}
	if len(mm) != 2 || hh == "" || len(hh) > 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
