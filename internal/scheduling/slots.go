package scheduling

import (
	"fmt"
	"time"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// minutesOfDay converts a 24-hour "HH:MM" string to minutes since midnight.
// All slot arithmetic runs on these integers so no date or timezone is
// involved.
func minutesOfDay(clock string) (int, error) {
	if !models.ValidClock(clock) {
		return 0, fmt.Errorf("invalid time %q, want 24-hour HH:MM", clock)
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateSlots enumerates the candidate start times for one working day:
// "HH:MM" strings beginning at StartTime, stepping by duration minutes, such
// that every slot ends at or before EndTime. A partial trailing slot is not
// emitted. Non-working days and malformed windows yield no slots.
func GenerateSlots(day models.DayHours, duration int) []string {
	if !day.IsWorking || duration <= 0 {
		return nil
	}
	start, err := minutesOfDay(day.StartTime)
	if err != nil {
		return nil
	}
	end, err := minutesOfDay(day.EndTime)
	if err != nil {
		return nil
	}
	var slots []string
	for t := start; t+duration <= end; t += duration {
		slots = append(slots, formatClock(t))
	}
	return slots
}

// SlotsForDay resolves the named weekday (case-insensitive) in a doctor's
// weekly working hours and generates that day's slots. Absent days yield no
// slots.
func SlotsForDay(hours models.WorkingHours, dayName string, duration int) []string {
	day, ok := hours.Day(dayName)
	if !ok {
		return nil
	}
	return GenerateSlots(day, duration)
}

// availableSlots removes already-booked start times from a generated slot
// sequence, preserving order.
func availableSlots(slots []string, booked []string) []string {
	if len(booked) == 0 {
		return slots
	}
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	free := make([]string, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free
}
