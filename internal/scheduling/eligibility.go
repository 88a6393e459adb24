package scheduling

import (
	"time"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// Minimum notice required before an appointment's start time.
const (
	CancellationNotice = 2 * time.Hour
	RescheduleNotice   = 24 * time.Hour
)

// CanBeCancelled reports whether the appointment may still be cancelled at
// the given instant: it must have a well-formed start in the future, must
// not be in a terminal state, and at least 2 hours' notice must remain.
func CanBeCancelled(a *models.Appointment, now time.Time) bool {
	start, ok := a.DateTime()
	if !ok || a.Status.IsTerminal() || !start.After(now) {
		return false
	}
	return start.Sub(now) >= CancellationNotice
}

// CanBeRescheduled reports whether the appointment may be moved at the given
// instant: well-formed start, not terminal, and at least 24 hours' notice.
func CanBeRescheduled(a *models.Appointment, now time.Time) bool {
	start, ok := a.DateTime()
	if !ok || a.Status.IsTerminal() {
		return false
	}
	return start.Sub(now) >= RescheduleNotice
}
