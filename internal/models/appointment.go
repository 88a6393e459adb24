package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusInProgress  AppointmentStatus = "in-progress"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no-show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// ActiveStatuses are the states in which an appointment still occupies its
// slot. The partial unique index on the appointments collection is scoped to
// exactly this set.
var ActiveStatuses = []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusInProgress}

// IsActive reports whether the appointment still occupies its slot.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusInProgress
}

// IsTerminal reports whether no further state transitions are expected.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeFollowUp     AppointmentType = "follow-up"
	TypeCheckUp      AppointmentType = "check-up"
	TypeEmergency    AppointmentType = "emergency"
)

type AppointmentPriority string

const (
	PriorityLow    AppointmentPriority = "low"
	PriorityNormal AppointmentPriority = "normal"
	PriorityHigh   AppointmentPriority = "high"
	PriorityUrgent AppointmentPriority = "urgent"
)

const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 120
	DefaultDurationMinutes = 30
)

// clockPattern validates 24-hour "HH:MM" strings.
var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether s is a well-formed 24-hour "HH:MM" time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

type Appointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	DoctorID  primitive.ObjectID `bson:"doctorId" json:"doctorId"`

	// AppointmentDate is the calendar day, normalized to midnight UTC so
	// that (date, time) equality is well-defined for the unique index.
	AppointmentDate time.Time `bson:"appointmentDate" json:"appointmentDate"`
	// AppointmentTime is the start of the slot, 24-hour "HH:MM".
	AppointmentTime string `bson:"appointmentTime" json:"appointmentTime"`
	// Duration is the visit length in minutes, within [15, 120].
	Duration int `bson:"duration" json:"duration"`

	Status   AppointmentStatus   `bson:"status" json:"status"`
	Type     AppointmentType     `bson:"appointmentType" json:"appointmentType"`
	Priority AppointmentPriority `bson:"priority" json:"priority"`

	Reason             string `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes              string `bson:"notes,omitempty" json:"notes,omitempty"`
	CancellationReason string `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DateTime combines AppointmentDate and AppointmentTime into the appointment
// start instant (UTC). ok is false when the date is unset or the time string
// is malformed.
func (a *Appointment) DateTime() (time.Time, bool) {
	if a.AppointmentDate.IsZero() || !ValidClock(a.AppointmentTime) {
		return time.Time{}, false
	}
	clock, _ := time.Parse("15:04", a.AppointmentTime)
	d := a.AppointmentDate.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), true
}

// EndDateTime is the appointment start plus its duration.
func (a *Appointment) EndDateTime() (time.Time, bool) {
	start, ok := a.DateTime()
	if !ok {
		return time.Time{}, false
	}
	return start.Add(time.Duration(a.Duration) * time.Minute), true
}
