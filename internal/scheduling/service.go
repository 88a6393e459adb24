package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// Service holds the slot-generation, conflict-check and lifecycle rules,
// operating against the repository abstractions. The clock is injected so
// every time-dependent rule is deterministic under test.
type Service struct {
	appointments AppointmentRepository
	doctors      DoctorRepository
	now          func() time.Time
}

// NewService builds a scheduling service. now may be nil, in which case the
// wall clock is used.
func NewService(appointments AppointmentRepository, doctors DoctorRepository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{appointments: appointments, doctors: doctors, now: now}
}

// BookingRequest carries the caller-supplied fields for a new appointment.
type BookingRequest struct {
	PatientID primitive.ObjectID
	DoctorID  primitive.ObjectID
	Date      time.Time
	Time      string
	Duration  int
	Type      models.AppointmentType
	Priority  models.AppointmentPriority
	Reason    string
}

// DateOnly truncates an instant to its calendar day at midnight UTC, the
// normal form stored in appointmentDate.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Book validates the request, runs the advisory conflict check and inserts
// the appointment in the scheduled state. A lost race against a concurrent
// booking surfaces as ErrSlotConflict from the repository's unique index.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if req.Duration == 0 {
		req.Duration = models.DefaultDurationMinutes
	}
	if !models.ValidClock(req.Time) {
		return nil, &ValidationError{Field: "appointmentTime", Message: "must be 24-hour HH:MM"}
	}
	if req.Duration < models.MinDurationMinutes || req.Duration > models.MaxDurationMinutes {
		return nil, &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("must be between %d and %d minutes", models.MinDurationMinutes, models.MaxDurationMinutes),
		}
	}
	if req.Date.IsZero() {
		return nil, &ValidationError{Field: "appointmentDate", Message: "is required"}
	}

	now := s.now()
	appt := &models.Appointment{
		ID:              primitive.NewObjectID(),
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: DateOnly(req.Date),
		AppointmentTime: req.Time,
		Duration:        req.Duration,
		Status:          models.StatusScheduled,
		Type:            req.Type,
		Priority:        req.Priority,
		Reason:          req.Reason,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	if appt.Type == "" {
		appt.Type = models.TypeConsultation
	}
	if appt.Priority == "" {
		appt.Priority = models.PriorityNormal
	}

	start, _ := appt.DateTime()
	if !start.After(now) {
		return nil, &ValidationError{Field: "appointmentDate", Message: "must be in the future"}
	}

	doctor, err := s.doctors.FindByID(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Status != models.DoctorActive {
		return nil, &ValidationError{Field: "doctorId", Message: "doctor is not accepting appointments"}
	}

	conflict, err := s.appointments.HasConflict(ctx, appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	if err := s.appointments.Insert(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel marks an appointment cancelled when at least 2 hours' notice
// remains and it is not already in a terminal state.
func (s *Service) Cancel(ctx context.Context, id primitive.ObjectID, reason string) (*models.Appointment, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, &IneligibleTransitionError{Op: "cancel", Reason: ReasonAlreadyTerminal}
	}
	if !CanBeCancelled(appt, s.now()) {
		return nil, &IneligibleTransitionError{Op: "cancel", Reason: ReasonTooLate}
	}
	if err := s.appointments.UpdateStatus(ctx, id, models.StatusCancelled, reason); err != nil {
		return nil, err
	}
	appt.Status = models.StatusCancelled
	appt.CancellationReason = reason
	return appt, nil
}

// Reschedule moves an appointment to a new slot when at least 24 hours'
// notice remains. The record returns to the scheduled state at its new
// (date, time); the vacated slot frees immediately.
func (s *Service) Reschedule(ctx context.Context, id primitive.ObjectID, newDate time.Time, newTime string) (*models.Appointment, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, &IneligibleTransitionError{Op: "reschedule", Reason: ReasonAlreadyTerminal}
	}
	if !CanBeRescheduled(appt, s.now()) {
		return nil, &IneligibleTransitionError{Op: "reschedule", Reason: ReasonTooLate}
	}

	if !models.ValidClock(newTime) {
		return nil, &ValidationError{Field: "appointmentTime", Message: "must be 24-hour HH:MM"}
	}
	date := DateOnly(newDate)
	target := models.Appointment{AppointmentDate: date, AppointmentTime: newTime}
	start, _ := target.DateTime()
	if !start.After(s.now()) {
		return nil, &ValidationError{Field: "appointmentDate", Message: "must be in the future"}
	}

	conflict, err := s.appointments.HasConflict(ctx, appt.DoctorID, date, newTime, appt.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	if err := s.appointments.Move(ctx, id, date, newTime); err != nil {
		return nil, err
	}
	appt.AppointmentDate = date
	appt.AppointmentTime = newTime
	appt.Status = models.StatusScheduled
	return appt, nil
}

// statusTransitions is the allowed lifecycle graph: scheduled → confirmed →
// in-progress → completed, with cancellation, no-show and rescheduled exits
// from the earlier states.
var statusTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled:  {models.StatusConfirmed, models.StatusCancelled, models.StatusNoShow, models.StatusRescheduled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled, models.StatusNoShow, models.StatusRescheduled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// UpdateStatus applies a lifecycle transition checked against the allowed
// graph. Terminal states admit no further changes.
func (s *Service) UpdateStatus(ctx context.Context, id primitive.ObjectID, next models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, &IneligibleTransitionError{Op: "status change", Reason: ReasonAlreadyTerminal}
	}
	allowed := false
	for _, t := range statusTransitions[appt.Status] {
		if t == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &IneligibleTransitionError{Op: "status change", Reason: ReasonNotAllowed}
	}
	if err := s.appointments.UpdateStatus(ctx, id, next, ""); err != nil {
		return nil, err
	}
	appt.Status = next
	return appt, nil
}

// DoctorDaySlots lists the still-free slot start times for a doctor on a
// calendar day: the working-hours grid for that weekday minus the times
// held by active appointments.
func (s *Service) DoctorDaySlots(ctx context.Context, doctorID primitive.ObjectID, date time.Time, duration int) ([]string, error) {
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}
	if duration < models.MinDurationMinutes || duration > models.MaxDurationMinutes {
		return nil, &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("must be between %d and %d minutes", models.MinDurationMinutes, models.MaxDurationMinutes),
		}
	}

	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day := DateOnly(date)
	dayName := strings.ToLower(day.Weekday().String())
	slots := SlotsForDay(doctor.WorkingHours, dayName, duration)
	if len(slots) == 0 {
		return []string{}, nil
	}

	booked, err := s.appointments.FindByDoctorOnDate(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	taken := make([]string, 0, len(booked))
	for _, a := range booked {
		if a.Status.IsActive() {
			taken = append(taken, a.AppointmentTime)
		}
	}
	return availableSlots(slots, taken), nil
}

// ListByDateRange returns appointments whose date falls in [from, to],
// ordered by date then time.
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	return s.appointments.FindByDateRange(ctx, DateOnly(from), DateOnly(to))
}

// ListTodayForDoctor returns the doctor's appointments for the current day
// per the injected clock.
func (s *Service) ListTodayForDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	return s.appointments.FindByDoctorOnDate(ctx, doctorID, DateOnly(s.now()))
}

// ListForPatient returns all of a patient's appointments, ordered by date
// then time.
func (s *Service) ListForPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	return s.appointments.FindByPatient(ctx, patientID)
}

// ListForDoctor returns all of a doctor's appointments, ordered by date
// then time.
func (s *Service) ListForDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	return s.appointments.FindByDoctor(ctx, doctorID)
}

// Get fetches a single appointment.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	return s.appointments.FindByID(ctx, id)
}
