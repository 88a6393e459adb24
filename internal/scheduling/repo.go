package scheduling

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// AppointmentRepository is the persistence contract the scheduling service
// runs against. Implementations must back Insert and Move with a unique
// compound index on (doctorId, appointmentDate, appointmentTime) restricted
// to active statuses, and surface violations as ErrSlotConflict — the index
// is the real double-booking guarantee; HasConflict is only the advisory
// early check.
type AppointmentRepository interface {
	Insert(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)

	// HasConflict reports whether an active appointment already holds
	// (doctorID, date, clock). excludeID, when non-zero, is left out of
	// the search so a record being moved does not conflict with itself.
	HasConflict(ctx context.Context, doctorID primitive.ObjectID, date time.Time, clock string, excludeID primitive.ObjectID) (bool, error)

	// UpdateStatus sets the lifecycle state, and the cancellation reason
	// when one is given.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus, cancellationReason string) error

	// Move points an appointment at a new (date, clock) pair and returns
	// it to the scheduled state.
	Move(ctx context.Context, id primitive.ObjectID, date time.Time, clock string) error

	// Query helpers. All results are ordered by (appointmentDate asc,
	// appointmentTime asc).
	FindByDoctorOnDate(ctx context.Context, doctorID primitive.ObjectID, date time.Time) ([]models.Appointment, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	FindByPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error)
}

// DoctorRepository exposes the reference data the scheduler consults.
type DoctorRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
}
