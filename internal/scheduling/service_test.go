package scheduling

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// fakeAppointmentRepo is an in-memory AppointmentRepository that enforces
// the same uniqueness the partial index does: at most one active
// appointment per (doctor, date, time).
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: make(map[primitive.ObjectID]*models.Appointment)}
}

func (r *fakeAppointmentRepo) slotHeld(doctorID primitive.ObjectID, date time.Time, clock string, exclude primitive.ObjectID) bool {
	for id, a := range r.items {
		if id == exclude {
			continue
		}
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) && a.AppointmentTime == clock && a.Status.IsActive() {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) Insert(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.Status.IsActive() && r.slotHeld(appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, appt.ID) {
		return ErrSlotConflict
	}
	cp := *appt
	r.items[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) HasConflict(_ context.Context, doctorID primitive.ObjectID, date time.Time, clock string, excludeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slotHeld(doctorID, date, clock, excludeID), nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.AppointmentStatus, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if reason != "" {
		a.CancellationReason = reason
	}
	return nil
}

func (r *fakeAppointmentRepo) Move(_ context.Context, id primitive.ObjectID, date time.Time, clock string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	if r.slotHeld(a.DoctorID, date, clock, id) {
		return ErrSlotConflict
	}
	a.AppointmentDate = date
	a.AppointmentTime = clock
	a.Status = models.StatusScheduled
	return nil
}

func (r *fakeAppointmentRepo) sorted(match func(*models.Appointment) bool) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.items {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.Before(out[j].AppointmentDate)
		}
		return out[i].AppointmentTime < out[j].AppointmentTime
	})
	return out
}

func (r *fakeAppointmentRepo) FindByDoctorOnDate(_ context.Context, doctorID primitive.ObjectID, date time.Time) ([]models.Appointment, error) {
	return r.sorted(func(a *models.Appointment) bool {
		return a.DoctorID == doctorID && a.AppointmentDate.Equal(date)
	}), nil
}

func (r *fakeAppointmentRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]models.Appointment, error) {
	return r.sorted(func(a *models.Appointment) bool {
		return !a.AppointmentDate.Before(from) && !a.AppointmentDate.After(to)
	}), nil
}

func (r *fakeAppointmentRepo) FindByPatient(_ context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	return r.sorted(func(a *models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *fakeAppointmentRepo) FindByDoctor(_ context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	return r.sorted(func(a *models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

// blindRepo simulates the lost race of §"check-then-insert": the advisory
// conflict check sees nothing, so only the store-level uniqueness stops the
// double booking.
type blindRepo struct{ *fakeAppointmentRepo }

func (r blindRepo) HasConflict(context.Context, primitive.ObjectID, time.Time, string, primitive.ObjectID) (bool, error) {
	return false, nil
}

type fakeDoctorRepo struct {
	doctors map[primitive.ObjectID]*models.Doctor
}

func (r *fakeDoctorRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // a Monday

func newTestService() (*Service, *fakeAppointmentRepo, primitive.ObjectID) {
	appts := newFakeAppointmentRepo()
	doctorID := primitive.NewObjectID()
	doctors := &fakeDoctorRepo{doctors: map[primitive.ObjectID]*models.Doctor{
		doctorID: {
			ID:     doctorID,
			Status: models.DoctorActive,
			WorkingHours: models.WorkingHours{
				"monday":  {IsWorking: true, StartTime: "09:00", EndTime: "17:00"},
				"tuesday": {IsWorking: true, StartTime: "09:00", EndTime: "12:00"},
			},
		},
	}}
	svc := NewService(appts, doctors, func() time.Time { return testNow })
	return svc, appts, doctorID
}

func bookingFor(doctorID primitive.ObjectID, date time.Time, clock string) BookingRequest {
	return BookingRequest{
		PatientID: primitive.NewObjectID(),
		DoctorID:  doctorID,
		Date:      date,
		Time:      clock,
	}
}

func TestBook_Defaults(t *testing.T) {
	svc, _, doctorID := newTestService()
	appt, err := svc.Book(context.Background(), bookingFor(doctorID, testNow.AddDate(0, 0, 1), "10:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != models.StatusScheduled {
		t.Errorf("status = %s, want scheduled", appt.Status)
	}
	if appt.Duration != models.DefaultDurationMinutes {
		t.Errorf("duration = %d, want %d", appt.Duration, models.DefaultDurationMinutes)
	}
	if appt.Type != models.TypeConsultation || appt.Priority != models.PriorityNormal {
		t.Errorf("defaults not applied: type=%s priority=%s", appt.Type, appt.Priority)
	}
}

func TestBook_Validation(t *testing.T) {
	svc, _, doctorID := newTestService()
	tomorrow := testNow.AddDate(0, 0, 1)

	cases := []struct {
		name  string
		req   BookingRequest
		field string
	}{
		{"bad time format", bookingFor(doctorID, tomorrow, "9:00"), "appointmentTime"},
		{"date in the past", bookingFor(doctorID, testNow.AddDate(0, 0, -1), "10:00"), "appointmentDate"},
		{"duration too short", BookingRequest{DoctorID: doctorID, Date: tomorrow, Time: "10:00", Duration: 10}, "duration"},
		{"duration too long", BookingRequest{DoctorID: doctorID, Date: tomorrow, Time: "10:00", Duration: 180}, "duration"},
	}
	for _, tc := range cases {
		_, err := svc.Book(context.Background(), tc.req)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: got %v, want ValidationError", tc.name, err)
			continue
		}
		if verr.Field != tc.field {
			t.Errorf("%s: field = %q, want %q", tc.name, verr.Field, tc.field)
		}
	}
}

func TestBook_TodayLaterSlotAllowed(t *testing.T) {
	svc, _, doctorID := newTestService()
	// testNow is Monday 09:00; a 14:00 slot the same day is still future.
	if _, err := svc.Book(context.Background(), bookingFor(doctorID, testNow, "14:00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 09:00 itself is not strictly in the future.
	_, err := svc.Book(context.Background(), bookingFor(doctorID, testNow, "09:00"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestBook_SlotConflict(t *testing.T) {
	svc, _, doctorID := newTestService()
	date := testNow.AddDate(0, 0, 1)

	if _, err := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	_, err := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00"))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("got %v, want ErrSlotConflict", err)
	}
}

func TestBook_LostRaceSurfacesSlotConflict(t *testing.T) {
	svc, appts, doctorID := newTestService()
	racy := NewService(blindRepo{appts}, svc.doctors, func() time.Time { return testNow })
	date := testNow.AddDate(0, 0, 1)

	if _, err := racy.Book(context.Background(), bookingFor(doctorID, date, "11:00")); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	// The advisory check is blind, so only the store-level constraint can
	// reject this one.
	_, err := racy.Book(context.Background(), bookingFor(doctorID, date, "11:00"))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("got %v, want ErrSlotConflict from the unique constraint", err)
	}
}

func TestBook_ConcurrentRequests_ExactlyOneWins(t *testing.T) {
	svc, appts, doctorID := newTestService()
	racy := NewService(blindRepo{appts}, svc.doctors, func() time.Time { return testNow })
	date := testNow.AddDate(0, 0, 1)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := racy.Book(context.Background(), bookingFor(doctorID, date, "15:00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("wins=%d conflicts=%d, want exactly one winner", wins, conflicts)
	}
}

func TestBook_InactiveDoctorRejected(t *testing.T) {
	svc, _, doctorID := newTestService()
	doc, _ := svc.doctors.FindByID(context.Background(), doctorID)
	doc.Status = models.DoctorSuspended

	_, err := svc.Book(context.Background(), bookingFor(doctorID, testNow.AddDate(0, 0, 1), "10:00"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestCancel(t *testing.T) {
	svc, _, doctorID := newTestService()
	appt, err := svc.Book(context.Background(), bookingFor(doctorID, testNow.AddDate(0, 0, 7), "10:00"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), appt.ID, "patient request")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// Second cancel hits the terminal-state rule.
	_, err = svc.Cancel(context.Background(), appt.ID, "")
	var ierr *IneligibleTransitionError
	if !errors.As(err, &ierr) || ierr.Reason != ReasonAlreadyTerminal {
		t.Fatalf("got %v, want already-terminal", err)
	}
}

func TestCancel_TooLate(t *testing.T) {
	svc, appts, doctorID := newTestService()
	// 10:00 today with now 09:00: only an hour of notice.
	appt := &models.Appointment{
		ID:              primitive.NewObjectID(),
		DoctorID:        doctorID,
		PatientID:       primitive.NewObjectID(),
		AppointmentDate: DateOnly(testNow),
		AppointmentTime: "10:00",
		Duration:        30,
		Status:          models.StatusScheduled,
	}
	if err := appts.Insert(context.Background(), appt); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := svc.Cancel(context.Background(), appt.ID, "")
	var ierr *IneligibleTransitionError
	if !errors.As(err, &ierr) || ierr.Reason != ReasonTooLate {
		t.Fatalf("got %v, want too-late", err)
	}
}

func TestReschedule_FreesOldSlotAndClaimsNew(t *testing.T) {
	svc, _, doctorID := newTestService()
	date := testNow.AddDate(0, 0, 7)
	appt, err := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	moved, err := svc.Reschedule(context.Background(), appt.ID, date, "11:00")
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if moved.AppointmentTime != "11:00" || moved.Status != models.StatusScheduled {
		t.Errorf("moved to %s status %s", moved.AppointmentTime, moved.Status)
	}

	// The vacated 10:00 slot is bookable again.
	if _, err := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00")); err != nil {
		t.Fatalf("vacated slot not rebookable: %v", err)
	}
	// The claimed 11:00 slot is not.
	if _, err := svc.Book(context.Background(), bookingFor(doctorID, date, "11:00")); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("got %v, want ErrSlotConflict on the new slot", err)
	}
}

func TestReschedule_ConflictAtTarget(t *testing.T) {
	svc, _, doctorID := newTestService()
	date := testNow.AddDate(0, 0, 7)
	a, _ := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00"))
	if _, err := svc.Book(context.Background(), bookingFor(doctorID, date, "11:00")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := svc.Reschedule(context.Background(), a.ID, date, "11:00")
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("got %v, want ErrSlotConflict", err)
	}
}

func TestReschedule_SameSlotDoesNotConflictWithItself(t *testing.T) {
	svc, _, doctorID := newTestService()
	date := testNow.AddDate(0, 0, 7)
	a, _ := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00"))

	// Re-checking with itself excluded must not see its own record.
	if _, err := svc.Reschedule(context.Background(), a.ID, date, "10:00"); err != nil {
		t.Fatalf("self-conflict on reschedule: %v", err)
	}
}

func TestReschedule_ShortNotice(t *testing.T) {
	svc, _, doctorID := newTestService()
	// Tomorrow 10:00 seen from Monday 09:00: 25h notice passes, but after
	// booking, move now forward so only 1h remains.
	date := testNow.AddDate(0, 0, 1)
	a, err := svc.Book(context.Background(), bookingFor(doctorID, date, "10:00"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	late := NewService(svc.appointments, svc.doctors, func() time.Time {
		return testNow.AddDate(0, 0, 1)
	})
	_, err = late.Reschedule(context.Background(), a.ID, date.AddDate(0, 0, 7), "10:00")
	var ierr *IneligibleTransitionError
	if !errors.As(err, &ierr) || ierr.Reason != ReasonTooLate {
		t.Fatalf("got %v, want too-late", err)
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	svc, _, doctorID := newTestService()
	a, _ := svc.Book(context.Background(), bookingFor(doctorID, testNow.AddDate(0, 0, 7), "10:00"))

	for _, next := range []models.AppointmentStatus{models.StatusConfirmed, models.StatusInProgress, models.StatusCompleted} {
		if _, err := svc.UpdateStatus(context.Background(), a.ID, next); err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
	}

	// completed is terminal.
	_, err := svc.UpdateStatus(context.Background(), a.ID, models.StatusConfirmed)
	var ierr *IneligibleTransitionError
	if !errors.As(err, &ierr) || ierr.Reason != ReasonAlreadyTerminal {
		t.Fatalf("got %v, want already-terminal", err)
	}
}

func TestUpdateStatus_SkippingStatesRejected(t *testing.T) {
	svc, _, doctorID := newTestService()
	a, _ := svc.Book(context.Background(), bookingFor(doctorID, testNow.AddDate(0, 0, 7), "10:00"))

	_, err := svc.UpdateStatus(context.Background(), a.ID, models.StatusCompleted)
	var ierr *IneligibleTransitionError
	if !errors.As(err, &ierr) || ierr.Reason != ReasonNotAllowed {
		t.Fatalf("got %v, want not-allowed", err)
	}
}

func TestDoctorDaySlots(t *testing.T) {
	svc, _, doctorID := newTestService()
	monday := testNow.AddDate(0, 0, 7)

	slots, err := svc.DoctorDaySlots(context.Background(), doctorID, monday, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 free slots, got %d", len(slots))
	}

	if _, err := svc.Book(context.Background(), bookingFor(doctorID, monday, "09:30")); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	slots, err = svc.DoctorDaySlots(context.Background(), doctorID, monday, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("expected 15 free slots after booking, got %d", len(slots))
	}
	for _, s := range slots {
		if s == "09:30" {
			t.Error("booked slot still listed as free")
		}
	}
}

func TestDoctorDaySlots_CancelledBookingDoesNotBlock(t *testing.T) {
	svc, _, doctorID := newTestService()
	monday := testNow.AddDate(0, 0, 7)

	a, _ := svc.Book(context.Background(), bookingFor(doctorID, monday, "09:30"))
	if _, err := svc.Cancel(context.Background(), a.ID, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	slots, err := svc.DoctorDaySlots(context.Background(), doctorID, monday, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected all 16 slots free, got %d", len(slots))
	}
}

func TestDoctorDaySlots_NonWorkingDay(t *testing.T) {
	svc, _, doctorID := newTestService()
	sunday := testNow.AddDate(0, 0, 6)

	slots, err := svc.DoctorDaySlots(context.Background(), doctorID, sunday, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("non-working day produced slots: %v", slots)
	}
}

func TestQueryHelpers_Ordering(t *testing.T) {
	svc, _, doctorID := newTestService()
	d1 := testNow.AddDate(0, 0, 7)
	d2 := testNow.AddDate(0, 0, 8)

	// Insert out of order.
	for _, b := range []struct {
		date  time.Time
		clock string
	}{{d2, "09:00"}, {d1, "11:00"}, {d1, "09:30"}} {
		if _, err := svc.Book(context.Background(), bookingFor(doctorID, b.date, b.clock)); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, err := svc.ListByDateRange(context.Background(), d1, d2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(got))
	}
	want := []string{"09:30", "11:00", "09:00"}
	for i, a := range got {
		if a.AppointmentTime != want[i] {
			t.Errorf("position %d: %s on %s, want %s", i, a.AppointmentTime, a.AppointmentDate.Format("2006-01-02"), want[i])
		}
	}
}

func TestListTodayForDoctor(t *testing.T) {
	svc, _, doctorID := newTestService()

	if _, err := svc.Book(context.Background(), bookingFor(doctorID, testNow, "14:00")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := svc.Book(context.Background(), bookingFor(doctorID, testNow.AddDate(0, 0, 1), "10:00")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	today, err := svc.ListTodayForDoctor(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(today) != 1 || today[0].AppointmentTime != "14:00" {
		t.Fatalf("got %d appointments, want just today's 14:00", len(today))
	}
}
