package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/scheduling"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/utils"
)

type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required"`
	AppointmentDate string `json:"appointmentDate" binding:"required"` // "2006-01-02"
	AppointmentTime string `json:"appointmentTime" binding:"required"` // "HH:MM"
	Duration        int    `json:"duration" binding:"omitempty,min=15,max=120"`
	Type            string `json:"appointmentType" binding:"omitempty,oneof=consultation follow-up check-up emergency"`
	Priority        string `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	Reason          string `json:"reason"`
}

// CreateAppointment books a slot for the authenticated patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	userIDHex, _ := c.Get("userID")
	patientID, err := primitive.ObjectIDFromHex(userIDHex.(string))
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Invalid user ID in token")
		return
	}
	doctorID, err := primitive.ObjectIDFromHex(req.DoctorID)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor ID")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.AppointmentDate, time.UTC)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
		return
	}

	appt, err := h.Scheduler.Book(c.Request.Context(), scheduling.BookingRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      req.AppointmentTime,
		Duration:  req.Duration,
		Type:      models.AppointmentType(req.Type),
		Priority:  models.AppointmentPriority(req.Priority),
		Reason:    req.Reason,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	h.notifyBooking(c, appt)
	utils.Created(c, "Appointment booked", appt)
}

func (h *Handler) notifyBooking(c *gin.Context, appt *models.Appointment) {
	var patient models.User
	if err := h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"_id": appt.PatientID}).Decode(&patient); err != nil {
		return
	}
	var doctor models.Doctor
	if err := h.DB.Collection("doctors").FindOne(c.Request.Context(), bson.M{"_id": appt.DoctorID}).Decode(&doctor); err != nil {
		return
	}
	h.NotificationSvc.SendBookingConfirmationSMS(&patient, &doctor, appt)
}

// GetAppointments lists appointments, role-scoped: patients see their own,
// doctors see their schedule, admins see everything, with an optional date
// range.
func (h *Handler) GetAppointments(c *gin.Context) {
	userIDHex, _ := c.Get("userID")
	userRole, _ := c.Get("userRole")

	fromStr, toStr := c.Query("startDate"), c.Query("endDate")
	if fromStr != "" && toStr != "" {
		from, err1 := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
		to, err2 := time.ParseInLocation("2006-01-02", toStr, time.UTC)
		if err1 != nil || err2 != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid date range, use YYYY-MM-DD")
			return
		}
		appointments, err := h.Scheduler.ListByDateRange(c.Request.Context(), from, to)
		if err != nil {
			respondSchedulingError(c, err)
			return
		}
		role := userRole.(string)
		viewer, _ := primitive.ObjectIDFromHex(userIDHex.(string))
		if role == models.RoleDoctor {
			viewer = h.doctorIDForUser(c, viewer)
		}
		utils.Success(c, "OK", filterByRole(appointments, role, viewer))
		return
	}

	id, err := primitive.ObjectIDFromHex(userIDHex.(string))
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Invalid user ID in token")
		return
	}

	var appointments []models.Appointment
	switch userRole {
	case models.RoleDoctor:
		appointments, err = h.Scheduler.ListForDoctor(c.Request.Context(), h.doctorIDForUser(c, id))
	case models.RoleAdmin:
		// A month either side of today is the admin dashboard default.
		now := time.Now().UTC()
		appointments, err = h.Scheduler.ListByDateRange(c.Request.Context(), now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	default:
		appointments, err = h.Scheduler.ListForPatient(c.Request.Context(), id)
	}
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "OK", appointments)
}

// filterByRole narrows a date-range listing to what the caller may see.
func filterByRole(appointments []models.Appointment, role string, viewer primitive.ObjectID) []models.Appointment {
	if role == models.RoleAdmin {
		return appointments
	}
	out := make([]models.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if (role == models.RoleDoctor && a.DoctorID == viewer) || (role == models.RolePatient && a.PatientID == viewer) {
			out = append(out, a)
		}
	}
	return out
}

// doctorIDForUser resolves the doctor profile belonging to a user account.
// Falls back to the user id itself when no profile exists.
func (h *Handler) doctorIDForUser(c *gin.Context, userID primitive.ObjectID) primitive.ObjectID {
	var doctor models.Doctor
	if err := h.DB.Collection("doctors").FindOne(c.Request.Context(), bson.M{"userId": userID}).Decode(&doctor); err == nil {
		return doctor.ID
	}
	return userID
}

// GetAppointment fetches one appointment; patients may only read their own.
func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	appt, err := h.Scheduler.Get(c.Request.Context(), id)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	userIDHex, _ := c.Get("userID")
	userRole, _ := c.Get("userRole")
	if userRole == models.RolePatient && appt.PatientID.Hex() != userIDHex.(string) {
		utils.Fail(c, http.StatusForbidden, "Permission denied.")
		return
	}

	utils.Success(c, "OK", appt)
}

// CancelAppointment cancels a future appointment with at least 2 hours'
// notice.
func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// The body is optional for cancellations.
	_ = c.ShouldBindJSON(&req)

	if !h.canModifyAppointment(c, id) {
		utils.Fail(c, http.StatusForbidden, "Permission denied.")
		return
	}

	appt, err := h.Scheduler.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	var patient models.User
	if err := h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"_id": appt.PatientID}).Decode(&patient); err == nil {
		h.NotificationSvc.SendCancellationSMS(&patient, appt)
	}

	utils.Success(c, "Appointment cancelled", appt)
}

// RescheduleAppointment moves an appointment to a new slot with at least 24
// hours' notice.
func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	var req struct {
		AppointmentDate string `json:"appointmentDate" binding:"required"`
		AppointmentTime string `json:"appointmentTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.AppointmentDate, time.UTC)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
		return
	}

	if !h.canModifyAppointment(c, id) {
		utils.Fail(c, http.StatusForbidden, "Permission denied.")
		return
	}

	appt, err := h.Scheduler.Reschedule(c.Request.Context(), id, date, req.AppointmentTime)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	var patient models.User
	if err := h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"_id": appt.PatientID}).Decode(&patient); err == nil {
		h.NotificationSvc.SendRescheduleSMS(&patient, appt)
	}

	utils.Success(c, "Appointment rescheduled", appt)
}

// UpdateAppointmentStatus applies a lifecycle transition (doctor/admin
// only, enforced by route middleware).
func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=scheduled confirmed in-progress completed cancelled no-show rescheduled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.Scheduler.UpdateStatus(c.Request.Context(), id, models.AppointmentStatus(req.Status))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Status updated", appt)
}

// GetTodayAppointments lists a doctor's appointments for today.
func (h *Handler) GetTodayAppointments(c *gin.Context) {
	doctorID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor ID")
		return
	}

	appointments, err := h.Scheduler.ListTodayForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "OK", appointments)
}

// canModifyAppointment allows the owning patient and any doctor/admin
// through.
func (h *Handler) canModifyAppointment(c *gin.Context, id primitive.ObjectID) bool {
	userRole, _ := c.Get("userRole")
	if userRole == models.RoleDoctor || userRole == models.RoleAdmin {
		return true
	}
	userIDHex, _ := c.Get("userID")
	appt, err := h.Scheduler.Get(c.Request.Context(), id)
	if err != nil {
		// Let the operation itself surface not-found.
		return true
	}
	return appt.PatientID.Hex() == userIDHex.(string)
}
