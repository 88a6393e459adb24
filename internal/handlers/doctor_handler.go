package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/utils"
)

// GetDoctors lists bookable doctors, optionally filtered by specialty.
func (h *Handler) GetDoctors(c *gin.Context) {
	filter := bson.M{"status": models.DoctorActive}
	if specialty := c.Query("specialty"); specialty != "" {
		filter["specialty"] = specialty
	}

	cursor, err := h.DB.Collection("doctors").Find(c.Request.Context(), filter,
		options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}}))
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to retrieve doctors")
		return
	}
	defer cursor.Close(c.Request.Context())

	doctors := make([]models.Doctor, 0)
	if err := cursor.All(c.Request.Context(), &doctors); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to decode doctors")
		return
	}
	utils.Success(c, "OK", doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor ID")
		return
	}

	var doctor models.Doctor
	err = h.DB.Collection("doctors").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&doctor)
	if err != nil {
		utils.Fail(c, http.StatusNotFound, "Doctor not found")
		return
	}
	utils.Success(c, "OK", doctor)
}

// GetDoctorSlots lists the free slot start times for a doctor on a date:
// GET /doctors/:id/slots?date=2026-03-09&duration=30
func (h *Handler) GetDoctorSlots(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor ID")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		utils.Fail(c, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
		return
	}

	duration := 0
	if d := c.Query("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid duration")
			return
		}
	}

	slots, err := h.Scheduler.DoctorDaySlots(c.Request.Context(), id, date, duration)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "OK", gin.H{"date": dateStr, "slots": slots})
}

// UpdateDoctorWorkingHours replaces a doctor's weekly schedule. Doctors may
// only edit their own; admins may edit anyone's.
func (h *Handler) UpdateDoctorWorkingHours(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor ID")
		return
	}

	var req struct {
		WorkingHours    models.WorkingHours `json:"workingHours" binding:"required"`
		ConsultationFee *float64            `json:"consultationFee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.WorkingHours.Validate(); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	userRole, _ := c.Get("userRole")
	if userRole == models.RoleDoctor {
		userIDHex, _ := c.Get("userID")
		userID, _ := primitive.ObjectIDFromHex(userIDHex.(string))
		var doctor models.Doctor
		err := h.DB.Collection("doctors").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&doctor)
		if err != nil || doctor.UserID != userID {
			utils.Fail(c, http.StatusForbidden, "Permission denied.")
			return
		}
	}

	set := bson.M{"workingHours": req.WorkingHours}
	if req.ConsultationFee != nil {
		set["consultationFee"] = *req.ConsultationFee
	}

	result, err := h.DB.Collection("doctors").UpdateOne(c.Request.Context(), bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to update working hours")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(c, http.StatusNotFound, "Doctor not found")
		return
	}
	utils.Success(c, "Working hours updated", nil)
}

// UpdateDoctorStatus lets an admin activate, suspend or deactivate a
// doctor.
func (h *Handler) UpdateDoctorStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active inactive suspended pending"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.DB.Collection("doctors").UpdateOne(c.Request.Context(),
		bson.M{"_id": id}, bson.M{"$set": bson.M{"status": models.DoctorStatus(req.Status)}})
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to update doctor status")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(c, http.StatusNotFound, "Doctor not found")
		return
	}
	utils.Success(c, "Doctor status updated", nil)
}
