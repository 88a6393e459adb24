package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/utils"
)

// GetServices lists active catalog services, optionally filtered by
// category.
func (h *Handler) GetServices(c *gin.Context) {
	filter := bson.M{"isActive": true}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}

	cursor, err := h.DB.Collection("services").Find(c.Request.Context(), filter,
		options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}
	defer cursor.Close(c.Request.Context())

	services := make([]models.Service, 0)
	if err := cursor.All(c.Request.Context(), &services); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to decode services")
		return
	}
	utils.Success(c, "OK", services)
}

type CreateServiceRequest struct {
	Name        string              `json:"name" binding:"required"`
	Category    string              `json:"category" binding:"required"`
	Description string              `json:"description"`
	MinFee      float64             `json:"minFee" binding:"min=0"`
	MaxFee      float64             `json:"maxFee" binding:"min=0"`
	Hours       models.WorkingHours `json:"hours"`
}

// CreateService adds a catalog entry (admin only, enforced by route
// middleware).
func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.MaxFee < req.MinFee {
		utils.Fail(c, http.StatusBadRequest, "maxFee must not be below minFee")
		return
	}
	if req.Hours != nil {
		if err := req.Hours.Validate(); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	svc := models.Service{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		MinFee:      req.MinFee,
		MaxFee:      req.MaxFee,
		Hours:       req.Hours,
		IsActive:    true,
	}
	if _, err := h.DB.Collection("services").InsertOne(c.Request.Context(), svc); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to create service")
		return
	}
	utils.Created(c, "Service created", svc)
}
