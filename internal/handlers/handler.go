package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/scheduling"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/services"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/utils"
)

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	DB              *mongo.Database
	Scheduler       *scheduling.Service
	NotificationSvc *services.NotificationService
	JWT             *utils.JWTManager
}

func NewHandler(db *mongo.Database, scheduler *scheduling.Service, notificationSvc *services.NotificationService, jwt *utils.JWTManager) *Handler {
	return &Handler{
		DB:              db,
		Scheduler:       scheduler,
		NotificationSvc: notificationSvc,
		JWT:             jwt,
	}
}

// respondSchedulingError maps the scheduling error taxonomy onto HTTP
// statuses: validation 400, conflict 409, ineligible transition 422,
// missing record 404, anything else 500.
func respondSchedulingError(c *gin.Context, err error) {
	var verr *scheduling.ValidationError
	var ierr *scheduling.IneligibleTransitionError
	switch {
	case errors.As(err, &verr):
		utils.Fail(c, http.StatusBadRequest, verr.Error())
	case errors.Is(err, scheduling.ErrSlotConflict):
		utils.Fail(c, http.StatusConflict, "This slot is already booked, please pick another one")
	case errors.As(err, &ierr):
		utils.Fail(c, http.StatusUnprocessableEntity, ierr.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, "Not found")
	default:
		utils.Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
