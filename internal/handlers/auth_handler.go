package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
	"github.com/GhadgeRutuja/HealthCare--sub000/internal/utils"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=patient doctor"`
	Phone    string `json:"phone"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RolePatient
	}

	user := models.User{
		ID:       primitive.NewObjectID(),
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     role,
		Phone:    req.Phone,
	}

	collection := h.DB.Collection("users")
	if _, err := collection.InsertOne(c.Request.Context(), user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(c, http.StatusConflict, "An account with this email already exists")
			return
		}
		utils.Fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Doctors start out pending until an admin activates them.
	if role == models.RoleDoctor {
		doctor := models.Doctor{
			ID:       primitive.NewObjectID(),
			UserID:   user.ID,
			FullName: user.FullName,
			Status:   models.DoctorPending,
		}
		if _, err := h.DB.Collection("doctors").InsertOne(c.Request.Context(), doctor); err != nil {
			utils.Fail(c, http.StatusInternalServerError, "Failed to create doctor profile")
			return
		}
	}

	utils.Created(c, "Account created", user)
}

func (h *Handler) Login(c *gin.Context) {
	var loginReq struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	var user models.User
	collection := h.DB.Collection("users")
	err := collection.FindOne(c.Request.Context(), bson.M{"email": loginReq.Email}).Decode(&user)
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		utils.Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.JWT.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Could not generate token")
		return
	}

	user.Password = ""
	utils.Success(c, "Logged in", gin.H{"token": token, "user": user})
}

// GetCurrentUser retrieves the profile of the currently authenticated user.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userIDHex, exists := c.Get("userID")
	if !exists {
		utils.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex.(string))
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	var user models.User
	err = h.DB.Collection("users").FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		utils.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	utils.Success(c, "OK", user)
}

// UpdateCurrentUser allows a user to update their own profile.
func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	userIDHex, _ := c.Get("userID")
	userID, _ := primitive.ObjectIDFromHex(userIDHex.(string))

	var req struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{}
	if req.FullName != "" {
		set["fullName"] = req.FullName
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if len(set) == 0 {
		utils.Fail(c, http.StatusBadRequest, "No update fields provided")
		return
	}

	result, err := h.DB.Collection("users").UpdateOne(c.Request.Context(), bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Failed to update user profile")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(c, http.StatusNotFound, "User not found")
		return
	}

	utils.Success(c, "Profile updated", nil)
}
