package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseData is the standard JSON envelope for API responses.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a 200 response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{Status: http.StatusOK, Message: message, Data: data})
}

// Created sends a 201 response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{Status: http.StatusCreated, Message: message, Data: data})
}

// Fail sends an error response with the given status code.
func Fail(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{Status: statusCode, Message: "An error occurred", Error: errorMessage})
}
