package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// NotificationService sends appointment SMS messages through Textbelt.
type NotificationService struct {
	textbeltKey string
}

func NewNotificationService(textbeltKey string) *NotificationService {
	return &NotificationService{textbeltKey: textbeltKey}
}

func apptWhen(apt *models.Appointment) string {
	start, ok := apt.DateTime()
	if !ok {
		return apt.AppointmentTime
	}
	return start.Format("Jan 2 at 15:04")
}

// SendBookingConfirmationSMS notifies the patient that their appointment is
// scheduled.
func (s *NotificationService) SendBookingConfirmationSMS(patient *models.User, doctor *models.Doctor, apt *models.Appointment) {
	if patient.Phone == "" {
		log.Println("SMS not sent: patient has no phone number.")
		return
	}
	body := fmt.Sprintf("Appointment scheduled with Dr. %s on %s.", doctor.FullName, apptWhen(apt))

	// Send in a goroutine so it doesn't block the API response
	go s.sendSMS(patient.Phone, body)
}

// SendCancellationSMS notifies the patient that their appointment was
// cancelled.
func (s *NotificationService) SendCancellationSMS(patient *models.User, apt *models.Appointment) {
	if patient.Phone == "" {
		return
	}
	body := fmt.Sprintf("Your appointment on %s has been cancelled.", apptWhen(apt))
	go s.sendSMS(patient.Phone, body)
}

// SendRescheduleSMS notifies the patient of their appointment's new slot.
func (s *NotificationService) SendRescheduleSMS(patient *models.User, apt *models.Appointment) {
	if patient.Phone == "" {
		return
	}
	body := fmt.Sprintf("Your appointment has been moved to %s.", apptWhen(apt))
	go s.sendSMS(patient.Phone, body)
}

func (s *NotificationService) sendSMS(phone, message string) {
	// Textbelt free key allows 1 SMS per day. Get a paid key for more.
	postBody, _ := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.textbeltKey,
	})

	resp, err := http.Post("https://textbelt.com/text", "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		log.Printf("Failed to send Textbelt request for number %s: %v", phone, err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)

	success, _ := result["success"].(bool)
	if !success {
		errorMsg, _ := result["error"].(string)
		log.Printf("Failed to send SMS via Textbelt to %s. Reason: %s", phone, errorMsg)
	} else {
		log.Printf("Successfully sent SMS via Textbelt to %s", phone)
	}
}
