package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DoctorStatus gates whether a doctor is bookable.
type DoctorStatus string

const (
	DoctorActive    DoctorStatus = "active"
	DoctorInactive  DoctorStatus = "inactive"
	DoctorSuspended DoctorStatus = "suspended"
	DoctorPending   DoctorStatus = "pending"
)

// DayHours is one weekday's working window. StartTime and EndTime are
// 24-hour "HH:MM" and only meaningful when IsWorking is true.
type DayHours struct {
	IsWorking bool   `bson:"isWorking" json:"isWorking"`
	StartTime string `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty"`
}

// WorkingHours maps lowercase weekday names ("monday".."sunday") to that
// day's working window. Absent days count as non-working.
type WorkingHours map[string]DayHours

// Day looks up a weekday entry case-insensitively.
func (w WorkingHours) Day(name string) (DayHours, bool) {
	d, ok := w[strings.ToLower(name)]
	return d, ok
}

// Validate checks that every working day has well-formed times with
// startTime strictly before endTime.
func (w WorkingHours) Validate() error {
	for day, h := range w {
		if !h.IsWorking {
			continue
		}
		if !ValidClock(h.StartTime) || !ValidClock(h.EndTime) {
			return fmt.Errorf("%s: times must be 24-hour HH:MM", day)
		}
		if h.StartTime >= h.EndTime {
			return fmt.Errorf("%s: startTime must be before endTime", day)
		}
	}
	return nil
}

type Doctor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Specialty       string             `bson:"specialty" json:"specialty"`
	ConsultationFee float64            `bson:"consultationFee" json:"consultationFee"`
	WorkingHours    WorkingHours       `bson:"workingHours" json:"workingHours"`
	Status          DoctorStatus       `bson:"status" json:"status"`
	Bio             string             `bson:"bio,omitempty" json:"bio,omitempty"`
}
