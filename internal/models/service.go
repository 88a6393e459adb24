package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Service is a catalog entry describing an offering (e.g. "Dental Cleaning")
// independent of any doctor's appointments.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	MinFee      float64            `bson:"minFee" json:"minFee"`
	MaxFee      float64            `bson:"maxFee" json:"maxFee"`
	Hours       WorkingHours       `bson:"hours,omitempty" json:"hours,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
}
