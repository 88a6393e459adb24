package scheduling

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GhadgeRutuja/HealthCare--sub000/internal/models"
)

// byDateThenTime is the canonical result ordering for appointment queries.
var byDateThenTime = bson.D{{Key: "appointmentDate", Value: 1}, {Key: "appointmentTime", Value: 1}}

type MongoAppointmentRepository struct {
	col *mongo.Collection
}

func NewMongoAppointmentRepository(db *mongo.Database) *MongoAppointmentRepository {
	return &MongoAppointmentRepository{col: db.Collection("appointments")}
}

// EnsureIndexes creates the partial unique index that makes double-booking
// impossible: at most one appointment per (doctorId, appointmentDate,
// appointmentTime) among documents whose status is still active. Terminal
// and rescheduled appointments fall outside the filter, so a freed slot is
// immediately reusable.
func (r *MongoAppointmentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "doctorId", Value: 1},
			{Key: "appointmentDate", Value: 1},
			{Key: "appointmentTime", Value: 1},
		},
		Options: options.Index().
			SetName("unique_active_slot").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": models.ActiveStatuses},
			}),
	})
	return err
}

func (r *MongoAppointmentRepository) Insert(ctx context.Context, appt *models.Appointment) error {
	_, err := r.col.InsertOne(ctx, appt)
	if mongo.IsDuplicateKeyError(err) {
		// Lost race: a concurrent request claimed the slot between the
		// advisory check and this insert.
		return ErrSlotConflict
	}
	return err
}

func (r *MongoAppointmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *MongoAppointmentRepository) HasConflict(ctx context.Context, doctorID primitive.ObjectID, date time.Time, clock string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"doctorId":        doctorID,
		"appointmentDate": date,
		"appointmentTime": clock,
		"status":          bson.M{"$in": models.ActiveStatuses},
	}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoAppointmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus, cancellationReason string) error {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if cancellationReason != "" {
		set["cancellationReason"] = cancellationReason
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAppointmentRepository) Move(ctx context.Context, id primitive.ObjectID, date time.Time, clock string) error {
	set := bson.M{
		"appointmentDate": date,
		"appointmentTime": clock,
		"status":          models.StatusScheduled,
		"updatedAt":       time.Now().UTC(),
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		// The unique index also guards updates into an occupied slot.
		return ErrSlotConflict
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAppointmentRepository) FindByDoctorOnDate(ctx context.Context, doctorID primitive.ObjectID, date time.Time) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"doctorId": doctorID, "appointmentDate": date})
}

func (r *MongoAppointmentRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"appointmentDate": bson.M{"$gte": from, "$lte": to}})
}

func (r *MongoAppointmentRepository) FindByPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"patientId": patientID})
}

func (r *MongoAppointmentRepository) FindByDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"doctorId": doctorID})
}

func (r *MongoAppointmentRepository) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(byDateThenTime))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

type MongoDoctorRepository struct {
	col *mongo.Collection
}

func NewMongoDoctorRepository(db *mongo.Database) *MongoDoctorRepository {
	return &MongoDoctorRepository{col: db.Collection("doctors")}
}

func (r *MongoDoctorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var doc models.Doctor
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
