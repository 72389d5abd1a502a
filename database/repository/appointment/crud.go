package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"serenity/database"
	"serenity/models"
)

// FindMany returns matching appointments; an empty match is an empty
// slice, never an error.
func (r *MongoAppointmentRepo) FindMany(ctx context.Context, f Filter, opts database.ListOptions) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.exec.Do(ctx, "appointments.find", func(ctx context.Context) error {
		cursor, err := r.coll.Find(ctx, f.query(), opts.Find())
		if err != nil {
			return database.Classify(entity, "", err)
		}
		defer cursor.Close(ctx)

		var appts []models.Appointment
		if err := cursor.All(ctx, &appts); err != nil {
			return database.Classify(entity, "", err)
		}
		for i := range appts {
			appts[i].Normalize()
		}
		out = appts
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Appointment{}
	}
	return out, nil
}

// FindByID returns the appointment or nil when absent. A malformed id
// is classified, never a panic.
func (r *MongoAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Appointment
	err = r.exec.Do(ctx, "appointments.findById", func(ctx context.Context) error {
		var appt models.Appointment
		if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&appt); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return database.Classify(entity, id, err)
		}
		appt.Normalize()
		out = &appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create persists a free slot and returns it with the normalized id.
func (r *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if appt.Date == "" || appt.StartTime == "" || appt.EndTime == "" {
		return nil, &database.ValidationError{Entity: entity, Reason: "date, startTime and endTime are required"}
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.IsBooked = false

	err := r.exec.Do(ctx, "appointments.create", func(ctx context.Context) error {
		res, err := r.coll.InsertOne(ctx, appt)
		if err != nil {
			return database.Classify(entity, "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			appt.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	appt.Normalize()
	return appt, nil
}

// Update verifies existence and applies the edit; the post-update
// document is returned.
func (r *MongoAppointmentRepo) Update(ctx context.Context, id string, upd Update) (*models.Appointment, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Appointment
	err = r.exec.Do(ctx, "appointments.update", func(ctx context.Context) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var appt models.Appointment
		err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": upd.set()}, opts).Decode(&appt)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return &database.NotFoundError{Entity: entity, ID: id}
			}
			return database.Classify(entity, id, err)
		}
		appt.Normalize()
		out = &appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an unbooked slot and returns its last-known state.
// Deleting a booked appointment is refused; cancellation must go
// through the booking flow first.
func (r *MongoAppointmentRepo) Delete(ctx context.Context, id string) (*models.Appointment, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Appointment
	err = r.exec.Do(ctx, "appointments.delete", func(ctx context.Context) error {
		var appt models.Appointment
		err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid, "isBooked": false}).Decode(&appt)
		if err == nil {
			appt.Normalize()
			out = &appt
			return nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return database.Classify(entity, id, err)
		}
		// Distinguish "missing" from "booked".
		count, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if cerr != nil {
			return database.Classify(entity, id, cerr)
		}
		if count > 0 {
			return &database.ConflictError{Reason: "appointment is booked and cannot be deleted"}
		}
		return &database.NotFoundError{Entity: entity, ID: id}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkBooked flips isBooked false to true as a single guarded write.
// A zero matched count means the slot was taken (or removed) since the
// caller's advisory read; inside a transaction that aborts the whole
// booking.
func (r *MongoAppointmentRepo) MarkBooked(ctx context.Context, oid primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "isBooked": false},
		bson.M{"$set": bson.M{"isBooked": true, "updatedAt": time.Now()}})
	if err != nil {
		return database.Classify(entity, oid.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return &database.ConflictError{Reason: "appointment already booked"}
	}
	return nil
}

// MarkFree is the compensating inverse of MarkBooked.
func (r *MongoAppointmentRepo) MarkFree(ctx context.Context, oid primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "isBooked": true},
		bson.M{"$set": bson.M{"isBooked": false, "updatedAt": time.Now()}})
	if err != nil {
		return database.Classify(entity, oid.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return &database.ConflictError{Reason: "appointment is not marked booked"}
	}
	return nil
}
