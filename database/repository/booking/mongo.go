package bookingRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"serenity/database"
	"serenity/models"
)

const entity = "booking"

// MongoBookingRepo implements Repository on a MongoDB collection.
type MongoBookingRepo struct {
	coll *mongo.Collection
	exec *database.Executor
}

func NewMongoBookingRepo(db *mongo.Database, exec *database.Executor, logger *zap.Logger) *MongoBookingRepo {
	repo := &MongoBookingRepo{coll: db.Collection("bookings"), exec: exec}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "appointmentId", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

func (f Filter) query() (bson.M, error) {
	q := bson.M{}
	if f.Email != "" {
		q["email"] = f.Email
	}
	if f.AppointmentID != "" {
		oid, err := database.ParseID(f.AppointmentID)
		if err != nil {
			return nil, err
		}
		q["appointmentId"] = oid
	}
	return q, nil
}

// FindMany returns matching bookings, optionally attaching each
// booking's appointment through the resolver.
func (r *MongoBookingRepo) FindMany(ctx context.Context, f Filter, opts database.ListOptions, resolve AppointmentResolver) ([]models.Booking, error) {
	query, err := f.query()
	if err != nil {
		return nil, err
	}

	var out []models.Booking
	err = r.exec.Do(ctx, "bookings.find", func(ctx context.Context) error {
		cursor, err := r.coll.Find(ctx, query, opts.Find())
		if err != nil {
			return database.Classify(entity, "", err)
		}
		defer cursor.Close(ctx)

		var bookings []models.Booking
		if err := cursor.All(ctx, &bookings); err != nil {
			return database.Classify(entity, "", err)
		}
		for i := range bookings {
			bookings[i].Normalize()
		}
		out = bookings
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Booking{}
	}

	if resolve != nil {
		for i := range out {
			appt, err := resolve(ctx, out[i].AppointmentID)
			if err != nil {
				return nil, err
			}
			out[i].Appointment = appt
		}
	}
	return out, nil
}

// FindByID returns the booking or nil when absent.
func (r *MongoBookingRepo) FindByID(ctx context.Context, id string, resolve AppointmentResolver) (*models.Booking, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Booking
	err = r.exec.Do(ctx, "bookings.findById", func(ctx context.Context) error {
		var b models.Booking
		if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&b); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return database.Classify(entity, id, err)
		}
		b.Normalize()
		out = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out != nil && resolve != nil {
		appt, err := resolve(ctx, out.AppointmentID)
		if err != nil {
			return nil, err
		}
		out.Appointment = appt
	}
	return out, nil
}

// Update verifies existence and applies admin edits; the post-update
// booking is returned.
func (r *MongoBookingRepo) Update(ctx context.Context, id string, upd Update) (*models.Booking, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.SelectedServices != nil {
		set["selectedServices"] = upd.SelectedServices
	}

	var out *models.Booking
	err = r.exec.Do(ctx, "bookings.update", func(ctx context.Context) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var b models.Booking
		err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&b)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return &database.NotFoundError{Entity: entity, ID: id}
			}
			return database.Classify(entity, id, err)
		}
		b.Normalize()
		out = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert is the transactional create. Required fields are checked here
// so a validation failure surfaces before any write joins the session.
func (r *MongoBookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	if b.Name == "" || b.Email == "" {
		return &database.ValidationError{Entity: entity, Reason: "name and email are required"}
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, b)
	if err != nil {
		return database.Classify(entity, "", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.OID = oid
	}
	b.Normalize()
	return nil
}

// Remove is the transactional delete.
func (r *MongoBookingRepo) Remove(ctx context.Context, oid primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return database.Classify(entity, oid.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return &database.NotFoundError{Entity: entity, ID: oid.Hex()}
	}
	return nil
}
