package appointmentRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"serenity/database"
)

const entity = "appointment"

// MongoAppointmentRepo implements Repository on a MongoDB collection.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
	exec *database.Executor
}

func NewMongoAppointmentRepo(db *mongo.Database, exec *database.Executor, logger *zap.Logger) *MongoAppointmentRepo {
	repo := &MongoAppointmentRepo{coll: db.Collection("appointments"), exec: exec}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create appointment indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}}},
		{Keys: bson.D{{Key: "isBooked", Value: 1}, {Key: "date", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Date != "" {
		q["date"] = f.Date
	} else if f.FromDate != "" {
		q["date"] = bson.M{"$gte": f.FromDate}
	}
	if f.OnlyFree {
		q["isBooked"] = false
	}
	return q
}

func (u Update) set() bson.M {
	set := bson.M{"updatedAt": time.Now()}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.StartTime != nil {
		set["startTime"] = *u.StartTime
	}
	if u.EndTime != nil {
		set["endTime"] = *u.EndTime
	}
	if u.Duration != nil {
		set["duration"] = *u.Duration
	}
	return set
}
