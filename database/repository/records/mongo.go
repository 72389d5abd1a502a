package recordsRepo

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

// MongoRecordsRepo implements Repository over the payments and
// audit_logs collections.
type MongoRecordsRepo struct {
	payments *mongo.Collection
	audit    *mongo.Collection
	exec     *database.Executor
}

func NewMongoRecordsRepo(db *mongo.Database, exec *database.Executor, logger *zap.Logger) *MongoRecordsRepo {
	repo := &MongoRecordsRepo{
		payments: db.Collection("payments"),
		audit:    db.Collection("audit_logs"),
		exec:     exec,
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create records indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoRecordsRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := r.audit.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *MongoRecordsRepo) ListPayments(ctx context.Context, opts database.ListOptions) ([]models.Payment, error) {
	var out []models.Payment
	err := r.exec.Do(ctx, "payments.find", func(ctx context.Context) error {
		cursor, err := r.payments.Find(ctx, bson.M{}, opts.Find())
		if err != nil {
			return database.Classify("payment", "", err)
		}
		defer cursor.Close(ctx)
		var payments []models.Payment
		if err := cursor.All(ctx, &payments); err != nil {
			return database.Classify("payment", "", err)
		}
		for i := range payments {
			payments[i].Normalize()
		}
		out = payments
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Payment{}
	}
	return out, nil
}

func (r *MongoRecordsRepo) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var out *models.Payment
	err = r.exec.Do(ctx, "payments.findById", func(ctx context.Context) error {
		var p models.Payment
		if err := r.payments.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return database.Classify("payment", id, err)
		}
		p.Normalize()
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRecordsRepo) CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if p.Reference == "" || p.Amount <= 0 {
		return nil, &database.ValidationError{Entity: "payment", Reason: "reference and a positive amount are required"}
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = "recorded"
	}

	err := r.exec.Do(ctx, "payments.create", func(ctx context.Context) error {
		res, err := r.payments.InsertOne(ctx, p)
		if err != nil {
			return database.Classify("payment", "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			p.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

func (r *MongoRecordsRepo) UpdatePaymentStatus(ctx context.Context, id, status string) (*models.Payment, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Payment
	err = r.exec.Do(ctx, "payments.updateStatus", func(ctx context.Context) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
		var p models.Payment
		err := r.payments.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&p)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return &database.NotFoundError{Entity: "payment", ID: id}
			}
			return database.Classify("payment", id, err)
		}
		p.Normalize()
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRecordsRepo) AppendAudit(ctx context.Context, l *models.AuditLog) error {
	l.CreatedAt = time.Now()
	return r.exec.Do(ctx, "audit.append", func(ctx context.Context) error {
		_, err := r.audit.InsertOne(ctx, l)
		if err != nil {
			return database.Classify("audit log", "", err)
		}
		return nil
	})
}

func (r *MongoRecordsRepo) ListAudit(ctx context.Context, opts database.ListOptions) ([]models.AuditLog, error) {
	var out []models.AuditLog
	err := r.exec.Do(ctx, "audit.find", func(ctx context.Context) error {
		cursor, err := r.audit.Find(ctx, bson.M{}, opts.Find())
		if err != nil {
			return database.Classify("audit log", "", err)
		}
		defer cursor.Close(ctx)
		var logs []models.AuditLog
		if err := cursor.All(ctx, &logs); err != nil {
			return database.Classify("audit log", "", err)
		}
		for i := range logs {
			logs[i].Normalize()
		}
		out = logs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.AuditLog{}
	}
	return out, nil
}
