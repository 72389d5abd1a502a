package ragRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"serenity/database"
	"serenity/models"
)

// MongoRagRepo implements Repository across the four RAG collections.
type MongoRagRepo struct {
	systems       *mongo.Collection
	conversations *mongo.Collection
	messages      *mongo.Collection
	usage         *mongo.Collection
	exec          *database.Executor
}

func NewMongoRagRepo(db *mongo.Database, exec *database.Executor, logger *zap.Logger) *MongoRagRepo {
	repo := &MongoRagRepo{
		systems:       db.Collection("rag_systems"),
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
		usage:         db.Collection("usage_records"),
		exec:          exec,
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create rag indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoRagRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ragSystemId", Value: 1}},
	}); err != nil {
		return err
	}
	if _, err := r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := r.usage.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ragSystemId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *MongoRagRepo) ListSystems(ctx context.Context, opts database.ListOptions) ([]models.RagSystem, error) {
	var out []models.RagSystem
	err := r.exec.Do(ctx, "ragSystems.find", func(ctx context.Context) error {
		cursor, err := r.systems.Find(ctx, bson.M{}, opts.Find())
		if err != nil {
			return database.Classify("rag system", "", err)
		}
		defer cursor.Close(ctx)
		var systems []models.RagSystem
		if err := cursor.All(ctx, &systems); err != nil {
			return database.Classify("rag system", "", err)
		}
		for i := range systems {
			systems[i].Normalize()
		}
		out = systems
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.RagSystem{}
	}
	return out, nil
}

func (r *MongoRagRepo) GetSystem(ctx context.Context, id string) (*models.RagSystem, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var out *models.RagSystem
	err = r.exec.Do(ctx, "ragSystems.findById", func(ctx context.Context) error {
		var sys models.RagSystem
		if err := r.systems.FindOne(ctx, bson.M{"_id": oid}).Decode(&sys); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return database.Classify("rag system", id, err)
		}
		sys.Normalize()
		out = &sys
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRagRepo) CreateSystem(ctx context.Context, sys *models.RagSystem) (*models.RagSystem, error) {
	if sys.Name == "" || sys.Model == "" {
		return nil, &database.ValidationError{Entity: "rag system", Reason: "name and model are required"}
	}
	now := time.Now()
	sys.CreatedAt = now
	sys.UpdatedAt = now

	err := r.exec.Do(ctx, "ragSystems.create", func(ctx context.Context) error {
		res, err := r.systems.InsertOne(ctx, sys)
		if err != nil {
			return database.Classify("rag system", "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			sys.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sys.Normalize()
	return sys, nil
}

func (r *MongoRagRepo) DeleteSystem(ctx context.Context, id string) (*models.RagSystem, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var out *models.RagSystem
	err = r.exec.Do(ctx, "ragSystems.delete", func(ctx context.Context) error {
		var sys models.RagSystem
		err := r.systems.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&sys)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return &database.NotFoundError{Entity: "rag system", ID: id}
			}
			return database.Classify("rag system", id, err)
		}
		sys.Normalize()
		out = &sys
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRagRepo) ListConversations(ctx context.Context, ragSystemID string, opts database.ListOptions) ([]models.Conversation, error) {
	oid, err := database.ParseID(ragSystemID)
	if err != nil {
		return nil, err
	}
	var out []models.Conversation
	err = r.exec.Do(ctx, "conversations.find", func(ctx context.Context) error {
		cursor, err := r.conversations.Find(ctx, bson.M{"ragSystemId": oid}, opts.Find())
		if err != nil {
			return database.Classify("conversation", "", err)
		}
		defer cursor.Close(ctx)
		var convs []models.Conversation
		if err := cursor.All(ctx, &convs); err != nil {
			return database.Classify("conversation", "", err)
		}
		for i := range convs {
			convs[i].Normalize()
		}
		out = convs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Conversation{}
	}
	return out, nil
}

func (r *MongoRagRepo) CreateConversation(ctx context.Context, c *models.Conversation) (*models.Conversation, error) {
	if c.RagSystemOID.IsZero() {
		oid, err := database.ParseID(c.RagSystemID)
		if err != nil {
			return nil, err
		}
		c.RagSystemOID = oid
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := r.exec.Do(ctx, "conversations.create", func(ctx context.Context) error {
		res, err := r.conversations.InsertOne(ctx, c)
		if err != nil {
			return database.Classify("conversation", "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			c.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

func (r *MongoRagRepo) ListMessages(ctx context.Context, conversationID string, opts database.ListOptions) ([]models.Message, error) {
	oid, err := database.ParseID(conversationID)
	if err != nil {
		return nil, err
	}
	var out []models.Message
	err = r.exec.Do(ctx, "messages.find", func(ctx context.Context) error {
		cursor, err := r.messages.Find(ctx, bson.M{"conversationId": oid}, opts.Find())
		if err != nil {
			return database.Classify("message", "", err)
		}
		defer cursor.Close(ctx)
		var msgs []models.Message
		if err := cursor.All(ctx, &msgs); err != nil {
			return database.Classify("message", "", err)
		}
		for i := range msgs {
			msgs[i].Normalize()
		}
		out = msgs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Message{}
	}
	return out, nil
}

func (r *MongoRagRepo) AppendMessage(ctx context.Context, m *models.Message) (*models.Message, error) {
	if m.Role == "" || m.Content == "" {
		return nil, &database.ValidationError{Entity: "message", Reason: "role and content are required"}
	}
	if m.ConversationOID.IsZero() {
		oid, err := database.ParseID(m.ConversationID)
		if err != nil {
			return nil, err
		}
		m.ConversationOID = oid
	}
	m.CreatedAt = time.Now()

	err := r.exec.Do(ctx, "messages.create", func(ctx context.Context) error {
		res, err := r.messages.InsertOne(ctx, m)
		if err != nil {
			return database.Classify("message", "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			m.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.Normalize()
	return m, nil
}

func (r *MongoRagRepo) ListUsage(ctx context.Context, ragSystemID string, opts database.ListOptions) ([]models.UsageRecord, error) {
	query := bson.M{}
	if ragSystemID != "" {
		oid, err := database.ParseID(ragSystemID)
		if err != nil {
			return nil, err
		}
		query["ragSystemId"] = oid
	}
	var out []models.UsageRecord
	err := r.exec.Do(ctx, "usage.find", func(ctx context.Context) error {
		cursor, err := r.usage.Find(ctx, query, opts.Find())
		if err != nil {
			return database.Classify("usage record", "", err)
		}
		defer cursor.Close(ctx)
		var records []models.UsageRecord
		if err := cursor.All(ctx, &records); err != nil {
			return database.Classify("usage record", "", err)
		}
		for i := range records {
			records[i].Normalize()
		}
		out = records
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.UsageRecord{}
	}
	return out, nil
}

func (r *MongoRagRepo) RecordUsage(ctx context.Context, u *models.UsageRecord) (*models.UsageRecord, error) {
	if u.RagSystemOID.IsZero() {
		oid, err := database.ParseID(u.RagSystemID)
		if err != nil {
			return nil, err
		}
		u.RagSystemOID = oid
	}
	u.CreatedAt = time.Now()

	err := r.exec.Do(ctx, "usage.create", func(ctx context.Context) error {
		res, err := r.usage.InsertOne(ctx, u)
		if err != nil {
			return database.Classify("usage record", "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			u.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Normalize()
	return u, nil
}
