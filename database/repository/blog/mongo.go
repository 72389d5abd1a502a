package blogRepo

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

const entity = "blog"

// MongoBlogRepo implements Repository on a MongoDB collection.
type MongoBlogRepo struct {
	coll *mongo.Collection
	exec *database.Executor
}

func NewMongoBlogRepo(db *mongo.Database, exec *database.Executor, logger *zap.Logger) *MongoBlogRepo {
	repo := &MongoBlogRepo{coll: db.Collection("blogs"), exec: exec}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create blog indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoBlogRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "publishedAt", Value: -1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

// uniqueFilter builds the lookup filter for FindUnique. A raw value
// that parses as an ObjectID may still be a slug, so both are matched.
func uniqueFilter(raw string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
		return bson.M{"$or": bson.A{
			bson.M{"_id": oid},
			bson.M{"slug": raw},
		}}
	}
	return bson.M{"slug": raw}
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Author != "" {
		q["author"] = f.Author
	}
	if f.Tag != "" {
		q["tags"] = f.Tag
	}
	if f.PublishedOnly {
		q["published"] = true
	}
	return q
}

// FindMany returns matching posts; no match is an empty slice.
func (r *MongoBlogRepo) FindMany(ctx context.Context, f Filter, opts database.ListOptions) ([]models.Blog, error) {
	var out []models.Blog
	err := r.exec.Do(ctx, "blogs.find", func(ctx context.Context) error {
		cursor, err := r.coll.Find(ctx, f.query(), opts.Find())
		if err != nil {
			return database.Classify(entity, "", err)
		}
		defer cursor.Close(ctx)

		var blogs []models.Blog
		if err := cursor.All(ctx, &blogs); err != nil {
			return database.Classify(entity, "", err)
		}
		for i := range blogs {
			blogs[i].Normalize()
		}
		out = blogs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Blog{}
	}
	return out, nil
}

// FindUnique resolves a post by slug or id.
func (r *MongoBlogRepo) FindUnique(ctx context.Context, slugOrID string) (*models.Blog, error) {
	var out *models.Blog
	err := r.exec.Do(ctx, "blogs.findUnique", func(ctx context.Context) error {
		var b models.Blog
		if err := r.coll.FindOne(ctx, uniqueFilter(slugOrID)).Decode(&b); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return &database.NotFoundError{Entity: entity, ID: slugOrID}
			}
			return database.Classify(entity, slugOrID, err)
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

// Create persists a new post; a duplicate slug surfaces as a conflict.
func (r *MongoBlogRepo) Create(ctx context.Context, b *models.Blog) (*models.Blog, error) {
	if b.Title == "" || b.Slug == "" {
		return nil, &database.ValidationError{Entity: entity, Reason: "title and slug are required"}
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Published && b.PublishedAt == nil {
		b.PublishedAt = &now
	}

	err := r.exec.Do(ctx, "blogs.create", func(ctx context.Context) error {
		res, err := r.coll.InsertOne(ctx, b)
		if err != nil {
			return database.Classify(entity, "", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			b.OID = oid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.Normalize()
	return b, nil
}

// Update verifies existence and applies the edit.
func (r *MongoBlogRepo) Update(ctx context.Context, id string, upd Update) (*models.Blog, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Slug != nil {
		set["slug"] = *upd.Slug
	}
	if upd.Excerpt != nil {
		set["excerpt"] = *upd.Excerpt
	}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Tags != nil {
		set["tags"] = upd.Tags
	}
	if upd.Published != nil {
		set["published"] = *upd.Published
		if *upd.Published {
			set["publishedAt"] = time.Now()
		}
	}

	var out *models.Blog
	err = r.exec.Do(ctx, "blogs.update", func(ctx context.Context) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var b models.Blog
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

// Delete removes a post and returns its last-known state.
func (r *MongoBlogRepo) Delete(ctx context.Context, id string) (*models.Blog, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}

	var out *models.Blog
	err = r.exec.Do(ctx, "blogs.delete", func(ctx context.Context) error {
		var b models.Blog
		err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&b)
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
