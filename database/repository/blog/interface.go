package blogRepo

import (
	"context"

	"serenity/database"
	"serenity/models"
)

// Filter narrows FindMany results.
type Filter struct {
	Author        string
	Tag           string
	PublishedOnly bool
}

// Update carries the editable blog fields.
type Update struct {
	Title     *string
	Slug      *string
	Excerpt   *string
	Content   *string
	Author    *string
	Tags      []string
	Published *bool
}

// Repository is the typed CRUD surface for blog posts.
type Repository interface {
	FindMany(ctx context.Context, f Filter, opts database.ListOptions) ([]models.Blog, error)
	// FindUnique resolves by slug or id: a raw string that parses as a
	// store-native ObjectID is tried as an id first, then as a slug.
	FindUnique(ctx context.Context, slugOrID string) (*models.Blog, error)
	Create(ctx context.Context, b *models.Blog) (*models.Blog, error)
	Update(ctx context.Context, id string, upd Update) (*models.Blog, error)
	Delete(ctx context.Context, id string) (*models.Blog, error)
}
