package blog

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"serenity/database"
	blogRepo "serenity/database/repository/blog"
	"serenity/models"
	"serenity/utils"
)

type fakeBlogRepo struct {
	byID    map[string]*models.Blog
	lookups int
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{byID: make(map[string]*models.Blog)}
}

func (f *fakeBlogRepo) FindMany(ctx context.Context, _ blogRepo.Filter, _ database.ListOptions) ([]models.Blog, error) {
	out := []models.Blog{}
	for _, b := range f.byID {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBlogRepo) FindUnique(ctx context.Context, slugOrID string) (*models.Blog, error) {
	f.lookups++
	for _, b := range f.byID {
		if b.ID == slugOrID || b.Slug == slugOrID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, &database.NotFoundError{Entity: "blog", ID: slugOrID}
}

func (f *fakeBlogRepo) Create(ctx context.Context, b *models.Blog) (*models.Blog, error) {
	b.OID = primitive.NewObjectID()
	b.Normalize()
	f.byID[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeBlogRepo) Update(ctx context.Context, id string, upd blogRepo.Update) (*models.Blog, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, &database.NotFoundError{Entity: "blog", ID: id}
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Slug != nil {
		b.Slug = *upd.Slug
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBlogRepo) Delete(ctx context.Context, id string) (*models.Blog, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, &database.NotFoundError{Entity: "blog", ID: id}
	}
	delete(f.byID, id)
	cp := *b
	return &cp, nil
}

type fakeCache struct {
	store   map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.store[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.store[key] = string(v)
	case string:
		f.store[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		f.deleted = append(f.deleted, k)
		if _, ok := f.store[k]; ok {
			delete(f.store, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func newTestBlogService() (*DefaultBlogService, *fakeBlogRepo, *fakeCache) {
	repo := newFakeBlogRepo()
	cache := newFakeCache()
	svc := &DefaultBlogService{Repo: repo, Cache: cache, Logger: zap.NewNop()}
	return svc, repo, cache
}

func TestGetServesFromCacheAfterFirstRead(t *testing.T) {
	svc, repo, cache := newTestBlogService()
	created, err := svc.Create(context.Background(), &models.Blog{
		Title: "Opening Hours", Slug: "opening-hours", Content: "...",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := svc.Get(context.Background(), "opening-hours")
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if first.ID != created.ID {
		t.Errorf("wrong post returned: %s", first.ID)
	}
	if _, ok := cache.store[utils.BlogCachePrefix+"opening-hours"]; !ok {
		t.Fatal("first read should populate the cache")
	}

	lookupsBefore := repo.lookups
	second, err := svc.Get(context.Background(), "opening-hours")
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if repo.lookups != lookupsBefore {
		t.Error("second read should be served from the cache")
	}
	if second.Title != "Opening Hours" {
		t.Errorf("cached copy mismatch: %s", second.Title)
	}
}

func TestGetDropsCorruptCacheEntry(t *testing.T) {
	svc, _, cache := newTestBlogService()
	created, err := svc.Create(context.Background(), &models.Blog{
		Title: "Services", Slug: "services", Content: "...",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	key := utils.BlogCachePrefix + "services"
	cache.store[key] = "{not json"

	b, err := svc.Get(context.Background(), "services")
	if err != nil {
		t.Fatalf("read should fall through to the store: %v", err)
	}
	if b.ID != created.ID {
		t.Errorf("wrong post returned: %s", b.ID)
	}
	if cache.store[key] == "{not json" {
		t.Error("corrupt entry should have been replaced")
	}
}

func TestUpdateDropsOldSlugCacheEntry(t *testing.T) {
	svc, _, cache := newTestBlogService()
	created, err := svc.Create(context.Background(), &models.Blog{
		Title: "Spring Hours", Slug: "spring-hours", Content: "...",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), "spring-hours"); err != nil {
		t.Fatalf("priming read failed: %v", err)
	}
	oldKey := utils.BlogCachePrefix + "spring-hours"
	if _, ok := cache.store[oldKey]; !ok {
		t.Fatal("priming read should populate the cache")
	}

	newSlug := "summer-hours"
	updated, err := svc.Update(context.Background(), created.ID, blogRepo.Update{Slug: &newSlug})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != newSlug {
		t.Errorf("slug not applied: %s", updated.Slug)
	}
	if _, ok := cache.store[oldKey]; ok {
		t.Error("the old slug's cache entry must be dropped on a slug change")
	}

	dropped := map[string]bool{}
	for _, k := range cache.deleted {
		dropped[k] = true
	}
	for _, k := range []string{oldKey, utils.BlogCachePrefix + newSlug, utils.BlogCachePrefix + created.ID} {
		if !dropped[k] {
			t.Errorf("expected %s to be invalidated, deleted keys: %v", k, cache.deleted)
		}
	}
}
