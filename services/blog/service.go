package blog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"serenity/database"
	blogRepo "serenity/database/repository/blog"
	"serenity/models"
	"serenity/utils"
)

// Service fronts the blog repository with a Redis read-through cache on
// the public single-post lookup.
type Service interface {
	List(ctx context.Context, f blogRepo.Filter, opts database.ListOptions) ([]models.Blog, error)
	Get(ctx context.Context, slugOrID string) (*models.Blog, error)
	Create(ctx context.Context, b *models.Blog) (*models.Blog, error)
	Update(ctx context.Context, id string, upd blogRepo.Update) (*models.Blog, error)
	Delete(ctx context.Context, id string) (*models.Blog, error)
}

// Cache is the slice of the redis client the service touches; tests
// substitute an in-memory one.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// DefaultBlogService is the production implementation.
type DefaultBlogService struct {
	Repo   blogRepo.Repository
	Cache  Cache
	Logger *zap.Logger
}

func (s *DefaultBlogService) List(ctx context.Context, f blogRepo.Filter, opts database.ListOptions) ([]models.Blog, error) {
	return s.Repo.FindMany(ctx, f, opts)
}

func (s *DefaultBlogService) Get(ctx context.Context, slugOrID string) (*models.Blog, error) {
	key := utils.BlogCachePrefix + slugOrID
	if data, err := s.Cache.Get(ctx, key).Result(); err == nil {
		var b models.Blog
		if jerr := json.Unmarshal([]byte(data), &b); jerr == nil {
			return &b, nil
		}
		// Corrupt cache entry; fall through to the store.
		s.Cache.Del(ctx, key)
	}

	b, err := s.Repo.FindUnique(ctx, slugOrID)
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(b); jerr == nil {
		if cerr := s.Cache.Set(ctx, key, data, utils.BlogCacheTTL).Err(); cerr != nil {
			s.Logger.Warn("failed to cache blog", zap.String("key", key), zap.Error(cerr))
		}
	}
	return b, nil
}

func (s *DefaultBlogService) Create(ctx context.Context, b *models.Blog) (*models.Blog, error) {
	return s.Repo.Create(ctx, b)
}

func (s *DefaultBlogService) Update(ctx context.Context, id string, upd blogRepo.Update) (*models.Blog, error) {
	// A slug change would leave the old slug's cache entry serving the
	// stale post; capture it before the write so it gets dropped too.
	var staleKeys []string
	if upd.Slug != nil {
		if prev, err := s.Repo.FindUnique(ctx, id); err == nil && prev.Slug != "" && prev.Slug != *upd.Slug {
			staleKeys = append(staleKeys, utils.BlogCachePrefix+prev.Slug)
		}
	}

	b, err := s.Repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, b, staleKeys...)
	return b, nil
}

func (s *DefaultBlogService) Delete(ctx context.Context, id string) (*models.Blog, error) {
	b, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, b)
	return b, nil
}

func (s *DefaultBlogService) invalidate(ctx context.Context, b *models.Blog, extra ...string) {
	keys := append([]string{utils.BlogCachePrefix + b.ID}, extra...)
	if b.Slug != "" {
		keys = append(keys, utils.BlogCachePrefix+b.Slug)
	}
	if err := s.Cache.Del(ctx, keys...).Err(); err != nil {
		s.Logger.Warn("failed to invalidate blog cache", zap.Error(err))
	}
}
