package utils

import "time"

// BlogCachePrefix is the prefix used for Redis blog cache keys.
const BlogCachePrefix = "blog:"

// BlogCacheTTL is the time-to-live for cached blog posts.
const BlogCacheTTL = 10 * time.Minute
