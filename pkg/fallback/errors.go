package fallback

import "errors"

// ErrCacheNil is returned when constructing the gate without a cache.
var ErrCacheNil = errors.New("existence cache is nil")
