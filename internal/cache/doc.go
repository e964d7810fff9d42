// Package cache provides a small generic LRU cache.
//
// The compositor keeps prepared leaf surfaces (masked and premultiplied)
// here, keyed by layer and content version, so repeated renders of the same
// document skip mask application.
//
//	c := cache.New[string, int](64)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
