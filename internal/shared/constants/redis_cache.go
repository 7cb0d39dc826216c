package constants

import "time"

// Cache key templates. All keys are namespaced under "beatsbook:" so a
// shared Redis instance can be flushed per-application.
const (
	CacheKeyEventsList   = "beatsbook:events:list:%s"    // %s = filter hash (category:page:limit)
	CacheKeyEventDetail  = "beatsbook:events:detail:%s"  // %s = event ID
	CacheKeyCategories   = "beatsbook:events:categories" // list of distinct categories
	CacheKeyUserBookings = "beatsbook:bookings:user:%s"  // %s = user ID
)

// Cache invalidation patterns
const (
	CachePatternAllEvents   = "beatsbook:events:*"
	CachePatternEventDetail = "beatsbook:events:detail:%s" // %s = event ID
	CachePatternUserScope   = "beatsbook:bookings:user:%s" // %s = user ID
)

// Cache TTLs. Event payloads carry derived status, so they stay short-lived
// and are additionally invalidated whenever a status sync changes a row.
const (
	CacheTTLEventsList   = 2 * time.Minute
	CacheTTLEventDetail  = 5 * time.Minute
	CacheTTLCategories   = 30 * time.Minute
	CacheTTLUserBookings = 5 * time.Minute
)
