// Package cache provides the read-through tiered cache used by the
// qualification pipeline. This package is internal and should not be
// imported by external projects.
//
// Tiers are checked in order (local LRU, Redis, durable store); a hit at a
// deeper tier is promoted to the tiers above it, and a tier error is treated
// as a miss so that an unavailable tier degrades the cache instead of
// failing the caller.
package cache
