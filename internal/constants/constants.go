// Package constants holds shared defaults for the rabbit client.
package constants

import "time"

// APINamespace is the path prefix all resource endpoints live under.
const APINamespace = "/api/r"

// Pagination defaults. The server ignores per_page values above MaxPerPage.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// HTTP transport defaults.
const (
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRetryWaitMin = 1 * time.Second
	DefaultRetryWaitMax = 30 * time.Second
	DefaultUserAgent    = "rabbit-go"
)

// Cache defaults.
const (
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 1 * time.Minute
)
