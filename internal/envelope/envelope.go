// Package envelope provides a standardized wrapper for tool responses.
// Every tool response carries the same metadata: a trace ID for log
// correlation, cache status, truncation info, and remaining API quota.
package envelope

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"

// CacheInfo describes cache status for this response.
type CacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key,omitempty"`
}

// Truncation describes result trimming.
type Truncation struct {
	IsTruncated bool   `json:"isTruncated"`
	Shown       int    `json:"shown,omitempty"`
	Total       int    `json:"total,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// RateLimitInfo reports the remaining GitHub API budget after the call.
type RateLimitInfo struct {
	CoreRemaining   int `json:"coreRemaining"`
	SearchRemaining int `json:"searchRemaining"`
}

// Meta holds response metadata.
type Meta struct {
	TraceID    string         `json:"traceId,omitempty"`
	Cache      *CacheInfo     `json:"cache,omitempty"`
	Truncation *Truncation    `json:"truncation,omitempty"`
	RateLimit  *RateLimitInfo `json:"rateLimit,omitempty"`
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Response is the standard envelope for all tool responses.
type Response struct {
	SchemaVersion string      `json:"schemaVersion"`
	Data          interface{} `json:"data"`
	Meta          *Meta       `json:"meta,omitempty"`
	Warnings      []Warning   `json:"warnings,omitempty"`
	Error         *string     `json:"error,omitempty"`
}
