// Package server provides the HTTP server for the clip synthesis API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// SynthesizeRequest is the HTTP request body for synthesizing a new file.
type SynthesizeRequest struct {
	// Duration is the target length in seconds. When absent it is
	// estimated from Text.
	Duration *float64 `json:"duration" validate:"omitempty,gt=0"`
	// Text is the content the audio stands in for. It must be present,
	// although it may be empty.
	Text *string `json:"text" validate:"required,max=10000"`
	// Bucket selects the clip bucket (e.g. "long", "medium", "min").
	Bucket string `json:"bucket" validate:"omitempty,max=64"`
}

// SynthesizeResponse is the HTTP response after synthesizing a file.
type SynthesizeResponse struct {
	// Success is true when the file was written.
	Success bool `json:"success"`
	// Message is "success" or a human-readable failure reason.
	Message string `json:"message"`
	// FileURL is the server-relative URL of the output file.
	FileURL string `json:"file_url,omitempty"`
	// MirrorURL is the S3 URL of the output when mirroring is enabled.
	MirrorURL string `json:"s3_url,omitempty"`
	// Duration is the written audio length in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Bucket is the bucket the clips were drawn from.
	Bucket string `json:"bucket,omitempty"`
}

// ClipsResponse lists the source clips known to the library.
type ClipsResponse struct {
	Success       bool          `json:"success"`
	Bucketed      bool          `json:"bucketed"`
	DefaultBucket string        `json:"default_bucket,omitempty"`
	Buckets       []BucketClips `json:"buckets"`
}

// BucketClips is one bucket of a ClipsResponse.
type BucketClips struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Success is always false.
	Success bool `json:"success"`
	// Message is the human-readable error message.
	Message string `json:"message"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
