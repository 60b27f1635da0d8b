package logging

import "log/slog"

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService     = "service"
	FieldVersion     = "version"
	FieldProvider    = "provider"
	FieldStep        = "step"
	FieldRunID       = "run_id"
	FieldAttempt     = "attempt"
	FieldMaxAttempts = "max_attempts"
	FieldPath        = "path"
	FieldURL         = "url"
	FieldTeam        = "team"
	FieldCount       = "count"
	FieldMatched     = "matched"
	FieldDurationMS  = "duration_ms"
	FieldStatusCode  = "status_code"
	FieldRequestID   = "request_id"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
