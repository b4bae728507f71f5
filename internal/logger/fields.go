package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProfile is the structured log field key for a candidate profile ID.
	FieldProfile = "profile_id"
	// FieldListing is the structured log field key for a job listing ID.
	FieldListing = "listing_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// MatchFields returns the fields identifying a candidate/listing pair.
// Empty values are ignored to keep log entries compact.
func MatchFields(profileID, listingID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProfile, Value: profileID},
		StringField{Key: FieldListing, Value: listingID},
	)
}

// WithProfile attaches the profile ID to the provided logger.
// A nil logger yields a no-op logger.
func WithProfile(logger *zap.Logger, profileID string) *zap.Logger {
	return WithFields(logger, MatchFields(profileID, "")...)
}
