package storage

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

func applyS3Prefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	// Ensure there is exactly one slash between prefix and name
	if strings.HasSuffix(prefix, "/") {
		return prefix + name
	}
	return prefix + "/" + name
}

// isS3NotFound reports whether err is the backend's "no such key" answer,
// which callers must see as absence rather than a storage failure.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "NoSuchKey" || code == "NotFound" || code == "404" {
			return true
		}
	}
	// Fallback for wrapped HTTP 404s that lose the API error code
	return strings.Contains(err.Error(), "StatusCode: 404")
}

// pasteIDFromKey extracts the paste id from a meta.json object key under
// the given prefix, e.g. "pastes/abc123/meta.json" -> "abc123".
func pasteIDFromKey(prefix, key string) (string, bool) {
	if !strings.HasSuffix(key, "/"+metaFile) {
		return "", false
	}
	rest := strings.TrimSuffix(key, "/"+metaFile)
	if prefix != "" {
		trimmed := strings.TrimPrefix(rest, strings.TrimSuffix(prefix, "/")+"/")
		if trimmed == rest {
			return "", false
		}
		rest = trimmed
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
