package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
)

// Join builds a path from segments. Segments must be non-empty and may not
// contain a slash.
func Join(segments ...string) (string, error) {
	for _, s := range segments {
		if s == "" || strings.Contains(s, "/") {
			return "", fmt.Errorf("%w: bad segment %q", ErrInvalidPath, s)
		}
	}
	return strings.Join(segments, "/"), nil
}

// Split separates a document path into its collection and id. Document
// paths have an even number of segments.
func Split(path string) (collection, id string, err error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, s := range segments {
		if s == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	i := strings.LastIndex(path, "/")
	return path[:i], path[i+1:], nil
}

// UserCollection is users/{uid}/{collection}.
func UserCollection(userID, collection string) (string, error) {
	return Join("users", userID, collection)
}

// UserDocument is users/{uid}/{collection}/{id}.
func UserDocument(userID, collection, id string) (string, error) {
	return Join("users", userID, collection, id)
}

// NotificationDocument is notifications/{handle}.
func NotificationDocument(handle string) (string, error) {
	return Join(constants.CollectionNotifications, handle)
}

// Marshal encodes a document body. A json.RawMessage is stored as is.
func Marshal(data any) (json.RawMessage, error) {
	if raw, ok := data.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("document body is not valid JSON")
		}
		return raw, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// Merge overlays fields onto the top level of a JSON object.
func Merge(existing json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(existing, &obj); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		obj[k] = b
	}
	return json.Marshal(obj)
}
