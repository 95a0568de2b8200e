package upload

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

var (
	booleanFields = []string{"isFeatured", "offlineSupported", "verified", "isSubscribed"}
	numberFields  = []string{"latitude", "longitude", "price", "totalEvent", "fileSize", "duration"}
	jsonFields    = []string{"socialLinks", "offlineData"}
)

// Normalize rewrites the form body in place so downstream business logic
// sees final values instead of multipart artifacts:
//
//  1. file fields are replaced with the generated storage paths (the gallery
//     field becomes an ordered path slice),
//  2. recognized boolean/number/JSON fields are coerced from their string
//     form,
//  3. keys with a trailing "[]" are renamed and their values coerced to
//     slices.
//
// The order matters: bracket renaming runs last so a renamed field is never
// reprocessed by an earlier pass.
func Normalize(body map[string]any, files []AcceptedFile, log *slog.Logger) {
	substituteFilePaths(body, files)
	coerceScalars(body, log)
	renameBracketFields(body)
}

func substituteFilePaths(body map[string]any, files []AcceptedFile) {
	for _, f := range files {
		key := f.Field.Key()
		if f.Field.Multi() {
			paths, _ := body[key].([]any)
			body[key] = append(paths, f.Path)
			continue
		}
		body[key] = f.Path
	}
}

func coerceScalars(body map[string]any, log *slog.Logger) {
	for _, field := range booleanFields {
		v, ok := body[field]
		if !ok {
			continue
		}
		body[field] = v == "true" || v == true
	}

	for _, field := range numberFields {
		v, ok := body[field]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString {
			continue
		}
		if s == "" {
			delete(body, field)
			continue
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Matches the downstream contract: unparsable means absent, not zero.
			delete(body, field)
			continue
		}
		body[field] = n
	}

	for _, field := range jsonFields {
		s, isString := body[field].(string)
		if !isString || s == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			log.Warn("failed to parse field as JSON, dropping it", "field", field)
			delete(body, field)
			continue
		}
		body[field] = parsed
	}
}

func renameBracketFields(body map[string]any) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	for _, k := range keys {
		if !strings.HasSuffix(k, "[]") {
			continue
		}
		newKey := strings.TrimSuffix(k, "[]")
		v := body[k]
		if arr, ok := v.([]any); ok {
			body[newKey] = arr
		} else {
			body[newKey] = []any{v}
		}
		delete(body, k)
	}
}
