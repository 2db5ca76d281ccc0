package helpers

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// EncodeJSONColumn serialises v for storage in a TEXT column. Nil slices are stored as "[]".
func EncodeJSONColumn[T any](v []T) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeJSONColumn parses a JSON array stored in a TEXT column.
// Empty or malformed values decode to an empty slice; malformed ones are logged with the column name.
func DecodeJSONColumn[T any](raw, column string) []T {
	out := []T{}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn().Err(err).Str("column", column).Msg("Malformed JSON column, using empty value")
		return []T{}
	}
	return out
}
