package service

import (
	"encoding/base64"
	"fmt"

	"github.com/goccy/go-json"
)

// Cursor is the pagination state carried between feed pages.
type Cursor struct {
	ExcludeIDs []string `json:"excludeIds"`
	LastScore  float64  `json:"lastScore"`
}

// IsFirstPage reports whether the cursor excludes nothing.
func (c Cursor) IsFirstPage() bool {
	return len(c.ExcludeIDs) == 0
}

// EncodeCursor renders c as an opaque URL-safe token.
func EncodeCursor(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor parses a token produced by EncodeCursor. Anything it cannot
// parse yields the zero Cursor and a non-nil error the caller may ignore.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		// Tolerate padded tokens.
		if data, err = base64.URLEncoding.DecodeString(token); err != nil {
			return Cursor{}, fmt.Errorf("decode cursor: %w", err)
		}
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	return c, nil
}
