package events

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/meur/moonshade/internal/models"
)

// MarshalDocument serializes doc the way browsers do: no HTML escaping,
// optional two-space indent for file downloads.
func MarshalDocument(doc *models.Document, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseDocument decodes an export document. Unknown keys are ignored and
// missing collections are filled in; anything that is not a JSON object
// fails with ErrParse.
func ParseDocument(data []byte) (*models.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrParse)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	doc.Normalize()
	return &doc, nil
}

// EncodeShareToken renders doc as a base64 string fit for a URL fragment
func EncodeShareToken(doc *models.Document) (string, error) {
	data, err := MarshalDocument(doc, false)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeShareToken reverses EncodeShareToken. A leading '#' is tolerated
// and the URL-safe alphabet is accepted as well as the standard one.
func DecodeShareToken(token string) (*models.Document, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "#")
	if token == "" {
		return nil, fmt.Errorf("%w: empty share token", ErrParse)
	}

	data, err := decodeBase64(token)
	if err != nil {
		return nil, fmt.Errorf("%w: share token: %v", ErrParse, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: share token is not UTF-8", ErrParse)
	}
	return ParseDocument(data)
}

func decodeBase64(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
