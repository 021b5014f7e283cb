package domain

import (
	"encoding/json"
	"errors"
)

var errNotDocument = errors.New("world data is not a JSON object")

// WorldSnapshot is the full document for one world as returned by a single fetch.
// Only Name and the article count are read; the rest is forwarded opaquely in Raw.
type WorldSnapshot struct {
	Name         string
	ArticleCount int
	Raw          json.RawMessage
}

// ParseWorldSnapshot checks that data is a structured document and extracts the
// partial schema. A missing or mistyped name or articles field is not an error.
func ParseWorldSnapshot(data []byte) (*WorldSnapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, errNotDocument
	}

	snap := &WorldSnapshot{Raw: json.RawMessage(data)}

	if raw, ok := fields["name"]; ok {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			snap.Name = name
		}
	}

	if raw, ok := fields["articles"]; ok {
		var articles []json.RawMessage
		if json.Unmarshal(raw, &articles) == nil {
			snap.ArticleCount = len(articles)
		}
	}

	return snap, nil
}
