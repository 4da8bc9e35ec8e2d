package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// applyQuery filters docs, already ordered by key, in place
func applyQuery(docs []Document, q Query) ([]Document, error) {
	if q.Field == "" {
		return limit(docs, q.Limit), nil
	}
	want, err := json.Marshal(q.Equal)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode query value: %w", err)
	}

	out := docs[:0]
	for _, d := range docs {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(d.Data, &obj); err != nil {
			continue
		}
		got, ok := obj[q.Field]
		if !ok || !jsonEqual(got, want) {
			continue
		}
		out = append(out, d)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func limit(docs []Document, n int) []Document {
	if n > 0 && len(docs) > n {
		return docs[:n]
	}
	return docs
}

// jsonEqual compares two encoded scalars ignoring insignificant whitespace
func jsonEqual(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
