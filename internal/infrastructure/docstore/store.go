// Package docstore is a hierarchical key-path document store. Documents are
// JSON objects addressed by slash separated paths; every write to a single
// path can be made atomic through Transaction, which retries optimistically
// when another writer changes the document concurrently.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists at a path
	ErrNotFound = errors.New("docstore: document not found")
	// ErrAbort is returned by a TxFunc to end a transaction without writing
	ErrAbort = errors.New("docstore: transaction aborted")
	// ErrTooManyRetries is returned when a transaction keeps losing races
	ErrTooManyRetries = errors.New("docstore: transaction retries exhausted")
	// ErrInvalidPath is returned for empty paths or segments with reserved characters
	ErrInvalidPath = errors.New("docstore: invalid path")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("docstore: store closed")
)

// DefaultMaxRetries bounds the attempts of a transaction
const DefaultMaxRetries = 25

// Document is a child returned by Children and Query
type Document struct {
	Key  string
	Path string
	Data json.RawMessage
}

// Decode unmarshals the document into v
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Query filters the children of a path. A zero Query returns every child.
type Query struct {
	Field string // top-level field compared with Equal
	Equal any
	Limit int // 0 means no limit
}

// TxFunc computes the next value of a document from its current value. It
// receives nil when the document does not exist, may be called more than
// once, and must not have side effects. Returning ErrAbort ends the
// transaction without writing; returning a nil value removes the document.
type TxFunc func(current []byte) ([]byte, error)

// TxResult is the outcome of a transaction
type TxResult struct {
	Committed bool
	// Snapshot is the value written, or the value read when not committed
	Snapshot []byte
}

// Store is the document store used by the repositories
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the top level of an existing document. A nil
	// field value deletes the field.
	Update(ctx context.Context, path string, fields map[string]any) error
	Remove(ctx context.Context, path string) error
	// Push stores value under parent with a new time-ordered key
	Push(ctx context.Context, parent string, value any) (string, error)
	// Children returns the direct children of parent ordered by key
	Children(ctx context.Context, parent string) ([]Document, error)
	Query(ctx context.Context, parent string, q Query) ([]Document, error)
	Transaction(ctx context.Context, path string, fn TxFunc) (TxResult, error)
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON reads the document at path into v
func GetJSON(ctx context.Context, s Store, path string, v any) error {
	data, err := s.Get(ctx, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// encode marshals a value for storage. Raw JSON is validated and kept as is.
func encode(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.New("docstore: nil value")
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, errors.New("docstore: invalid JSON value")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, errors.New("docstore: invalid JSON value")
		}
		return v, nil
	default:
		return json.Marshal(value)
	}
}

// merge applies fields to the top-level object encoded in current
func merge(current []byte, fields map[string]any) ([]byte, error) {
	obj := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		if v == nil {
			delete(obj, k)
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}

// runTx calls fn and normalizes its outcome. It reports whether fn aborted.
func runTx(fn TxFunc, current []byte) (next []byte, aborted bool, err error) {
	next, err = fn(current)
	if errors.Is(err, ErrAbort) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if next != nil && !json.Valid(next) {
		return nil, false, errors.New("docstore: transaction produced invalid JSON")
	}
	return next, false, nil
}
