// Package docstoretest holds behaviour tests shared by every docstore backend
package docstoretest

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStoreFunc returns an empty store for one subtest
type NewStoreFunc func(t *testing.T) docstore.Store

type counter struct {
	N int `json:"n"`
}

func increment(current []byte) ([]byte, error) {
	var c counter
	if current != nil {
		if err := json.Unmarshal(current, &c); err != nil {
			return nil, err
		}
	}
	c.N++
	return json.Marshal(c)
}

// RunConformance checks the contract of docstore.Store against a backend
func RunConformance(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()

	t.Run("get missing document", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "clubs/c1/cache/balance")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "clubs/c1/members/u1", map[string]any{"role": "admin"}))

		var got map[string]string
		require.NoError(t, docstore.GetJSON(ctx, s, "clubs/c1/members/u1", &got))
		assert.Equal(t, "admin", got["role"])
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a/b", map[string]any{"x": 1, "y": 2}))
		require.NoError(t, s.Set(ctx, "a/b", map[string]any{"x": 3}))

		data, err := s.Get(ctx, "a/b")
		require.NoError(t, err)
		assert.JSONEq(t, `{"x":3}`, string(data))
	})

	t.Run("rejects invalid paths", func(t *testing.T) {
		s := newStore(t)
		for _, p := range []string{"", "a//b", "a/b.c", "a/$b", "a/[b]", "a/#"} {
			err := s.Set(ctx, p, map[string]any{"x": 1})
			assert.ErrorIs(t, err, docstore.ErrInvalidPath, p)
		}
	})

	t.Run("update merges fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a/b", map[string]any{"x": 1, "y": 2}))
		require.NoError(t, s.Update(ctx, "a/b", map[string]any{"y": 5, "z": "new", "x": nil}))

		data, err := s.Get(ctx, "a/b")
		require.NoError(t, err)
		assert.JSONEq(t, `{"y":5,"z":"new"}`, string(data))
	})

	t.Run("update missing document", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(ctx, "a/missing", map[string]any{"x": 1})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "a/b", map[string]any{"x": 1}))
		require.NoError(t, s.Remove(ctx, "a/b"))
		require.NoError(t, s.Remove(ctx, "a/b"))

		_, err := s.Get(ctx, "a/b")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		children, err := s.Children(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("push keys sort in insertion order", func(t *testing.T) {
		s := newStore(t)
		var ids []string
		for i := 0; i < 5; i++ {
			id, err := s.Push(ctx, "clubs/c1/logs", map[string]any{"i": i})
			require.NoError(t, err)
			ids = append(ids, id)
		}

		children, err := s.Children(ctx, "clubs/c1/logs")
		require.NoError(t, err)
		require.Len(t, children, 5)
		for i, d := range children {
			assert.Equal(t, ids[i], d.Key)
			assert.Equal(t, "clubs/c1/logs/"+ids[i], d.Path)
		}
	})

	t.Run("children lists direct children only", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "p/b", map[string]any{"k": "b"}))
		require.NoError(t, s.Set(ctx, "p/a", map[string]any{"k": "a"}))
		require.NoError(t, s.Set(ctx, "p/a/deep", map[string]any{"k": "deep"}))
		require.NoError(t, s.Set(ctx, "other/c", map[string]any{"k": "c"}))

		children, err := s.Children(ctx, "p")
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "a", children[0].Key)
		assert.Equal(t, "b", children[1].Key)

		var v map[string]string
		require.NoError(t, children[1].Decode(&v))
		assert.Equal(t, "b", v["k"])
	})

	t.Run("children of empty parent", func(t *testing.T) {
		s := newStore(t)
		children, err := s.Children(ctx, "nothing/here")
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("query by field with limit", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "l/1", map[string]any{"categoria": "Bar", "valor": 10}))
		require.NoError(t, s.Set(ctx, "l/2", map[string]any{"categoria": "Luz", "valor": 20}))
		require.NoError(t, s.Set(ctx, "l/3", map[string]any{"categoria": "Bar", "valor": 30}))

		docs, err := s.Query(ctx, "l", docstore.Query{Field: "categoria", Equal: "Bar"})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "1", docs[0].Key)
		assert.Equal(t, "3", docs[1].Key)

		docs, err = s.Query(ctx, "l", docstore.Query{Field: "categoria", Equal: "Bar", Limit: 1})
		require.NoError(t, err)
		require.Len(t, docs, 1)

		docs, err = s.Query(ctx, "l", docstore.Query{Field: "valor", Equal: 20})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "2", docs[0].Key)

		docs, err = s.Query(ctx, "l", docstore.Query{Field: "categoria", Equal: "Agua"})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("transaction creates missing document", func(t *testing.T) {
		s := newStore(t)
		res, err := s.Transaction(ctx, "t/c", increment)
		require.NoError(t, err)
		assert.True(t, res.Committed)
		assert.JSONEq(t, `{"n":1}`, string(res.Snapshot))

		res, err = s.Transaction(ctx, "t/c", increment)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(res.Snapshot))

		children, err := s.Children(ctx, "t")
		require.NoError(t, err)
		assert.Len(t, children, 1)
	})

	t.Run("transaction abort leaves document unchanged", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "t/c", counter{N: 7}))

		res, err := s.Transaction(ctx, "t/c", func([]byte) ([]byte, error) {
			return nil, docstore.ErrAbort
		})
		require.NoError(t, err)
		assert.False(t, res.Committed)
		assert.JSONEq(t, `{"n":7}`, string(res.Snapshot))

		res, err = s.Transaction(ctx, "t/missing", func(current []byte) ([]byte, error) {
			if current == nil {
				return nil, docstore.ErrAbort
			}
			return current, nil
		})
		require.NoError(t, err)
		assert.False(t, res.Committed)
		assert.Nil(t, res.Snapshot)
	})

	t.Run("transaction returning nil removes document", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "t/c", counter{N: 1}))

		res, err := s.Transaction(ctx, "t/c", func([]byte) ([]byte, error) { return nil, nil })
		require.NoError(t, err)
		assert.True(t, res.Committed)

		_, err = s.Get(ctx, "t/c")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("transaction function error is returned", func(t *testing.T) {
		s := newStore(t)
		boom := errors.New("boom")
		_, err := s.Transaction(ctx, "t/c", func([]byte) ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		_, err = s.Get(ctx, "t/c")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("transaction rejects invalid JSON", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Transaction(ctx, "t/c", func([]byte) ([]byte, error) { return []byte("{"), nil })
		assert.Error(t, err)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

// RunConcurrentTransactions runs workers*perWorker increments of one
// document in parallel and checks that none of them is lost
func RunConcurrentTransactions(t *testing.T, s docstore.Store, workers, perWorker int) {
	ctx := context.Background()
	path := "concurrency/counter"

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := s.Transaction(ctx, path, increment); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var c counter
	require.NoError(t, docstore.GetJSON(ctx, s, path, &c))
	assert.Equal(t, workers*perWorker, c.N, "expected "+strconv.Itoa(workers*perWorker)+" increments")
}
