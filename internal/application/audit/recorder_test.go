package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memoryLog struct {
	entries map[string][]audit.Entry
	err     error
}

func (m *memoryLog) Append(_ context.Context, clubID string, e *audit.Entry) error {
	if m.err != nil {
		return m.err
	}
	if m.entries == nil {
		m.entries = map[string][]audit.Entry{}
	}
	e.ID = "log-" + clubID
	m.entries[clubID] = append(m.entries[clubID], *e)
	return nil
}

func (m *memoryLog) Recent(_ context.Context, clubID string, limit int) ([]audit.Entry, error) {
	return m.entries[clubID], nil
}

func TestRecorder_Record(t *testing.T) {
	repo := &memoryLog{}
	fixed := time.Date(2025, 3, 1, 2, 30, 0, 0, time.UTC)
	r := NewRecorder(repo, LoadLocation("America/Sao_Paulo"), WithClock(func() time.Time { return fixed }))

	id, err := r.Record(context.Background(), "c1", Actor{Usuario: "ana", Role: "admin"},
		audit.ActionFinancialAdd, "Adicionou entrada: Bar - R$ 50", map[string]any{"valor": 50})
	require.NoError(t, err)
	assert.Equal(t, "log-c1", id)

	require.Len(t, repo.entries["c1"], 1)
	e := repo.entries["c1"][0]
	assert.Equal(t, "ana", e.Usuario)
	assert.Equal(t, "admin", e.Role)
	assert.Equal(t, audit.ActionFinancialAdd, e.Acao)
	assert.Equal(t, "2025-03-01T02:30:00.000Z", e.Timestamp)
	assert.Equal(t, "2025-03-01", e.Data)
	assert.Equal(t, "23:30:00", e.Hora)
	assert.Equal(t, audit.SourceServer, e.Source)
}

func TestRecorder_RecordAfterCommitLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := NewRecorder(&memoryLog{err: errors.New("disk full")}, nil, WithLogger(zap.New(core)))

	r.RecordAfterCommit(context.Background(), "c1", Actor{Usuario: "ana"}, audit.ActionCategoryCreate, "x", nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to write audit entry", logs.All()[0].Message)
}

func TestLoadLocation(t *testing.T) {
	assert.Equal(t, "America/Sao_Paulo", LoadLocation("").String())
	assert.Equal(t, time.UTC, LoadLocation("Not/AZone"))
}
