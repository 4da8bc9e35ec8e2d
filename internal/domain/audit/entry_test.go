package audit

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	now := time.Date(2025, 3, 16, 1, 2, 3, 456_000_000, time.UTC)

	e := NewEntry("ana", "admin", ActionFinancialAdd, "Adicionou entrada", nil, now, loc)
	assert.Equal(t, "2025-03-16T01:02:03.456Z", e.Timestamp)
	assert.Equal(t, "2025-03-16", e.Data)
	assert.Equal(t, "22:02:03", e.Hora)
	assert.Equal(t, SourceServer, e.Source)
	assert.NotNil(t, e.Dados)
	assert.Empty(t, e.ID)

	utc := NewEntry("ana", "admin", ActionFinancialAdd, "x", map[string]any{"k": 1}, now, nil)
	assert.Equal(t, "01:02:03", utc.Hora)
	assert.Equal(t, 1, utc.Dados["k"])
}
