package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testDocument struct {
	Path string `gorm:"primaryKey"`
	Data string
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	sr := recordSpans(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testDocument{}))

	cfg := DefaultDBTracingConfig()
	cfg.DBSystem = "sqlite"
	cfg.SlowQueryThresh = time.Nanosecond
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, db.Use(plugin))
	assert.Equal(t, "clubhub:db_tracing", plugin.Name())

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&testDocument{Path: "a/b", Data: "{}"}).Error)
	var got testDocument
	require.NoError(t, db.WithContext(ctx).Take(&got, "path = ?", "a/b").Error)
	parent.End()

	var dbSpans int
	for _, s := range sr.Ended() {
		if s.Name() == "parent" {
			continue
		}
		dbSpans++
	}
	assert.GreaterOrEqual(t, dbSpans, 2)
}
