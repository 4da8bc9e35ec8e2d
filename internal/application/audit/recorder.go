// Package audit writes the club action log for mutating operations.
package audit

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // club timezones on hosts without zoneinfo

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultTimezone renders the hora field of entries
const DefaultTimezone = "America/Sao_Paulo"

// Actor identifies who performed an action
type Actor struct {
	Usuario string
	Role    string
}

// Recorder builds audit entries and appends them to the club log
type Recorder struct {
	repo   audit.Repository
	loc    *time.Location
	clock  func() time.Time
	logger *zap.Logger
}

// Option configures a Recorder
type Option func(*Recorder)

// WithClock replaces time.Now
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// WithLogger sets the logger used when an entry cannot be written
func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder creates a Recorder. loc may be nil, in which case UTC is used.
func NewRecorder(repo audit.Repository, loc *time.Location, opts ...Option) *Recorder {
	if loc == nil {
		loc = time.UTC
	}
	r := &Recorder{repo: repo, loc: loc, clock: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadLocation resolves the configured timezone, falling back to UTC
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Record appends an entry and returns its id
func (r *Recorder) Record(ctx context.Context, clubID string, actor Actor, acao, descricao string, dados map[string]any) (string, error) {
	e := audit.NewEntry(actor.Usuario, actor.Role, acao, descricao, dados, r.clock(), r.loc)
	if err := r.repo.Append(ctx, clubID, e); err != nil {
		return "", fmt.Errorf("append audit entry %s: %w", acao, err)
	}
	return e.ID, nil
}

// RecordAfterCommit is Record for writes that already succeeded. A failure
// is logged and never returned.
func (r *Recorder) RecordAfterCommit(ctx context.Context, clubID string, actor Actor, acao, descricao string, dados map[string]any) {
	if _, err := r.Record(ctx, clubID, actor, acao, descricao, dados); err != nil {
		logger.WithLogger(ctx, r.logger).Error("failed to write audit entry",
			zap.String("club_id", clubID),
			zap.String("acao", acao),
			zap.Error(err),
		)
	}
}
