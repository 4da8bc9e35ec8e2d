// Package finance implements the club ledger operations: balance reads and
// cache maintenance, transaction and category CRUD, and mensalidade payments.
package finance

import (
	"context"
	"errors"
	"time"

	appaudit "github.com/clubhub/backend/internal/application/audit"
	"github.com/clubhub/backend/internal/application/guard"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Authorizer checks the caller against a club before an operation runs
type Authorizer interface {
	Authorize(ctx context.Context, caller *identity.Caller, clubID string, allowed ...identity.Role) (*guard.Principal, error)
}

// ActionRecorder writes the club action log
type ActionRecorder interface {
	RecordAfterCommit(ctx context.Context, clubID string, actor appaudit.Actor, acao, descricao string, dados map[string]any)
}

// Option configures the finance services
type Option func(*settings)

type settings struct {
	clock   func() time.Time
	logger  *zap.Logger
	metrics *telemetry.FinanceMetrics
}

// WithClock replaces time.Now
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records balance and ledger metrics
func WithMetrics(m *telemetry.FinanceMetrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

func newSettings(opts []Option) settings {
	s := settings{clock: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, s.logger)
}

// internal passes domain errors through and converts anything else into an
// internal error after logging it with its cause
func (s settings) internal(ctx context.Context, msg string, err error, fields ...zap.Field) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	s.log(ctx).Error(msg, append(fields, zap.Error(err))...)
	return shared.Internal(msg, err)
}

// invalidate drops the balance cache after a committed ledger write.
// Failures are logged, not returned.
func (s settings) invalidate(ctx context.Context, cache finance.BalanceCacheRepository, clubID string) {
	if err := cache.Invalidate(ctx, clubID); err != nil {
		s.log(ctx).Warn("failed to invalidate balance cache",
			zap.String("club_id", clubID),
			zap.Error(err),
		)
	}
}

func actorOf(p *guard.Principal) appaudit.Actor {
	return appaudit.Actor{Usuario: p.Login, Role: p.Role.String()}
}

func authorOf(p *guard.Principal) finance.Author {
	return finance.Author{UID: p.UID, Login: p.Login}
}
