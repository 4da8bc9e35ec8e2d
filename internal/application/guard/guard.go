// Package guard resolves who is calling and what they may do inside a club.
package guard

import (
	"context"
	"errors"
	"strings"

	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Principal is an authorized caller, resolved for one club
type Principal struct {
	UID    string
	Role   identity.Role
	Login  string
	Member *identity.Member
}

// Guard checks authentication, membership and roles before any finance
// operation touches the store
type Guard struct {
	members identity.MemberRepository
	logger  *zap.Logger
	metrics *telemetry.FinanceMetrics
}

// Option configures a Guard
type Option func(*Guard)

// WithLogger sets the logger used for denials and lookup failures
func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics counts denials by error code
func WithMetrics(m *telemetry.FinanceMetrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// New creates a Guard reading membership records from members
func New(members identity.MemberRepository, opts ...Option) *Guard {
	g := &Guard{members: members, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequireAuth returns the uid of a verified caller
func (g *Guard) RequireAuth(caller *identity.Caller) (string, error) {
	if !caller.IsAuthenticated() {
		return "", shared.Unauthenticated("Usuário não autenticado")
	}
	return caller.UID, nil
}

// ResolveRole returns the role of the caller inside clubID. A role claim
// issued for the club wins; otherwise the membership record is read. Any
// lookup failure yields jogador.
func (g *Guard) ResolveRole(ctx context.Context, caller *identity.Caller, clubID string) identity.Role {
	if !caller.IsAuthenticated() {
		return identity.RoleJogador
	}
	if caller.PlatformAdmin {
		return identity.RoleAdmin
	}
	if role, ok := caller.ClaimRoleFor(clubID); ok {
		return role
	}
	member, err := g.members.FindByUID(ctx, clubID, caller.UID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			logger.WithLogger(ctx, g.logger).Warn("role lookup failed, using least privilege",
				zap.String("club_id", clubID),
				zap.String("uid", caller.UID),
				zap.Error(err),
			)
		}
		return identity.RoleJogador
	}
	return roleOrDefault(member.Role)
}

// RequireRole fails with permission-denied unless the resolved role is one
// of allowed
func (g *Guard) RequireRole(ctx context.Context, caller *identity.Caller, clubID string, allowed ...identity.Role) (identity.Role, error) {
	role := g.ResolveRole(ctx, caller, clubID)
	if err := checkRole(role, allowed); err != nil {
		g.deny(ctx, clubID, caller, err)
		return "", err
	}
	return role, nil
}

// ValidateClubMembership returns the approved membership record of the
// caller. Platform admins receive a synthetic admin record.
func (g *Guard) ValidateClubMembership(ctx context.Context, caller *identity.Caller, clubID string) (*identity.Member, error) {
	if _, err := g.RequireAuth(caller); err != nil {
		return nil, err
	}
	if err := validateClubID(clubID); err != nil {
		return nil, err
	}
	if caller.PlatformAdmin {
		return &identity.Member{
			UID:    caller.UID,
			Role:   identity.RoleAdmin,
			Status: identity.MemberStatusApproved,
			Login:  caller.Login,
			Email:  caller.Email,
		}, nil
	}

	member, err := g.members.FindByUID(ctx, clubID, caller.UID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			denied := shared.PermissionDenied("Você não pertence a este clube")
			g.deny(ctx, clubID, caller, denied)
			return nil, denied
		}
		logger.WithLogger(ctx, g.logger).Error("membership lookup failed",
			zap.String("club_id", clubID),
			zap.String("uid", caller.UID),
			zap.Error(err),
		)
		return nil, shared.Internal("Erro ao verificar associação ao clube", err)
	}
	if !member.IsApproved() {
		denied := shared.PermissionDenied("Sua conta não está aprovada")
		g.deny(ctx, clubID, caller, denied)
		return nil, denied
	}
	return member, nil
}

// Authorize runs authentication, membership and role checks in that order
// and returns the principal used for auditing
func (g *Guard) Authorize(ctx context.Context, caller *identity.Caller, clubID string, allowed ...identity.Role) (*Principal, error) {
	uid, err := g.RequireAuth(caller)
	if err != nil {
		g.deny(ctx, clubID, caller, err)
		return nil, err
	}
	member, err := g.ValidateClubMembership(ctx, caller, clubID)
	if err != nil {
		return nil, err
	}

	role, ok := caller.ClaimRoleFor(clubID)
	switch {
	case caller.PlatformAdmin:
		role = identity.RoleAdmin
	case !ok:
		role = roleOrDefault(member.Role)
	}
	if err := checkRole(role, allowed); err != nil {
		g.deny(ctx, clubID, caller, err)
		return nil, err
	}

	login := member.DisplayLogin()
	if login == "" {
		login = caller.DisplayLogin()
	}
	if login == "" {
		login = uid
	}
	return &Principal{UID: uid, Role: role, Login: login, Member: member}, nil
}

func (g *Guard) deny(ctx context.Context, clubID string, caller *identity.Caller, err error) {
	code := shared.CodeOf(err)
	g.metrics.RecordDenial(ctx, clubID, code)

	fields := []zap.Field{zap.String("club_id", clubID), zap.String("code", code), zap.String("reason", err.Error())}
	if caller != nil {
		fields = append(fields, zap.String("uid", caller.UID))
	}
	logger.WithLogger(ctx, g.logger).Info("finance request denied", fields...)
}

func checkRole(role identity.Role, allowed []identity.Role) error {
	if !role.IsValid() {
		return shared.PermissionDenied("Role inválida")
	}
	if !role.In(allowed) {
		return shared.PermissionDenied("Acesso negado. Roles permitidas: " +
			identity.JoinRoles(allowed) + ". Sua role: " + role.String())
	}
	return nil
}

func roleOrDefault(r identity.Role) identity.Role {
	if r == "" {
		return identity.RoleJogador
	}
	return r
}

func validateClubID(clubID string) error {
	if strings.TrimSpace(clubID) == "" {
		return shared.InvalidArgument("ID do clube obrigatório")
	}
	if strings.ContainsAny(clubID, "/.#$[]") {
		return shared.InvalidArgument("ID do clube inválido")
	}
	return nil
}
