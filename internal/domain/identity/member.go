package identity

import (
	"context"
)

// MemberStatus is the approval state of a club membership
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusApproved MemberStatus = "approved"
	MemberStatusRejected MemberStatus = "rejected"
)

// Member is the membership record of a user inside a club
type Member struct {
	UID    string
	Role   Role
	Status MemberStatus
	Login  string
	Email  string
}

// IsApproved reports whether the membership grants access to the club
func (m *Member) IsApproved() bool {
	return m.Status == MemberStatusApproved
}

// DisplayLogin returns the login, or the email when no login is set
func (m *Member) DisplayLogin() string {
	if m.Login != "" {
		return m.Login
	}
	return m.Email
}

// Caller is the verified identity attached to a request. It is passed
// explicitly to every operation.
type Caller struct {
	UID           string
	Email         string
	Login         string
	Role          Role   // role claim, may be empty
	ClubID        string // club the role claim was issued for, may be empty
	PlatformAdmin bool
}

// IsAuthenticated reports whether the caller carries a user id
func (c *Caller) IsAuthenticated() bool {
	return c != nil && c.UID != ""
}

// ClaimRoleFor returns the role claim when it applies to clubID
func (c *Caller) ClaimRoleFor(clubID string) (Role, bool) {
	if c == nil || c.Role == "" {
		return "", false
	}
	if c.ClubID != "" && c.ClubID != clubID {
		return "", false
	}
	return c.Role, true
}

// DisplayLogin returns the best human-readable name carried by the token
func (c *Caller) DisplayLogin() string {
	if c.Login != "" {
		return c.Login
	}
	return c.Email
}

// MemberRepository reads club membership records
type MemberRepository interface {
	// FindByUID returns shared.ErrNotFound (code not-found) when absent
	FindByUID(ctx context.Context, clubID, uid string) (*Member, error)
}
