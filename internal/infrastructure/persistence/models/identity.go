package models

import (
	"github.com/clubhub/backend/internal/domain/identity"
)

// MemberDoc is the stored membership record of a user in a club
type MemberDoc struct {
	Role   string `json:"role"`
	Status string `json:"status"`
	Login  string `json:"login,omitempty"`
	Email  string `json:"email,omitempty"`
}

// FromMember converts a domain member
func FromMember(m *identity.Member) *MemberDoc {
	return &MemberDoc{
		Role:   m.Role.String(),
		Status: string(m.Status),
		Login:  m.Login,
		Email:  m.Email,
	}
}

// ToDomain converts the document
func (d *MemberDoc) ToDomain(uid string) *identity.Member {
	return &identity.Member{
		UID:    uid,
		Role:   identity.Role(d.Role),
		Status: identity.MemberStatus(d.Status),
		Login:  d.Login,
		Email:  d.Email,
	}
}
