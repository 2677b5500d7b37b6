package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RolePlanner Role = "PLANNER"
	RoleViewer  Role = "VIEWER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsPlanner() bool { return p.Role == RolePlanner }
func (p Principal) IsViewer() bool  { return p.Role == RoleViewer }

// CanMutate covers site intake, roster edits, approvals and generation.
func (p Principal) CanMutate() bool { return p.IsAdmin() || p.IsPlanner() }
