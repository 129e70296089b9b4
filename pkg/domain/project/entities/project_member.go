package entities

import (
	"time"

	"github.com/google/uuid"
)

type ProjectRole string

const (
	RoleOwner     ProjectRole = "owner"
	RoleAdmin     ProjectRole = "admin"
	RoleDeveloper ProjectRole = "developer"
	RoleViewer    ProjectRole = "viewer"
)

// Operation names the role matrix in §4.3 decides over.
type Operation string

const (
	OpRead             Operation = "read"
	OpCreateAPIKey     Operation = "create_api_key"
	OpCreateWallet     Operation = "create_wallet"
	OpDeployWallet     Operation = "deploy_wallet"
	OpDeleteProject    Operation = "delete_project"
	OpTransferOwner    Operation = "transfer_ownership"
	OpManageMembers    Operation = "manage_members"
	OpFundPaymaster    Operation = "fund_paymaster"
)

// CanPerform implements the role matrix: owner = all; admin = all except
// delete-project and transfer-ownership; developer = read + create api-keys +
// create/deploy wallets; viewer = read-only.
func (r ProjectRole) CanPerform(op Operation) bool {
	switch r {
	case RoleOwner:
		return true
	case RoleAdmin:
		return op != OpDeleteProject && op != OpTransferOwner
	case RoleDeveloper:
		switch op {
		case OpRead, OpCreateAPIKey, OpCreateWallet, OpDeployWallet:
			return true
		default:
			return false
		}
	case RoleViewer:
		return op == OpRead
	default:
		return false
	}
}

// ProjectMember. InviteeEmail is set when the invitee has no account yet;
// UserID stays uuid.Nil until the invitee registers and AcceptInvite links
// the two records.
type ProjectMember struct {
	ProjectID    uuid.UUID  `bson:"project_id"`
	UserID       uuid.UUID  `bson:"user_id"`
	InviteeEmail string     `bson:"invitee_email,omitempty"`
	Role         ProjectRole `bson:"role"`
	InvitedBy    uuid.UUID  `bson:"invited_by"`
	InvitedAt    time.Time  `bson:"invited_at"`
	AcceptedAt   *time.Time `bson:"accepted_at,omitempty"`
}

func NewProjectMember(projectID, userID, invitedBy uuid.UUID, role ProjectRole) *ProjectMember {
	return &ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		InvitedBy: invitedBy,
		InvitedAt: time.Now().UTC(),
	}
}

func (m *ProjectMember) Accept(now time.Time) {
	m.AcceptedAt = &now
}

func (m *ProjectMember) IsPending() bool {
	return m.AcceptedAt == nil
}
