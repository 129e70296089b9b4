package in

import (
	"context"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	"github.com/nexuspay/nexuspay/pkg/domain/project/entities"
	"github.com/google/uuid"
)

type CreateProjectInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
	Website     string
	Chains      []chain_vo.ChainID
}

type InviteMemberInput struct {
	ProjectID   uuid.UUID
	InviterID   uuid.UUID
	InviteeEmail string
	Role        entities.ProjectRole
}

// ProjectCommand is the single in-port for every write operation §4.3 names,
// plus the membership-scoped reads §6's `GET /v1/projects` and
// `GET /v1/projects/:projectId` routes need.
type ProjectCommand interface {
	CreateProject(ctx context.Context, input CreateProjectInput) (*entities.Project, error)
	ListProjects(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Project, int, error)
	GetProject(ctx context.Context, actorID, projectID uuid.UUID) (*entities.Project, error)
	UpdateSettings(ctx context.Context, actorID, projectID uuid.UUID, settings entities.ProjectSettings) (*entities.Project, error)
	DeleteProject(ctx context.Context, actorID, projectID uuid.UUID) error
	InviteMember(ctx context.Context, input InviteMemberInput) (*entities.ProjectMember, error)
	AcceptInvite(ctx context.Context, projectID, userID uuid.UUID) (*entities.ProjectMember, error)
	UpdateMemberRole(ctx context.Context, actorID, projectID, targetUserID uuid.UUID, role entities.ProjectRole) error
	RemoveMember(ctx context.Context, actorID, projectID, targetUserID uuid.UUID) error
	RoleOf(ctx context.Context, projectID, userID uuid.UUID) (entities.ProjectRole, error)
}
