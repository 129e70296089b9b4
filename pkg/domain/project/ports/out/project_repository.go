package out

import (
	"context"

	"github.com/google/uuid"
	"github.com/nexuspay/nexuspay/pkg/domain/project/entities"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *entities.Project) error
	Update(ctx context.Context, p *entities.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error)
	FindBySlug(ctx context.Context, slug string) (*entities.Project, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Project, int, error)
	// ListAllActive feeds the background daily analytics roll-up (§4.7).
	ListAllActive(ctx context.Context) ([]*entities.Project, error)
}

type ProjectMemberRepository interface {
	Create(ctx context.Context, m *entities.ProjectMember) error
	Update(ctx context.Context, m *entities.ProjectMember) error
	Find(ctx context.Context, projectID, userID uuid.UUID) (*entities.ProjectMember, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.ProjectMember, error)
	Delete(ctx context.Context, projectID, userID uuid.UUID) error
}
