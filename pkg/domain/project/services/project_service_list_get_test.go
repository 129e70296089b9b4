package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/nexuspay/nexuspay/pkg/domain/project/entities"
)

type mockProjectRepository struct {
	mock.Mock
}

func (m *mockProjectRepository) Create(ctx context.Context, p *entities.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectRepository) Update(ctx context.Context, p *entities.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Project), args.Error(1)
}

func (m *mockProjectRepository) FindBySlug(ctx context.Context, slug string) (*entities.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Project), args.Error(1)
}

func (m *mockProjectRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Project, int, error) {
	args := m.Called(ctx, ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Project), args.Int(1), args.Error(2)
}

func (m *mockProjectRepository) ListAllActive(ctx context.Context) ([]*entities.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Project), args.Error(1)
}

type mockProjectMemberRepository struct {
	mock.Mock
}

func (m *mockProjectMemberRepository) Create(ctx context.Context, mem *entities.ProjectMember) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *mockProjectMemberRepository) Update(ctx context.Context, mem *entities.ProjectMember) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *mockProjectMemberRepository) Find(ctx context.Context, projectID, userID uuid.UUID) (*entities.ProjectMember, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProjectMember), args.Error(1)
}

func (m *mockProjectMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*entities.ProjectMember, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ProjectMember), args.Error(1)
}

func (m *mockProjectMemberRepository) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func TestProjectService_ListProjects_DelegatesToListByOwner(t *testing.T) {
	projects := new(mockProjectRepository)
	svc := NewProjectService(projects, nil, nil, nil, nil, nil, nil)

	ownerID := uuid.New()
	want := []*entities.Project{entities.NewProject(ownerID, "Acme", []chain_vo.ChainID{chain_vo.ChainEthereum})}
	projects.On("ListByOwner", mock.Anything, ownerID, 1, 20).Return(want, 1, nil)

	got, total, err := svc.ListProjects(context.Background(), ownerID, 1, 20)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected result: got=%v total=%d", got, total)
	}
	projects.AssertExpectations(t)
}

func TestProjectService_GetProject_RequiresMembership(t *testing.T) {
	projects := new(mockProjectRepository)
	members := new(mockProjectMemberRepository)
	svc := NewProjectService(projects, members, nil, nil, nil, nil, nil)

	projectID := uuid.New()
	actorID := uuid.New()
	members.On("Find", mock.Anything, projectID, actorID).Return(nil, nil)

	_, err := svc.GetProject(context.Background(), actorID, projectID)
	if err == nil {
		t.Fatal("expected an error for a non-member actor")
	}
	if _, ok := err.(*common.ErrForbidden); !ok {
		t.Fatalf("expected *common.ErrForbidden, got %T", err)
	}
	projects.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProjectService_GetProject_ReturnsActiveProject(t *testing.T) {
	projects := new(mockProjectRepository)
	members := new(mockProjectMemberRepository)
	svc := NewProjectService(projects, members, nil, nil, nil, nil, nil)

	ownerID := uuid.New()
	project := entities.NewProject(ownerID, "Acme", []chain_vo.ChainID{chain_vo.ChainEthereum})
	member := entities.NewProjectMember(project.ID, ownerID, ownerID, entities.RoleOwner)
	member.Accept(time.Now().UTC())

	members.On("Find", mock.Anything, project.ID, ownerID).Return(member, nil)
	projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)

	got, err := svc.GetProject(context.Background(), ownerID, project.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got != project {
		t.Fatalf("expected the repository's project to be returned unchanged")
	}
}

func TestProjectService_GetProject_NotFoundWhenDeleted(t *testing.T) {
	projects := new(mockProjectRepository)
	members := new(mockProjectMemberRepository)
	svc := NewProjectService(projects, members, nil, nil, nil, nil, nil)

	ownerID := uuid.New()
	project := entities.NewProject(ownerID, "Acme", []chain_vo.ChainID{chain_vo.ChainEthereum})
	project.Status = entities.ProjectStatusDeleted
	member := entities.NewProjectMember(project.ID, ownerID, ownerID, entities.RoleOwner)
	member.Accept(time.Now().UTC())

	members.On("Find", mock.Anything, project.ID, ownerID).Return(member, nil)
	projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)

	_, err := svc.GetProject(context.Background(), ownerID, project.ID)
	if _, ok := err.(*common.ErrNotFound); !ok {
		t.Fatalf("expected *common.ErrNotFound for a deleted project, got %T (%v)", err, err)
	}
}
