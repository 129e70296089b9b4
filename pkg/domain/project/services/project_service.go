package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
	"github.com/nexuspay/nexuspay/pkg/domain/project/entities"
	in "github.com/nexuspay/nexuspay/pkg/domain/project/ports/in"
	out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
)

type ProjectService struct {
	projects     out.ProjectRepository
	members      out.ProjectMemberRepository
	users        identity_out.UserRepository
	paymasters   out.PaymasterProvisioner
	keyRevoker   out.APIKeyRevoker
	pmFreezer    out.PaymasterFreezer
	emailSender  identity_out.EmailSender
}

func NewProjectService(
	projects out.ProjectRepository,
	members out.ProjectMemberRepository,
	users identity_out.UserRepository,
	paymasters out.PaymasterProvisioner,
	keyRevoker out.APIKeyRevoker,
	pmFreezer out.PaymasterFreezer,
	emailSender identity_out.EmailSender,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		members:     members,
		users:       users,
		paymasters:  paymasters,
		keyRevoker:  keyRevoker,
		pmFreezer:   pmFreezer,
		emailSender: emailSender,
	}
}

var _ in.ProjectCommand = (*ProjectService)(nil)

func (s *ProjectService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := entities.SlugBase(name)
	if base == "" {
		base = "project"
	}
	for suffix := 1; ; suffix++ {
		candidate := entities.SlugWithSuffix(base, suffix)
		exists, err := s.projects.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, input in.CreateProjectInput) (*entities.Project, error) {
	if len(input.Chains) == 0 {
		return nil, common.NewErrInvalidInput("at least one chain is required", "chains")
	}
	for _, c := range input.Chains {
		if !chain_vo.IsSupported(c) {
			return nil, common.NewErrInvalidInput("unsupported chain: "+string(c), "chains")
		}
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, common.NewErrInvalidInput("name is required", "name")
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	project := entities.NewProject(input.OwnerID, strings.TrimSpace(input.Name), input.Chains)
	project.Slug = slug
	project.Description = input.Description
	project.Website = input.Website

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	owner := entities.NewProjectMember(project.ID, input.OwnerID, input.OwnerID, entities.RoleOwner)
	owner.Accept(time.Now().UTC())
	if err := s.members.Create(ctx, owner); err != nil {
		return nil, err
	}

	if s.paymasters != nil {
		if err := s.paymasters.ProvisionForProject(ctx, project.ID, input.Chains); err != nil {
			slog.ErrorContext(ctx, "paymaster provisioning failed, rolling back project", "error", err, "project_id", project.ID)
			if rbErr := s.paymasters.RollbackProject(ctx, project.ID); rbErr != nil {
				slog.ErrorContext(ctx, "paymaster rollback failed", "error", rbErr, "project_id", project.ID)
			}
			project.Status = entities.ProjectStatusDeleted
			project.Touch()
			_ = s.projects.Update(ctx, project)
			return nil, common.NewErrUpstream("failed to provision paymaster for one or more chains")
		}
	}

	return project, nil
}

// ListProjects returns the projects ownerID owns, paginated. Membership in
// other owners' projects is surfaced via RoleOf/GetProject rather than this
// listing, matching §4.3's role matrix: only the owner's own portfolio is a
// "my projects" page, everything else is looked up by id.
func (s *ProjectService) ListProjects(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*entities.Project, int, error) {
	return s.projects.ListByOwner(ctx, ownerID, page, limit)
}

// GetProject returns projectID's detail once actorID is confirmed to hold
// any role on it (§4.3's role matrix grants read to every role, viewer
// included).
func (s *ProjectService) GetProject(ctx context.Context, actorID, projectID uuid.UUID) (*entities.Project, error) {
	if _, err := s.RoleOf(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil || !project.IsActive() {
		return nil, common.NewErrNotFound(common.ResourceTypeProject, "id", projectID)
	}
	return project, nil
}

func (s *ProjectService) requireRole(ctx context.Context, projectID, actorID uuid.UUID, op entities.Operation) error {
	role, err := s.RoleOf(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	if !role.CanPerform(op) {
		return common.NewErrForbidden("insufficient project role for this operation")
	}
	return nil
}

func (s *ProjectService) RoleOf(ctx context.Context, projectID, userID uuid.UUID) (entities.ProjectRole, error) {
	member, err := s.members.Find(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if member == nil || member.IsPending() {
		return "", common.NewErrForbidden("not a member of this project")
	}
	return member.Role, nil
}

func (s *ProjectService) UpdateSettings(ctx context.Context, actorID, projectID uuid.UUID, settings entities.ProjectSettings) (*entities.Project, error) {
	if err := s.requireRole(ctx, projectID, actorID, entities.OpManageMembers); err != nil {
		return nil, err
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil || !project.IsActive() {
		return nil, common.NewErrNotFound(common.ResourceTypeProject, "id", projectID)
	}

	if settings.RateLimitPerMinute < entities.MinRateLimitPerMinute || settings.RateLimitPerMinute > entities.MaxRateLimitPerMinute {
		return nil, common.NewErrInvalidInput("rateLimitPerMinute must be between 100 and 10000", "settings.rateLimitPerMinute")
	}

	project.Settings = settings
	project.Touch()
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject soft-deletes, revokes active api-keys, and freezes
// paymasters; history is retained for audit (§4.3).
func (s *ProjectService) DeleteProject(ctx context.Context, actorID, projectID uuid.UUID) error {
	if err := s.requireRole(ctx, projectID, actorID, entities.OpDeleteProject); err != nil {
		return err
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil || !project.IsActive() {
		return common.NewErrNotFound(common.ResourceTypeProject, "id", projectID)
	}

	project.Status = entities.ProjectStatusDeleted
	project.Touch()
	if err := s.projects.Update(ctx, project); err != nil {
		return err
	}

	if s.keyRevoker != nil {
		if err := s.keyRevoker.RevokeAllForProject(ctx, projectID); err != nil {
			slog.ErrorContext(ctx, "failed to revoke api keys on project delete", "error", err, "project_id", projectID)
		}
	}
	if s.pmFreezer != nil {
		if err := s.pmFreezer.FreezeAllForProject(ctx, projectID); err != nil {
			slog.ErrorContext(ctx, "failed to freeze paymasters on project delete", "error", err, "project_id", projectID)
		}
	}
	return nil
}

func (s *ProjectService) InviteMember(ctx context.Context, input in.InviteMemberInput) (*entities.ProjectMember, error) {
	if err := s.requireRole(ctx, input.ProjectID, input.InviterID, entities.OpManageMembers); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.InviteeEmail))
	existingUser, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var member *entities.ProjectMember
	if existingUser != nil {
		member = entities.NewProjectMember(input.ProjectID, existingUser.ID, input.InviterID, input.Role)
		member.Accept(time.Now().UTC())
	} else {
		member = &entities.ProjectMember{
			ProjectID:    input.ProjectID,
			InviteeEmail: email,
			Role:         input.Role,
			InvitedBy:    input.InviterID,
			InvitedAt:    time.Now().UTC(),
		}
	}

	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}

	if existingUser == nil && s.emailSender != nil {
		project, _ := s.projects.FindByID(ctx, input.ProjectID)
		projectName := input.ProjectID.String()
		if project != nil {
			projectName = project.Name
		}
		if err := s.emailSender.SendProjectInvite(ctx, email, projectName, input.ProjectID.String()); err != nil {
			slog.ErrorContext(ctx, "failed to send project invite email", "error", err)
		}
	}

	return member, nil
}

func (s *ProjectService) AcceptInvite(ctx context.Context, projectID, userID uuid.UUID) (*entities.ProjectMember, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeUser, "id", userID)
	}

	members, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.IsPending() && strings.EqualFold(m.InviteeEmail, user.Email) {
			m.UserID = userID
			m.Accept(time.Now().UTC())
			if err := s.members.Update(ctx, m); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, common.NewErrNotFound(common.ResourceTypeProjectMember, "email", user.Email)
}

func (s *ProjectService) UpdateMemberRole(ctx context.Context, actorID, projectID, targetUserID uuid.UUID, role entities.ProjectRole) error {
	if err := s.requireRole(ctx, projectID, actorID, entities.OpManageMembers); err != nil {
		return err
	}
	member, err := s.members.Find(ctx, projectID, targetUserID)
	if err != nil {
		return err
	}
	if member == nil {
		return common.NewErrNotFound(common.ResourceTypeProjectMember, "userId", targetUserID)
	}
	if member.Role == entities.RoleOwner {
		return common.NewErrForbidden("cannot change the owner's role; use transfer-ownership")
	}
	member.Role = role
	return s.members.Update(ctx, member)
}

func (s *ProjectService) RemoveMember(ctx context.Context, actorID, projectID, targetUserID uuid.UUID) error {
	if err := s.requireRole(ctx, projectID, actorID, entities.OpManageMembers); err != nil {
		return err
	}
	member, err := s.members.Find(ctx, projectID, targetUserID)
	if err != nil {
		return err
	}
	if member == nil {
		return common.NewErrNotFound(common.ResourceTypeProjectMember, "userId", targetUserID)
	}
	if member.Role == entities.RoleOwner {
		return common.NewErrForbidden("cannot remove the project owner")
	}
	return s.members.Delete(ctx, projectID, targetUserID)
}

// IsPaymasterEnabled satisfies wallet_services.ProjectPaymasterLookup (§4.5,
// §4.6): the wallet deploy path checks this before sponsoring gas, without
// importing the project package's entities or repository directly.
func (s *ProjectService) IsPaymasterEnabled(ctx context.Context, projectID uuid.UUID) (bool, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	if project == nil {
		return false, common.NewErrNotFound(common.ResourceTypeProject, "id", projectID)
	}
	return project.Settings.PaymasterEnabled, nil
}
