package nexuspay_controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"

	"github.com/nexuspay/nexuspay/cmd/rest-api/middlewares"
	"github.com/nexuspay/nexuspay/pkg/domain/project/entities"
	project_in "github.com/nexuspay/nexuspay/pkg/domain/project/ports/in"
)

// ProjectController adapts project_in.ProjectCommand to HTTP (§4.3). Every
// route sits behind RequireSession — project management is a dashboard
// concern, never an API-key one.
type ProjectController struct {
	projects project_in.ProjectCommand
}

func NewProjectController(c container.Container) *ProjectController {
	var projects project_in.ProjectCommand
	if err := c.Resolve(&projects); err != nil {
		slog.Error("Failed to resolve ProjectCommand", "error", err)
		panic(err)
	}
	return &ProjectController{projects: projects}
}

func (ctlr *ProjectController) Create(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		var input project_in.CreateProjectInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}
		input.OwnerID = userID

		project, err := ctlr.projects.CreateProject(r.Context(), input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCreated(w, r, project)
	}
}

func (ctlr *ProjectController) List(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		page, limit := queryPageLimit(r)
		projects, total, err := ctlr.projects.ListProjects(r.Context(), userID, page, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePaginated(w, r, projects, page, limit, total)
	}
}

func (ctlr *ProjectController) Get(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		project, err := ctlr.projects.GetProject(r.Context(), userID, projectID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, project)
	}
}

func (ctlr *ProjectController) UpdateSettings(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var settings entities.ProjectSettings
		if err := decodeJSON(r, &settings); err != nil {
			writeError(w, r, err)
			return
		}
		project, err := ctlr.projects.UpdateSettings(r.Context(), userID, projectID, settings)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, project)
	}
}

func (ctlr *ProjectController) Delete(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.projects.DeleteProject(r.Context(), userID, projectID); err != nil {
			writeError(w, r, err)
			return
		}
		nexuspayNoContent(w, r)
	}
}

func (ctlr *ProjectController) InviteMember(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body struct {
			InviteeEmail string                `json:"inviteeEmail"`
			Role         entities.ProjectRole `json:"role"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		member, err := ctlr.projects.InviteMember(r.Context(), project_in.InviteMemberInput{
			ProjectID:    projectID,
			InviterID:    userID,
			InviteeEmail: body.InviteeEmail,
			Role:         body.Role,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCreated(w, r, member)
	}
}

func (ctlr *ProjectController) AcceptInvite(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		member, err := ctlr.projects.AcceptInvite(r.Context(), projectID, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, member)
	}
}

func (ctlr *ProjectController) UpdateMemberRole(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		targetID, err := pathUUID(r, "user_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body struct {
			Role entities.ProjectRole `json:"role"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.projects.UpdateMemberRole(r.Context(), userID, projectID, targetID, body.Role); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]bool{"updated": true})
	}
}

func (ctlr *ProjectController) RemoveMember(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		targetID, err := pathUUID(r, "user_id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := ctlr.projects.RemoveMember(r.Context(), userID, projectID, targetID); err != nil {
			writeError(w, r, err)
			return
		}
		nexuspayNoContent(w, r)
	}
}

func (ctlr *ProjectController) RoleOf(_ context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.SessionUserID(r.Context())
		if !ok {
			writeError(w, r, errUnauthenticated)
			return
		}
		projectID, err := pathUUID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		role, err := ctlr.projects.RoleOf(r.Context(), projectID, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, r, map[string]entities.ProjectRole{"role": role})
	}
}
