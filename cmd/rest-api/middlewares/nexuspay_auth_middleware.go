package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golobby/container/v3"
	"github.com/google/uuid"

	apikey_in "github.com/nexuspay/nexuspay/pkg/domain/apikey/ports/in"
	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	project_out "github.com/nexuspay/nexuspay/pkg/domain/project/ports/out"
	"github.com/nexuspay/nexuspay/pkg/infra/workers"
)

// devKeySentinels are the legacy development keys accepted only outside
// production, so a developer can exercise the API-key routes without
// provisioning a real project (§4.1).
var devKeySentinels = map[string]bool{"local-dev-key": true, "dev-key": true, "development-key": true}

// NexusPayAuthMiddleware gates the two actor types the control plane
// recognizes: a dashboard user's Bearer session JWT, and a project's
// server-side API key (§4.1, §4.4). It writes the error response envelope
// itself and stops the chain, rather than stashing an error in context for
// ErrorMiddleware to translate.
type NexusPayAuthMiddleware struct {
	sessions    identity_out.SessionIssuer
	apiKeys     apikey_in.APIKeyCommand
	projects    project_out.ProjectRepository
	usage       *workers.UsageWriter
	environment string
}

func NewNexusPayAuthMiddleware(c container.Container) *NexusPayAuthMiddleware {
	var sessions identity_out.SessionIssuer
	var apiKeys apikey_in.APIKeyCommand
	var projects project_out.ProjectRepository
	var usage *workers.UsageWriter
	var config nexuspay_common.Config
	_ = c.Resolve(&sessions)
	_ = c.Resolve(&apiKeys)
	_ = c.Resolve(&projects)
	_ = c.Resolve(&usage)
	_ = c.Resolve(&config)
	return &NexusPayAuthMiddleware{
		sessions:    sessions,
		apiKeys:     apiKeys,
		projects:    projects,
		usage:       usage,
		environment: config.Environment,
	}
}

func writeAuthError(w http.ResponseWriter, r *http.Request, apiErr *nexuspay_common.APIError) {
	requestID, _ := r.Context().Value(nexuspay_common.RequestIDKey).(string)
	nexuspay_common.WriteErrorEnvelope(w, requestID, apiErr)
}

// RequireSession validates the Bearer session JWT and sets UserIDKey/AuthMethodKey.
func (m *NexusPayAuthMiddleware) RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" || m.sessions == nil {
				writeAuthError(w, r, nexuspay_common.ErrUnauthorizedAPI)
				return
			}

			claims, err := m.sessions.Verify(token)
			if err != nil {
				writeAuthError(w, r, nexuspay_common.ErrUnauthorizedAPI)
				return
			}

			ctx := context.WithValue(r.Context(), nexuspay_common.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, nexuspay_common.AuthMethodKey, nexuspay_common.AuthMethodSession)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIKey validates the X-API-Key header (or the legacy ?apikey= query
// fallback), enforces expiry/revocation/IP-allowlist and the declared
// permission (§4.1, §4.4), then records usage fire-and-forget and sets
// ProjectIDKey/APIKeyIDKey/AuthMethodKey/PermissionsKey.
func (m *NexusPayAuthMiddleware) RequireAPIKey(permission apikey_vo.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				presented = r.URL.Query().Get("apikey")
			}
			if presented == "" || m.apiKeys == nil {
				writeAuthError(w, r, nexuspay_common.ErrUnauthorizedAPI)
				return
			}

			callerIP := clientIPFromRequest(r)

			if m.environment != "production" && devKeySentinels[presented] {
				ctx := context.WithValue(r.Context(), nexuspay_common.AuthMethodKey, nexuspay_common.AuthMethodAPIKey)
				ctx = context.WithValue(ctx, nexuspay_common.PermissionsKey, []apikey_vo.Permission{apikey_vo.PermAdminAll})
				ctx = context.WithValue(ctx, nexuspay_common.ClientIPKey, callerIP)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			key, err := m.apiKeys.FindByPresentedKey(r.Context(), presented)
			if err != nil {
				writeAuthError(w, r, nexuspay_common.ErrInvalidAPIKeyFormat)
				return
			}
			if key == nil {
				writeAuthError(w, r, nexuspay_common.ErrInvalidAPIKey)
				return
			}

			now := time.Now().UTC()
			if !key.IsUsable(now) {
				if key.Status == "revoked" {
					writeAuthError(w, r, nexuspay_common.ErrAPIKeyRevoked)
				} else {
					writeAuthError(w, r, nexuspay_common.ErrAPIKeyExpired)
				}
				return
			}

			if !key.IPAllowed(callerIP) {
				writeAuthError(w, r, nexuspay_common.ErrIPNotWhitelisted)
				return
			}

			if m.projects != nil {
				project, perr := m.projects.FindByID(r.Context(), key.ProjectID)
				if perr != nil || project == nil {
					writeAuthError(w, r, nexuspay_common.ErrProjectNotFound)
					return
				}
				if !project.IsActive() {
					writeAuthError(w, r, nexuspay_common.ErrProjectNotFound)
					return
				}
			}

			if !apikey_vo.Contains(key.Permissions, permission) {
				writeAuthError(w, r, nexuspay_common.ErrInsufficientPerms)
				return
			}

			ctx := context.WithValue(r.Context(), nexuspay_common.ProjectIDKey, key.ProjectID)
			ctx = context.WithValue(ctx, nexuspay_common.APIKeyIDKey, key.ID)
			ctx = context.WithValue(ctx, nexuspay_common.AuthMethodKey, nexuspay_common.AuthMethodAPIKey)
			ctx = context.WithValue(ctx, nexuspay_common.PermissionsKey, key.Permissions)
			ctx = context.WithValue(ctx, nexuspay_common.ClientIPKey, callerIP)

			rw := &statusCapturingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rw, r.WithContext(ctx))

			if m.usage != nil {
				elapsed := time.Since(start).Milliseconds()
				record := ledger_entities.NewAPIKeyUsage(key.ID, key.ProjectID, r.URL.Path, r.Method, rw.statusCode, elapsed, callerIP, r.UserAgent())
				m.usage.Enqueue(record)
			}
		})
	}
}

// statusCapturingWriter records the status code a handler ultimately writes,
// so RequireAPIKey can log it in the post-request usage row.
type statusCapturingWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusCapturingWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusCapturingWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.statusCode = http.StatusOK
		rw.wroteHeader = true
	}
	return rw.ResponseWriter.Write(b)
}

// clientIPFromRequest mirrors the rate limiter's precedence: X-Forwarded-For,
// then X-Real-IP, then RemoteAddr.
func clientIPFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}

// SessionUserID reads the caller set by RequireSession.
func SessionUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(nexuspay_common.UserIDKey).(uuid.UUID)
	return id, ok
}

// APIKeyProjectID reads the caller set by RequireAPIKey.
func APIKeyProjectID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(nexuspay_common.ProjectIDKey).(uuid.UUID)
	return id, ok
}
