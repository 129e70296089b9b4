package routing

import (
	"context"
	"net/http"
	"time"

	"github.com/golobby/container/v3"
	"github.com/gorilla/mux"

	"github.com/nexuspay/nexuspay/cmd/rest-api/controllers"
	nexuspay_controllers "github.com/nexuspay/nexuspay/cmd/rest-api/controllers/nexuspay"
	"github.com/nexuspay/nexuspay/cmd/rest-api/middlewares"
	apikey_vo "github.com/nexuspay/nexuspay/pkg/domain/apikey/value-objects"
	"github.com/nexuspay/nexuspay/pkg/infra/cache"
)

const (
	Health string = "/health"

	// NexusPay control plane (§4.2-§4.7)
	AuthRegister             string = "/v1/auth/register"
	AuthVerifyEmail          string = "/v1/auth/verify-email"
	AuthLogin                string = "/v1/auth/login"
	AuthOAuth                string = "/v1/auth/oauth"
	AuthPasswordReset        string = "/v1/auth/password-reset"
	AuthPasswordResetConfirm string = "/v1/auth/password-reset/confirm"
	Profile                  string = "/v1/auth/profile"

	Projects            string = "/v1/projects"
	ProjectDetail       string = "/v1/projects/{id}"
	ProjectMembers      string = "/v1/projects/{id}/members"
	ProjectMemberAccept string = "/v1/projects/{id}/members/accept"
	ProjectMemberDetail string = "/v1/projects/{id}/members/{user_id}"
	ProjectRole         string = "/v1/projects/{id}/role"

	ProjectAPIKeys      string = "/v1/projects/{project_id}/api-keys"
	ProjectAPIKeyDetail string = "/v1/projects/{project_id}/api-keys/{key_id}"
	ProjectAPIKeyRotate string = "/v1/projects/{project_id}/api-keys/{key_id}/rotate"
	ProjectAPIKeyIPs    string = "/v1/projects/{project_id}/api-keys/{key_id}/ip-allowlist"
	ProjectAPIKeyUsage  string = "/v1/projects/{project_id}/api-keys/{key_id}/usage"

	ProjectWallets          string = "/v1/projects/{project_id}/wallets"
	ProjectWalletDetail     string = "/v1/projects/{project_id}/wallets/{wallet_id}"
	ProjectWalletDeploy     string = "/v1/projects/{project_id}/wallets/{wallet_id}/deploy"
	ProjectWalletBySocialID string = "/v1/projects/{project_id}/wallets/by-social-id"

	ProjectPaymasterBalance      string = "/v1/projects/{project_id}/paymaster/{chain}/balance"
	ProjectPaymasterFund         string = "/v1/projects/{project_id}/paymaster/{chain}/fund"
	ProjectPaymasterSpend        string = "/v1/projects/{project_id}/paymaster/{chain}/spend"
	ProjectPaymasterAddresses    string = "/v1/projects/{project_id}/paymaster/addresses"
	ProjectPaymasterTransactions string = "/v1/projects/{project_id}/paymaster/{chain}/transactions"

	ProjectAnalyticsOverview string = "/v1/projects/{project_id}/analytics/overview"
	ProjectAnalyticsDaily    string = "/v1/projects/{project_id}/analytics/daily"
	ProjectAnalyticsTopUsers string = "/v1/projects/{project_id}/analytics/top-users"
	ProjectAnalyticsCohorts  string = "/v1/projects/{project_id}/analytics/cohorts"
	ProjectAnalyticsExport   string = "/v1/projects/{project_id}/analytics/export"
)

// NewRouter builds the control plane's HTTP surface: the health endpoint
// plus the full v1 API (§4). Health is the only route outside /v1 — every
// other route here is either anonymous auth (register/login/oauth/email
// verification), a dashboard session, or a project API key.
func NewRouter(ctx context.Context, container container.Container) http.Handler {
	healthController := controllers.NewHealthController(container)

	nexuspayAuth := middlewares.NewNexusPayAuthMiddleware(container)
	apiRateLimit := middlewares.NewNexusPayRateLimiter()
	authRateLimit := middlewares.NewAuthRateLimiter()

	// Hot-path response caches (§4.1): one keyed by the dashboard session
	// user for profile/project reads, one keyed by the calling project for
	// analytics reads. Separate instances so a project's analytics cache
	// entries and a user's dashboard entries never collide under the same
	// TTL tier.
	sessionCache := middlewares.NewResponseCacheMiddleware(cache.NewResponseCache(30*time.Second), sessionCacheKey)
	projectCache := middlewares.NewResponseCacheMiddleware(cache.NewResponseCache(30*time.Second), apiKeyCacheKey)
	identityController := nexuspay_controllers.NewIdentityController(container)
	projectController := nexuspay_controllers.NewProjectController(container)
	apiKeyController := nexuspay_controllers.NewAPIKeyController(container)
	walletController := nexuspay_controllers.NewWalletController(container)
	paymasterController := nexuspay_controllers.NewPaymasterController(container)
	analyticsController := nexuspay_controllers.NewAnalyticsController(container)

	r := mux.NewRouter()

	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.ErrorMiddleware)
	r.Use(mux.CORSMethodMiddleware(r))

	r.HandleFunc(Health, healthController.HealthCheck(ctx)).Methods("GET")

	// Identity (§4.2) — public signup/login, session-gated profile. Login and
	// registration share the tighter by-IP window; password reset requests
	// get their own, even tighter one (§9).
	r.Handle(AuthRegister, authRateLimit.LoginHandler(http.HandlerFunc(identityController.Register(ctx)))).Methods("POST")
	r.HandleFunc(AuthVerifyEmail, identityController.VerifyEmail(ctx)).Methods("GET")
	r.Handle(AuthLogin, authRateLimit.LoginHandler(http.HandlerFunc(identityController.Login(ctx)))).Methods("POST")
	r.Handle(AuthOAuth, authRateLimit.LoginHandler(http.HandlerFunc(identityController.OAuthSignIn(ctx)))).Methods("POST")
	r.Handle(AuthPasswordReset, authRateLimit.PasswordResetHandler(http.HandlerFunc(identityController.RequestPasswordReset(ctx)))).Methods("POST")
	r.HandleFunc(AuthPasswordResetConfirm, identityController.ResetPassword(ctx)).Methods("POST")
	r.Handle(Profile, nexuspayAuth.RequireSession()(sessionCache.Handler("profile:get")(http.HandlerFunc(identityController.GetProfile(ctx))))).Methods("GET")
	r.Handle(Profile, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(identityController.UpdateProfile(ctx))))).Methods("PUT")

	// Projects (§4.3) — dashboard session only. List/Get sit behind the
	// per-session-user response cache (§4.1); every mutation invalidates it.
	r.Handle(Projects, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.Create(ctx))))).Methods("POST")
	r.Handle(Projects, nexuspayAuth.RequireSession()(sessionCache.Handler("projects:list")(http.HandlerFunc(projectController.List(ctx))))).Methods("GET")
	r.Handle(ProjectDetail, nexuspayAuth.RequireSession()(sessionCache.Handler("project:get")(http.HandlerFunc(projectController.Get(ctx))))).Methods("GET")
	r.Handle(ProjectDetail, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.UpdateSettings(ctx))))).Methods("PUT")
	r.Handle(ProjectDetail, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.Delete(ctx))))).Methods("DELETE")
	r.Handle(ProjectMembers, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.InviteMember(ctx))))).Methods("POST")
	r.Handle(ProjectMemberAccept, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.AcceptInvite(ctx))))).Methods("POST")
	r.Handle(ProjectMemberDetail, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.UpdateMemberRole(ctx))))).Methods("PUT")
	r.Handle(ProjectMemberDetail, nexuspayAuth.RequireSession()(sessionCache.InvalidateHandler(http.HandlerFunc(projectController.RemoveMember(ctx))))).Methods("DELETE")
	r.Handle(ProjectRole, nexuspayAuth.RequireSession()(http.HandlerFunc(projectController.RoleOf(ctx)))).Methods("GET")

	// API-key management (§4.4) — dashboard session only
	r.Handle(ProjectAPIKeys, nexuspayAuth.RequireSession()(http.HandlerFunc(apiKeyController.Create(ctx)))).Methods("POST")
	r.Handle(ProjectAPIKeys, nexuspayAuth.RequireSession()(http.HandlerFunc(apiKeyController.List(ctx)))).Methods("GET")
	r.Handle(ProjectAPIKeyRotate, nexuspayAuth.RequireSession()(http.HandlerFunc(apiKeyController.Rotate(ctx)))).Methods("POST")
	r.Handle(ProjectAPIKeyDetail, nexuspayAuth.RequireSession()(http.HandlerFunc(apiKeyController.Revoke(ctx)))).Methods("DELETE")
	r.Handle(ProjectAPIKeyIPs, nexuspayAuth.RequireSession()(http.HandlerFunc(apiKeyController.UpdateIPAllowlist(ctx)))).Methods("PUT")
	r.Handle(ProjectAPIKeyUsage, nexuspayAuth.RequireSession()(http.HandlerFunc(apiKeyController.Usage(ctx)))).Methods("GET")

	// apiKeyRoute chains permission enforcement, then the apiKeyId/projectId
	// dual rate limiter, in front of the handler (§4.1, §9).
	apiKeyRoute := func(permission apikey_vo.Permission, handler http.HandlerFunc) http.Handler {
		return nexuspayAuth.RequireAPIKey(permission)(apiRateLimit.Handler(handler))
	}

	// apiKeyCachedRoute is apiKeyRoute plus the per-project response cache
	// (§4.1) for the read-only analytics hot paths — analytics never
	// mutates, so TTL expiry is the only invalidation path it needs.
	apiKeyCachedRoute := func(permission apikey_vo.Permission, routeName string, handler http.HandlerFunc) http.Handler {
		cached := projectCache.Handler(routeName)(handler)
		return nexuspayAuth.RequireAPIKey(permission)(apiRateLimit.Handler(cached))
	}

	// Wallets (§4.5) — project API key, scoped by permission
	r.Handle(ProjectWallets, apiKeyRoute(apikey_vo.PermWalletsCreate, walletController.Create(ctx))).Methods("POST")
	r.Handle(ProjectWallets, apiKeyRoute(apikey_vo.PermWalletsRead, walletController.List(ctx))).Methods("GET")
	r.Handle(ProjectWalletBySocialID, apiKeyRoute(apikey_vo.PermWalletsRead, walletController.GetBySocialID(ctx))).Methods("GET")
	r.Handle(ProjectWalletDetail, apiKeyRoute(apikey_vo.PermWalletsRead, walletController.Get(ctx))).Methods("GET")
	r.Handle(ProjectWalletDeploy, apiKeyRoute(apikey_vo.PermWalletsDeploy, walletController.Deploy(ctx))).Methods("POST")

	// Paymaster (§4.6) — project API key, scoped by permission
	r.Handle(ProjectPaymasterBalance, apiKeyRoute(apikey_vo.PermPaymasterRead, paymasterController.GetBalance(ctx))).Methods("GET")
	r.Handle(ProjectPaymasterFund, apiKeyRoute(apikey_vo.PermPaymasterFund, paymasterController.Fund(ctx))).Methods("POST")
	r.Handle(ProjectPaymasterSpend, apiKeyRoute(apikey_vo.PermPaymasterRead, paymasterController.TotalSpent(ctx))).Methods("GET")
	r.Handle(ProjectPaymasterAddresses, apiKeyRoute(apikey_vo.PermPaymasterRead, paymasterController.ListAddresses(ctx))).Methods("GET")
	r.Handle(ProjectPaymasterTransactions, apiKeyRoute(apikey_vo.PermPaymasterRead, paymasterController.ListTransactions(ctx))).Methods("GET")

	// Analytics (§4.7) — project API key, analytics:read. Dashboard/stats
	// reads are the named §4.1 hot path, so these run through the
	// per-project TTL cache; export streams a CSV and is excluded.
	r.Handle(ProjectAnalyticsOverview, apiKeyCachedRoute(apikey_vo.PermAnalyticsRead, "analytics:overview", analyticsController.Overview(ctx))).Methods("GET")
	r.Handle(ProjectAnalyticsDaily, apiKeyCachedRoute(apikey_vo.PermAnalyticsRead, "analytics:daily", analyticsController.DailyMetrics(ctx))).Methods("GET")
	r.Handle(ProjectAnalyticsTopUsers, apiKeyCachedRoute(apikey_vo.PermAnalyticsRead, "analytics:top-users", analyticsController.TopUsers(ctx))).Methods("GET")
	r.Handle(ProjectAnalyticsCohorts, apiKeyCachedRoute(apikey_vo.PermAnalyticsRead, "analytics:cohorts", analyticsController.Cohorts(ctx))).Methods("GET")
	r.Handle(ProjectAnalyticsExport, apiKeyRoute(apikey_vo.PermAnalyticsRead, analyticsController.ExportCSV(ctx))).Methods("GET")

	return r
}

// sessionCacheKey resolves the response-cache identity for dashboard
// session routes: the authenticated user.
func sessionCacheKey(r *http.Request) (string, bool) {
	id, ok := middlewares.SessionUserID(r.Context())
	if !ok {
		return "", false
	}
	return id.String(), true
}

// apiKeyCacheKey resolves the response-cache identity for project API-key
// routes: the project the presented key belongs to, so two keys on the same
// project share one cached analytics response.
func apiKeyCacheKey(r *http.Request) (string, bool) {
	id, ok := middlewares.APIKeyProjectID(r.Context())
	if !ok {
		return "", false
	}
	return id.String(), true
}
