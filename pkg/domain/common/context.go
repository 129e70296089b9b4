package common

type ContextKey string

const (
	// Request pipeline
	RequestIDKey ContextKey = "x-request-id"
	RequestTSKey ContextKey = "x-request-ts"

	// Tenancy / auth
	ProjectIDKey  ContextKey = "project_id"
	UserIDKey     ContextKey = "user_id"
	APIKeyIDKey   ContextKey = "api_key_id"
	AuthMethodKey ContextKey = "auth_method"
	PermissionsKey ContextKey = "permissions"
	ClientIPKey   ContextKey = "client_ip"
)

type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodAPIKey  AuthMethod = "api_key"
)
