package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
)

// NexusPayRateLimiter enforces the two independent sliding windows §9
// requires for project-key traffic: one keyed by apiKeyId, one by projectId,
// so a project with many keys can't exceed its own ceiling by minting more
// keys. It must run after RequireAPIKey, which is what populates
// APIKeyIDKey/ProjectIDKey in the request context.
type NexusPayRateLimiter struct {
	byAPIKey  *RateLimiter
	byProject *RateLimiter
}

// NewNexusPayRateLimiter wires the §9 defaults: 1000 req/hr per API key,
// 5000 req/hr per project.
func NewNexusPayRateLimiter() *NexusPayRateLimiter {
	return &NexusPayRateLimiter{
		byAPIKey:  NewRateLimiter(1000, time.Hour),
		byProject: NewRateLimiter(5000, time.Hour),
	}
}

// Handler skips limiting for requests that never resolved an API key (dev
// sentinel, or bypassed entirely), and otherwise enforces both windows,
// reporting whichever is tighter in the response headers.
func (rl *NexusPayRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKeyID, hasKey := r.Context().Value(nexuspay_common.APIKeyIDKey).(uuid.UUID)
		projectID, hasProject := r.Context().Value(nexuspay_common.ProjectIDKey).(uuid.UUID)
		if !hasKey || !hasProject {
			next.ServeHTTP(w, r)
			return
		}

		keyResult := rl.byAPIKey.Check("key:" + apiKeyID.String())
		projectResult := rl.byProject.Check("project:" + projectID.String())

		tightest := keyResult
		if projectResult.Remaining < keyResult.Remaining {
			tightest = projectResult
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tightest.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(tightest.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(tightest.ResetAfter).Unix(), 10))

		if !keyResult.Allowed || !projectResult.Allowed {
			blocking := keyResult
			if !projectResult.Allowed {
				blocking = projectResult
			}
			w.Header().Set("Retry-After", strconv.Itoa(blocking.RetryAfterSec))
			writeAuthError(w, r, nexuspay_common.ErrRateLimitedAPI)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthRateLimiter guards the unauthenticated §4.2 auth endpoints by caller
// IP, since there is no API key yet to key off of.
type AuthRateLimiter struct {
	login          *RateLimiter
	passwordReset  *RateLimiter
}

// NewAuthRateLimiter wires §9's auth-route defaults: 10 req/15min for
// login/register/oauth, 3 req/hr for password-reset requests.
func NewAuthRateLimiter() *AuthRateLimiter {
	return &AuthRateLimiter{
		login:         NewRateLimiter(10, 15*time.Minute),
		passwordReset: NewRateLimiter(3, time.Hour),
	}
}

func (rl *AuthRateLimiter) LoginHandler(next http.Handler) http.Handler {
	return rl.guard(rl.login, next)
}

func (rl *AuthRateLimiter) PasswordResetHandler(next http.Handler) http.Handler {
	return rl.guard(rl.passwordReset, next)
}

func (rl *AuthRateLimiter) guard(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := limiter.Check(getClientIP(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSec))
			writeAuthError(w, r, nexuspay_common.ErrRateLimitedAPI)
			return
		}
		next.ServeHTTP(w, r)
	})
}
