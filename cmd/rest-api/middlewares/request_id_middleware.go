package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	nexuspay_common "github.com/nexuspay/nexuspay/pkg/domain/common"
)

// RequestIDMiddleware assigns every request the X-Request-Id it carried in,
// or a fresh uuid otherwise, and echoes it back on the response so a caller
// can correlate logs with the envelope's meta.requestId (§4.1).
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), nexuspay_common.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
