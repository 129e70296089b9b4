package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	common "github.com/nexuspay/nexuspay/pkg/domain/common"
)

type mockHandler struct {
	action func(w http.ResponseWriter, r *http.Request)
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m.action != nil {
		m.action(w, r)
	}
}

func decodeEnvelope(t *testing.T, body []byte) common.Envelope {
	t.Helper()
	var env common.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("failed to parse envelope: %v", err)
	}
	return env
}

func TestErrorMiddleware_ContextErrors(t *testing.T) {
	tests := []struct {
		name           string
		contextError   error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "APIError in context",
			contextError:   common.NewAPIError(http.StatusBadRequest, "VALIDATION_ERROR", "invalid input"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "Unauthorized error in context",
			contextError:   common.ErrUnauthorizedAPI,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "Not found error in context",
			contextError:   common.ErrNotFoundAPI,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "Conflict error in context",
			contextError:   common.ErrConflictAPI,
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONFLICT",
		},
		{
			name:           "Unmapped error falls back to internal error",
			contextError:   &testError{message: "something went wrong"},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{
				action: func(w http.ResponseWriter, r *http.Request) {
					ctx := common.SetError(r.Context(), tt.contextError)
					*r = *r.WithContext(ctx)
				},
			}

			middleware := ErrorMiddleware(handler)
			req := httptest.NewRequest("GET", "/test", nil)
			rr := httptest.NewRecorder()

			middleware.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}

			env := decodeEnvelope(t, rr.Body.Bytes())
			if env.Success {
				t.Error("expected success=false on an error envelope")
			}
			if env.Error == nil || env.Error.Code != tt.expectedCode {
				t.Errorf("expected error code %s, got %+v", tt.expectedCode, env.Error)
			}
		})
	}
}

func TestErrorMiddleware_RequestContextErrors(t *testing.T) {
	tests := []struct {
		name           string
		setupContext   func() context.Context
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Cancelled context",
			setupContext: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			expectedStatus: http.StatusRequestTimeout,
			expectedCode:   "REQUEST_CANCELLED",
		},
		{
			name: "Deadline exceeded context",
			setupContext: func() context.Context {
				ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
				defer cancel()
				time.Sleep(1 * time.Millisecond)
				return ctx
			},
			expectedStatus: http.StatusRequestTimeout,
			expectedCode:   "REQUEST_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{action: func(w http.ResponseWriter, r *http.Request) {}}
			middleware := ErrorMiddleware(handler)

			req := httptest.NewRequest("GET", "/test", nil)
			req = req.WithContext(tt.setupContext())
			rr := httptest.NewRecorder()

			middleware.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			env := decodeEnvelope(t, rr.Body.Bytes())
			if env.Error == nil || env.Error.Code != tt.expectedCode {
				t.Errorf("expected error code %s, got %+v", tt.expectedCode, env.Error)
			}
		})
	}
}

func TestErrorMiddleware_HTTPStatusErrors(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		expectedStatus int
		expectedCode   string
	}{
		{name: "Bad Request status", statusCode: http.StatusBadRequest, expectedStatus: http.StatusBadRequest, expectedCode: "BAD_REQUEST"},
		{name: "Unauthorized status", statusCode: http.StatusUnauthorized, expectedStatus: http.StatusUnauthorized, expectedCode: "UNAUTHORIZED"},
		{name: "Forbidden status", statusCode: http.StatusForbidden, expectedStatus: http.StatusForbidden, expectedCode: "FORBIDDEN"},
		{name: "Not Found status", statusCode: http.StatusNotFound, expectedStatus: http.StatusNotFound, expectedCode: "NOT_FOUND"},
		{name: "Conflict status", statusCode: http.StatusConflict, expectedStatus: http.StatusConflict, expectedCode: "CONFLICT"},
		{name: "Custom 4xx status", statusCode: http.StatusTeapot, expectedStatus: http.StatusTeapot, expectedCode: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{
				action: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.statusCode)
				},
			}

			middleware := ErrorMiddleware(handler)
			req := httptest.NewRequest("GET", "/test", nil)
			rr := httptest.NewRecorder()

			middleware.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestErrorMiddleware_HTTPProtocolSafety(t *testing.T) {
	t.Run("Prevents multiple header writes", func(t *testing.T) {
		handler := &mockHandler{
			action: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"data": "test"}`))
			},
		}

		middleware := ErrorMiddleware(handler)
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()

		middleware.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}
	})

	t.Run("Handles successful response", func(t *testing.T) {
		handler := &mockHandler{
			action: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"message": "success"})
			},
		}

		middleware := ErrorMiddleware(handler)
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()

		middleware.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}
	})
}

func TestErrorMiddleware_ErrorPrecedence(t *testing.T) {
	t.Run("Context error takes precedence over status error", func(t *testing.T) {
		contextErr := common.NewAPIError(http.StatusBadRequest, "CONTEXT_ERROR", "context error message")

		handler := &mockHandler{
			action: func(w http.ResponseWriter, r *http.Request) {
				ctx := common.SetError(r.Context(), contextErr)
				*r = *r.WithContext(ctx)
			},
		}

		middleware := ErrorMiddleware(handler)
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()

		middleware.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 (from context), got %d", rr.Code)
		}

		env := decodeEnvelope(t, rr.Body.Bytes())
		if env.Error == nil || env.Error.Code != "CONTEXT_ERROR" {
			t.Errorf("expected CONTEXT_ERROR, got %+v", env.Error)
		}
	})
}

func TestContextualErrorMiddleware_BackwardCompatibility(t *testing.T) {
	t.Run("ContextualErrorMiddleware uses ErrorMiddleware", func(t *testing.T) {
		handler := &mockHandler{
			action: func(w http.ResponseWriter, r *http.Request) {
				ctx := common.SetError(r.Context(), common.ErrUnauthorizedAPI)
				*r = *r.WithContext(ctx)
			},
		}

		middleware := ContextualErrorMiddleware(handler)
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()

		middleware.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rr.Code)
		}

		env := decodeEnvelope(t, rr.Body.Bytes())
		if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %+v", env.Error)
		}
	})
}

func TestErrorResponseWriter_Implementation(t *testing.T) {
	t.Run("Tracks status code correctly", func(t *testing.T) {
		rw := &errorResponseWriter{
			ResponseWriter: httptest.NewRecorder(),
			statusCode:     http.StatusOK,
			headerWritten:  false,
		}

		rw.WriteHeader(http.StatusNotFound)
		if rw.statusCode != http.StatusNotFound {
			t.Errorf("expected status code 404, got %d", rw.statusCode)
		}
		if !rw.headerWritten {
			t.Error("expected headerWritten to be true")
		}
	})

	t.Run("Write sets header if not already written", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := &errorResponseWriter{ResponseWriter: recorder, statusCode: http.StatusOK, headerWritten: false}

		data := []byte("test data")
		n, err := rw.Write(data)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if n != len(data) {
			t.Errorf("expected to write %d bytes, wrote %d", len(data), n)
		}
		if !rw.headerWritten {
			t.Error("expected headerWritten to be true after Write")
		}
		if recorder.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", recorder.Code)
		}
	})

	t.Run("writeErrorResponse only writes if header not written", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := &errorResponseWriter{ResponseWriter: recorder, statusCode: http.StatusOK, headerWritten: false}

		apiErr := common.NewAPIError(http.StatusBadRequest, "TEST_ERROR", "test error message")
		rw.writeErrorResponse(apiErr)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", recorder.Code)
		}

		apiErr2 := common.NewAPIError(http.StatusInternalServerError, "IGNORED", "should be ignored")
		rw.writeErrorResponse(apiErr2)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected status to remain 400, got %d", recorder.Code)
		}
	})
}

type testError struct {
	message string
}

func (e *testError) Error() string {
	return e.message
}

func BenchmarkErrorMiddleware_SuccessPath(b *testing.B) {
	handler := &mockHandler{
		action: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status": "ok"}`))
		},
	}

	middleware := ErrorMiddleware(handler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()
		middleware.ServeHTTP(rr, req)
	}
}

func BenchmarkErrorMiddleware_ContextError(b *testing.B) {
	handler := &mockHandler{
		action: func(w http.ResponseWriter, r *http.Request) {
			ctx := common.SetError(r.Context(), common.ErrUnauthorizedAPI)
			*r = *r.WithContext(ctx)
		},
	}

	middleware := ErrorMiddleware(handler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()
		middleware.ServeHTTP(rr, req)
	}
}

func BenchmarkErrorMiddleware_StatusError(b *testing.B) {
	handler := &mockHandler{
		action: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		},
	}

	middleware := ErrorMiddleware(handler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()
		middleware.ServeHTTP(rr, req)
	}
}
