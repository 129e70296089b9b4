package common

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the standard response shape for every /v1 route (§4.1).
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
	Meta       *Meta       `json:"meta"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Meta struct {
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"requestId"`
	APIVersion string    `json:"apiVersion"`
	RateLimit *RateLimit `json:"rateLimit,omitempty"`
}

type RateLimit struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
	ResetUnix int64 `json:"reset"`
}

type Pagination struct {
	Page     int  `json:"page"`
	Limit    int  `json:"limit"`
	Total    int  `json:"total"`
	Pages    int  `json:"pages"`
	HasMore  bool `json:"hasMore"`
	NextPage *int `json:"nextPage,omitempty"`
	PrevPage *int `json:"prevPage,omitempty"`
}

const APIVersion = "v1"

func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	p := &Pagination{Page: page, Limit: limit, Total: total, Pages: pages, HasMore: page < pages}
	if p.HasMore {
		n := page + 1
		p.NextPage = &n
	}
	if page > 1 {
		pv := page - 1
		p.PrevPage = &pv
	}
	return p
}

func newMeta(ctx requestMetaSource) *Meta {
	return &Meta{
		Timestamp:  time.Now().UTC(),
		RequestID:  ctx.RequestID(),
		APIVersion: APIVersion,
	}
}

// requestMetaSource decouples response-writing from net/http.Request so
// handlers and middleware share one envelope implementation.
type requestMetaSource interface {
	RequestID() string
}

type requestIDString string

func (r requestIDString) RequestID() string { return string(r) }

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func WriteSuccess(w http.ResponseWriter, requestID string, status int, data interface{}) {
	WriteJSON(w, status, Envelope{
		Success: true,
		Data:    data,
		Meta:    newMeta(requestIDString(requestID)),
	})
}

func WriteSuccessPaginated(w http.ResponseWriter, requestID string, data interface{}, pagination *Pagination) {
	WriteJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Meta:       newMeta(requestIDString(requestID)),
		Pagination: pagination,
	})
}

func WriteErrorEnvelope(w http.ResponseWriter, requestID string, apiErr *APIError) {
	WriteJSON(w, apiErr.StatusCode, Envelope{
		Success: false,
		Error:   apiErr,
		Meta:    newMeta(requestIDString(requestID)),
	})
}
