package ledger_entities

import (
	"time"

	"github.com/google/uuid"
)

// APIKeyUsage is append-only, written fire-and-forget after every API-key
// authenticated request (§4.1): failures to write are logged, never surfaced.
type APIKeyUsage struct {
	UsageID        uuid.UUID `bson:"_id"`
	APIKeyID       uuid.UUID `bson:"api_key_id"`
	ProjectID      uuid.UUID `bson:"project_id"`
	Endpoint       string    `bson:"endpoint"`
	Method         string    `bson:"method"`
	StatusCode     int       `bson:"status_code"`
	ResponseTimeMs int64     `bson:"response_time_ms"`
	IPAddress      string    `bson:"ip_address,omitempty"`
	UserAgent      string    `bson:"user_agent,omitempty"`
	RequestSize    int64     `bson:"request_size,omitempty"`
	ResponseSize   int64     `bson:"response_size,omitempty"`
	ErrorMessage   string    `bson:"error_message,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
}

func NewAPIKeyUsage(apiKeyID, projectID uuid.UUID, endpoint, method string, statusCode int, responseTimeMs int64, ipAddress, userAgent string) *APIKeyUsage {
	return &APIKeyUsage{
		UsageID:        uuid.New(),
		APIKeyID:       apiKeyID,
		ProjectID:      projectID,
		Endpoint:       endpoint,
		Method:         method,
		StatusCode:     statusCode,
		ResponseTimeMs: responseTimeMs,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		CreatedAt:      time.Now(),
	}
}
