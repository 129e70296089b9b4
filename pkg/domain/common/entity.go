package common

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is embedded by every persisted NexusPay record. ProjectID is the
// tenancy boundary: every row below a Project carries the owning project's ID
// so repositories can scope queries without joining through parent chains.
type BaseEntity struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	ProjectID uuid.UUID `json:"projectId,omitempty" bson:"project_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type Entity interface {
	GetID() uuid.UUID
}

func (b BaseEntity) GetID() uuid.UUID {
	return b.ID
}

// NewEntity stamps a fresh ID and timestamps for an entity scoped to projectID.
// projectID is uuid.Nil for entities with no project owner (User, Project itself).
func NewEntity(projectID uuid.UUID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        uuid.New(),
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes UpdatedAt; callers set it after mutating fields in place.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
