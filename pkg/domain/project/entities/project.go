package entities

import (
	"regexp"
	"strconv"
	"strings"

	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	chain_vo "github.com/nexuspay/nexuspay/pkg/domain/chain/value-objects"
	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusActive  ProjectStatus = "active"
	ProjectStatusDeleted ProjectStatus = "deleted"
)

const (
	DefaultRateLimitPerMinute = 1000
	MinRateLimitPerMinute     = 100
	MaxRateLimitPerMinute     = 10000
)

type ProjectSettings struct {
	PaymasterEnabled   bool   `bson:"paymaster_enabled"`
	WebhookURL         string `bson:"webhook_url,omitempty"`
	RateLimitPerMinute int    `bson:"rate_limit_per_minute"`
}

// Project is spec.md §3's Project. Slug is globally unique and derived from
// Name; collisions are resolved by the caller appending "-2", "-3", ...
type Project struct {
	common.BaseEntity `bson:",inline"`

	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Website     string             `bson:"website,omitempty"`
	OwnerID     uuid.UUID          `bson:"owner_id"`
	Chains      []chain_vo.ChainID `bson:"chains"`
	Settings    ProjectSettings    `bson:"settings"`
	Status      ProjectStatus      `bson:"status"`
}

func NewProject(ownerID uuid.UUID, name string, chains []chain_vo.ChainID) *Project {
	base := common.NewEntity(uuid.Nil)
	p := &Project{
		BaseEntity: base,
		Name:       name,
		OwnerID:    ownerID,
		Chains:     chains,
		Settings: ProjectSettings{
			PaymasterEnabled:   true,
			RateLimitPerMinute: DefaultRateLimitPerMinute,
		},
		Status: ProjectStatusActive,
	}
	p.ProjectID = p.ID
	return p
}

func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}

var slugNonAlnumRE = regexp.MustCompile(`[^a-z0-9]+`)

// SlugBase lowercases Name, replaces runs of non-alphanumerics with a single
// "-", and trims leading/trailing dashes (§4.3). It does not resolve
// collisions — callers append -2, -3, ... via SlugWithSuffix.
func SlugBase(name string) string {
	lower := strings.ToLower(name)
	slug := slugNonAlnumRE.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

func SlugWithSuffix(base string, suffix int) string {
	if suffix <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(suffix)
}
