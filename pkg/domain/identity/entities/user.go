package entities

import (
	"time"

	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// MaxLoginAttempts before lockout; LockoutDuration is the resulting freeze.
const (
	MaxLoginAttempts = 5
	LockoutDuration  = 2 * time.Hour
	VerificationTTL  = 24 * time.Hour
	PasswordResetTTL = 1 * time.Hour
)

// User is spec.md §3's User. At least one of PasswordHash or OAuthID is set;
// an OAuth sign-in that matches a password account by email sets both.
type User struct {
	common.BaseEntity `bson:",inline"`

	Email         string `bson:"email"`
	PasswordHash  string `bson:"password_hash,omitempty"`
	OAuthID       string `bson:"oauth_id,omitempty"`
	OAuthProvider string `bson:"oauth_provider,omitempty"`
	Name          string `bson:"name"`
	Company       string `bson:"company,omitempty"`

	EmailVerified       bool      `bson:"email_verified"`
	VerificationToken   string    `bson:"verification_token,omitempty"`
	VerificationExpires time.Time `bson:"verification_expires,omitempty"`

	ResetToken   string    `bson:"reset_token,omitempty"`
	ResetExpires time.Time `bson:"reset_expires,omitempty"`

	LastLogin     time.Time `bson:"last_login,omitempty"`
	LoginAttempts int       `bson:"login_attempts"`
	LockedUntil   time.Time `bson:"locked_until,omitempty"`

	Status UserStatus `bson:"status"`
}

func NewUser(email, name string) *User {
	base := common.NewEntity(uuid.Nil)
	return &User{
		BaseEntity: base,
		Email:      email,
		Name:       name,
		Status:     UserStatusActive,
	}
}

func (u *User) IsLocked(now time.Time) bool {
	return !u.LockedUntil.IsZero() && u.LockedUntil.After(now)
}

// RegisterFailedLogin increments the counter and locks the account on the
// 5th consecutive failure (§4.2, boundary test in §8).
func (u *User) RegisterFailedLogin(now time.Time) {
	u.LoginAttempts++
	if u.LoginAttempts >= MaxLoginAttempts {
		u.LockedUntil = now.Add(LockoutDuration)
	}
}

func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.LoginAttempts = 0
	u.LockedUntil = time.Time{}
	u.LastLogin = now
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
