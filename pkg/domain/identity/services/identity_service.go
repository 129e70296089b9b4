package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	common "github.com/nexuspay/nexuspay/pkg/domain/common"
	"github.com/nexuspay/nexuspay/pkg/domain/identity/entities"
	in "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/in"
	out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
)

var emailShapeRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type IdentityService struct {
	users          out.UserRepository
	hasher         out.PasswordHasher
	sessions       out.SessionIssuer
	emailValidator out.EmailValidator
	emailSender    out.EmailSender
}

func NewIdentityService(users out.UserRepository, hasher out.PasswordHasher, sessions out.SessionIssuer, emailValidator out.EmailValidator, emailSender out.EmailSender) *IdentityService {
	return &IdentityService{users: users, hasher: hasher, sessions: sessions, emailValidator: emailValidator, emailSender: emailSender}
}

var _ in.IdentityCommand = (*IdentityService)(nil)

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// validatePasswordComplexity enforces ≥8 chars, upper+lower+digit+symbol (§4.2).
func validatePasswordComplexity(pw string) error {
	if len(pw) < 8 {
		return common.NewErrInvalidInput("password must be at least 8 characters", "password")
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return common.NewErrInvalidInput("password must contain upper, lower, digit and symbol characters", "password")
	}
	return nil
}

func (s *IdentityService) Register(ctx context.Context, input in.RegisterInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailShapeRE.MatchString(email) {
		return nil, common.NewErrInvalidInput("invalid email address", "email")
	}
	if s.emailValidator != nil {
		ok, err := s.emailValidator.IsValidDeliverable(ctx, email)
		if err != nil {
			slog.WarnContext(ctx, "email validator failed, proceeding without verdict", "error", err)
		} else if !ok {
			return nil, common.NewErrInvalidInput("email address is not deliverable or is disposable", "email")
		}
	}
	if err := validatePasswordComplexity(input.Password); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(input.Name)) < 2 {
		return nil, common.NewErrInvalidInput("name must be at least 2 characters", "name")
	}

	if existing, _ := s.users.FindByEmail(ctx, email); existing != nil {
		return nil, common.NewErrAlreadyExists(common.ResourceTypeUser, "email", email)
	}

	hash, err := s.hasher.HashPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	user := entities.NewUser(email, strings.TrimSpace(input.Name))
	user.PasswordHash = hash
	user.Company = input.Company
	user.EmailVerified = false
	user.VerificationToken = token
	user.VerificationExpires = time.Now().UTC().Add(entities.VerificationTTL)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendVerification(ctx, user.Email, token); err != nil {
			slog.ErrorContext(ctx, "failed to send verification email", "error", err, "user_id", user.ID)
		}
	}

	return user, nil
}

func (s *IdentityService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil || time.Now().UTC().After(user.VerificationExpires) {
		return common.NewErrInvalidInput("verification token is invalid or expired", "token")
	}

	user.EmailVerified = true
	user.VerificationToken = ""
	user.VerificationExpires = time.Time{}
	user.Touch()
	return s.users.Update(ctx, user)
}

func (s *IdentityService) Login(ctx context.Context, input in.LoginInput) (*in.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.NewErrUnauthorized("invalid email or password")
	}

	now := time.Now().UTC()
	if user.IsLocked(now) {
		return nil, common.NewErrForbidden("account is locked due to repeated failed login attempts")
	}

	if user.PasswordHash == "" {
		return nil, common.NewErrUnauthorized("this account uses OAuth sign-in")
	}

	if err := s.hasher.ComparePassword(ctx, user.PasswordHash, input.Password); err != nil {
		user.RegisterFailedLogin(now)
		user.Touch()
		_ = s.users.Update(ctx, user)
		return nil, common.NewErrUnauthorized("invalid email or password")
	}

	user.RegisterSuccessfulLogin(now)
	user.Touch()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	return &in.LoginResult{Token: token, User: user}, nil
}

// OAuthSignIn links by OAuthID first, then by email; OAuth-supplied emails
// are trusted and auto-verified (§4.2).
func (s *IdentityService) OAuthSignIn(ctx context.Context, input in.OAuthSignInInput) (*in.LoginResult, error) {
	user, err := s.users.FindByOAuthID(ctx, input.Provider, input.OAuthID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		email := strings.ToLower(strings.TrimSpace(input.Email))
		user, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if user == nil {
		user = entities.NewUser(strings.ToLower(input.Email), input.Name)
		user.OAuthID = input.OAuthID
		user.OAuthProvider = input.Provider
		user.EmailVerified = true
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		if user.OAuthID == "" {
			user.OAuthID = input.OAuthID
			user.OAuthProvider = input.Provider
		}
		user.EmailVerified = true
		user.RegisterSuccessfulLogin(now)
		user.Touch()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &in.LoginResult{Token: token, User: user}, nil
}

func (s *IdentityService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		// Do not leak account existence; succeed silently.
		return nil
	}

	token, err := generateToken()
	if err != nil {
		return err
	}
	user.ResetToken = token
	user.ResetExpires = time.Now().UTC().Add(entities.PasswordResetTTL)
	user.Touch()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordReset(ctx, user.Email, token); err != nil {
			slog.ErrorContext(ctx, "failed to send password reset email", "error", err, "user_id", user.ID)
		}
	}
	return nil
}

func (s *IdentityService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil || time.Now().UTC().After(user.ResetExpires) {
		return common.NewErrInvalidInput("reset token is invalid or expired", "token")
	}
	if err := validatePasswordComplexity(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.HashPassword(ctx, newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetExpires = time.Time{}
	user.LoginAttempts = 0
	user.LockedUntil = time.Time{}
	user.Touch()
	return s.users.Update(ctx, user)
}

func (s *IdentityService) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeUser, "id", userID)
	}
	return user, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, company string) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeUser, "id", userID)
	}
	if strings.TrimSpace(name) != "" {
		user.Name = strings.TrimSpace(name)
	}
	user.Company = company
	user.Touch()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
