package email

import (
	"context"
	"fmt"
	"log/slog"

	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
)

// IdentitySMTPEmailSender implements identity_out.EmailSender using the same
// SMTPConfig/sendEmail plumbing as SMTPEmailSender, with the account-lifecycle
// method shapes identity needs (verify/reset/invite) rather than auth's
// MFA-code flow.
type IdentitySMTPEmailSender struct {
	config SMTPConfig
}

func NewIdentitySMTPEmailSender(config SMTPConfig) identity_out.EmailSender {
	return &IdentitySMTPEmailSender{config: config}
}

func (s *IdentitySMTPEmailSender) SendVerification(ctx context.Context, toEmail, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.config.AppURL, token)
	subject := fmt.Sprintf("Verify your email for %s", s.config.AppName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #1a1a2e;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Verify your email address</h2>
        <p>Confirm this address to activate your %s account.</p>
        <p style="text-align: center;">
            <a href="%s" style="display: inline-block; background: #2f6fed; color: #fff; padding: 14px 28px; text-decoration: none; font-weight: bold;">Verify Email</a>
        </p>
        <p>If you didn't create this account, you can ignore this email.</p>
        <p style="color: #888; font-size: 12px;">© %s. All rights reserved.</p>
    </div>
</body>
</html>
`, s.config.AppName, verifyURL, s.config.AppName)

	return (&SMTPEmailSender{config: s.config}).sendEmail(ctx, toEmail, subject, body)
}

func (s *IdentitySMTPEmailSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.AppURL, token)
	subject := fmt.Sprintf("Reset your password for %s", s.config.AppName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #1a1a2e;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Reset your password</h2>
        <p>We received a request to reset the password on your %s account.</p>
        <p style="text-align: center;">
            <a href="%s" style="display: inline-block; background: #2f6fed; color: #fff; padding: 14px 28px; text-decoration: none; font-weight: bold;">Reset Password</a>
        </p>
        <p>If you didn't request this, your password is unchanged and you can ignore this email.</p>
        <p style="color: #888; font-size: 12px;">© %s. All rights reserved.</p>
    </div>
</body>
</html>
`, s.config.AppName, resetURL, s.config.AppName)

	return (&SMTPEmailSender{config: s.config}).sendEmail(ctx, toEmail, subject, body)
}

func (s *IdentitySMTPEmailSender) SendProjectInvite(ctx context.Context, toEmail, projectName, inviteToken string) error {
	inviteURL := fmt.Sprintf("%s/accept-invite?token=%s", s.config.AppURL, inviteToken)
	subject := fmt.Sprintf("You've been invited to %s on %s", projectName, s.config.AppName)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #1a1a2e;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>You've been invited to %s</h2>
        <p>Join your team's project on %s.</p>
        <p style="text-align: center;">
            <a href="%s" style="display: inline-block; background: #2f6fed; color: #fff; padding: 14px 28px; text-decoration: none; font-weight: bold;">Accept Invite</a>
        </p>
        <p style="color: #888; font-size: 12px;">© %s. All rights reserved.</p>
    </div>
</body>
</html>
`, projectName, s.config.AppName, inviteURL, s.config.AppName)

	return (&SMTPEmailSender{config: s.config}).sendEmail(ctx, toEmail, subject, body)
}

// NoopIdentityEmailSender logs instead of sending, for local/dev environments.
type NoopIdentityEmailSender struct {
	LogEmails bool
}

func NewNoopIdentityEmailSender(logEmails bool) identity_out.EmailSender {
	return &NoopIdentityEmailSender{LogEmails: logEmails}
}

func (s *NoopIdentityEmailSender) SendVerification(ctx context.Context, toEmail, token string) error {
	if s.LogEmails {
		slog.InfoContext(ctx, "[NOOP] verification email", "to", toEmail, "token", token)
	}
	return nil
}

func (s *NoopIdentityEmailSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	if s.LogEmails {
		slog.InfoContext(ctx, "[NOOP] password reset email", "to", toEmail, "token", token)
	}
	return nil
}

func (s *NoopIdentityEmailSender) SendProjectInvite(ctx context.Context, toEmail, projectName, inviteToken string) error {
	if s.LogEmails {
		slog.InfoContext(ctx, "[NOOP] project invite email", "to", toEmail, "project", projectName, "token", inviteToken)
	}
	return nil
}

var (
	_ identity_out.EmailSender = (*IdentitySMTPEmailSender)(nil)
	_ identity_out.EmailSender = (*NoopIdentityEmailSender)(nil)
)
