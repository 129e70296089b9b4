package out

import "context"

// EmailValidator checks shape and deliverability/disposability — an external
// collaborator per spec.md §1 ("email validation... specified only by the
// interfaces the core needs").
type EmailValidator interface {
	IsValidDeliverable(ctx context.Context, email string) (bool, error)
}

// EmailSender delivers verification and password-reset links. External
// collaborator; the core only calls Send.
type EmailSender interface {
	SendVerification(ctx context.Context, toEmail, token string) error
	SendPasswordReset(ctx context.Context, toEmail, token string) error
	SendProjectInvite(ctx context.Context, toEmail, projectName, inviteToken string) error
}
