package common

import "fmt"

// Error types for type assertions. Kept as the teacher's errors.go does it:
// one small struct per kind, rather than a single error with a Kind field.
type ErrUnauthorized struct{ message string }

func (e *ErrUnauthorized) Error() string { return e.message }

type ErrForbidden struct{ message string }

func (e *ErrForbidden) Error() string { return e.message }

type ErrNotFound struct{ message string }

func (e *ErrNotFound) Error() string { return e.message }

type ErrAlreadyExists struct{ message string }

func (e *ErrAlreadyExists) Error() string { return e.message }

type ErrInvalidInput struct {
	message string
	Field   string
}

func (e *ErrInvalidInput) Error() string { return e.message }

type ErrBadRequest struct{ message string }

func (e *ErrBadRequest) Error() string { return e.message }

type ErrConflict struct{ message string }

func (e *ErrConflict) Error() string { return e.message }

type ErrRateLimited struct {
	message    string
	RetryAfter int
}

func (e *ErrRateLimited) Error() string { return e.message }

type ErrUpstream struct{ message string }

func (e *ErrUpstream) Error() string { return e.message }

// ErrPaymasterInsufficientFunds is the §4.6 hard-floor rejection — distinct
// from ErrUpstream because it's a policy decision, not a chain/oracle failure.
type ErrPaymasterInsufficientFunds struct{ message string }

func (e *ErrPaymasterInsufficientFunds) Error() string { return e.message }

func NewErrUnauthorized(messages ...string) error {
	msg := "authentication required"
	if len(messages) > 0 && messages[0] != "" {
		msg = messages[0]
	}
	return &ErrUnauthorized{message: msg}
}

func NewErrForbidden(messages ...string) error {
	msg := "forbidden"
	if len(messages) > 0 && messages[0] != "" {
		msg = messages[0]
	}
	return &ErrForbidden{message: msg}
}

func NewErrAlreadyExists(resourceType ResourceType, fieldName string, value interface{}) error {
	return &ErrAlreadyExists{message: fmt.Sprintf("%s with %s %v already exists", resourceType, fieldName, value)}
}

func NewErrNotFound(resourceType ResourceType, fieldName string, value interface{}) error {
	return &ErrNotFound{message: fmt.Sprintf("%s with %s %v not found", resourceType, fieldName, value)}
}

func NewErrInvalidInput(message string, field ...string) error {
	e := &ErrInvalidInput{message: message}
	if len(field) > 0 {
		e.Field = field[0]
	}
	return e
}

func NewErrBadRequest(message string) error {
	return &ErrBadRequest{message: message}
}

func NewErrConflict(message string) error {
	return &ErrConflict{message: message}
}

func NewErrRateLimited(message string, retryAfterSec int) error {
	return &ErrRateLimited{message: message, RetryAfter: retryAfterSec}
}

func NewErrUpstream(message string) error {
	return &ErrUpstream{message: message}
}

func NewErrPaymasterInsufficientFunds() error {
	return &ErrPaymasterInsufficientFunds{message: "paymaster balance below hard floor, sponsorship rejected"}
}

func IsPaymasterInsufficientFundsError(err error) bool {
	_, ok := err.(*ErrPaymasterInsufficientFunds)
	return ok
}

func IsNotFoundError(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

func IsUnauthorizedError(err error) bool {
	_, ok := err.(*ErrUnauthorized)
	return ok
}

func IsForbiddenError(err error) bool {
	_, ok := err.(*ErrForbidden)
	return ok
}

func IsBadRequestError(err error) bool {
	_, ok := err.(*ErrBadRequest)
	return ok
}

func IsInvalidInputError(err error) bool {
	_, ok := err.(*ErrInvalidInput)
	return ok
}

func IsConflictError(err error) bool {
	_, ok := err.(*ErrConflict)
	return ok
}

func IsRateLimitedError(err error) bool {
	_, ok := err.(*ErrRateLimited)
	return ok
}

func IsUpstreamError(err error) bool {
	_, ok := err.(*ErrUpstream)
	return ok
}

type ResourceType string

const (
	ResourceTypeUser             ResourceType = "User"
	ResourceTypeProject          ResourceType = "Project"
	ResourceTypeProjectMember    ResourceType = "ProjectMember"
	ResourceTypeAPIKey           ResourceType = "APIKey"
	ResourceTypeWallet           ResourceType = "Wallet"
	ResourceTypeProjectPaymaster ResourceType = "ProjectPaymaster"
	ResourceTypePaymasterPayment ResourceType = "PaymasterPayment"
	ResourceTypeTransactionLog   ResourceType = "TransactionLog"
)
