package email

import (
	"context"
	"net"
	"regexp"
	"strings"

	identity_out "github.com/nexuspay/nexuspay/pkg/domain/identity/ports/out"
)

var shapeRE = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// MXEmailValidator checks address shape and domain deliverability via MX/A
// lookup. No email-verification library appears anywhere in the example
// pack, so this is deliberately kept to net.LookupMX/net.LookupHost rather
// than reaching for a third-party API client with no pack precedent.
type MXEmailValidator struct{}

func NewMXEmailValidator() identity_out.EmailValidator {
	return &MXEmailValidator{}
}

func (v *MXEmailValidator) IsValidDeliverable(ctx context.Context, email string) (bool, error) {
	if !shapeRE.MatchString(email) {
		return false, nil
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]

	if mxRecords, err := net.DefaultResolver.LookupMX(ctx, domain); err == nil && len(mxRecords) > 0 {
		return true, nil
	}
	if _, err := net.DefaultResolver.LookupHost(ctx, domain); err == nil {
		return true, nil
	}
	return false, nil
}

var _ identity_out.EmailValidator = (*MXEmailValidator)(nil)
