package nexuspay_controllers

import "testing"

func TestValidateCreateKeyBody_AcceptsWellFormedRequest(t *testing.T) {
	body := []byte(`{"name":"server key","type":"production","permissions":["wallets:read","paymaster:read"],"ipAllowlist":[{"ipOrCidr":"10.0.0.0/8"}]}`)
	if err := validateCreateKeyBody(body); err != nil {
		t.Fatalf("expected a well-formed body to validate, got %v", err)
	}
}

func TestValidateCreateKeyBody_RejectsUnknownPermission(t *testing.T) {
	body := []byte(`{"name":"server key","type":"production","permissions":["wallets:nuke"]}`)
	if err := validateCreateKeyBody(body); err == nil {
		t.Fatalf("expected an unknown permission to be rejected")
	}
}

func TestValidateCreateKeyBody_RejectsMissingType(t *testing.T) {
	body := []byte(`{"name":"server key"}`)
	if err := validateCreateKeyBody(body); err == nil {
		t.Fatalf("expected a missing required field to be rejected")
	}
}

func TestValidateCreateKeyBody_RejectsEmptyAllowlistEntry(t *testing.T) {
	body := []byte(`{"name":"server key","type":"dev","ipAllowlist":[{"ipOrCidr":""}]}`)
	if err := validateCreateKeyBody(body); err == nil {
		t.Fatalf("expected an empty ipOrCidr to be rejected")
	}
}
