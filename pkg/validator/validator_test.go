package validator

import "testing"

type grantPayload struct {
	ResourceKey string `json:"resource_key" validate:"required,resourcekey"`
	Scope       string `json:"scope" validate:"required,oneof=user role tenant"`
}

func TestValidateStructAcceptsValidPayload(t *testing.T) {
	err := ValidateStruct(grantPayload{ResourceKey: "leads.view", Scope: "user"})
	if err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidateStructRejectsBadResourceKey(t *testing.T) {
	err := ValidateStruct(grantPayload{ResourceKey: "Leads..View", Scope: "user"})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(failures) != 1 || failures[0].Field != "resource_key" {
		t.Fatalf("unexpected failures: %v", failures)
	}
}

func TestValidateStructRejectsUnknownScope(t *testing.T) {
	err := ValidateStruct(grantPayload{ResourceKey: "deals.edit", Scope: "galaxy"})
	if err == nil {
		t.Fatal("expected validation failure for scope")
	}
}
