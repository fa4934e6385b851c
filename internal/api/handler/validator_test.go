package handler

import (
	"strings"
	"testing"
)

func TestValidator_StatusRequest(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&setStatusRequest{Status: "suspended"}); err != nil {
		t.Fatalf("valid status rejected: %v", err)
	}

	err := v.Validate(&setStatusRequest{})
	if err == nil {
		t.Fatal("empty status must fail required")
	}
	if !strings.Contains(err.Error(), "status is required") {
		t.Fatalf("unexpected message: %v", err)
	}

	err = v.Validate(&setStatusRequest{Status: "banned"})
	if err == nil {
		t.Fatal("unknown status must fail oneof")
	}
	if !strings.Contains(err.Error(), "status must be one of") {
		t.Fatalf("unexpected message: %v", err)
	}
}
