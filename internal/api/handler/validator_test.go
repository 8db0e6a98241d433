package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/sosalert/sos-service/internal/core/domain"
)

func TestValidator_SOSRequest(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&sosRequest{Latitude: "12.9", Longitude: "77.6"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	err := v.Validate(&sosRequest{Latitude: "12.9"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "longitude is required") {
		t.Fatalf("expected json field name in message, got %q", err.Error())
	}
}

func TestValidator_RegisterForm(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerForm{Username: "alice"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, want := range []string{"password is required", "contact is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}
