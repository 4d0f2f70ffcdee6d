package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("recipe", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should wrap ErrNotFound")
	}
	want := "recipe not found with id abc123"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("name", "the name field is empty")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() should wrap ErrValidation")
	}
	if err.Field != "name" {
		t.Errorf("Field = %q, want %q", err.Field, "name")
	}
	if err.Error() != "the name field is empty" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("recipe already favorited")

	if !errors.Is(err, ErrConflict) {
		t.Error("Conflict() should wrap ErrConflict")
	}
}

func TestForbidden(t *testing.T) {
	if !errors.Is(Forbidden("no"), ErrForbidden) {
		t.Error("Forbidden() should wrap ErrForbidden")
	}
}

func TestUnauthorized(t *testing.T) {
	if !errors.Is(Unauthorized("no token"), ErrUnauthorized) {
		t.Error("Unauthorized() should wrap ErrUnauthorized")
	}
}

// Wrapping an AppError with fmt.Errorf must keep the sentinel reachable,
// since handlers use errors.Is on the full chain.
func TestWrappedChain(t *testing.T) {
	inner := Conflict("duplicate subscription")
	wrapped := fmt.Errorf("subscribing: %w", inner)

	if !errors.Is(wrapped, ErrConflict) {
		t.Error("wrapped error lost ErrConflict")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Message != "duplicate subscription" {
		t.Errorf("Message = %q", appErr.Message)
	}
}
