package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDuplicateComponent(t *testing.T) {
	err := DuplicateComponent("cache")
	if err.Code != ErrCodeDuplicateComponent {
		t.Errorf("expected %s, got %s", ErrCodeDuplicateComponent, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected 409, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("duplicate registration must not be retryable")
	}
	if err.Details["component"] != "cache" {
		t.Errorf("expected component detail, got %v", err.Details)
	}
}

func TestNoTransactionsNotRetryable(t *testing.T) {
	err := NoTransactions("llm-api")
	if err.Retryable {
		t.Error("empty transaction history is a structural condition, not transient")
	}
	if err.Details["integration"] != "llm-api" {
		t.Errorf("expected integration detail, got %v", err.Details)
	}
}

func TestRetryableCodes(t *testing.T) {
	tests := []struct {
		err       *AppError
		retryable bool
	}{
		{ProviderFailure("db", nil), true},
		{ProviderTimeout("db"), true},
		{RecoveryFailed("db", "still down"), true},
		{UnknownComponent("db"), false},
		{DuplicateComponent("db"), false},
		{NoTransactions("db"), false},
	}
	for _, tt := range tests {
		if tt.err.Retryable != tt.retryable {
			t.Errorf("%s: expected retryable=%v", tt.err.Code, tt.retryable)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ProviderFailure("vector-store", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("sweep failed: %w", UnknownComponent("ui"))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed on wrapped error")
	}
	if appErr.Code != ErrCodeUnknownComponent {
		t.Errorf("expected %s, got %s", ErrCodeUnknownComponent, appErr.Code)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NoTransactions("x"))
	if !IsCode(err, ErrCodeNoTransactions) {
		t.Error("expected IsCode to match through wrapping")
	}
	if IsCode(err, ErrCodeNotFound) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(stderrors.New("plain"), ErrCodeNotFound) {
		t.Error("IsCode matched a non-AppError")
	}
}

func TestWithDetailAndCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(ErrCodeInternal, "something broke", http.StatusInternalServerError).
		WithCause(cause).
		WithDetail("component", "dashboard")

	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	if err.Details["component"] != "dashboard" {
		t.Error("expected detail to be set")
	}
}

func TestToResponseOmitsInternalFields(t *testing.T) {
	err := UnknownComponent("gone")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeUnknownComponent {
		t.Errorf("unexpected code %s", resp.Error.Code)
	}
	if resp.Error.Message == "" {
		t.Error("expected a message")
	}
}
