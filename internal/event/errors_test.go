package event

import (
	"errors"
	"testing"
)

func TestCallbackError(t *testing.T) {
	underlyingErr := errors.New("something went wrong")
	err := &CallbackError{
		SubscriptionID: "sub-123",
		Event:          "Player.Jump",
		Err:            underlyingErr,
	}

	errStr := err.Error()
	if errStr != "callback error for subscription sub-123 on event Player.Jump: something went wrong" {
		t.Errorf("unexpected error string: %s", errStr)
	}

	if err.Unwrap() != underlyingErr {
		t.Error("Unwrap() should return the underlying error")
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is should match the underlying error")
	}
}

func TestPanicError(t *testing.T) {
	err := &PanicError{
		SubscriptionID: "sub-456",
		Event:          "Camera.Shake",
		Value:          "panic value",
		Stack:          "fake stack trace",
	}

	if errStr := err.Error(); errStr != "callback panic for subscription sub-456 on event Camera.Shake" {
		t.Errorf("unexpected error string: %s", errStr)
	}
	if !errors.Is(err, ErrCallbackPanic) {
		t.Error("errors.Is should match ErrCallbackPanic")
	}
	if errors.Is(err, ErrUnknownEvent) {
		t.Error("errors.Is should not match unrelated errors")
	}
}

func TestParamError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParamError
		expected string
	}{
		{
			name:     "duplicate",
			err:      &ParamError{Op: "add", Type: "int", Err: ErrDuplicateParameterType},
			expected: "params add int: duplicate parameter type",
		},
		{
			name:     "not found lists present types",
			err:      &ParamError{Op: "read", Type: "string", Present: []string{"float64", "int"}, Err: ErrParameterTypeNotFound},
			expected: "params read string: parameter type not found (present: [float64, int])",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
			if !errors.Is(tt.err, tt.err.Err) {
				t.Error("errors.Is should match the sentinel")
			}
		})
	}
}

func TestRegistrationError(t *testing.T) {
	err := &RegistrationError{ID: "Foo", Op: "create", Err: ErrDuplicateEventRegistration}

	if got := err.Error(); got != "registry create Foo: event already registered" {
		t.Errorf("unexpected error string: %s", got)
	}
	if !errors.Is(err, ErrDuplicateEventRegistration) {
		t.Error("errors.Is should match ErrDuplicateEventRegistration")
	}

	var regErr *RegistrationError
	if !errors.As(error(err), &regErr) || regErr.ID != "Foo" {
		t.Error("errors.As should extract the registration error")
	}
}
