package clierr

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		wantMsg string
	}{
		{
			name:    "simple error message",
			err:     New(Validation, "invalid input", nil),
			wantMsg: "invalid input",
		},
		{
			name:    "error with underlying error",
			err:     New(Network, "sync failed", errors.New("network timeout")),
			wantMsg: "sync failed",
		},
		{
			name:    "empty message",
			err:     New(Internal, "", nil),
			wantMsg: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}

func TestError_UnwrapChain(t *testing.T) {
	wrappedErr := errors.New("wrapped: root cause")
	cliErr := New(Internal, "cli error", wrappedErr)

	if !errors.Is(cliErr, wrappedErr) {
		t.Error("errors.Is should find wrapped error")
	}

	if unwrapped := cliErr.Unwrap(); unwrapped != wrappedErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, wrappedErr)
	}
}

func TestError_NilUnderlying(t *testing.T) {
	err := New(Auth, "not logged in", nil)
	if got := err.Unwrap(); got != nil {
		t.Errorf("Unwrap() with nil underlying = %v, want nil", got)
	}
}

func TestError_Types(t *testing.T) {
	types := []Type{Validation, NotFound, Auth, Network, Internal}
	expected := []string{"validation", "not_found", "auth", "network", "internal"}

	for i, typ := range types {
		if string(typ) != expected[i] {
			t.Errorf("Type constant = %v, want %v", typ, expected[i])
		}
	}
}

func TestError_ErrorsIsAs(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	cliErr := New(Network, "request failed", underlyingErr)

	if !errors.Is(cliErr, underlyingErr) {
		t.Error("errors.Is should find underlying error")
	}

	var target *Error
	if !errors.As(cliErr, &target) {
		t.Error("errors.As should find Error type")
	}
	if target.Type != Network {
		t.Errorf("errors.As Type = %v, want %v", target.Type, Network)
	}
}
