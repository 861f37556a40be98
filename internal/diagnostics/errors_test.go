package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestNewError_FormatsTemplate(t *testing.T) {
	err := NewError(ErrQ001, "com.example.Missing", "parent", "com.example.Missing")
	if err.Error() != "[Q001] invalid parent class: com.example.Missing" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Subject != "com.example.Missing" {
		t.Errorf("Subject = %q", err.Subject)
	}
}

func TestDiagnosticError_IsAndCodeOf(t *testing.T) {
	err := fmt.Errorf("running query: %w", NewError(ErrQ002, "LOOK", "command", "LOOK"))

	if !errors.Is(err, &DiagnosticError{Code: ErrQ002}) {
		t.Error("expected errors.Is to match by code")
	}
	if errors.Is(err, &DiagnosticError{Code: ErrQ003}) {
		t.Error("expected errors.Is not to match a different code")
	}
	if CodeOf(err) != ErrQ002 {
		t.Errorf("CodeOf = %q, want Q002", CodeOf(err))
	}
	if CodeOf(io.EOF) != "" {
		t.Error("plain errors carry no code")
	}
}

func TestWrap_Unwraps(t *testing.T) {
	err := Wrap(ErrC001, "proto", io.ErrUnexpectedEOF, "proto", "api.proto")
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected cause to be reachable")
	}
	if !HasCode(err, ErrC001) {
		t.Error("expected C001")
	}
}

func TestErrorCode_Kind(t *testing.T) {
	kinds := map[ErrorCode]string{
		ErrQ001: "NameResolution",
		ErrQ002: "InvalidCommandToken",
		ErrQ003: "MalformedQuery",
		ErrQ004: "TypeMismatch",
		ErrorCode("Z999"): "Unknown",
	}
	for code, want := range kinds {
		if got := code.Kind(); got != want {
			t.Errorf("%s.Kind() = %q, want %q", code, got, want)
		}
	}
}
