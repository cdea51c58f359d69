package errors

import (
	"errors"
	"testing"
)

func TestAppError_ErrorMessage(t *testing.T) {
	e := New(CodeValidationError, "bad input")
	if e.Error() != "bad input" {
		t.Errorf("expected 'bad input', got %q", e.Error())
	}
}

func TestAppError_ErrorMessageWithCause(t *testing.T) {
	cause := errors.New("disk full")
	e := &AppError{Code: CodeDatabaseError, Message: "write failed", Cause: cause}
	if e.Error() != "write failed: disk full" {
		t.Errorf("unexpected message: %q", e.Error())
	}
	if !errors.Is(e, cause) && e.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestWrap_PreservesAppErrorCode(t *testing.T) {
	original := ConfigInvalid("missing input dir")
	wrapped := Wrap(original, "loading configuration")
	appErr, ok := wrapped.(*AppError)
	if !ok {
		t.Fatal("expected Wrap to return an *AppError")
	}
	if appErr.Code != CodeConfigInvalid {
		t.Errorf("expected code to carry through, got %s", appErr.Code)
	}
}

func TestWrap_NilIsNil(t *testing.T) {
	if Wrap(nil, "whatever") != nil {
		t.Error("expected Wrap(nil) to return nil")
	}
}

func TestHalt_CarriesStageAndCause(t *testing.T) {
	cause := errors.New("negative flow reading")
	h := Halt("s1d_physics", cause)
	if h.Code != CodeHalt {
		t.Errorf("expected halt code, got %s", h.Code)
	}
	if h.Cause != cause {
		t.Error("expected cause to be preserved")
	}
}

func TestProgrammerError_Code(t *testing.T) {
	p := ProgrammerError(errors.New("non-monotonic input"))
	if p.Code != CodeProgrammerError {
		t.Errorf("expected programmer error code, got %s", p.Code)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(New(CodeNotFound, "missing")) {
		t.Error("expected IsAppError true for an AppError")
	}
	if IsAppError(errors.New("plain error")) {
		t.Error("expected IsAppError false for a plain error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeUnauthorized, "no")); got != CodeUnauthorized {
		t.Errorf("expected %s, got %s", CodeUnauthorized, got)
	}
	if got := GetCode(errors.New("plain")); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}
