package errors

import (
	stderrors "errors"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		code Code
		want ExitCode
	}{
		{CodeCfgNotFound, ExitConfig},
		{CodeCfgInvalid, ExitConfig},
		{CodeSecretNotFound, ExitConfig},
		{CodeServerNotFound, ExitConfig},
		{CodeImportInvalid, ExitConfig},
		{CodeSSHDialFailed, ExitConnect},
		{CodeSSHAuthFailed, ExitConnect},
		{CodeSSHHostKeyMismatch, ExitConnect},
		{CodeStorageReadFailed, ExitStorage},
		{CodeStorageWriteFailed, ExitStorage},
		{CodeFileIOFailed, ExitStorage},
		{CodeInternal, ExitInternal},
		{Code("UNKNOWN_CODE"), ExitInternal}, // unknown code
	}
	for _, tc := range cases {
		if got := ExitCodeFor(tc.code); got != tc.want {
			t.Errorf("ExitCodeFor(%s)=%d want %d", tc.code, got, tc.want)
		}
	}
}

func TestXError_Error(t *testing.T) {
	// Without cause
	xe := New(CodeCfgInvalid, "test message", nil)
	expected := "MINKE_CFG_INVALID: test message"
	if xe.Error() != expected {
		t.Errorf("Error()=%q, want %q", xe.Error(), expected)
	}

	// With cause
	cause := stderrors.New("underlying error")
	xe = Wrap(CodeStorageWriteFailed, "write failed", nil, cause)
	expected = "MINKE_STORAGE_WRITE_FAILED: write failed: underlying error"
	if xe.Error() != expected {
		t.Errorf("Error()=%q, want %q", xe.Error(), expected)
	}

	// Nil error
	var nilErr *XError
	if nilErr.Error() != "" {
		t.Errorf("nil XError.Error() should return empty string")
	}
}

func TestXError_Unwrap(t *testing.T) {
	cause := stderrors.New("cause")
	xe := Wrap(CodeStorageWriteFailed, "msg", nil, cause)
	if xe.Unwrap() != cause {
		t.Error("Unwrap should return cause")
	}
	if !stderrors.Is(xe, cause) {
		t.Error("errors.Is should see the cause")
	}

	xe2 := New(CodeCfgInvalid, "msg", nil)
	if xe2.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestXError_Details(t *testing.T) {
	details := map[string]any{"key": "value", "count": 42}
	xe := New(CodeCfgInvalid, "msg", details)
	if xe.Details["key"] != "value" {
		t.Error("Details should contain key")
	}
	if xe.Details["count"] != 42 {
		t.Error("Details should contain count")
	}
}

func TestAs(t *testing.T) {
	xe := New(CodeCfgInvalid, "test", nil)
	got, ok := As(xe)
	if !ok || got != xe {
		t.Error("As should return XError")
	}

	// Wrapped error
	wrapped := stderrors.Join(stderrors.New("prefix"), xe)
	got, ok = As(wrapped)
	if !ok || got != xe {
		t.Error("As should unwrap to find XError")
	}

	// Non-XError
	_, ok = As(stderrors.New("plain error"))
	if ok {
		t.Error("As should return false for non-XError")
	}
}

func TestAsOrWrap(t *testing.T) {
	xe := New(CodeImportInvalid, "bad file", nil)
	if got := AsOrWrap(xe); got != xe {
		t.Errorf("AsOrWrap should return the same XError, got %v", got)
	}

	plain := stderrors.New("boom")
	got := AsOrWrap(plain)
	if got.Code != CodeInternal {
		t.Errorf("code=%s want %s", got.Code, CodeInternal)
	}
	if !stderrors.Is(got, plain) {
		t.Error("wrapped error should keep its cause")
	}
}

func TestAllCodes(t *testing.T) {
	codes := AllCodes()
	if len(codes) != 12 {
		t.Errorf("AllCodes() should return 12 codes, got %d", len(codes))
	}

	// Check for duplicates
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("Duplicate code: %s", c)
		}
		seen[c] = true
	}
}

func TestHasCode(t *testing.T) {
	xe := Wrap(CodeStorageWriteFailed, "write failed", map[string]any{"store": "secret"}, stderrors.New("denied"))
	if !HasCode(xe, CodeStorageWriteFailed) {
		t.Error("HasCode should match the wrapped code")
	}
	if HasCode(xe, CodeImportInvalid) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(stderrors.New("plain"), CodeInternal) {
		t.Error("HasCode should be false for plain errors")
	}
	if HasCode(nil, CodeInternal) {
		t.Error("HasCode should be false for nil")
	}
}
