package resilience

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func TestIsTransient_ExplicitTransientError(t *testing.T) {
	err := NewTransientError(errors.New("server overloaded"), 503)
	if !IsTransient(err) {
		t.Error("expected TransientError to be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	inner := NewTransientError(errors.New("rate limited"), 429)
	wrapped := fmt.Errorf("api call failed: %w", inner)
	if !IsTransient(wrapped) {
		t.Error("expected wrapped TransientError to be transient")
	}
}

func TestIsTransient_NilError(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}

func TestIsTransient_RegularError(t *testing.T) {
	err := errors.New("invalid input: missing field")
	if IsTransient(err) {
		t.Error("regular error should not be transient")
	}
}

func TestIsTransient_ConnectionReset(t *testing.T) {
	err := fmt.Errorf("write tcp: %w", syscall.ECONNRESET)
	if !IsTransient(err) {
		t.Error("ECONNRESET should be transient")
	}
}

func TestIsTransient_ConnectionRefused(t *testing.T) {
	err := fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)
	if !IsTransient(err) {
		t.Error("ECONNREFUSED should be transient")
	}
}

func TestIsTransient_NetworkTimeout(t *testing.T) {
	err := &net.DNSError{IsTimeout: true, Err: "timeout"}
	if !IsTransient(err) {
		t.Error("network timeout should be transient")
	}
}

func TestIsTransient_StringPatterns(t *testing.T) {
	patterns := []string{
		"connection reset by peer",
		"broken pipe",
		"TLS handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	}
	for _, p := range patterns {
		err := errors.New(p)
		if !IsTransient(err) {
			t.Errorf("expected %q to be transient", p)
		}
	}
}

func TestRetryableStatus(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, code := range retryable {
		if !RetryableStatus(code) {
			t.Errorf("expected HTTP %d to be retryable", code)
		}
	}

	permanent := []int{200, 201, 400, 401, 403, 404, 405, 408, 409, 422}
	for _, code := range permanent {
		if RetryableStatus(code) {
			t.Errorf("expected HTTP %d to NOT be retryable", code)
		}
	}
}

func TestParseRetryAfter_Seconds(t *testing.T) {
	d, ok := ParseRetryAfter("15")
	if !ok {
		t.Fatal("expected seconds form to parse")
	}
	if d != 15*time.Second {
		t.Errorf("expected 15s, got %v", d)
	}
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	at := time.Now().Add(30 * time.Second).UTC()
	d, ok := ParseRetryAfter(at.Format(http.TimeFormat))
	if !ok {
		t.Fatal("expected HTTP-date form to parse")
	}
	if d <= 0 || d > 31*time.Second {
		t.Errorf("expected duration near 30s, got %v", d)
	}
}

func TestParseRetryAfter_PastDateClampsToZero(t *testing.T) {
	at := time.Now().Add(-time.Hour).UTC()
	d, ok := ParseRetryAfter(at.Format(http.TimeFormat))
	if !ok {
		t.Fatal("expected past HTTP-date to parse")
	}
	if d != 0 {
		t.Errorf("expected 0 for past date, got %v", d)
	}
}

func TestParseRetryAfter_Invalid(t *testing.T) {
	for _, v := range []string{"", "soon", "-5"} {
		if _, ok := ParseRetryAfter(v); ok {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestRetryAfterHint_FoundThroughChain(t *testing.T) {
	te := &TransientError{Err: errors.New("throttled"), StatusCode: 429, RetryAfter: 7 * time.Second}
	wrapped := fmt.Errorf("request failed: %w", te)

	hint, ok := RetryAfterHint(wrapped)
	if !ok {
		t.Fatal("expected hint to be found through wrap chain")
	}
	if hint != 7*time.Second {
		t.Errorf("expected 7s, got %v", hint)
	}
}

func TestRetryAfterHint_AbsentWhenZero(t *testing.T) {
	te := NewTransientError(errors.New("flaky"), 500)
	if _, ok := RetryAfterHint(te); ok {
		t.Error("expected no hint for zero RetryAfter")
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError(inner, 500)

	if !errors.Is(te, inner) {
		t.Error("TransientError.Unwrap should return the inner error")
	}

	if te.StatusCode != 500 {
		t.Errorf("expected StatusCode 500, got %d", te.StatusCode)
	}
}

func TestTransientError_ErrorMessage(t *testing.T) {
	inner := errors.New("something went wrong")
	te := NewTransientError(inner, 503)

	if te.Error() != "something went wrong" {
		t.Errorf("expected error message %q, got %q", inner.Error(), te.Error())
	}
}
