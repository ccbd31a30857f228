package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindMatchesSentinel(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{Validation("users", map[string]string{"user_email": "bad"}), ErrValidation},
		{Referential("appointments", "appointment_bank_id", 3), ErrReferential},
		{Conflict("blood_stocks", "insufficient_stock", "short"), ErrConflict},
		{NotFound("blood_banks", 9), ErrNotFound},
		{Forbidden("blood_requests", "nope"), ErrForbidden},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !errors.Is(wrapped, tc.want) {
			t.Errorf("%v: errors.Is(%v) = false", tc.err, tc.want)
		}
		if errors.Is(wrapped, ErrForbidden) && tc.want != ErrForbidden {
			t.Errorf("%v matched the wrong sentinel", tc.err)
		}
	}
}

func TestErrorString(t *testing.T) {
	err := ValidationField("donor_profiles", "age", "range", "age must be between 18 and 65")
	got := err.Error()
	if !strings.HasPrefix(got, "validation [donor_profiles.age]") {
		t.Fatalf("Error() = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	cause := errors.New("lock timeout")
	err := RetryableConflict("blood_requests", "retry", cause)
	if !IsRetryable(fmt.Errorf("wrap: %w", err)) {
		t.Fatalf("retryable conflict not detected")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not unwrapped")
	}
	if IsRetryable(Conflict("x", "y", "z")) {
		t.Fatalf("plain conflict reported retryable")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("unclassified error has a kind")
	}
}
