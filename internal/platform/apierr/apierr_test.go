package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsWrappedError(t *testing.T) {
	inner := errors.New("boom")
	wrapped := fmt.Errorf("handler: %w", BadRequest("validation_failed", inner))

	got := As(wrapped)
	if got.Status != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, got.Status)
	}
	if got.Code != "validation_failed" {
		t.Fatalf("code: want=%q got=%q", "validation_failed", got.Code)
	}
	if !errors.Is(got, inner) {
		t.Fatalf("expected inner error in chain")
	}
}

func TestAsFallsBackToInternal(t *testing.T) {
	got := As(errors.New("plain"))
	if got.Status != http.StatusInternalServerError || got.Code != "internal_error" {
		t.Fatalf("unexpected fallback: %+v", got)
	}
	if got.Error() != "plain" {
		t.Fatalf("message: want=%q got=%q", "plain", got.Error())
	}
}
