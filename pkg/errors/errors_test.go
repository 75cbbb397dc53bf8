package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCode(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(CodeAvailability)
	if meta.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatal("availability errors must expose details")
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("socket closed")
	err := Wrap(CodeDependency, cause, "calculate order")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if got := As(fmt.Errorf("outer: %w", err)); got == nil || got.Code() != CodeDependency {
		t.Fatalf("expected typed error through wrapping, got %v", got)
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := New(CodeStale, "superseded by request 4")
	if !IsCode(err, CodeStale) {
		t.Fatal("expected stale code")
	}
	if IsCode(err, CodeConflict) {
		t.Fatal("unexpected code match")
	}
	if IsCode(nil, CodeStale) {
		t.Fatal("nil error must not match")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "missing branch").WithDetails(map[string]string{"field": "branch_id"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "branch_id" {
		t.Fatalf("unexpected details: %#v", err.Details())
	}
}
