package apperr

import (
	"errors"
	"fmt"
	"testing"
)

var errWidgetMissing = New(ErrNotFound, "widget not found")

func TestWrap_KeepsSentinelAndKind(t *testing.T) {
	cause := errors.New("no rows")
	err := fmt.Errorf("handler: %w", Wrap(errWidgetMissing, "widgets.get", cause))

	if !errors.Is(err, errWidgetMissing) {
		t.Fatalf("expected errors.Is against the sentinel")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is against the kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause to stay reachable")
	}
	if errors.Is(err, New(ErrNotFound, "gadget not found")) {
		t.Fatalf("different sentinels of the same kind must not match")
	}
}

func TestStorage_DoesNotRewrapClassifiedErrors(t *testing.T) {
	err := Storage("widgets.create", errWidgetMissing)
	if KindOf(err) != ErrNotFound {
		t.Fatalf("got kind %v, want not found", KindOf(err))
	}

	raw := Storage("widgets.create", errors.New("connection reset"))
	if KindOf(raw) != ErrStorage {
		t.Fatalf("got kind %v, want storage failure", KindOf(raw))
	}

	if Storage("noop", nil) != nil {
		t.Fatalf("nil in, nil out")
	}
}

func TestKindOf_UnclassifiedIsStorage(t *testing.T) {
	if KindOf(errors.New("boom")) != ErrStorage {
		t.Fatalf("expected unclassified errors to be storage failures")
	}
}

func TestValidation_CarriesFields(t *testing.T) {
	err := Validation("posts.create", []FieldError{{Field: "title", Rule: "required"}})

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind")
	}
	if got := FieldsOf(err); len(got) != 1 || got[0].Field != "title" {
		t.Fatalf("unexpected fields: %+v", got)
	}
}
