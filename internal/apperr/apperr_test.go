package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindTokenExpired, "provision token expired")
	if KindOf(err) != KindTokenExpired {
		t.Fatalf("unexpected kind %v", KindOf(err))
	}
	wrapped := fmt.Errorf("handler: %w", err)
	if KindOf(wrapped) != KindTokenExpired {
		t.Fatal("kind must survive wrapping")
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("untagged errors default to internal")
	}
}

func TestFromStore(t *testing.T) {
	if FromStore(context.DeadlineExceeded).Kind != KindTransient {
		t.Fatal("deadline must be transient")
	}
	if FromStore(errors.New("syntax error")).Kind != KindInternal {
		t.Fatal("other failures must be internal")
	}
	if !Retryable(FromStore(context.DeadlineExceeded)) {
		t.Fatal("transient must be retryable")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(KindInternal, "store failure", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause must be reachable")
	}
}
