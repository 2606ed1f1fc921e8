package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesKind(t *testing.T) {
	err := Wrap(ErrConflict, "request already resolved")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("wrapped error lost its kind: %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("wrapped error matches the wrong kind: %v", err)
	}

	err = Wrapf(ErrValidation, "runs must be between 0 and %d", 1000)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Wrapf lost the kind: %v", err)
	}

	// Further wrapping still classifies.
	outer := fmt.Errorf("submit score: %w", err)
	if !errors.Is(outer, ErrValidation) {
		t.Errorf("double wrap lost the kind: %v", outer)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(Wrap(ErrTransient, "deadlock detected")) {
		t.Error("transient error not recognized")
	}
	if IsTransient(Wrap(ErrConflict, "lost the race")) {
		t.Error("conflict misclassified as transient")
	}
	if IsTransient(errors.New("plain error")) {
		t.Error("unclassified error misclassified as transient")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Wrap(ErrNotFound, "match not found"), http.StatusNotFound},
		{Wrap(ErrForbidden, "not a captain"), http.StatusForbidden},
		{Wrap(ErrConflict, "already resolved"), http.StatusConflict},
		{Wrap(ErrValidation, "reason too short"), http.StatusBadRequest},
		{Wrap(ErrTransient, "contention"), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
