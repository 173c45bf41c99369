package apperr_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/garnizeh/buddyup/pkg/apperr"
)

func TestCodeOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Code
	}{
		{name: "Nil", err: nil, want: ""},
		{name: "NotFound", err: apperr.NotFound("x"), want: apperr.CodeNotFound},
		{name: "Forbidden", err: apperr.Forbidden("x"), want: apperr.CodePermissionDenied},
		{name: "WrappedByFmt", err: fmt.Errorf("outer: %w", apperr.AlreadyExists("dup")), want: apperr.CodeAlreadyExists},
		{name: "Foreign", err: errors.New("boom"), want: apperr.CodeInternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := apperr.CodeOf(c.err); got != c.want {
				t.Fatalf("CodeOf: want %q got %q", c.want, got)
			}
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	err := apperr.Internal("load user", sql.ErrConnDone)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if !apperr.Is(err, apperr.CodeInternal) {
		t.Fatalf("expected INTERNAL code")
	}
	if got := err.Error(); got != "load user: "+sql.ErrConnDone.Error() {
		t.Fatalf("unexpected message %q", got)
	}
}
