package xerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(FORX0002, "unbalanced parenthesis in %q", "a(b"), `FORX0002: unbalanced parenthesis in "a(b"`},
		{TypeError(XPTY0004, "xs:integer", "xs:string", "cannot add a string"),
			"XPTY0004: cannot add a string (required xs:integer, supplied xs:string)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(XTDE0640, "key %q is already being evaluated", "k")
	if !Is(err, XTDE0640) {
		t.Fatal("Is should match the error's own code")
	}
	if Is(err, XTDE1260) {
		t.Fatal("Is should not match a different code")
	}
	if Is(nil, XTDE0640) {
		t.Fatal("Is(nil, ...) should never match")
	}
}

func TestAs(t *testing.T) {
	var err error = New(FOJS0001, "unexpected token")
	e, ok := As(err)
	if !ok || e.Code != FOJS0001 {
		t.Fatalf("As failed to recover *Error: %v, %v", e, ok)
	}
}
