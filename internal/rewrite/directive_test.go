package rewrite

import (
	"testing"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

func TestIsDirective(t *testing.T) {
	tests := []struct {
		comment string
		want    bool
	}{
		{"//rhsfirst:assign", true},
		{"//rhsfirst:assign a b c", true},
		{"//rhsfirst:assign\tx", true},
		{"//rhsfirst:assignment", false},
		{"// rhsfirst:assign", false},
		{"//go:noinline", false},
		{"/* rhsfirst:assign */", false},
	}

	for _, tt := range tests {
		if got := IsDirective(tt.comment); got != tt.want {
			t.Errorf("IsDirective(%q) = %v, want %v", tt.comment, got, tt.want)
		}
	}
}

func TestDirective(t *testing.T) {
	src := `package main

// f does things.
//
//rhsfirst:assign -mode=strict
//go:noinline
func f() {}

// g does not opt in.
func g() {}
`
	f, err := decorator.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got, ok := Directive(f.Decls[0].(*dst.FuncDecl))
	if !ok || got != "//rhsfirst:assign -mode=strict" {
		t.Errorf("Directive(f) = %q, %v", got, ok)
	}
	if _, ok := Directive(f.Decls[1].(*dst.FuncDecl)); ok {
		t.Errorf("Directive(g) found a directive")
	}
}
