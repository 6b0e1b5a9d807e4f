package filter

import (
	"errors"
	"testing"

	rderrors "restdoc/internal/errors"
)

func TestFilter_Accepts(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		input   string
		want    bool
	}{
		{"no lists accepts everything", nil, nil, "com.example.api.Orders", true},
		{"include full match", []string{`com\.example\.api\..*`}, nil, "com.example.api.Orders", true},
		{"include is not a substring search", []string{`api`}, nil, "com.example.api.Orders", false},
		{"include miss rejects", []string{`com\.other\..*`}, nil, "com.example.api.Orders", false},
		{"any include pattern is enough", []string{`nope`, `.*Orders`}, nil, "com.example.api.Orders", true},
		{"exclude full match rejects", nil, []string{`.*Internal.*`}, "com.example.InternalApi", false},
		{"exclude is not a substring search", nil, []string{`Internal`}, "com.example.InternalApi", true},
		{"exclude wins over include", []string{`com\..*`}, []string{`.*Admin`}, "com.example.Admin", false},
		{"include only, excluded list empty", []string{`.*Admin`}, []string{}, "com.example.Admin", true},
		{"alternation is anchored as a whole", []string{`a|com\.x\.B`}, nil, "com.x.Bee", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := f.Accepts(tt.input); got != tt.want {
				t.Errorf("Accepts(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilter_EmptyIncludeDependsOnlyOnExclude(t *testing.T) {
	f, err := New(nil, []string{`.*Test`})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.B", "x.y.Z", "Foo"} {
		if !f.Accepts(name) {
			t.Errorf("%s should be accepted", name)
		}
	}
	if f.Accepts("a.FooTest") {
		t.Error("a.FooTest should be rejected")
	}
}

func TestNew_InvalidPatterns(t *testing.T) {
	_, err := New([]string{`(`}, []string{`[`})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, &rderrors.Error{Code: rderrors.ConfigurationError}) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}
