package main

import (
	"strings"
	"testing"

	rderrors "restdoc/internal/errors"
	"restdoc/internal/generate"
	"restdoc/internal/merge"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"human", FormatHuman, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, `"key": "value"`) {
		t.Error("JSON output missing expected key")
	}
	if !strings.Contains(result, `"num": 42`) {
		t.Error("JSON output missing expected number")
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(map[string]string{"key": "value"}, "xml")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should mention unsupported format, got: %v", err)
	}
}

func TestFormatGenerateHuman(t *testing.T) {
	resp := &GenerateResponse{
		Report: &generate.Report{
			ID:        "run-1",
			Generator: "restdoc/test",
			Documents: []generate.DocumentReport{{
				Filename:   "shop",
				Path:       "out/shop.yml",
				Tags:       2,
				Operations: 5,
				Schemas:    3,
				Documented: merge.Stats{Tags: 1, Endpoints: 4},
				Warnings:   []rderrors.Warning{rderrors.NewUnresolvedTypeWarning("org.acme.Owner", "type not declared in the scanned sources")},
			}},
		},
		LoggedWarnings: 2,
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"restdoc/test (generation run-1)",
		"out/shop.yml",
		"2 tags, 5 operations, 3 schemas",
		"Documented: 1 tags, 4 endpoints, 0 parameters, 0 schemas, 0 properties",
		"! [UNRESOLVED_TYPE] org.acme.Owner: type not declared in the scanned sources",
		"1 document(s) written, 2 warning(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHuman_FallsBackToJSON(t *testing.T) {
	out, err := FormatResponse(struct {
		Name string `json:"name"`
	}{"x"}, FormatHuman)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"name": "x"`) {
		t.Errorf("expected JSON fallback, got %s", out)
	}
}
