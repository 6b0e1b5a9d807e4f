package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"restdoc/internal/version"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// parseFormat validates the --format flag.
func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatHuman:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *GenerateResponse:
		return formatGenerateHuman(v)
	case *VersionResponse:
		return formatVersionHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatGenerateHuman(resp *GenerateResponse) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s (generation %s)\n", resp.Report.Generator, resp.Report.ID))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, d := range resp.Report.Documents {
		b.WriteString(fmt.Sprintf("%s\n", d.Path))
		b.WriteString(fmt.Sprintf("  %d tags, %d operations, %d schemas\n", d.Tags, d.Operations, d.Schemas))
		doc := d.Documented
		b.WriteString(fmt.Sprintf("  Documented: %d tags, %d endpoints, %d parameters, %d schemas, %d properties\n",
			doc.Tags, doc.Endpoints, doc.Parameters, doc.Schemas, doc.Properties))
		for _, w := range d.Warnings {
			b.WriteString(fmt.Sprintf("  ! %s\n", w))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%d document(s) written, %d warning(s)\n", len(resp.Report.Documents), resp.LoggedWarnings))
	return b.String(), nil
}

func formatVersionHuman(*VersionResponse) (string, error) {
	return version.Full(), nil
}

// VersionResponse is the response format for the version command
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	Generator string `json:"generator"`
}

func newVersionResponse() *VersionResponse {
	return &VersionResponse{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		Generator: version.GeneratorName(),
	}
}
