package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"restdoc/internal/model"
)

const (
	defaultConsumes  = "application/json"
	defaultProduces  = "*/*"
	multipartContent = "multipart/form-data"
	formContent      = "application/x-www-form-urlencoded"
	schemaPrefix     = "#/components/schemas/"
)

// Options carry the document metadata that is not part of the tag library.
type Options struct {
	Info    Info
	Servers []Server
}

// Build renders lib as a document. Endpoints sharing a path and verb are
// rendered as one operation whose content types are the union of theirs.
func Build(lib *model.TagLibrary, opts Options) *Document {
	doc := &Document{
		OpenAPI: Version,
		Info:    opts.Info,
		Servers: opts.Servers,
		Paths:   make(map[string]*PathItem),
	}

	for _, tag := range lib.Tags() {
		doc.Tags = append(doc.Tags, Tag{Name: tag.Name, Description: tag.Description})
		for _, ep := range tag.Endpoints {
			item, ok := doc.Paths[ep.Path]
			if !ok {
				item = &PathItem{}
				doc.Paths[ep.Path] = item
			}
			slot := item.slot(ep.Verb)
			if slot == nil {
				continue
			}
			if *slot == nil {
				*slot = operation(tag.Name, ep)
				continue
			}
			mergeOperation(*slot, tag.Name, ep)
		}
	}

	if entries := lib.Registry.Entries(); len(entries) > 0 {
		doc.Components = &Components{Schemas: make(map[string]*Schema, len(entries))}
		for _, e := range entries {
			doc.Components.Schemas[e.Name] = convert(e.Schema)
		}
	}
	return doc
}

func (p *PathItem) slot(verb model.Verb) **Operation {
	switch verb {
	case model.GET:
		return &p.Get
	case model.PUT:
		return &p.Put
	case model.POST:
		return &p.Post
	case model.DELETE:
		return &p.Delete
	case model.OPTIONS:
		return &p.Options
	case model.HEAD:
		return &p.Head
	case model.PATCH:
		return &p.Patch
	}
	return nil
}

// Operations returns the operations of the path item keyed by lower-case verb.
func (p *PathItem) Operations() map[string]*Operation {
	out := map[string]*Operation{}
	for _, v := range []model.Verb{model.GET, model.PUT, model.POST, model.DELETE, model.OPTIONS, model.HEAD, model.PATCH} {
		if op := *p.slot(v); op != nil {
			out[strings.ToLower(string(v))] = op
		}
	}
	return out
}

func operation(tag string, ep *model.Endpoint) *Operation {
	op := &Operation{
		Tags:        []string{tag},
		Summary:     ep.Summary,
		Description: ep.Description,
		OperationID: ep.OperationID,
		Deprecated:  ep.Deprecated,
		Responses:   map[string]*Response{},
	}

	var form []*model.Parameter
	for _, p := range ep.Parameters {
		switch p.Source {
		case model.SourcePath, model.SourceQuery, model.SourceHeader, model.SourceCookie:
			op.Parameters = append(op.Parameters, &Parameter{
				Name:        p.Name,
				In:          string(p.Source),
				Description: p.Description,
				Required:    p.Required || p.Source == model.SourcePath,
				Schema:      convert(p.Schema),
			})
		case model.SourceBody:
			body := requestBody(op)
			body.Description = p.Description
			body.Required = p.Required
			for _, ct := range bodyContentTypes(ep.Consumes) {
				body.Content[ct] = &MediaType{Schema: convert(p.Schema)}
			}
		case model.SourceForm, model.SourceFile:
			form = append(form, p)
		}
	}

	if len(form) > 0 {
		s := &Schema{Type: "object", Properties: &Properties{}}
		for _, p := range form {
			s.Properties.Set(p.Name, describe(convert(p.Schema), p.Description))
			if p.Required {
				s.Required = append(s.Required, p.Name)
			}
		}
		body := requestBody(op)
		body.Required = body.Required || len(s.Required) > 0
		for _, ct := range formContentTypes(ep.Consumes, form) {
			body.Content[ct] = &MediaType{Schema: s}
		}
	}

	if ep.Response == nil {
		op.Responses["204"] = &Response{Description: lo.Ternary(ep.ResponseDescription != "", ep.ResponseDescription, "No Content")}
		return op
	}
	resp := &Response{
		Description: lo.Ternary(ep.ResponseDescription != "", ep.ResponseDescription, "OK"),
		Content:     map[string]*MediaType{},
	}
	for _, ct := range produced(ep.Produces) {
		resp.Content[ct] = &MediaType{Schema: convert(ep.Response)}
	}
	op.Responses["200"] = resp
	return op
}

// mergeOperation folds another endpoint with the same path and verb into op.
func mergeOperation(op *Operation, tag string, ep *model.Endpoint) {
	if !lo.Contains(op.Tags, tag) {
		op.Tags = append(op.Tags, tag)
	}
	other := operation(tag, ep)
	for code, r := range other.Responses {
		existing, ok := op.Responses[code]
		if !ok {
			op.Responses[code] = r
			continue
		}
		for ct, mt := range r.Content {
			if existing.Content == nil {
				existing.Content = map[string]*MediaType{}
			}
			if _, ok := existing.Content[ct]; !ok {
				existing.Content[ct] = mt
			}
		}
	}
	if other.RequestBody != nil {
		if op.RequestBody == nil {
			op.RequestBody = other.RequestBody
		} else {
			for ct, mt := range other.RequestBody.Content {
				if _, ok := op.RequestBody.Content[ct]; !ok {
					op.RequestBody.Content[ct] = mt
				}
			}
		}
	}
	op.Deprecated = op.Deprecated && ep.Deprecated
}

func requestBody(op *Operation) *RequestBody {
	if op.RequestBody == nil {
		op.RequestBody = &RequestBody{Content: map[string]*MediaType{}}
	}
	return op.RequestBody
}

func bodyContentTypes(consumes []string) []string {
	out := lo.Filter(consumes, func(ct string, _ int) bool {
		return !strings.HasPrefix(ct, "multipart/") && ct != formContent
	})
	if len(out) == 0 {
		return []string{defaultConsumes}
	}
	return out
}

// formContentTypes returns the declared form content types, or multipart
// when none is declared or a file is uploaded.
func formContentTypes(consumes []string, form []*model.Parameter) []string {
	hasFile := lo.ContainsBy(form, func(p *model.Parameter) bool { return p.Source == model.SourceFile })
	out := lo.Filter(consumes, func(ct string, _ int) bool {
		return strings.HasPrefix(ct, "multipart/") || ct == formContent && !hasFile
	})
	if len(out) == 0 {
		return []string{multipartContent}
	}
	return out
}

func produced(produces []string) []string {
	if len(produces) == 0 {
		return []string{defaultProduces}
	}
	return produces
}

// describe attaches a description to s. A reference cannot carry siblings in
// OpenAPI 3.0, so it is wrapped in allOf.
func describe(s *Schema, description string) *Schema {
	if description == "" {
		return s
	}
	if s.Ref != "" {
		return &Schema{AllOf: []*Schema{s}, Description: description}
	}
	s.Description = description
	return s
}

func convert(s *model.Schema) *Schema {
	if s == nil {
		return &Schema{Type: "object"}
	}
	switch s.Kind {
	case model.KindPrimitive, model.KindBinary:
		return &Schema{Type: s.Type, Format: s.Format, Description: s.Description}
	case model.KindArray:
		return &Schema{Type: "array", Items: convert(s.Items), Description: s.Description}
	case model.KindMap:
		return &Schema{Type: "object", AdditionalProperties: convert(s.Values), Description: s.Description}
	case model.KindRef:
		return &Schema{Ref: schemaPrefix + s.Ref}
	case model.KindEnum:
		return &Schema{Type: "string", Enum: s.Enum, Description: s.Description}
	}

	out := &Schema{Type: "object", Description: s.Description}
	if s.Opaque || len(s.Properties) == 0 {
		return out
	}
	out.Properties = &Properties{}
	for _, p := range s.Properties {
		ps := convert(p.Schema)
		if p.MinLength != nil || p.MaxLength != nil || p.UniqueItems {
			if ps.Ref != "" {
				ps = &Schema{AllOf: []*Schema{ps}}
			}
			ps.MinLength, ps.MaxLength = p.MinLength, p.MaxLength
			ps.UniqueItems = p.UniqueItems
		}
		out.Properties.Set(p.Name, describe(ps, p.Description))
		if p.Required {
			out.Required = append(out.Required, p.Name)
		}
	}
	return out
}

// Encode serializes doc as yaml or json.
func Encode(doc *Document, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml)", format)
	}
}

// Extension returns the file extension of a format.
func Extension(format string) string {
	if strings.EqualFold(format, "json") {
		return ".json"
	}
	return ".yml"
}
