// Package schema maps declared Java types to model schemas.
//
// The Resolver turns a type reference into a primitive, array, map, enum or
// object reference. Object and enum types are registered once in a
// model.Registry: the entry is reserved before the fields are walked, so
// self-referential and mutually-referential types resolve to references
// instead of recursing forever. Resolution never fails; types whose structure
// is unknown become opaque objects and are reported as warnings.
package schema

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	rderrors "restdoc/internal/errors"
	"restdoc/internal/introspect"
	"restdoc/internal/model"
)

// bindings maps type variable names to concrete type arguments.
type bindings map[string]introspect.TypeRef

// Resolver resolves type references against a Provider into a Registry.
type Resolver struct {
	provider introspect.Provider
	registry *model.Registry
	logger   *slog.Logger

	warnings []rderrors.Warning
	warned   map[string]bool
}

// NewResolver creates a resolver registering schemas into registry.
func NewResolver(provider introspect.Provider, registry *model.Registry, logger *slog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		registry: registry,
		logger:   logger,
		warned:   make(map[string]bool),
	}
}

// Registry returns the registry the resolver writes to.
func (r *Resolver) Registry() *model.Registry {
	return r.registry
}

// Warnings returns the unresolved type warnings collected so far, one per type.
func (r *Resolver) Warnings() []rderrors.Warning {
	return r.warnings
}

// Resolve returns the schema of ref.
func (r *Resolver) Resolve(ref introspect.TypeRef) *model.Schema {
	return r.resolve(ref, nil)
}

func (r *Resolver) resolve(ref introspect.TypeRef, env bindings) *model.Schema {
	if ref.TypeVar {
		bound, ok := env[ref.Name]
		if !ok {
			r.warn(ref.Text, "unbound type variable")
			return wrapArray(model.OpaqueObject(), ref.Dims)
		}
		return wrapArray(r.resolve(bound, nil), ref.Dims)
	}

	if ref.Dims > 0 {
		elem := ref.Elem()
		if ref.Dims == 1 && elem.Primitive && elem.Name == "byte" {
			return model.Primitive("string", "byte")
		}
		return model.ArrayOf(r.resolve(elem, env))
	}

	if ref.Wildcard {
		if ref.Bound != nil {
			return r.resolve(*ref.Bound, env)
		}
		r.warn(ref.Text, "unbounded wildcard")
		return model.OpaqueObject()
	}

	if decl, ok := r.provider.Lookup(ref.Qualified); ok && ref.Qualified != "" {
		if decl.Kind == introspect.KindEnum {
			return r.enumRef(decl)
		}
		return r.objectRef(decl, substitute(ref.Args, env))
	}

	name := ref.SimpleName()
	if p, ok := primitives[name]; ok {
		return model.Primitive(p.typ, p.format)
	}
	if fileTypes[name] {
		return model.Binary()
	}

	switch {
	case arrayLike[name] || setLike[name]:
		return model.ArrayOf(r.typeArg(ref, 0, env))
	case mapLike[name]:
		if len(ref.Args) == 2 {
			return model.MapOf(r.resolve(ref.Args[1], env))
		}
		return model.MapOf(r.typeArg(ref, 1, env))
	case wrappers[name]:
		return r.typeArg(ref, 0, env)
	}

	r.warn(ref.Text, "type not declared in the scanned sources")
	return model.OpaqueObject()
}

// typeArg resolves the i-th type argument of ref, or an opaque object for a
// raw type.
func (r *Resolver) typeArg(ref introspect.TypeRef, i int, env bindings) *model.Schema {
	if i < len(ref.Args) {
		return r.resolve(ref.Args[i], env)
	}
	r.warn(ref.Text, "raw type without type arguments")
	return model.OpaqueObject()
}

func (r *Resolver) enumRef(decl *introspect.TypeDecl) *model.Schema {
	entry, created := r.registry.Reserve(decl.QualifiedName, decl.Name, decl.QualifiedName)
	if created {
		entry.Schema = &model.Schema{
			Kind: model.KindEnum,
			Type: "string",
			Enum: append([]string(nil), decl.EnumConstants...),
		}
	}
	return model.RefTo(entry.Name)
}

// objectRef registers decl applied to args and returns a reference to it.
func (r *Resolver) objectRef(decl *introspect.TypeDecl, args []introspect.TypeRef) *model.Schema {
	identity := decl.QualifiedName
	baseName := decl.Name
	if len(args) > 0 {
		identity += "<" + strings.Join(lo.Map(args, func(a introspect.TypeRef, _ int) string {
			return argIdentity(a)
		}), ",") + ">"
		baseName += "_" + strings.Join(lo.Map(args, func(a introspect.TypeRef, _ int) string {
			return argName(a)
		}), "_")
	}

	entry, created := r.registry.Reserve(identity, baseName, decl.QualifiedName)
	if !created {
		return model.RefTo(entry.Name)
	}

	// placeholder first: fields referring back to decl find the entry
	entry.Schema = &model.Schema{Kind: model.KindObject}
	entry.Schema.Properties = r.properties(decl, bind(decl.TypeParams, args), map[string]bool{})
	return model.RefTo(entry.Name)
}

// properties returns the instance fields of decl, superclass fields first.
// A field redeclared in a subclass replaces the inherited property in place.
func (r *Resolver) properties(decl *introspect.TypeDecl, env bindings, seen map[string]bool) []*model.Property {
	seen[decl.QualifiedName] = true

	var props []*model.Property
	if sc := decl.Superclass; sc != nil {
		if sup, ok := r.provider.Lookup(sc.Identity()); ok && !seen[sup.QualifiedName] && sup.Kind == introspect.KindClass {
			props = r.properties(sup, bind(sup.TypeParams, substitute(sc.Args, env)), seen)
		}
	}

	for _, f := range r.provider.FieldsOf(decl) {
		if f.Static || f.Markers.Has("JsonIgnore") {
			continue
		}
		p := r.property(decl, f, env)
		if i := lo.IndexOf(lo.Map(props, func(q *model.Property, _ int) string { return q.Name }), p.Name); i >= 0 {
			props[i] = p
			continue
		}
		props = append(props, p)
	}
	return props
}

var requiredMarkers = []string{"NotNull", "NonNull", "Nonnull", "NotBlank", "NotEmpty"}

func (r *Resolver) property(decl *introspect.TypeDecl, f *introspect.FieldDecl, env bindings) *model.Property {
	p := &model.Property{
		Name:          f.Name,
		FieldName:     f.Name,
		DeclaringType: decl.QualifiedName,
		Schema:        r.resolve(f.Type, env),
		Required:      f.Markers.HasAny(requiredMarkers...),
		UniqueItems:   IsSetLike(f.Type),
	}

	if jp, ok := f.Markers.Find("JsonProperty"); ok {
		if v, ok := jp.Value("value"); ok && v != "" {
			p.Name = v
		}
		if v, _ := jp.Value("required"); v == "true" {
			p.Required = true
		}
	}

	if size, ok := f.Markers.Find("Size"); ok && p.Schema.Kind == model.KindPrimitive && p.Schema.Type == "string" {
		p.MinLength = intAttr(size, "min")
		p.MaxLength = intAttr(size, "max")
	}
	return p
}

func (r *Resolver) warn(subject, reason string) {
	if r.warned[subject] {
		return
	}
	r.warned[subject] = true
	w := rderrors.NewUnresolvedTypeWarning(subject, reason)
	r.warnings = append(r.warnings, w)
	r.logger.Warn("Unresolved type, using an opaque object schema", "type", subject, "reason", reason)
}

func intAttr(m introspect.Marker, key string) *int {
	v, ok := m.Value(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func wrapArray(s *model.Schema, dims int) *model.Schema {
	for i := 0; i < dims; i++ {
		s = model.ArrayOf(s)
	}
	return s
}

// bind pairs type parameters with type arguments. Missing arguments leave the
// parameter unbound.
func bind(params []string, args []introspect.TypeRef) bindings {
	if len(params) == 0 {
		return nil
	}
	env := make(bindings, len(params))
	for i, p := range params {
		if i < len(args) {
			env[p] = args[i]
		}
	}
	return env
}

// substitute replaces bound type variables in args with their values.
func substitute(args []introspect.TypeRef, env bindings) []introspect.TypeRef {
	if len(args) == 0 {
		return nil
	}
	out := make([]introspect.TypeRef, len(args))
	for i, a := range args {
		switch {
		case a.TypeVar:
			if v, ok := env[a.Name]; ok {
				v.Dims += a.Dims
				a = v
			}
		case a.Wildcard && a.Bound != nil:
			b := substitute([]introspect.TypeRef{*a.Bound}, env)[0]
			a.Bound = &b
		default:
			a.Args = substitute(a.Args, env)
		}
		out[i] = a
	}
	return out
}

// argIdentity is the canonical identity of a type argument.
func argIdentity(a introspect.TypeRef) string {
	var s string
	switch {
	case a.Wildcard && a.Bound != nil:
		s = "? extends " + argIdentity(*a.Bound)
	case a.Wildcard:
		s = "?"
	default:
		s = a.Identity()
		if len(a.Args) > 0 {
			s += "<" + strings.Join(lo.Map(a.Args, func(x introspect.TypeRef, _ int) string {
				return argIdentity(x)
			}), ",") + ">"
		}
	}
	return s + strings.Repeat("[]", a.Dims)
}

// argName is the component name fragment of a type argument.
func argName(a introspect.TypeRef) string {
	if a.Wildcard {
		if a.Bound != nil {
			return argName(*a.Bound)
		}
		return "Object"
	}
	parts := append([]string{a.SimpleName()}, lo.Map(a.Args, func(x introspect.TypeRef, _ int) string {
		return argName(x)
	})...)
	return strings.Join(parts, "_") + strings.Repeat("Array", a.Dims)
}
