package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"restdoc/internal/introspect"
	"restdoc/internal/model"
	"restdoc/internal/slogutil"
)

func newResolver(types ...*introspect.TypeDecl) *Resolver {
	return NewResolver(introspect.NewUniverse(types...), model.NewRegistry(), slogutil.NewDiscardLogger())
}

func field(name string, typ introspect.TypeRef, markers ...introspect.Marker) *introspect.FieldDecl {
	return &introspect.FieldDecl{Name: name, Type: typ, Markers: markers}
}

func TestResolve_BuiltinTypes(t *testing.T) {
	str := introspect.Ref("java.lang.String")
	tests := []struct {
		name string
		ref  introspect.TypeRef
		want *model.Schema
	}{
		{"int", introspect.PrimitiveRef("int"), model.Primitive("integer", "int32")},
		{"Long", introspect.Ref("java.lang.Long"), model.Primitive("integer", "int64")},
		{"BigDecimal", introspect.Ref("java.math.BigDecimal"), model.Primitive("number", "double")},
		{"boolean", introspect.PrimitiveRef("boolean"), model.Primitive("boolean", "")},
		{"String", str, model.Primitive("string", "")},
		{"UUID", introspect.Ref("java.util.UUID"), model.Primitive("string", "uuid")},
		{"LocalDate", introspect.Ref("java.time.LocalDate"), model.Primitive("string", "date")},
		{"Instant", introspect.Ref("java.time.Instant"), model.Primitive("string", "date-time")},
		{"byte[]", introspect.ArrayRef(introspect.PrimitiveRef("byte")), model.Primitive("string", "byte")},
		{"MultipartFile", introspect.Ref("org.springframework.web.multipart.MultipartFile"), model.Binary()},
		{"String[]", introspect.ArrayRef(str), model.ArrayOf(model.Primitive("string", ""))},
		{"List<String>", introspect.Ref("java.util.List", str), model.ArrayOf(model.Primitive("string", ""))},
		{"Set<Long>", introspect.Ref("java.util.Set", introspect.Ref("java.lang.Long")), model.ArrayOf(model.Primitive("integer", "int64"))},
		{"Map<String,Integer>", introspect.Ref("java.util.Map", str, introspect.Ref("java.lang.Integer")), model.MapOf(model.Primitive("integer", "int32"))},
		{"Optional<String>", introspect.Ref("java.util.Optional", str), model.Primitive("string", "")},
		{"List<? extends Number>", introspect.Ref("java.util.List", introspect.TypeRef{Text: "? extends String", Name: "?", Wildcard: true, Bound: &str}), model.ArrayOf(model.Primitive("string", ""))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver()
			got := r.Resolve(tt.ref)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%s) mismatch (-want +got):\n%s", tt.ref.Text, diff)
			}
			if len(r.Warnings()) != 0 {
				t.Errorf("unexpected warnings: %v", r.Warnings())
			}
		})
	}
}

func TestResolve_SelfReference(t *testing.T) {
	node := &introspect.TypeDecl{Package: "com.x", Name: "Node", Kind: introspect.KindClass}
	node.Fields = []*introspect.FieldDecl{
		field("value", introspect.Ref("java.lang.String")),
		field("next", introspect.Ref("com.x.Node")),
		field("children", introspect.Ref("java.util.List", introspect.Ref("com.x.Node"))),
	}
	r := newResolver(node)

	got := r.Resolve(introspect.Ref("com.x.Node"))
	if got.Kind != model.KindRef || got.Ref != "Node" {
		t.Fatalf("Resolve(Node) = %+v, want a reference to Node", got)
	}
	if r.Registry().Len() != 1 {
		t.Fatalf("registry has %d entries, want 1", r.Registry().Len())
	}
	entry, _ := r.Registry().ByName("Node")
	props := entry.Schema.Properties
	if len(props) != 3 {
		t.Fatalf("Node has %d properties, want 3", len(props))
	}
	if props[1].Schema.Ref != "Node" || props[2].Schema.Items.Ref != "Node" {
		t.Errorf("self references not resolved to Node: %+v, %+v", props[1].Schema, props[2].Schema.Items)
	}

	// resolving again is idempotent
	r.Resolve(introspect.Ref("com.x.Node"))
	if r.Registry().Len() != 1 {
		t.Errorf("registry grew to %d entries on a second resolve", r.Registry().Len())
	}
}

func TestResolve_MutualReference(t *testing.T) {
	a := &introspect.TypeDecl{Package: "com.x", Name: "Author", Kind: introspect.KindClass,
		Fields: []*introspect.FieldDecl{field("books", introspect.Ref("java.util.List", introspect.Ref("com.x.Book")))}}
	b := &introspect.TypeDecl{Package: "com.x", Name: "Book", Kind: introspect.KindClass,
		Fields: []*introspect.FieldDecl{field("author", introspect.Ref("com.x.Author"))}}
	r := newResolver(a, b)

	r.Resolve(introspect.Ref("com.x.Author"))

	if r.Registry().Len() != 2 {
		t.Fatalf("registry has %d entries, want 2", r.Registry().Len())
	}
	book, ok := r.Registry().ByName("Book")
	if !ok || book.Schema.Properties[0].Schema.Ref != "Author" {
		t.Errorf("Book.author should reference Author")
	}
}

func TestResolve_NameCollision(t *testing.T) {
	a := &introspect.TypeDecl{Package: "com.a", Name: "Item", Kind: introspect.KindClass}
	b := &introspect.TypeDecl{Package: "com.b", Name: "Item", Kind: introspect.KindClass}
	r := newResolver(a, b)

	first := r.Resolve(introspect.Ref("com.a.Item"))
	second := r.Resolve(introspect.Ref("com.b.Item"))
	again := r.Resolve(introspect.Ref("com.a.Item"))

	if first.Ref != "Item" || second.Ref != "Item_1" || again.Ref != "Item" {
		t.Errorf("names = %s, %s, %s; want Item, Item_1, Item", first.Ref, second.Ref, again.Ref)
	}
	e, _ := r.Registry().ByName("Item_1")
	if e.TypeName != "com.b.Item" {
		t.Errorf("Item_1 type = %s, want com.b.Item", e.TypeName)
	}
}

func TestResolve_Generics(t *testing.T) {
	page := &introspect.TypeDecl{Package: "com.x", Name: "Page", Kind: introspect.KindClass,
		TypeParams: []string{"T"},
		Fields: []*introspect.FieldDecl{
			field("content", introspect.Ref("java.util.List", introspect.TypeVarRef("T"))),
			field("first", introspect.TypeVarRef("T")),
			field("total", introspect.PrimitiveRef("long")),
		}}
	item := &introspect.TypeDecl{Package: "com.x", Name: "Item", Kind: introspect.KindClass}
	r := newResolver(page, item)

	got := r.Resolve(introspect.Ref("com.x.Page", introspect.Ref("com.x.Item")))
	if got.Ref != "Page_Item" {
		t.Fatalf("Resolve(Page<Item>) = %+v, want a reference to Page_Item", got)
	}
	entry, _ := r.Registry().ByName("Page_Item")
	if entry.Identity != "com.x.Page<com.x.Item>" {
		t.Errorf("identity = %s", entry.Identity)
	}
	props := entry.Schema.Properties
	if props[0].Schema.Kind != model.KindArray || props[0].Schema.Items.Ref != "Item" {
		t.Errorf("content = %+v, want array of Item", props[0].Schema)
	}
	if props[1].Schema.Ref != "Item" {
		t.Errorf("first = %+v, want Item", props[1].Schema)
	}

	other := r.Resolve(introspect.Ref("com.x.Page", introspect.Ref("java.lang.String")))
	if other.Ref != "Page_String" {
		t.Errorf("Resolve(Page<String>) = %s, want Page_String", other.Ref)
	}
}

func TestResolve_InheritedFields(t *testing.T) {
	sup := introspect.Ref("com.x.Base")
	base := &introspect.TypeDecl{Package: "com.x", Name: "Base", Kind: introspect.KindClass,
		Fields: []*introspect.FieldDecl{
			field("id", introspect.Ref("java.lang.Long")),
			{Name: "SERIAL", Type: introspect.PrimitiveRef("long"), Static: true},
		}}
	child := &introspect.TypeDecl{Package: "com.x", Name: "Child", Kind: introspect.KindClass,
		Superclass: &sup,
		Fields:     []*introspect.FieldDecl{field("name", introspect.Ref("java.lang.String"))}}
	r := newResolver(base, child)

	r.Resolve(introspect.Ref("com.x.Child"))
	entry, _ := r.Registry().ByName("Child")

	var names, owners []string
	for _, p := range entry.Schema.Properties {
		names = append(names, p.Name)
		owners = append(owners, p.DeclaringType)
	}
	if diff := cmp.Diff([]string{"id", "name"}, names); diff != "" {
		t.Errorf("property names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"com.x.Base", "com.x.Child"}, owners); diff != "" {
		t.Errorf("declaring types mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_PropertyRefinements(t *testing.T) {
	str := introspect.Ref("java.lang.String")
	user := &introspect.TypeDecl{Package: "com.x", Name: "User", Kind: introspect.KindClass,
		Fields: []*introspect.FieldDecl{
			field("login", str,
				introspect.Marker{Name: "NotBlank"},
				introspect.Marker{Name: "Size", Attrs: map[string][]string{"min": {"3"}, "max": {"20"}}}),
			field("password", str, introspect.Marker{Name: "JsonIgnore"}),
			field("mail", str, introspect.Marker{Name: "JsonProperty", Attrs: map[string][]string{
				"value": {"email"}, "required": {"true"}}}),
			field("roles", introspect.Ref("java.util.Set", str)),
			field("nickname", str),
		}}
	r := newResolver(user)
	r.Resolve(introspect.Ref("com.x.User"))
	entry, _ := r.Registry().ByName("User")
	props := entry.Schema.Properties

	if len(props) != 4 {
		t.Fatalf("User has %d properties, want 4 (password ignored)", len(props))
	}
	login := props[0]
	if !login.Required || login.MinLength == nil || *login.MinLength != 3 || login.MaxLength == nil || *login.MaxLength != 20 {
		t.Errorf("login = %+v, want required with length 3..20", login)
	}
	if props[1].Name != "email" || props[1].FieldName != "mail" || !props[1].Required {
		t.Errorf("mail = %+v, want required and renamed to email", props[1])
	}
	if !props[2].UniqueItems || props[2].Schema.Kind != model.KindArray {
		t.Errorf("roles = %+v, want array with unique items", props[2])
	}
	if props[3].Required {
		t.Error("nickname should be optional")
	}
}

func TestResolve_Enum(t *testing.T) {
	status := &introspect.TypeDecl{Package: "com.x", Name: "Status", Kind: introspect.KindEnum,
		EnumConstants: []string{"ACTIVE", "SUSPENDED", "CLOSED"}}
	r := newResolver(status)

	got := r.Resolve(introspect.Ref("com.x.Status"))
	if got.Ref != "Status" {
		t.Fatalf("Resolve(Status) = %+v", got)
	}
	entry, _ := r.Registry().ByName("Status")
	if diff := cmp.Diff([]string{"ACTIVE", "SUSPENDED", "CLOSED"}, entry.Schema.Enum); diff != "" {
		t.Errorf("enum constants mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Unresolvable(t *testing.T) {
	r := newResolver()

	tests := []introspect.TypeRef{
		introspect.Ref("com.fasterxml.jackson.databind.JsonNode"),
		introspect.Ref("com.fasterxml.jackson.databind.JsonNode"),
		introspect.TypeVarRef("T"),
		{Text: "?", Name: "?", Wildcard: true},
		introspect.Ref("java.util.List"),
	}
	for _, ref := range tests {
		got := r.Resolve(ref)
		if ref.Name == "List" {
			got = got.Items
		}
		if got.Kind != model.KindObject || !got.Opaque {
			t.Errorf("Resolve(%s) = %+v, want an opaque object", ref.Text, got)
		}
	}

	if len(r.Warnings()) != 4 {
		t.Errorf("got %d warnings, want 4 (one per distinct type): %v", len(r.Warnings()), r.Warnings())
	}
	if r.Registry().Len() != 0 {
		t.Error("opaque types must not be registered")
	}
}

func TestIsFile(t *testing.T) {
	file := introspect.Ref("org.springframework.web.multipart.MultipartFile")
	tests := []struct {
		ref  introspect.TypeRef
		want bool
	}{
		{file, true},
		{introspect.ArrayRef(file), true},
		{introspect.Ref("java.util.List", file), true},
		{introspect.Ref("java.lang.String"), false},
		{introspect.Ref("java.util.List", introspect.Ref("java.lang.String")), false},
	}
	for _, tt := range tests {
		if got := IsFile(tt.ref); got != tt.want {
			t.Errorf("IsFile(%s) = %v, want %v", tt.ref.Text, got, tt.want)
		}
	}
}
