package introspect

import "testing"

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"List<Item>", "List<Item>"},
		{"Map<String,  Item>", "Map<String,Item>"},
		{"Map< String ,\n\tList< Item > >", "Map<String,List<Item>>"},
		{"String [ ]", "String[]"},
		{"List<? extends Item>", "List<? extends Item>"},
		{"java.util.List<Item>", "java.util.List<Item>"},
		{"  int  ", "int"},
	}
	for _, tt := range tests {
		if got := NormalizeType(tt.in); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRefText(t *testing.T) {
	r := Ref("java.util.Map", Ref("java.lang.String"), Ref("java.util.List", Ref("com.x.Item")))
	if r.Text != "Map<String,List<Item>>" {
		t.Errorf("Text = %q", r.Text)
	}
	if r.Identity() != "java.util.Map" {
		t.Errorf("Identity() = %q", r.Identity())
	}
	arr := ArrayRef(Ref("com.x.Item"))
	if arr.Text != "Item[]" || arr.Dims != 1 {
		t.Errorf("ArrayRef = %+v", arr)
	}
	if e := arr.Elem(); e.Text != "Item" || e.Dims != 0 {
		t.Errorf("Elem() = %+v", e)
	}
}

func TestAncestors(t *testing.T) {
	base := &TypeDecl{Package: "com.x", Name: "Base", Kind: KindClass}
	api := &TypeDecl{Package: "com.x", Name: "Api", Kind: KindInterface,
		Markers: Markers{{Name: "RequestMapping"}}}
	loop := &TypeDecl{Package: "com.x", Name: "Loop", Kind: KindInterface}
	ref := Ref("com.x.Loop")
	loop.Interfaces = []TypeRef{ref}
	sup := Ref("com.x.Base")
	impl := &TypeDecl{Package: "com.x", Name: "Impl", Kind: KindClass,
		Superclass: &sup,
		Interfaces: []TypeRef{Ref("com.x.Api"), Ref("org.lib.External"), ref}}

	u := NewUniverse(base, api, loop, impl)

	got := Ancestors(u, impl)
	want := []string{"com.x.Impl", "com.x.Base", "com.x.Api", "com.x.Loop"}
	if len(got) != len(want) {
		t.Fatalf("Ancestors() returned %d types, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].QualifiedName != w {
			t.Errorf("Ancestors()[%d] = %s, want %s", i, got[i].QualifiedName, w)
		}
	}

	if !HasMarker(u, impl, []string{"RequestMapping"}) {
		t.Error("marker inherited from an interface should be found")
	}
	if HasMarker(u, base, []string{"RequestMapping"}) {
		t.Error("Base carries no marker")
	}
}

func TestUniverse_TypesUnder(t *testing.T) {
	u := NewUniverse(
		&TypeDecl{Package: "com.example.api", Name: "B"},
		&TypeDecl{Package: "com.example.api.v2", Name: "A"},
		&TypeDecl{Package: "com.example.apiother", Name: "C"},
		&TypeDecl{Package: "com.example", Name: "D"},
	)

	got := u.TypesUnder("com.example.api")
	if len(got) != 2 {
		t.Fatalf("TypesUnder() returned %d types, want 2", len(got))
	}
	if got[0].QualifiedName != "com.example.api.B" || got[1].QualifiedName != "com.example.api.v2.A" {
		t.Errorf("unexpected order: %s, %s", got[0].QualifiedName, got[1].QualifiedName)
	}
}

func TestAncestorBindings(t *testing.T) {
	crud := &TypeDecl{Package: "com.x", Name: "Crud", Kind: KindInterface, TypeParams: []string{"T"}}
	base := &TypeDecl{Package: "com.x", Name: "Base", Kind: KindClass, TypeParams: []string{"E"},
		Interfaces: []TypeRef{Ref("com.x.Crud", Ref("java.util.List", TypeVarRef("E")))}}
	sup := Ref("com.x.Base", Ref("com.x.Item"))
	items := &TypeDecl{Package: "com.x", Name: "Items", Kind: KindClass, Superclass: &sup}

	got := AncestorBindings(NewUniverse(crud, base, items), items)

	if b, ok := got["com.x.Items"]; !ok || b != nil {
		t.Errorf("Items bindings = %v, %v", b, ok)
	}
	if e := got["com.x.Base"]["E"]; e.Text != "Item" || e.Qualified != "com.x.Item" {
		t.Errorf("Base E = %+v", e)
	}
	if tv := got["com.x.Crud"]["T"]; tv.Text != "List<Item>" || tv.Args[0].Qualified != "com.x.Item" {
		t.Errorf("Crud T = %+v", tv)
	}
}

func TestBindings_Substitute(t *testing.T) {
	item := Ref("com.x.Item")
	b := Bind([]string{"T", "K"}, []TypeRef{item})
	tv := TypeVarRef("T")
	varargs := ArrayRef(tv)
	varargs.Text = "T..."

	tests := []struct {
		in       TypeRef
		wantText string
		wantDims int
	}{
		{tv, "Item", 0},
		{ArrayRef(tv), "Item[]", 1},
		{varargs, "Item...", 1},
		{Ref("java.util.Map", Ref("java.lang.String"), tv), "Map<String,Item>", 0},
		{TypeRef{Text: "? extends T", Wildcard: true, Bound: &tv}, "? extends Item", 0},
		{TypeVarRef("K"), "K", 0},
		{Ref("java.lang.String"), "String", 0},
	}
	for _, tt := range tests {
		got := b.Substitute(tt.in)
		if got.Text != tt.wantText || got.Dims != tt.wantDims {
			t.Errorf("Substitute(%s) = %s (dims %d), want %s (dims %d)", tt.in.Text, got.Text, got.Dims, tt.wantText, tt.wantDims)
		}
	}

	if got := b.Without([]string{"T"}).Substitute(tv); got.Text != "T" || !got.TypeVar {
		t.Errorf("method type parameter T should shadow the class binding, got %+v", got)
	}
}

func TestMethodDecl_SameSignature(t *testing.T) {
	tv := TypeVarRef("T")
	generic := &MethodDecl{Name: "create", Return: tv, Params: []ParamDecl{{Name: "body", Type: tv}}}
	concrete := &MethodDecl{Name: "create", Return: Ref("com.x.Item"), Params: []ParamDecl{{Name: "item", Type: Ref("com.x.Item")}}}
	bound := Bind([]string{"T"}, []TypeRef{Ref("com.x.Item")})

	if !concrete.SameSignature(generic, nil, bound) {
		t.Error("create(Item) should override create(T) with T bound to Item")
	}
	if concrete.SameSignature(generic, nil, nil) {
		t.Error("create(Item) does not override an unbound create(T)")
	}
	other := &MethodDecl{Name: "create", Params: []ParamDecl{{Type: Ref("java.lang.String")}}}
	if other.SameSignature(generic, nil, bound) {
		t.Error("create(String) does not override create(Item)")
	}
}
