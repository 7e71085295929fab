package naming

import "testing"

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver()

	cases := []struct {
		name     string
		hint     string
		reserved []string
		want     string
	}{
		{name: "free", hint: "Foo", want: "Foo"},
		{name: "taken once", hint: "Foo", reserved: []string{"Foo"}, want: "Foo2"},
		{name: "taken twice", hint: "Foo", reserved: []string{"Foo", "Foo2"}, want: "Foo3"},
		{name: "gap reused", hint: "Foo", reserved: []string{"Foo", "Foo3"}, want: "Foo2"},
		{name: "empty", hint: "", want: "Anonymous"},
		{name: "empty taken", hint: "", reserved: []string{"Anonymous"}, want: "Anonymous2"},
		{name: "qualified", hint: "com.example.Foo", want: "Foo"},
		{name: "trailing dot", hint: "Foo.", want: "Anonymous"},
		{name: "reserved word", hint: "object", want: "object2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scope := NewScope(tc.reserved...)
			got := r.Resolve(tc.hint, scope)
			if got != tc.want {
				t.Fatalf("resolve %q: want %q, got %q", tc.hint, tc.want, got)
			}
			if scope.Len() != len(tc.reserved) {
				t.Fatalf("resolve must not modify the scope")
			}
		})
	}
}

func TestResolver_Mappings(t *testing.T) {
	r := NewResolver(WithMappings(map[string]string{"Foo": "Bar", " ": "Ignored"}))

	if got := r.Resolve("Foo", NewScope()); got != "Bar" {
		t.Fatalf("expected mapped name Bar, got %q", got)
	}
	if got := r.Resolve("Foo", NewScope("Bar")); got != "Bar2" {
		t.Fatalf("expected mapped name to be numbered, got %q", got)
	}
	if _, ok := r.Mapped(" "); ok {
		t.Fatalf("blank mapping keys should be ignored")
	}
}

func TestResolver_ReservedWords(t *testing.T) {
	r := NewResolver(WithReservedWords("class", "string"))

	if got := r.Resolve("class", nil); got != "class2" {
		t.Fatalf("expected class2, got %q", got)
	}
	if got := r.Resolve("object", nil); got != "object2" {
		t.Fatalf("default reserved words must stay active, got %q", got)
	}
}

func TestResolver_DeterministicOrder(t *testing.T) {
	run := func() []string {
		r := NewResolver()
		scope := NewScope()
		var out []string
		for _, hint := range []string{"Item", "Item", "", "Item", ""} {
			name := r.Resolve(hint, scope)
			scope.Reserve(name)
			out = append(out, name)
		}
		return out
	}

	first, second := run(), run()
	want := []string{"Item", "Item2", "Anonymous", "Item3", "Anonymous2"}
	for i := range want {
		if first[i] != want[i] || second[i] != want[i] {
			t.Fatalf("run %d: want %v, got %v and %v", i, want, first, second)
		}
	}
}

func TestScope(t *testing.T) {
	scope := NewScope("A", "B", "A", "")
	scope.Reserve("C")

	names := scope.Names()
	want := []string{"A", "B", "C"}
	if len(names) != len(want) {
		t.Fatalf("want %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("want %v, got %v", want, names)
		}
	}

	var nilScope *Scope
	if nilScope.Contains("A") || nilScope.Len() != 0 {
		t.Fatalf("nil scope must be empty")
	}
}
