package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-schemagen/pkg/batch"
	"github.com/goliatone/go-schemagen/pkg/naming"
)

const sample = `
namespace: Company.Models
onError: Skip
timeout: 45s
validate: false
exclude:
  - "legacy/**"
naming:
  mappings:
    ListOfFoo: FooList
  reservedWords: [Record]
  propertyCasing: camel
`

func TestLoad(t *testing.T) {
	files := afero.NewMemMapFs()
	if err := afero.WriteFile(files, "/etc/schemagen.yaml", []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(files, "/etc/schemagen.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	validate := false
	want := Config{
		Namespace: "Company.Models",
		OnError:   batch.OnErrorSkip,
		Timeout:   45 * time.Second,
		Validate:  &validate,
		Exclude:   []string{"legacy/**"},
		Naming: Naming{
			Mappings:       map[string]string{"ListOfFoo": "FooList"},
			ReservedWords:  []string{"Record"},
			PropertyCasing: naming.CasingCamel,
			EnumCasing:     naming.CasingPascal,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"namespace":"Api","naming":{"enumCasing":"screaming"}}`), "inline.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Namespace != "Api" || cfg.Naming.EnumCasing != naming.CasingScreaming || cfg.OnError != "" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "empty", body: "  \n", want: "is empty"},
		{name: "unknown key", body: "namespcae: Root\n", want: "namespcae"},
		{name: "bad policy", body: "onError: retry\n", want: "on-error policy"},
		{name: "bad timeout", body: "timeout: soon\n", want: "timeout"},
		{name: "negative timeout", body: "timeout: -1s\n", want: "positive"},
		{name: "bad casing", body: "naming:\n  propertyCasing: kebab\n", want: "propertyCasing"},
		{name: "empty mapping", body: "naming:\n  mappings:\n    Foo: \"\"\n", want: "empty side"},
		{name: "empty exclude", body: "exclude: [\"\"]\n", want: "exclude entry 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.body), "test.yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "/missing.yaml"); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestPolicies(t *testing.T) {
	cfg, err := Parse([]byte(sample), "sample.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	types, properties, enums := cfg.Policies()

	scope := naming.NewScope()
	if got := types.Generate(naming.TypeHint{Hint: "List<Foo>"}, scope); got != "FooList" {
		t.Fatalf("mapped type name = %q", got)
	}
	if got := types.Generate(naming.TypeHint{Hint: "Record"}, scope); got != "Record2" {
		t.Fatalf("reserved type name = %q", got)
	}
	if got := properties.Generate("first-name", naming.NewScope()); got != "firstName" {
		t.Fatalf("property name = %q", got)
	}
	if got := enums.Generate("on hold", naming.NewScope()); got != "OnHold" {
		t.Fatalf("enum member name = %q", got)
	}

	defaults, defaultProps, _ := Config{}.Policies()
	if got := defaults.Generate(naming.TypeHint{Hint: "person"}, naming.NewScope()); got != "Person" {
		t.Fatalf("default type name = %q", got)
	}
	if defaultProps.Casing() != naming.CasingPascal {
		t.Fatalf("default property casing = %q", defaultProps.Casing())
	}
}
