// Package config reads the optional schemagen YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemagen/pkg/batch"
	"github.com/goliatone/go-schemagen/pkg/naming"
)

// Config is the validated configuration. Zero values mean "not set"; the CLI
// lets explicit flags win over the file.
type Config struct {
	Namespace string
	OnError   batch.OnError
	Timeout   time.Duration
	// Validate toggles meta-schema validation. Nil keeps the default.
	Validate *bool
	Exclude  []string
	Naming   Naming
}

// Naming configures the name policies.
type Naming struct {
	Mappings       map[string]string
	ReservedWords  []string
	PropertyCasing naming.Casing
	EnumCasing     naming.Casing
}

type documentFile struct {
	Namespace string     `yaml:"namespace"`
	OnError   string     `yaml:"onError"`
	Timeout   string     `yaml:"timeout"`
	Validate  *bool      `yaml:"validate"`
	Exclude   []string   `yaml:"exclude"`
	Naming    namingFile `yaml:"naming"`
}

type namingFile struct {
	Mappings       map[string]string `yaml:"mappings"`
	ReservedWords  []string          `yaml:"reservedWords"`
	PropertyCasing string            `yaml:"propertyCasing"`
	EnumCasing     string            `yaml:"enumCasing"`
}

// Load reads and validates the configuration file at path.
func Load(files afero.Fs, path string) (Config, error) {
	if files == nil {
		files = afero.NewOsFs()
	}
	data, err := afero.ReadFile(files, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes YAML (or JSON) configuration. Unknown keys are rejected.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	var doc documentFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
	}
	return normalise(doc, source)
}

func normalise(doc documentFile, source string) (Config, error) {
	cfg := Config{
		Namespace: strings.TrimSpace(doc.Namespace),
		Validate:  doc.Validate,
	}

	policy, err := batch.ParseOnError(doc.OnError, "")
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	cfg.OnError = policy

	if raw := strings.TrimSpace(doc.Timeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: timeout: %w", source, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("config: %s: timeout must be positive", source)
		}
		cfg.Timeout = timeout
	}

	for idx, pattern := range doc.Exclude {
		value := strings.TrimSpace(pattern)
		if value == "" {
			return Config{}, fmt.Errorf("config: %s: exclude entry %d is empty", source, idx)
		}
		cfg.Exclude = append(cfg.Exclude, value)
	}

	if len(doc.Naming.Mappings) > 0 {
		cfg.Naming.Mappings = make(map[string]string, len(doc.Naming.Mappings))
		for hint, name := range doc.Naming.Mappings {
			if strings.TrimSpace(hint) == "" || strings.TrimSpace(name) == "" {
				return Config{}, fmt.Errorf("config: %s: naming mapping %q -> %q has an empty side", source, hint, name)
			}
			cfg.Naming.Mappings[hint] = strings.TrimSpace(name)
		}
	}
	for _, word := range doc.Naming.ReservedWords {
		if value := strings.TrimSpace(word); value != "" {
			cfg.Naming.ReservedWords = append(cfg.Naming.ReservedWords, value)
		}
	}

	if cfg.Naming.PropertyCasing, err = naming.ParseCasing(doc.Naming.PropertyCasing, naming.CasingPascal); err != nil {
		return Config{}, fmt.Errorf("config: %s: propertyCasing: %w", source, err)
	}
	if cfg.Naming.EnumCasing, err = naming.ParseCasing(doc.Naming.EnumCasing, naming.CasingPascal); err != nil {
		return Config{}, fmt.Errorf("config: %s: enumCasing: %w", source, err)
	}
	return cfg, nil
}

// Policies builds the name policies described by the configuration. The
// zero Config yields the default policies.
func (c Config) Policies() (*naming.TypeNamePolicy, *naming.PropertyNamePolicy, *naming.EnumNamePolicy) {
	resolver := naming.NewResolver(
		naming.WithMappings(c.Naming.Mappings),
		naming.WithReservedWords(c.Naming.ReservedWords...),
	)
	propertyCasing := c.Naming.PropertyCasing
	if propertyCasing == "" {
		propertyCasing = naming.CasingPascal
	}
	enumCasing := c.Naming.EnumCasing
	if enumCasing == "" {
		enumCasing = naming.CasingPascal
	}
	return naming.NewTypeNamePolicy(resolver),
		naming.NewPropertyNamePolicy(resolver, propertyCasing),
		naming.NewEnumNamePolicy(resolver, enumCasing)
}
