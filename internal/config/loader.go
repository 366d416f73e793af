package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// placeholderPattern matches ${VAR} and ${VAR:-default} in the raw
// YAML. Secrets like bot tokens and API keys are expected to arrive
// through the environment rather than sit in the file.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads a vault configuration file, interpolates environment
// placeholders, and decodes it. Unknown top-level keys are rejected so
// a misspelled section fails loudly instead of being ignored.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := interpolate(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// interpolate substitutes every ${VAR} and ${VAR:-default} placeholder.
// A placeholder with neither an environment value nor a default is an
// error; all such names are reported together.
func interpolate(raw []byte) ([]byte, error) {
	var missing []string

	out := placeholderPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := placeholderPattern.FindSubmatch(match)
		name := string(subs[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if subs[2] != nil {
			return subs[2]
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		errs := make([]error, 0, len(missing))
		for _, name := range missing {
			errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		}
		return nil, errors.Join(errs...)
	}
	return out, nil
}
