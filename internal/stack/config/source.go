// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// ContextSource is a read-only key-value store of context variables.
type ContextSource interface {
	// Lookup returns the value held for key and whether it was present.
	Lookup(key string) (any, bool)
}

// MapSource is a ContextSource backed by a map.
type MapSource map[string]any

// Lookup is part of the ContextSource interface.
func (m MapSource) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Layered looks keys up in each source in turn; the first source holding
// the key wins.
type Layered []ContextSource

// Lookup is part of the ContextSource interface.
func (l Layered) Lookup(key string) (any, bool) {
	for _, src := range l {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return nil, false
}

type contextFile struct {
	Context map[string]any `yaml:"context"`
}

// ParseFile parses a YAML (or JSON) document holding a top level
// "context" map, as found in a cdk.json file.
func ParseFile(data []byte) (MapSource, error) {
	var f contextFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Annotate(err, "parsing context file")
	}
	if f.Context == nil {
		return nil, errors.NotValidf("context file without a context map")
	}
	return MapSource(f.Context), nil
}

// LoadFile reads and parses the context file at path.
func LoadFile(path string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	src, err := ParseFile(data)
	return src, errors.Annotatef(err, "loading %q", path)
}
