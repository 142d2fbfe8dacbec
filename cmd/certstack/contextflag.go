// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"sort"
	"strings"

	"github.com/juju/errors"

	"github.com/juju/certstack/internal/stack/config"
)

// contextValues implements gnuflag.Value for the repeatable -c flag. Each
// use sets one context variable as key=value.
type contextValues map[string]string

// Set parses a single key=value pair.
func (v contextValues) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return errors.NotValidf("context variable %q (expected key=value)", s)
	}
	v[key] = value
	return nil
}

// String returns the pairs in key order.
func (v contextValues) String() string {
	pairs := make([]string, 0, len(v))
	for key, value := range v {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// source returns the values as a context source.
func (v contextValues) source() config.MapSource {
	src := make(config.MapSource, len(v))
	for key, value := range v {
		src[key] = value
	}
	return src
}
