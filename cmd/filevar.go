// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"os"

	"github.com/juju/errors"
)

// FileVar represents a path to a file.
type FileVar struct {
	Path string
}

// Set stores the path.
func (f *FileVar) Set(v string) error {
	f.Path = v
	return nil
}

// IsSet reports whether a path was given.
func (f *FileVar) IsSet() bool {
	return f.Path != ""
}

// Read returns the contents of the file, resolved relative to ctx.
func (f *FileVar) Read(ctx *Context) ([]byte, error) {
	if f.Path == "" {
		return nil, errors.NotValidf("empty path")
	}
	return os.ReadFile(ctx.AbsPath(f.Path))
}

// String returns the path to the file.
func (f *FileVar) String() string {
	return f.Path
}
