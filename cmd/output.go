// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"gopkg.in/yaml.v3"
)

// Formatter writes value to w in some format.
type Formatter func(w io.Writer, value any) error

// FormatYaml writes value as YAML, unless value is nil.
func FormatYaml(w io.Writer, value any) error {
	if value == nil {
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(enc.Close())
}

// FormatJson writes value as indented JSON followed by a newline.
func FormatJson(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	_, err = w.Write(append(data, '\n'))
	return errors.Trace(err)
}

// DefaultFormatters are used by most commands.
var DefaultFormatters = map[string]Formatter{
	"yaml": FormatYaml,
	"json": FormatJson,
}

// formatterValue implements gnuflag.Value for the --format flag.
type formatterValue struct {
	name       string
	formatters map[string]Formatter
}

// newFormatterValue returns a new formatterValue. The initial Formatter name
// must be present in formatters.
func newFormatterValue(initial string, formatters map[string]Formatter) *formatterValue {
	v := &formatterValue{formatters: formatters}
	if err := v.Set(initial); err != nil {
		panic(err)
	}
	return v
}

// Set stores the chosen formatter name in v.name.
func (v *formatterValue) Set(value string) error {
	if v.formatters[value] == nil {
		return errors.Errorf("unknown format %q", value)
	}
	v.name = value
	return nil
}

// String returns the chosen formatter name.
func (v *formatterValue) String() string {
	return v.name
}

func (v *formatterValue) doc() string {
	choices := make([]string, 0, len(v.formatters))
	for name := range v.formatters {
		choices = append(choices, name)
	}
	sort.Strings(choices)
	return "specify output format (" + strings.Join(choices, "|") + ")"
}

// Output interprets the --format and --output flags.
type Output struct {
	formatter *formatterValue
	outPath   string
}

// AddFlags injects the output flags into f.
func (c *Output) AddFlags(f *gnuflag.FlagSet, name string, formatters map[string]Formatter) {
	c.formatter = newFormatterValue(name, formatters)
	f.Var(c.formatter, "format", c.formatter.doc())
	f.StringVar(&c.outPath, "o", "", "specify an output file")
	f.StringVar(&c.outPath, "output", "", "")
}

// Name returns the name of the chosen format.
func (c *Output) Name() string {
	return c.formatter.name
}

// Write formats value and writes it to the output file, or to stdout if
// none was given.
func (c *Output) Write(ctx *Context, value any) error {
	var buf bytes.Buffer
	if err := c.formatter.formatters[c.formatter.name](&buf, value); err != nil {
		return errors.Annotatef(err, "formatting %s", c.formatter.name)
	}
	if c.outPath == "" {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return errors.Trace(err)
	}
	path := ctx.AbsPath(c.outPath)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Annotatef(err, "writing %q", path)
	}
	ctx.Infof("wrote %s", path)
	return nil
}
