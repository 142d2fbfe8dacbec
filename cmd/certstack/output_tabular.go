// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"

	"github.com/juju/ansiterm"
	"github.com/juju/errors"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/stack/resource"
)

var actionColors = map[string]ansiterm.Color{
	string(resource.ActionCreate): ansiterm.Green,
	string(resource.ActionUpdate): ansiterm.Yellow,
	string(resource.ActionDelete): ansiterm.Red,
}

func newTabWriter(w io.Writer) *ansiterm.TabWriter {
	return ansiterm.NewTabWriter(w, 0, 1, 1, ' ', 0)
}

func withTabular(tabular cmd.Formatter) map[string]cmd.Formatter {
	formatters := map[string]cmd.Formatter{"tabular": tabular}
	for name, f := range cmd.DefaultFormatters {
		formatters[name] = f
	}
	return formatters
}

// formatChangesTabular writes one row per change.
func formatChangesTabular(w io.Writer, value any) error {
	changes, ok := value.([]FormattedChange)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", changes, value)
	}
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "No changes.")
		return errors.Trace(err)
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ACTION\tKIND\tNAME\tDOMAIN")
	for _, change := range changes {
		if color, ok := actionColors[change.Action]; ok {
			tw.SetForeground(color)
		}
		fmt.Fprint(tw, change.Action)
		tw.Reset()
		fmt.Fprintf(tw, "\t%s\t%s\t%s\n", change.Kind, change.Name, dash(change.Domain))
	}
	return errors.Trace(tw.Flush())
}

// formatStackTabular writes one row per deployed resource.
func formatStackTabular(w io.Writer, value any) error {
	stack, ok := value.(FormattedStack)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", stack, value)
	}

	tw := newTabWriter(w)
	fmt.Fprintf(tw, "Stack: %s\n\n", stack.Stack)
	fmt.Fprintln(tw, "KIND\tNAME\tDOMAIN\tDETAIL")
	for _, r := range stack.Resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Kind, r.Name, dash(r.Domain), dash(r.Detail))
	}
	return errors.Trace(tw.Flush())
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
