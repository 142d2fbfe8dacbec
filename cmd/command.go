// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cmd is a small framework for commands driven by gnuflag.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

// ErrSilent can be returned from Run to exit with a failure status without
// printing the error.
const ErrSilent = errors.ConstError("cmd: error out silently")

// Info holds everything necessary to describe a Command's intent and usage.
type Info struct {
	// Name is the Command's name.
	Name string

	// Args describes the command's expected arguments.
	Args string

	// Purpose is a short explanation of the Command's purpose.
	Purpose string

	// Doc is the long documentation for the Command.
	Doc string
}

// Usage combines Name and Args to describe the Command's intended usage.
func (i *Info) Usage() string {
	if i.Args == "" {
		return i.Name + " [options]"
	}
	return fmt.Sprintf("%s [options] %s", i.Name, i.Args)
}

// Command is implemented by every command-line operation.
type Command interface {
	// Info returns information about the command.
	Info() *Info

	// SetFlags adds the command's options to f.
	SetFlags(f *gnuflag.FlagSet)

	// Init is called with the positional arguments left once the
	// flags have been parsed.
	Init(args []string) error

	// Run executes the command.
	Run(ctx *Context) error
}

// Context is the environment a command runs in.
type Context struct {
	context.Context

	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultContext returns a Context for the current process.
func DefaultContext(ctx context.Context) (*Context, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Context{
		Context: ctx,
		Dir:     dir,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}, nil
}

// AbsPath returns path resolved against the context's directory.
func (ctx *Context) AbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ctx.Dir, path)
}

// Infof writes a progress message to stderr.
func (ctx *Context) Infof(format string, args ...any) {
	fmt.Fprintf(ctx.Stderr, format+"\n", args...)
}

// NewFlagSet returns a FlagSet initialized for use with c.
func NewFlagSet(c Command, out io.Writer) *gnuflag.FlagSet {
	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() { PrintUsage(c, out) }
	c.SetFlags(f)
	return f
}

// PrintUsage writes usage information for c to w.
func PrintUsage(c Command, w io.Writer) {
	i := c.Info()
	fmt.Fprintf(w, "usage: %s\n", i.Usage())
	fmt.Fprintf(w, "purpose: %s\n", i.Purpose)
	f := gnuflag.NewFlagSet(i.Name, gnuflag.ContinueOnError)
	c.SetFlags(f)
	f.SetOutput(w)
	fmt.Fprintf(w, "\noptions:\n")
	f.PrintDefaults()
	if i.Doc != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(i.Doc))
	}
}

// Parse parses args on c and hands the positional arguments to Init. It
// must be called before c is Run.
func Parse(c Command, intersperse bool, args []string, out io.Writer) error {
	f := NewFlagSet(c, out)
	if err := f.Parse(intersperse, args); err != nil {
		return err
	}
	return c.Init(f.Args())
}

// CheckEmpty returns an error if args is not empty.
func CheckEmpty(args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unrecognized args: %q", args)
	}
	return nil
}

// Main parses and runs c, returning the process exit code.
func Main(c Command, ctx *Context, args []string) int {
	if err := Parse(c, false, args, ctx.Stderr); err != nil {
		if err == gnuflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(ctx.Stderr, "ERROR %v\n", err)
		return 2
	}
	if err := c.Run(ctx); err != nil {
		if errors.Is(err, ErrSilent) {
			return 1
		}
		logger.Debugf("%s command failed: %s", c.Info().Name, errors.ErrorStack(err))
		fmt.Fprintf(ctx.Stderr, "ERROR %v\n", err)
		return 1
	}
	return 0
}
