// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/stack/state"
)

type showCommand struct {
	statePath string
	out       cmd.Output
}

func newShowCommand() cmd.Command {
	return &showCommand{}
}

func (c *showCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "show",
		Purpose: "list the resources of the last deployment",
	}
}

func (c *showCommand) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&c.statePath, "state", defaultStateFile, "file recording the last deployed stack")
	c.out.AddFlags(f, "tabular", withTabular(formatStackTabular))
}

func (c *showCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *showCommand) Run(ctx *cmd.Context) error {
	path := ctx.AbsPath(c.statePath)
	previous, err := state.Load(path)
	if err != nil {
		return errors.Trace(err)
	}
	if previous == nil {
		return errors.NotFoundf("deployment state %q", path)
	}
	return c.out.Write(ctx, formatStack(previous))
}
