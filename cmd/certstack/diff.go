// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/stack/resource"
)

const diffDoc = `
Diff compares the configured stack with the one recorded by the last
deployment and lists what a deployment would create, update or delete.
Deletions only happen when deploying with --prune. With --partial,
domains that could not be provisioned are shown unchanged: deploying
leaves their jobs as they are.
`

type diffCommand struct {
	stackCommand
	out cmd.Output
	all bool
}

func newDiffCommand() cmd.Command {
	return &diffCommand{}
}

func (c *diffCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "diff",
		Purpose: "show what a deployment would change",
		Doc:     diffDoc,
	}
}

func (c *diffCommand) SetFlags(f *gnuflag.FlagSet) {
	c.stackCommand.SetFlags(f)
	c.out.AddFlags(f, "tabular", withTabular(formatChangesTabular))
	f.BoolVar(&c.all, "all", false, "include unchanged resources")
}

func (c *diffCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *diffCommand) Run(ctx *cmd.Context) error {
	cfg, err := c.configuration(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	previous, err := c.previous(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	graph, err := c.synthesize(ctx, cfg, previous)
	if err != nil {
		return errors.Trace(err)
	}

	var changes []resource.Change
	for _, change := range resource.Diff(previous, graph, cfg.Domains()) {
		if c.all || change.Action != resource.ActionUnchanged {
			changes = append(changes, change)
		}
	}
	return c.out.Write(ctx, formatChanges(changes))
}
