// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/stack/cloudformation"
)

const synthDoc = `
Synth resolves the stack configuration and writes the CloudFormation
template deploying it. Without Account and Region context variables the
template refers to the deploying account and region through pseudo
parameters.

Examples:
    certstack synth -c Domains=example.com,example.org
    certstack synth --format json -o template.json
    certstack synth --graph
`

type synthCommand struct {
	stackCommand
	out   cmd.Output
	graph bool
}

func newSynthCommand() cmd.Command {
	return &synthCommand{}
}

func (c *synthCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "synth",
		Purpose: "write the CloudFormation template of the stack",
		Doc:     synthDoc,
	}
}

func (c *synthCommand) SetFlags(f *gnuflag.FlagSet) {
	c.stackCommand.SetFlags(f)
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
	f.BoolVar(&c.graph, "graph", false, "write the resource graph instead of the template")
}

func (c *synthCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

func (c *synthCommand) Run(ctx *cmd.Context) error {
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
	if c.graph {
		return c.out.Write(ctx, graph)
	}
	template, err := cloudformation.Render(graph)
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, template)
}
