// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/stack/config"
	"github.com/juju/certstack/internal/stack/resource"
	"github.com/juju/certstack/internal/stack/state"
	"github.com/juju/certstack/internal/stack/synth"
)

const (
	defaultContextFile = "cdk.json"
	defaultStateFile   = ".certstack/state.yaml"
)

// stackCommand holds the options shared by every command that works on a
// stack's configuration or deployment state.
type stackCommand struct {
	values      contextValues
	contextFile cmd.FileVar
	statePath   string
	concurrency int
	partial     bool
}

func (c *stackCommand) SetFlags(f *gnuflag.FlagSet) {
	c.values = make(contextValues)
	f.Var(c.values, "c", "set a context variable (key=value, repeatable)")
	f.Var(c.values, "context", "")
	f.Var(&c.contextFile, "context-file", "read context variables from this file (default "+defaultContextFile+" if present)")
	f.StringVar(&c.statePath, "state", defaultStateFile, "file recording the last deployed stack")
	f.IntVar(&c.concurrency, "concurrency", synth.DefaultConcurrency, "number of domains provisioned in parallel")
	f.BoolVar(&c.partial, "partial", false, "continue with the domains that could be provisioned when others fail")
}

// source layers the -c values over the context file.
func (c *stackCommand) source(ctx *cmd.Context) (config.ContextSource, error) {
	sources := config.Layered{c.values.source()}
	path := c.contextFile.Path
	if path == "" {
		if _, err := os.Stat(ctx.AbsPath(defaultContextFile)); err != nil {
			return sources, nil
		}
		path = defaultContextFile
	}
	file, err := config.LoadFile(ctx.AbsPath(path))
	if err != nil {
		return nil, errors.Annotatef(err, "loading context file %q", path)
	}
	return append(sources, file), nil
}

// configuration resolves the stack configuration.
func (c *stackCommand) configuration(ctx *cmd.Context) (config.Configuration, error) {
	src, err := c.source(ctx)
	if err != nil {
		return config.Configuration{}, errors.Trace(err)
	}
	cfg, err := config.Resolve(src)
	return cfg, errors.Trace(err)
}

// previous returns the graph recorded by the last deployment, or nil.
func (c *stackCommand) previous(ctx *cmd.Context) (*resource.Graph, error) {
	graph, err := state.Load(ctx.AbsPath(c.statePath))
	return graph, errors.Trace(err)
}

// synthesize derives the graph for cfg. A partially derived graph is only
// returned when --partial was given; the failures are reported as
// warnings.
func (c *stackCommand) synthesize(ctx *cmd.Context, cfg config.Configuration, previous *resource.Graph) (*resource.Graph, error) {
	graph, err := synth.SynthesizeConfig(ctx, cfg, synth.Options{
		Existing:    previous,
		Concurrency: c.concurrency,
	})
	if err == nil {
		return graph, nil
	}
	if graph == nil || !c.partial {
		return nil, errors.Trace(err)
	}
	ctx.Infof("WARNING %v", err)
	ctx.Infof("WARNING continuing with %d of %d domains", len(graph.Jobs), len(cfg.Domains()))
	return graph, nil
}
