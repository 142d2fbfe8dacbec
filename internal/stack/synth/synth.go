// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package synth assembles the resource graph of a certificate renewal
// stack: resolve the configuration, derive the shared resources once,
// then derive one job per domain.
package synth

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"golang.org/x/sync/errgroup"

	"github.com/juju/certstack/internal/stack/config"
	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/provision"
	"github.com/juju/certstack/internal/stack/resource"
)

var logger = loggo.GetLogger("certstack.synth")

// DefaultConcurrency bounds how many jobs are derived at once.
const DefaultConcurrency = 4

// Options tunes a synthesis.
type Options struct {
	// Existing is the graph that was last deployed, or nil.
	Existing *resource.Graph

	// Concurrency bounds the number of jobs derived in parallel. Zero
	// means DefaultConcurrency.
	Concurrency int
}

// Synthesize resolves the configuration held by src and derives the
// complete resource graph from it. See SynthesizeConfig.
func Synthesize(ctx context.Context, src config.ContextSource, opts Options) (*resource.Graph, error) {
	cfg, err := config.Resolve(src)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return SynthesizeConfig(ctx, cfg, opts)
}

// SynthesizeConfig derives the resource graph for cfg. If the shared
// resources cannot be derived, no graph is returned. If some jobs cannot
// be derived, the graph holding the shared resources and every job that
// was derived is returned together with the first error in domain order;
// the caller decides whether a partial graph is worth deploying. Jobs are
// never partially built, and a cancelled context yields no graph at all.
func SynthesizeConfig(ctx context.Context, cfg config.Configuration, opts Options) (*resource.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Annotate(err, "synthesis aborted")
	}

	p := provision.NewProvisioner(opts.Existing)
	shared, err := p.ProvisionShared(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}

	domains := cfg.Domains()
	jobs := make([]*resource.ScheduledJob, len(domains))
	errs := make([]error, len(domains))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, domain := range domains {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			job, err := p.ProvisionJob(domain, cfg, shared)
			if err != nil {
				errs[i] = err
				return nil
			}
			jobs[i] = &job
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Annotate(err, "synthesis aborted")
	}
	checkUniqueNames(shared, domains, jobs, errs)

	graph := &resource.Graph{
		Stack:    cfg.StackName(),
		Storage:  shared.Storage,
		Identity: shared.Identity,
		Jobs:     make([]resource.ScheduledJob, 0, len(domains)),
	}
	for _, job := range jobs {
		if job != nil {
			graph.Jobs = append(graph.Jobs, *job)
		}
	}

	var first error
	for i, err := range errs {
		switch {
		case err == nil:
		case first == nil:
			first = errors.Annotatef(err, "provisioning job for %q", domains[i])
		default:
			logger.Warningf("provisioning job for %q: %v", domains[i], err)
		}
	}
	if first != nil {
		return graph, first
	}

	logger.Infof("synthesized stack %q with %d job(s)", graph.Stack, len(graph.Jobs))
	return graph, nil
}

// checkUniqueNames drops every job whose physical names were already
// derived for an earlier domain or a shared resource. Such jobs could
// never be deployed side by side with the first holder of the name.
func checkUniqueNames(shared resource.Shared, domains []string, jobs []*resource.ScheduledJob, errs []error) {
	owners := map[string]string{
		shared.Storage.Name:  "",
		shared.Identity.Name: "",
	}
	for i, job := range jobs {
		if job == nil {
			continue
		}
		for _, name := range []string{job.Compute.Name, job.Trigger.Name} {
			owner, taken := owners[name]
			if !taken {
				continue
			}
			if owner == "" {
				errs[i] = stackerrors.NewConflictingJobDefinition(domains[i],
					"name %q is used by a shared resource", name)
			} else {
				errs[i] = stackerrors.NewConflictingJobDefinition(domains[i],
					"name %q is also derived for domain %q", name, owner)
			}
			jobs[i] = nil
			break
		}
		if jobs[i] != nil {
			owners[job.Compute.Name] = job.Domain
			owners[job.Trigger.Name] = job.Domain
		}
	}
}
