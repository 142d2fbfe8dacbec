// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package deploy applies a resource graph to an AWS account. Resources are
// applied in dependency order: the storage target, the execution identity,
// then each job's function and schedule. Every resource is tagged with the
// stack that owns it, and resources owned by another stack are never
// modified.
package deploy

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"

	"github.com/juju/certstack/internal/stack/resource"
)

var logger = loggo.GetLogger("certstack.deploy")

const (
	// DefaultRetryAttempts bounds the retries of a single call that fails
	// while AWS propagates an earlier change.
	DefaultRetryAttempts = 10

	// DefaultRetryDelay is the delay before the first retry. It doubles on
	// each attempt up to maxRetryDelay.
	DefaultRetryDelay = 2 * time.Second

	maxRetryDelay = 30 * time.Second

	unresolvedToken = "${AWS::"
)

// Config holds the dependencies of a Deployer.
type Config struct {
	S3          S3Client
	IAM         IAMClient
	Lambda      LambdaClient
	EventBridge EventBridgeClient

	// Region is the region the clients talk to. Buckets outside us-east-1
	// need it as their location constraint.
	Region string

	Clock clock.Clock

	// ReadArtifact returns the bytes of a compute unit's deployment
	// package. Defaults to os.ReadFile.
	ReadArtifact func(ref string) ([]byte, error)

	RetryAttempts int
	RetryDelay    time.Duration

	// Prune removes the jobs of the previous graph whose domains are no
	// longer configured. Without it they are left in place.
	Prune bool
}

// Validate returns an error if the config cannot be used.
func (c Config) Validate() error {
	if c.S3 == nil {
		return errors.NotValidf("nil S3")
	}
	if c.IAM == nil {
		return errors.NotValidf("nil IAM")
	}
	if c.Lambda == nil {
		return errors.NotValidf("nil Lambda")
	}
	if c.EventBridge == nil {
		return errors.NotValidf("nil EventBridge")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.RetryAttempts < 0 {
		return errors.NotValidf("negative RetryAttempts")
	}
	if c.RetryDelay < 0 {
		return errors.NotValidf("negative RetryDelay")
	}
	return nil
}

// Deployer applies resource graphs.
type Deployer struct {
	config Config
}

// NewDeployer returns a Deployer using the clients in config.
func NewDeployer(config Config) (*Deployer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.ReadArtifact == nil {
		config.ReadArtifact = os.ReadFile
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = DefaultRetryAttempts
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	return &Deployer{config: config}, nil
}

// Result describes what a deployment did.
type Result struct {
	// Changes lists every resource touched, in the order applied.
	// Resources left as they were are not listed.
	Changes []resource.Change

	RoleARN string

	// FunctionARNs maps each deployed domain to its function.
	FunctionARNs map[string]string
}

func (r *Result) record(kind resource.Kind, name, logicalID, domain string, action resource.Action) {
	r.Changes = append(r.Changes, resource.Change{
		Kind:      kind,
		Name:      name,
		LogicalID: logicalID,
		Domain:    domain,
		Action:    action,
	})
}

// Deploy applies graph. previous is the graph that was last deployed, or
// nil. configured lists every domain of the configuration graph was
// derived from; graph may hold fewer jobs when some domains could not be
// provisioned. Only jobs of previous whose domain is not configured are
// pruned, so the running jobs of failed domains are left alone. Deploy
// stops at the first failure, and the returned Result describes what was
// applied up to that point.
func (d *Deployer) Deploy(ctx context.Context, graph, previous *resource.Graph, configured []string) (*Result, error) {
	if err := checkResolved(graph); err != nil {
		return nil, errors.Trace(err)
	}
	result := &Result{FunctionARNs: make(map[string]string)}

	if err := d.ensureStorage(ctx, graph.Storage, result); err != nil {
		return result, errors.Trace(err)
	}
	roleARN, err := d.ensureIdentity(ctx, graph.Identity, result)
	if err != nil {
		return result, errors.Trace(err)
	}
	result.RoleARN = roleARN

	artifacts := make(map[string][]byte)
	for _, job := range graph.Jobs {
		if err := ctx.Err(); err != nil {
			return result, errors.Annotate(err, "deployment aborted")
		}
		code, ok := artifacts[job.Compute.ArtifactRef]
		if !ok {
			if code, err = d.config.ReadArtifact(job.Compute.ArtifactRef); err != nil {
				return result, errors.Annotatef(err, "reading artifact %q", job.Compute.ArtifactRef)
			}
			logger.Infof("read artifact %q (%s)", job.Compute.ArtifactRef, humanize.IBytes(uint64(len(code))))
			artifacts[job.Compute.ArtifactRef] = code
		}
		functionARN, err := d.ensureJob(ctx, job, roleARN, code, result)
		if err != nil {
			return result, errors.Annotatef(err, "deploying job for %q", job.Domain)
		}
		result.FunctionARNs[job.Domain] = functionARN
	}

	for _, job := range resource.Held(previous, graph, configured) {
		logger.Warningf("job for %q could not be provisioned, leaving %q as deployed", job.Domain, job.Compute.Name)
	}
	removed := resource.Removed(previous, configured)
	if !d.config.Prune {
		for _, job := range removed {
			logger.Infof("job for %q is no longer configured, leaving %q in place", job.Domain, job.Compute.Name)
		}
		return result, nil
	}
	for _, job := range removed {
		if err := d.removeJob(ctx, job, result); err != nil {
			return result, errors.Annotatef(err, "removing job for %q", job.Domain)
		}
	}
	return result, nil
}

// checkResolved fails if the graph still refers to an account or region by
// placeholder. Only templates can resolve those.
func checkResolved(graph *resource.Graph) error {
	if graph == nil {
		return errors.NotValidf("nil graph")
	}
	for _, grant := range graph.Identity.Grants {
		for _, r := range grant.Resources {
			if strings.Contains(r, unresolvedToken) {
				return errors.NotValidf("grant %q with unresolved resource %q", grant.Sid, r)
			}
		}
	}
	return nil
}

// retry calls f until it succeeds, fails with an error retryable does not
// accept, or runs out of attempts.
func (d *Deployer) retry(ctx context.Context, what string, retryable func(error) bool, f func() error) error {
	err := retry.Call(retry.CallArgs{
		Func: f,
		IsFatalError: func(err error) bool {
			return !retryable(err)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("%s: attempt %d: %v", what, attempt, err)
		},
		Attempts:    d.config.RetryAttempts,
		Delay:       d.config.RetryDelay,
		MaxDelay:    maxRetryDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       d.config.Clock,
		Stop:        ctx.Done(),
	})
	if err == nil {
		return nil
	}
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) || retry.IsDurationExceeded(err) {
		return retry.LastError(err)
	}
	return err
}

func stackTagMatches(tags map[string]string, stack string) (tagged, matches bool) {
	value, ok := tags[resource.StackTagKey]
	return ok, value == stack
}

func sortedKeys(m map[string]string) []string {
	keys := set.NewStrings()
	for k := range m {
		keys.Add(k)
	}
	return keys.SortedValues()
}
