// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/deploy"
	"github.com/juju/certstack/internal/stack/resource"
	"github.com/juju/certstack/internal/stack/state"
)

const deployDoc = `
Deploy creates or updates the stack's bucket, role, functions and
schedules in the configured AWS account, then records the deployed stack
in the state file. Resources tagged as belonging to another stack are
never modified.

Jobs for domains that are no longer configured are left running unless
--prune is given. With --partial, domains that could not be provisioned
keep their deployed jobs; they are never pruned.

The default runtime, provided.al2023, runs the executable named
"bootstrap" in the deployment package and ignores the handler. Set the
Runtime and Handler context variables for packages built otherwise.

Examples:
    certstack deploy --region eu-west-1
    certstack deploy -c Domains=example.com --prune
`

type deployCommand struct {
	stackCommand
	aws         awsFlags
	out         cmd.Output
	prune       bool
	lockTimeout time.Duration

	newClients func(ctx context.Context, region string) (awsClients, error)
}

// awsClients holds the AWS clients a deployment talks to, and the region
// they were configured for.
type awsClients struct {
	Region      string
	STS         deploy.STSClient
	S3          deploy.S3Client
	IAM         deploy.IAMClient
	Lambda      deploy.LambdaClient
	EventBridge deploy.EventBridgeClient
}

func newDeployCommand() cmd.Command {
	c := &deployCommand{}
	c.newClients = c.loadClients
	return c
}

// loadClients builds the clients from the --region, --profile and
// credential flags, falling back to region.
func (c *deployCommand) loadClients(ctx context.Context, region string) (awsClients, error) {
	awsCfg, err := c.aws.load(ctx, region)
	if err != nil {
		return awsClients{}, errors.Trace(err)
	}
	return awsClients{
		Region:      awsCfg.Region,
		STS:         sts.NewFromConfig(awsCfg),
		S3:          s3.NewFromConfig(awsCfg),
		IAM:         iam.NewFromConfig(awsCfg),
		Lambda:      lambda.NewFromConfig(awsCfg),
		EventBridge: eventbridge.NewFromConfig(awsCfg),
	}, nil
}

func (c *deployCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "deploy",
		Purpose: "deploy the stack to AWS",
		Doc:     deployDoc,
	}
}

func (c *deployCommand) SetFlags(f *gnuflag.FlagSet) {
	c.stackCommand.SetFlags(f)
	c.aws.SetFlags(f)
	c.out.AddFlags(f, "tabular", withTabular(formatChangesTabular))
	f.BoolVar(&c.prune, "prune", false, "remove the jobs of domains no longer configured")
	f.DurationVar(&c.lockTimeout, "lock-timeout", defaultLockTimeout, "how long to wait for another deployment using the same state file")
}

func (c *deployCommand) Init(args []string) error {
	if err := c.aws.validate(); err != nil {
		return errors.Trace(err)
	}
	return cmd.CheckEmpty(args)
}

func (c *deployCommand) Run(ctx *cmd.Context) error {
	cfg, err := c.configuration(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	clients, err := c.newClients(ctx, cfg.Region())
	if err != nil {
		return errors.Trace(err)
	}
	if cfg.Account() == "" || cfg.Region() == "" {
		env, err := deploy.ResolveEnvironment(ctx, clients.STS, clients.Region)
		if err != nil {
			return errors.Trace(err)
		}
		account := cfg.Account()
		if account == "" {
			account = env.Account
		}
		cfg = cfg.WithEnvironment(account, clients.Region)
	}

	release, err := acquireStateLock(ctx, ctx.AbsPath(c.statePath), c.lockTimeout)
	if err != nil {
		return errors.Trace(err)
	}
	defer release()

	previous, err := c.previous(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	graph, err := c.synthesize(ctx, cfg, previous)
	if err != nil {
		return errors.Trace(err)
	}

	deployer, err := deploy.NewDeployer(deploy.Config{
		S3:           clients.S3,
		IAM:          clients.IAM,
		Lambda:       clients.Lambda,
		EventBridge:  clients.EventBridge,
		Region:       clients.Region,
		Clock:        clock.WallClock,
		ReadArtifact: readArtifact(ctx),
		Prune:        c.prune,
	})
	if err != nil {
		return errors.Trace(err)
	}
	ctx.Infof("deploying stack %s with %d jobs to %s", graph.Stack, len(graph.Jobs), clients.Region)
	result, deployErr := deployer.Deploy(ctx, graph, previous, cfg.Domains())
	if result != nil {
		if err := c.out.Write(ctx, formatChanges(result.Changes)); err != nil {
			return errors.Trace(err)
		}
	}
	if deployErr != nil {
		return errors.Trace(deployErr)
	}

	saved := retained(graph, previous, cfg.Domains(), c.prune)
	if err := state.Save(ctx.AbsPath(c.statePath), saved); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// readArtifact resolves artifact references against the working
// directory.
func readArtifact(ctx *cmd.Context) func(string) ([]byte, error) {
	return func(ref string) ([]byte, error) {
		var f cmd.FileVar
		if err := f.Set(ref); err != nil {
			return nil, errors.Trace(err)
		}
		return f.Read(ctx)
	}
}

// retained returns the graph to record after a deployment. Jobs of
// previous that graph does not hold still exist, and stay in the record:
// those of domains that could not be provisioned, and those of domains no
// longer configured unless they were pruned.
func retained(graph, previous *resource.Graph, configured []string, pruned bool) *resource.Graph {
	kept := resource.Held(previous, graph, configured)
	if !pruned {
		kept = append(kept, resource.Removed(previous, configured)...)
	}
	if len(kept) == 0 {
		return graph
	}
	saved := *graph
	saved.Jobs = append(append([]resource.ScheduledJob{}, graph.Jobs...), kept...)
	return &saved
}
