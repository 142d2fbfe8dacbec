// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package synth_test

import (
	"context"
	"fmt"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/certstack/internal/stack/config"
	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/resource"
	"github.com/juju/certstack/internal/stack/synth"
)

type synthSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&synthSuite{})

func scenario() config.MapSource {
	return config.MapSource{
		config.OutputBucketNameKey: "certs-out",
		config.DomainsKey:          []string{"a.example.com", "b.example.com"},
		config.AcmeServerKey:       "https://acme.example/directory",
		config.AccountEmailKey:     "ops@example.com",
	}
}

func (s *synthSuite) TestScenario(c *gc.C) {
	graph, err := synth.Synthesize(context.Background(), scenario(), synth.Options{})
	c.Assert(err, jc.ErrorIsNil)

	c.Check(graph.Storage.Name, gc.Equals, "certs-out")
	c.Check(graph.Identity.Grants, gc.HasLen, 3)
	c.Assert(graph.Jobs, gc.HasLen, 2)
	c.Check(graph.Domains(), jc.DeepEquals, []string{"a.example.com", "b.example.com"})

	a, b := graph.Jobs[0], graph.Jobs[1]
	c.Check(a.Compute.Name, gc.Equals, resource.ComputeName("CertBotStack", "a.example.com"))
	c.Check(b.Compute.Name, gc.Equals, resource.ComputeName("CertBotStack", "b.example.com"))
	c.Check(a.Compute.Environment["FQDN"], gc.Equals, "a.example.com")
	c.Check(b.Compute.Environment["FQDN"], gc.Equals, "b.example.com")
	for _, key := range []string{"OUTPUT_BUCKET", "ACME_SERVER", "ACCOUNT_EMAIL"} {
		c.Check(a.Compute.Environment[key], gc.Equals, b.Compute.Environment[key])
	}
}

func (s *synthSuite) TestJobInvariants(c *gc.C) {
	src := scenario()
	var domains []string
	for i := 0; i < 25; i++ {
		domains = append(domains, fmt.Sprintf("host%02d.example.com", i))
	}
	src[config.DomainsKey] = domains

	graph, err := synth.Synthesize(context.Background(), src, synth.Options{Concurrency: 3})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(graph.Domains(), jc.DeepEquals, domains)

	targets := make(map[string]bool)
	for _, job := range graph.Jobs {
		c.Check(job.Compute.SortedEnvironmentKeys(), jc.SameContents, resource.EnvironmentKeys)
		c.Check(job.Compute.Environment["FQDN"], gc.Equals, job.Domain)
		c.Check(job.Compute.Environment["OUTPUT_BUCKET"], gc.Equals, graph.Storage.Name)
		c.Check(job.Compute.Identity, gc.Equals, graph.Identity.Name)
		c.Check(job.Trigger.Target, gc.Equals, job.Compute.Name)
		c.Check(targets[job.Trigger.Target], jc.IsFalse)
		targets[job.Trigger.Target] = true
	}
}

func (s *synthSuite) TestEmptyDomains(c *gc.C) {
	src := scenario()
	src[config.DomainsKey] = []string{}

	graph, err := synth.Synthesize(context.Background(), src, synth.Options{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(graph.Storage.Name, gc.Equals, "certs-out")
	c.Check(graph.Identity.Grants, gc.HasLen, 3)
	c.Check(graph.Jobs, gc.HasLen, 0)
}

func (s *synthSuite) TestMissingAcmeServer(c *gc.C) {
	src := scenario()
	delete(src, config.AcmeServerKey)

	graph, err := synth.Synthesize(context.Background(), src, synth.Options{})
	c.Assert(err, jc.ErrorIs, stackerrors.MissingConfiguration)
	c.Assert(err, gc.ErrorMatches, "context variable AcmeServer is required")
	c.Check(graph, gc.IsNil)
}

func (s *synthSuite) TestIdempotent(c *gc.C) {
	first, err := synth.Synthesize(context.Background(), scenario(), synth.Options{})
	c.Assert(err, jc.ErrorIsNil)

	second, err := synth.Synthesize(context.Background(), scenario(), synth.Options{Existing: first})
	c.Assert(err, jc.ErrorIsNil)

	c.Check(second.Storage, gc.Equals, first.Storage)
	c.Check(second.Identity.Equal(first.Identity), jc.IsTrue)
	c.Assert(second.Jobs, gc.HasLen, len(first.Jobs))
	for i := range first.Jobs {
		c.Check(second.Jobs[i].Equal(first.Jobs[i]), jc.IsTrue)
	}
	for _, ch := range resource.Diff(first, second, second.Domains()) {
		c.Check(ch.Action, gc.Equals, resource.ActionUnchanged)
	}
}

func (s *synthSuite) TestConflictReturnsPartialGraph(c *gc.C) {
	first, err := synth.Synthesize(context.Background(), scenario(), synth.Options{})
	c.Assert(err, jc.ErrorIsNil)
	// Pretend b.example.com was deployed from another artifact.
	first.Jobs[1].Compute.ArtifactRef = "./old-bot.zip"

	graph, err := synth.Synthesize(context.Background(), scenario(), synth.Options{Existing: first})
	c.Assert(err, jc.ErrorIs, stackerrors.ConflictingJobDefinition)
	c.Assert(err, gc.ErrorMatches, `provisioning job for "b.example.com": .*`)
	c.Assert(graph, gc.NotNil)
	c.Check(graph.Domains(), jc.DeepEquals, []string{"a.example.com"})
}

func (s *synthSuite) TestArtifactChangeKeepsDeployedJobs(c *gc.C) {
	first, err := synth.Synthesize(context.Background(), scenario(), synth.Options{})
	c.Assert(err, jc.ErrorIsNil)

	src := scenario()
	src[config.ArtifactKey] = "./cert-bot-v2.zip"
	graph, err := synth.Synthesize(context.Background(), src, synth.Options{Existing: first})
	c.Assert(err, jc.ErrorIs, stackerrors.ConflictingJobDefinition)
	c.Assert(graph, gc.NotNil)
	c.Check(graph.Jobs, gc.HasLen, 0)

	// Every domain is still configured, so none of them may be pruned.
	configured := []string{"a.example.com", "b.example.com"}
	c.Check(resource.Removed(first, configured), gc.HasLen, 0)
	c.Check(resource.Held(first, graph, configured), gc.HasLen, 2)
	for _, ch := range resource.Diff(first, graph, configured) {
		c.Check(ch.Action, gc.Not(gc.Equals), resource.ActionDelete, gc.Commentf("%s %s", ch.Kind, ch.Name))
	}
}

func (s *synthSuite) TestBucketConflictReturnsNoGraph(c *gc.C) {
	existing := &resource.Graph{
		Stack:   "Other",
		Storage: resource.StorageTarget{Name: "certs-out", Stack: "Other"},
	}
	graph, err := synth.Synthesize(context.Background(), scenario(), synth.Options{Existing: existing})
	c.Assert(err, jc.ErrorIs, stackerrors.ResourceNamingConflict)
	c.Check(graph, gc.IsNil)
}

func (s *synthSuite) TestCollidingPhysicalNames(c *gc.C) {
	src := scenario()
	src[config.DomainsKey] = []string{"a.example.com", "b.example.com", "a-example.com"}

	graph, err := synth.Synthesize(context.Background(), src, synth.Options{})
	c.Assert(err, jc.ErrorIs, stackerrors.ConflictingJobDefinition)
	c.Assert(err, gc.ErrorMatches, `provisioning job for "a-example.com": .* is also derived for domain "a.example.com"`)
	c.Check(graph.Domains(), jc.DeepEquals, []string{"a.example.com", "b.example.com"})
}

func (s *synthSuite) TestCancelled(c *gc.C) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	graph, err := synth.Synthesize(ctx, scenario(), synth.Options{})
	c.Assert(err, jc.ErrorIs, context.Canceled)
	c.Assert(err, gc.ErrorMatches, "synthesis aborted: context canceled")
	c.Check(graph, gc.IsNil)
}

func (s *synthSuite) TestSynthesizeConfigWithEnvironment(c *gc.C) {
	cfg, err := config.Resolve(scenario())
	c.Assert(err, jc.ErrorIsNil)

	graph, err := synth.SynthesizeConfig(context.Background(), cfg.WithEnvironment("123456789012", "us-west-2"), synth.Options{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(graph.Identity.Grants[1].Resources, jc.DeepEquals, []string{
		"arn:aws:secretsmanager:us-west-2:123456789012:secret:acme/*",
	})
}
