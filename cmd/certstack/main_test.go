// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/certstack/cmd"
	"github.com/juju/certstack/internal/stack/config"
	"github.com/juju/certstack/internal/stack/resource"
	"github.com/juju/certstack/internal/stack/state"
	"github.com/juju/certstack/internal/stack/synth"
)

const contextFile = `{
  "app": "./cert-bot",
  "context": {
    "OutputBucketName": "certs-out",
    "Domains": ["a.example.com", "b.example.com"],
    "AcmeServer": "https://acme.example/directory",
    "AccountEmail": "ops@example.com"
  }
}`

type mainSuite struct {
	testing.IsolationSuite
	ctx *cmd.Context
}

var _ = gc.Suite(&mainSuite{})

func (s *mainSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.ctx = &cmd.Context{
		Context: context.Background(),
		Dir:     c.MkDir(),
		Stdin:   &bytes.Buffer{},
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}
	err := os.WriteFile(filepath.Join(s.ctx.Dir, "cdk.json"), []byte(contextFile), 0644)
	c.Assert(err, jc.ErrorIsNil)
}

func (s *mainSuite) run(c *gc.C, args ...string) (int, string, string) {
	s.ctx.Stdout = &bytes.Buffer{}
	s.ctx.Stderr = &bytes.Buffer{}
	code := cmd.Main(NewSuperCommand(), s.ctx, args)
	return code, s.ctx.Stdout.(*bytes.Buffer).String(), s.ctx.Stderr.(*bytes.Buffer).String()
}

func (s *mainSuite) saveState(c *gc.C, domains ...string) {
	graph, err := synth.Synthesize(context.Background(), config.MapSource{
		config.OutputBucketNameKey: "certs-out",
		config.DomainsKey:          append([]string{}, domains...),
		config.AcmeServerKey:       "https://acme.example/directory",
		config.AccountEmailKey:     "ops@example.com",
	}, synth.Options{})
	c.Assert(err, jc.ErrorIsNil)
	err = state.Save(filepath.Join(s.ctx.Dir, defaultStateFile), graph)
	c.Assert(err, jc.ErrorIsNil)
}

func (s *mainSuite) TestSynth(c *gc.C) {
	code, stdout, stderr := s.run(c, "synth")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stdout, gc.Matches, `(?s)AWSTemplateFormatVersion: "?2010-09-09"?\n.*`)
	c.Check(stdout, jc.Contains, "Type: AWS::Lambda::Function")
	c.Check(stdout, jc.Contains, "FunctionName: CertBotStack-CertBotLambda-b-example-com")
}

func (s *mainSuite) TestSynthOverridesContextFile(c *gc.C) {
	code, stdout, stderr := s.run(c, "synth", "--graph", "-c", "Domains=c.example.com", "-c", "StackName=Other")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stdout, jc.Contains, "domain: c.example.com")
	c.Check(stdout, gc.Not(jc.Contains), "a.example.com")
	c.Check(stdout, jc.Contains, "stack: Other")
}

func (s *mainSuite) TestSynthJSON(c *gc.C) {
	code, _, stderr := s.run(c, "synth", "--format", "json", "-o", "template.json")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	data, err := os.ReadFile(filepath.Join(s.ctx.Dir, "template.json"))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), jc.Contains, `"AWS::Events::Rule"`)
}

func (s *mainSuite) TestSynthMissingConfiguration(c *gc.C) {
	code, _, stderr := s.run(c, "synth", "--context-file", "missing.json", "-c", "OutputBucketName=x")
	c.Check(code, gc.Equals, 1)
	c.Check(stderr, jc.Contains, "missing.json")

	code, _, stderr = s.run(c, "synth", "-c", "AcmeServer=")
	c.Check(code, gc.Equals, 1)
	c.Check(stderr, jc.Contains, "context variable AcmeServer is required")
}

func (s *mainSuite) TestSynthBadContextFlag(c *gc.C) {
	code, _, _ := s.run(c, "synth", "-c", "novalue")
	c.Check(code, gc.Equals, 2)
}

func (s *mainSuite) TestDiffAgainstNothing(c *gc.C) {
	code, stdout, stderr := s.run(c, "diff")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stdout, jc.Contains, "ACTION")
	c.Check(stdout, jc.Contains, "create")
	c.Check(stdout, gc.Not(jc.Contains), "unchanged")
}

func (s *mainSuite) TestDiffAgainstState(c *gc.C) {
	s.saveState(c, "a.example.com", "old.example.com")

	code, stdout, stderr := s.run(c, "diff", "--format", "yaml")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stdout, jc.Contains, "name: CertBotStack-CertBotLambda-b-example-com")
	c.Check(stdout, jc.Contains, "action: delete")
	c.Check(stdout, gc.Not(jc.Contains), "CertBotStack-CertBotLambda-a-example-com")

	code, stdout, _ = s.run(c, "diff", "--all")
	c.Assert(code, gc.Equals, 0)
	c.Check(stdout, jc.Contains, "unchanged")
}

func (s *mainSuite) TestDiffNoChanges(c *gc.C) {
	s.saveState(c, "a.example.com", "b.example.com")

	code, stdout, _ := s.run(c, "diff")
	c.Assert(code, gc.Equals, 0)
	c.Check(stdout, gc.Equals, "No changes.\n")
}

func (s *mainSuite) TestShowWithoutState(c *gc.C) {
	code, _, stderr := s.run(c, "show")
	c.Check(code, gc.Equals, 1)
	c.Check(stderr, jc.Contains, "not found")
}

func (s *mainSuite) TestShow(c *gc.C) {
	s.saveState(c, "a.example.com")

	code, stdout, stderr := s.run(c, "show")
	c.Assert(code, gc.Equals, 0, gc.Commentf("stderr: %s", stderr))
	c.Check(stdout, jc.Contains, "Stack: CertBotStack")
	c.Check(stdout, jc.Contains, "CertBotStack-CertBotLambdaScheduler-a-example-com")
	c.Check(stdout, jc.Contains, "rate(7 days)")
}

func (s *mainSuite) TestDeployRejectsHalfCredentials(c *gc.C) {
	code, _, stderr := s.run(c, "deploy", "--access-key", "AKIA")
	c.Check(code, gc.Equals, 2)
	c.Check(stderr, jc.Contains, "--access-key without --secret-key")
}

func (s *mainSuite) TestRetained(c *gc.C) {
	previous := &resource.Graph{Stack: "s", Jobs: []resource.ScheduledJob{{Domain: "a"}, {Domain: "b"}}}
	graph := &resource.Graph{Stack: "s", Jobs: []resource.ScheduledJob{{Domain: "a"}}}

	c.Check(retained(graph, previous, []string{"a"}, true), gc.Equals, graph)
	c.Check(retained(graph, previous, []string{"a"}, false).Domains(), jc.DeepEquals, []string{"a", "b"})
	c.Check(graph.Domains(), jc.DeepEquals, []string{"a"})
	c.Check(retained(graph, nil, []string{"a"}, false), gc.Equals, graph)
}

func (s *mainSuite) TestRetainedKeepsFailedDomains(c *gc.C) {
	previous := &resource.Graph{Stack: "s", Jobs: []resource.ScheduledJob{
		{Domain: "a", Compute: resource.ComputeUnit{ArtifactRef: "old.zip"}}, {Domain: "b"}, {Domain: "c"},
	}}
	graph := &resource.Graph{Stack: "s", Jobs: []resource.ScheduledJob{{Domain: "b"}}}

	saved := retained(graph, previous, []string{"a", "b"}, true)
	c.Check(saved.Domains(), jc.DeepEquals, []string{"b", "a"})
	job, found := saved.Job("a")
	c.Assert(found, jc.IsTrue)
	c.Check(job.Compute.ArtifactRef, gc.Equals, "old.zip")
	c.Check(graph.Domains(), jc.DeepEquals, []string{"b"})

	saved = retained(graph, previous, []string{"a", "b"}, false)
	c.Check(saved.Domains(), jc.DeepEquals, []string{"b", "a", "c"})
}
