// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package resource describes the declarative resource graph of a
// certificate renewal stack.
package resource

import (
	"sort"

	"github.com/juju/collections/set"
	"gopkg.in/yaml.v3"
)

// Kind identifies the type of a resource in the graph.
type Kind string

const (
	KindStorageTarget     Kind = "storage-target"
	KindExecutionIdentity Kind = "execution-identity"
	KindComputeUnit       Kind = "compute-unit"
	KindTrigger           Kind = "trigger"
)

// Environment variables handed to every compute unit.
const (
	EnvAcmeServer   = "ACME_SERVER"
	EnvAccountEmail = "ACCOUNT_EMAIL"
	EnvOutputBucket = "OUTPUT_BUCKET"
	EnvFQDN         = "FQDN"
)

// EnvironmentKeys is the complete environment contract of a compute unit.
var EnvironmentKeys = []string{EnvAcmeServer, EnvAccountEmail, EnvOutputBucket, EnvFQDN}

// StackTagKey tags every deployed resource with the stack that owns it.
const StackTagKey = "certstack:stack"

// Effect of a permission grant.
type Effect string

const (
	EffectAllow Effect = "Allow"
)

// StorageTarget is the bucket issued certificates are written to.
type StorageTarget struct {
	Name      string `yaml:"name"`
	LogicalID string `yaml:"logical-id"`
	Stack     string `yaml:"stack"`
}

// PermissionGrant authorises a set of actions on a set of resource
// patterns.
type PermissionGrant struct {
	Sid       string
	Effect    Effect
	Resources []string
	Actions   set.Strings
}

// SortedActions returns the grant's actions in lexical order.
func (g PermissionGrant) SortedActions() []string {
	return g.Actions.SortedValues()
}

// Equal reports whether two grants authorise the same thing.
func (g PermissionGrant) Equal(other PermissionGrant) bool {
	if g.Sid != other.Sid || g.Effect != other.Effect {
		return false
	}
	if !stringsEqual(g.Resources, other.Resources) {
		return false
	}
	return g.Actions.Difference(other.Actions).IsEmpty() &&
		other.Actions.Difference(g.Actions).IsEmpty()
}

type grantDoc struct {
	Sid       string   `yaml:"sid"`
	Effect    Effect   `yaml:"effect"`
	Resources []string `yaml:"resources"`
	Actions   []string `yaml:"actions"`
}

// MarshalYAML writes the actions in sorted order.
func (g PermissionGrant) MarshalYAML() (interface{}, error) {
	return grantDoc{
		Sid:       g.Sid,
		Effect:    g.Effect,
		Resources: g.Resources,
		Actions:   g.SortedActions(),
	}, nil
}

// UnmarshalYAML is the counterpart of MarshalYAML.
func (g *PermissionGrant) UnmarshalYAML(value *yaml.Node) error {
	var doc grantDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*g = PermissionGrant{
		Sid:       doc.Sid,
		Effect:    doc.Effect,
		Resources: doc.Resources,
		Actions:   set.NewStrings(doc.Actions...),
	}
	return nil
}

// ExecutionIdentity is the role every compute unit of a stack runs as.
type ExecutionIdentity struct {
	Name      string `yaml:"name"`
	LogicalID string `yaml:"logical-id"`
	Stack     string `yaml:"stack"`

	// TrustedPrincipal is the only service allowed to assume the
	// identity.
	TrustedPrincipal string `yaml:"trusted-principal"`

	// PolicyName names the single inline policy holding Grants.
	PolicyName string            `yaml:"policy-name"`
	Grants     []PermissionGrant `yaml:"grants"`
}

// Equal reports whether two identities carry the same trust and grants.
func (i ExecutionIdentity) Equal(other ExecutionIdentity) bool {
	if i.Name != other.Name || i.LogicalID != other.LogicalID || i.Stack != other.Stack ||
		i.TrustedPrincipal != other.TrustedPrincipal || i.PolicyName != other.PolicyName ||
		len(i.Grants) != len(other.Grants) {
		return false
	}
	for n := range i.Grants {
		if !i.Grants[n].Equal(other.Grants[n]) {
			return false
		}
	}
	return true
}

// ComputeUnit is a scheduled function running the renewal job for one
// domain.
type ComputeUnit struct {
	Name           string            `yaml:"name"`
	LogicalID      string            `yaml:"logical-id"`
	ArtifactRef    string            `yaml:"artifact"`
	EntryPoint     string            `yaml:"entry-point"`
	TimeoutSeconds int               `yaml:"timeout-seconds"`
	Runtime        string            `yaml:"runtime"`
	Environment    map[string]string `yaml:"environment"`

	// Identity is the name of the shared execution identity.
	Identity string `yaml:"identity"`
}

// Equal reports whether two compute units are configured identically.
func (u ComputeUnit) Equal(other ComputeUnit) bool {
	if u.Name != other.Name || u.LogicalID != other.LogicalID || u.ArtifactRef != other.ArtifactRef ||
		u.EntryPoint != other.EntryPoint || u.TimeoutSeconds != other.TimeoutSeconds ||
		u.Runtime != other.Runtime || u.Identity != other.Identity ||
		len(u.Environment) != len(other.Environment) {
		return false
	}
	for k, v := range u.Environment {
		if ov, ok := other.Environment[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Trigger invokes exactly one compute unit on a schedule.
type Trigger struct {
	Name      string `yaml:"name"`
	LogicalID string `yaml:"logical-id"`
	Schedule  string `yaml:"schedule"`

	// Target is the name of the compute unit the trigger invokes.
	Target string `yaml:"target"`
}

// ScheduledJob pairs the compute unit and trigger provisioned for one
// domain.
type ScheduledJob struct {
	Domain  string      `yaml:"domain"`
	Stack   string      `yaml:"stack"`
	Compute ComputeUnit `yaml:"compute"`
	Trigger Trigger     `yaml:"trigger"`
}

// Equal reports whether two jobs are configured identically.
func (j ScheduledJob) Equal(other ScheduledJob) bool {
	return j.Domain == other.Domain && j.Stack == other.Stack &&
		j.Compute.Equal(other.Compute) && j.Trigger == other.Trigger
}

// Shared holds the resources every job of a stack references.
type Shared struct {
	Storage  StorageTarget
	Identity ExecutionIdentity
}

// Graph is the complete declarative output of a synthesis. Jobs are held
// in configured domain order.
type Graph struct {
	Stack    string            `yaml:"stack"`
	Storage  StorageTarget     `yaml:"storage"`
	Identity ExecutionIdentity `yaml:"identity"`
	Jobs     []ScheduledJob    `yaml:"jobs"`
}

// Shared returns the graph's shared resources.
func (g *Graph) Shared() Shared {
	return Shared{Storage: g.Storage, Identity: g.Identity}
}

// Job returns the job provisioned for domain, if any.
func (g *Graph) Job(domain string) (ScheduledJob, bool) {
	if g == nil {
		return ScheduledJob{}, false
	}
	for _, job := range g.Jobs {
		if job.Domain == domain {
			return job, true
		}
	}
	return ScheduledJob{}, false
}

// Domains returns the domains of the graph's jobs in order.
func (g *Graph) Domains() []string {
	if g == nil {
		return nil
	}
	domains := make([]string, len(g.Jobs))
	for i, job := range g.Jobs {
		domains[i] = job.Domain
	}
	return domains
}

// Binding is a physical name held by a resource in a graph.
type Binding struct {
	Kind  Kind
	Stack string
	Owner string
}

// Names indexes every physical name in the graph. Owner is the domain for
// per-job resources and empty for shared ones.
func (g *Graph) Names() map[string]Binding {
	names := make(map[string]Binding)
	if g == nil {
		return names
	}
	if g.Storage.Name != "" {
		names[g.Storage.Name] = Binding{Kind: KindStorageTarget, Stack: g.Storage.Stack}
	}
	if g.Identity.Name != "" {
		names[g.Identity.Name] = Binding{Kind: KindExecutionIdentity, Stack: g.Identity.Stack}
	}
	for _, job := range g.Jobs {
		names[job.Compute.Name] = Binding{Kind: KindComputeUnit, Stack: job.Stack, Owner: job.Domain}
		names[job.Trigger.Name] = Binding{Kind: KindTrigger, Stack: job.Stack, Owner: job.Domain}
	}
	return names
}

// SortedEnvironmentKeys returns the compute unit's environment keys in
// lexical order.
func (u ComputeUnit) SortedEnvironmentKeys() []string {
	keys := make([]string, 0, len(u.Environment))
	for k := range u.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
