// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package provision derives the shared and per-domain resources of a
// certificate renewal stack from its configuration.
package provision

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/juju/certstack/internal/stack/config"
	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/resource"
)

var logger = loggo.GetLogger("certstack.provision")

// Provisioner derives resources for a stack. When given the graph that
// was last deployed it refuses to derive resources that would clash with
// it; re-deriving a resource under an unchanged name is an update.
type Provisioner struct {
	existing *resource.Graph
	names    map[string]resource.Binding
}

// NewProvisioner returns a Provisioner checking against existing, which
// may be nil when nothing has been deployed yet.
func NewProvisioner(existing *resource.Graph) *Provisioner {
	return &Provisioner{
		existing: existing,
		names:    existing.Names(),
	}
}

// ProvisionShared derives the stack's storage target and execution
// identity. The storage target is named exactly as configured; if that
// name is bound to an incompatible resource a ResourceNamingConflictError
// is returned rather than picking another name.
func (p *Provisioner) ProvisionShared(cfg config.Configuration) (resource.Shared, error) {
	stack := cfg.StackName()
	storage := resource.StorageTarget{
		Name:      cfg.OutputBucketName(),
		LogicalID: resource.StorageLogicalID,
		Stack:     stack,
	}
	if err := p.checkBinding(storage.Name, resource.KindStorageTarget, stack, ""); err != nil {
		return resource.Shared{}, errors.Trace(err)
	}

	identity := resource.ExecutionIdentity{
		Name:             resource.IdentityName(stack),
		LogicalID:        resource.IdentityLogicalID,
		Stack:            stack,
		TrustedPrincipal: TrustedPrincipal,
		PolicyName:       resource.IdentityPolicyName,
		Grants:           Grants(cfg.Account(), cfg.Region()),
	}
	if err := p.checkBinding(identity.Name, resource.KindExecutionIdentity, stack, ""); err != nil {
		return resource.Shared{}, errors.Trace(err)
	}
	if storage.Name == identity.Name {
		return resource.Shared{}, stackerrors.NewResourceNamingConflict(storage.Name, "used by the stack's execution identity")
	}

	logger.Debugf("derived storage %q and identity %q for stack %q", storage.Name, identity.Name, stack)
	return resource.Shared{Storage: storage, Identity: identity}, nil
}

// ProvisionJob derives the compute unit and trigger for domain. Both are
// named deterministically from the stack and domain, and bound to the
// shared identity and storage target.
func (p *Provisioner) ProvisionJob(domain string, cfg config.Configuration, shared resource.Shared) (resource.ScheduledJob, error) {
	if domain == "" {
		return resource.ScheduledJob{}, errors.NotValidf("empty domain")
	}
	stack := cfg.StackName()

	compute := resource.ComputeUnit{
		Name:           resource.ComputeName(stack, domain),
		LogicalID:      resource.ComputeLogicalID(domain),
		ArtifactRef:    cfg.Artifact(),
		EntryPoint:     cfg.Handler(),
		TimeoutSeconds: cfg.TimeoutSeconds(),
		Runtime:        cfg.Runtime(),
		Environment: map[string]string{
			resource.EnvAcmeServer:   cfg.AcmeServer(),
			resource.EnvAccountEmail: cfg.AccountEmail(),
			resource.EnvOutputBucket: shared.Storage.Name,
			resource.EnvFQDN:         domain,
		},
		Identity: shared.Identity.Name,
	}
	trigger := resource.Trigger{
		Name:      resource.TriggerName(stack, domain),
		LogicalID: resource.TriggerLogicalID(domain),
		Schedule:  cfg.Schedule(),
		Target:    compute.Name,
	}
	job := resource.ScheduledJob{
		Domain:  domain,
		Stack:   stack,
		Compute: compute,
		Trigger: trigger,
	}
	if err := p.checkJob(job); err != nil {
		return resource.ScheduledJob{}, errors.Trace(err)
	}
	return job, nil
}

// checkJob fails if the job's names are held by another domain or stack,
// or if the domain was deployed from a different artifact.
func (p *Provisioner) checkJob(job resource.ScheduledJob) error {
	for _, want := range []struct {
		name string
		kind resource.Kind
	}{
		{job.Compute.Name, resource.KindComputeUnit},
		{job.Trigger.Name, resource.KindTrigger},
	} {
		bound, ok := p.names[want.name]
		if !ok {
			continue
		}
		if bound.Kind != want.kind || bound.Stack != job.Stack || bound.Owner != job.Domain {
			return stackerrors.NewConflictingJobDefinition(job.Domain,
				"%s %q is bound to %s", want.kind, want.name, describe(bound))
		}
	}

	prev, found := p.existing.Job(job.Domain)
	if !found {
		return nil
	}
	switch {
	case prev.Stack != job.Stack:
		return stackerrors.NewConflictingJobDefinition(job.Domain,
			"provisioned by stack %q", prev.Stack)
	case prev.Compute.ArtifactRef != job.Compute.ArtifactRef:
		return stackerrors.NewConflictingJobDefinition(job.Domain,
			"provisioned from artifact %q, not %q", prev.Compute.ArtifactRef, job.Compute.ArtifactRef)
	case prev.Compute.Name != job.Compute.Name || prev.Trigger.Name != job.Trigger.Name:
		return stackerrors.NewConflictingJobDefinition(job.Domain,
			"provisioned as %q/%q", prev.Compute.Name, prev.Trigger.Name)
	}
	if !prev.Equal(job) {
		logger.Debugf("job for %q will be updated", job.Domain)
	}
	return nil
}

func (p *Provisioner) checkBinding(name string, kind resource.Kind, stack, owner string) error {
	bound, ok := p.names[name]
	if !ok {
		return nil
	}
	if bound.Kind != kind || bound.Stack != stack || bound.Owner != owner {
		return stackerrors.NewResourceNamingConflict(name, "bound to %s", describe(bound))
	}
	return nil
}

func describe(b resource.Binding) string {
	s := string(b.Kind) + " of stack " + `"` + b.Stack + `"`
	if b.Owner != "" {
		s += ` for domain "` + b.Owner + `"`
	}
	return s
}
