// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package resource

import "github.com/juju/collections/set"

// Action is what a deployment has to do to a resource.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionUnchanged Action = "unchanged"
)

// Change describes the action needed for one resource.
type Change struct {
	Kind      Kind
	Name      string
	LogicalID string
	Domain    string
	Action    Action
}

// Diff compares a previously deployed graph with a desired one. Storage and
// identity come first, then the desired graph's jobs in order, then the
// deployed jobs desired does not hold. Those are deletions when their
// domain is not in configured, and unchanged otherwise: a configured domain
// missing from desired could not be provisioned and keeps its deployed job.
// A nil deployed graph means nothing has been deployed yet.
func Diff(deployed, desired *Graph, configured []string) []Change {
	var changes []Change
	if desired != nil {
		changes = append(changes, sharedChanges(deployed, desired)...)
		for _, job := range desired.Jobs {
			prev, found := deployed.Job(job.Domain)
			computeAction, triggerAction := ActionCreate, ActionCreate
			if found {
				computeAction = compare(prev.Compute.Equal(job.Compute) && prev.Stack == job.Stack)
				triggerAction = compare(prev.Trigger == job.Trigger)
			}
			changes = append(changes,
				Change{
					Kind:      KindComputeUnit,
					Name:      job.Compute.Name,
					LogicalID: job.Compute.LogicalID,
					Domain:    job.Domain,
					Action:    computeAction,
				},
				Change{
					Kind:      KindTrigger,
					Name:      job.Trigger.Name,
					LogicalID: job.Trigger.LogicalID,
					Domain:    job.Domain,
					Action:    triggerAction,
				},
			)
		}
	}
	if deployed == nil {
		return changes
	}
	keep := set.NewStrings(configured...)
	for _, job := range deployed.Jobs {
		if _, found := desired.Job(job.Domain); found {
			continue
		}
		action := ActionDelete
		if keep.Contains(job.Domain) {
			action = ActionUnchanged
		}
		changes = append(changes,
			Change{Kind: KindComputeUnit, Name: job.Compute.Name, LogicalID: job.Compute.LogicalID, Domain: job.Domain, Action: action},
			Change{Kind: KindTrigger, Name: job.Trigger.Name, LogicalID: job.Trigger.LogicalID, Domain: job.Domain, Action: action},
		)
	}
	return changes
}

// Removed returns the jobs of deployed whose domain is not in configured.
func Removed(deployed *Graph, configured []string) []ScheduledJob {
	if deployed == nil {
		return nil
	}
	keep := set.NewStrings(configured...)
	var removed []ScheduledJob
	for _, job := range deployed.Jobs {
		if !keep.Contains(job.Domain) {
			removed = append(removed, job)
		}
	}
	return removed
}

// Held returns the jobs of deployed whose domain is configured but missing
// from desired, because provisioning it failed.
func Held(deployed, desired *Graph, configured []string) []ScheduledJob {
	if deployed == nil {
		return nil
	}
	keep := set.NewStrings(configured...)
	var held []ScheduledJob
	for _, job := range deployed.Jobs {
		if _, found := desired.Job(job.Domain); found || !keep.Contains(job.Domain) {
			continue
		}
		held = append(held, job)
	}
	return held
}

func sharedChanges(deployed, desired *Graph) []Change {
	storage := Change{
		Kind:      KindStorageTarget,
		Name:      desired.Storage.Name,
		LogicalID: desired.Storage.LogicalID,
		Action:    ActionCreate,
	}
	identity := Change{
		Kind:      KindExecutionIdentity,
		Name:      desired.Identity.Name,
		LogicalID: desired.Identity.LogicalID,
		Action:    ActionCreate,
	}
	if deployed != nil {
		// Buckets cannot be renamed; a different name is a different bucket.
		if deployed.Storage.Name == desired.Storage.Name {
			storage.Action = compare(deployed.Storage == desired.Storage)
		}
		if deployed.Identity.Name == desired.Identity.Name {
			identity.Action = compare(deployed.Identity.Equal(desired.Identity))
		}
	}
	return []Change{storage, identity}
}

func compare(equal bool) Action {
	if equal {
		return ActionUnchanged
	}
	return ActionUpdate
}
