// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/certstack/internal/stack/resource"
)

// FormattedChange is the serialization of a resource.Change.
type FormattedChange struct {
	Kind      string `json:"kind" yaml:"kind"`
	Name      string `json:"name" yaml:"name"`
	LogicalID string `json:"logical-id" yaml:"logical-id"`
	Domain    string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Action    string `json:"action" yaml:"action"`
}

// FormattedResource describes one deployed resource.
type FormattedResource struct {
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// FormattedStack is the serialization of a deployed graph.
type FormattedStack struct {
	Stack     string              `json:"stack" yaml:"stack"`
	Resources []FormattedResource `json:"resources" yaml:"resources"`
}

func formatChanges(changes []resource.Change) []FormattedChange {
	formatted := make([]FormattedChange, len(changes))
	for i, change := range changes {
		formatted[i] = FormattedChange{
			Kind:      string(change.Kind),
			Name:      change.Name,
			LogicalID: change.LogicalID,
			Domain:    change.Domain,
			Action:    string(change.Action),
		}
	}
	return formatted
}

func formatStack(graph *resource.Graph) FormattedStack {
	stack := FormattedStack{
		Stack: graph.Stack,
		Resources: []FormattedResource{{
			Kind: string(resource.KindStorageTarget),
			Name: graph.Storage.Name,
		}, {
			Kind:   string(resource.KindExecutionIdentity),
			Name:   graph.Identity.Name,
			Detail: "trusted by " + graph.Identity.TrustedPrincipal,
		}},
	}
	for _, job := range graph.Jobs {
		stack.Resources = append(stack.Resources, FormattedResource{
			Kind:   string(resource.KindComputeUnit),
			Name:   job.Compute.Name,
			Domain: job.Domain,
			Detail: job.Compute.ArtifactRef,
		}, FormattedResource{
			Kind:   string(resource.KindTrigger),
			Name:   job.Trigger.Name,
			Domain: job.Domain,
			Detail: job.Trigger.Schedule,
		})
	}
	return stack
}
