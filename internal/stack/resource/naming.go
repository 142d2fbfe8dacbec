// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Logical IDs of the stack's resources. Per-domain IDs are formed by
// appending "-" and the domain.
const (
	StorageLogicalID         = "CertBotOutputBucket"
	IdentityLogicalID        = "CertBotLambdaExecutionRole"
	IdentityPolicyName       = "CertBotLambdaExecutionPolicy"
	computeLogicalIDPrefix   = "CertBotLambda"
	schedulerLogicalIDPrefix = "CertBotLambdaScheduler"

	// MaxNameLength is the longest physical name accepted for functions,
	// rules and roles.
	MaxNameLength = 64
)

// ComputeLogicalID returns the logical ID of the compute unit for domain.
func ComputeLogicalID(domain string) string {
	return computeLogicalIDPrefix + "-" + domain
}

// TriggerLogicalID returns the logical ID of the trigger for domain.
func TriggerLogicalID(domain string) string {
	return schedulerLogicalIDPrefix + "-" + domain
}

// IdentityName returns the physical name of the stack's execution
// identity.
func IdentityName(stack string) string {
	return PhysicalName(stack + "-" + IdentityLogicalID)
}

// ComputeName returns the physical name of the compute unit for domain.
// The same stack and domain always yield the same name; this is what
// makes re-provisioning a domain update its job instead of adding one.
func ComputeName(stack, domain string) string {
	return PhysicalName(stack + "-" + ComputeLogicalID(domain))
}

// TriggerName returns the physical name of the trigger for domain.
func TriggerName(stack, domain string) string {
	return PhysicalName(stack + "-" + TriggerLogicalID(domain))
}

// PhysicalName maps id onto the characters allowed in function, rule and
// role names. Anything outside [A-Za-z0-9_-] becomes "-". Results longer
// than MaxNameLength are truncated and suffixed with a hash of id.
func PhysicalName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, id)
	if len(name) <= MaxNameLength {
		return name
	}
	suffix := shortHash(id)
	return name[:MaxNameLength-len(suffix)-1] + "-" + suffix
}

// shortHash returns the first 8 hex digits of the SHA-256 of s.
func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}
