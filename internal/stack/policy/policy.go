// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package policy renders execution identities as IAM policy documents.
package policy

import (
	"encoding/json"

	"github.com/juju/errors"

	"github.com/juju/certstack/internal/stack/resource"
)

// Version is the IAM policy language version of every document.
const Version = "2012-10-17"

// Document is an IAM policy document.
type Document struct {
	Version   string      `json:"Version" yaml:"Version"`
	Statement []Statement `json:"Statement" yaml:"Statement"`
}

// Statement is a single IAM policy statement.
type Statement struct {
	Sid       string     `json:"Sid,omitempty" yaml:"Sid,omitempty"`
	Effect    string     `json:"Effect" yaml:"Effect"`
	Principal *Principal `json:"Principal,omitempty" yaml:"Principal,omitempty"`
	Action    []string   `json:"Action" yaml:"Action"`
	Resource  []string   `json:"Resource,omitempty" yaml:"Resource,omitempty"`
}

// Principal names the service allowed by a trust statement.
type Principal struct {
	Service string `json:"Service" yaml:"Service"`
}

// TrustDocument returns the policy stating that only the identity's
// trusted principal may assume it.
func TrustDocument(identity resource.ExecutionIdentity) Document {
	return Document{
		Version: Version,
		Statement: []Statement{{
			Effect:    string(resource.EffectAllow),
			Principal: &Principal{Service: identity.TrustedPrincipal},
			Action:    []string{"sts:AssumeRole"},
		}},
	}
}

// PermissionDocument returns the inline policy holding the identity's
// grants, one statement per grant, in grant order.
func PermissionDocument(identity resource.ExecutionIdentity) Document {
	doc := Document{Version: Version}
	for _, grant := range identity.Grants {
		doc.Statement = append(doc.Statement, Statement{
			Sid:      grant.Sid,
			Effect:   string(grant.Effect),
			Action:   grant.SortedActions(),
			Resource: append([]string{}, grant.Resources...),
		})
	}
	return doc
}

// JSON encodes the document.
func (d Document) JSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(data), nil
}
