// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package provision

import (
	"fmt"

	"github.com/juju/collections/set"

	"github.com/juju/certstack/internal/stack/resource"
)

// TrustedPrincipal is the service principal of the job runtime, the only
// principal allowed to assume the execution identity.
const TrustedPrincipal = "lambda.amazonaws.com"

// Pseudo parameters standing in for the account and region until they are
// known. The CloudFormation template resolves them with Fn::Sub.
const (
	AccountToken = "${AWS::AccountId}"
	RegionToken  = "${AWS::Region}"
)

// Statement IDs of the three grants.
const (
	SidUnscoped   = "CertBotUnscoped"
	SidSecrets    = "CertBotAcmeSecrets"
	SidDNSChanges = "CertBotDNSChanges"
)

// Grants returns the execution identity's permission grants. The secret
// read/write grant is confined to the acme/ prefix of the account and
// region; secret creation, object writes and hosted zone lookups are not
// scoped. An empty account or region is left as a pseudo parameter.
func Grants(account, region string) []resource.PermissionGrant {
	if account == "" {
		account = AccountToken
	}
	if region == "" {
		region = RegionToken
	}
	return []resource.PermissionGrant{{
		Sid:       SidUnscoped,
		Effect:    resource.EffectAllow,
		Resources: []string{"*"},
		Actions: set.NewStrings(
			"s3:PutObject",
			"secretsmanager:CreateSecret",
			"route53:ListHostedZonesByName",
		),
	}, {
		Sid:       SidSecrets,
		Effect:    resource.EffectAllow,
		Resources: []string{SecretsARN(account, region)},
		Actions: set.NewStrings(
			"secretsmanager:GetSecretValue",
			"secretsmanager:PutSecretValue",
		),
	}, {
		Sid:    SidDNSChanges,
		Effect: resource.EffectAllow,
		Resources: []string{
			"arn:aws:route53:::hostedzone/*",
			"arn:aws:route53:::change/*",
		},
		Actions: set.NewStrings(
			"route53:GetChange",
			"route53:ChangeResourceRecordSets",
			"route53:ListResourceRecordSets",
		),
	}}
}

// SecretsARN returns the pattern matching the ACME account secrets.
func SecretsARN(account, region string) string {
	return fmt.Sprintf("arn:aws:secretsmanager:%s:%s:secret:acme/*", region, account)
}
