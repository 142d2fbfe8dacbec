// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/juju/errors"

	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/policy"
	"github.com/juju/certstack/internal/stack/resource"
)

// ensureIdentity creates or adopts the execution role and converges its
// trust policy and inline policy on identity. It returns the role ARN.
func (d *Deployer) ensureIdentity(ctx context.Context, identity resource.ExecutionIdentity, result *Result) (string, error) {
	trust, err := policy.TrustDocument(identity).JSON()
	if err != nil {
		return "", errors.Trace(err)
	}
	permissions, err := policy.PermissionDocument(identity).JSON()
	if err != nil {
		return "", errors.Trace(err)
	}

	var role *iamtypes.Role
	action := resource.ActionCreate
	out, err := d.config.IAM.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(identity.Name),
		AssumeRolePolicyDocument: aws.String(trust),
		Description:              aws.String("certificate renewal jobs of stack " + identity.Stack),
		Tags: []iamtypes.Tag{{
			Key:   aws.String(resource.StackTagKey),
			Value: aws.String(identity.Stack),
		}},
	})
	var alreadyExists *iamtypes.EntityAlreadyExistsException
	switch {
	case err == nil:
		role = out.Role
		logger.Infof("created role %q", identity.Name)
	case errors.As(err, &alreadyExists):
		action = resource.ActionUpdate
		if role, err = d.adoptRole(ctx, identity); err != nil {
			return "", errors.Trace(err)
		}
		_, err = d.config.IAM.UpdateAssumeRolePolicy(ctx, &iam.UpdateAssumeRolePolicyInput{
			RoleName:       aws.String(identity.Name),
			PolicyDocument: aws.String(trust),
		})
		if err != nil {
			return "", errors.Annotatef(err, "resetting trust policy of role %q", identity.Name)
		}
	default:
		return "", errors.Annotatef(err, "creating role %q", identity.Name)
	}

	_, err = d.config.IAM.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(identity.Name),
		PolicyName:     aws.String(identity.PolicyName),
		PolicyDocument: aws.String(permissions),
	})
	if err != nil {
		return "", errors.Annotatef(err, "writing policy %q of role %q", identity.PolicyName, identity.Name)
	}
	if err := d.removeStrayPolicies(ctx, identity); err != nil {
		return "", errors.Trace(err)
	}

	result.record(resource.KindExecutionIdentity, identity.Name, identity.LogicalID, "", action)
	return aws.ToString(role.Arn), nil
}

// adoptRole returns the existing role named for identity if it belongs to
// the identity's stack.
func (d *Deployer) adoptRole(ctx context.Context, identity resource.ExecutionIdentity) (*iamtypes.Role, error) {
	out, err := d.config.IAM.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(identity.Name)})
	if err != nil {
		return nil, errors.Annotatef(err, "reading role %q", identity.Name)
	}
	tags := make(map[string]string)
	for _, tag := range out.Role.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	switch tagged, matches := stackTagMatches(tags, identity.Stack); {
	case !tagged:
		return nil, stackerrors.NewResourceNamingConflict(identity.Name, "role is not managed by a stack")
	case !matches:
		return nil, stackerrors.NewResourceNamingConflict(identity.Name,
			"role belongs to stack %q", tags[resource.StackTagKey])
	}
	logger.Debugf("adopting role %q", identity.Name)
	return out.Role, nil
}

// removeStrayPolicies deletes every inline policy of the role other than
// the identity's own, so the role grants exactly what the identity says.
func (d *Deployer) removeStrayPolicies(ctx context.Context, identity resource.ExecutionIdentity) error {
	var stray []string
	pages := iam.NewListRolePoliciesPaginator(d.config.IAM, &iam.ListRolePoliciesInput{
		RoleName: aws.String(identity.Name),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return errors.Annotatef(err, "listing policies of role %q", identity.Name)
		}
		for _, name := range page.PolicyNames {
			if name != identity.PolicyName {
				stray = append(stray, name)
			}
		}
	}
	for _, name := range stray {
		logger.Infof("removing policy %q from role %q", name, identity.Name)
		_, err := d.config.IAM.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
			RoleName:   aws.String(identity.Name),
			PolicyName: aws.String(name),
		})
		if err != nil && !isNotFound(err) {
			return errors.Annotatef(err, "removing policy %q of role %q", name, identity.Name)
		}
	}
	return nil
}
