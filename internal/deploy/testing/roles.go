// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// RoleARN returns the ARN the simulator gives the named role.
func RoleARN(name string) string {
	return "arn:aws:iam::123456789012:role/" + name
}

func (i *IAMServer) CreateRole(
	ctx context.Context,
	input *iam.CreateRoleInput,
	opts ...func(*iam.Options),
) (*iam.CreateRoleOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls["CreateRole"]++

	if role, exists := i.roles[*input.RoleName]; exists {
		return &iam.CreateRoleOutput{
				Role: role,
			}, &types.EntityAlreadyExistsException{
				Message: aws.String(fmt.Sprintf("role %s", *input.RoleName)),
			}
	}

	createDate := time.Now()
	i.roles[*input.RoleName] = &types.Role{
		Arn:                      aws.String(RoleARN(*input.RoleName)),
		CreateDate:               &createDate,
		RoleName:                 input.RoleName,
		AssumeRolePolicyDocument: input.AssumeRolePolicyDocument,
		Description:              input.Description,
		Path:                     input.Path,
		Tags:                     input.Tags,
	}
	i.inlinePolicies[*input.RoleName] = make(map[string]string)

	return &iam.CreateRoleOutput{
		Role: i.roles[*input.RoleName],
	}, nil
}

func (i *IAMServer) GetRole(
	ctx context.Context,
	input *iam.GetRoleInput,
	opts ...func(*iam.Options),
) (*iam.GetRoleOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls["GetRole"]++

	role, exists := i.roles[*input.RoleName]
	if !exists {
		return nil, notFoundResponse()
	}
	return &iam.GetRoleOutput{
		Role: role,
	}, nil
}

func (i *IAMServer) UpdateAssumeRolePolicy(
	ctx context.Context,
	input *iam.UpdateAssumeRolePolicyInput,
	opts ...func(*iam.Options),
) (*iam.UpdateAssumeRolePolicyOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls["UpdateAssumeRolePolicy"]++

	role, exists := i.roles[*input.RoleName]
	if !exists {
		return nil, apiError("NoSuchEntity", "role not found")
	}
	role.AssumeRolePolicyDocument = input.PolicyDocument
	return &iam.UpdateAssumeRolePolicyOutput{}, nil
}

func (i *IAMServer) PutRolePolicy(
	ctx context.Context,
	input *iam.PutRolePolicyInput,
	opts ...func(*iam.Options),
) (*iam.PutRolePolicyOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls["PutRolePolicy"]++

	if _, exists := i.roles[*input.RoleName]; !exists {
		return nil, apiError("NoSuchEntity", "role not found")
	}
	i.inlinePolicies[*input.RoleName][*input.PolicyName] = *input.PolicyDocument
	return &iam.PutRolePolicyOutput{}, nil
}

// ListRolePolicies returns every policy name in a single page.
func (i *IAMServer) ListRolePolicies(
	ctx context.Context,
	input *iam.ListRolePoliciesInput,
	opts ...func(*iam.Options),
) (*iam.ListRolePoliciesOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls["ListRolePolicies"]++

	policies, exists := i.inlinePolicies[*input.RoleName]
	if !exists {
		return nil, apiError("NoSuchEntity", "role not found")
	}
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return &iam.ListRolePoliciesOutput{PolicyNames: names}, nil
}

func (i *IAMServer) DeleteRolePolicy(
	ctx context.Context,
	input *iam.DeleteRolePolicyInput,
	opts ...func(*iam.Options),
) (*iam.DeleteRolePolicyOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls["DeleteRolePolicy"]++

	policies, exists := i.inlinePolicies[*input.RoleName]
	if !exists {
		return nil, apiError("NoSuchEntity", "role not found")
	}
	if _, exists := policies[*input.PolicyName]; !exists {
		return nil, apiError("NoSuchEntity", "role has no such policy")
	}
	delete(policies, *input.PolicyName)
	return &iam.DeleteRolePolicyOutput{}, nil
}
