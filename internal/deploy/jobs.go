// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/juju/errors"

	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/resource"
)

const (
	invokeAction       = "lambda:InvokeFunction"
	schedulerPrincipal = "events.amazonaws.com"
)

// TargetID returns the ID of the rule target invoking job's function.
func TargetID(job resource.ScheduledJob) string {
	return resource.PhysicalName("certstack-" + job.Compute.Name)
}

// statementID names the function policy statement letting job's rule
// invoke it.
func statementID(job resource.ScheduledJob) string {
	return "certstack-" + job.Trigger.Name
}

// ensureJob deploys job's function and the rule invoking it, returning the
// function ARN.
func (d *Deployer) ensureJob(
	ctx context.Context,
	job resource.ScheduledJob,
	roleARN string,
	code []byte,
	result *Result,
) (string, error) {
	functionARN, action, err := d.ensureFunction(ctx, job, roleARN, code)
	if err != nil {
		return "", errors.Trace(err)
	}
	result.record(resource.KindComputeUnit, job.Compute.Name, job.Compute.LogicalID, job.Domain, action)

	action, err = d.ensureTrigger(ctx, job, functionARN)
	if err != nil {
		return "", errors.Trace(err)
	}
	result.record(resource.KindTrigger, job.Trigger.Name, job.Trigger.LogicalID, job.Domain, action)
	return functionARN, nil
}

func (d *Deployer) ensureFunction(
	ctx context.Context,
	job resource.ScheduledJob,
	roleARN string,
	code []byte,
) (string, resource.Action, error) {
	unit := job.Compute
	existing, err := d.config.Lambda.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(unit.Name),
	})
	if isNotFound(err) {
		arn, err := d.createFunction(ctx, job, roleARN, code)
		return arn, resource.ActionCreate, errors.Trace(err)
	} else if err != nil {
		return "", "", errors.Annotatef(err, "reading function %q", unit.Name)
	}

	tagged, matches := stackTagMatches(existing.Tags, job.Stack)
	if tagged && !matches {
		return "", "", stackerrors.NewConflictingJobDefinition(job.Domain,
			"function %q belongs to stack %q", unit.Name, existing.Tags[resource.StackTagKey])
	}
	arn, err := d.updateFunction(ctx, job, roleARN, code)
	if err != nil {
		return "", "", errors.Trace(err)
	}
	if !tagged {
		// Adopted; later deployments of other stacks must see it as ours.
		_, err := d.config.Lambda.TagResource(ctx, &lambda.TagResourceInput{
			Resource: aws.String(arn),
			Tags:     map[string]string{resource.StackTagKey: job.Stack},
		})
		if err != nil {
			return "", "", errors.Annotatef(err, "tagging function %q", unit.Name)
		}
		logger.Infof("adopted function %q into stack %q", unit.Name, job.Stack)
	}
	return arn, resource.ActionUpdate, nil
}

func (d *Deployer) createFunction(ctx context.Context, job resource.ScheduledJob, roleARN string, code []byte) (string, error) {
	unit := job.Compute
	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(unit.Name),
		Role:         aws.String(roleARN),
		Handler:      aws.String(unit.EntryPoint),
		Runtime:      lambdatypes.Runtime(unit.Runtime),
		Timeout:      aws.Int32(int32(unit.TimeoutSeconds)),
		Code:         &lambdatypes.FunctionCode{ZipFile: code},
		Environment:  &lambdatypes.Environment{Variables: unit.Environment},
		Description:  aws.String("certificate renewal for " + job.Domain),
		Tags:         map[string]string{resource.StackTagKey: job.Stack},
	}

	// A role created moments ago may not be assumable by Lambda yet.
	var out *lambda.CreateFunctionOutput
	err := d.retry(ctx, "creating function "+unit.Name, isRolePropagating, func() error {
		var err error
		out, err = d.config.Lambda.CreateFunction(ctx, input)
		return err
	})
	if err != nil {
		return "", errors.Annotatef(err, "creating function %q", unit.Name)
	}
	logger.Infof("created function %q for %q", unit.Name, job.Domain)
	return aws.ToString(out.FunctionArn), nil
}

func (d *Deployer) updateFunction(ctx context.Context, job resource.ScheduledJob, roleARN string, code []byte) (string, error) {
	unit := job.Compute
	codeInput := &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(unit.Name),
		ZipFile:      code,
	}
	// A function created moments ago stays Pending for a while, and refuses
	// updates until it is Active.
	var out *lambda.UpdateFunctionCodeOutput
	err := d.retry(ctx, "updating code of function "+unit.Name, isUpdateInProgress, func() error {
		var err error
		out, err = d.config.Lambda.UpdateFunctionCode(ctx, codeInput)
		return err
	})
	if err != nil {
		return "", errors.Annotatef(err, "updating code of function %q", unit.Name)
	}

	input := &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(unit.Name),
		Role:         aws.String(roleARN),
		Handler:      aws.String(unit.EntryPoint),
		Runtime:      lambdatypes.Runtime(unit.Runtime),
		Timeout:      aws.Int32(int32(unit.TimeoutSeconds)),
		Environment:  &lambdatypes.Environment{Variables: unit.Environment},
	}
	err = d.retry(ctx, "configuring function "+unit.Name, isUpdateInProgress, func() error {
		_, err := d.config.Lambda.UpdateFunctionConfiguration(ctx, input)
		return err
	})
	if err != nil {
		return "", errors.Annotatef(err, "updating configuration of function %q", unit.Name)
	}
	logger.Infof("updated function %q for %q", unit.Name, job.Domain)
	return aws.ToString(out.FunctionArn), nil
}

// ensureTrigger schedules the rule, lets it invoke the function and points
// it at the function as its only target. It reports whether the rule was
// created or updated.
func (d *Deployer) ensureTrigger(ctx context.Context, job resource.ScheduledJob, functionARN string) (resource.Action, error) {
	trigger := job.Trigger
	action := resource.ActionUpdate
	_, err := d.config.EventBridge.DescribeRule(ctx, &eventbridge.DescribeRuleInput{
		Name: aws.String(trigger.Name),
	})
	if isNotFound(err) {
		action = resource.ActionCreate
	} else if err != nil {
		return "", errors.Annotatef(err, "reading rule %q", trigger.Name)
	}

	rule, err := d.config.EventBridge.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:               aws.String(trigger.Name),
		ScheduleExpression: aws.String(trigger.Schedule),
		State:              ebtypes.RuleStateEnabled,
		Description:        aws.String("renews the certificate of " + job.Domain),
	})
	if err != nil {
		return "", errors.Annotatef(err, "writing rule %q", trigger.Name)
	}

	_, err = d.config.Lambda.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(job.Compute.Name),
		StatementId:  aws.String(statementID(job)),
		Action:       aws.String(invokeAction),
		Principal:    aws.String(schedulerPrincipal),
		SourceArn:    rule.RuleArn,
	})
	if err != nil && errorCode(err) != codeResourceConflict {
		return "", errors.Annotatef(err, "allowing rule %q to invoke %q", trigger.Name, job.Compute.Name)
	}

	targets, err := d.config.EventBridge.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule: aws.String(trigger.Name),
		Targets: []ebtypes.Target{{
			Id:  aws.String(TargetID(job)),
			Arn: aws.String(functionARN),
		}},
	})
	if err != nil {
		return "", errors.Annotatef(err, "targeting rule %q at %q", trigger.Name, job.Compute.Name)
	}
	if len(targets.FailedEntries) > 0 {
		failed := targets.FailedEntries[0]
		return "", errors.Errorf("targeting rule %q at %q: %s: %s", trigger.Name, job.Compute.Name,
			aws.ToString(failed.ErrorCode), aws.ToString(failed.ErrorMessage))
	}
	return action, nil
}

// removeJob deletes the rule and function of a job that is no longer
// configured. Resources already gone are skipped.
func (d *Deployer) removeJob(ctx context.Context, job resource.ScheduledJob, result *Result) error {
	existing, err := d.config.Lambda.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(job.Compute.Name),
	})
	switch {
	case isNotFound(err):
		existing = nil
	case err != nil:
		return errors.Annotatef(err, "reading function %q", job.Compute.Name)
	default:
		if tagged, matches := stackTagMatches(existing.Tags, job.Stack); tagged && !matches {
			return stackerrors.NewConflictingJobDefinition(job.Domain,
				"function %q belongs to stack %q", job.Compute.Name, existing.Tags[resource.StackTagKey])
		}
	}

	_, err = d.config.EventBridge.RemoveTargets(ctx, &eventbridge.RemoveTargetsInput{
		Rule: aws.String(job.Trigger.Name),
		Ids:  []string{TargetID(job)},
	})
	if err != nil && !isNotFound(err) {
		return errors.Annotatef(err, "removing targets of rule %q", job.Trigger.Name)
	}
	_, err = d.config.EventBridge.DeleteRule(ctx, &eventbridge.DeleteRuleInput{
		Name: aws.String(job.Trigger.Name),
	})
	if err != nil && !isNotFound(err) {
		return errors.Annotatef(err, "deleting rule %q", job.Trigger.Name)
	}
	result.record(resource.KindTrigger, job.Trigger.Name, job.Trigger.LogicalID, job.Domain, resource.ActionDelete)

	if existing != nil {
		_, err = d.config.Lambda.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
			FunctionName: aws.String(job.Compute.Name),
		})
		if err != nil && !isNotFound(err) {
			return errors.Annotatef(err, "deleting function %q", job.Compute.Name)
		}
	}
	result.record(resource.KindComputeUnit, job.Compute.Name, job.Compute.LogicalID, job.Domain, resource.ActionDelete)
	logger.Infof("removed job for %q", job.Domain)
	return nil
}
