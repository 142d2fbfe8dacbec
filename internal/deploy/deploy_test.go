// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy_test

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/mock/gomock"
	gc "gopkg.in/check.v1"

	"github.com/juju/certstack/internal/deploy"
	deploytesting "github.com/juju/certstack/internal/deploy/testing"
	"github.com/juju/certstack/internal/deploy/mocks"
	"github.com/juju/certstack/internal/stack/config"
	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/policy"
	"github.com/juju/certstack/internal/stack/resource"
	"github.com/juju/certstack/internal/stack/synth"
)

const (
	bucketName = "certs-out"
	stackName  = "CertBotStack"
	roleName   = "CertBotStack-CertBotLambdaExecutionRole"
)

type deploySuite struct {
	testing.IsolationSuite

	iam    *deploytesting.IAMServer
	s3     *deploytesting.S3Server
	lambda *mocks.MockLambdaClient
	events *mocks.MockEventBridgeClient

	artifactReads int
	prune         bool
}

var _ = gc.Suite(&deploySuite{})

func (s *deploySuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.iam = deploytesting.NewIAMServer()
	s.s3 = deploytesting.NewS3Server()
	s.artifactReads = 0
	s.prune = false
}

func (s *deploySuite) setupMocks(c *gc.C) *gomock.Controller {
	ctrl := gomock.NewController(c)
	s.lambda = mocks.NewMockLambdaClient(ctrl)
	s.events = mocks.NewMockEventBridgeClient(ctrl)
	return ctrl
}

func (s *deploySuite) config() deploy.Config {
	return deploy.Config{
		S3:          s.s3,
		IAM:         s.iam,
		Lambda:      s.lambda,
		EventBridge: s.events,
		Region:      "eu-west-1",
		Clock:       testclock.NewDilatedWallClock(time.Millisecond),
		ReadArtifact: func(ref string) ([]byte, error) {
			s.artifactReads++
			return []byte("zip:" + ref), nil
		},
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		Prune:         s.prune,
	}
}

func (s *deploySuite) newDeployer(c *gc.C) *deploy.Deployer {
	d, err := deploy.NewDeployer(s.config())
	c.Assert(err, jc.ErrorIsNil)
	return d
}

func synthesize(c *gc.C, domains ...string) *resource.Graph {
	graph, err := synth.Synthesize(context.Background(), config.MapSource{
		config.OutputBucketNameKey: bucketName,
		config.DomainsKey:          append([]string{}, domains...),
		config.AcmeServerKey:       "https://acme.example/directory",
		config.AccountEmailKey:     "ops@example.com",
		config.AccountKey:          "123456789012",
		config.RegionKey:           "eu-west-1",
	}, synth.Options{})
	c.Assert(err, jc.ErrorIsNil)
	return graph
}

func functionARN(job resource.ScheduledJob) string {
	return "arn:aws:lambda:eu-west-1:123456789012:function:" + job.Compute.Name
}

func ruleARN(job resource.ScheduledJob) string {
	return "arn:aws:events:eu-west-1:123456789012:rule/" + job.Trigger.Name
}

func notFound() error {
	return &lambdatypes.ResourceNotFoundException{Message: aws.String("function not found")}
}

func (s *deploySuite) expectGetFunction(job resource.ScheduledJob, stack string) {
	s.lambda.EXPECT().GetFunction(gomock.Any(), &lambda.GetFunctionInput{
		FunctionName: aws.String(job.Compute.Name),
	}).Return(&lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{FunctionArn: aws.String(functionARN(job))},
		Tags:          map[string]string{resource.StackTagKey: stack},
	}, nil)
}

func (s *deploySuite) expectCreateFunction(c *gc.C, job resource.ScheduledJob) {
	s.lambda.EXPECT().GetFunction(gomock.Any(), &lambda.GetFunctionInput{
		FunctionName: aws.String(job.Compute.Name),
	}).Return(nil, notFound())
	s.lambda.EXPECT().CreateFunction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in *lambda.CreateFunctionInput, _ ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
			c.Check(aws.ToString(in.FunctionName), gc.Equals, job.Compute.Name)
			c.Check(aws.ToString(in.Role), gc.Equals, deploytesting.RoleARN(roleName))
			c.Check(aws.ToString(in.Handler), gc.Equals, "cert-bot")
			c.Check(in.Runtime, gc.Equals, lambdatypes.Runtime("provided.al2023"))
			c.Check(aws.ToInt32(in.Timeout), gc.Equals, int32(300))
			c.Check(in.Code.ZipFile, jc.DeepEquals, []byte("zip:./cert-bot.zip"))
			c.Check(in.Environment.Variables, jc.DeepEquals, job.Compute.Environment)
			c.Check(in.Tags, jc.DeepEquals, map[string]string{resource.StackTagKey: stackName})
			return &lambda.CreateFunctionOutput{FunctionArn: aws.String(functionARN(job))}, nil
		})
}

func (s *deploySuite) expectUpdateFunction(job resource.ScheduledJob) {
	s.expectGetFunction(job, stackName)
	s.lambda.EXPECT().UpdateFunctionCode(gomock.Any(), &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(job.Compute.Name),
		ZipFile:      []byte("zip:./cert-bot.zip"),
	}).Return(&lambda.UpdateFunctionCodeOutput{FunctionArn: aws.String(functionARN(job))}, nil)
	s.lambda.EXPECT().UpdateFunctionConfiguration(gomock.Any(), gomock.Any()).Return(
		&lambda.UpdateFunctionConfigurationOutput{FunctionArn: aws.String(functionARN(job))}, nil)
}

func (s *deploySuite) expectDescribeRule(job resource.ScheduledJob, exists bool) {
	call := s.events.EXPECT().DescribeRule(gomock.Any(), &eventbridge.DescribeRuleInput{
		Name: aws.String(job.Trigger.Name),
	})
	if exists {
		call.Return(&eventbridge.DescribeRuleOutput{
			Name: aws.String(job.Trigger.Name),
			Arn:  aws.String(ruleARN(job)),
		}, nil)
		return
	}
	call.Return(nil, &ebtypes.ResourceNotFoundException{Message: aws.String("rule not found")})
}

func (s *deploySuite) expectTrigger(job resource.ScheduledJob, ruleExists bool, permissionErr error) {
	s.expectDescribeRule(job, ruleExists)
	s.events.EXPECT().PutRule(gomock.Any(), &eventbridge.PutRuleInput{
		Name:               aws.String(job.Trigger.Name),
		ScheduleExpression: aws.String("rate(7 days)"),
		State:              ebtypes.RuleStateEnabled,
		Description:        aws.String("renews the certificate of " + job.Domain),
	}).Return(&eventbridge.PutRuleOutput{RuleArn: aws.String(ruleARN(job))}, nil)
	s.lambda.EXPECT().AddPermission(gomock.Any(), &lambda.AddPermissionInput{
		FunctionName: aws.String(job.Compute.Name),
		StatementId:  aws.String("certstack-" + job.Trigger.Name),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String("events.amazonaws.com"),
		SourceArn:    aws.String(ruleARN(job)),
	}).Return(&lambda.AddPermissionOutput{}, permissionErr)
	s.events.EXPECT().PutTargets(gomock.Any(), &eventbridge.PutTargetsInput{
		Rule: aws.String(job.Trigger.Name),
		Targets: []ebtypes.Target{{
			Id:  aws.String(deploy.TargetID(job)),
			Arn: aws.String(functionARN(job)),
		}},
	}).Return(&eventbridge.PutTargetsOutput{}, nil)
}

func (s *deploySuite) TestValidateConfig(c *gc.C) {
	defer s.setupMocks(c).Finish()

	s.testValidateConfig(c, func(cfg *deploy.Config) { cfg.S3 = nil }, "nil S3 not valid")
	s.testValidateConfig(c, func(cfg *deploy.Config) { cfg.IAM = nil }, "nil IAM not valid")
	s.testValidateConfig(c, func(cfg *deploy.Config) { cfg.Lambda = nil }, "nil Lambda not valid")
	s.testValidateConfig(c, func(cfg *deploy.Config) { cfg.EventBridge = nil }, "nil EventBridge not valid")
	s.testValidateConfig(c, func(cfg *deploy.Config) { cfg.Clock = nil }, "nil Clock not valid")
	s.testValidateConfig(c, func(cfg *deploy.Config) { cfg.RetryAttempts = -1 }, "negative RetryAttempts not valid")
}

func (s *deploySuite) testValidateConfig(c *gc.C, f func(*deploy.Config), expect string) {
	cfg := s.config()
	f(&cfg)
	c.Check(cfg.Validate(), gc.ErrorMatches, expect)
	_, err := deploy.NewDeployer(cfg)
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *deploySuite) TestDeployCreates(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.expectCreateFunction(c, job)
	s.expectTrigger(job, false, nil)

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)

	c.Check(result.RoleARN, gc.Equals, deploytesting.RoleARN(roleName))
	c.Check(result.FunctionARNs, jc.DeepEquals, map[string]string{"a.example.com": functionARN(job)})
	c.Check(result.Changes, jc.DeepEquals, []resource.Change{
		{Kind: resource.KindStorageTarget, Name: bucketName, LogicalID: "CertBotOutputBucket", Action: resource.ActionCreate},
		{Kind: resource.KindExecutionIdentity, Name: roleName, LogicalID: "CertBotLambdaExecutionRole", Action: resource.ActionCreate},
		{Kind: resource.KindComputeUnit, Name: job.Compute.Name, LogicalID: job.Compute.LogicalID, Domain: "a.example.com", Action: resource.ActionCreate},
		{Kind: resource.KindTrigger, Name: job.Trigger.Name, LogicalID: job.Trigger.LogicalID, Domain: "a.example.com", Action: resource.ActionCreate},
	})

	tags, ok := s.s3.Tags(bucketName)
	c.Assert(ok, jc.IsTrue)
	c.Check(tags, jc.DeepEquals, map[string]string{resource.StackTagKey: stackName})
	c.Check(string(s.s3.Location(bucketName)), gc.Equals, "eu-west-1")

	role, ok := s.iam.Role(roleName)
	c.Assert(ok, jc.IsTrue)
	trust, err := policy.TrustDocument(graph.Identity).JSON()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(aws.ToString(role.AssumeRolePolicyDocument), gc.Equals, trust)

	permissions, err := policy.PermissionDocument(graph.Identity).JSON()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.iam.InlinePolicies(roleName), jc.DeepEquals, map[string]string{
		"CertBotLambdaExecutionPolicy": permissions,
	})
}

func (s *deploySuite) TestDeployTwiceConverges(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.expectCreateFunction(c, job)
	s.expectTrigger(job, false, nil)
	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	policies := s.iam.InlinePolicies(roleName)

	s.expectUpdateFunction(job)
	s.expectTrigger(job, true, &lambdatypes.ResourceConflictException{Message: aws.String("statement exists")})
	result, err := s.newDeployer(c).Deploy(context.Background(), graph, graph, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)

	c.Check(s.s3.Calls("PutBucketTagging"), gc.Equals, 1)
	c.Check(s.iam.InlinePolicies(roleName), jc.DeepEquals, policies)
	c.Check(s.iam.Calls("UpdateAssumeRolePolicy"), gc.Equals, 1)

	var actions []resource.Action
	for _, change := range result.Changes {
		actions = append(actions, change.Action)
	}
	c.Check(actions, jc.DeepEquals, []resource.Action{
		resource.ActionUpdate, resource.ActionUpdate, resource.ActionUpdate,
	})
	c.Check(result.Changes[0].Kind, gc.Equals, resource.KindExecutionIdentity)
}

func (s *deploySuite) TestDeployRejectsUnresolvedGraph(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph, err := synth.Synthesize(context.Background(), config.MapSource{
		config.OutputBucketNameKey: bucketName,
		config.DomainsKey:          "a.example.com",
		config.AcmeServerKey:       "https://acme.example/directory",
		config.AccountEmailKey:     "ops@example.com",
	}, synth.Options{})
	c.Assert(err, jc.ErrorIsNil)

	_, err = s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIs, errors.NotValid)
	c.Check(s.s3.Calls("CreateBucket"), gc.Equals, 0)
}

func (s *deploySuite) TestDeployBucketOwnedByAnotherAccount(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.s3.AddForeignBucket(bucketName)

	_, err := s.newDeployer(c).Deploy(context.Background(), synthesize(c), nil, nil)
	c.Assert(err, jc.ErrorIs, stackerrors.ResourceNamingConflict)

	var conflict *stackerrors.ResourceNamingConflictError
	c.Assert(errors.As(err, &conflict), jc.IsTrue)
	c.Check(conflict.Name, gc.Equals, bucketName)
	c.Check(s.iam.Calls("CreateRole"), gc.Equals, 0)
}

func (s *deploySuite) TestDeployBucketOwnedByAnotherStack(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.s3.AddBucket(bucketName, map[string]string{resource.StackTagKey: "OtherStack"})

	_, err := s.newDeployer(c).Deploy(context.Background(), synthesize(c), nil, nil)
	c.Assert(err, jc.ErrorIs, stackerrors.ResourceNamingConflict)
	c.Check(err, gc.ErrorMatches, `.*bucket belongs to stack "OtherStack".*`)
}

func (s *deploySuite) TestDeployAdoptsUntaggedBucket(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.s3.AddBucket(bucketName, map[string]string{"team": "ops"})

	result, err := s.newDeployer(c).Deploy(context.Background(), synthesize(c), nil, nil)
	c.Assert(err, jc.ErrorIsNil)

	tags, _ := s.s3.Tags(bucketName)
	c.Check(tags, jc.DeepEquals, map[string]string{"team": "ops", resource.StackTagKey: stackName})
	c.Check(result.Changes[0].Action, gc.Equals, resource.ActionUpdate)
}

func (s *deploySuite) TestDeployRoleOwnedByAnotherStack(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.iam.AddRole(iamtypes.Role{
		RoleName: aws.String(roleName),
		Arn:      aws.String(deploytesting.RoleARN(roleName)),
		Tags:     []iamtypes.Tag{{Key: aws.String(resource.StackTagKey), Value: aws.String("OtherStack")}},
	}, nil)

	_, err := s.newDeployer(c).Deploy(context.Background(), synthesize(c), nil, nil)
	c.Assert(err, jc.ErrorIs, stackerrors.ResourceNamingConflict)
	c.Check(s.iam.Calls("PutRolePolicy"), gc.Equals, 0)
}

func (s *deploySuite) TestDeployUnmanagedRole(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.iam.AddRole(iamtypes.Role{
		RoleName: aws.String(roleName),
		Arn:      aws.String(deploytesting.RoleARN(roleName)),
	}, nil)

	_, err := s.newDeployer(c).Deploy(context.Background(), synthesize(c), nil, nil)
	c.Assert(err, jc.ErrorIs, stackerrors.ResourceNamingConflict)
	c.Check(err, gc.ErrorMatches, `.*role is not managed by a stack.*`)
}

func (s *deploySuite) TestDeployRemovesStrayPolicies(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.iam.AddRole(iamtypes.Role{
		RoleName:                 aws.String(roleName),
		Arn:                      aws.String(deploytesting.RoleARN(roleName)),
		AssumeRolePolicyDocument: aws.String(`{"Statement":[]}`),
		Tags:                     []iamtypes.Tag{{Key: aws.String(resource.StackTagKey), Value: aws.String(stackName)}},
	}, map[string]string{
		"LeftOver":                     `{"Statement":[]}`,
		"CertBotLambdaExecutionPolicy": `{"Statement":[]}`,
	})

	graph := synthesize(c)
	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)

	permissions, err := policy.PermissionDocument(graph.Identity).JSON()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.iam.InlinePolicies(roleName), jc.DeepEquals, map[string]string{
		"CertBotLambdaExecutionPolicy": permissions,
	})
	role, _ := s.iam.Role(roleName)
	c.Check(aws.ToString(role.AssumeRolePolicyDocument), gc.Not(gc.Equals), `{"Statement":[]}`)
}

func (s *deploySuite) TestDeployFunctionOwnedByAnotherStack(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	s.expectGetFunction(graph.Jobs[0], "OtherStack")

	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIs, stackerrors.ConflictingJobDefinition)

	var conflict *stackerrors.ConflictingJobDefinitionError
	c.Assert(errors.As(err, &conflict), jc.IsTrue)
	c.Check(conflict.Domain, gc.Equals, "a.example.com")
}

func (s *deploySuite) TestCreateFunctionWaitsForRole(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	propagating := &lambdatypes.InvalidParameterValueException{
		Message: aws.String("The role defined for the function cannot be assumed by Lambda."),
	}
	s.lambda.EXPECT().GetFunction(gomock.Any(), gomock.Any()).Return(nil, notFound())
	gomock.InOrder(
		s.lambda.EXPECT().CreateFunction(gomock.Any(), gomock.Any()).Return(nil, propagating).Times(2),
		s.lambda.EXPECT().CreateFunction(gomock.Any(), gomock.Any()).Return(
			&lambda.CreateFunctionOutput{FunctionArn: aws.String(functionARN(job))}, nil),
	)
	s.expectTrigger(job, false, nil)

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.FunctionARNs["a.example.com"], gc.Equals, functionARN(job))
}

func (s *deploySuite) TestCreateFunctionGivesUp(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	propagating := &lambdatypes.InvalidParameterValueException{
		Message: aws.String("The role defined for the function cannot be assumed by Lambda."),
	}
	s.lambda.EXPECT().GetFunction(gomock.Any(), gomock.Any()).Return(nil, notFound())
	s.lambda.EXPECT().CreateFunction(gomock.Any(), gomock.Any()).Return(nil, propagating).Times(3)

	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, gc.ErrorMatches, `deploying job for "a.example.com": creating function .*cannot be assumed by Lambda.*`)
}

func (s *deploySuite) TestCreateFunctionFatalError(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	s.lambda.EXPECT().GetFunction(gomock.Any(), gomock.Any()).Return(nil, notFound())
	s.lambda.EXPECT().CreateFunction(gomock.Any(), gomock.Any()).Return(nil,
		&lambdatypes.InvalidParameterValueException{Message: aws.String("unsupported handler")})

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, gc.ErrorMatches, `deploying job for "a.example.com": creating function "CertBotStack-CertBotLambda-a-example-com": .*unsupported handler.*`)
	c.Check(err, gc.Not(gc.ErrorMatches), `.*unexpected error type.*`)

	var apiErr smithy.APIError
	c.Assert(errors.As(err, &apiErr), jc.IsTrue)
	c.Check(apiErr.ErrorCode(), gc.Equals, "InvalidParameterValueException")
	c.Check(result.Changes, gc.HasLen, 2)
}

func (s *deploySuite) TestUpdateConfigurationWaitsForCodeUpdate(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.expectGetFunction(job, stackName)
	s.lambda.EXPECT().UpdateFunctionCode(gomock.Any(), gomock.Any()).Return(
		&lambda.UpdateFunctionCodeOutput{FunctionArn: aws.String(functionARN(job))}, nil)
	gomock.InOrder(
		s.lambda.EXPECT().UpdateFunctionConfiguration(gomock.Any(), gomock.Any()).Return(nil,
			&lambdatypes.ResourceConflictException{Message: aws.String("update in progress")}),
		s.lambda.EXPECT().UpdateFunctionConfiguration(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, in *lambda.UpdateFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
				c.Check(in.Environment.Variables, jc.DeepEquals, job.Compute.Environment)
				c.Check(aws.ToString(in.Role), gc.Equals, deploytesting.RoleARN(roleName))
				return &lambda.UpdateFunctionConfigurationOutput{}, nil
			}),
	)
	s.expectTrigger(job, true, nil)

	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
}

func (s *deploySuite) TestPutTargetsFailure(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.expectCreateFunction(c, job)
	s.expectDescribeRule(job, false)
	s.events.EXPECT().PutRule(gomock.Any(), gomock.Any()).Return(
		&eventbridge.PutRuleOutput{RuleArn: aws.String(ruleARN(job))}, nil)
	s.lambda.EXPECT().AddPermission(gomock.Any(), gomock.Any()).Return(&lambda.AddPermissionOutput{}, nil)
	s.events.EXPECT().PutTargets(gomock.Any(), gomock.Any()).Return(&eventbridge.PutTargetsOutput{
		FailedEntries: []ebtypes.PutTargetsResultEntry{{
			TargetId:     aws.String(deploy.TargetID(job)),
			ErrorCode:    aws.String("ConcurrentModificationException"),
			ErrorMessage: aws.String("try again"),
		}},
	}, nil)

	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, gc.ErrorMatches, `.*ConcurrentModificationException: try again`)
}

func (s *deploySuite) TestArtifactReadOnce(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com", "b.example.com")
	for _, job := range graph.Jobs {
		s.expectCreateFunction(c, job)
		s.expectTrigger(job, false, nil)
	}

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(s.artifactReads, gc.Equals, 1)
	c.Check(result.FunctionARNs, gc.HasLen, 2)
}

func (s *deploySuite) TestDeployLeavesRemovedJobsWithoutPrune(c *gc.C) {
	defer s.setupMocks(c).Finish()

	previous := synthesize(c, "a.example.com", "b.example.com")
	graph := synthesize(c, "a.example.com")
	s.expectUpdateFunction(graph.Jobs[0])
	s.expectTrigger(graph.Jobs[0], true, nil)

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, previous, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	for _, change := range result.Changes {
		c.Check(change.Action, gc.Not(gc.Equals), resource.ActionDelete)
	}
}

func (s *deploySuite) TestDeployPrunesRemovedJobs(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.prune = true

	previous := synthesize(c, "a.example.com", "b.example.com")
	graph := synthesize(c, "a.example.com")
	s.expectUpdateFunction(graph.Jobs[0])
	s.expectTrigger(graph.Jobs[0], true, nil)

	removed := previous.Jobs[1]
	s.expectGetFunction(removed, stackName)
	s.events.EXPECT().RemoveTargets(gomock.Any(), &eventbridge.RemoveTargetsInput{
		Rule: aws.String(removed.Trigger.Name),
		Ids:  []string{deploy.TargetID(removed)},
	}).Return(&eventbridge.RemoveTargetsOutput{}, nil)
	s.events.EXPECT().DeleteRule(gomock.Any(), &eventbridge.DeleteRuleInput{
		Name: aws.String(removed.Trigger.Name),
	}).Return(&eventbridge.DeleteRuleOutput{}, nil)
	s.lambda.EXPECT().DeleteFunction(gomock.Any(), &lambda.DeleteFunctionInput{
		FunctionName: aws.String(removed.Compute.Name),
	}).Return(&lambda.DeleteFunctionOutput{}, nil)

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, previous, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)

	n := len(result.Changes)
	c.Assert(n >= 2, jc.IsTrue)
	c.Check(result.Changes[n-2:], jc.DeepEquals, []resource.Change{
		{Kind: resource.KindTrigger, Name: removed.Trigger.Name, LogicalID: removed.Trigger.LogicalID, Domain: "b.example.com", Action: resource.ActionDelete},
		{Kind: resource.KindComputeUnit, Name: removed.Compute.Name, LogicalID: removed.Compute.LogicalID, Domain: "b.example.com", Action: resource.ActionDelete},
	})
	c.Check(result.FunctionARNs, jc.DeepEquals, map[string]string{"a.example.com": functionARN(graph.Jobs[0])})
}

func (s *deploySuite) TestPruneSkipsMissingResources(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.prune = true

	previous := synthesize(c, "b.example.com")
	graph := synthesize(c)
	removed := previous.Jobs[0]
	s.lambda.EXPECT().GetFunction(gomock.Any(), gomock.Any()).Return(nil, notFound())
	s.events.EXPECT().RemoveTargets(gomock.Any(), gomock.Any()).Return(nil,
		&ebtypes.ResourceNotFoundException{Message: aws.String("rule not found")})
	s.events.EXPECT().DeleteRule(gomock.Any(), gomock.Any()).Return(nil,
		&ebtypes.ResourceNotFoundException{Message: aws.String("rule not found")})

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, previous, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.Changes[len(result.Changes)-1].Name, gc.Equals, removed.Compute.Name)
}

func (s *deploySuite) TestDeployCancelled(c *gc.C) {
	defer s.setupMocks(c).Finish()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.newDeployer(c).Deploy(ctx, synthesize(c, "a.example.com"), nil, []string{"a.example.com"})
	c.Assert(err, jc.ErrorIs, context.Canceled)
}

func (s *deploySuite) TestDeployKeepsJobsOfFailedDomains(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.prune = true

	previous := synthesize(c, "a.example.com", "b.example.com", "old.example.com")
	// a.example.com is still configured but could not be provisioned.
	graph := synthesize(c, "b.example.com")
	s.expectUpdateFunction(graph.Jobs[0])
	s.expectTrigger(graph.Jobs[0], true, nil)

	removed := previous.Jobs[2]
	s.expectGetFunction(removed, stackName)
	s.events.EXPECT().RemoveTargets(gomock.Any(), gomock.Any()).Return(&eventbridge.RemoveTargetsOutput{}, nil)
	s.events.EXPECT().DeleteRule(gomock.Any(), &eventbridge.DeleteRuleInput{
		Name: aws.String(removed.Trigger.Name),
	}).Return(&eventbridge.DeleteRuleOutput{}, nil)
	s.lambda.EXPECT().DeleteFunction(gomock.Any(), &lambda.DeleteFunctionInput{
		FunctionName: aws.String(removed.Compute.Name),
	}).Return(&lambda.DeleteFunctionOutput{}, nil)

	configured := []string{"a.example.com", "b.example.com"}
	result, err := s.newDeployer(c).Deploy(context.Background(), graph, previous, configured)
	c.Assert(err, jc.ErrorIsNil)
	for _, change := range result.Changes {
		c.Check(change.Domain, gc.Not(gc.Equals), "a.example.com")
	}
}

func (s *deploySuite) TestDeployNothingProvisionedPrunesNothing(c *gc.C) {
	defer s.setupMocks(c).Finish()
	s.prune = true

	previous := synthesize(c, "a.example.com", "b.example.com")
	graph := synthesize(c)

	// No Lambda or EventBridge call is expected.
	_, err := s.newDeployer(c).Deploy(context.Background(), graph, previous, []string{"a.example.com", "b.example.com"})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *deploySuite) TestDeployRecordsTriggerCreatedForExistingFunction(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.expectUpdateFunction(job)
	s.expectTrigger(job, false, nil)

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	n := len(result.Changes)
	c.Check(result.Changes[n-2:], jc.DeepEquals, []resource.Change{
		{Kind: resource.KindComputeUnit, Name: job.Compute.Name, LogicalID: job.Compute.LogicalID, Domain: "a.example.com", Action: resource.ActionUpdate},
		{Kind: resource.KindTrigger, Name: job.Trigger.Name, LogicalID: job.Trigger.LogicalID, Domain: "a.example.com", Action: resource.ActionCreate},
	})
}

func (s *deploySuite) TestDeployTagsAdoptedFunction(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.lambda.EXPECT().GetFunction(gomock.Any(), gomock.Any()).Return(&lambda.GetFunctionOutput{
		Configuration: &lambdatypes.FunctionConfiguration{FunctionArn: aws.String(functionARN(job))},
		Tags:          map[string]string{"team": "ops"},
	}, nil)
	s.lambda.EXPECT().UpdateFunctionCode(gomock.Any(), gomock.Any()).Return(
		&lambda.UpdateFunctionCodeOutput{FunctionArn: aws.String(functionARN(job))}, nil)
	s.lambda.EXPECT().UpdateFunctionConfiguration(gomock.Any(), gomock.Any()).Return(
		&lambda.UpdateFunctionConfigurationOutput{}, nil)
	s.lambda.EXPECT().TagResource(gomock.Any(), &lambda.TagResourceInput{
		Resource: aws.String(functionARN(job)),
		Tags:     map[string]string{resource.StackTagKey: stackName},
	}).Return(&lambda.TagResourceOutput{}, nil)
	s.expectTrigger(job, true, nil)

	_, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
}

func (s *deploySuite) TestUpdateCodeWaitsForPendingFunction(c *gc.C) {
	defer s.setupMocks(c).Finish()

	graph := synthesize(c, "a.example.com")
	job := graph.Jobs[0]
	s.expectGetFunction(job, stackName)
	gomock.InOrder(
		s.lambda.EXPECT().UpdateFunctionCode(gomock.Any(), gomock.Any()).Return(nil,
			&lambdatypes.ResourceConflictException{Message: aws.String("function is Pending")}),
		s.lambda.EXPECT().UpdateFunctionCode(gomock.Any(), gomock.Any()).Return(
			&lambda.UpdateFunctionCodeOutput{FunctionArn: aws.String(functionARN(job))}, nil),
	)
	s.lambda.EXPECT().UpdateFunctionConfiguration(gomock.Any(), gomock.Any()).Return(
		&lambda.UpdateFunctionConfigurationOutput{}, nil)
	s.expectTrigger(job, true, nil)

	result, err := s.newDeployer(c).Deploy(context.Background(), graph, nil, graph.Domains())
	c.Assert(err, jc.ErrorIsNil)
	c.Check(result.FunctionARNs["a.example.com"], gc.Equals, functionARN(job))
}
