// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cloudformation

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"

	"github.com/juju/errors"

	"github.com/juju/certstack/internal/stack/policy"
	"github.com/juju/certstack/internal/stack/resource"
)

// Template parameters locating the renewal job's deployment package.
const (
	ArtifactBucketParam = "ArtifactBucket"
	ArtifactKeyParam    = "ArtifactKey"
)

const (
	schedulerPrincipal = "events.amazonaws.com"
	targetID           = "Target0"
	pseudoPrefix       = "${AWS::"
)

// LogicalID maps a graph logical ID onto the alphanumeric IDs accepted by
// CloudFormation. IDs that need no change are kept; others lose their
// punctuation and gain a hash of the full ID so they stay unique.
func LogicalID(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == len(id) {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	return b.String() + strings.ToUpper(hex.EncodeToString(sum[:4]))
}

// Render builds the template deploying graph.
func Render(graph *resource.Graph) (*Template, error) {
	if graph == nil {
		return nil, errors.NotValidf("nil graph")
	}
	stackTags := []map[string]any{{"Key": resource.StackTagKey, "Value": graph.Stack}}

	t := &Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              "Scheduled certificate renewal for stack " + graph.Stack,
		Parameters: map[string]Parameter{
			ArtifactBucketParam: {
				Type:        "String",
				Description: "Bucket holding the renewal job package",
			},
			ArtifactKeyParam: {
				Type:        "String",
				Description: "Key of the renewal job package",
				Default:     artifactKey(graph),
			},
		},
		Resources: make(map[string]Resource),
	}

	bucketID := LogicalID(graph.Storage.LogicalID)
	t.Resources[bucketID] = Resource{
		Type:                "AWS::S3::Bucket",
		DeletionPolicy:      "Retain",
		UpdateReplacePolicy: "Retain",
		Properties: map[string]any{
			"BucketName": graph.Storage.Name,
			"Tags":       stackTags,
		},
	}

	roleID := LogicalID(graph.Identity.LogicalID)
	t.Resources[roleID] = Resource{
		Type: "AWS::IAM::Role",
		Properties: map[string]any{
			"RoleName":                 graph.Identity.Name,
			"AssumeRolePolicyDocument": policy.TrustDocument(graph.Identity),
			"Policies": []map[string]any{{
				"PolicyName":     graph.Identity.PolicyName,
				"PolicyDocument": permissionDocument(graph.Identity),
			}},
			"Tags": stackTags,
		},
	}

	for _, job := range graph.Jobs {
		if job.Trigger.Target != job.Compute.Name {
			return nil, errors.NotValidf("trigger %q targeting %q instead of %q",
				job.Trigger.Name, job.Trigger.Target, job.Compute.Name)
		}
		functionID := LogicalID(job.Compute.LogicalID)
		ruleID := LogicalID(job.Trigger.LogicalID)
		permissionID := LogicalID(job.Trigger.LogicalID + "-Permission")

		t.Resources[functionID] = Resource{
			Type:      "AWS::Lambda::Function",
			DependsOn: []string{roleID},
			Properties: map[string]any{
				"FunctionName": job.Compute.Name,
				"Handler":      job.Compute.EntryPoint,
				"Runtime":      job.Compute.Runtime,
				"Timeout":      job.Compute.TimeoutSeconds,
				"Role":         GetAtt(roleID, "Arn"),
				"Code": map[string]any{
					"S3Bucket": Ref(ArtifactBucketParam),
					"S3Key":    Ref(ArtifactKeyParam),
				},
				"Environment": map[string]any{
					"Variables": job.Compute.Environment,
				},
				"Tags": stackTags,
			},
		}
		t.Resources[ruleID] = Resource{
			Type: "AWS::Events::Rule",
			Properties: map[string]any{
				"Name":               job.Trigger.Name,
				"ScheduleExpression": job.Trigger.Schedule,
				"State":              "ENABLED",
				"Targets": []map[string]any{{
					"Id":  targetID,
					"Arn": GetAtt(functionID, "Arn"),
				}},
			},
		}
		t.Resources[permissionID] = Resource{
			Type: "AWS::Lambda::Permission",
			Properties: map[string]any{
				"Action":       "lambda:InvokeFunction",
				"FunctionName": GetAtt(functionID, "Arn"),
				"Principal":    schedulerPrincipal,
				"SourceArn":    GetAtt(ruleID, "Arn"),
			},
		}
	}

	t.Outputs = map[string]Output{
		"OutputBucketName": {
			Description: "Bucket receiving issued certificates",
			Value:       Ref(bucketID),
		},
		"ExecutionRoleArn": {
			Description: "Role the renewal jobs run as",
			Value:       GetAtt(roleID, "Arn"),
		},
	}
	return t, nil
}

// permissionDocument renders the inline policy, substituting pseudo
// parameters where the account or region was not known.
func permissionDocument(identity resource.ExecutionIdentity) map[string]any {
	doc := policy.PermissionDocument(identity)
	statements := make([]map[string]any, len(doc.Statement))
	for i, st := range doc.Statement {
		resources := make([]any, len(st.Resource))
		for j, r := range st.Resource {
			if strings.Contains(r, pseudoPrefix) {
				resources[j] = Sub(r)
			} else {
				resources[j] = r
			}
		}
		statements[i] = map[string]any{
			"Sid":      st.Sid,
			"Effect":   st.Effect,
			"Action":   st.Action,
			"Resource": resources,
		}
	}
	return map[string]any{
		"Version":   doc.Version,
		"Statement": statements,
	}
}

func artifactKey(graph *resource.Graph) string {
	if len(graph.Jobs) == 0 {
		return ""
	}
	return path.Base(graph.Jobs[0].Compute.ArtifactRef)
}
