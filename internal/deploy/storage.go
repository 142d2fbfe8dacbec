// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/juju/errors"

	stackerrors "github.com/juju/certstack/internal/stack/errors"
	"github.com/juju/certstack/internal/stack/resource"
)

// defaultBucketRegion is the one region where CreateBucket rejects a
// location constraint.
const defaultBucketRegion = "us-east-1"

// ensureStorage creates the storage target, or adopts it if this account
// already owns it and no other stack has claimed it.
func (d *Deployer) ensureStorage(ctx context.Context, target resource.StorageTarget, result *Result) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(target.Name)}
	if d.config.Region != "" && d.config.Region != defaultBucketRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(d.config.Region),
		}
	}

	var (
		owned  *s3types.BucketAlreadyOwnedByYou
		exists *s3types.BucketAlreadyExists
	)
	action := resource.ActionCreate
	_, err := d.config.S3.CreateBucket(ctx, input)
	switch {
	case err == nil:
		logger.Infof("created bucket %q", target.Name)
	case errors.As(err, &owned):
		action = resource.ActionUpdate
	case errors.As(err, &exists):
		return stackerrors.NewResourceNamingConflict(target.Name, "bucket is owned by another account")
	default:
		return errors.Annotatef(err, "creating bucket %q", target.Name)
	}

	tags, err := d.bucketTags(ctx, target.Name)
	if err != nil {
		return errors.Trace(err)
	}
	if tagged, matches := stackTagMatches(tags, target.Stack); tagged && !matches {
		return stackerrors.NewResourceNamingConflict(target.Name,
			"bucket belongs to stack %q", tags[resource.StackTagKey])
	} else if tagged && action == resource.ActionUpdate {
		logger.Debugf("bucket %q already belongs to stack %q", target.Name, target.Stack)
		return nil
	}

	tags[resource.StackTagKey] = target.Stack
	var tagSet []s3types.Tag
	for _, k := range sortedKeys(tags) {
		tagSet = append(tagSet, s3types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	_, err = d.config.S3.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(target.Name),
		Tagging: &s3types.Tagging{TagSet: tagSet},
	})
	if err != nil {
		return errors.Annotatef(err, "tagging bucket %q", target.Name)
	}
	result.record(resource.KindStorageTarget, target.Name, target.LogicalID, "", action)
	return nil
}

// bucketTags returns the tags of bucket. A bucket without tags yields an
// empty map.
func (d *Deployer) bucketTags(ctx context.Context, bucket string) (map[string]string, error) {
	tags := make(map[string]string)
	out, err := d.config.S3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucket)})
	if errorCode(err) == codeNoSuchTagSet {
		return tags, nil
	} else if err != nil {
		return nil, errors.Annotatef(err, "reading tags of bucket %q", bucket)
	}
	for _, tag := range out.TagSet {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags, nil
}
