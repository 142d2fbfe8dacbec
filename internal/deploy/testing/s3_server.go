// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Server implements an S3 bucket simulator for use in testing. Buckets
// added with AddForeignBucket belong to some other account.
type S3Server struct {
	mu sync.Mutex

	buckets  map[string]map[string]string
	foreign  map[string]bool
	location map[string]types.BucketLocationConstraint
	calls    map[string]int
}

// NewS3Server returns an empty simulator.
func NewS3Server() *S3Server {
	srv := &S3Server{}
	srv.Reset()
	return srv
}

// Reset forgets every bucket and call.
func (s *S3Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets = make(map[string]map[string]string)
	s.foreign = make(map[string]bool)
	s.location = make(map[string]types.BucketLocationConstraint)
	s.calls = make(map[string]int)
}

// AddBucket installs a bucket owned by the caller's account.
func (s *S3Server) AddBucket(name string, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets[name] = make(map[string]string)
	for k, v := range tags {
		s.buckets[name][k] = v
	}
}

// AddForeignBucket installs a bucket owned by another account.
func (s *S3Server) AddForeignBucket(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foreign[name] = true
}

// Tags returns the tags of the named bucket.
func (s *S3Server) Tags(name string) (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, ok := s.buckets[name]
	if !ok {
		return nil, false
	}
	copied := make(map[string]string)
	for k, v := range tags {
		copied[k] = v
	}
	return copied, true
}

// Location returns the location constraint the named bucket was created
// with.
func (s *S3Server) Location(name string) types.BucketLocationConstraint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location[name]
}

// Calls returns how many times the named operation was called.
func (s *S3Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *S3Server) CreateBucket(
	ctx context.Context,
	input *s3.CreateBucketInput,
	opts ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["CreateBucket"]++

	name := *input.Bucket
	if s.foreign[name] {
		return nil, &types.BucketAlreadyExists{Message: aws.String("bucket " + name)}
	}
	if _, exists := s.buckets[name]; exists {
		return nil, &types.BucketAlreadyOwnedByYou{Message: aws.String("bucket " + name)}
	}
	s.buckets[name] = make(map[string]string)
	if input.CreateBucketConfiguration != nil {
		s.location[name] = input.CreateBucketConfiguration.LocationConstraint
	}
	return &s3.CreateBucketOutput{Location: aws.String("/" + name)}, nil
}

func (s *S3Server) GetBucketTagging(
	ctx context.Context,
	input *s3.GetBucketTaggingInput,
	opts ...func(*s3.Options),
) (*s3.GetBucketTaggingOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetBucketTagging"]++

	tags, exists := s.buckets[*input.Bucket]
	if !exists {
		return nil, &types.NoSuchBucket{Message: aws.String("bucket " + *input.Bucket)}
	}
	if len(tags) == 0 {
		return nil, apiError("NoSuchTagSet", "the TagSet does not exist")
	}
	out := &s3.GetBucketTaggingOutput{}
	for k, v := range tags {
		out.TagSet = append(out.TagSet, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return out, nil
}

func (s *S3Server) PutBucketTagging(
	ctx context.Context,
	input *s3.PutBucketTaggingInput,
	opts ...func(*s3.Options),
) (*s3.PutBucketTaggingOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["PutBucketTagging"]++

	if _, exists := s.buckets[*input.Bucket]; !exists {
		return nil, &types.NoSuchBucket{Message: aws.String("bucket " + *input.Bucket)}
	}
	tags := make(map[string]string)
	for _, tag := range input.Tagging.TagSet {
		tags[*tag.Key] = *tag.Value
	}
	s.buckets[*input.Bucket] = tags
	return &s3.PutBucketTaggingOutput{}, nil
}
