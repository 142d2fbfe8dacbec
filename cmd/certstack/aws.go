// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

// awsFlags selects the account and region AWS clients talk to. Anything
// not given falls back to the SDK's default chain.
type awsFlags struct {
	region    string
	profile   string
	accessKey string
	secretKey string
}

func (a *awsFlags) SetFlags(f *gnuflag.FlagSet) {
	f.StringVar(&a.region, "region", "", "AWS region to deploy to")
	f.StringVar(&a.profile, "profile", "", "shared configuration profile")
	f.StringVar(&a.accessKey, "access-key", "", "AWS access key ID")
	f.StringVar(&a.secretKey, "secret-key", "", "AWS secret access key")
}

func (a *awsFlags) validate() error {
	if (a.accessKey == "") != (a.secretKey == "") {
		return errors.NotValidf("--access-key without --secret-key or the reverse")
	}
	return nil
}

// load returns the client configuration. region, if not empty, is used
// when --region was not given.
func (a *awsFlags) load(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if a.region != "" {
		region = a.region
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if a.profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(a.profile))
	}
	if a.accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.accessKey, a.secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.Annotate(err, "loading AWS configuration")
	}
	if cfg.Region == "" {
		return aws.Config{}, errors.NotValidf("empty region (use --region or the Region context variable)")
	}
	return cfg, nil
}
