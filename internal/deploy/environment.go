// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/juju/errors"
)

// Environment is the account and region a stack is deployed to.
type Environment struct {
	Account string
	Region  string
}

// ResolveEnvironment asks STS which account the client's credentials
// belong to.
func ResolveEnvironment(ctx context.Context, client STSClient, region string) (Environment, error) {
	if region == "" {
		return Environment{}, errors.NotValidf("empty region")
	}
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Environment{}, errors.Annotate(err, "resolving deployment account")
	}
	account := aws.ToString(out.Account)
	if account == "" {
		return Environment{}, errors.NotFoundf("account of caller %q", aws.ToString(out.Arn))
	}
	logger.Debugf("deploying to account %s in %s", account, region)
	return Environment{Account: account, Region: region}, nil
}
