// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package config resolves the deployment configuration of a certificate
// renewal stack from a context source.
package config

// Context variable names.
const (
	OutputBucketNameKey = "OutputBucketName"
	DomainsKey          = "Domains"
	AcmeServerKey       = "AcmeServer"
	AccountEmailKey     = "AccountEmail"

	StackNameKey      = "StackName"
	ArtifactKey       = "Artifact"
	HandlerKey        = "Handler"
	RuntimeKey        = "Runtime"
	TimeoutSecondsKey = "TimeoutSeconds"
	ScheduleKey       = "Schedule"
	AccountKey        = "Account"
	RegionKey         = "Region"
)

// Defaults for the optional context variables.
const (
	DefaultStackName      = "CertBotStack"
	DefaultArtifact       = "./cert-bot.zip"
	DefaultHandler        = "cert-bot"
	DefaultRuntime        = "provided.al2023"
	DefaultTimeoutSeconds = 300
	DefaultSchedule       = "rate(7 days)"

	// maxTimeoutSeconds is the longest a Lambda function may run.
	maxTimeoutSeconds = 900
)

// RequiredKeys lists the context variables that must be present, in the
// order they are checked.
var RequiredKeys = []string{
	OutputBucketNameKey,
	DomainsKey,
	AcmeServerKey,
	AccountEmailKey,
}

// Configuration holds the resolved parameters of a deployment. It is a
// value; none of its methods mutate it.
type Configuration struct {
	outputBucketName string
	domains          []string
	acmeServer       string
	accountEmail     string

	stackName      string
	artifact       string
	handler        string
	runtime        string
	timeoutSeconds int
	schedule       string
	account        string
	region         string
}

// OutputBucketName is the name of the bucket certificates are written to.
func (c Configuration) OutputBucketName() string {
	return c.outputBucketName
}

// Domains returns a copy of the configured domains, in configured order.
func (c Configuration) Domains() []string {
	return append([]string{}, c.domains...)
}

// AcmeServer is the ACME directory the renewal job talks to.
func (c Configuration) AcmeServer() string {
	return c.acmeServer
}

// AccountEmail is the ACME account contact.
func (c Configuration) AccountEmail() string {
	return c.accountEmail
}

// StackName names the deployment; every derived resource carries it.
func (c Configuration) StackName() string {
	return c.stackName
}

// Artifact is the reference to the renewal job's deployment package.
func (c Configuration) Artifact() string {
	return c.artifact
}

// Handler is the entry point of the renewal job.
func (c Configuration) Handler() string {
	return c.handler
}

// Runtime identifies the compute runtime of the renewal job.
func (c Configuration) Runtime() string {
	return c.runtime
}

// TimeoutSeconds bounds a single renewal run.
func (c Configuration) TimeoutSeconds() int {
	return c.timeoutSeconds
}

// Schedule is the trigger's schedule expression.
func (c Configuration) Schedule() string {
	return c.schedule
}

// Account is the deployment account, or "" if it is resolved at deploy
// time.
func (c Configuration) Account() string {
	return c.account
}

// Region is the deployment region, or "" if it is resolved at deploy
// time.
func (c Configuration) Region() string {
	return c.region
}

// WithEnvironment returns a copy of the configuration bound to the given
// account and region. Empty arguments leave the current value in place.
func (c Configuration) WithEnvironment(account, region string) Configuration {
	c.domains = c.Domains()
	if account != "" {
		c.account = account
	}
	if region != "" {
		c.region = region
	}
	return c
}
