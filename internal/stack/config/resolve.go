// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package config

import (
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/schema"

	stackerrors "github.com/juju/certstack/internal/stack/errors"
)

var logger = loggo.GetLogger("certstack.config")

var (
	stringChecker  = schema.String()
	domainsChecker = schema.OneOf(schema.List(schema.String()), schema.String())
	timeoutChecker = schema.ForceInt()
)

// Resolve reads the deployment configuration from src. A required
// variable that is absent or empty fails the whole resolution with a
// MissingConfigurationError naming it.
func Resolve(src ContextSource) (Configuration, error) {
	if src == nil {
		return Configuration{}, errors.NotValidf("nil context source")
	}

	var (
		cfg Configuration
		err error
	)
	if cfg.outputBucketName, err = requiredString(src, OutputBucketNameKey); err != nil {
		return Configuration{}, errors.Trace(err)
	}
	if cfg.domains, err = requiredDomains(src); err != nil {
		return Configuration{}, errors.Trace(err)
	}
	if cfg.acmeServer, err = requiredString(src, AcmeServerKey); err != nil {
		return Configuration{}, errors.Trace(err)
	}
	if cfg.accountEmail, err = requiredString(src, AccountEmailKey); err != nil {
		return Configuration{}, errors.Trace(err)
	}

	optional := []struct {
		key  string
		dflt string
		dest *string
	}{
		{StackNameKey, DefaultStackName, &cfg.stackName},
		{ArtifactKey, DefaultArtifact, &cfg.artifact},
		{HandlerKey, DefaultHandler, &cfg.handler},
		{RuntimeKey, DefaultRuntime, &cfg.runtime},
		{ScheduleKey, DefaultSchedule, &cfg.schedule},
		{AccountKey, "", &cfg.account},
		{RegionKey, "", &cfg.region},
	}
	for _, opt := range optional {
		if *opt.dest, err = optionalString(src, opt.key, opt.dflt); err != nil {
			return Configuration{}, errors.Trace(err)
		}
	}
	if cfg.timeoutSeconds, err = optionalTimeout(src); err != nil {
		return Configuration{}, errors.Trace(err)
	}
	if err := cfg.validate(); err != nil {
		return Configuration{}, errors.Trace(err)
	}

	logger.Debugf("resolved stack %q: bucket %q, %d domain(s)", cfg.stackName, cfg.outputBucketName, len(cfg.domains))
	return cfg, nil
}

func (c Configuration) validate() error {
	if c.timeoutSeconds <= 0 || c.timeoutSeconds > maxTimeoutSeconds {
		return errors.NotValidf("%s %d (must be between 1 and %d)", TimeoutSecondsKey, c.timeoutSeconds, maxTimeoutSeconds)
	}
	if !strings.HasPrefix(c.schedule, "rate(") && !strings.HasPrefix(c.schedule, "cron(") {
		return errors.NotValidf("%s %q", ScheduleKey, c.schedule)
	}
	return nil
}

func requiredString(src ContextSource, key string) (string, error) {
	v, ok := src.Lookup(key)
	if !ok || v == nil {
		return "", stackerrors.NewMissingConfiguration(key)
	}
	coerced, err := stringChecker.Coerce(v, []string{key})
	if err != nil {
		return "", errors.NotValidf("context variable %s: %v", key, err)
	}
	s := strings.TrimSpace(coerced.(string))
	if s == "" {
		return "", stackerrors.NewMissingConfiguration(key)
	}
	return s, nil
}

func optionalString(src ContextSource, key, dflt string) (string, error) {
	v, ok := src.Lookup(key)
	if !ok || v == nil {
		return dflt, nil
	}
	coerced, err := stringChecker.Coerce(v, []string{key})
	if err != nil {
		return "", errors.NotValidf("context variable %s: %v", key, err)
	}
	if s := strings.TrimSpace(coerced.(string)); s != "" {
		return s, nil
	}
	return dflt, nil
}

func optionalTimeout(src ContextSource) (int, error) {
	v, ok := src.Lookup(TimeoutSecondsKey)
	if !ok || v == nil || v == "" {
		return DefaultTimeoutSeconds, nil
	}
	coerced, err := timeoutChecker.Coerce(v, []string{TimeoutSecondsKey})
	if err != nil {
		return 0, errors.NotValidf("context variable %s: %v", TimeoutSecondsKey, err)
	}
	return coerced.(int), nil
}

// requiredDomains accepts either a list of names or a comma separated
// string. An empty list is a valid configuration with no jobs; an empty
// string is treated as an absent value.
func requiredDomains(src ContextSource) ([]string, error) {
	v, ok := src.Lookup(DomainsKey)
	if !ok || v == nil {
		return nil, stackerrors.NewMissingConfiguration(DomainsKey)
	}
	coerced, err := domainsChecker.Coerce(v, []string{DomainsKey})
	if err != nil {
		return nil, errors.NotValidf("context variable %s: %v", DomainsKey, err)
	}

	var raw []string
	switch value := coerced.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return nil, stackerrors.NewMissingConfiguration(DomainsKey)
		}
		raw = strings.Split(value, ",")
	case []interface{}:
		for _, item := range value {
			raw = append(raw, item.(string))
		}
	}

	domains := make([]string, 0, len(raw))
	seen := set.NewStrings()
	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d == "" {
			return nil, errors.NotValidf("empty domain in %s", DomainsKey)
		}
		if seen.Contains(d) {
			return nil, errors.NotValidf("domain %q listed more than once in %s", d, DomainsKey)
		}
		seen.Add(d)
		domains = append(domains, d)
	}
	return domains, nil
}
