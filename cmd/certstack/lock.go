// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/mutex/v2"
)

const (
	lockDelay          = 250 * time.Millisecond
	defaultLockTimeout = 30 * time.Second
)

// lockName names the machine-wide mutex guarding the state file at path.
func lockName(path string) string {
	sum := sha256.Sum256([]byte(path))
	return "certstack-" + hex.EncodeToString(sum[:6])
}

// acquireStateLock blocks until no other deployment on this machine is
// using the state file at path, or timeout passes. The returned function
// releases the lock.
func acquireStateLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	releaser, err := mutex.Acquire(mutex.Spec{
		Name:    lockName(path),
		Clock:   clock.WallClock,
		Delay:   lockDelay,
		Timeout: timeout,
		Cancel:  ctx.Done(),
	})
	if errors.Is(err, mutex.ErrTimeout) {
		return nil, errors.Errorf("state file %q is in use by another deployment", path)
	} else if err != nil {
		return nil, errors.Annotatef(err, "locking state file %q", path)
	}
	return releaser.Release, nil
}
