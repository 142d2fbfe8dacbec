// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command certstack synthesizes and deploys scheduled certificate renewal
// stacks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/certstack/cmd"
)

// version is set at build time.
var version = "0.1.0"

const certstackDoc = `
certstack provisions one scheduled certificate renewal job per domain,
sharing a single output bucket and execution role. Configuration comes
from the context map of cdk.json (or --context-file) and -c key=value
flags, which take precedence.

Required context variables: OutputBucketName, Domains, AcmeServer,
AccountEmail.
`

// NewSuperCommand returns the certstack command with every subcommand
// registered.
func NewSuperCommand() *cmd.SuperCommand {
	certstack := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "certstack",
		Purpose: "manage scheduled certificate renewal stacks",
		Doc:     certstackDoc,
		Version: version,
	})
	certstack.Register(newSynthCommand())
	certstack.Register(newDiffCommand())
	certstack.Register(newDeployCommand())
	certstack.Register(newShowCommand())
	return certstack
}

func main() {
	os.Exit(Main(os.Args[1:]))
}

// Main runs certstack with args and returns the exit code.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx, err := cmd.DefaultContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		return 2
	}
	return cmd.Main(NewSuperCommand(), cmdCtx, args)
}
