// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package cmd

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
)

// LoggingConfigEnvKey names the environment variable holding the default
// logging configuration.
const LoggingConfigEnvKey = "CERTSTACK_LOGGING_CONFIG"

var logger = loggo.GetLogger("certstack.cmd")

// Log configures logging from the command line.
type Log struct {
	// DefaultConfig is used when --logging-config is not given.
	DefaultConfig string

	Debug  bool
	Config string
}

// AddFlags adds the logging options to f.
func (l *Log) AddFlags(f *gnuflag.FlagSet) {
	f.BoolVar(&l.Debug, "debug", false, "log debug messages")
	f.StringVar(&l.Config, "logging-config", l.DefaultConfig, "specify log levels for modules")
}

// Start configures the loggers and sends their output to ctx.Stderr.
func (l *Log) Start(ctx *Context) error {
	loggo.ResetLogging()
	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(ctx.Stderr, loggo.DefaultFormatter)); err != nil {
		return errors.Trace(err)
	}
	config := l.Config
	if config == "" {
		config = "<root>=WARNING"
	}
	if l.Debug {
		config += ";<root>=DEBUG"
	}
	return errors.Annotate(loggo.ConfigureLoggers(config), "configuring loggers")
}

// SuperCommandParams configures a SuperCommand.
type SuperCommandParams struct {
	Name    string
	Purpose string
	Doc     string
	Version string

	// NotifyRun is called with the subcommand name before it runs.
	NotifyRun func(name string)
}

// SuperCommand dispatches to one of a set of registered subcommands.
type SuperCommand struct {
	params  SuperCommandParams
	log     Log
	subcmds map[string]Command
	subcmd  Command
	version bool
}

// NewSuperCommand returns a SuperCommand with no subcommands. The default
// logging configuration is taken from the environment.
func NewSuperCommand(p SuperCommandParams) *SuperCommand {
	if p.NotifyRun == nil {
		p.NotifyRun = runNotifier
	}
	return &SuperCommand{
		params:  p,
		log:     Log{DefaultConfig: os.Getenv(LoggingConfigEnvKey)},
		subcmds: make(map[string]Command),
	}
}

func runNotifier(name string) {
	logger.Debugf("running %s [%s %s]", name, runtime.Compiler, runtime.Version())
}

// Register makes a subcommand available.
func (c *SuperCommand) Register(sub Command) {
	name := sub.Info().Name
	if _, found := c.subcmds[name]; found {
		panic(fmt.Sprintf("command already registered: %q", name))
	}
	c.subcmds[name] = sub
}

// Info implements Command.
func (c *SuperCommand) Info() *Info {
	names := make([]string, 0, len(c.subcmds))
	for name := range c.subcmds {
		names = append(names, name)
	}
	sort.Strings(names)
	var doc strings.Builder
	doc.WriteString(strings.TrimSpace(c.params.Doc))
	doc.WriteString("\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&doc, "    %-10s - %s\n", name, c.subcmds[name].Info().Purpose)
	}
	return &Info{
		Name:    c.params.Name,
		Args:    "<command> ...",
		Purpose: c.params.Purpose,
		Doc:     doc.String(),
	}
}

// SetFlags implements Command.
func (c *SuperCommand) SetFlags(f *gnuflag.FlagSet) {
	c.log.AddFlags(f)
	f.BoolVar(&c.version, "version", false, "show the version and exit")
}

// Init implements Command. The first argument picks the subcommand, which
// parses the rest.
func (c *SuperCommand) Init(args []string) error {
	if c.version {
		return nil
	}
	if len(args) == 0 {
		return errors.New("no command specified")
	}
	sub, found := c.subcmds[args[0]]
	if !found {
		return errors.Errorf("unrecognized command: %s %s", c.params.Name, args[0])
	}
	c.subcmd = sub
	return Parse(sub, true, args[1:], os.Stderr)
}

// Run implements Command.
func (c *SuperCommand) Run(ctx *Context) error {
	if c.version {
		fmt.Fprintln(ctx.Stdout, c.params.Version)
		return nil
	}
	if c.subcmd == nil {
		return errors.New("no command specified")
	}
	if err := c.log.Start(ctx); err != nil {
		return errors.Trace(err)
	}
	c.params.NotifyRun(c.subcmd.Info().Name)
	return c.subcmd.Run(ctx)
}
