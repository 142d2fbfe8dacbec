// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package state records the graph that was last deployed so later
// syntheses can be checked against it.
package state

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/utils/v4"
	"gopkg.in/yaml.v3"

	"github.com/juju/certstack/internal/stack/resource"
)

var logger = loggo.GetLogger("certstack.state")

// formatVersion is bumped whenever the file layout changes incompatibly.
const formatVersion = 1

type stateFile struct {
	Version int             `yaml:"version"`
	Graph   *resource.Graph `yaml:"graph"`
}

// Load reads the graph saved at path. A missing file means nothing has
// been deployed and yields a nil graph with no error.
func Load(path string) (*resource.Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debugf("no deployment state at %q", path)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotate(err, "reading deployment state")
	}
	return Parse(data)
}

// Parse decodes a saved graph.
func Parse(data []byte) (*resource.Graph, error) {
	var f stateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Annotate(err, "parsing deployment state")
	}
	if f.Version != formatVersion {
		return nil, errors.NotSupportedf("deployment state version %d", f.Version)
	}
	if f.Graph == nil {
		return nil, errors.NotValidf("deployment state without graph")
	}
	return f.Graph, nil
}

// Save atomically replaces the state at path with graph, creating the
// parent directory if needed.
func Save(path string, graph *resource.Graph) error {
	if graph == nil {
		return errors.NotValidf("nil graph")
	}
	data, err := yaml.Marshal(stateFile{Version: formatVersion, Graph: graph})
	if err != nil {
		return errors.Trace(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Annotate(err, "creating state directory")
	}
	if err := utils.AtomicWriteFile(path, data, 0600); err != nil {
		return errors.Annotatef(err, "writing deployment state %q", path)
	}
	logger.Debugf("saved %d jobs of stack %q to %q", len(graph.Jobs), graph.Stack, path)
	return nil
}
