// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package cloudformation renders a resource graph as an AWS
// CloudFormation template.
package cloudformation

import (
	"bytes"
	"encoding/json"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the template format version of every template.
const FormatVersion = "2010-09-09"

// Template is a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string               `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]Resource  `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output    `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// Parameter is a template input.
type Parameter struct {
	Type        string `json:"Type" yaml:"Type"`
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default     string `json:"Default,omitempty" yaml:"Default,omitempty"`
}

// Resource is a single template resource.
type Resource struct {
	Type                string         `json:"Type" yaml:"Type"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
	Properties          map[string]any `json:"Properties" yaml:"Properties"`
}

// Output is a value exported by the stack.
type Output struct {
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any    `json:"Value" yaml:"Value"`
}

// Ref refers to a parameter or resource.
func Ref(name string) map[string]any {
	return map[string]any{"Ref": name}
}

// GetAtt reads an attribute of a resource.
func GetAtt(logicalID, attr string) map[string]any {
	return map[string]any{"Fn::GetAtt": []string{logicalID, attr}}
}

// Sub substitutes pseudo parameters into s.
func Sub(s string) map[string]any {
	return map[string]any{"Fn::Sub": s}
}

// YAML encodes the template as YAML.
func (t *Template) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, errors.Annotate(err, "encoding template")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Trace(err)
	}
	return buf.Bytes(), nil
}

// JSON encodes the template as indented JSON.
func (t *Template) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, errors.Annotate(err, "encoding template")
	}
	return append(data, '\n'), nil
}
