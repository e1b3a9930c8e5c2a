// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package rules

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/xe/internal/ctxlog"
	"github.com/spf13/afero"
)

const hclExt = ".hcl"

var (
	// ErrReadRules is returned when the rule file cannot be read.
	ErrReadRules = errors.New("failed to read rule file")
	// ErrParseRules is returned when the rule file cannot be decoded.
	ErrParseRules = errors.New("failed to parse rule file")
)

// FsFactory returns the filesystem local rule files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// yamlFile is the layout of a YAML rule file:
//
//	rules:
//	  - pattern: "*.c"
//	    command: [cc, -c, "{}"]
type yamlFile struct {
	Rules []struct {
		Pattern *string  `yaml:"pattern"`
		Command []string `yaml:"command"`
	} `yaml:"rules"`
}

// hclFile is the layout of an HCL rule file:
//
//	rule "*.c" {
//	  command = ["cc", "-c", "{}"]
//	}
type hclFile struct {
	Rules []hclRule `hcl:"rule,block"`
}

type hclRule struct {
	Pattern string   `hcl:"pattern,label"`
	Command []string `hcl:"command,optional"`
}

// Load reads rules from src. A path to an existing local file is read
// directly, anything else is fetched with go-getter. Files ending in .hcl
// are decoded as HCL, all others as YAML.
func Load(ctx context.Context, src string) ([]Rule, error) {
	logger := ctxlog.Logger(ctx).With("rules", src)

	content, name, err := read(ctx, src)
	if err != nil {
		return nil, err
	}

	logger.Debug("read rule file", "bytes", len(content))

	var defs []definition

	if strings.EqualFold(path.Ext(name), hclExt) {
		defs, err = decodeHCL(content, name)
	} else {
		defs, err = decodeYAML(content, name)
	}

	if err != nil {
		return nil, errors.Join(ErrParseRules, err)
	}

	return build(defs)
}

func read(ctx context.Context, src string) ([]byte, string, error) {
	if src == "" {
		return nil, "", ErrReadRules
	}

	fs := FsFactory()

	if fi, err := fs.Stat(src); err == nil && !fi.IsDir() {
		content, err := afero.ReadFile(fs, src)
		if err != nil {
			return nil, "", errors.Join(ErrReadRules, err)
		}

		return content, src, nil
	}

	return getURL(ctx, src)
}

func decodeYAML(content []byte, name string) ([]definition, error) {
	var f yamlFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	defs := make([]definition, 0, len(f.Rules))
	for i, r := range f.Rules {
		d := definition{
			source:  fmt.Sprintf("%s: rule %d", name, i+1),
			command: r.Command,
		}

		if r.Pattern != nil {
			d.pattern, d.hasPattern = *r.Pattern, true
		}

		defs = append(defs, d)
	}

	return defs, nil
}

func decodeHCL(content []byte, name string) ([]definition, error) {
	file, diags := hclsyntax.ParseConfig(content, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, diags
	}

	defs := make([]definition, 0, len(f.Rules))
	for i, r := range f.Rules {
		defs = append(defs, definition{
			source:     fmt.Sprintf("%s: rule %d", name, i+1),
			pattern:    r.Pattern,
			hasPattern: r.Pattern != "",
			command:    r.Command,
		})
	}

	return defs, nil
}
