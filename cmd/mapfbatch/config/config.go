// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the config subcommand, which prints the effective batch configuration.
package config

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/mapfbatch/internal/config"
	"github.com/urfave/cli/v3"
)

const fileArg = "file"

// ConfigCmd is the command that prints the default or effective configuration.
var ConfigCmd = newCmd()

func newCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the default configuration, or check a config file and print its effective values",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "[CONFIG_FILE]",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	if path := cmd.StringArg(fileArg); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		if err := cfg.Validate(); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to render configuration: %s", err), 1)
	}

	_, err = cmd.Root().Writer.Write(data)

	return err
}
