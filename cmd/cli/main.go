/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"os"

	"github.com/NVIDIA/eksboot/cmd/cli/ami"
	"github.com/NVIDIA/eksboot/cmd/cli/auth"
	"github.com/NVIDIA/eksboot/cmd/cli/cluster"
	"github.com/NVIDIA/eksboot/cmd/cli/compile"
	"github.com/NVIDIA/eksboot/cmd/cli/subnets"
	"github.com/NVIDIA/eksboot/cmd/cli/validate"
	"github.com/NVIDIA/eksboot/internal/logger"

	cli "github.com/urfave/cli/v2"
)

const (
	// ProgramName is the canonical name of this program
	ProgramName = "eksboot"
)

type config struct {
	Debug   bool
	Verbose bool
	Quiet   bool
}

func main() {
	config := config{}
	log := logger.NewLogger()

	// Create the top-level CLI
	c := cli.NewApp()
	c.Name = ProgramName
	c.Usage = "Compile EKS node bootstrap and access configuration"
	c.Description = `
eksboot compiles a declarative description of an EKS cluster's node groups
and access settings into the artifacts nodes and the control plane need:
the AMI each node group boots, the subnets it launches into, the user data
that joins it to the cluster, the aws-auth ConfigMap and EKS access entries.

Compilation is offline by default. Pass --gather to read missing cluster
settings, image ids and subnet routes from AWS.

Examples:
  # Check a description
  eksboot validate -f bootstrap.yaml

  # Summarize the compiled node groups
  eksboot compile -f bootstrap.yaml

  # Print the user data of one node group
  eksboot compile -f bootstrap.yaml -n workers -o raw

  # Print the aws-auth ConfigMap
  eksboot auth -f bootstrap.yaml -o raw

  # List AMI types
  eksboot ami list`
	c.Version = "0.1.0"
	c.EnableBashCompletion = true

	// Setup the flags for this command
	c.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "Enable debug-level logging",
			Destination: &config.Debug,
			EnvVars:     []string{"DEBUG"},
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "Enable verbose output",
			Destination: &config.Verbose,
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "Only print errors",
			Destination: &config.Quiet,
		},
	}
	c.Before = func(_ *cli.Context) error {
		switch {
		case config.Debug:
			log.SetVerbosity(logger.VerbosityDebug)
		case config.Verbose:
			log.SetVerbosity(logger.VerbosityVerbose)
		case config.Quiet:
			log.SetVerbosity(logger.VerbosityQuiet)
		}
		return nil
	}

	// Define the subcommands
	c.Commands = []*cli.Command{
		ami.NewCommand(log),
		auth.NewCommand(log),
		cluster.NewCommand(log),
		compile.NewCommand(log),
		subnets.NewCommand(log),
		validate.NewCommand(log),
	}

	err := c.Run(os.Args)
	if err != nil {
		log.Error(err)
		log.Exit(1)
	}
}
