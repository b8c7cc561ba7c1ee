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

// Package ami provides CLI commands for querying EKS optimized AMI types.
package ami

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/eksboot/cmd/cli/common"
	"github.com/NVIDIA/eksboot/internal/ami"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/output"
)

type command struct {
	log *logger.FunLogger
}

// NewCommand constructs the ami command with the specified logger.
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := &command{
		log: log,
	}
	return c.build()
}

func (c *command) build() *cli.Command {
	return &cli.Command{
		Name:  "ami",
		Usage: "Query EKS optimized AMI types",
		Description: `Commands for listing AMI types and resolving the images behind them.

Node groups select an image either with an explicit amiType or implicitly
from their operating system, GPU flag and instance types:

  nodeGroups:
    - name: gpu-workers
      operatingSystem: AL2023
      gpu: true
      instanceTypes: [g5.xlarge]   # resolves to AL2023_x86_64_NVIDIA

Use these commands to discover AMI types and the SSM parameters that
publish their recommended image ids.`,
		Subcommands: []*cli.Command{
			c.buildListCommand(),
			c.buildDescribeCommand(),
			c.buildSelectCommand(),
			c.buildResolveCommand(),
		},
	}
}

// typeList renders AMI metadata as a table.
type typeList []ami.Metadata

func (l typeList) Headers() []string {
	return []string{"AMI TYPE", "OS", "ARCH", "GPU", "ALIASES"}
}

func (l typeList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, md := range l {
		aliases := "-"
		if len(md.Aliases) > 0 {
			aliases = strings.Join(md.Aliases, ", ")
		}
		rows = append(rows, []string{
			string(md.Type),
			string(md.OS),
			string(md.Architecture),
			strconv.FormatBool(md.GPUSupport),
			aliases,
		})
	}
	return rows
}

func (c *command) buildListCommand() *cli.Command {
	var outputFmt, osFilter string

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List supported AMI types",
		Description: `List every AMI type known to the compiler.

Example:
  eksboot ami list
  eksboot ami list --os Bottlerocket -o json`,
		Flags: []cli.Flag{
			common.OutputFlag(&outputFmt, string(output.FormatTable)),
			&cli.StringFlag{
				Name:        "os",
				Usage:       "Only list AMI types of this operating system",
				Destination: &osFilter,
			},
		},
		Action: func(_ *cli.Context) error {
			return c.runList(outputFmt, osFilter)
		},
	}
}

func (c *command) runList(outputFmt, osFilter string) error {
	formatter, err := output.NewFormatter(outputFmt)
	if err != nil {
		return err
	}

	var filter ami.OperatingSystem
	if osFilter != "" {
		filter, err = ami.ParseOperatingSystem(osFilter)
		if err != nil {
			return err
		}
	}

	var list typeList
	for _, md := range ami.All() {
		if filter == "" || md.OS == filter {
			list = append(list, md)
		}
	}
	return formatter.Print(list)
}

func (c *command) buildDescribeCommand() *cli.Command {
	var version string

	return &cli.Command{
		Name:      "describe",
		Usage:     "Show details for an AMI type",
		ArgsUsage: "<ami-type>",
		Description: `Display the metadata of an AMI type or legacy alias.

Example:
  eksboot ami describe AL2023_ARM_64_STANDARD --version 1.31`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "version",
				Aliases:     []string{"k"},
				Usage:       "Kubernetes version used to render the SSM parameter",
				Destination: &version,
			},
		},
		Action: func(ctx *cli.Context) error {
			return c.runDescribe(ctx, version)
		},
	}
}

func (c *command) runDescribe(ctx *cli.Context, version string) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("AMI type required (run 'eksboot ami list' for options)")
	}

	name := ctx.Args().First()
	md, ok := ami.Get(name)
	if !ok {
		return fmt.Errorf("unknown AMI type: %s (run 'eksboot ami list' for available options)", name)
	}

	fmt.Printf("AMI Type:         %s\n", md.Type)
	fmt.Printf("Operating System: %s\n", md.OS)
	fmt.Printf("Architecture:     %s\n", md.Architecture)
	fmt.Printf("GPU Support:      %t\n", md.GPUSupport)
	if len(md.Aliases) > 0 {
		fmt.Printf("Aliases:          %s\n", strings.Join(md.Aliases, ", "))
	}
	if version != "" {
		fmt.Printf("SSM Parameter:    %s\n", md.LookupKey(version))
	}

	return nil
}

func (c *command) buildSelectCommand() *cli.Command {
	var osName, instanceTypes string
	var gpu bool

	return &cli.Command{
		Name:  "select",
		Usage: "Select the AMI type for an operating system and instance types",
		Description: `Derive the AMI type a node group would use without an explicit amiType.

Examples:
  eksboot ami select --os AL2023 --instance-types m7g.large,c7g.xlarge
  eksboot ami select --os Bottlerocket --gpu --instance-types g5.xlarge`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "os",
				Usage:       "Operating system",
				Value:       string(ami.OperatingSystemAL2023),
				Destination: &osName,
			},
			&cli.StringFlag{
				Name:        "instance-types",
				Aliases:     []string{"t"},
				Usage:       "Comma separated instance types",
				Destination: &instanceTypes,
			},
			&cli.BoolFlag{
				Name:        "gpu",
				Usage:       "Select a GPU enabled AMI type",
				Destination: &gpu,
			},
		},
		Action: func(_ *cli.Context) error {
			return c.runSelect(osName, instanceTypes, gpu)
		},
	}
}

func (c *command) runSelect(osName, instanceTypes string, gpu bool) error {
	os, err := ami.ParseOperatingSystem(osName)
	if err != nil {
		return err
	}
	var types []string
	if instanceTypes != "" {
		types = strings.Split(instanceTypes, ",")
	}

	amiType, err := ami.DetermineAmiType(os, gpu, types, "instanceTypes")
	if err != nil {
		return err
	}
	fmt.Println(amiType)
	return nil
}

func (c *command) buildResolveCommand() *cli.Command {
	var region, version string

	return &cli.Command{
		Name:      "resolve",
		Usage:     "Get the recommended image id of an AMI type",
		ArgsUsage: "<ami-type>",
		Description: `Resolve the image id of an AMI type for a Kubernetes version.

This command reads the SSM parameter EKS publishes for the AMI type.

Examples:
  # Get the AL2023 image for Kubernetes 1.31 in us-west-2
  eksboot ami resolve AL2023_x86_64_STANDARD --version 1.31 --region us-west-2`,
		Flags: []cli.Flag{
			common.RegionFlag(&region),
			&cli.StringFlag{
				Name:        "version",
				Aliases:     []string{"k"},
				Usage:       "Kubernetes version (required)",
				Destination: &version,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			return c.runResolve(ctx, region, version)
		},
	}
}

func (c *command) runResolve(ctx *cli.Context, region, version string) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("AMI type required (run 'eksboot ami list' for options)")
	}
	amiType, ok := ami.ToAmiType(ctx.Args().First())
	if !ok {
		return fmt.Errorf("unknown AMI type: %s (run 'eksboot ami list' for available options)", ctx.Args().First())
	}

	bg := ctx.Context
	if bg == nil {
		bg = context.Background()
	}
	g, err := common.NewGatherer(bg, region, c.log)
	if err != nil {
		return err
	}

	resolved, err := g.Resolver().Resolve(bg, amiType, version)
	if err != nil {
		return err
	}
	c.log.Debug("Resolved %s from %s", resolved.ImageID, resolved.LookupKey)

	fmt.Println(resolved.ImageID)
	return nil
}
