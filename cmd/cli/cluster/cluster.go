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

package cluster

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/eksboot/cmd/cli/common"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/output"
)

type command struct {
	log       *logger.FunLogger
	region    string
	outputFmt string
}

// NewCommand constructs the cluster command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	clusterCmd := cli.Command{
		Name:      "cluster",
		Usage:     "Show the connection metadata of an EKS cluster",
		ArgsUsage: "<cluster-name>",
		Description: `Read the settings node bootstrap depends on from EKS: endpoint,
certificate authority, service CIDR, authentication mode and subnets.

These are the values --gather fills into a description that omits them.

Example:
  eksboot cluster demo --region us-west-2`,
		Flags: []cli.Flag{
			common.RegionFlag(&m.region),
			common.OutputFlag(&m.outputFmt, string(output.FormatYAML)),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("cluster name required")
			}
			return m.run(c.Context, c.Args().First())
		},
	}

	return &clusterCmd
}

func (m *command) run(ctx context.Context, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	formatter, err := output.NewFormatter(m.outputFmt)
	if err != nil {
		return err
	}

	g, err := common.NewGatherer(ctx, m.region, m.log)
	if err != nil {
		return err
	}
	info, err := g.Cluster(ctx, name)
	if err != nil {
		return err
	}
	return formatter.Print(info)
}
