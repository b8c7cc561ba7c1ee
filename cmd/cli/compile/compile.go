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

package compile

import (
	"context"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/eksboot/cmd/cli/common"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/nodegroup"
	"github.com/NVIDIA/eksboot/pkg/output"
)

type command struct {
	log       *logger.FunLogger
	file      string
	region    string
	outputFmt string
	nodeGroup string
	gather    bool
	encodeRaw bool
}

// Result is the output of a compile.
type Result struct {
	NodeGroups []*nodegroup.Artifacts `json:"nodeGroups"`

	encodeRaw bool
}

// Headers implements output.TableData.
func (r *Result) Headers() []string {
	return []string{"NODEGROUP", "TYPE", "OS", "ARCH", "AMI TYPE", "IMAGE", "SUBNETS", "USER DATA"}
}

// Rows implements output.TableData.
func (r *Result) Rows() [][]string {
	rows := make([][]string, 0, len(r.NodeGroups))
	for _, a := range r.NodeGroups {
		rows = append(rows, []string{
			a.Name,
			string(a.NodeGroupType),
			string(a.OperatingSystem),
			string(a.Architecture),
			orDash(string(a.AmiType)),
			orDash(a.ImageID),
			orDash(strings.Join(a.SubnetIDs, ",")),
			string(a.UserDataType),
		})
	}
	return rows
}

// Raw implements output.RawData. It is only meaningful for a single node
// group.
func (r *Result) Raw() string {
	if len(r.NodeGroups) != 1 {
		return ""
	}
	if r.encodeRaw {
		return r.NodeGroups[0].UserDataBase64
	}
	return r.NodeGroups[0].UserData
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewCommand constructs the compile command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	compileCmd := cli.Command{
		Name:  "compile",
		Usage: "Compile node group launch settings and user data",
		Description: `Compile every node group of a bootstrap description into the AMI,
subnets and user data its nodes launch with.

Without --gather the compile is offline: image ids are left empty and nodes
are placed in the cluster subnets as listed. With --gather, missing cluster
settings are read from EKS, image ids from SSM and subnet routes from EC2.

Examples:
  # Compile offline and show a summary
  eksboot compile -f bootstrap.yaml

  # Print the user data of one node group
  eksboot compile -f bootstrap.yaml -n gpu-workers -o raw

  # Same, base64 encoded for a launch template
  eksboot compile -f bootstrap.yaml -n gpu-workers -o raw --base64

  # Resolve images and subnets against the live cluster
  eksboot compile -f bootstrap.yaml --gather -o yaml`,
		Flags: []cli.Flag{
			common.BootstrapFileFlag(&m.file),
			common.RegionFlag(&m.region),
			common.OutputFlag(&m.outputFmt, string(output.FormatTable)),
			common.GatherFlag(&m.gather),
			&cli.StringFlag{
				Name:        "nodegroup",
				Aliases:     []string{"n"},
				Usage:       "Only compile the named node group",
				Destination: &m.nodeGroup,
			},
			&cli.BoolFlag{
				Name:        "base64",
				Usage:       "Print base64 encoded user data with -o raw",
				Destination: &m.encodeRaw,
			},
		},
		Action: func(c *cli.Context) error {
			return m.run(c.Context)
		},
	}

	return &compileCmd
}

func (m *command) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	formatter, err := output.NewFormatter(m.outputFmt)
	if err != nil {
		return err
	}

	b, err := common.LoadBootstrap(m.file)
	if err != nil {
		return err
	}
	if b.Spec.Cluster.Region == "" {
		b.Spec.Cluster.Region = m.region
	}

	var facts *nodegroup.Facts
	if m.gather {
		g, err := common.NewGatherer(ctx, b.Spec.Cluster.Region, m.log)
		if err != nil {
			return err
		}

		cancel := m.log.Loading("Gathering facts for cluster %s", b.Spec.Cluster.Name)
		err = common.GatherCluster(ctx, g, b)
		if err == nil {
			facts, err = g.Facts(ctx, &b.Spec)
		}
		if err != nil {
			cancel(logger.ErrLoadingFailed)
			m.log.Wg.Wait()
			return err
		}
		cancel(nil)
		m.log.Wg.Wait()
	}

	artifacts, err := nodegroup.CompileAll(&b.Spec, facts)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		m.log.Debug("Compiled %s: %s user data, image %q", a.Name, a.UserDataType, a.ImageID)
	}
	if m.nodeGroup != "" {
		artifacts, err = selectNodeGroup(artifacts, m.nodeGroup)
		if err != nil {
			return err
		}
	}

	result := &Result{NodeGroups: artifacts, encodeRaw: m.encodeRaw}
	if formatter.Format() == output.FormatRaw && len(artifacts) != 1 {
		return fmt.Errorf("raw output needs exactly one node group, use --nodegroup to pick one of %d", len(artifacts))
	}
	return formatter.Print(result)
}

func selectNodeGroup(artifacts []*nodegroup.Artifacts, name string) ([]*nodegroup.Artifacts, error) {
	for _, a := range artifacts {
		if a.Name == name {
			return []*nodegroup.Artifacts{a}, nil
		}
	}
	return nil, fmt.Errorf("node group %q not found", name)
}
