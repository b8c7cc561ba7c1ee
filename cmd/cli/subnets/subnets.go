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

package subnets

import (
	"context"
	"fmt"
	"strconv"

	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/eksboot/cmd/cli/common"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/output"
	"github.com/NVIDIA/eksboot/pkg/subnet"
)

type command struct {
	log       *logger.FunLogger
	region    string
	cluster   string
	outputFmt string
}

// Classification is the routing classification of a set of subnets.
type Classification struct {
	Subnets       []Subnet `json:"subnets"`
	WorkerSubnets []string `json:"workerSubnets"`
}

// Subnet is one classified subnet.
type Subnet struct {
	SubnetID   string `json:"subnetId"`
	VpcID      string `json:"vpcId"`
	RouteTable string `json:"routeTable"`
	Public     bool   `json:"public"`
	Worker     bool   `json:"worker"`
}

// Headers implements output.TableData.
func (c *Classification) Headers() []string {
	return []string{"SUBNET", "VPC", "ROUTE TABLE", "PUBLIC", "WORKER"}
}

// Rows implements output.TableData.
func (c *Classification) Rows() [][]string {
	rows := make([][]string, 0, len(c.Subnets))
	for _, s := range c.Subnets {
		rows = append(rows, []string{
			s.SubnetID, s.VpcID, s.RouteTable,
			strconv.FormatBool(s.Public), strconv.FormatBool(s.Worker),
		})
	}
	return rows
}

// Classify classifies subnets by their effective route table.
func Classify(facts []subnet.Facts) (*Classification, error) {
	workers, err := subnet.ComputeWorkerSubnets(facts)
	if err != nil {
		return nil, err
	}
	isWorker := make(map[string]bool, len(workers))
	for _, id := range workers {
		isWorker[id] = true
	}

	out := &Classification{WorkerSubnets: workers}
	for _, f := range facts {
		rt, err := subnet.EffectiveRouteTable(f)
		if err != nil {
			return nil, err
		}
		out.Subnets = append(out.Subnets, Subnet{
			SubnetID:   f.SubnetID,
			VpcID:      f.VpcID,
			RouteTable: rt.ID,
			Public:     subnet.IsPublic(rt.Routes),
			Worker:     isWorker[f.SubnetID],
		})
	}
	return out, nil
}

// NewCommand constructs the subnets command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	subnetsCmd := cli.Command{
		Name:      "subnets",
		Usage:     "Classify subnets as public or private",
		ArgsUsage: "[subnet-id...]",
		Description: `Read the route tables of subnets and classify them.

A subnet is public when its effective route table, the explicitly
associated table or else the main table of its VPC, routes a non-private
destination through an internet gateway. Worker nodes are placed in the
private subnets when there are any.

Examples:
  # Classify explicit subnets
  eksboot subnets subnet-0a1b2c subnet-3d4e5f

  # Classify the subnets of a cluster
  eksboot subnets --cluster demo -o json`,
		Flags: []cli.Flag{
			common.RegionFlag(&m.region),
			common.OutputFlag(&m.outputFmt, string(output.FormatTable)),
			&cli.StringFlag{
				Name:        "cluster",
				Aliases:     []string{"c"},
				Usage:       "Classify the subnets of this EKS cluster",
				Destination: &m.cluster,
			},
		},
		Action: func(c *cli.Context) error {
			return m.run(c.Context, c.Args().Slice())
		},
	}

	return &subnetsCmd
}

func (m *command) run(ctx context.Context, subnetIDs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(subnetIDs) == 0 && m.cluster == "" {
		return fmt.Errorf("subnet ids or --cluster required")
	}

	formatter, err := output.NewFormatter(m.outputFmt)
	if err != nil {
		return err
	}

	g, err := common.NewGatherer(ctx, m.region, m.log)
	if err != nil {
		return err
	}

	if len(subnetIDs) == 0 {
		info, err := g.Cluster(ctx, m.cluster)
		if err != nil {
			return err
		}
		subnetIDs = info.SubnetIDs
		m.log.Debug("Cluster %s uses subnets %v", m.cluster, subnetIDs)
	}

	facts, err := g.RouteFacts(ctx, subnetIDs)
	if err != nil {
		return err
	}
	result, err := Classify(facts)
	if err != nil {
		return err
	}
	return formatter.Print(result)
}
