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

package auth

import (
	"context"
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v2"
	"sigs.k8s.io/yaml"

	"github.com/NVIDIA/eksboot/cmd/cli/common"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/access"
	"github.com/NVIDIA/eksboot/pkg/output"
)

type command struct {
	log       *logger.FunLogger
	file      string
	region    string
	outputFmt string
	gather    bool
}

// Result is the reconciled access configuration of a cluster.
type Result struct {
	*access.Result

	config    *access.Config
	configMap string
}

// Headers implements output.TableData.
func (r *Result) Headers() []string {
	return []string{"SOURCE", "PRINCIPAL", "USERNAME", "GROUPS", "POLICIES"}
}

// Rows implements output.TableData. aws-auth mappings are listed first.
func (r *Result) Rows() [][]string {
	var rows [][]string
	if r.AwsAuth != nil {
		for _, m := range r.config.RoleMappings {
			rows = append(rows, []string{"aws-auth", m.RoleArn, orDash(m.Username), strings.Join(m.Groups, ","), "-"})
		}
		for _, m := range r.config.UserMappings {
			rows = append(rows, []string{"aws-auth", m.UserArn, orDash(m.Username), strings.Join(m.Groups, ","), "-"})
		}
		for _, arn := range r.config.InstanceRoles {
			rows = append(rows, []string{"aws-auth", arn, access.NodeUsername, strings.Join(access.NodeGroups(), ","), "-"})
		}
	}
	for _, e := range r.AccessEntries {
		policies := make([]string, 0, len(e.AccessPolicies))
		for _, p := range e.AccessPolicies {
			policies = append(policies, access.ArnResourceName(p.PolicyArn))
		}
		rows = append(rows, []string{
			"entry/" + string(e.EntryType()),
			e.PrincipalArn,
			orDash(e.Username),
			orDash(strings.Join(e.KubernetesGroups, ",")),
			orDash(strings.Join(policies, ",")),
		})
	}
	return rows
}

// Raw implements output.RawData by rendering the aws-auth ConfigMap.
func (r *Result) Raw() string {
	return r.configMap
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewCommand constructs the auth command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	authCmd := cli.Command{
		Name:  "auth",
		Usage: "Compile the aws-auth ConfigMap and access entries of a cluster",
		Description: `Reconcile the access section of a bootstrap description against the
cluster authentication mode.

CONFIG_MAP clusters get an aws-auth ConfigMap, API clusters get access
entries and API_AND_CONFIG_MAP clusters get both, built from the same role
and user mappings.

Examples:
  # Show the principals that can reach the cluster
  eksboot auth -f bootstrap.yaml

  # Print the aws-auth ConfigMap manifest
  eksboot auth -f bootstrap.yaml -o raw | kubectl apply -f -

  # Use the authentication mode of the live cluster
  eksboot auth -f bootstrap.yaml --gather -o json`,
		Flags: []cli.Flag{
			common.BootstrapFileFlag(&m.file),
			common.RegionFlag(&m.region),
			common.OutputFlag(&m.outputFmt, string(output.FormatTable)),
			common.GatherFlag(&m.gather),
		},
		Action: func(c *cli.Context) error {
			return m.run(c.Context)
		},
	}

	return &authCmd
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
	if m.gather {
		region := b.Spec.Cluster.Region
		if region == "" {
			region = m.region
		}
		g, err := common.NewGatherer(ctx, region, m.log)
		if err != nil {
			return err
		}
		if err := common.GatherCluster(ctx, g, b); err != nil {
			return err
		}
	}

	cfg := b.Spec.AccessConfig()
	reconciled, err := access.Reconcile(b.Spec.Cluster.AuthenticationMode, cfg)
	if err != nil {
		return err
	}
	m.log.Debug("Reconciled access for %s mode", reconciled.Mode)

	result := &Result{Result: reconciled, config: cfg}
	if reconciled.AwsAuth != nil {
		manifest, err := yaml.Marshal(access.NewAwsAuthConfigMap(reconciled.AwsAuth))
		if err != nil {
			return fmt.Errorf("failed to render aws-auth ConfigMap: %w", err)
		}
		result.configMap = string(manifest)
	}
	if formatter.Format() == output.FormatRaw && result.configMap == "" {
		return fmt.Errorf("authentication mode %s does not use the aws-auth ConfigMap", reconciled.Mode)
	}
	return formatter.Print(result)
}
