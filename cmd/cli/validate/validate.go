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

package validate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/eksboot/api/eksboot/v1alpha1"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/access"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
	"github.com/NVIDIA/eksboot/pkg/nodegroup"
)

type command struct {
	log      *logger.FunLogger
	file     string
	strict   bool
	checkAWS bool
}

// ValidationResult represents the result of a validation check
type ValidationResult struct {
	Check   string
	Passed  bool
	Warning bool
	Message string
}

// NewCommand constructs the validate command with the specified logger
func NewCommand(log *logger.FunLogger) *cli.Command {
	c := command{
		log: log,
	}
	return c.build()
}

func (m *command) build() *cli.Command {
	validateCmd := cli.Command{
		Name:      "validate",
		Usage:     "Validate a bootstrap description file",
		ArgsUsage: "",
		Description: `Validate a bootstrap description without talking to AWS.

Checks performed:
  - Description file is valid YAML with known fields only
  - Cluster settings are well formed
  - Access configuration fits the authentication mode
  - Every node group compiles offline
  - AWS credentials are configured (with --check-aws)

Examples:
  # Validate a description
  eksboot validate -f bootstrap.yaml

  # Strict mode (fail on warnings)
  eksboot validate -f bootstrap.yaml --strict`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Path to the bootstrap description file",
				Destination: &m.file,
				Required:    true,
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "Fail on warnings (not just errors)",
				Destination: &m.strict,
			},
			&cli.BoolFlag{
				Name:        "check-aws",
				Usage:       "Also check that AWS credentials are configured",
				Destination: &m.checkAWS,
			},
		},
		Action: func(c *cli.Context) error {
			return m.run()
		},
	}

	return &validateCmd
}

func (m *command) run() error {
	results := make([]ValidationResult, 0)

	// 1. Description file exists and decodes
	b, err := m.validateFile()
	if err != nil {
		results = append(results, ValidationResult{
			Check:   "Description file",
			Passed:  false,
			Message: err.Error(),
		})
		m.printResults(results)
		return fmt.Errorf("validation failed")
	}
	results = append(results, ValidationResult{
		Check:   "Description file",
		Passed:  true,
		Message: "Valid YAML structure",
	})

	// 2. Cluster and access
	results = append(results, m.validateCluster(b)...)
	results = append(results, m.validateAccess(b))

	// 3. Node groups
	results = append(results, m.validateNodeGroups(b)...)

	// 4. AWS credentials
	if m.checkAWS {
		results = append(results, m.validateAWSCredentials())
	}

	m.printResults(results)

	hasErrors, hasWarnings := false, false
	for _, r := range results {
		switch {
		case r.Warning:
			hasWarnings = true
		case !r.Passed:
			hasErrors = true
		}
	}
	if hasErrors {
		return fmt.Errorf("validation failed with errors")
	}
	if hasWarnings && m.strict {
		return fmt.Errorf("validation failed with warnings (strict mode)")
	}

	m.log.Check("Validation passed")
	return nil
}

func (m *command) validateFile() (*v1alpha1.Bootstrap, error) {
	if m.file == "" {
		return nil, fmt.Errorf("description file path is required")
	}

	if _, err := os.Stat(m.file); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", m.file)
	}

	b, err := v1alpha1.LoadFile(m.file)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %v", err)
	}

	if b.APIVersion != "" && b.APIVersion != v1alpha1.GroupVersion {
		return nil, fmt.Errorf("unsupported apiVersion %q", b.APIVersion)
	}
	return b, nil
}

func (m *command) validateCluster(b *v1alpha1.Bootstrap) []ValidationResult {
	c := &b.Spec.Cluster
	if err := c.Validate(); err != nil {
		return []ValidationResult{{
			Check:   "Cluster",
			Passed:  false,
			Message: err.Error(),
		}}
	}

	results := []ValidationResult{{
		Check:   "Cluster",
		Passed:  true,
		Message: fmt.Sprintf("Cluster: %s", c.Name),
	}}

	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.CertificateAuthority == "" {
		missing = append(missing, "certificateAuthority")
	}
	if c.ServiceCIDR == "" {
		missing = append(missing, "serviceCidr")
	}
	if c.Version == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		results = append(results, ValidationResult{
			Check:   "Cluster settings",
			Passed:  false,
			Warning: true,
			Message: fmt.Sprintf("Warning: %s not set; compile with --gather to read them from EKS",
				strings.Join(missing, ", ")),
		})
	}
	return results
}

func (m *command) validateAccess(b *v1alpha1.Bootstrap) ValidationResult {
	mode := b.Spec.Cluster.AuthenticationMode
	result, err := access.Reconcile(mode, b.Spec.AccessConfig())
	if err != nil {
		return ValidationResult{
			Check:   "Access",
			Passed:  false,
			Message: err.Error(),
		}
	}

	var parts []string
	if result.AwsAuth != nil {
		parts = append(parts, "aws-auth ConfigMap")
	}
	if len(result.AccessEntries) > 0 {
		parts = append(parts, fmt.Sprintf("%d access entries", len(result.AccessEntries)))
	}
	if len(parts) == 0 {
		parts = append(parts, "no principals")
	}
	if mode == access.AuthModeUndefined {
		mode = access.AuthModeConfigMap
	}
	return ValidationResult{
		Check:   "Access",
		Passed:  true,
		Message: fmt.Sprintf("%s: %s", mode, strings.Join(parts, ", ")),
	}
}

func (m *command) validateNodeGroups(b *v1alpha1.Bootstrap) []ValidationResult {
	if len(b.Spec.NodeGroups) == 0 {
		return []ValidationResult{{
			Check:   "Node groups",
			Passed:  false,
			Warning: true,
			Message: "Warning: no node groups defined",
		}}
	}

	results := make([]ValidationResult, 0, len(b.Spec.NodeGroups))
	cluster := nodegroup.ClusterFromSpec(&b.Spec.Cluster)
	names := map[string]bool{}
	for i := range b.Spec.NodeGroups {
		ng := &b.Spec.NodeGroups[i]
		check := fmt.Sprintf("Node group %q", ng.Name)

		if names[ng.Name] {
			results = append(results, ValidationResult{
				Check:   check,
				Passed:  false,
				Message: fmt.Sprintf("nodeGroups[%d].name: duplicate node group name", i),
			})
			continue
		}
		names[ng.Name] = true

		a, err := nodegroup.Compile(cluster, ng, nil)
		if err != nil && cluster.Metadata.ServiceCIDR == "" && ekserrors.PathOf(err) == "serviceCidr" {
			results = append(results, ValidationResult{
				Check:   check,
				Passed:  false,
				Warning: true,
				Message: "Warning: user data needs the cluster serviceCidr; compile with --gather",
			})
			continue
		}
		if err != nil {
			results = append(results, ValidationResult{
				Check:   check,
				Passed:  false,
				Message: fmt.Sprintf("nodeGroups[%d]: %v", i, err),
			})
			continue
		}

		image := string(a.AmiType)
		if image == "" {
			image = a.ImageID
		}
		results = append(results, ValidationResult{
			Check:   check,
			Passed:  true,
			Message: fmt.Sprintf("%s %s on %s, %s user data", a.NodeGroupType, a.OperatingSystem, image, a.UserDataType),
		})
	}
	return results
}

func (m *command) validateAWSCredentials() ValidationResult {
	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return ValidationResult{
			Check:   "AWS credentials",
			Passed:  false,
			Message: fmt.Sprintf("Failed to load AWS config: %v", err),
		}
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return ValidationResult{
			Check:   "AWS credentials",
			Passed:  false,
			Warning: true,
			Message: fmt.Sprintf("Warning: failed to retrieve credentials: %v", err),
		}
	}

	return ValidationResult{
		Check:   "AWS credentials",
		Passed:  true,
		Message: fmt.Sprintf("Configured (source: %s)", creds.Source),
	}
}

func (m *command) printResults(results []ValidationResult) {
	fmt.Print("\n=== Validation Results ===\n\n")

	for _, r := range results {
		icon := "✓"
		switch {
		case r.Warning:
			icon = "!"
		case !r.Passed:
			icon = "✗"
		}
		fmt.Printf("  %s %s\n", icon, r.Check)
		fmt.Printf("    %s\n", r.Message)
	}
}
