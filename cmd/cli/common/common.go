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

// Package common holds helpers shared by the eksboot commands.
package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	cli "github.com/urfave/cli/v2"

	"github.com/NVIDIA/eksboot/api/eksboot/v1alpha1"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/gather"
	"github.com/NVIDIA/eksboot/pkg/output"
)

// NewGatherer builds a gatherer from the default AWS configuration chain.
// Tests replace it to serve canned facts.
var NewGatherer = func(ctx context.Context, region string, log logger.Logger) (*gather.Gatherer, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return gather.New(
		ec2.NewFromConfig(cfg),
		eks.NewFromConfig(cfg),
		ssm.NewFromConfig(cfg),
		gather.WithLogger(log),
	), nil
}

// LoadBootstrap reads and validates a description file.
func LoadBootstrap(filename string) (*v1alpha1.Bootstrap, error) {
	b, err := v1alpha1.LoadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// GatherCluster fills the cluster settings the description left empty from
// the live cluster and validates the result again.
func GatherCluster(ctx context.Context, g *gather.Gatherer, b *v1alpha1.Bootstrap) error {
	info, err := g.Cluster(ctx, b.Spec.Cluster.Name)
	if err != nil {
		return err
	}
	info.Apply(&b.Spec.Cluster)
	return b.Validate()
}

// BootstrapFileFlag is the -f flag naming the description file.
func BootstrapFileFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "Path to the bootstrap description file",
		Destination: dest,
		Required:    true,
	}
}

// RegionFlag is the AWS region flag.
func RegionFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "region",
		Aliases:     []string{"r"},
		Usage:       "AWS region",
		Destination: dest,
		EnvVars:     []string{"AWS_REGION"},
	}
}

// OutputFlag is the -o flag selecting the output format.
func OutputFlag(dest *string, value string) cli.Flag {
	return &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       fmt.Sprintf("Output format: %v", output.ValidFormats()),
		Value:       value,
		Destination: dest,
	}
}

// GatherFlag enables AWS lookups.
func GatherFlag(dest *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "gather",
		Aliases:     []string{"g"},
		Usage:       "Read missing cluster settings, images and subnet routes from AWS",
		Destination: dest,
	}
}
