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

// Package gather reads the AWS facts a compile depends on: the cluster
// connection metadata, the route tables of the cluster subnets and the
// recommended images of the selected AMI types. Compilation itself is pure;
// everything in this package performs network I/O.
package gather

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/eksboot/api/eksboot/v1alpha1"
	"github.com/NVIDIA/eksboot/internal/ami"
	internalaws "github.com/NVIDIA/eksboot/internal/aws"
	"github.com/NVIDIA/eksboot/internal/logger"
	"github.com/NVIDIA/eksboot/pkg/access"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
	"github.com/NVIDIA/eksboot/pkg/nodegroup"
	"github.com/NVIDIA/eksboot/pkg/subnet"
)

const defaultConcurrency = 8

// Gatherer reads facts from AWS.
type Gatherer struct {
	ec2Client   internalaws.EC2Client
	eksClient   internalaws.EKSClient
	resolver    *ami.Resolver
	retry       internalaws.RetryConfig
	concurrency int
	log         logger.Logger
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithRetryConfig overrides the retry policy of every call.
func WithRetryConfig(cfg internalaws.RetryConfig) Option {
	return func(g *Gatherer) {
		g.retry = cfg
	}
}

// WithConcurrency bounds the number of calls in flight.
func WithConcurrency(n int) Option {
	return func(g *Gatherer) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log logger.Logger) Option {
	return func(g *Gatherer) {
		g.log = log
	}
}

// New creates a Gatherer. Any client may be nil when the facts it serves
// are not needed.
func New(ec2Client internalaws.EC2Client, eksClient internalaws.EKSClient,
	ssmClient internalaws.SSMClient, opts ...Option) *Gatherer {
	g := &Gatherer{
		ec2Client:   ec2Client,
		eksClient:   eksClient,
		retry:       internalaws.DefaultRetryConfig(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.resolver = ami.NewResolver(ec2Client, ssmClient).WithRetryConfig(g.retry)
	return g
}

// Resolver returns the AMI resolver backed by the gatherer's clients.
func (g *Gatherer) Resolver() *ami.Resolver {
	return g.resolver
}

func (g *Gatherer) debug(format string, a ...any) {
	if g.log != nil {
		g.log.Debug(format, a...)
	}
}

// ClusterInfo is the connection metadata of an EKS cluster.
type ClusterInfo struct {
	Name                 string                    `json:"name"`
	Version              string                    `json:"version,omitempty"`
	Endpoint             string                    `json:"endpoint,omitempty"`
	CertificateAuthority string                    `json:"certificateAuthority,omitempty"`
	IPFamily             v1alpha1.IPFamily         `json:"ipFamily,omitempty"`
	ServiceCIDR          string                    `json:"serviceCidr,omitempty"`
	AuthenticationMode   access.AuthenticationMode `json:"authenticationMode,omitempty"`
	AutoMode             bool                      `json:"autoMode,omitempty"`
	VpcID                string                    `json:"vpcId,omitempty"`
	SubnetIDs            []string                  `json:"subnetIds,omitempty"`
}

// Apply fills the fields of c that the description left empty.
func (ci *ClusterInfo) Apply(c *v1alpha1.ClusterSpec) {
	if c.Version == "" {
		c.Version = ci.Version
	}
	if c.Endpoint == "" {
		c.Endpoint = ci.Endpoint
	}
	if c.CertificateAuthority == "" {
		c.CertificateAuthority = ci.CertificateAuthority
	}
	if c.IPFamily == "" {
		c.IPFamily = ci.IPFamily
	}
	if c.ServiceCIDR == "" {
		c.ServiceCIDR = ci.ServiceCIDR
	}
	if c.AuthenticationMode == access.AuthModeUndefined {
		c.AuthenticationMode = ci.AuthenticationMode
	}
	if !c.AutoMode {
		c.AutoMode = ci.AutoMode
	}
	if len(c.SubnetIDs) == 0 {
		c.SubnetIDs = ci.SubnetIDs
	}
}

// Cluster reads the connection metadata of the named cluster.
func (g *Gatherer) Cluster(ctx context.Context, name string) (*ClusterInfo, error) {
	if g.eksClient == nil {
		return nil, ekserrors.New(ekserrors.ErrCodeGather, "no EKS client configured")
	}
	if name == "" {
		return nil, ekserrors.Validation("cluster.name", "cluster name is required")
	}

	g.debug("Describing cluster %s", name)
	out, err := internalaws.WithRetry(ctx, g.retry, func() (*eks.DescribeClusterOutput, error) {
		return g.eksClient.DescribeCluster(ctx, &eks.DescribeClusterInput{
			Name: aws.String(name),
		})
	})
	if err != nil {
		return nil, ekserrors.WrapWithContext(ekserrors.ErrCodeGather,
			fmt.Sprintf("DescribeCluster(%s)", name), err, map[string]any{"cluster": name})
	}
	if out.Cluster == nil {
		return nil, ekserrors.Newf(ekserrors.ErrCodeGather, "cluster %s not found", name)
	}
	return clusterInfo(out.Cluster), nil
}

func clusterInfo(cl *ekstypes.Cluster) *ClusterInfo {
	ci := &ClusterInfo{
		Name:     aws.ToString(cl.Name),
		Version:  aws.ToString(cl.Version),
		Endpoint: aws.ToString(cl.Endpoint),
	}
	if cl.CertificateAuthority != nil {
		ci.CertificateAuthority = aws.ToString(cl.CertificateAuthority.Data)
	}
	if nc := cl.KubernetesNetworkConfig; nc != nil {
		if nc.IpFamily == ekstypes.IpFamilyIpv6 {
			ci.IPFamily = v1alpha1.IPFamilyIPv6
			ci.ServiceCIDR = aws.ToString(nc.ServiceIpv6Cidr)
		} else {
			ci.IPFamily = v1alpha1.IPFamilyIPv4
			ci.ServiceCIDR = aws.ToString(nc.ServiceIpv4Cidr)
		}
	}
	if cl.AccessConfig != nil {
		ci.AuthenticationMode = access.AuthenticationMode(cl.AccessConfig.AuthenticationMode)
	}
	if cl.ComputeConfig != nil {
		ci.AutoMode = aws.ToBool(cl.ComputeConfig.Enabled)
	}
	if vpc := cl.ResourcesVpcConfig; vpc != nil {
		ci.VpcID = aws.ToString(vpc.VpcId)
		ci.SubnetIDs = vpc.SubnetIds
	}
	return ci
}

// RouteFacts reads the routing facts of subnetIDs. The result keeps the
// order of subnetIDs.
func (g *Gatherer) RouteFacts(ctx context.Context, subnetIDs []string) ([]subnet.Facts, error) {
	if g.ec2Client == nil {
		return nil, ekserrors.New(ekserrors.ErrCodeGather, "no EC2 client configured")
	}

	facts := make([]subnet.Facts, len(subnetIDs))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, id := range subnetIDs {
		eg.Go(func() error {
			f, err := g.subnetFacts(egctx, id)
			if err != nil {
				return err
			}
			facts[i] = *f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return facts, nil
}

func (g *Gatherer) subnetFacts(ctx context.Context, subnetID string) (*subnet.Facts, error) {
	g.debug("Reading route tables of %s", subnetID)
	subnets, err := internalaws.WithRetry(ctx, g.retry, func() (*ec2.DescribeSubnetsOutput, error) {
		return g.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			SubnetIds: []string{subnetID},
		})
	})
	if err != nil {
		return nil, ekserrors.WrapWithContext(ekserrors.ErrCodeGather,
			"DescribeSubnets failed", err, map[string]any{"subnetId": subnetID})
	}
	if len(subnets.Subnets) == 0 {
		return nil, ekserrors.Newf(ekserrors.ErrCodeGather, "subnet %s not found", subnetID)
	}

	f := &subnet.Facts{
		SubnetID: subnetID,
		VpcID:    aws.ToString(subnets.Subnets[0].VpcId),
	}
	f.Explicit, err = g.routeTable(ctx, subnetID, ec2types.Filter{
		Name:   aws.String("association.subnet-id"),
		Values: []string{subnetID},
	})
	if err != nil {
		return nil, err
	}
	if f.Explicit != nil {
		return f, nil
	}

	f.Main, err = g.routeTable(ctx, subnetID,
		ec2types.Filter{Name: aws.String("vpc-id"), Values: []string{f.VpcID}},
		ec2types.Filter{Name: aws.String("association.main"), Values: []string{"true"}},
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// routeTable returns the first route table matching filters, or nil.
func (g *Gatherer) routeTable(ctx context.Context, subnetID string, filters ...ec2types.Filter) (*subnet.RouteTable, error) {
	out, err := internalaws.WithRetry(ctx, g.retry, func() (*ec2.DescribeRouteTablesOutput, error) {
		return g.ec2Client.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
			Filters: filters,
		})
	})
	if err != nil {
		return nil, ekserrors.WrapWithContext(ekserrors.ErrCodeGather,
			"DescribeRouteTables failed", err, map[string]any{"subnetId": subnetID})
	}
	if len(out.RouteTables) == 0 {
		return nil, nil
	}
	return convertRouteTable(out.RouteTables[0]), nil
}

func convertRouteTable(rt ec2types.RouteTable) *subnet.RouteTable {
	out := &subnet.RouteTable{
		ID:     aws.ToString(rt.RouteTableId),
		Routes: make([]subnet.Route, 0, len(rt.Routes)),
	}
	for _, r := range rt.Routes {
		out.Routes = append(out.Routes, subnet.Route{
			DestinationCIDR:     aws.ToString(r.DestinationCidrBlock),
			DestinationIPv6CIDR: aws.ToString(r.DestinationIpv6CidrBlock),
			GatewayID:           aws.ToString(r.GatewayId),
		})
	}
	return out
}

// Facts gathers everything the node groups of spec need from AWS: the image
// behind every AMI lookup key, the architecture of explicitly configured
// images and, when a node group has no subnets of its own, the route facts
// of the cluster subnets.
func (g *Gatherer) Facts(ctx context.Context, spec *v1alpha1.BootstrapSpec) (*nodegroup.Facts, error) {
	planned, err := nodegroup.CompileAll(spec, nil)
	if err != nil {
		return nil, err
	}

	lookupKeys := map[string]struct{}{}
	imageIDs := map[string]struct{}{}
	needSubnets := false
	for i, a := range planned {
		switch {
		case spec.NodeGroups[i].AmiID != "":
			imageIDs[a.ImageID] = struct{}{}
		case a.AmiLookupKey != "":
			lookupKeys[a.AmiLookupKey] = struct{}{}
		}
		if len(spec.NodeGroups[i].SubnetIDs) == 0 {
			needSubnets = true
		}
	}

	facts := &nodegroup.Facts{
		Images:             map[string]string{},
		ImageArchitectures: map[string]ami.CPUArchitecture{},
	}
	var mu sync.Mutex

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for key := range lookupKeys {
		eg.Go(func() error {
			g.debug("Resolving image parameter %s", key)
			id, err := g.resolver.ImageID(egctx, key)
			if err != nil {
				return err
			}
			mu.Lock()
			facts.Images[key] = id
			mu.Unlock()
			return nil
		})
	}
	for id := range imageIDs {
		eg.Go(func() error {
			arch, err := g.resolver.ImageArchitecture(egctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			facts.ImageArchitectures[id] = arch
			mu.Unlock()
			return nil
		})
	}
	if needSubnets && len(spec.Cluster.SubnetIDs) > 0 {
		eg.Go(func() error {
			subnets, err := g.RouteFacts(egctx, spec.Cluster.SubnetIDs)
			if err != nil {
				return err
			}
			mu.Lock()
			facts.Subnets = subnets
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return facts, nil
}
