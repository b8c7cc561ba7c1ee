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

// Package mocks provides function-field mocks of the AWS clients used by
// the gather phase.
package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	internalaws "github.com/NVIDIA/eksboot/internal/aws"
)

// MockEC2Client is a mock implementation of internalaws.EC2Client. Unset
// functions return empty results.
type MockEC2Client struct {
	DescribeSubnetsFunc     func(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeRouteTablesFunc func(ctx context.Context, params *ec2.DescribeRouteTablesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error)
	DescribeImagesFunc      func(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
}

var _ internalaws.EC2Client = (*MockEC2Client)(nil)

func (m *MockEC2Client) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if m.DescribeSubnetsFunc != nil {
		return m.DescribeSubnetsFunc(ctx, params, optFns...)
	}
	return &ec2.DescribeSubnetsOutput{}, nil
}

func (m *MockEC2Client) DescribeRouteTables(ctx context.Context, params *ec2.DescribeRouteTablesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
	if m.DescribeRouteTablesFunc != nil {
		return m.DescribeRouteTablesFunc(ctx, params, optFns...)
	}
	return &ec2.DescribeRouteTablesOutput{}, nil
}

func (m *MockEC2Client) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	if m.DescribeImagesFunc != nil {
		return m.DescribeImagesFunc(ctx, params, optFns...)
	}
	return &ec2.DescribeImagesOutput{}, nil
}

// MockSSMClient is a mock implementation of internalaws.SSMClient.
type MockSSMClient struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ internalaws.SSMClient = (*MockSSMClient)(nil)

func (m *MockSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if m.GetParameterFunc != nil {
		return m.GetParameterFunc(ctx, params, optFns...)
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  params.Name,
			Value: strPtr("ami-mock-12345"),
		},
	}, nil
}

// MockEKSClient is a mock implementation of internalaws.EKSClient.
type MockEKSClient struct {
	DescribeClusterFunc func(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

var _ internalaws.EKSClient = (*MockEKSClient)(nil)

func (m *MockEKSClient) DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error) {
	if m.DescribeClusterFunc != nil {
		return m.DescribeClusterFunc(ctx, params, optFns...)
	}
	return &eks.DescribeClusterOutput{
		Cluster: &ekstypes.Cluster{
			Name:     params.Name,
			Version:  strPtr("1.31"),
			Endpoint: strPtr("https://MOCK.gr7.us-west-2.eks.amazonaws.com"),
			CertificateAuthority: &ekstypes.Certificate{
				Data: strPtr("bW9jay1jYQ=="),
			},
			KubernetesNetworkConfig: &ekstypes.KubernetesNetworkConfigResponse{
				IpFamily:        ekstypes.IpFamilyIpv4,
				ServiceIpv4Cidr: strPtr("10.100.0.0/16"),
			},
			AccessConfig: &ekstypes.AccessConfigResponse{
				AuthenticationMode: ekstypes.AuthenticationModeApiAndConfigMap,
			},
			ResourcesVpcConfig: &ekstypes.VpcConfigResponse{
				VpcId:     strPtr("vpc-mock"),
				SubnetIds: []string{"subnet-mock-a", "subnet-mock-b"},
			},
		},
	}, nil
}

// Route table helpers

// RouteTable builds an EC2 route table with a single route.
func RouteTable(id, destination, gatewayID string) ec2types.RouteTable {
	return ec2types.RouteTable{
		RouteTableId: strPtr(id),
		Routes: []ec2types.Route{{
			DestinationCidrBlock: strPtr(destination),
			GatewayId:            strPtr(gatewayID),
		}},
	}
}

// PrivateSubnets returns an EC2 mock in which every subnet belongs to vpcID
// and routes egress through a NAT gateway.
func PrivateSubnets(vpcID string) *MockEC2Client {
	return &MockEC2Client{
		DescribeSubnetsFunc: func(_ context.Context, params *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
			subnets := make([]ec2types.Subnet, 0, len(params.SubnetIds))
			for _, id := range params.SubnetIds {
				subnets = append(subnets, ec2types.Subnet{SubnetId: strPtr(id), VpcId: strPtr(vpcID)})
			}
			return &ec2.DescribeSubnetsOutput{Subnets: subnets}, nil
		},
		DescribeRouteTablesFunc: func(context.Context, *ec2.DescribeRouteTablesInput, ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
			return &ec2.DescribeRouteTablesOutput{
				RouteTables: []ec2types.RouteTable{RouteTable("rtb-main", "0.0.0.0/0", "nat-0mock")},
			}, nil
		},
	}
}

// Helper functions
func strPtr(s string) *string {
	return &s
}
