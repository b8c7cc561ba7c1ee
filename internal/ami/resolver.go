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

package ami

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	internalaws "github.com/NVIDIA/eksboot/internal/aws"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// EC2ImageDescriber defines the subset of EC2 operations needed to inspect
// an explicitly configured image.
type EC2ImageDescriber interface {
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
}

// SSMParameterGetter defines the subset of SSM operations needed for AMI
// resolution.
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput,
		optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolvedAMI is an AMI type together with the image it currently points to.
type ResolvedAMI struct {
	ImageID      string          `json:"imageId"`
	AmiType      AmiType         `json:"amiType"`
	LookupKey    string          `json:"lookupKey"`
	OS           OperatingSystem `json:"operatingSystem"`
	Architecture CPUArchitecture `json:"architecture"`
}

// Resolver looks up image ids for AMI types. It is part of the gather phase:
// every method performs network I/O and retries throttled calls.
type Resolver struct {
	ec2Client EC2ImageDescriber
	ssmClient SSMParameterGetter
	retry     internalaws.RetryConfig
}

// NewResolver creates a new AMI resolver.
func NewResolver(ec2Client EC2ImageDescriber, ssmClient SSMParameterGetter) *Resolver {
	return &Resolver{
		ec2Client: ec2Client,
		ssmClient: ssmClient,
		retry:     internalaws.DefaultRetryConfig(),
	}
}

// WithRetryConfig overrides the retry policy.
func (r *Resolver) WithRetryConfig(cfg internalaws.RetryConfig) *Resolver {
	r.retry = cfg
	return r
}

// Resolve reads the recommended image id of amiType for clusterVersion from
// SSM Parameter Store.
func (r *Resolver) Resolve(ctx context.Context, amiType AmiType, clusterVersion string) (*ResolvedAMI, error) {
	md, ok := Get(string(amiType))
	if !ok {
		return nil, ekserrors.Resolution("amiType", "unknown AMI type: %s", amiType)
	}
	if clusterVersion == "" {
		return nil, ekserrors.Validation("version", "cluster version is required to resolve an AMI")
	}
	paramName := md.LookupKey(clusterVersion)
	imageID, err := r.ImageID(ctx, paramName)
	if err != nil {
		return nil, err
	}

	return &ResolvedAMI{
		ImageID:      imageID,
		AmiType:      md.Type,
		LookupKey:    paramName,
		OS:           md.OS,
		Architecture: md.Architecture,
	}, nil
}

// ImageID reads the image id stored in the SSM parameter lookupKey.
func (r *Resolver) ImageID(ctx context.Context, lookupKey string) (string, error) {
	if r.ssmClient == nil {
		return "", ekserrors.New(ekserrors.ErrCodeGather, "no SSM client configured")
	}

	result, err := internalaws.WithRetry(ctx, r.retry, func() (*ssm.GetParameterOutput, error) {
		return r.ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
			Name: aws.String(lookupKey),
		})
	})
	if err != nil {
		return "", ekserrors.WrapWithContext(ekserrors.ErrCodeGather,
			"SSM lookup failed", err, map[string]any{"parameter": lookupKey})
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return "", ekserrors.Newf(ekserrors.ErrCodeGather, "SSM parameter %s has no value", lookupKey)
	}
	return aws.ToString(result.Parameter.Value), nil
}

// ImageArchitecture returns the CPU architecture of an existing image.
func (r *Resolver) ImageArchitecture(ctx context.Context, imageID string) (CPUArchitecture, error) {
	if r.ec2Client == nil {
		return "", ekserrors.New(ekserrors.ErrCodeGather, "no EC2 client configured")
	}

	result, err := internalaws.WithRetry(ctx, r.retry, func() (*ec2.DescribeImagesOutput, error) {
		return r.ec2Client.DescribeImages(ctx, &ec2.DescribeImagesInput{
			ImageIds: []string{imageID},
		})
	})
	if err != nil {
		return "", ekserrors.WrapWithContext(ekserrors.ErrCodeGather,
			"DescribeImages failed", err, map[string]any{"imageId": imageID})
	}
	if len(result.Images) == 0 {
		return "", ekserrors.Resolution("amiId", "image %s not found", imageID)
	}

	return NormalizeArch(string(result.Images[0].Architecture)), nil
}
