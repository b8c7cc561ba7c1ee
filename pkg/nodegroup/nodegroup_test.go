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

package nodegroup

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"github.com/NVIDIA/eksboot/api/eksboot/v1alpha1"
	"github.com/NVIDIA/eksboot/internal/ami"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
	"github.com/NVIDIA/eksboot/pkg/subnet"
	"github.com/NVIDIA/eksboot/pkg/userdata"
)

func testCluster() Cluster {
	return Cluster{
		Metadata: userdata.ClusterMetadata{
			Name:                 "demo",
			APIServerEndpoint:    "https://ABC.gr7.us-west-2.eks.amazonaws.com",
			CertificateAuthority: "Y2VydA==",
			ServiceCIDR:          "10.100.0.0/16",
		},
		Version:   "1.31",
		Region:    "us-west-2",
		SubnetIDs: []string{"subnet-a", "subnet-b"},
	}
}

func routeFacts() []subnet.Facts {
	public := &subnet.RouteTable{ID: "rtb-public", Routes: []subnet.Route{
		{DestinationCIDR: "0.0.0.0/0", GatewayID: "igw-1"},
	}}
	private := &subnet.RouteTable{ID: "rtb-private", Routes: []subnet.Route{
		{DestinationCIDR: "10.0.0.0/16", GatewayID: "local"},
	}}
	return []subnet.Facts{
		{SubnetID: "subnet-a", VpcID: "vpc-1", Explicit: public},
		{SubnetID: "subnet-b", VpcID: "vpc-1", Main: private},
	}
}

func TestCompile_DefaultOperatingSystem(t *testing.T) {
	lookupKey := "/aws/service/eks/optimized-ami/1.31/amazon-linux-2023/x86_64/standard/recommended/image_id"
	facts := &Facts{
		Subnets: routeFacts(),
		Images:  map[string]string{lookupKey: "ami-0123"},
	}

	a, err := Compile(testCluster(), &v1alpha1.NodeGroup{Name: "workers", InstanceTypes: []string{"m5.large"}}, facts)
	require.NoError(t, err)

	assert.Equal(t, ami.OperatingSystemAL2023, a.OperatingSystem)
	assert.Equal(t, ami.AmiTypeAL2023X8664Standard, a.AmiType)
	assert.Equal(t, lookupKey, a.AmiLookupKey)
	assert.Equal(t, "ami-0123", a.ImageID)
	assert.Equal(t, []string{"subnet-b"}, a.SubnetIDs)
	assert.Equal(t, userdata.TypeNodeadm, a.UserDataType)
	assert.Equal(t, userdata.NodeGroupTypeManaged, a.NodeGroupType)
	assert.Contains(t, a.UserData, "kind: NodeConfig")

	decoded, err := base64.StdEncoding.DecodeString(a.UserDataBase64)
	require.NoError(t, err)
	assert.Equal(t, a.UserData, string(decoded))
}

func TestCompile_SelfManagedAL2(t *testing.T) {
	ng := &v1alpha1.NodeGroup{
		Name:            "al2",
		Type:            userdata.NodeGroupTypeSelfManagedV1,
		OperatingSystem: "al2",
		GPU:             true,
		InstanceTypes:   []string{"g5.xlarge"},
		Version:         "1.30",
		Labels:          v1alpha1.Labels{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}},
		Taints:          v1alpha1.Taints{{Key: "gpu", Value: "true", Effect: "NO_SCHEDULE"}},
	}

	a, err := Compile(testCluster(), ng, nil)
	require.NoError(t, err)

	assert.Equal(t, ami.AmiTypeAL2X8664GPU, a.AmiType)
	assert.Equal(t, "/aws/service/eks/optimized-ami/1.30/amazon-linux-2-gpu/recommended/image_id", a.AmiLookupKey)
	assert.Empty(t, a.ImageID)
	assert.Equal(t, []string{"subnet-a", "subnet-b"}, a.SubnetIDs)
	assert.Equal(t, userdata.TypeLinux, a.UserDataType)
	assert.Contains(t, a.UserData, "--kubelet-extra-args '--node-labels=b=2,a=1 --register-with-taints=gpu=true:NoSchedule'")
	assert.Contains(t, a.UserData, "--stack al2 --resource NodeGroup --region us-west-2")
}

func TestCompile_ExplicitSubnetsWin(t *testing.T) {
	a, err := Compile(testCluster(), &v1alpha1.NodeGroup{Name: "ng", SubnetIDs: []string{"subnet-z"}}, &Facts{Subnets: routeFacts()})
	require.NoError(t, err)
	assert.Equal(t, []string{"subnet-z"}, a.SubnetIDs)
}

func TestCompile_AmiTypeWithoutInstanceTypes(t *testing.T) {
	a, err := Compile(testCluster(), &v1alpha1.NodeGroup{Name: "br", AmiType: "BOTTLEROCKET_ARM_64"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ami.OperatingSystemBottlerocket, a.OperatingSystem)
	assert.Equal(t, ami.ArchitectureARM64, a.Architecture)
	assert.Equal(t, userdata.TypeBottlerocket, a.UserDataType)
	assert.Equal(t, "/aws/service/bottlerocket/aws-k8s-1.31/arm64/latest/image_id", a.AmiLookupKey)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cluster  func(c *Cluster)
		ng       v1alpha1.NodeGroup
		facts    *Facts
		wantCode ekserrors.ErrorCode
		wantPath string
	}{
		{
			name:     "amiId with amiType",
			ng:       v1alpha1.NodeGroup{Name: "ng", AmiID: "ami-1", AmiType: "AL2_x86_64"},
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "amiId",
		},
		{
			name:     "amiType with gpu",
			ng:       v1alpha1.NodeGroup{Name: "ng", AmiType: "AL2_x86_64", GPU: true},
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "amiType",
		},
		{
			name:     "amiType disagrees with operating system",
			ng:       v1alpha1.NodeGroup{Name: "ng", AmiType: "AL2_x86_64", OperatingSystem: "Bottlerocket"},
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "operatingSystem",
		},
		{
			name:     "amiType architecture disagrees with instance types",
			ng:       v1alpha1.NodeGroup{Name: "ng", AmiType: "AL2_ARM_64", InstanceTypes: []string{"m5.large"}},
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "amiType",
		},
		{
			name: "explicit image architecture disagrees with instance types",
			ng:   v1alpha1.NodeGroup{Name: "ng", AmiID: "ami-arm", InstanceTypes: []string{"m5.large"}},
			facts: &Facts{ImageArchitectures: map[string]ami.CPUArchitecture{
				"ami-arm": ami.ArchitectureARM64,
			}},
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "amiId",
		},
		{
			name:     "no AL2023 GPU AMI for arm64",
			ng:       v1alpha1.NodeGroup{Name: "ng", GPU: true, InstanceTypes: []string{"g5g.xlarge"}},
			wantCode: ekserrors.ErrCodeResolution,
		},
		{
			name:     "missing version",
			cluster:  func(c *Cluster) { c.Version = "" },
			ng:       v1alpha1.NodeGroup{Name: "ng"},
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "version",
		},
		{
			name:     "self-managed-v1 needs a region",
			cluster:  func(c *Cluster) { c.Region = "" },
			ng:       v1alpha1.NodeGroup{Name: "ng", Type: userdata.NodeGroupTypeSelfManagedV1},
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "type",
		},
		{
			name:     "bootstrap args on nodeadm",
			ng:       v1alpha1.NodeGroup{Name: "ng", BootstrapExtraArgs: "--use-max-pods false"},
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "bootstrapExtraArgs",
		},
		{
			name:     "override with labels",
			ng:       v1alpha1.NodeGroup{Name: "ng", UserDataOverride: "#!/bin/bash", Labels: v1alpha1.Labels{{Key: "a", Value: "b"}}},
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "userDataOverride",
		},
		{
			name:     "subnet without route table",
			ng:       v1alpha1.NodeGroup{Name: "ng"},
			facts:    &Facts{Subnets: []subnet.Facts{{SubnetID: "subnet-a", VpcID: "vpc-1"}}},
			wantCode: ekserrors.ErrCodeResolution,
			wantPath: "subnetIds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cluster := testCluster()
			if tt.cluster != nil {
				tt.cluster(&cluster)
			}
			_, err := Compile(cluster, &tt.ng, tt.facts)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ekserrors.CodeOf(err))
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, ekserrors.PathOf(err))
			}
		})
	}
}

func TestCompileAll(t *testing.T) {
	spec := &v1alpha1.BootstrapSpec{
		Cluster: v1alpha1.ClusterSpec{
			Name:                 "demo",
			Version:              "1.31",
			Endpoint:             "https://example.com",
			CertificateAuthority: "Y2VydA==",
			ServiceCIDR:          "10.100.0.0/16",
		},
		NodeGroups: []v1alpha1.NodeGroup{
			{Name: "ok"},
			{Name: "bad", OperatingSystem: "Bottlerocket", KubeletExtraArgs: "--max-pods=110"},
		},
	}

	_, err := CompileAll(spec, nil)
	require.Error(t, err)
	assert.Equal(t, "nodeGroups[1].kubeletExtraArgs", ekserrors.PathOf(err))

	spec.NodeGroups = spec.NodeGroups[:1]
	out, err := CompileAll(spec, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].Name)
}

func TestLabelsAndTaints(t *testing.T) {
	assert.Nil(t, Labels(nil))
	assert.Equal(t, []userdata.Label{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}},
		Labels(v1alpha1.Labels{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}}))

	taints, err := Taints(v1alpha1.Taints{
		{Key: "z", Effect: "PreferNoSchedule"},
		{Key: "a", Value: "x", Effect: "NO_EXECUTE"},
	})
	require.NoError(t, err)
	assert.Equal(t, []userdata.Taint{
		{Key: "z", Effect: corev1.TaintEffectPreferNoSchedule},
		{Key: "a", Value: "x", Effect: corev1.TaintEffectNoExecute},
	}, taints)

	_, err = Taints(v1alpha1.Taints{{Key: "a", Effect: "Sometimes"}})
	assert.Equal(t, "taints.a.effect", ekserrors.PathOf(err))
}
