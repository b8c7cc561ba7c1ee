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

package v1alpha1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/eksboot/pkg/access"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

func validSpec() BootstrapSpec {
	return BootstrapSpec{
		Cluster: ClusterSpec{
			Name:        "demo",
			Version:     "1.31",
			ServiceCIDR: "10.100.0.0/16",
		},
		NodeGroups: []NodeGroup{{
			Name:          "gpu",
			InstanceTypes: []string{"g5.xlarge"},
			GPU:           true,
		}},
	}
}

func TestNodeGroup_Validate(t *testing.T) {
	tests := []struct {
		name     string
		ng       NodeGroup
		wantErr  bool
		wantCode ekserrors.ErrorCode
		wantPath string
	}{
		{
			name: "minimal managed node group",
			ng:   NodeGroup{Name: "ng"},
		},
		{
			name: "self-managed with extra user data",
			ng:   NodeGroup{Name: "ng", Type: "self-managed-v2", ExtraUserData: "echo hi"},
		},
		{
			name:     "missing name",
			ng:       NodeGroup{},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "name",
		},
		{
			name:     "invalid type",
			ng:       NodeGroup{Name: "ng", Type: "fargate"},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "type",
		},
		{
			name:     "managed with extra user data",
			ng:       NodeGroup{Name: "ng", ExtraUserData: "echo hi"},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "extraUserData",
		},
		{
			name:     "windows is not implemented",
			ng:       NodeGroup{Name: "ng", OperatingSystem: "Windows2022"},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeNotImplemented,
			wantPath: "operatingSystem",
		},
		{
			name: "legacy AMI type alias",
			ng:   NodeGroup{Name: "ng", AmiType: "amazon-linux-2-gpu"},
		},
		{
			name:     "unknown AMI type",
			ng:       NodeGroup{Name: "ng", AmiType: "UBUNTU"},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "amiType",
		},
		{
			name:     "amiId with gpu",
			ng:       NodeGroup{Name: "ng", AmiID: "ami-123", GPU: true},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "amiId",
		},
		{
			name:     "amiType with gpu",
			ng:       NodeGroup{Name: "ng", AmiType: "AL2_x86_64", GPU: true},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeUnsupportedCombination,
			wantPath: "amiType",
		},
		{
			name:     "mixed architectures",
			ng:       NodeGroup{Name: "ng", InstanceTypes: []string{"m5.large", "m6g.large"}},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeResolution,
			wantPath: "instanceTypes",
		},
		{
			name: "EKS taint effect spelling",
			ng:   NodeGroup{Name: "ng", Taints: Taints{{Key: "dedicated", Value: "gpu", Effect: "NO_SCHEDULE"}}},
		},
		{
			name:     "invalid taint effect",
			ng:       NodeGroup{Name: "ng", Taints: Taints{{Key: "dedicated", Effect: "Never"}}},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "taints.dedicated.effect",
		},
		{
			name:     "duplicate taint key",
			ng:       NodeGroup{Name: "ng", Taints: Taints{{Key: "gpu", Effect: "NoSchedule"}, {Key: "gpu", Effect: "NoExecute"}}},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "taints.gpu",
		},
		{
			name:     "empty label key",
			ng:       NodeGroup{Name: "ng", Labels: Labels{{Key: "team", Value: "ml"}, {Value: "x"}}},
			wantErr:  true,
			wantCode: ekserrors.ErrCodeValidation,
			wantPath: "labels[1].key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ng.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ekserrors.CodeOf(err))
			assert.Equal(t, tt.wantPath, ekserrors.PathOf(err))
		})
	}
}

func TestBootstrapSpec_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *BootstrapSpec)
		wantPath string
	}{
		{
			name:   "valid",
			mutate: func(s *BootstrapSpec) {},
		},
		{
			name:     "missing cluster name",
			mutate:   func(s *BootstrapSpec) { s.Cluster.Name = "" },
			wantPath: "cluster.name",
		},
		{
			name:     "invalid authentication mode",
			mutate:   func(s *BootstrapSpec) { s.Cluster.AuthenticationMode = "BOGUS" },
			wantPath: "cluster.authenticationMode",
		},
		{
			name:     "invalid service cidr",
			mutate:   func(s *BootstrapSpec) { s.Cluster.ServiceCIDR = "10.100.0.0" },
			wantPath: "cluster.serviceCidr",
		},
		{
			name: "ipv6 family with ipv4 range",
			mutate: func(s *BootstrapSpec) {
				s.Cluster.IPFamily = IPFamilyIPv6
			},
			wantPath: "cluster.serviceCidr",
		},
		{
			name: "access entries under the config map mode",
			mutate: func(s *BootstrapSpec) {
				s.Access = &AccessSpec{AccessEntries: []access.AccessEntry{{PrincipalArn: "arn:aws:iam::123456789012:role/admin"}}}
			},
			wantPath: "access.accessEntries",
		},
		{
			name:     "auto mode requires access entries",
			mutate:   func(s *BootstrapSpec) { s.Cluster.AutoMode = true },
			wantPath: "cluster.authenticationMode",
		},
		{
			name: "node group error is indexed",
			mutate: func(s *BootstrapSpec) {
				s.NodeGroups = append(s.NodeGroups, NodeGroup{Name: "bad", InstanceTypes: []string{"bogus"}})
			},
			wantPath: "nodeGroups[1].instanceTypes",
		},
		{
			name: "duplicate node group names",
			mutate: func(s *BootstrapSpec) {
				s.NodeGroups = append(s.NodeGroups, NodeGroup{Name: "gpu"})
			},
			wantPath: "nodeGroups[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantPath == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantPath, ekserrors.PathOf(err))
		})
	}
}

func TestBootstrap_Validate_TypeMeta(t *testing.T) {
	b := &Bootstrap{Spec: validSpec()}
	b.APIVersion = GroupVersion
	b.Kind = KindBootstrap
	assert.NoError(t, b.Validate())

	b.Kind = "Environment"
	err := b.Validate()
	require.Error(t, err)
	assert.Equal(t, "kind", ekserrors.PathOf(err))
}
