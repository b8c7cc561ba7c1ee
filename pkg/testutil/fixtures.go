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

package testutil

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/eksboot/api/eksboot/v1alpha1"
	"github.com/NVIDIA/eksboot/pkg/access"
)

// Common identifiers used across fixtures.
const (
	ClusterName  = "demo"
	AdminRoleArn = "arn:aws:iam::123456789012:role/admin"
	NodeRoleArn  = "arn:aws:iam::123456789012:role/eks/node"
)

// ValidBootstrap returns a minimal valid description with one managed
// AL2023 node group.
func ValidBootstrap() *v1alpha1.Bootstrap {
	return &v1alpha1.Bootstrap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: v1alpha1.GroupVersion,
			Kind:       v1alpha1.KindBootstrap,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: "test-bootstrap",
		},
		Spec: v1alpha1.BootstrapSpec{
			Cluster: v1alpha1.ClusterSpec{
				Name:                 ClusterName,
				Region:               "us-west-2",
				Version:              "1.31",
				Endpoint:             "https://ABC.gr7.us-west-2.eks.amazonaws.com",
				CertificateAuthority: "Y2VydA==",
				ServiceCIDR:          "10.100.0.0/16",
			},
			Access: &v1alpha1.AccessSpec{
				InstanceRoles: []string{NodeRoleArn},
				RoleMappings: []access.RoleMapping{{
					RoleArn:  AdminRoleArn,
					Username: "admin",
					Groups:   []string{"system:masters"},
				}},
			},
			NodeGroups: []v1alpha1.NodeGroup{{
				Name:          "workers",
				InstanceTypes: []string{"m5.large"},
			}},
		},
	}
}

// BootstrapYAML is ValidBootstrap as a description file.
const BootstrapYAML = `apiVersion: eksboot.nvidia.com/v1alpha1
kind: Bootstrap
metadata:
  name: test-bootstrap
spec:
  cluster:
    name: demo
    region: us-west-2
    version: "1.31"
    endpoint: https://ABC.gr7.us-west-2.eks.amazonaws.com
    certificateAuthority: Y2VydA==
    serviceCidr: 10.100.0.0/16
  access:
    instanceRoles:
      - arn:aws:iam::123456789012:role/eks/node
    roleMappings:
      - roleArn: arn:aws:iam::123456789012:role/admin
        username: admin
        groups:
          - system:masters
  nodeGroups:
    - name: workers
      instanceTypes:
        - m5.large
`
