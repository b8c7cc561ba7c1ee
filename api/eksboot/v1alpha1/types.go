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

// Package v1alpha1 contains the declarative description compiled by eksboot.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/eksboot/pkg/access"
	"github.com/NVIDIA/eksboot/pkg/userdata"
)

const (
	// GroupVersion is the apiVersion of a description file.
	GroupVersion = "eksboot.nvidia.com/v1alpha1"
	// KindBootstrap is the kind of a description file.
	KindBootstrap = "Bootstrap"
)

// Bootstrap describes a cluster, its access configuration and the node
// groups to compile.
type Bootstrap struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec BootstrapSpec `json:"spec"`
}

// BootstrapSpec defines the compile inputs
type BootstrapSpec struct {
	Cluster ClusterSpec `json:"cluster"`

	// +optional
	Access *AccessSpec `json:"access,omitempty"`

	// +optional
	NodeGroups []NodeGroup `json:"nodeGroups,omitempty"`
}

// IPFamily selects the service address family of a cluster.
// +kubebuilder:validation:Enum=ipv4;ipv6
type IPFamily string

const (
	IPFamilyIPv4 IPFamily = "ipv4"
	IPFamilyIPv6 IPFamily = "ipv6"
)

// ClusterSpec identifies the EKS cluster nodes join.
type ClusterSpec struct {
	// Name of the EKS cluster.
	// +required
	Name string `json:"name"`

	// Region is used for AWS lookups and by cfn-signal.
	// +optional
	Region string `json:"region,omitempty"`

	// Version is the Kubernetes version of the control plane, e.g. "1.31".
	// +optional
	Version string `json:"version,omitempty"`

	// Endpoint, CertificateAuthority and ServiceCIDR are read from
	// DescribeCluster when gathering and may be left empty then.
	// +optional
	Endpoint string `json:"endpoint,omitempty"`
	// +optional
	CertificateAuthority string `json:"certificateAuthority,omitempty"`
	// +optional
	ServiceCIDR string `json:"serviceCidr,omitempty"`
	// +optional
	IPFamily IPFamily `json:"ipFamily,omitempty"`

	// +optional
	AuthenticationMode access.AuthenticationMode `json:"authenticationMode,omitempty"`

	// AutoMode marks a cluster running EKS Auto Mode.
	// +optional
	AutoMode bool `json:"autoMode,omitempty"`

	// SubnetIDs are the cluster subnets. Node groups without their own
	// subnets are placed in the private ones when any exist.
	// +optional
	SubnetIDs []string `json:"subnetIds,omitempty"`
}

// AccessSpec grants IAM principals access to the cluster.
type AccessSpec struct {
	// +optional
	InstanceRoles []string `json:"instanceRoles,omitempty"`
	// +optional
	RoleMappings []access.RoleMapping `json:"roleMappings,omitempty"`
	// +optional
	UserMappings []access.UserMapping `json:"userMappings,omitempty"`
	// +optional
	AccessEntries []access.AccessEntry `json:"accessEntries,omitempty"`
}


// NodeGroup describes one group of worker nodes.
type NodeGroup struct {
	// +required
	Name string `json:"name"`

	// Type defaults to managed.
	// +kubebuilder:validation:Enum=managed;self-managed-v1;self-managed-v2
	// +optional
	Type userdata.NodeGroupType `json:"type,omitempty"`

	// OperatingSystem is one of AL2, AL2023 or Bottlerocket. When empty it
	// is derived from AmiType, falling back to AL2023.
	// +optional
	OperatingSystem string `json:"operatingSystem,omitempty"`

	// AmiType pins the AMI type. Legacy aliases such as amazon-linux-2 are
	// accepted.
	// +optional
	AmiType string `json:"amiType,omitempty"`

	// AmiID pins a custom image. It excludes AmiType and GPU.
	// +optional
	AmiID string `json:"amiId,omitempty"`

	// +optional
	GPU bool `json:"gpu,omitempty"`

	// +optional
	InstanceTypes []string `json:"instanceTypes,omitempty"`

	// Version defaults to the cluster version.
	// +optional
	Version string `json:"version,omitempty"`

	// +optional
	SubnetIDs []string `json:"subnetIds,omitempty"`

	// +optional
	Labels Labels `json:"labels,omitempty"`
	// +optional
	Taints Taints `json:"taints,omitempty"`

	// +optional
	KubeletExtraArgs string `json:"kubeletExtraArgs,omitempty"`
	// +optional
	BootstrapExtraArgs string `json:"bootstrapExtraArgs,omitempty"`
	// +optional
	UserDataOverride string `json:"userDataOverride,omitempty"`
	// +optional
	BottlerocketSettings map[string]any `json:"bottlerocketSettings,omitempty"`
	// +optional
	NodeadmExtraOptions []userdata.NodeadmOption `json:"nodeadmExtraOptions,omitempty"`

	// StackName and ExtraUserData only apply to self-managed node groups.
	// StackName defaults to the node group name.
	// +optional
	StackName string `json:"stackName,omitempty"`
	// +optional
	ExtraUserData string `json:"extraUserData,omitempty"`
}

// NodeGroupType returns the node group type, defaulting to managed.
func (ng *NodeGroup) NodeGroupType() userdata.NodeGroupType {
	if ng.Type == "" {
		return userdata.NodeGroupTypeManaged
	}
	return ng.Type
}

// AccessConfig returns the access configuration of the spec.
func (s *BootstrapSpec) AccessConfig() *access.Config {
	cfg := &access.Config{AutoMode: s.Cluster.AutoMode}
	if s.Access != nil {
		cfg.InstanceRoles = s.Access.InstanceRoles
		cfg.RoleMappings = s.Access.RoleMappings
		cfg.UserMappings = s.Access.UserMappings
		cfg.AccessEntries = s.Access.AccessEntries
	}
	return cfg
}
