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
	"fmt"
	"net/netip"

	"github.com/NVIDIA/eksboot/internal/ami"
	"github.com/NVIDIA/eksboot/pkg/access"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
	"github.com/NVIDIA/eksboot/pkg/userdata"
)

// Validate validates the description. It checks everything that can be
// checked without AWS lookups; compile errors may still follow.
func (b *Bootstrap) Validate() error {
	if b.APIVersion != "" && b.APIVersion != GroupVersion {
		return ekserrors.Validation("apiVersion", "unsupported apiVersion %q, expected %q", b.APIVersion, GroupVersion)
	}
	if b.Kind != "" && b.Kind != KindBootstrap {
		return ekserrors.Validation("kind", "unsupported kind %q, expected %q", b.Kind, KindBootstrap)
	}
	return b.Spec.Validate()
}

// Validate validates the BootstrapSpec configuration.
func (s *BootstrapSpec) Validate() error {
	if err := s.Cluster.Validate(); err != nil {
		return ekserrors.AtPath("cluster", err)
	}

	if err := access.ValidateAccessConfig(s.Cluster.AuthenticationMode, s.AccessConfig()); err != nil {
		return ekserrors.AtPath("access", err)
	}
	if s.Cluster.AutoMode {
		if err := access.RequireAccessEntriesForAutoMode(s.Cluster.AuthenticationMode); err != nil {
			return ekserrors.AtPath("cluster", err)
		}
	}

	names := make(map[string]int, len(s.NodeGroups))
	for i := range s.NodeGroups {
		path := fmt.Sprintf("nodeGroups[%d]", i)
		ng := &s.NodeGroups[i]
		if err := ng.Validate(); err != nil {
			return ekserrors.AtPath(path, err)
		}
		if prev, ok := names[ng.Name]; ok {
			return ekserrors.Validation(path+".name",
				"duplicate node group name %q (also used by nodeGroups[%d])", ng.Name, prev)
		}
		names[ng.Name] = i
	}

	return nil
}

// Validate validates the ClusterSpec configuration.
func (c *ClusterSpec) Validate() error {
	if c.Name == "" {
		return ekserrors.Validation("name", "cluster name is required")
	}
	if err := access.ValidateAuthenticationMode(c.AuthenticationMode); err != nil {
		return err
	}

	switch c.IPFamily {
	case "", IPFamilyIPv4, IPFamilyIPv6:
	default:
		return ekserrors.Validation("ipFamily", "invalid ipFamily %q, must be %q or %q", c.IPFamily, IPFamilyIPv4, IPFamilyIPv6)
	}

	if c.ServiceCIDR != "" {
		prefix, err := netip.ParsePrefix(c.ServiceCIDR)
		if err != nil {
			return ekserrors.Validation("serviceCidr", "invalid CIDR %q: %v", c.ServiceCIDR, err)
		}
		if c.IPFamily == IPFamilyIPv6 && !prefix.Addr().Is6() {
			return ekserrors.Validation("serviceCidr", "ipFamily is ipv6 but %s is not an IPv6 range", c.ServiceCIDR)
		}
	}

	for i, id := range c.SubnetIDs {
		if id == "" {
			return ekserrors.Validation(fmt.Sprintf("subnetIds[%d]", i), "subnet id must not be empty")
		}
	}

	return nil
}

// Validate validates the NodeGroup configuration.
func (ng *NodeGroup) Validate() error {
	if ng.Name == "" {
		return ekserrors.Validation("name", "node group name is required")
	}

	switch ng.NodeGroupType() {
	case userdata.NodeGroupTypeManaged:
		if ng.ExtraUserData != "" {
			return ekserrors.Unsupported("extraUserData", "extraUserData is only supported by self-managed node groups")
		}
		if ng.StackName != "" {
			return ekserrors.Unsupported("stackName", "stackName is only supported by self-managed node groups")
		}
	case userdata.NodeGroupTypeSelfManagedV1, userdata.NodeGroupTypeSelfManagedV2:
	default:
		return ekserrors.Validation("type", "invalid node group type %q, must be one of: %s, %s, %s", ng.Type,
			userdata.NodeGroupTypeManaged, userdata.NodeGroupTypeSelfManagedV1, userdata.NodeGroupTypeSelfManagedV2)
	}

	if _, err := ami.ParseOperatingSystem(ng.OperatingSystem); err != nil {
		return err
	}
	if ng.AmiType != "" {
		if _, ok := ami.ToAmiType(ng.AmiType); !ok {
			return ekserrors.Validation("amiType", "unknown AMI type %q", ng.AmiType)
		}
	}
	if ng.AmiID != "" && (ng.GPU || ng.AmiType != "") {
		return ekserrors.Unsupported("amiId", "amiId is mutually exclusive with gpu and amiType")
	}
	if ng.AmiType != "" && ng.GPU {
		return ekserrors.Unsupported("amiType", "amiType is mutually exclusive with gpu, pick a GPU AMI type instead")
	}

	if _, err := ami.GetArchitecture(ng.InstanceTypes, "instanceTypes"); err != nil {
		return err
	}

	labels := make(map[string]bool, len(ng.Labels))
	for i, l := range ng.Labels {
		if l.Key == "" {
			return ekserrors.Validation(fmt.Sprintf("labels[%d].key", i), "label keys must not be empty")
		}
		if labels[l.Key] {
			return ekserrors.Validation("labels."+l.Key, "label %q is set more than once", l.Key)
		}
		labels[l.Key] = true
	}
	taints := make(map[string]bool, len(ng.Taints))
	for i, taint := range ng.Taints {
		if taint.Key == "" {
			return ekserrors.Validation(fmt.Sprintf("taints[%d].key", i), "taint keys must not be empty")
		}
		if taints[taint.Key] {
			return ekserrors.Validation("taints."+taint.Key, "taint %q is set more than once", taint.Key)
		}
		taints[taint.Key] = true
		if _, ok := userdata.ParseTaintEffect(taint.Effect); !ok {
			return ekserrors.Validation(fmt.Sprintf("taints.%s.effect", taint.Key),
				"invalid taint effect %q, must be one of: NoSchedule, NoExecute, PreferNoSchedule", taint.Effect)
		}
	}

	return nil
}
