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

package userdata

import (
	corev1 "k8s.io/api/core/v1"
)

// NodeGroupType identifies how a node group's instances are launched and
// how readiness is reported back.
type NodeGroupType string

const (
	// NodeGroupTypeManaged is an EKS managed node group. EKS may merge
	// additional MIME parts into the user data.
	NodeGroupTypeManaged NodeGroupType = "managed"
	// NodeGroupTypeSelfManagedV1 is a CloudFormation backed auto scaling
	// group that signals readiness with cfn-signal.
	NodeGroupTypeSelfManagedV1 NodeGroupType = "self-managed-v1"
	// NodeGroupTypeSelfManagedV2 is a launch template backed auto scaling
	// group.
	NodeGroupTypeSelfManagedV2 NodeGroupType = "self-managed-v2"
)

// ClusterMetadata is the control plane information a node needs to join.
type ClusterMetadata struct {
	Name              string `json:"name"`
	APIServerEndpoint string `json:"apiServerEndpoint"`
	// CertificateAuthority is the base64 encoded cluster CA bundle.
	CertificateAuthority string `json:"certificateAuthority"`
	ServiceCIDR          string `json:"serviceCidr"`
}

// Label is a node label. Labels are kept as an ordered list so the rendered
// kubelet flags follow the caller's order.
type Label struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Taint is a node taint registered by the kubelet at startup.
type Taint struct {
	Key    string             `json:"key"`
	Value  string             `json:"value,omitempty"`
	Effect corev1.TaintEffect `json:"effect"`
}

// NodeadmOption is an additional MIME part appended to nodeadm user data.
type NodeadmOption struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// CommonArgs are the options shared by every node group type.
type CommonArgs struct {
	KubeletExtraArgs   string
	BootstrapExtraArgs string
	Labels             []Label
	Taints             []Taint

	// UserDataOverride replaces the generated user data verbatim. It cannot
	// be combined with any other option.
	UserDataOverride string

	// BottlerocketSettings is merged on top of the generated Bottlerocket
	// settings.
	BottlerocketSettings map[string]any

	NodeadmExtraOptions []NodeadmOption
}

// Common returns the shared options.
func (c *CommonArgs) Common() *CommonArgs { return c }

// SelfManagedArgs are the options shared by self-managed node groups.
type SelfManagedArgs struct {
	CommonArgs

	// StackName names the owning stack. It also delimits the heredoc that
	// embeds ExtraUserData.
	StackName string
	// ExtraUserData is a script run after the node has been bootstrapped.
	ExtraUserData string
}

// ManagedArgs configures user data for a managed node group.
type ManagedArgs struct {
	CommonArgs
}

// SelfManagedV1Args configures user data for a CloudFormation backed node
// group.
type SelfManagedV1Args struct {
	SelfManagedArgs
	AWSRegion string
}

// SelfManagedV2Args configures user data for a launch template backed node
// group.
type SelfManagedV2Args struct {
	SelfManagedArgs
}

// Args is implemented by the three node group variants. The set is closed:
// every dialect has one method per variant, so adding a variant fails to
// build until every dialect handles it.
type Args interface {
	NodeGroupType() NodeGroupType
	Common() *CommonArgs

	extraUserData() string
	accept(d dialect, cluster ClusterMetadata) (string, error)
}

func (a *ManagedArgs) NodeGroupType() NodeGroupType       { return NodeGroupTypeManaged }
func (a *SelfManagedV1Args) NodeGroupType() NodeGroupType { return NodeGroupTypeSelfManagedV1 }
func (a *SelfManagedV2Args) NodeGroupType() NodeGroupType { return NodeGroupTypeSelfManagedV2 }

func (a *ManagedArgs) extraUserData() string     { return "" }
func (a *SelfManagedArgs) extraUserData() string { return a.ExtraUserData }

func (a *ManagedArgs) accept(d dialect, c ClusterMetadata) (string, error) {
	return d.managed(c, a)
}

func (a *SelfManagedV1Args) accept(d dialect, c ClusterMetadata) (string, error) {
	return d.selfManagedV1(c, a)
}

func (a *SelfManagedV2Args) accept(d dialect, c ClusterMetadata) (string, error) {
	return d.selfManagedV2(c, a)
}

var (
	_ Args = (*ManagedArgs)(nil)
	_ Args = (*SelfManagedV1Args)(nil)
	_ Args = (*SelfManagedV2Args)(nil)
)

// RequiresCustomUserData reports whether any option is set that a managed
// node group's default user data cannot express, so a launch template with
// generated user data is needed.
func RequiresCustomUserData(c *CommonArgs) bool {
	return c.BootstrapExtraArgs != "" ||
		c.KubeletExtraArgs != "" ||
		c.BottlerocketSettings != nil ||
		c.NodeadmExtraOptions != nil
}

// setOptions lists the options that conflict with UserDataOverride.
func setOptions(a Args) []string {
	c := a.Common()
	var set []string
	if a.extraUserData() != "" {
		set = append(set, "extraUserData")
	}
	if len(c.Labels) > 0 {
		set = append(set, "labels")
	}
	if len(c.Taints) > 0 {
		set = append(set, "taints")
	}
	if c.KubeletExtraArgs != "" {
		set = append(set, "kubeletExtraArgs")
	}
	if c.BootstrapExtraArgs != "" {
		set = append(set, "bootstrapExtraArgs")
	}
	if c.BottlerocketSettings != nil {
		set = append(set, "bottlerocketSettings")
	}
	if len(c.NodeadmExtraOptions) > 0 {
		set = append(set, "nodeadmExtraOptions")
	}
	return set
}

// ParseTaintEffect accepts the Kubernetes spelling of a taint effect
// (NoSchedule) as well as the EKS API spelling (NO_SCHEDULE).
func ParseTaintEffect(s string) (corev1.TaintEffect, bool) {
	switch s {
	case string(corev1.TaintEffectNoSchedule), "NO_SCHEDULE":
		return corev1.TaintEffectNoSchedule, true
	case string(corev1.TaintEffectNoExecute), "NO_EXECUTE":
		return corev1.TaintEffectNoExecute, true
	case string(corev1.TaintEffectPreferNoSchedule), "PREFER_NO_SCHEDULE":
		return corev1.TaintEffectPreferNoSchedule, true
	}
	return "", false
}
