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

// Package nodegroup compiles node group descriptions into launch artifacts:
// the AMI to boot, the subnets to place nodes in and the user data nodes
// run to join the cluster. Compilation performs no I/O; values that need
// AWS lookups are passed in as Facts.
package nodegroup

import (
	"fmt"

	"github.com/NVIDIA/eksboot/api/eksboot/v1alpha1"
	"github.com/NVIDIA/eksboot/internal/ami"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
	"github.com/NVIDIA/eksboot/pkg/subnet"
	"github.com/NVIDIA/eksboot/pkg/userdata"
)

// Cluster is the cluster level input of a compile.
type Cluster struct {
	Metadata  userdata.ClusterMetadata
	Version   string
	Region    string
	SubnetIDs []string
}

// ClusterFromSpec builds the compile input of a cluster description.
func ClusterFromSpec(c *v1alpha1.ClusterSpec) Cluster {
	return Cluster{
		Metadata: userdata.ClusterMetadata{
			Name:                 c.Name,
			APIServerEndpoint:    c.Endpoint,
			CertificateAuthority: c.CertificateAuthority,
			ServiceCIDR:          c.ServiceCIDR,
		},
		Version:   c.Version,
		Region:    c.Region,
		SubnetIDs: c.SubnetIDs,
	}
}

// Facts are values gathered from AWS. Every field is optional: a compile
// without facts leaves ImageID empty and places nodes in the cluster
// subnets unfiltered.
type Facts struct {
	// Subnets holds the route facts of the cluster subnets.
	Subnets []subnet.Facts
	// Images maps SSM lookup keys to image ids.
	Images map[string]string
	// ImageArchitectures maps explicitly configured image ids to their
	// architecture.
	ImageArchitectures map[string]ami.CPUArchitecture
}

// Artifacts are the compiled launch settings of one node group.
type Artifacts struct {
	Name            string                 `json:"name"`
	NodeGroupType   userdata.NodeGroupType `json:"nodeGroupType"`
	OperatingSystem ami.OperatingSystem    `json:"operatingSystem"`
	Architecture    ami.CPUArchitecture    `json:"architecture"`
	AmiType         ami.AmiType            `json:"amiType,omitempty"`
	AmiLookupKey    string                 `json:"amiLookupKey,omitempty"`
	ImageID         string                 `json:"imageId,omitempty"`
	SubnetIDs       []string               `json:"subnetIds,omitempty"`
	UserDataType    userdata.Type          `json:"userDataType"`
	UserData        string                 `json:"userData"`
	UserDataBase64  string                 `json:"userDataBase64"`
}

// CompileAll compiles every node group of spec. Errors are anchored at the
// failing node group, e.g. "nodeGroups[1].taints".
func CompileAll(spec *v1alpha1.BootstrapSpec, facts *Facts) ([]*Artifacts, error) {
	cluster := ClusterFromSpec(&spec.Cluster)
	out := make([]*Artifacts, 0, len(spec.NodeGroups))
	for i := range spec.NodeGroups {
		a, err := Compile(cluster, &spec.NodeGroups[i], facts)
		if err != nil {
			return nil, ekserrors.AtPath(fmt.Sprintf("nodeGroups[%d]", i), err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Compile compiles a single node group.
func Compile(cluster Cluster, ng *v1alpha1.NodeGroup, facts *Facts) (*Artifacts, error) {
	if facts == nil {
		facts = &Facts{}
	}
	if err := ng.Validate(); err != nil {
		return nil, err
	}

	os, err := ami.ParseOperatingSystem(ng.OperatingSystem)
	if err != nil {
		return nil, err
	}
	os, err = ami.GetOperatingSystem(ng.AmiType, os)
	if err != nil {
		return nil, err
	}
	arch, err := ami.GetArchitecture(ng.InstanceTypes, "instanceTypes")
	if err != nil {
		return nil, err
	}

	a := &Artifacts{
		Name:            ng.Name,
		NodeGroupType:   ng.NodeGroupType(),
		OperatingSystem: os,
		Architecture:    arch,
	}
	if err := resolveImage(a, ng, cluster.Version, facts); err != nil {
		return nil, err
	}

	a.SubnetIDs, err = workerSubnets(cluster, ng, facts)
	if err != nil {
		return nil, err
	}

	args, err := userDataArgs(cluster, ng)
	if err != nil {
		return nil, err
	}
	a.UserData, err = userdata.CreateUserData(os, cluster.Metadata, args)
	if err != nil {
		return nil, err
	}
	a.UserDataType, _ = userdata.TypeFor(os)
	a.UserDataBase64 = userdata.Encode(a.UserData)

	return a, nil
}

func resolveImage(a *Artifacts, ng *v1alpha1.NodeGroup, clusterVersion string, facts *Facts) error {
	if ng.AmiID != "" {
		if imageArch, ok := facts.ImageArchitectures[ng.AmiID]; ok && imageArch != a.Architecture {
			return ekserrors.Unsupported("amiId",
				"image %s is built for %s but the instance types require %s", ng.AmiID, imageArch, a.Architecture)
		}
		a.ImageID = ng.AmiID
		return nil
	}

	var err error
	if ng.AmiType != "" {
		a.AmiType, _ = ami.ToAmiType(ng.AmiType)
	} else {
		a.AmiType, err = ami.GetAmiType(a.OperatingSystem, ng.GPU, a.Architecture)
		if err != nil {
			return err
		}
	}

	md, _ := ami.Get(string(a.AmiType))
	switch {
	case len(ng.InstanceTypes) == 0:
		a.Architecture = md.Architecture
	case md.Architecture != a.Architecture:
		return ekserrors.Unsupported("amiType",
			"AMI type %s is built for %s but the instance types require %s", a.AmiType, md.Architecture, a.Architecture)
	}

	version := ng.Version
	if version == "" {
		version = clusterVersion
	}
	if version == "" {
		return ekserrors.Validation("version", "a Kubernetes version is required to look up the AMI of %s", a.AmiType)
	}
	a.AmiLookupKey = md.LookupKey(version)
	a.ImageID = facts.Images[a.AmiLookupKey]
	return nil
}

// workerSubnets prefers the node group's own subnets, then the private
// cluster subnets when route facts are known, then all cluster subnets.
func workerSubnets(cluster Cluster, ng *v1alpha1.NodeGroup, facts *Facts) ([]string, error) {
	if len(ng.SubnetIDs) > 0 {
		return ng.SubnetIDs, nil
	}
	if len(facts.Subnets) > 0 {
		return subnet.ComputeWorkerSubnets(facts.Subnets)
	}
	return cluster.SubnetIDs, nil
}

func userDataArgs(cluster Cluster, ng *v1alpha1.NodeGroup) (userdata.Args, error) {
	common := userdata.CommonArgs{
		KubeletExtraArgs:     ng.KubeletExtraArgs,
		BootstrapExtraArgs:   ng.BootstrapExtraArgs,
		Labels:               Labels(ng.Labels),
		UserDataOverride:     ng.UserDataOverride,
		BottlerocketSettings: ng.BottlerocketSettings,
		NodeadmExtraOptions:  ng.NodeadmExtraOptions,
	}
	taints, err := Taints(ng.Taints)
	if err != nil {
		return nil, err
	}
	common.Taints = taints

	stackName := ng.StackName
	if stackName == "" {
		stackName = ng.Name
	}
	selfManaged := userdata.SelfManagedArgs{
		CommonArgs:    common,
		StackName:     stackName,
		ExtraUserData: ng.ExtraUserData,
	}

	switch ng.NodeGroupType() {
	case userdata.NodeGroupTypeSelfManagedV1:
		if cluster.Region == "" {
			return nil, ekserrors.Validation("type", "self-managed-v1 node groups signal their stack and need the cluster region")
		}
		return &userdata.SelfManagedV1Args{SelfManagedArgs: selfManaged, AWSRegion: cluster.Region}, nil
	case userdata.NodeGroupTypeSelfManagedV2:
		return &userdata.SelfManagedV2Args{SelfManagedArgs: selfManaged}, nil
	default:
		return &userdata.ManagedArgs{CommonArgs: common}, nil
	}
}

// Labels converts labels, keeping their order.
func Labels(labels v1alpha1.Labels) []userdata.Label {
	if len(labels) == 0 {
		return nil
	}
	out := make([]userdata.Label, 0, len(labels))
	for _, l := range labels {
		out = append(out, userdata.Label{Key: l.Key, Value: l.Value})
	}
	return out
}

// Taints converts taints, keeping their order, with their effects
// normalized to the Kubernetes spelling.
func Taints(taints v1alpha1.Taints) ([]userdata.Taint, error) {
	if len(taints) == 0 {
		return nil, nil
	}
	out := make([]userdata.Taint, 0, len(taints))
	for _, t := range taints {
		effect, ok := userdata.ParseTaintEffect(t.Effect)
		if !ok {
			return nil, ekserrors.Validation(fmt.Sprintf("taints.%s.effect", t.Key), "invalid taint effect %q", t.Effect)
		}
		out = append(out, userdata.Taint{Key: t.Key, Value: t.Value, Effect: effect})
	}
	return out, nil
}
