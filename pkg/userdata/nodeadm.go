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
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

const (
	nodeConfigAPIVersion = "node.eks.aws/v1alpha1"
	nodeConfigKind       = "NodeConfig"
)

// NodeConfig is the subset of the nodeadm NodeConfig API generated here.
// nodeadm deep merges every NodeConfig part it receives, so cluster details
// and kubelet flags are emitted as separate documents.
type NodeConfig struct {
	APIVersion string         `yaml:"apiVersion" json:"apiVersion"`
	Kind       string         `yaml:"kind" json:"kind"`
	Spec       NodeConfigSpec `yaml:"spec" json:"spec"`
}

// NodeConfigSpec holds the NodeConfig sections.
type NodeConfigSpec struct {
	Cluster *ClusterDetails `yaml:"cluster,omitempty" json:"cluster,omitempty"`
	Kubelet *KubeletOptions `yaml:"kubelet,omitempty" json:"kubelet,omitempty"`
}

// ClusterDetails identifies the cluster to join.
type ClusterDetails struct {
	Name                 string `yaml:"name" json:"name"`
	APIServerEndpoint    string `yaml:"apiServerEndpoint" json:"apiServerEndpoint"`
	CertificateAuthority string `yaml:"certificateAuthority" json:"certificateAuthority"`
	CIDR                 string `yaml:"cidr" json:"cidr"`
}

// KubeletOptions carries extra kubelet command line flags.
type KubeletOptions struct {
	Flags []string `yaml:"flags" json:"flags"`
}

// nodeadmDialect renders MIME multipart user data for AL2023.
type nodeadmDialect struct{}

func (nodeadmDialect) Type() Type { return TypeNodeadm }

func (nodeadmDialect) managed(c ClusterMetadata, a *ManagedArgs) (string, error) {
	parts, err := nodeadmParts(c, &a.CommonArgs)
	if err != nil {
		return "", err
	}
	return renderMultipart(nodeadmBoundary, parts), nil
}

func (nodeadmDialect) selfManagedV1(c ClusterMetadata, a *SelfManagedV1Args) (string, error) {
	parts, err := nodeadmSelfManagedParts(c, &a.SelfManagedArgs)
	if err != nil {
		return "", err
	}
	parts = append(parts, mimePart{
		ContentType: contentTypeShellScript,
		Content:     "#!/bin/bash\n\n" + cfnSignal(a.StackName, a.AWSRegion),
	})
	return renderMultipart(nodeadmBoundary, parts), nil
}

func (nodeadmDialect) selfManagedV2(c ClusterMetadata, a *SelfManagedV2Args) (string, error) {
	parts, err := nodeadmSelfManagedParts(c, &a.SelfManagedArgs)
	if err != nil {
		return "", err
	}
	return renderMultipart(nodeadmBoundary, parts), nil
}

func nodeadmSelfManagedParts(c ClusterMetadata, a *SelfManagedArgs) ([]mimePart, error) {
	parts, err := nodeadmParts(c, &a.CommonArgs)
	if err != nil {
		return nil, err
	}
	if a.ExtraUserData != "" {
		parts = append(parts, mimePart{ContentType: contentTypeShellScript, Content: a.ExtraUserData})
	}
	return parts, nil
}

func nodeadmParts(c ClusterMetadata, a *CommonArgs) ([]mimePart, error) {
	if a.BottlerocketSettings != nil {
		return nil, ekserrors.Unsupported("bottlerocketSettings",
			"The 'bottlerocketSettings' argument is not supported for nodeadm based user data.")
	}
	if a.BootstrapExtraArgs != "" {
		return nil, ekserrors.Unsupported("bootstrapExtraArgs",
			"The 'bootstrapExtraArgs' argument is not supported for nodeadm based user data.")
	}

	clusterDoc, err := marshalNodeConfig(NodeConfigSpec{
		Cluster: &ClusterDetails{
			Name:                 c.Name,
			APIServerEndpoint:    c.APIServerEndpoint,
			CertificateAuthority: c.CertificateAuthority,
			CIDR:                 c.ServiceCIDR,
		},
	})
	if err != nil {
		return nil, err
	}
	parts := []mimePart{{ContentType: contentTypeNodeadm, Content: clusterDoc}}

	if flags := BuildKubeletFlags(a); len(flags) > 0 {
		kubeletDoc, err := marshalNodeConfig(NodeConfigSpec{Kubelet: &KubeletOptions{Flags: flags}})
		if err != nil {
			return nil, err
		}
		parts = append(parts, mimePart{ContentType: contentTypeNodeadm, Content: kubeletDoc})
	}

	for i, opt := range a.NodeadmExtraOptions {
		if opt.ContentType == "" {
			return nil, ekserrors.Validation(fmt.Sprintf("nodeadmExtraOptions[%d].contentType", i),
				"contentType is required")
		}
		parts = append(parts, mimePart{ContentType: opt.ContentType, Content: opt.Content})
	}

	return parts, nil
}

// marshalNodeConfig renders a NodeConfig document preceded by a document
// separator.
func marshalNodeConfig(spec NodeConfigSpec) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NodeConfig{
		APIVersion: nodeConfigAPIVersion,
		Kind:       nodeConfigKind,
		Spec:       spec,
	}); err != nil {
		return "", ekserrors.Wrap(ekserrors.ErrCodeValidation, "failed to render NodeConfig", err)
	}
	if err := enc.Close(); err != nil {
		return "", ekserrors.Wrap(ekserrors.ErrCodeValidation, "failed to render NodeConfig", err)
	}
	return buf.String(), nil
}
