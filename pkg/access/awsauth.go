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

package access

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

const (
	// AwsAuthName and AwsAuthNamespace locate the ConfigMap read by the
	// AWS IAM authenticator.
	AwsAuthName      = "aws-auth"
	AwsAuthNamespace = "kube-system"

	// NodeUsername is the templated username of instance role mappings.
	NodeUsername = "system:node:{{EC2PrivateDNSName}}"
)

var nodeGroups = []string{"system:bootstrappers", "system:nodes"}

// NodeGroups returns the groups granted to instance roles.
func NodeGroups() []string {
	groups := make([]string, len(nodeGroups))
	copy(groups, nodeGroups)
	return groups
}

// RoleMapping maps an IAM role to a Kubernetes identity. AccessPolicies are
// only honored by access entries.
type RoleMapping struct {
	RoleArn        string         `json:"roleArn"`
	Username       string         `json:"username"`
	Groups         []string       `json:"groups,omitempty"`
	AccessPolicies []AccessPolicy `json:"accessPolicies,omitempty"`
}

// UserMapping maps an IAM user to a Kubernetes identity.
type UserMapping struct {
	UserArn        string         `json:"userArn"`
	Username       string         `json:"username"`
	Groups         []string       `json:"groups,omitempty"`
	AccessPolicies []AccessPolicy `json:"accessPolicies,omitempty"`
}

// AwsAuthData is the data section of the aws-auth ConfigMap.
type AwsAuthData struct {
	MapRoles string `json:"mapRoles"`
	// MapUsers is only set when user mappings were given.
	MapUsers string `json:"mapUsers,omitempty"`
}

// Data returns the ConfigMap data keys.
func (d *AwsAuthData) Data() map[string]string {
	data := map[string]string{"mapRoles": d.MapRoles}
	if d.MapUsers != "" {
		data["mapUsers"] = d.MapUsers
	}
	return data
}

// mapRole and mapUser are the entry shapes the authenticator parses.
type mapRole struct {
	RoleArn  string   `yaml:"rolearn"`
	Username string   `yaml:"username,omitempty"`
	Groups   []string `yaml:"groups"`
}

type mapUser struct {
	UserArn  string   `yaml:"userarn"`
	Username string   `yaml:"username,omitempty"`
	Groups   []string `yaml:"groups"`
}

// CreateAwsAuthData compiles the aws-auth mapRoles and mapUsers documents.
// Caller role mappings come first, followed by one bootstrap mapping per
// instance role. mapUsers is emitted only when userMappings is non-nil.
func CreateAwsAuthData(instanceRoles []string, roleMappings []RoleMapping, userMappings []UserMapping) (*AwsAuthData, error) {
	roles := make([]mapRole, 0, len(roleMappings)+len(instanceRoles))
	for i, m := range roleMappings {
		if err := checkConfigMapMapping(len(m.Groups), len(m.AccessPolicies)); err != nil {
			return nil, ekserrors.AtPath(fmt.Sprintf("roleMappings[%d]", i), err)
		}
		roles = append(roles, mapRole{RoleArn: m.RoleArn, Username: m.Username, Groups: m.Groups})
	}
	for i, arn := range instanceRoles {
		if arn == "" {
			return nil, ekserrors.Validation(fmt.Sprintf("instanceRoles[%d]", i), "role ARN must not be empty")
		}
		roles = append(roles, mapRole{RoleArn: arn, Username: NodeUsername, Groups: NodeGroups()})
	}

	mapRoles, err := encodeYAML(roles)
	if err != nil {
		return nil, ekserrors.Validation("roleMappings",
			"The IAM role mappings provided could not be properly serialized to YAML for the aws-auth ConfigMap: %v", err)
	}
	data := &AwsAuthData{MapRoles: mapRoles}

	if userMappings != nil {
		users := make([]mapUser, 0, len(userMappings))
		for i, m := range userMappings {
			if err := checkConfigMapMapping(len(m.Groups), len(m.AccessPolicies)); err != nil {
				return nil, ekserrors.AtPath(fmt.Sprintf("userMappings[%d]", i), err)
			}
			users = append(users, mapUser{UserArn: m.UserArn, Username: m.Username, Groups: m.Groups})
		}
		mapUsers, err := encodeYAML(users)
		if err != nil {
			return nil, ekserrors.Validation("userMappings",
				"The IAM user mappings provided could not be properly serialized to YAML for the aws-auth ConfigMap: %v", err)
		}
		data.MapUsers = mapUsers
	}

	return data, nil
}

func checkConfigMapMapping(groups, policies int) error {
	if policies > 0 {
		return ekserrors.Validation("accessPolicies",
			"access policies are not supported by the aws-auth ConfigMap; use access entries instead")
	}
	if groups == 0 {
		return ekserrors.Validation("groups",
			"at least one group is required, a mapping without groups grants no permissions")
	}
	return nil
}

// NewAwsAuthConfigMap wraps data in a kube-system/aws-auth ConfigMap.
func NewAwsAuthConfigMap(data *AwsAuthData) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AwsAuthName,
			Namespace: AwsAuthNamespace,
		},
		Data: data.Data(),
	}
}

func encodeYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
