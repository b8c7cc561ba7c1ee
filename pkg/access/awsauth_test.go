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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

func TestCreateAwsAuthData(t *testing.T) {
	data, err := CreateAwsAuthData(
		[]string{nodeRole},
		[]RoleMapping{{RoleArn: adminRole, Username: "admin", Groups: []string{"system:masters"}}},
		nil,
	)
	require.NoError(t, err)

	// caller mappings precede the node bootstrap mappings
	assert.True(t, strings.HasPrefix(data.MapRoles, "- rolearn: "+adminRole+"\n"), data.MapRoles)

	var roles []mapRole
	require.NoError(t, yaml.Unmarshal([]byte(data.MapRoles), &roles))
	assert.Equal(t, []mapRole{
		{RoleArn: adminRole, Username: "admin", Groups: []string{"system:masters"}},
		{RoleArn: nodeRole, Username: "system:node:{{EC2PrivateDNSName}}", Groups: []string{"system:bootstrappers", "system:nodes"}},
	}, roles)

	assert.Empty(t, data.MapUsers)
	assert.NotContains(t, data.Data(), "mapUsers")
}

func TestCreateAwsAuthData_Users(t *testing.T) {
	data, err := CreateAwsAuthData(nil, nil,
		[]UserMapping{{UserArn: devUser, Username: "dev", Groups: []string{"developers"}}})
	require.NoError(t, err)

	assert.Equal(t, "[]\n", data.MapRoles)
	assert.True(t, strings.HasPrefix(data.MapUsers, "- userarn: "+devUser+"\n"), data.MapUsers)

	var users []mapUser
	require.NoError(t, yaml.Unmarshal([]byte(data.MapUsers), &users))
	assert.Equal(t, []mapUser{{UserArn: devUser, Username: "dev", Groups: []string{"developers"}}}, users)
	assert.Contains(t, data.Data(), "mapUsers")
}

func TestCreateAwsAuthData_Errors(t *testing.T) {
	policy := []AccessPolicy{{
		PolicyArn:   "arn:aws:eks::aws:cluster-access-policy/AmazonEKSViewPolicy",
		AccessScope: AccessScope{Type: AccessScopeCluster},
	}}

	tests := []struct {
		name     string
		roles    []RoleMapping
		users    []UserMapping
		wantPath string
	}{
		{
			name:     "role mapping without groups",
			roles:    []RoleMapping{{RoleArn: adminRole, Username: "admin"}},
			wantPath: "roleMappings[0].groups",
		},
		{
			name: "role mapping with access policies",
			roles: []RoleMapping{
				{RoleArn: adminRole, Username: "admin", Groups: []string{"a"}},
				{RoleArn: adminRole, Username: "viewer", Groups: []string{"b"}, AccessPolicies: policy},
			},
			wantPath: "roleMappings[1].accessPolicies",
		},
		{
			name:     "user mapping without groups",
			users:    []UserMapping{{UserArn: devUser, Username: "dev", Groups: []string{}}},
			wantPath: "userMappings[0].groups",
		},
		{
			name:     "user mapping with access policies",
			users:    []UserMapping{{UserArn: devUser, Username: "dev", Groups: []string{"a"}, AccessPolicies: policy}},
			wantPath: "userMappings[0].accessPolicies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateAwsAuthData(nil, tt.roles, tt.users)
			require.Error(t, err)
			assert.True(t, ekserrors.IsCode(err, ekserrors.ErrCodeValidation))
			assert.Equal(t, tt.wantPath, ekserrors.PathOf(err))
		})
	}
}

func TestNewAwsAuthConfigMap(t *testing.T) {
	cm := NewAwsAuthConfigMap(&AwsAuthData{MapRoles: "[]\n", MapUsers: "[]\n"})

	assert.Equal(t, "aws-auth", cm.Name)
	assert.Equal(t, "kube-system", cm.Namespace)
	assert.Equal(t, "ConfigMap", cm.Kind)
	assert.Equal(t, "v1", cm.APIVersion)
	assert.Equal(t, map[string]string{"mapRoles": "[]\n", "mapUsers": "[]\n"}, cm.Data)
}
