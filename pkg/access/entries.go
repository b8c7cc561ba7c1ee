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
	"fmt"
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// AccessEntryType is the EKS access entry type.
type AccessEntryType string

const (
	AccessEntryTypeStandard     AccessEntryType = "STANDARD"
	AccessEntryTypeEC2Linux     AccessEntryType = "EC2_LINUX"
	AccessEntryTypeEC2Windows   AccessEntryType = "EC2_WINDOWS"
	AccessEntryTypeFargateLinux AccessEntryType = "FARGATE_LINUX"
)

// AccessScopeType limits where an associated access policy applies.
type AccessScopeType string

const (
	AccessScopeCluster   AccessScopeType = "cluster"
	AccessScopeNamespace AccessScopeType = "namespace"
)

// AccessScope is the scope of an access policy association.
type AccessScope struct {
	Type       AccessScopeType `json:"type"`
	Namespaces []string        `json:"namespaces,omitempty"`
}

// AccessPolicy associates an EKS access policy with an access entry.
type AccessPolicy struct {
	PolicyArn   string      `json:"policyArn"`
	AccessScope AccessScope `json:"accessScope"`
}

// AccessEntry is the specification of one EKS access entry and its policy
// associations.
type AccessEntry struct {
	Name             string          `json:"name"`
	PrincipalArn     string          `json:"principalArn"`
	Username         string          `json:"username,omitempty"`
	KubernetesGroups []string        `json:"kubernetesGroups,omitempty"`
	AccessPolicies   []AccessPolicy  `json:"accessPolicies,omitempty"`
	Type             AccessEntryType `json:"type,omitempty"`
}

// EntryType returns the entry type, defaulting to STANDARD.
func (e *AccessEntry) EntryType() AccessEntryType {
	if e.Type == "" {
		return AccessEntryTypeStandard
	}
	return e.Type
}

// CreateAccessEntries compiles one EC2_LINUX entry per instance role and one
// STANDARD entry per role or user mapping. A mapping must grant something:
// kubernetes groups, access policies or both.
func CreateAccessEntries(instanceRoles []string, roleMappings []RoleMapping, userMappings []UserMapping) ([]AccessEntry, error) {
	entries := make([]AccessEntry, 0, len(instanceRoles)+len(roleMappings)+len(userMappings))
	names := make(map[string]int)

	for i, arn := range instanceRoles {
		if arn == "" {
			return nil, ekserrors.Validation(fmt.Sprintf("instanceRoles[%d]", i), "role ARN must not be empty")
		}
		entries = append(entries, AccessEntry{
			Name:         uniqueName(names, "node-"+ArnResourceName(arn)),
			PrincipalArn: arn,
			Type:         AccessEntryTypeEC2Linux,
		})
	}

	for i, m := range roleMappings {
		entry, err := standardEntry(names, m.RoleArn, m.Username, m.Groups, m.AccessPolicies)
		if err != nil {
			return nil, ekserrors.AtPath(fmt.Sprintf("roleMappings[%d]", i), err)
		}
		entries = append(entries, entry)
	}
	for i, m := range userMappings {
		entry, err := standardEntry(names, m.UserArn, m.Username, m.Groups, m.AccessPolicies)
		if err != nil {
			return nil, ekserrors.AtPath(fmt.Sprintf("userMappings[%d]", i), err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func standardEntry(names map[string]int, arn, username string, groups []string, policies []AccessPolicy) (AccessEntry, error) {
	if arn == "" {
		return AccessEntry{}, ekserrors.Validation("", "principal ARN must not be empty")
	}
	if len(groups) == 0 && len(policies) == 0 {
		return AccessEntry{}, ekserrors.Validation("",
			"either groups or accessPolicies must be set, an access entry without either grants no permissions")
	}
	return AccessEntry{
		Name:             uniqueName(names, ArnResourceName(arn)),
		PrincipalArn:     arn,
		Username:         username,
		KubernetesGroups: append([]string(nil), groups...),
		AccessPolicies:   append([]AccessPolicy(nil), policies...),
		Type:             AccessEntryTypeStandard,
	}, nil
}

// uniqueName suffixes repeated names with a counter.
func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}

// ArnResourceName returns the last path segment of an ARN's resource part,
// e.g. "admin" for "arn:aws:iam::123456789012:role/team/admin".
func ArnResourceName(arn string) string {
	resource := arn
	if parts := strings.SplitN(arn, ":", 6); len(parts) == 6 {
		resource = parts[5]
	}
	if i := strings.LastIndex(resource, "/"); i >= 0 {
		resource = resource[i+1:]
	}
	return resource
}

// ValidateAccessEntries checks the per-type restrictions EKS enforces on
// access entries and their policy scopes.
func ValidateAccessEntries(entries []AccessEntry) error {
	principals := make(map[string]int, len(entries))
	for i := range entries {
		e := &entries[i]
		path := fmt.Sprintf("accessEntries[%d]", i)

		if e.PrincipalArn == "" {
			return ekserrors.Validation(path+".principalArn", "principalArn is required")
		}
		if prev, ok := principals[e.PrincipalArn]; ok {
			return ekserrors.Validation(path+".principalArn",
				"principal %s already has an access entry (accessEntries[%d])", e.PrincipalArn, prev)
		}
		principals[e.PrincipalArn] = i

		switch t := e.EntryType(); t {
		case AccessEntryTypeStandard:
		case AccessEntryTypeEC2Linux, AccessEntryTypeEC2Windows, AccessEntryTypeFargateLinux:
			if e.Username != "" {
				return ekserrors.Validation(path+".username", "access entries of type %s cannot set a username", t)
			}
			if len(e.KubernetesGroups) > 0 {
				return ekserrors.Validation(path+".kubernetesGroups", "access entries of type %s cannot set kubernetes groups", t)
			}
			if len(e.AccessPolicies) > 0 {
				return ekserrors.Validation(path+".accessPolicies", "access entries of type %s cannot be associated with access policies", t)
			}
		default:
			return ekserrors.Validation(path+".type", "unknown access entry type: %s", t)
		}

		for j, p := range e.AccessPolicies {
			if err := validatePolicy(p); err != nil {
				return ekserrors.AtPath(fmt.Sprintf("%s.accessPolicies[%d]", path, j), err)
			}
		}
	}
	return nil
}

func validatePolicy(p AccessPolicy) error {
	if p.PolicyArn == "" {
		return ekserrors.Validation("policyArn", "policyArn is required")
	}
	switch p.AccessScope.Type {
	case AccessScopeCluster:
		if len(p.AccessScope.Namespaces) > 0 {
			return ekserrors.Validation("accessScope.namespaces", "a cluster scope cannot list namespaces")
		}
	case AccessScopeNamespace:
		if len(p.AccessScope.Namespaces) == 0 {
			return ekserrors.Validation("accessScope.namespaces", "a namespace scope requires at least one namespace")
		}
	default:
		return ekserrors.Validation("accessScope.type",
			"invalid access scope type %q, must be %q or %q", p.AccessScope.Type, AccessScopeCluster, AccessScopeNamespace)
	}
	return nil
}
