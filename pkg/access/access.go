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

// Package access reconciles cluster access configuration against the
// cluster authentication mode. Depending on the mode it compiles the
// legacy kube-system/aws-auth ConfigMap data, EKS access entries, or both.
package access

import (
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// AuthenticationMode is the EKS cluster authentication mode.
type AuthenticationMode string

const (
	// AuthModeUndefined behaves like AuthModeConfigMap.
	AuthModeUndefined AuthenticationMode = ""
	// AuthModeConfigMap authenticates only through the aws-auth ConfigMap.
	AuthModeConfigMap AuthenticationMode = "CONFIG_MAP"
	// AuthModeAPI authenticates only through access entries.
	AuthModeAPI AuthenticationMode = "API"
	// AuthModeAPIAndConfigMap accepts both mechanisms. It is the mode used
	// while migrating a cluster from the ConfigMap to access entries.
	AuthModeAPIAndConfigMap AuthenticationMode = "API_AND_CONFIG_MAP"
)

var authModes = []AuthenticationMode{AuthModeConfigMap, AuthModeAPIAndConfigMap, AuthModeAPI}

// AuthenticationModes returns the valid explicit modes.
func AuthenticationModes() []AuthenticationMode {
	out := make([]AuthenticationMode, len(authModes))
	copy(out, authModes)
	return out
}

// ValidateAuthenticationMode fails on any value outside the closed set.
// The undefined mode is valid.
func ValidateAuthenticationMode(mode AuthenticationMode) error {
	if mode == AuthModeUndefined {
		return nil
	}
	for _, m := range authModes {
		if mode == m {
			return nil
		}
	}

	allowed := make([]string, len(authModes))
	for i, m := range authModes {
		allowed[i] = string(m)
	}
	return ekserrors.Validation("authenticationMode",
		"Invalid value for authenticationMode: %s. Allowed values are: %s.", mode, strings.Join(allowed, ", "))
}

// SupportsConfigMap reports whether mode reads the aws-auth ConfigMap.
func SupportsConfigMap(mode AuthenticationMode) bool {
	return mode == AuthModeUndefined || mode == AuthModeConfigMap || mode == AuthModeAPIAndConfigMap
}

// SupportsAccessEntries reports whether mode honors access entries.
func SupportsAccessEntries(mode AuthenticationMode) bool {
	return mode == AuthModeAPI || mode == AuthModeAPIAndConfigMap
}

// RequireAccessEntriesForAutoMode checks the EKS Auto Mode precondition.
// Auto Mode nodes register through access entries, so the cluster must
// accept them.
func RequireAccessEntriesForAutoMode(mode AuthenticationMode) error {
	if !SupportsAccessEntries(mode) {
		return ekserrors.Validation("authenticationMode",
			"Access entries are required when using EKS Auto Mode. Use the authentication mode '%s' or '%s'.",
			AuthModeAPI, AuthModeAPIAndConfigMap)
	}
	return nil
}

// Config is the access configuration of a cluster.
type Config struct {
	// InstanceRoles are the node instance role ARNs. Under the ConfigMap
	// they receive the node bootstrap mapping, under the API they receive
	// EC2_LINUX access entries.
	InstanceRoles []string      `json:"instanceRoles,omitempty"`
	RoleMappings  []RoleMapping `json:"roleMappings,omitempty"`
	UserMappings  []UserMapping `json:"userMappings,omitempty"`
	AccessEntries []AccessEntry `json:"accessEntries,omitempty"`

	// AutoMode marks a cluster that uses EKS Auto Mode.
	AutoMode bool `json:"autoMode,omitempty"`
}

// ValidateAccessConfig rejects properties the authentication mode ignores.
func ValidateAccessConfig(mode AuthenticationMode, cfg *Config) error {
	if err := ValidateAuthenticationMode(mode); err != nil {
		return err
	}

	if !SupportsConfigMap(mode) {
		switch {
		case len(cfg.RoleMappings) > 0:
			return unsupportedProperty("roleMappings", mode)
		case len(cfg.UserMappings) > 0:
			return unsupportedProperty("userMappings", mode)
		case len(cfg.InstanceRoles) > 0:
			return unsupportedProperty("instanceRoles", mode)
		}
	}
	if !SupportsAccessEntries(mode) && len(cfg.AccessEntries) > 0 {
		return unsupportedProperty("accessEntries", mode)
	}
	return nil
}

func unsupportedProperty(prop string, mode AuthenticationMode) error {
	if mode == AuthModeUndefined {
		mode = AuthModeConfigMap
	}
	return ekserrors.Validation(prop,
		"The '%s' property is not supported when 'authenticationMode' is set to '%s'.", prop, mode)
}

// Result holds the reconciled access artifacts. A nil AwsAuth means the
// mode does not read the ConfigMap.
type Result struct {
	Mode          AuthenticationMode `json:"authenticationMode"`
	AwsAuth       *AwsAuthData       `json:"awsAuth,omitempty"`
	AccessEntries []AccessEntry      `json:"accessEntries,omitempty"`
}

// Reconcile validates cfg against mode and runs each compiler whose mode
// predicate holds. Under API_AND_CONFIG_MAP both run over the same
// mappings, so a cluster in migration grants identical access through
// either mechanism. The exception is a mapping carrying access policies:
// the ConfigMap cannot express them, so it is compiled into an access
// entry only.
func Reconcile(mode AuthenticationMode, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := ValidateAccessConfig(mode, cfg); err != nil {
		return nil, err
	}
	if cfg.AutoMode {
		if err := RequireAccessEntriesForAutoMode(mode); err != nil {
			return nil, err
		}
	}

	result := &Result{Mode: mode}
	if SupportsConfigMap(mode) {
		roles, users := cfg.RoleMappings, cfg.UserMappings
		if SupportsAccessEntries(mode) {
			roles, users = configMapMappings(roles, users)
		}
		data, err := CreateAwsAuthData(cfg.InstanceRoles, roles, users)
		if err != nil {
			return nil, err
		}
		result.AwsAuth = data
	}

	if SupportsAccessEntries(mode) {
		entries, err := CreateAccessEntries(cfg.InstanceRoles, cfg.RoleMappings, cfg.UserMappings)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cfg.AccessEntries...)
		if err := ValidateAccessEntries(entries); err != nil {
			return nil, err
		}
		result.AccessEntries = entries
	}

	return result, nil
}

// configMapMappings drops the mappings that grant access policies. A
// non-nil userMappings stays non-nil so mapUsers is still emitted.
func configMapMappings(roleMappings []RoleMapping, userMappings []UserMapping) ([]RoleMapping, []UserMapping) {
	var roles []RoleMapping
	for _, m := range roleMappings {
		if len(m.AccessPolicies) == 0 {
			roles = append(roles, m)
		}
	}
	if userMappings == nil {
		return roles, nil
	}
	users := make([]UserMapping, 0, len(userMappings))
	for _, m := range userMappings {
		if len(m.AccessPolicies) == 0 {
			users = append(users, m)
		}
	}
	return roles, users
}
