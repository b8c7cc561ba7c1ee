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

// Package userdata compiles node group settings into the user data a worker
// node runs at first boot. Three dialects exist, selected by operating
// system: a bootstrap.sh invocation for AL2, nodeadm NodeConfig documents for
// AL2023 and TOML settings for Bottlerocket.
//
// Compilation is pure. Identical inputs always produce byte-identical output.
package userdata

import (
	"encoding/base64"
	"strings"

	"github.com/NVIDIA/eksboot/internal/ami"
	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// Type names a user data dialect.
type Type string

const (
	TypeLinux        Type = "linux"
	TypeNodeadm      Type = "nodeadm"
	TypeBottlerocket Type = "bottlerocket"
)

// dialect renders user data for each node group variant.
type dialect interface {
	Type() Type
	managed(c ClusterMetadata, a *ManagedArgs) (string, error)
	selfManagedV1(c ClusterMetadata, a *SelfManagedV1Args) (string, error)
	selfManagedV2(c ClusterMetadata, a *SelfManagedV2Args) (string, error)
}

var dialects = map[ami.OperatingSystem]dialect{
	ami.OperatingSystemAL2:          linuxDialect{},
	ami.OperatingSystemAL2023:       nodeadmDialect{},
	ami.OperatingSystemBottlerocket: bottlerocketDialect{},
}

// TypeFor returns the user data dialect used by os.
func TypeFor(os ami.OperatingSystem) (Type, bool) {
	d, ok := dialects[os]
	if !ok {
		return "", false
	}
	return d.Type(), true
}

// CreateUserData compiles args into user data for a node running os.
//
// A non-empty UserDataOverride is returned verbatim; setting it together
// with any other option is a validation error.
func CreateUserData(os ami.OperatingSystem, cluster ClusterMetadata, args Args) (string, error) {
	if args == nil {
		return "", ekserrors.Validation("", "user data arguments are required")
	}

	if override := args.Common().UserDataOverride; override != "" {
		if set := setOptions(args); len(set) > 0 {
			return "", ekserrors.Validation("userDataOverride",
				"userDataOverride and any combination of {extraUserData, labels, taints, kubeletExtraArgs, "+
					"bootstrapExtraArgs, bottlerocketSettings, nodeadmExtraOptions} is mutually exclusive (set: %s)",
				strings.Join(set, ", "))
		}
		return override, nil
	}

	d, ok := dialects[os]
	if !ok {
		return "", ekserrors.Validation("operatingSystem", "unsupported operating system %q", os)
	}
	return args.accept(d, cluster)
}

// Encode base64 encodes user data for launch templates.
func Encode(userData string) string {
	return base64.StdEncoding.EncodeToString([]byte(userData))
}
