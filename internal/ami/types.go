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

// Package ami maps node group constraints (operating system, GPU support and
// CPU architecture) to EKS AMI types and to the SSM parameter that names the
// recommended image for a given Kubernetes version.
package ami

import (
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// OperatingSystem selects the node image family and with it the user data
// dialect understood by the node.
type OperatingSystem string

const (
	// OperatingSystemAL2 is Amazon Linux 2, bootstrapped by bootstrap.sh.
	OperatingSystemAL2 OperatingSystem = "AL2"
	// OperatingSystemAL2023 is Amazon Linux 2023, bootstrapped by nodeadm.
	OperatingSystemAL2023 OperatingSystem = "AL2023"
	// OperatingSystemBottlerocket is Bottlerocket, configured through TOML
	// settings.
	OperatingSystemBottlerocket OperatingSystem = "Bottlerocket"
)

// DefaultOperatingSystem is used when neither an OS nor an AMI type is given.
const DefaultOperatingSystem = OperatingSystemAL2023

// OperatingSystems lists every supported OS.
func OperatingSystems() []OperatingSystem {
	return []OperatingSystem{
		OperatingSystemAL2,
		OperatingSystemAL2023,
		OperatingSystemBottlerocket,
	}
}

// ParseOperatingSystem parses a user supplied OS name. Matching is case
// insensitive. An empty string parses to the empty OS, meaning "unset".
func ParseOperatingSystem(s string) (OperatingSystem, error) {
	if s == "" {
		return "", nil
	}
	for _, os := range OperatingSystems() {
		if strings.EqualFold(s, string(os)) {
			return os, nil
		}
	}
	if strings.HasPrefix(strings.ToLower(s), "windows") {
		return "", ekserrors.NotImplemented("operatingSystem",
			"operating system %q is not supported yet", s)
	}
	return "", ekserrors.Validation("operatingSystem",
		"invalid operating system %q, must be one of: %s, %s, %s",
		s, OperatingSystemAL2, OperatingSystemAL2023, OperatingSystemBottlerocket)
}

// CPUArchitecture is the instruction set of a node.
type CPUArchitecture string

const (
	ArchitectureARM64 CPUArchitecture = "arm64"
	ArchitectureX8664 CPUArchitecture = "x86_64"
)

// AmiType is the EKS AMI type identifier, as accepted by the managed node
// group API.
type AmiType string

const (
	AmiTypeAL2X8664                AmiType = "AL2_x86_64"
	AmiTypeAL2X8664GPU             AmiType = "AL2_x86_64_GPU"
	AmiTypeAL2ARM64                AmiType = "AL2_ARM_64"
	AmiTypeAL2023X8664Standard     AmiType = "AL2023_x86_64_STANDARD"
	AmiTypeAL2023ARM64Standard     AmiType = "AL2023_ARM_64_STANDARD"
	AmiTypeAL2023X8664Nvidia       AmiType = "AL2023_x86_64_NVIDIA"
	AmiTypeBottlerocketARM64       AmiType = "BOTTLEROCKET_ARM_64"
	AmiTypeBottlerocketX8664       AmiType = "BOTTLEROCKET_x86_64"
	AmiTypeBottlerocketARM64Nvidia AmiType = "BOTTLEROCKET_ARM_64_NVIDIA"
	AmiTypeBottlerocketX8664Nvidia AmiType = "BOTTLEROCKET_x86_64_NVIDIA"
)

// Metadata describes an AMI type.
type Metadata struct {
	Type         AmiType
	OS           OperatingSystem
	GPUSupport   bool
	Architecture CPUArchitecture

	// Aliases are legacy names accepted in place of Type.
	Aliases []string

	// lookupKey renders the SSM parameter name for a cluster version.
	lookupKey func(clusterVersion string) string
}

// LookupKey returns the SSM parameter name holding the recommended image id
// of this AMI type for the given Kubernetes version.
func (m Metadata) LookupKey(clusterVersion string) string {
	return m.lookupKey(clusterVersion)
}
