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

package ami

import (
	"fmt"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

func eksOptimizedKey(variant string) func(string) string {
	return func(v string) string {
		return fmt.Sprintf("/aws/service/eks/optimized-ami/%s/%s/recommended/image_id", v, variant)
	}
}

func bottlerocketKey(suffix string, arch CPUArchitecture) func(string) string {
	return func(v string) string {
		return fmt.Sprintf("/aws/service/bottlerocket/aws-k8s-%s%s/%s/latest/image_id", v, suffix, arch)
	}
}

// registry is the canonical AMI type table. Its order is the scan order used
// by GetAmiType.
var registry = []Metadata{
	{
		Type: AmiTypeAL2X8664, OS: OperatingSystemAL2, Architecture: ArchitectureX8664,
		Aliases:   []string{"amazon-linux-2"},
		lookupKey: eksOptimizedKey("amazon-linux-2"),
	},
	{
		Type: AmiTypeAL2X8664GPU, OS: OperatingSystemAL2, GPUSupport: true, Architecture: ArchitectureX8664,
		Aliases:   []string{"amazon-linux-2-gpu"},
		lookupKey: eksOptimizedKey("amazon-linux-2-gpu"),
	},
	{
		Type: AmiTypeAL2ARM64, OS: OperatingSystemAL2, Architecture: ArchitectureARM64,
		Aliases:   []string{"amazon-linux-2-arm"},
		lookupKey: eksOptimizedKey("amazon-linux-2-arm64"),
	},
	{
		Type: AmiTypeAL2023X8664Standard, OS: OperatingSystemAL2023, Architecture: ArchitectureX8664,
		Aliases:   []string{"amazon-linux-2023/x86_64/standard"},
		lookupKey: eksOptimizedKey("amazon-linux-2023/x86_64/standard"),
	},
	{
		Type: AmiTypeAL2023ARM64Standard, OS: OperatingSystemAL2023, Architecture: ArchitectureARM64,
		Aliases:   []string{"amazon-linux-2023/arm64/standard"},
		lookupKey: eksOptimizedKey("amazon-linux-2023/arm64/standard"),
	},
	{
		Type: AmiTypeAL2023X8664Nvidia, OS: OperatingSystemAL2023, GPUSupport: true, Architecture: ArchitectureX8664,
		Aliases:   []string{"amazon-linux-2023/x86_64/nvidia"},
		lookupKey: eksOptimizedKey("amazon-linux-2023/x86_64/nvidia"),
	},
	{
		Type: AmiTypeBottlerocketARM64, OS: OperatingSystemBottlerocket, Architecture: ArchitectureARM64,
		lookupKey: bottlerocketKey("", ArchitectureARM64),
	},
	{
		Type: AmiTypeBottlerocketX8664, OS: OperatingSystemBottlerocket, Architecture: ArchitectureX8664,
		lookupKey: bottlerocketKey("", ArchitectureX8664),
	},
	{
		Type: AmiTypeBottlerocketARM64Nvidia, OS: OperatingSystemBottlerocket, GPUSupport: true, Architecture: ArchitectureARM64,
		lookupKey: bottlerocketKey("-nvidia", ArchitectureARM64),
	},
	{
		Type: AmiTypeBottlerocketX8664Nvidia, OS: OperatingSystemBottlerocket, GPUSupport: true, Architecture: ArchitectureX8664,
		lookupKey: bottlerocketKey("-nvidia", ArchitectureX8664),
	},
}

// byName resolves canonical names and legacy aliases. It is populated once
// from registry and only read afterwards.
var byName = func() map[string]int {
	m := make(map[string]int, 2*len(registry))
	for i, md := range registry {
		m[string(md.Type)] = i
		for _, alias := range md.Aliases {
			m[alias] = i
		}
	}
	return m
}()

// Get returns the metadata for a canonical AMI type or alias.
func Get(name string) (Metadata, bool) {
	i, ok := byName[name]
	if !ok {
		return Metadata{}, false
	}
	return clone(registry[i]), true
}

// List returns all canonical AMI types in table order.
func List() []AmiType {
	types := make([]AmiType, 0, len(registry))
	for _, md := range registry {
		types = append(types, md.Type)
	}
	return types
}

// All returns a copy of the metadata table in table order.
func All() []Metadata {
	all := make([]Metadata, 0, len(registry))
	for _, md := range registry {
		all = append(all, clone(md))
	}
	return all
}

// Exists reports whether name is a canonical AMI type or alias.
func Exists(name string) bool {
	_, ok := byName[name]
	return ok
}

// ToAmiType resolves a canonical AMI type name or a legacy alias.
func ToAmiType(name string) (AmiType, bool) {
	i, ok := byName[name]
	if !ok {
		return "", false
	}
	return registry[i].Type, true
}

// GetAmiType returns the first AMI type in table order offering the given
// OS, GPU support and architecture.
func GetAmiType(os OperatingSystem, gpu bool, arch CPUArchitecture) (AmiType, error) {
	for _, md := range registry {
		if md.OS == os && md.GPUSupport == gpu && md.Architecture == arch {
			return md.Type, nil
		}
	}
	return "", ekserrors.Resolution("",
		"No AMI type found for OS: %s, GPU support: %t, architecture: %s", os, gpu, arch)
}

// DetermineAmiType derives the architecture of instanceTypes and selects the
// matching AMI type. path names the instance type property for errors.
func DetermineAmiType(os OperatingSystem, gpu bool, instanceTypes []string, path string) (AmiType, error) {
	arch, err := GetArchitecture(instanceTypes, path)
	if err != nil {
		return "", err
	}
	return GetAmiType(os, gpu, arch)
}

// GetOperatingSystem reconciles an optional AMI type with an optional OS.
// When both are given they must agree. When neither is given the default OS
// is returned.
func GetOperatingSystem(amiType string, os OperatingSystem) (OperatingSystem, error) {
	if amiType == "" {
		if os != "" {
			return os, nil
		}
		return DefaultOperatingSystem, nil
	}

	resolved, ok := ToAmiType(amiType)
	if !ok {
		return "", ekserrors.Resolution("amiType",
			"Cannot determine OS of unknown AMI type: %s", amiType)
	}

	md, _ := Get(string(resolved))
	if os != "" && os != md.OS {
		return "", ekserrors.Validation("operatingSystem",
			"Operating system '%s' does not match the detected operating system '%s' of AMI type '%s'.",
			os, md.OS, amiType)
	}
	return md.OS, nil
}

func clone(md Metadata) Metadata {
	if md.Aliases != nil {
		md.Aliases = append([]string(nil), md.Aliases...)
	}
	return md
}
