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
	"regexp"
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// instanceTypePattern matches family, generation, processor family, optional
// additional capabilities and size, e.g. "c6gn.large" or "m7i-flex.xlarge".
var instanceTypePattern = regexp.MustCompile(`([a-z]+)([0-9]+)([a-z])?-?([a-z]+)?\.([a-zA-Z0-9-]+)`)

// gravitonProcessor is the processor family letter of Graviton instances.
const gravitonProcessor = "g"

// InstanceTypeArchitecture returns the architecture of a single instance type.
func InstanceTypeArchitecture(instanceType string) (CPUArchitecture, bool) {
	m := instanceTypePattern.FindStringSubmatch(instanceType)
	if m == nil {
		return "", false
	}
	if m[3] == gravitonProcessor {
		return ArchitectureARM64, true
	}
	return ArchitectureX8664, true
}

// GetArchitecture returns the common architecture of instanceTypes. An empty
// set defaults to x86_64. Unparseable types and sets mixing Graviton with
// x86 instances fail with an error anchored at path.
func GetArchitecture(instanceTypes []string, path string) (CPUArchitecture, error) {
	var hasARM, hasX86 bool
	for _, it := range instanceTypes {
		arch, ok := InstanceTypeArchitecture(it)
		if !ok {
			return "", ekserrors.Resolution(path, "Invalid EC2 instance type: %s", it)
		}
		if arch == ArchitectureARM64 {
			hasARM = true
		} else {
			hasX86 = true
		}
	}

	switch {
	case hasARM && hasX86:
		return "", ekserrors.Resolution(path,
			"Cannot determine architecture of instance types. The provided instance types do not share a common architecture: %s",
			strings.Join(instanceTypes, ", "))
	case hasARM:
		return ArchitectureARM64, nil
	default:
		return ArchitectureX8664, nil
	}
}

// NormalizeArch converts architecture aliases to canonical form.
func NormalizeArch(arch string) CPUArchitecture {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64":
		return ArchitectureX8664
	case "arm64", "aarch64":
		return ArchitectureARM64
	default:
		return CPUArchitecture(arch)
	}
}
