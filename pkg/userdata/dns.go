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
	"net/netip"
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// clusterDNSOffset is the offset of the cluster DNS service from the start
// of the service CIDR.
const clusterDNSOffset = 10

// GetClusterDNSIP returns the cluster DNS address for a service CIDR, which
// EKS places at the tenth address of the block. Both IPv4 and IPv6 blocks
// are supported.
func GetClusterDNSIP(serviceCIDR string) (string, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(serviceCIDR))
	if err != nil {
		return "", &ekserrors.StructuredError{
			Code:    ekserrors.ErrCodeResolution,
			Path:    "serviceCidr",
			Message: "Couldn't calculate the cluster dns ip based on the service CIDR",
			Cause:   err,
		}
	}

	addr := prefix.Masked().Addr()
	for i := 0; i < clusterDNSOffset; i++ {
		addr = addr.Next()
		if !addr.IsValid() {
			break
		}
	}
	if !addr.IsValid() || !prefix.Contains(addr) {
		return "", ekserrors.Resolution("serviceCidr",
			"service CIDR %s is too small to hold the cluster dns ip", serviceCIDR)
	}

	return addr.String(), nil
}
