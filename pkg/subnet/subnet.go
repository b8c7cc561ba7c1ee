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

// Package subnet classifies VPC subnets as public or private from their
// route tables and picks the subnets worker nodes should be placed in.
//
// Everything here works on already fetched route table facts; fetching them
// is done by the gather package.
package subnet

import (
	"net/netip"
	"strings"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// internetGatewayPrefix is the id prefix of internet gateways.
const internetGatewayPrefix = "igw-"

// privateBlocks are the RFC1918 address blocks.
var privateBlocks = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// Route is a single route table entry.
type Route struct {
	DestinationCIDR     string `json:"destinationCidr,omitempty"`
	DestinationIPv6CIDR string `json:"destinationIpv6Cidr,omitempty"`
	GatewayID           string `json:"gatewayId,omitempty"`
}

// RouteTable is a VPC route table.
type RouteTable struct {
	ID     string  `json:"id"`
	Routes []Route `json:"routes"`
}

// Facts are the routing facts of one subnet. Explicit is the route table
// explicitly associated with the subnet, if any; Main is the main route
// table of the subnet's VPC.
type Facts struct {
	SubnetID string      `json:"subnetId"`
	VpcID    string      `json:"vpcId"`
	Explicit *RouteTable `json:"explicit,omitempty"`
	Main     *RouteTable `json:"main,omitempty"`
}

// EffectiveRouteTable returns the route table that governs the subnet.
func EffectiveRouteTable(f Facts) (*RouteTable, error) {
	switch {
	case f.Explicit != nil:
		return f.Explicit, nil
	case f.Main != nil:
		return f.Main, nil
	default:
		return nil, ekserrors.Resolution("subnetIds",
			"no route table found for subnet %s in VPC %s", f.SubnetID, f.VpcID)
	}
}

// IsPublic reports whether routes send traffic for a non RFC1918
// destination to an internet gateway.
func IsPublic(routes []Route) bool {
	for _, r := range routes {
		if !strings.HasPrefix(r.GatewayID, internetGatewayPrefix) {
			continue
		}
		if !isPrivateDestination(r) {
			return true
		}
	}
	return false
}

// isPrivateDestination reports whether the route's IPv4 destination lies
// inside an RFC1918 block. Such routes only look like gateway routes.
func isPrivateDestination(r Route) bool {
	if r.DestinationCIDR == "" {
		return false
	}
	dst, err := netip.ParsePrefix(r.DestinationCIDR)
	if err != nil {
		return false
	}
	for _, block := range privateBlocks {
		if dst.Bits() >= block.Bits() && block.Contains(dst.Addr()) {
			return true
		}
	}
	return false
}

// Partition splits subnets into public and private ids, preserving input
// order.
func Partition(facts []Facts) (public, private []string, err error) {
	for _, f := range facts {
		rt, err := EffectiveRouteTable(f)
		if err != nil {
			return nil, nil, err
		}
		if IsPublic(rt.Routes) {
			public = append(public, f.SubnetID)
		} else {
			private = append(private, f.SubnetID)
		}
	}
	return public, private, nil
}

// ComputeWorkerSubnets returns the subnets worker nodes should use. When any
// subnet is private only the private subnets are returned; otherwise all
// subnets are.
func ComputeWorkerSubnets(facts []Facts) ([]string, error) {
	public, private, err := Partition(facts)
	if err != nil {
		return nil, err
	}
	if len(private) > 0 {
		return private, nil
	}
	return public, nil
}
