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

package subnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

var (
	localRoute   = Route{DestinationCIDR: "10.0.0.0/16", GatewayID: "local"}
	defaultIGW   = Route{DestinationCIDR: "0.0.0.0/0", GatewayID: "igw-0123"}
	defaultNAT   = Route{DestinationCIDR: "0.0.0.0/0"}
	ipv6IGW      = Route{DestinationIPv6CIDR: "::/0", GatewayID: "igw-0123"}
	peeringLike  = Route{DestinationCIDR: "192.168.10.0/24", GatewayID: "igw-0456"}
	publicTable  = &RouteTable{ID: "rtb-public", Routes: []Route{localRoute, defaultIGW}}
	privateTable = &RouteTable{ID: "rtb-private", Routes: []Route{localRoute, defaultNAT}}
)

func TestIsPublic(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
		want   bool
	}{
		{"no routes", nil, false},
		{"local only", []Route{localRoute}, false},
		{"default route via igw", []Route{localRoute, defaultIGW}, true},
		{"default route via nat", []Route{localRoute, defaultNAT}, false},
		{"ipv6 default via igw", []Route{localRoute, ipv6IGW}, true},
		{"rfc1918 destination via gateway", []Route{localRoute, peeringLike}, false},
		{"wide block containing private space", []Route{{DestinationCIDR: "10.0.0.0/7", GatewayID: "igw-1"}}, true},
		{"local gateway with public cidr", []Route{{DestinationCIDR: "54.0.0.0/16", GatewayID: "local"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPublic(tt.routes))
		})
	}
}

func TestEffectiveRouteTable(t *testing.T) {
	rt, err := EffectiveRouteTable(Facts{SubnetID: "a", Explicit: privateTable, Main: publicTable})
	require.NoError(t, err)
	assert.Equal(t, "rtb-private", rt.ID)

	rt, err = EffectiveRouteTable(Facts{SubnetID: "a", Main: publicTable})
	require.NoError(t, err)
	assert.Equal(t, "rtb-public", rt.ID)

	_, err = EffectiveRouteTable(Facts{SubnetID: "a", VpcID: "vpc-1"})
	assert.True(t, ekserrors.IsCode(err, ekserrors.ErrCodeResolution))
}

func TestComputeWorkerSubnets(t *testing.T) {
	tests := []struct {
		name  string
		facts []Facts
		want  []string
	}{
		{
			name: "mixed set keeps only private subnets",
			facts: []Facts{
				{SubnetID: "subnet-pub-1", Explicit: publicTable},
				{SubnetID: "subnet-priv-1", Explicit: privateTable},
				{SubnetID: "subnet-pub-2", Main: publicTable},
				{SubnetID: "subnet-priv-2", Explicit: privateTable, Main: publicTable},
			},
			want: []string{"subnet-priv-1", "subnet-priv-2"},
		},
		{
			name: "all public returns everything",
			facts: []Facts{
				{SubnetID: "subnet-b", Explicit: publicTable},
				{SubnetID: "subnet-a", Main: publicTable},
			},
			want: []string{"subnet-b", "subnet-a"},
		},
		{
			name: "all private returns everything",
			facts: []Facts{
				{SubnetID: "subnet-a", Main: privateTable},
				{SubnetID: "subnet-b", Main: privateTable},
			},
			want: []string{"subnet-a", "subnet-b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeWorkerSubnets(tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeWorkerSubnets_MissingRouteTable(t *testing.T) {
	_, err := ComputeWorkerSubnets([]Facts{{SubnetID: "subnet-a", Explicit: publicTable}, {SubnetID: "subnet-b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subnet-b")
}
