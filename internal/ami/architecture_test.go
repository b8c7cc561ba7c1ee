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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

func TestGetArchitecture(t *testing.T) {
	tests := []struct {
		name          string
		instanceTypes []string
		want          CPUArchitecture
		wantErr       bool
	}{
		{name: "empty defaults to x86", instanceTypes: nil, want: ArchitectureX8664},
		{name: "graviton", instanceTypes: []string{"c6gn.large", "m7g.xlarge", "r6gd.2xlarge"}, want: ArchitectureARM64},
		{name: "graviton gpu", instanceTypes: []string{"g5g.xlarge"}, want: ArchitectureARM64},
		{name: "intel and amd", instanceTypes: []string{"m5.large", "c6a.xlarge", "m7i-flex.large"}, want: ArchitectureX8664},
		{name: "gpu family is not graviton", instanceTypes: []string{"g5.xlarge", "p4d.24xlarge"}, want: ArchitectureX8664},
		{name: "mixed", instanceTypes: []string{"m6g.large", "m6i.large"}, wantErr: true},
		{name: "invalid", instanceTypes: []string{"large"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetArchitecture(tt.instanceTypes, "nodeGroups[0].instanceTypes")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ekserrors.IsCode(err, ekserrors.ErrCodeResolution))
				assert.Equal(t, "nodeGroups[0].instanceTypes", ekserrors.PathOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetArchitecture_MixedMessage(t *testing.T) {
	_, err := GetArchitecture([]string{"t4g.small", "t3.small"}, "instanceTypes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not share a common architecture")
}

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		input    string
		expected CPUArchitecture
	}{
		{"x86_64", ArchitectureX8664},
		{"amd64", ArchitectureX8664},
		{"AMD64", ArchitectureX8664},
		{"arm64", ArchitectureARM64},
		{"aarch64", ArchitectureARM64},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeArch(tt.input))
		})
	}
}
