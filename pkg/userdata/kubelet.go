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
	"strings"
)

// BuildKubeletFlags returns the kubelet flags implied by c: the whitespace
// separated KubeletExtraArgs followed by --node-labels and
// --register-with-taints, each rendered in caller order.
func BuildKubeletFlags(c *CommonArgs) []string {
	flags := strings.Fields(c.KubeletExtraArgs)

	if len(c.Labels) > 0 {
		parts := make([]string, 0, len(c.Labels))
		for _, l := range c.Labels {
			parts = append(parts, l.Key+"="+l.Value)
		}
		flags = append(flags, "--node-labels="+strings.Join(parts, ","))
	}

	if len(c.Taints) > 0 {
		parts := make([]string, 0, len(c.Taints))
		for _, t := range c.Taints {
			if t.Value != "" {
				parts = append(parts, t.Key+"="+t.Value+":"+string(t.Effect))
			} else {
				parts = append(parts, t.Key+":"+string(t.Effect))
			}
		}
		flags = append(flags, "--register-with-taints="+strings.Join(parts, ","))
	}

	return flags
}
