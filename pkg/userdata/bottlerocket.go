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
	"bytes"
	"math"

	"github.com/BurntSushi/toml"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// bottlerocketDialect renders Bottlerocket TOML settings.
type bottlerocketDialect struct{}

func (bottlerocketDialect) Type() Type { return TypeBottlerocket }

func (bottlerocketDialect) managed(c ClusterMetadata, a *ManagedArgs) (string, error) {
	return bottlerocketSettings(c, &a.CommonArgs, "", nil)
}

func (bottlerocketDialect) selfManagedV1(c ClusterMetadata, a *SelfManagedV1Args) (string, error) {
	cloudformation := map[string]any{
		"should-signal":       true,
		"stack-name":          a.StackName,
		"logical-resource-id": "NodeGroup",
	}
	return bottlerocketSettings(c, &a.CommonArgs, a.ExtraUserData, cloudformation)
}

func (bottlerocketDialect) selfManagedV2(c ClusterMetadata, a *SelfManagedV2Args) (string, error) {
	return bottlerocketSettings(c, &a.CommonArgs, a.ExtraUserData, nil)
}

func bottlerocketSettings(c ClusterMetadata, a *CommonArgs, extraUserData string, cloudformation map[string]any) (string, error) {
	if a.BootstrapExtraArgs != "" {
		return "", ekserrors.Unsupported("bootstrapExtraArgs",
			"The 'bootstrapExtraArgs' argument is not supported with Bottlerocket.")
	}
	if a.KubeletExtraArgs != "" {
		return "", ekserrors.Unsupported("kubeletExtraArgs",
			"The 'kubeletExtraArgs' argument is not supported with Bottlerocket.")
	}
	if extraUserData != "" {
		return "", ekserrors.Unsupported("extraUserData",
			"Bottlerocket does not support running scripts as part of the user data. "+
				"If you need to run scripts, please use a different OS.")
	}
	if len(a.NodeadmExtraOptions) > 0 {
		return "", ekserrors.Unsupported("nodeadmExtraOptions",
			"The 'nodeadmExtraOptions' argument is not supported with Bottlerocket.")
	}

	dnsIP, err := GetClusterDNSIP(c.ServiceCIDR)
	if err != nil {
		return "", err
	}

	kubernetes := map[string]any{
		"cluster-name":        c.Name,
		"api-server":          c.APIServerEndpoint,
		"cluster-certificate": c.CertificateAuthority,
		"cluster-dns-ip":      dnsIP,
	}
	if len(a.Labels) > 0 {
		labels := make(map[string]any, len(a.Labels))
		for _, l := range a.Labels {
			labels[l.Key] = l.Value
		}
		kubernetes["node-labels"] = labels
	}
	if len(a.Taints) > 0 {
		taints := make(map[string]any, len(a.Taints))
		for _, t := range a.Taints {
			taints[t.Key] = t.Value + ":" + string(t.Effect)
		}
		kubernetes["node-taints"] = taints
	}

	settings := map[string]any{"kubernetes": kubernetes}
	if cloudformation != nil {
		settings["cloudformation"] = cloudformation
	}
	base := map[string]any{"settings": settings}

	user, ok := normalizeSettings(a.BottlerocketSettings).(map[string]any)
	if !ok {
		user = map[string]any{}
	}
	merged, err := mergeSettings(base, user, "bottlerocketSettings")
	if err != nil {
		return "", err
	}

	return encodeTOML(merged)
}

// mergeSettings deep merges override into base and returns the result.
// Leaves in override win. A table in base cannot be replaced by a scalar.
// Neither argument is modified.
func mergeSettings(base, override map[string]any, path string) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range override {
		bv, exists := out[k]
		if !exists {
			out[k] = ov
			continue
		}
		bm, baseIsTable := bv.(map[string]any)
		om, overrideIsTable := ov.(map[string]any)
		switch {
		case baseIsTable && overrideIsTable:
			m, err := mergeSettings(bm, om, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = m
		case baseIsTable:
			return nil, ekserrors.Validation(path+"."+k, "must be a table")
		default:
			out[k] = ov
		}
	}
	return out, nil
}

// normalizeSettings deep copies a decoded settings tree. Integral floats,
// which JSON and YAML decoding produce for every number, become integers so
// they render as TOML integers.
func normalizeSettings(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeSettings(val)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeSettings(val)
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case int:
		return int64(t)
	default:
		return v
	}
}

// encodeTOML renders settings. Keys are written in sorted order at every
// level, so equal trees always render identically.
func encodeTOML(settings map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(settings); err != nil {
		return "", ekserrors.Wrap(ekserrors.ErrCodeValidation, "failed to encode Bottlerocket settings", err)
	}
	return buf.String(), nil
}
