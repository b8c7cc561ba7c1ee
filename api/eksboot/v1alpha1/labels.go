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

package v1alpha1

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Label is a node label.
type Label struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Labels are node labels in the order they are passed to the kubelet.
//
// A description may write them as a list of key/value pairs, which keeps
// the written order, or as a mapping from key to value, which is sorted by
// key.
type Labels []Label

// UnmarshalJSON accepts both the list and the mapping form.
func (l *Labels) UnmarshalJSON(data []byte) error {
	if isList(data) {
		var list []Label
		if err := decodeStrict(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}

	var m map[string]string
	if err := decodeStrict(data, &m); err != nil {
		return err
	}
	var out Labels
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Label{Key: k, Value: m[k]})
	}
	*l = out
	return nil
}

// Taint is a node taint. The effect may use the Kubernetes (NoSchedule) or
// the EKS API (NO_SCHEDULE) spelling.
type Taint struct {
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
	Effect string `json:"effect"`
}

// taintValue is a taint in the mapping form, keyed by its taint key.
type taintValue struct {
	Value  string `json:"value,omitempty"`
	Effect string `json:"effect"`
}

// Taints are node taints in the order they are registered. Like Labels they
// are either a list, kept in order, or a mapping from key to value and
// effect, sorted by key.
type Taints []Taint

// UnmarshalJSON accepts both the list and the mapping form.
func (t *Taints) UnmarshalJSON(data []byte) error {
	if isList(data) {
		var list []Taint
		if err := decodeStrict(data, &list); err != nil {
			return err
		}
		*t = list
		return nil
	}

	var m map[string]taintValue
	if err := decodeStrict(data, &m); err != nil {
		return err
	}
	var out Taints
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Taint{Key: k, Value: m[k].Value, Effect: m[k].Effect})
	}
	*t = out
	return nil
}

func isList(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
