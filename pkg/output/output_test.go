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

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"sigs.k8s.io/yaml"
)

// mockTableData implements TableData for testing
type mockTableData struct {
	headers []string
	rows    [][]string
}

func (m *mockTableData) Headers() []string { return m.headers }
func (m *mockTableData) Rows() [][]string  { return m.rows }

// mockArtifact implements RawData for testing
type mockArtifact struct {
	Name     string `json:"name"`
	UserData string `json:"userData"`
}

func (m *mockArtifact) Raw() string { return m.UserData }

// testStruct carries json tags only, as the compiler result types do.
type testStruct struct {
	Name      string   `json:"name"`
	ImageID   string   `json:"imageId,omitempty"`
	SubnetIDs []string `json:"subnetIds"`
}

func newBufferedFormatter(t *testing.T, format string) (*Formatter, *bytes.Buffer) {
	t.Helper()
	formatter, err := NewFormatter(format)
	if err != nil {
		t.Fatalf("failed to create formatter: %v", err)
	}
	var buf bytes.Buffer
	formatter.SetWriter(&buf)
	return formatter, &buf
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected bool
	}{
		{name: "table format is valid", format: "table", expected: true},
		{name: "json format is valid", format: "json", expected: true},
		{name: "yaml format is valid", format: "yaml", expected: true},
		{name: "raw format is valid", format: "raw", expected: true},
		{name: "empty string is invalid", format: "", expected: false},
		{name: "unknown format is invalid", format: "xml", expected: false},
		{name: "uppercase TABLE is invalid", format: "TABLE", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidFormat(tt.format)
			if result != tt.expected {
				t.Errorf("IsValidFormat(%q) = %v, expected %v", tt.format, result, tt.expected)
			}
		})
	}

	if len(ValidFormats()) != 4 {
		t.Errorf("expected 4 formats, got %d", len(ValidFormats()))
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		expectedFormat Format
		expectError    bool
	}{
		{name: "empty format defaults to table", format: "", expectedFormat: FormatTable},
		{name: "json format creates formatter", format: "json", expectedFormat: FormatJSON},
		{name: "yaml format creates formatter", format: "yaml", expectedFormat: FormatYAML},
		{name: "raw format creates formatter", format: "raw", expectedFormat: FormatRaw},
		{name: "invalid format returns error", format: "xml", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := NewFormatter(tt.format)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for format %q, got nil", tt.format)
				}
				if formatter != nil {
					t.Errorf("expected nil formatter when error occurs")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if formatter.Format() != tt.expectedFormat {
				t.Errorf("formatter.Format() = %v, expected %v", formatter.Format(), tt.expectedFormat)
			}
		})
	}
}

func TestNewFormatterErrorMessage(t *testing.T) {
	_, err := NewFormatter("invalid")
	if err == nil {
		t.Fatal("expected error for invalid format")
	}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "invalid") {
		t.Errorf("error should mention the invalid format: %s", errMsg)
	}
	if !strings.Contains(errMsg, "table") || !strings.Contains(errMsg, "raw") {
		t.Errorf("error should list valid formats: %s", errMsg)
	}
}

func TestPrintJSON(t *testing.T) {
	formatter, buf := newBufferedFormatter(t, "json")

	data := testStruct{Name: "workers", ImageID: "ami-1", SubnetIDs: []string{"subnet-a"}}
	if err := formatter.PrintJSON(data); err != nil {
		t.Fatalf("PrintJSON failed: %v", err)
	}

	var result testStruct
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.Name != "workers" || result.ImageID != "ami-1" {
		t.Errorf("unexpected round trip: %+v", result)
	}
	if !strings.Contains(buf.String(), "\n  \"name\"") {
		t.Errorf("expected indented JSON, got: %s", buf.String())
	}
}

func TestPrintYAML(t *testing.T) {
	t.Run("uses json tag names", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "yaml")

		data := testStruct{Name: "workers", SubnetIDs: []string{"subnet-a", "subnet-b"}}
		if err := formatter.PrintYAML(data); err != nil {
			t.Fatalf("PrintYAML failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "name: workers") {
			t.Errorf("expected json tag name in output: %s", output)
		}
		if strings.Contains(output, "imageId") {
			t.Errorf("omitempty field should be dropped: %s", output)
		}

		var result testStruct
		if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("output is not valid YAML: %v", err)
		}
		if len(result.SubnetIDs) != 2 {
			t.Errorf("expected 2 subnets, got %v", result.SubnetIDs)
		}
	})

	t.Run("map keys are sorted", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "yaml")

		if err := formatter.PrintYAML(map[string]string{"mapRoles": "[]", "mapUsers": "[]"}); err != nil {
			t.Fatalf("PrintYAML failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "mapRoles:") {
			t.Errorf("expected mapRoles first, got: %s", buf.String())
		}
	})
}

func TestPrintRaw(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "adds trailing newline", text: "#!/bin/bash", expected: "#!/bin/bash\n"},
		{name: "keeps trailing newline", text: "[settings]\n", expected: "[settings]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, buf := newBufferedFormatter(t, "raw")
			if err := formatter.PrintRaw(tt.text); err != nil {
				t.Fatalf("PrintRaw failed: %v", err)
			}
			if buf.String() != tt.expected {
				t.Errorf("PrintRaw(%q) wrote %q, expected %q", tt.text, buf.String(), tt.expected)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	artifact := &mockArtifact{Name: "workers", UserData: "MIME-Version: 1.0\n"}

	t.Run("json format calls PrintJSON", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "json")
		if err := formatter.Print(artifact); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
		var result mockArtifact
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Errorf("expected JSON output, got: %s", buf.String())
		}
	})

	t.Run("raw format with RawData prints the artifact", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "raw")
		if err := formatter.Print(artifact); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
		if buf.String() != "MIME-Version: 1.0\n" {
			t.Errorf("expected raw user data, got: %q", buf.String())
		}
	})

	t.Run("raw format without RawData falls back to YAML", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "raw")
		if err := formatter.Print(testStruct{Name: "workers"}); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
		if !strings.Contains(buf.String(), "name: workers") {
			t.Errorf("expected YAML fallback, got: %s", buf.String())
		}
	})

	t.Run("table format with TableData calls PrintTable", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "table")
		data := &mockTableData{
			headers: []string{"NODEGROUP", "AMI"},
			rows:    [][]string{{"workers", "ami-1"}},
		}
		if err := formatter.Print(data); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
		if !strings.Contains(buf.String(), "NODEGROUP") || !strings.Contains(buf.String(), "ami-1") {
			t.Errorf("expected table output, got: %s", buf.String())
		}
	})

	t.Run("table format without TableData falls back to YAML", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "table")
		if err := formatter.Print(testStruct{Name: "workers"}); err != nil {
			t.Fatalf("Print failed: %v", err)
		}
		if !strings.Contains(buf.String(), "name: workers") {
			t.Errorf("expected YAML fallback, got: %s", buf.String())
		}
	})
}

func TestPrintTable(t *testing.T) {
	t.Run("outputs header and rows", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "table")

		data := &mockTableData{
			headers: []string{"SUBNET", "ROUTE TABLE", "PUBLIC"},
			rows: [][]string{
				{"subnet-a", "rtb-main", "false"},
				{"subnet-b", "rtb-public", "true"},
			},
		}
		if err := formatter.PrintTable(data); err != nil {
			t.Fatalf("PrintTable failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines (1 header + 2 rows), got %d: %s", len(lines), buf.String())
		}
		for i, row := range data.rows {
			for _, cell := range row {
				if !strings.Contains(lines[i+1], cell) {
					t.Errorf("row %d should contain %q, got: %s", i, cell, lines[i+1])
				}
			}
		}
	})

	t.Run("handles empty rows", func(t *testing.T) {
		formatter, buf := newBufferedFormatter(t, "table")

		data := &mockTableData{headers: []string{"NAME"}, rows: [][]string{}}
		if err := formatter.PrintTable(data); err != nil {
			t.Fatalf("PrintTable failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Errorf("expected 1 line (header only), got %d: %s", len(lines), buf.String())
		}
	})
}

func TestTablePrinter(t *testing.T) {
	formatter, buf := newBufferedFormatter(t, "table")

	tp := formatter.NewTablePrinter()
	tp.Header("AMI TYPE", "GPU", "ARCH").
		Row("AL2023_x86_64_NVIDIA", true, "x86_64")
	if err := tp.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"AMI TYPE", "AL2023_x86_64_NVIDIA", "true"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output: %s", want, output)
		}
	}
}
