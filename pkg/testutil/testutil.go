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

// Package testutil provides shared testing utilities, fixtures, and mocks
// for the eksboot test suite.
package testutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// TB is the subset of testing.TB the helpers need. GinkgoT() satisfies it.
type TB interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}

// TempFile writes content to name inside a test scoped temporary directory
// and returns its path. The directory is removed when the test ends.
func TempFile(t TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// MustReadFile reads a file and returns its content, failing the test if an
// error occurs.
func MustReadFile(t TB, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(content)
}

// CaptureStdout returns what fn writes to os.Stdout.
func CaptureStdout(fn func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout
	return <-done
}
