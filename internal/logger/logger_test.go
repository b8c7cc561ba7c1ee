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

package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

func newTestLogger(v Verbosity) (*FunLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger()
	l.Out = &buf
	l.SetVerbosity(v)
	return l, &buf
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity Verbosity
		wantValue int
	}{
		{"Quiet is 0", VerbosityQuiet, 0},
		{"Normal is 1", VerbosityNormal, 1},
		{"Verbose is 2", VerbosityVerbose, 2},
		{"Debug is 3", VerbosityDebug, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int(tt.verbosity) != tt.wantValue {
				t.Errorf("Verbosity %s = %d, want %d", tt.name, tt.verbosity, tt.wantValue)
			}
		})
	}
}

func TestNewLoggerDefaultVerbosity(t *testing.T) {
	l := NewLogger()
	if l.Verbosity() != VerbosityNormal {
		t.Errorf("NewLogger() Verbosity = %d, want %d (VerbosityNormal)", l.Verbosity(), VerbosityNormal)
	}
}

func TestQuietModeSuppressesInfoButAllowsError(t *testing.T) {
	l, buf := newTestLogger(VerbosityQuiet)

	l.Info("this should not appear")
	l.Check("this should not appear either")
	if buf.Len() > 0 {
		t.Errorf("Info() and Check() in Quiet mode should not produce output, got: %s", buf.String())
	}

	l.Error(errors.New("test error"))
	if !strings.Contains(buf.String(), "test error") {
		t.Errorf("Error() should always print, got: %q", buf.String())
	}

	buf.Reset()
	l.Warning("careful")
	if !strings.Contains(buf.String(), "careful") {
		t.Errorf("Warning() should always print, got: %q", buf.String())
	}
}

func TestNormalModeShowsInfoButHidesDebug(t *testing.T) {
	l, buf := newTestLogger(VerbosityNormal)

	l.Info("test info message")
	if buf.String() != "test info message\n" {
		t.Errorf("Info() = %q, want a single newline terminated line", buf.String())
	}

	buf.Reset()
	l.Debug("this should not appear")
	if buf.Len() > 0 {
		t.Errorf("Debug() in Normal mode should not produce output, got: %s", buf.String())
	}
}

func TestVerboseModeShowsDebug(t *testing.T) {
	l, buf := newTestLogger(VerbosityVerbose)

	l.Debug("value: %d, name: %s", 42, "test")
	if buf.String() != "[DEBUG] value: 42, name: test\n" {
		t.Errorf("Debug() = %q", buf.String())
	}

	buf.Reset()
	l.Trace("this should not appear")
	if buf.Len() > 0 {
		t.Errorf("Trace() in Verbose mode should not produce output, got: %s", buf.String())
	}
}

func TestDebugModeShowsTrace(t *testing.T) {
	l, buf := newTestLogger(VerbosityDebug)

	l.Trace("value: %d", 7)
	if buf.String() != "[TRACE] value: 7\n" {
		t.Errorf("Trace() = %q", buf.String())
	}
}

func TestErrorPrintsStructuredContext(t *testing.T) {
	err := ekserrors.WrapWithContext(ekserrors.ErrCodeGather, "SSM lookup failed",
		errors.New("throttled"), map[string]any{"parameter": "/aws/service/x"})

	l, buf := newTestLogger(VerbosityNormal)
	l.Error(err)
	out := buf.String()
	if !strings.Contains(out, "[GATHER] SSM lookup failed: throttled") {
		t.Errorf("Error() should print code and message, got: %q", out)
	}
	if strings.Contains(out, "parameter") {
		t.Errorf("Error() should hide context below Verbose, got: %q", out)
	}

	l, buf = newTestLogger(VerbosityVerbose)
	l.Error(err)
	if !strings.Contains(buf.String(), "\tparameter: /aws/service/x\n") {
		t.Errorf("Error() should print context in Verbose mode, got: %q", buf.String())
	}
}

func TestLoadingNonInteractive(t *testing.T) {
	l, buf := newTestLogger(VerbosityNormal)

	cancel := l.Loading("Resolving AMIs")
	cancel(ErrLoadingFailed)
	l.Wg.Wait()

	if got := strings.Count(buf.String(), "Resolving AMIs"); got != 2 {
		t.Errorf("Loading() should print the message and the failure, got: %q", buf.String())
	}
}

func TestExitStopsLoading(t *testing.T) {
	l, _ := newTestLogger(VerbosityNormal)
	var code int
	l.ExitFunc = func(c int) { code = c }

	_ = l.Loading("waiting")
	l.Exit(3)

	if code != 3 {
		t.Errorf("Exit() code = %d, want 3", code)
	}
	// Loading after Exit returns immediately
	l.Loading("after exit")(nil)
}
