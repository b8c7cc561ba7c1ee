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

// Package logger prints human oriented progress messages. Everything is
// written to Out (stderr by default) so stdout stays reserved for compiled
// artifacts that are piped into other tools.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"

	ekserrors "github.com/NVIDIA/eksboot/pkg/errors"
)

// ErrLoadingFailed is the sentinel cause passed to a Loading cancel function
// to indicate the operation failed (displays red X instead of green checkmark).
var ErrLoadingFailed = errors.New("loading failed")

// fdWriter is the subset of os.File that implements io.Writer and Fd()
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// Verbosity represents the logging verbosity level.
type Verbosity int

const (
	// VerbosityQuiet suppresses all output except errors.
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal is the default verbosity level.
	VerbosityNormal
	// VerbosityVerbose enables debug output.
	VerbosityVerbose
	// VerbosityDebug enables trace output.
	VerbosityDebug
)

const (
	reset      = "\033[0m"
	green      = "\033[32m"
	yellowText = "\033[33m"
	redText    = "\033[31m"

	checkmark    = "\u2714"
	redXEmoji    = "\u274C"
	warningSign  = "\u26A0"
	loadingEmoji = "\U0001f300"
)

// NewLogger creates a new instance of FunLogger.
func NewLogger() *FunLogger {
	l := &FunLogger{
		Out:      os.Stderr,
		Wg:       &sync.WaitGroup{},
		ExitFunc: os.Exit,
	}
	l.verbosity.Store(int32(VerbosityNormal))
	return l
}

// Logger is the logging surface used by commands and the gather phase.
type Logger interface {
	Info(format string, a ...any)
	Check(format string, a ...any)
	Warning(format string, a ...any)
	Error(err error)
	Loading(format string, a ...any) context.CancelCauseFunc
	Debug(format string, a ...any)
	Trace(format string, a ...any)
	SetVerbosity(v Verbosity)
}

// FunLogger implements Logger using emojis for messages.
type FunLogger struct {
	// Out receives every message. Defaults to os.Stderr.
	Out io.Writer
	// Function to exit the application, defaults to os.Exit()
	ExitFunc exitFunc
	// Wg can be used to wait for loading animations to finish.
	Wg *sync.WaitGroup
	// IsCI disables the spinner animation.
	IsCI bool

	verbosity atomic.Int32

	// writeMu serializes writes so concurrent gather goroutines do not
	// interleave lines.
	writeMu sync.Mutex

	// mu protects activeCancels and exited.
	mu            sync.Mutex
	activeCancels []context.CancelCauseFunc
	exited        bool
}

var _ Logger = (*FunLogger)(nil)

// SetVerbosity sets the verbosity level for the logger.
func (l *FunLogger) SetVerbosity(v Verbosity) {
	l.verbosity.Store(int32(v)) //nolint:gosec // Verbosity is an iota (0-3), cannot overflow int32
}

// Verbosity returns the current verbosity level.
func (l *FunLogger) Verbosity() Verbosity {
	return Verbosity(l.verbosity.Load())
}

// Info prints an information message with no emoji.
// Only prints if Verbosity >= VerbosityNormal.
func (l *FunLogger) Info(format string, a ...any) {
	if l.Verbosity() < VerbosityNormal {
		return
	}
	l.printf(ensureNewline(format), a...)
}

// Check prints an information message with a check emoji.
// Only prints if Verbosity >= VerbosityNormal.
func (l *FunLogger) Check(format string, a ...any) {
	if l.Verbosity() < VerbosityNormal {
		return
	}
	l.printMessage(green, checkmark, fmt.Sprintf(format, a...))
}

// Warning prints a warning message with a warning emoji.
// Always prints regardless of verbosity level.
func (l *FunLogger) Warning(format string, a ...any) {
	l.printMessage(yellowText, warningSign, fmt.Sprintf(format, a...))
}

// Error prints an error message with an X emoji. Always prints. The error
// text of a structured error already carries its code and property path;
// at VerbosityVerbose its context values follow on separate lines.
func (l *FunLogger) Error(err error) {
	l.printMessage(redText, redXEmoji, err.Error())

	var se *ekserrors.StructuredError
	if l.Verbosity() < VerbosityVerbose || !errors.As(err, &se) || len(se.Context) == 0 {
		return
	}
	keys := make([]string, 0, len(se.Context))
	for k := range se.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l.printf("\t%s: %v\n", k, se.Context[k])
	}
}

// Debug prints a debug message.
// Only prints if Verbosity >= VerbosityVerbose.
func (l *FunLogger) Debug(format string, a ...any) {
	if l.Verbosity() < VerbosityVerbose {
		return
	}
	l.printf("[DEBUG] "+ensureNewline(format), a...)
}

// Trace prints a trace message.
// Only prints if Verbosity >= VerbosityDebug.
func (l *FunLogger) Trace(format string, a ...any) {
	if l.Verbosity() < VerbosityDebug {
		return
	}
	l.printf("[TRACE] "+ensureNewline(format), a...)
}

func ensureNewline(format string) string {
	if len(format) == 0 || format[len(format)-1] != '\n' {
		return format + "\n"
	}
	return format
}

func (l *FunLogger) printf(format string, a ...any) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	fmt.Fprintf(l.Out, format, a...) // nolint: errcheck
}

func (l *FunLogger) printMessage(color, emoji, message string) {
	l.printf("%s%s%s\t%s\n", color, emoji, reset, message)
}

// Loading starts a loading animation in a background goroutine and returns a
// CancelCauseFunc. The caller MUST invoke the returned function to stop:
//   - cancel(nil)                       → success (green checkmark)
//   - cancel(logger.ErrLoadingFailed)   → failure (red X)
//
// Concurrent Loading calls are independent of each other.
func (l *FunLogger) Loading(format string, a ...any) context.CancelCauseFunc {
	ctx, cancel := context.WithCancelCause(context.Background())

	l.mu.Lock()
	if l.exited {
		l.mu.Unlock()
		cancel(nil)
		return cancel
	}
	l.Wg.Add(1)
	l.activeCancels = append(l.activeCancels, cancel)
	l.mu.Unlock()

	go l.runLoading(ctx, fmt.Sprintf(format, a...))
	return cancel
}

func (l *FunLogger) runLoading(ctx context.Context, message string) {
	defer l.Wg.Done()

	if len(message) > 0 && message[len(message)-1] == '\n' {
		message = message[:len(message)-1]
	}

	if !l.isInteractiveTerminal() {
		l.printMessage(yellowText, loadingEmoji, message)
		<-ctx.Done()
		if errors.Is(context.Cause(ctx), ErrLoadingFailed) {
			l.printMessage(redText, redXEmoji, message)
		}
		return
	}

	ticker := time.After(330 * time.Millisecond)
	i := 0
	spinners := []string{"|", "/", "-", "\\"}

	for {
		select {
		case <-ctx.Done():
			l.printf("\r\033[2K")
			if errors.Is(context.Cause(ctx), ErrLoadingFailed) {
				l.printMessage(redText, redXEmoji, message)
			} else {
				l.printMessage(green, checkmark, message)
			}
			return
		case <-ticker:
			i = (i + 1) % len(spinners)
			l.printf("\r%s\t%s", spinners[i], message)
			ticker = time.After(330 * time.Millisecond)
		}
	}
}

func (l *FunLogger) isInteractiveTerminal() bool {
	w, ok := l.Out.(fdWriter)
	return ok && isTerminal(w) && !l.isCILogs()
}

func (l *FunLogger) isCILogs() bool {
	if os.Getenv("CI") == "true" {
		return true
	}
	return l.IsCI
}

// Exit stops every loading animation and exits with code.
func (l *FunLogger) Exit(code int) {
	l.mu.Lock()
	l.exited = true
	for _, cancel := range l.activeCancels {
		cancel(nil)
	}
	l.activeCancels = nil
	l.mu.Unlock()
	l.Wg.Wait()

	l.ExitFunc(code)
}

// isTerminal returns whether we have a terminal or not
func isTerminal(w fdWriter) bool {
	return isatty.IsTerminal(w.Fd())
}

type exitFunc func(int)
