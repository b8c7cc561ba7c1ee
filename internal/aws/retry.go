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

package aws

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/aws/smithy-go"
)

const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// RetryConfig configures retry behavior of gather calls.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// WithRetry executes fn with jittered exponential backoff. Only errors
// classified by IsRetryable are retried.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	var err error

	backoff := cfg.InitialBackoff
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsRetryable(err) {
			return result, err
		}

		if attempt < cfg.MaxRetries {
			sleepDuration := backoff + jitter(backoff)
			if sleepDuration > cfg.MaxBackoff {
				sleepDuration = cfg.MaxBackoff
			}

			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(sleepDuration):
			}

			backoff *= 2
		}
	}
	return result, err
}

func jitter(backoff time.Duration) time.Duration {
	if backoff/2 <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(backoff/2)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

var retryableCodes = map[string]bool{
	"RequestLimitExceeded":        true,
	"Throttling":                  true,
	"ThrottlingException":         true,
	"TooManyRequestsException":    true,
	"ServiceUnavailable":          true,
	"ServiceUnavailableException": true,
	"InternalError":               true,
	"InternalFailure":             true,
	"ServerException":             true,
}

// IsRetryable reports whether err is a transient AWS failure. API errors are
// classified by their error code; anything else falls back to matching the
// message for connection level failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if retryableCodes[apiErr.ErrorCode()] {
			return true
		}
		return apiErr.ErrorFault() == smithy.FaultServer
	}

	errStr := err.Error()
	for _, r := range []string{"RequestLimitExceeded", "Throttling", "connection reset", "timeout"} {
		if strings.Contains(errStr, r) {
			return true
		}
	}
	return false
}
