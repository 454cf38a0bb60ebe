// Package fault defines the failure taxonomy shared by the cache, the remote
// source clients and the resolver. Every failure is a PlatformError from
// github.com/jmgilman/go/errors so callers can branch on its code.
package fault

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmgilman/go/errors"
)

const (
	// CodeEmptyResult marks a source that was reachable but yielded no usable records.
	CodeEmptyResult errors.ErrorCode = "EMPTY_RESULT"

	// CodeMalformedCache marks a stored cache entry that failed to decode.
	CodeMalformedCache errors.ErrorCode = "MALFORMED_CACHE"

	// CodeUnconfigured marks a domain with nothing to show after every fallback.
	CodeUnconfigured errors.ErrorCode = "UNCONFIGURED"
)

// Kind is the coarse failure category used in logs and metrics.
type Kind string

const (
	KindNone           Kind = "none"
	KindNetwork        Kind = "network"
	KindEmptyResult    Kind = "empty"
	KindMalformedCache Kind = "malformed_cache"
	KindUnconfigured   Kind = "unconfigured"
	KindOther          Kind = "other"
)

// Network wraps a transport failure. Context deadline errors become timeouts.
func Network(err error, format string, args ...any) error {
	if err == nil {
		err = fmt.Errorf("network failure")
	}
	code := errors.CodeNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		code = errors.CodeTimeout
	}
	return errors.Wrapf(err, code, format, args...)
}

// Status builds a NetworkFailure for a non-2xx HTTP response.
func Status(statusCode int, target string) error {
	err := errors.Newf(errors.CodeNetwork, "unexpected status %d from %s", statusCode, target)
	if statusCode == http.StatusTooManyRequests {
		err = errors.Newf(errors.CodeRateLimit, "rate limited by %s", target)
	}
	return errors.WithContext(err, "status", statusCode)
}

// Empty builds an EmptyResult failure.
func Empty(format string, args ...any) error {
	return errors.Newf(CodeEmptyResult, format, args...)
}

// Malformed wraps a cache decode failure.
func Malformed(err error, key string) error {
	return errors.WithContext(errors.Wrap(err, CodeMalformedCache, "malformed cache entry"), "key", key)
}

// Unconfigured builds the terminal failure of a domain without data.
func Unconfigured(domain string) error {
	return errors.WithContext(errors.Newf(CodeUnconfigured, "%s: no cached, remote or seed data", domain), "domain", domain)
}

// KindOf classifies err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	switch errors.GetCode(err) {
	case errors.CodeNetwork, errors.CodeTimeout, errors.CodeRateLimit, errors.CodeUnavailable:
		return KindNetwork
	case CodeEmptyResult:
		return KindEmptyResult
	case CodeMalformedCache:
		return KindMalformedCache
	case CodeUnconfigured, errors.CodeInvalidConfig:
		return KindUnconfigured
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindOther
}

// IsRetryable reports whether a later attempt could succeed.
func IsRetryable(err error) bool {
	return errors.IsRetryable(err)
}
