package contract

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the CLI, HTTP and MCP surfaces.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrEmptyResult         = errors.New("empty result")
	ErrSecondaryDegraded   = errors.New("secondary opinion unavailable")

	ErrRateLimited    = fmt.Errorf("%w: rate limited, retry later", ErrSecondaryDegraded)
	ErrQuotaExhausted = fmt.Errorf("%w: quota exhausted", ErrSecondaryDegraded)

	ErrFileTooLarge = errors.New("file exceeds size ceiling")
)

// Error codes reported to API clients.
const (
	CodeInvalidInput        = "invalid_input"
	CodeEmptyResult         = "empty_result"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeRateLimited         = "rate_limited"
	CodeQuotaExhausted      = "quota_exhausted"
	CodeSecondaryDegraded   = "secondary_degraded"
	CodeUnauthorized        = "unauthorized"
	CodeInternal            = "internal"
)

// ErrorCode classifies err into one of the Code constants.
// The more specific degraded kinds are checked before the generic ones.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrQuotaExhausted):
		return CodeQuotaExhausted
	case errors.Is(err, ErrSecondaryDegraded):
		return CodeSecondaryDegraded
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrEmptyResult):
		return CodeEmptyResult
	case errors.Is(err, ErrUpstreamUnavailable):
		return CodeUpstreamUnavailable
	default:
		return CodeInternal
	}
}
