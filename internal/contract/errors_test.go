package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDegradedKinds(t *testing.T) {
	assert.ErrorIs(t, ErrRateLimited, ErrSecondaryDegraded)
	assert.ErrorIs(t, ErrQuotaExhausted, ErrSecondaryDegraded)
	assert.NotErrorIs(t, ErrRateLimited, ErrQuotaExhausted)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: bad", ErrInvalidInput), CodeInvalidInput},
		{fmt.Errorf("wrap: %w", ErrEmptyResult), CodeEmptyResult},
		{fmt.Errorf("%w: 502", ErrUpstreamUnavailable), CodeUpstreamUnavailable},
		{fmt.Errorf("model: %w", ErrRateLimited), CodeRateLimited},
		{fmt.Errorf("model: %w", ErrQuotaExhausted), CodeQuotaExhausted},
		{fmt.Errorf("%w: not configured", ErrSecondaryDegraded), CodeSecondaryDegraded},
		{errors.New("other"), CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err))
	}
}
