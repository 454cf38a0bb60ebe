package fault

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"network", Network(fmt.Errorf("dial tcp: refused"), "fetching %s", "x"), KindNetwork},
		{"timeout", Network(context.DeadlineExceeded, "fetching"), KindNetwork},
		{"status", Status(http.StatusBadGateway, "proxy"), KindNetwork},
		{"rate limit", Status(http.StatusTooManyRequests, "api"), KindNetwork},
		{"empty", Empty("no repos for %s", "me"), KindEmptyResult},
		{"malformed", Malformed(fmt.Errorf("bad json"), "k"), KindMalformedCache},
		{"unconfigured", Unconfigured("blog"), KindUnconfigured},
		{"plain", fmt.Errorf("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNetworkTimeoutCode(t *testing.T) {
	err := Network(fmt.Errorf("wrapped: %w", context.DeadlineExceeded), "proxy %s", "allorigins")
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEmptyIsPermanent(t *testing.T) {
	assert.False(t, IsRetryable(Empty("nothing")))
}
