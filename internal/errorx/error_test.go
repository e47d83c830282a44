package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	errAlreadyClaimed := New(Conflict, "already claimed")
	wrapped := fmt.Errorf("claim creator fee: %w", errAlreadyClaimed)

	require.True(t, errors.Is(wrapped, errAlreadyClaimed))
	require.Equal(t, http.StatusBadRequest, StatusOf(wrapped))
	require.Equal(t, http.StatusNotFound, StatusOf(New(NotFound, "dare %s not found", "d1")))
	require.Equal(t, http.StatusBadRequest, StatusOf(New(Upstream, "rpc down")))
	require.Equal(t, http.StatusTooManyRequests, StatusOf(New(TooManyRequests, "slow down")))
	require.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	require.Equal(t, "dare d1 not found", New(NotFound, "dare %s not found", "d1").Error())
}
