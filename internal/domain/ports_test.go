package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_Terminal(t *testing.T) {
	for _, state := range []string{"SUCCEEDED", "FAILED", "ENDED"} {
		assert.True(t, JobStatus{State: state}.Terminal(), state)
	}
	for _, state := range []string{"", "RUNNING", "QUEUED", "succeeded"} {
		assert.False(t, JobStatus{State: state}.Terminal(), state)
	}
}

func TestTransportError_MatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch comments: %w", NewTransportError("gh api", cause))

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)

	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, "gh api", te.Op)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewTransportError_Nil(t *testing.T) {
	assert.NoError(t, NewTransportError("op", nil))
}
