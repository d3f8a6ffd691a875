package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("boom")
	err := NewStartError("engine start failed", cause)

	assert.Equal(t, "start: engine start failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStopError("engine shutdown failed", nil)
	assert.Equal(t, "stop: engine shutdown failed", bare.Error())
}

func TestErrorClassification(t *testing.T) {
	setup := NewSetupError("engine initialization failed", errors.New("no disk"))
	start := NewStartError("engine start failed", errors.New("port in use"))

	assert.True(t, IsSetupError(setup))
	assert.False(t, IsStartError(setup))
	assert.True(t, IsStartError(start))
	assert.False(t, IsSetupError(start))
	assert.False(t, IsSetupError(errors.New("plain")))
}
