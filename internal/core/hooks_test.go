package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHooks_GetAndConfigured(t *testing.T) {
	h := Hooks{Before: "make deps", RunParallel: "make", Finally: "echo done"}

	cmd, ok := h.Get(PhaseBefore)
	assert.True(t, ok)
	assert.Equal(t, "make deps", cmd)

	_, ok = h.Get(PhaseAfter)
	assert.False(t, ok)

	assert.Equal(t, []Phase{PhaseBefore, PhaseRunParallel, PhaseFinally}, h.Configured())
	assert.Empty(t, Hooks{}.Configured())
}
