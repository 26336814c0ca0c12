package inflight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	var g Guard

	release, err := g.Acquire("alice")
	require.NoError(t, err)
	assert.True(t, g.Busy("alice"))

	_, err = g.Acquire("alice")
	assert.ErrorIs(t, err, ErrBusy)

	other, err := g.Acquire("bob")
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, g.Busy("alice"))

	again, err := g.Acquire("alice")
	require.NoError(t, err)
	again()
}
