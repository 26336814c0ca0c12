package firestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/platform/config"
)

func TestProviderRequiresProject(t *testing.T) {
	t.Setenv(envGoogleProjectID, "")
	p := NewProvider(config.FirestoreConfig{})

	_, err := p.Client(context.Background())
	require.ErrorIs(t, err, ErrProjectRequired)
}

func TestProviderResolvesFromEnvironment(t *testing.T) {
	t.Setenv(envGoogleProjectID, "from-env")
	t.Setenv(envEmulatorHost, "localhost:8080")

	p := NewProvider(config.FirestoreConfig{})
	assert.Equal(t, "from-env", p.ProjectID())
	assert.Len(t, p.options(), 3)

	p = NewProvider(config.FirestoreConfig{ProjectID: " configured ", EmulatorHost: "emu:9000"})
	assert.Equal(t, "configured", p.ProjectID())
	assert.Equal(t, "emu:9000", p.emulator)
}

func TestProviderWithoutEmulatorAddsNoTransportOptions(t *testing.T) {
	t.Setenv(envEmulatorHost, "")
	p := NewProvider(config.FirestoreConfig{ProjectID: "ignito-test"}, WithClientOptions(), WithDialTimeout(0))
	assert.Empty(t, p.options())
	assert.Equal(t, defaultDialTimeout, p.timeout)
}

func TestProviderClosed(t *testing.T) {
	p := NewProvider(config.FirestoreConfig{ProjectID: "ignito-test"})
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err := p.Client(context.Background())
	require.ErrorIs(t, err, ErrProviderClosed)

	var nilProvider *Provider
	assert.NoError(t, nilProvider.Close())
}
