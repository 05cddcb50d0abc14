package testenv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CATCHAPI_TESTENV_PROBE", "")
	assert.Equal(t, "fallback", GetEnvOrDefault("CATCHAPI_TESTENV_PROBE", "fallback"))

	t.Setenv("CATCHAPI_TESTENV_PROBE", "set")
	assert.Equal(t, "set", GetEnvOrDefault("CATCHAPI_TESTENV_PROBE", "fallback"))
}

func TestNew_fake(t *testing.T) {
	t.Setenv(EnvURL, "")

	env, err := New()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, env.Close())
	}()

	require.True(t, env.IsFake())
	_, u, err := env.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, u.UserName)
	assert.NotEmpty(t, u.AccessToken)
}
