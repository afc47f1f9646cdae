package cli

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegCommandTree(t *testing.T) {
	cmd := newRegCmd()
	assert.Equal(t, "reg", cmd.Name())

	names := make([]string, 0, 2)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"pull", "push"}, names)
}

func TestRegPullFlags(t *testing.T) {
	cmd := newRegPullCmd()
	for _, flag := range []string{"user", "password", "output", "digest", "insecure", "allow-latest"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestRegPushFlags(t *testing.T) {
	cmd := newRegPushCmd()
	for _, flag := range []string{"user", "password", "config", "insecure", "allow-latest"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
	require.Nil(t, cmd.Flags().Lookup("output"))
}

func TestApplyCredentialDefaults(t *testing.T) {
	t.Setenv("WASH_REG_USER", "env-user")
	t.Setenv("WASH_REG_PASSWORD", "env-password")
	initConfig()
	defer viper.Reset()

	user, password := "", ""
	applyCredentialDefaults(&user, &password)
	assert.Equal(t, "env-user", user)
	assert.Equal(t, "env-password", password)

	// Flags win over the environment.
	user, password = "flag-user", "flag-password"
	applyCredentialDefaults(&user, &password)
	assert.Equal(t, "flag-user", user)
	assert.Equal(t, "flag-password", password)
}
