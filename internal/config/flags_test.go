package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(o *Overrides) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	o.Register(cmd.Flags())
	return cmd
}

func TestBindEnv_EnvironmentFillsUnsetFlags(t *testing.T) {
	t.Setenv("SPYMASTER_PORT", "9000")
	t.Setenv("SPYMASTER_REDIS", "cache:6379")

	var o Overrides
	cmd := newTestCommand(&o)
	require.NoError(t, cmd.ParseFlags([]string{"--redis", "flag:6379"}))
	BindEnv(cmd)

	cfg := Default()
	require.NoError(t, o.Apply(cmd.Flags(), cfg))

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "flag:6379", cfg.Redis.Addr, "explicit flag wins over env")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "untouched value keeps default")
}

func TestOverrides_ApplyValidates(t *testing.T) {
	var o Overrides
	cmd := newTestCommand(&o)
	require.NoError(t, cmd.ParseFlags([]string{"--port", "70000"}))

	err := o.Apply(cmd.Flags(), Default())
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPYMASTER_DOTENV_TEST=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SPYMASTER_DOTENV_TEST") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("SPYMASTER_DOTENV_TEST"))
}
